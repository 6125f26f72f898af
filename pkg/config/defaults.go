package config

import (
	"time"

	"github.com/semadraw/semadraw/pkg/transport"
)

// DefaultConfig returns the built-in defaults used when no config file is
// present.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields of cfg with the built-in
// defaults, leaving explicitly configured values untouched.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyTransportDefaults(&cfg.Transport)
	applyDaemonDefaults(&cfg.Daemon)
	applyLimitsDefaults(&cfg.Limits)
	applyOutputDefaults(&cfg.Output)
	applyMetricsDefaults(&cfg.Metrics)
}

func applyLoggingDefaults(c *LoggingConfig) {
	if c.Level == "" {
		c.Level = "INFO"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}

func applyTelemetryDefaults(c *TelemetryConfig) {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4317"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Profiling.Endpoint == "" {
		c.Profiling.Endpoint = "localhost:4040"
	}
	if len(c.Profiling.ProfileTypes) == 0 {
		c.Profiling.ProfileTypes = []string{"cpu", "alloc_space"}
	}
}

func applyTransportDefaults(c *TransportConfig) {
	if c.LocalSocketPath == "" {
		c.LocalSocketPath = transport.DefaultLocalSocketPath
	}
}

func applyDaemonDefaults(c *DaemonConfig) {
	if c.MaxClients == 0 {
		c.MaxClients = 256
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = 100 * time.Millisecond
	}
	if c.ProtocolVersionMajor == 0 {
		c.ProtocolVersionMajor = 1
	}
}

func applyLimitsDefaults(c *LimitsConfig) {
	if c.MaxSurfaces == 0 {
		c.MaxSurfaces = 64
	}
	if c.MaxTotalPixels == 0 {
		c.MaxTotalPixels = 256 << 20
	}
	if c.MaxSDCSBytes == 0 {
		c.MaxSDCSBytes = 64 << 20
	}
	if c.MaxShmBytes == 0 {
		c.MaxShmBytes = 512 << 20
	}
}

func applyOutputDefaults(c *OutputConfig) {
	if c.Width == 0 {
		c.Width = 1920
	}
	if c.Height == 0 {
		c.Height = 1080
	}
	if c.PixelFormat == "" {
		c.PixelFormat = "rgba8888"
	}
	if c.TargetHz == 0 {
		c.TargetHz = 60
	}
}

func applyMetricsDefaults(c *MetricsConfig) {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:9090"
	}
}
