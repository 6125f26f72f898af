// Package config loads the daemon's static configuration: logging,
// telemetry, transport binding, per-client resource limits, and output
// framebuffer parameters.
//
// Precedence, highest first: CLI flags (applied by the caller after Load
// returns), environment variables (SEMADRAW_*), the YAML config file, then
// the built-in defaults. Environment variables override only keys that the
// config file sets; when no config file is found, Load returns the built-in
// defaults and does not consult the environment. Adapted from the teacher's
// pkg/config.Config / Load / setupViper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the daemon's complete static configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Transport TransportConfig `mapstructure:"transport" yaml:"transport"`
	Daemon    DaemonConfig    `mapstructure:"daemon" yaml:"daemon"`
	Limits    LimitsConfig    `mapstructure:"limits" yaml:"limits"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior (spec ambient stack).
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing and Pyroscope profiling.
type TelemetryConfig struct {
	Enabled    bool             `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string           `mapstructure:"endpoint" yaml:"endpoint"`
	SampleRate float64          `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
	Profiling  ProfilingConfig  `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls continuous profiling via Pyroscope.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// TransportConfig controls which listeners the daemon binds.
type TransportConfig struct {
	LocalSocketPath string `mapstructure:"local_socket_path" validate:"required" yaml:"local_socket_path"`
	NetworkEnabled  bool   `mapstructure:"network_enabled" yaml:"network_enabled"`
	NetworkAddr     string `mapstructure:"network_addr" yaml:"network_addr"`
}

// DaemonConfig controls the readiness loop's pacing and admission control.
type DaemonConfig struct {
	MaxClients           int           `mapstructure:"max_clients" validate:"required,gt=0" yaml:"max_clients"`
	PollTimeout          time.Duration `mapstructure:"poll_timeout" validate:"required,gt=0" yaml:"poll_timeout"`
	ProtocolVersionMajor uint16        `mapstructure:"protocol_version_major" yaml:"protocol_version_major"`
	ProtocolVersionMinor uint16        `mapstructure:"protocol_version_minor" yaml:"protocol_version_minor"`
	ValidateOnAttach     bool          `mapstructure:"validate_on_attach" yaml:"validate_on_attach"`
}

// LimitsConfig controls per-client resource ceilings (spec §4.4).
type LimitsConfig struct {
	MaxSurfaces    int    `mapstructure:"max_surfaces" validate:"required,gt=0" yaml:"max_surfaces"`
	MaxTotalPixels uint64 `mapstructure:"max_total_pixels" validate:"required,gt=0" yaml:"max_total_pixels"`
	MaxSDCSBytes   uint64 `mapstructure:"max_sdcs_bytes" validate:"required,gt=0" yaml:"max_sdcs_bytes"`
	MaxShmBytes    uint64 `mapstructure:"max_shm_bytes" validate:"required,gt=0" yaml:"max_shm_bytes"`
}

// OutputConfig describes the single framebuffer output this daemon
// instance drives and its target composition rate.
type OutputConfig struct {
	Width       uint32  `mapstructure:"width" validate:"required,gt=0" yaml:"width"`
	Height      uint32  `mapstructure:"height" validate:"required,gt=0" yaml:"height"`
	PixelFormat string  `mapstructure:"pixel_format" validate:"required" yaml:"pixel_format"`
	TargetHz    float64 `mapstructure:"target_hz" validate:"required,gt=0" yaml:"target_hz"`
	Adaptive    bool    `mapstructure:"adaptive" yaml:"adaptive"`
}

// MetricsConfig controls the Prometheus/debug HTTP server.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// Load reads configuration from configPath (or the default XDG location
// if empty), overlays SEMADRAW_* environment variables on the keys the
// file sets, fills the remaining zero fields with defaults, and validates
// the result. When no config file is found it returns DefaultConfig()
// without reading the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return DefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes cfg as YAML to path, creating parent directories as
// needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("SEMADRAW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(GetConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

// GetConfigDir returns the directory config.Load searches by default:
// $XDG_CONFIG_HOME/semadraw or $HOME/.config/semadraw.
func GetConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "semadraw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/semadraw"
	}
	return filepath.Join(home, ".config", "semadraw")
}

// GetDefaultConfigPath returns the default config.yaml location.
func GetDefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
