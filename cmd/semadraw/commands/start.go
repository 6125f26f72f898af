package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/semadraw/semadraw/internal/backend/headless"
	"github.com/semadraw/semadraw/internal/configwatch"
	"github.com/semadraw/semadraw/internal/daemon"
	"github.com/semadraw/semadraw/internal/logger"
	"github.com/semadraw/semadraw/internal/metrics"
	"github.com/semadraw/semadraw/internal/telemetry"
	"github.com/semadraw/semadraw/pkg/compositor"
	"github.com/semadraw/semadraw/pkg/config"
	"github.com/semadraw/semadraw/pkg/damage"
	"github.com/semadraw/semadraw/pkg/registry"
	"github.com/semadraw/semadraw/pkg/scheduler"
)

const metricsShutdownTimeout = 5 * time.Second

var (
	foreground  bool
	pidFile     string
	logFile     string
	backendName string
	metricsAddr string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the SemaDraw compositor daemon",
	Long: `Start the SemaDraw compositor daemon with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/semadraw/config.yaml.

Examples:
  # Start in foreground
  semadraw start --foreground

  # Start with a custom config file
  semadraw start --config /etc/semadraw/config.yaml --foreground

  # Start with environment variable overrides
  SEMADRAW_LOGGING_LEVEL=DEBUG semadraw start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", true, "Run in foreground")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/semadraw/semadraw.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file")
	startCmd.Flags().StringVar(&backendName, "backend", "headless", "Presentation backend (headless|software|kms|x11|vulkan|wayland)")
	startCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Override the configured metrics HTTP listen address")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if logFile != "" {
		cfg.Logging.Output = logFile
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "semadraw",
		ServiceVersion: Version,
		SampleRate:     cfg.Telemetry.SampleRate,
		Profiling: telemetry.ProfilingConfig{
			Enabled:        cfg.Telemetry.Profiling.Enabled,
			ServiceName:    "semadraw",
			ServiceVersion: Version,
			Endpoint:       cfg.Telemetry.Profiling.Endpoint,
			ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
		},
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "semadraw",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("starting semadraw", "version", Version, "config_source", getConfigSource(GetConfigFile()))
	logger.Info("log level configured", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("per-client limits",
		"max_surfaces", cfg.Limits.MaxSurfaces,
		"max_total_pixels", humanize.Bytes(cfg.Limits.MaxTotalPixels),
		"max_sdcs_bytes", humanize.Bytes(cfg.Limits.MaxSDCSBytes),
		"max_shm_bytes", humanize.Bytes(cfg.Limits.MaxShmBytes))
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("telemetry disabled")
	}

	if metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = metricsAddr
	}

	var daemonMetrics *metrics.DaemonMetrics
	var metricsSrv *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		daemonMetrics = metrics.NewDaemonMetrics()
	}

	d, err := daemon.New(daemon.Config{
		LocalSocketPath:      cfg.Transport.LocalSocketPath,
		NetworkAddr:          networkAddr(cfg),
		MaxClients:           cfg.Daemon.MaxClients,
		PollTimeout:          cfg.Daemon.PollTimeout,
		ProtocolVersionMajor: cfg.Daemon.ProtocolVersionMajor,
		ProtocolVersionMinor: cfg.Daemon.ProtocolVersionMinor,
		ValidateOnAttach:     cfg.Daemon.ValidateOnAttach,
	}, slog.Default())
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	d.SetMetrics(daemonMetrics)

	if cfg.Metrics.Enabled {
		metricsSrv, _ = metrics.NewServer(cfg.Metrics.Addr, d)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, metricsShutdownTimeout)
			defer cancel()
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	backend, err := selectBackend(backendName)
	if err != nil {
		return err
	}

	output := buildOutput(cfg, backend, d.Registry())
	if err := d.AddOutput(output); err != nil {
		return fmt.Errorf("add output: %w", err)
	}

	if GetConfigFile() != "" {
		watcher, err := configwatch.New(GetConfigFile())
		if err == nil {
			if err := watcher.LoadInitial(); err == nil {
				go func() {
					if err := watcher.Start(ctx); err != nil {
						logger.Warn("config watcher stopped", "error", err)
					}
				}()
				defer watcher.Stop()
			}
		}
	}

	if pidFile == "" {
		pidFile = GetDefaultPidFile()
		if err := os.MkdirAll(filepath.Dir(pidFile), 0o755); err != nil {
			return fmt.Errorf("create PID file directory: %w", err)
		}
	}
	if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFile) }()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- d.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("daemon running, press Ctrl+C to stop", "local_socket", cfg.Transport.LocalSocketPath)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()
		if err := <-serverDone; err != nil {
			logger.Error("daemon shutdown error", "error", err)
			return err
		}
		logger.Info("daemon stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("daemon error", "error", err)
			return err
		}
		logger.Info("daemon stopped")
	}

	return nil
}

func networkAddr(cfg *config.Config) string {
	if !cfg.Transport.NetworkEnabled {
		return ""
	}
	return cfg.Transport.NetworkAddr
}

// selectBackend constructs the requested presentation backend. Only
// "headless" is implemented in-tree; the others name real rasterization
// backends that are external collaborators (spec §4.8 Non-goals) and are
// rejected explicitly rather than faked.
func selectBackend(name string) (compositor.Backend, error) {
	switch name {
	case "headless", "":
		return headless.New(), nil
	case "software", "kms", "x11", "vulkan", "wayland":
		return nil, fmt.Errorf("backend %q is not implemented in this build (external collaborator)", name)
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

// buildOutput constructs one Orchestrator from configuration, sharing
// the daemon's own surface registry so composition sees every attached
// surface.
func buildOutput(cfg *config.Config, backend compositor.Backend, reg *registry.Registry) *compositor.Orchestrator {
	fbDesc := compositor.FramebufferDesc{
		Width:       cfg.Output.Width,
		Height:      cfg.Output.Height,
		PixelFormat: cfg.Output.PixelFormat,
		RefreshHz:   cfg.Output.TargetHz,
	}

	if cfg.Output.Adaptive {
		clock := scheduler.NewAdaptive(cfg.Output.TargetHz, scheduler.DefaultAdaptiveConfig())
		return compositor.New(clock, damage.New(), &damage.Output{}, reg, backend, fbDesc, compositor.Color{})
	}
	clock := scheduler.New(scheduler.Config{TargetHz: cfg.Output.TargetHz})
	return compositor.New(clock, damage.New(), &damage.Output{}, reg, backend, fbDesc, compositor.Color{})
}
