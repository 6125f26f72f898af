package telemetry

// Config holds OpenTelemetry tracing configuration for the daemon.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64
	// Profiling enables continuous Pyroscope profiling alongside tracing.
	Profiling ProfilingConfig
}

// DefaultConfig returns tracing disabled by default — a daemon rendering
// at 60+ fps should opt in explicitly rather than pay span overhead on
// every composition pass.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "semadraw",
		ServiceVersion: "dev",
		SampleRate:     1.0,
		Profiling: ProfilingConfig{
			Enabled:        false,
			ServiceName:    "semadraw",
			ServiceVersion: "dev",
			ProfileTypes:   []string{"cpu", "alloc_space"},
		},
	}
}
