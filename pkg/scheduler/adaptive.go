package scheduler

// adjustWindow is the number of frames between adaptive rate
// reconsiderations (spec §4.7).
const adjustWindow = 60

// AdaptiveConfig bounds and steps the rate adjustments an AdaptiveScheduler
// may make.
type AdaptiveConfig struct {
	MinHz      float64
	MaxHz      float64
	StepDownHz float64
	StepUpHz   float64
}

// DefaultAdaptiveConfig returns the default bounds and step sizes from
// spec §4.7.
func DefaultAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{MinHz: 30, MaxHz: 120, StepDownHz: 10, StepUpHz: 5}
}

// AdaptiveScheduler wraps a fixed-rate Scheduler, retuning target_hz every
// adjustWindow frames based on the miss rate observed in that window:
// miss-rate > 10% steps down, miss-rate < 2% steps up, otherwise holds.
type AdaptiveScheduler struct {
	*Scheduler
	cfg AdaptiveConfig

	currentHz          float64
	windowStartFrames  uint64
	windowStartMissed  uint64
}

// NewAdaptive creates an AdaptiveScheduler starting at startHz.
func NewAdaptive(startHz float64, cfg AdaptiveConfig) *AdaptiveScheduler {
	return &AdaptiveScheduler{
		Scheduler: New(Config{TargetHz: startHz}),
		cfg:       cfg,
		currentHz: startHz,
	}
}

// MaybeAdjust reconsiders target_hz once adjustWindow frames have elapsed
// since the last adjustment (or since start). Call once per frame, after
// End.
func (a *AdaptiveScheduler) MaybeAdjust() {
	stats := a.Stats()
	framesSinceWindow := stats.TotalFrames - a.windowStartFrames
	if framesSinceWindow < adjustWindow {
		return
	}

	missedInWindow := stats.MissedFrames - a.windowStartMissed
	missRate := float64(missedInWindow) / float64(framesSinceWindow)

	switch {
	case missRate > 0.10 && a.currentHz > a.cfg.MinHz:
		a.currentHz -= a.cfg.StepDownHz
		if a.currentHz < a.cfg.MinHz {
			a.currentHz = a.cfg.MinHz
		}
		a.SetTargetHz(a.currentHz)
	case missRate < 0.02 && a.currentHz < a.cfg.MaxHz:
		a.currentHz += a.cfg.StepUpHz
		if a.currentHz > a.cfg.MaxHz {
			a.currentHz = a.cfg.MaxHz
		}
		a.SetTargetHz(a.currentHz)
	}

	a.windowStartFrames = stats.TotalFrames
	a.windowStartMissed = stats.MissedFrames
}

// CurrentHz returns the scheduler's current target rate.
func (a *AdaptiveScheduler) CurrentHz() float64 { return a.currentHz }
