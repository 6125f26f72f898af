// Package scheduler implements the fixed-rate frame deadline scheduler
// described in spec §4.7, plus an adaptive variant that retunes its target
// rate from observed miss rate.
//
// Structurally grounded on the teacher's pkg/flusher.BackgroundUploader
// Config/Default pattern (a Config struct with a DefaultConfig
// constructor), but restructured synchronous — spec §5 mandates a
// single-threaded cooperative core, so there is no background goroutine
// here, only begin_frame/end called from the daemon's own poll loop.
package scheduler

import "time"

// Config configures a fixed-rate Scheduler.
type Config struct {
	TargetHz float64
}

// DefaultConfig returns a scheduler configuration targeting 60 Hz.
func DefaultConfig() Config {
	return Config{TargetHz: 60}
}

// Stats holds running frame-timing statistics (spec §4.7).
type Stats struct {
	TotalFrames  uint64
	MissedFrames uint64
	LastDuration time.Duration
	AvgDuration  time.Duration // EMA, alpha = 0.1
	MinDuration  time.Duration
	MaxDuration  time.Duration
}

const emaAlpha = 0.1

// Scheduler drives composition at a fixed rate with drift recovery: a
// frame that finishes late does not accumulate debt against future frames,
// it simply snaps to the next interval boundary strictly after now.
type Scheduler struct {
	interval       time.Duration
	nextDeadlineNs int64
	started        bool

	frameStart int64
	stats      Stats
}

// New creates a Scheduler for the given target rate.
func New(cfg Config) *Scheduler {
	return &Scheduler{interval: hzToInterval(cfg.TargetHz)}
}

func hzToInterval(hz float64) time.Duration {
	return time.Duration(1e9 / hz)
}

// Start initializes the first deadline relative to now.
func (s *Scheduler) Start(now time.Time) {
	s.nextDeadlineNs = now.UnixNano() + int64(s.interval)
	s.started = true
}

// ShouldComposite reports whether the scheduler's deadline has passed.
func (s *Scheduler) ShouldComposite(now time.Time) bool {
	if !s.started {
		return true
	}
	return now.UnixNano() >= s.nextDeadlineNs
}

// BeginFrame records the frame's start timestamp.
func (s *Scheduler) BeginFrame(now time.Time) {
	s.frameStart = now.UnixNano()
}

// End records the frame's duration, updates stats, and advances the
// deadline, snapping forward past any accumulated drift instead of
// accumulating debt.
func (s *Scheduler) End(now time.Time) {
	endNs := now.UnixNano()
	duration := time.Duration(endNs - s.frameStart)

	s.stats.TotalFrames++
	s.stats.LastDuration = duration
	if s.stats.TotalFrames == 1 {
		s.stats.AvgDuration = duration
		s.stats.MinDuration = duration
		s.stats.MaxDuration = duration
	} else {
		s.stats.AvgDuration = time.Duration(emaAlpha*float64(duration) + (1-emaAlpha)*float64(s.stats.AvgDuration))
		if duration < s.stats.MinDuration {
			s.stats.MinDuration = duration
		}
		if duration > s.stats.MaxDuration {
			s.stats.MaxDuration = duration
		}
	}

	halfInterval := int64(s.interval / 2)
	missed := endNs > s.nextDeadlineNs+halfInterval
	if missed {
		s.stats.MissedFrames++
	}

	if !s.started {
		s.nextDeadlineNs = endNs + int64(s.interval)
		s.started = true
		return
	}

	next := s.nextDeadlineNs + int64(s.interval)
	for next <= endNs {
		next += int64(s.interval)
	}
	s.nextDeadlineNs = next
}

// Stats returns a snapshot of the scheduler's running statistics.
func (s *Scheduler) Stats() Stats { return s.stats }

// SetTargetHz retunes the scheduler's target rate, used by the adaptive
// variant. It does not reset accumulated stats.
func (s *Scheduler) SetTargetHz(hz float64) {
	s.interval = hzToInterval(hz)
}

// Interval returns the scheduler's current frame interval.
func (s *Scheduler) Interval() time.Duration { return s.interval }
