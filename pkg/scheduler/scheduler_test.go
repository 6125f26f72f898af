package scheduler

import (
	"testing"
	"time"
)

func TestShouldCompositeBeforeStart(t *testing.T) {
	s := New(DefaultConfig())
	if !s.ShouldComposite(time.Now()) {
		t.Fatal("a fresh scheduler should be ready to composite immediately")
	}
}

func TestBeginEndAdvancesDeadlineAndStats(t *testing.T) {
	s := New(Config{TargetHz: 100}) // 10ms interval
	base := time.Unix(0, 0)
	s.Start(base)

	s.BeginFrame(base)
	s.End(base.Add(2 * time.Millisecond))

	stats := s.Stats()
	if stats.TotalFrames != 1 {
		t.Fatalf("expected 1 frame, got %d", stats.TotalFrames)
	}
	if stats.MissedFrames != 0 {
		t.Fatalf("expected 0 missed frames, got %d", stats.MissedFrames)
	}
	if stats.LastDuration != 2*time.Millisecond {
		t.Fatalf("unexpected duration %v", stats.LastDuration)
	}
}

func TestDriftRecoverySnapsForwardWithoutDebt(t *testing.T) {
	s := New(Config{TargetHz: 100}) // 10ms interval
	base := time.Unix(0, 0)
	s.Start(base)

	// Simulate a frame that massively overruns its deadline (25ms late).
	late := base.Add(35 * time.Millisecond)
	s.BeginFrame(base)
	s.End(late)

	stats := s.Stats()
	if stats.MissedFrames != 1 {
		t.Fatalf("expected the overrun frame to count as missed, got %d", stats.MissedFrames)
	}

	// The next deadline must be strictly after `late` (no debt
	// accumulation), so one further interval must make it ready again.
	nextReady := late.Add(10 * time.Millisecond)
	if !s.ShouldComposite(nextReady) {
		t.Fatal("expected scheduler to be ready one interval after the late frame ended")
	}
}

func TestAdaptiveStepsDownOnHighMissRate(t *testing.T) {
	a := NewAdaptive(60, DefaultAdaptiveConfig())
	base := time.Unix(0, 0)
	a.Start(base)

	// Force every frame in the window to miss badly.
	for i := 0; i < adjustWindow; i++ {
		a.BeginFrame(base)
		a.End(base.Add(100 * time.Millisecond))
		base = base.Add(100 * time.Millisecond)
	}
	a.MaybeAdjust()

	if a.CurrentHz() != 50 {
		t.Fatalf("expected step down to 50Hz, got %v", a.CurrentHz())
	}
}

func TestAdaptiveStepsUpOnLowMissRate(t *testing.T) {
	a := NewAdaptive(60, DefaultAdaptiveConfig())
	base := time.Unix(0, 0)
	a.Start(base)
	interval := a.Interval()

	for i := 0; i < adjustWindow; i++ {
		a.BeginFrame(base)
		base = base.Add(interval / 2) // always comfortably within deadline
		a.End(base)
	}
	a.MaybeAdjust()

	if a.CurrentHz() != 65 {
		t.Fatalf("expected step up to 65Hz, got %v", a.CurrentHz())
	}
}
