package session

import (
	"testing"
	"time"
)

func TestNewSessionStartsAwaitingHello(t *testing.T) {
	s := NewSession(1, &fakeConn{}, time.Now())
	if s.State != StateAwaitingHello {
		t.Fatalf("got state %v, want awaiting_hello", s.State)
	}
}

func TestAddAndRemoveSurface(t *testing.T) {
	s := NewSession(1, &fakeConn{}, time.Now())
	s.AddSurface(10, 100)
	s.AddSurface(11, 200)
	if !s.OwnsSurface(10) || !s.OwnsSurface(11) {
		t.Fatal("expected both surfaces owned")
	}
	if s.Usage.Surfaces != 2 || s.Usage.TotalPixels != 300 {
		t.Fatalf("unexpected usage: %+v", s.Usage)
	}

	s.RemoveSurface(10, 100)
	if s.OwnsSurface(10) {
		t.Fatal("surface 10 should have been removed")
	}
	if s.Usage.Surfaces != 1 || s.Usage.TotalPixels != 200 {
		t.Fatalf("unexpected usage after removal: %+v", s.Usage)
	}
}

func TestManagerCreateGetRemove(t *testing.T) {
	m := NewManager()
	s := NewSession(1, &fakeConn{}, time.Now())
	if err := m.Create(s); err != nil {
		t.Fatal(err)
	}
	if err := m.Create(s); err == nil {
		t.Fatal("expected error creating duplicate session id")
	}
	got, err := m.Get(1)
	if err != nil || got != s {
		t.Fatalf("Get returned %+v, %v", got, err)
	}
	m.Remove(1)
	if _, err := m.Get(1); err == nil {
		t.Fatal("expected error after Remove")
	}
}

func TestUsageWouldExceed(t *testing.T) {
	limits := DefaultResourceLimits()
	u := Usage{Surfaces: limits.MaxSurfaces - 1}
	if u.WouldExceed(limits, 1, 0, 0, 0) {
		t.Fatal("should not exceed at exactly the limit")
	}
	if !u.WouldExceed(limits, 2, 0, 0, 0) {
		t.Fatal("should exceed past the limit")
	}
}
