package damage

import (
	"testing"

	"github.com/semadraw/semadraw/pkg/geom"
)

func TestAddRegionMergesOverlapping(t *testing.T) {
	tr := New()
	tr.AddRegion(1, geom.Rect{X: 0, Y: 0, W: 10, H: 10})
	tr.AddRegion(1, geom.Rect{X: 5, Y: 0, W: 10, H: 10})

	got := tr.Get(1)
	if got.Full {
		t.Fatal("should not be full damage")
	}
	if len(got.Rects) != 1 {
		t.Fatalf("expected merge into 1 rect, got %d", len(got.Rects))
	}
}

func TestAddRegionPromotesToFullPast32(t *testing.T) {
	tr := New()
	// Disjoint rects spread far apart so none merge.
	for i := 0; i < 33; i++ {
		x := float32(i * 1000)
		tr.AddRegion(1, geom.Rect{X: x, Y: 0, W: 1, H: 1})
	}
	got := tr.Get(1)
	if !got.Full {
		t.Fatal("expected promotion to full damage past 32 rects")
	}
}

func TestClearResetsDamage(t *testing.T) {
	tr := New()
	tr.AddRegion(1, geom.Rect{X: 0, Y: 0, W: 1, H: 1})
	tr.Clear(1)
	if tr.IsDamaged(1) {
		t.Fatal("expected no damage after Clear")
	}
}

func TestOutputFullRepaintConsume(t *testing.T) {
	o := &Output{}
	if o.Consume() {
		t.Fatal("should start without a pending repaint")
	}
	o.RequestFullRepaint()
	if !o.Consume() {
		t.Fatal("expected pending repaint")
	}
	if o.Consume() {
		t.Fatal("repaint flag should be cleared after Consume")
	}
}

func TestEmptyRectIgnored(t *testing.T) {
	tr := New()
	tr.AddRegion(1, geom.Rect{})
	if tr.IsDamaged(1) {
		t.Fatal("empty rect should not register damage")
	}
}
