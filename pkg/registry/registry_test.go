package registry

import (
	"errors"
	"testing"
)

func TestCreateAttachCommit(t *testing.T) {
	r := New()
	id := r.CreateSurface(1, 100, 100)

	if _, err := r.Commit(id); !errors.Is(err, ErrNoPendingBuffer) {
		t.Fatalf("expected ErrNoPendingBuffer, got %v", err)
	}

	if err := r.AttachBuffer(id, []byte("abc")); err != nil {
		t.Fatal(err)
	}
	frame, err := r.Commit(id)
	if err != nil {
		t.Fatal(err)
	}
	if frame != 1 {
		t.Fatalf("expected frame 1, got %d", frame)
	}

	// No new attach since last commit: stale commit.
	if _, err := r.Commit(id); !errors.Is(err, ErrStaleCommit) {
		t.Fatalf("expected ErrStaleCommit, got %v", err)
	}
}

func TestIsOwner(t *testing.T) {
	r := New()
	id := r.CreateSurface(7, 10, 10)
	owns, err := r.IsOwner(id, 7)
	if err != nil || !owns {
		t.Fatalf("expected owner match, got %v, %v", owns, err)
	}
	owns, err = r.IsOwner(id, 8)
	if err != nil || owns {
		t.Fatalf("expected owner mismatch, got %v, %v", owns, err)
	}
}

func TestCompositionOrder(t *testing.T) {
	r := New()
	a := r.CreateSurface(1, 10, 10)
	b := r.CreateSurface(1, 10, 10)
	c := r.CreateSurface(1, 10, 10)

	for _, id := range []uint32{a, b, c} {
		_ = r.AttachBuffer(id, []byte("x"))
		_, _ = r.Commit(id)
		_ = r.SetVisible(id, true)
	}
	_ = r.SetZOrder(a, 5)
	_ = r.SetZOrder(b, 1)
	_ = r.SetZOrder(c, 1)

	order := r.GetCompositionOrder()
	if len(order) != 3 {
		t.Fatalf("expected 3 surfaces, got %d", len(order))
	}
	// z=1 surfaces (b, c) come before z=5 (a); within z=1, creation order (b before c).
	if order[0].ID != b || order[1].ID != c || order[2].ID != a {
		t.Fatalf("unexpected order: %v, %v, %v", order[0].ID, order[1].ID, order[2].ID)
	}
}

func TestCompositionGuardDefersDestroy(t *testing.T) {
	r := New()
	id := r.CreateSurface(1, 10, 10)
	_ = r.AttachBuffer(id, []byte("x"))
	_, _ = r.Commit(id)
	_ = r.SetVisible(id, true)

	guard := r.BeginComposition()
	if err := r.DestroySurface(id); err != nil {
		t.Fatal(err)
	}
	// Still visible in the composition order during the pass.
	if len(r.GetCompositionOrder()) != 1 {
		t.Fatal("surface should still be visible mid-pass")
	}
	guard.End()

	if _, err := r.Get(id); err == nil {
		t.Fatal("expected surface to be gone after EndComposition")
	}
}

func TestInvisibleSurfaceExcludedFromComposition(t *testing.T) {
	r := New()
	id := r.CreateSurface(1, 10, 10)
	_ = r.AttachBuffer(id, []byte("x"))
	_, _ = r.Commit(id)
	// Never made visible.
	if len(r.GetCompositionOrder()) != 0 {
		t.Fatal("invisible surface should be excluded")
	}
}
