package geom

import "testing"

func TestIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 5, Y: 5, W: 10, H: 10}
	if !a.Intersects(b) {
		t.Fatal("expected overlap")
	}
	c := Rect{X: 20, Y: 20, W: 5, H: 5}
	if a.Intersects(c) {
		t.Fatal("expected no overlap")
	}
}

func TestIntersection(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 5, Y: 5, W: 10, H: 10}
	got := a.Intersection(b)
	want := Rect{X: 5, Y: 5, W: 5, H: 5}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	disjoint := Rect{X: 100, Y: 100, W: 1, H: 1}
	if got := a.Intersection(disjoint); !got.IsEmpty() {
		t.Fatalf("expected empty intersection, got %+v", got)
	}
}

func TestUnionWith(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 5, Y: 5, W: 10, H: 10}
	got := a.UnionWith(b)
	want := Rect{X: 0, Y: 0, W: 15, H: 15}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if got := a.UnionWith(Rect{}); got != a {
		t.Fatalf("union with empty rect should be identity, got %+v", got)
	}
}

func TestIsEmptyAndArea(t *testing.T) {
	if (Rect{}).Area() != 0 {
		t.Fatal("zero rect should have zero area")
	}
	r := Rect{W: 4, H: 5}
	if r.Area() != 20 {
		t.Fatalf("expected area 20, got %v", r.Area())
	}
	neg := Rect{W: -1, H: 5}
	if !neg.IsEmpty() {
		t.Fatal("negative width rect should be empty")
	}
}

func TestIsFiniteF32(t *testing.T) {
	if !IsFiniteF32(0) || !IsFiniteF32(-0.0) || !IsFiniteF32(1.5) {
		t.Fatal("finite values rejected")
	}
	inf := float32(1)
	for range [128]struct{}{} {
		inf *= 2
	}
	if IsFiniteF32(inf) {
		t.Fatal("infinity accepted as finite")
	}
}

func TestIsNonNegative(t *testing.T) {
	if !IsNonNegative(0) || !IsNonNegative(-0.0) || !IsNonNegative(3) {
		t.Fatal("non-negative rejected")
	}
	if IsNonNegative(-1) {
		t.Fatal("negative accepted")
	}
}
