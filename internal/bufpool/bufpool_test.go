package bufpool

import "testing"

func TestGetReturnsExactSize(t *testing.T) {
	p := NewPool()
	for _, size := range []int{1, SmallSize, SmallSize + 1, MediumSize, LargeSize, LargeSize + 1} {
		buf := p.Get(size)
		if len(buf) != size {
			t.Errorf("Get(%d) len = %d, want %d", size, len(buf), size)
		}
	}
}

func TestPutReusesTieredBuffer(t *testing.T) {
	p := NewPool()
	buf := p.Get(SmallSize)
	buf[0] = 0xAB
	p.Put(buf)

	reused := p.Get(SmallSize)
	if cap(reused) != SmallSize {
		t.Fatalf("expected reused buffer to keep tier capacity, got %d", cap(reused))
	}
}

func TestPutIgnoresNilAndOversized(t *testing.T) {
	p := NewPool()
	p.Put(nil) // must not panic

	oversized := make([]byte, LargeSize+1)
	p.Put(oversized) // must not panic; silently dropped
}

func TestGlobalPoolRoundTrip(t *testing.T) {
	buf := Get(MediumSize)
	if len(buf) != MediumSize {
		t.Fatalf("Get(%d) len = %d", MediumSize, len(buf))
	}
	Put(buf)
}
