package sdcs

import "testing"

func TestEncodeFillRectRoundTrips(t *testing.T) {
	e := NewEncoder()
	if err := e.FillRect(1, 2, 3, 4, RGBA{R: 1, G: 0, B: 0, A: 1}); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	e.End()
	data := e.buildContainer()

	if err := Validate(data); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestEncodeEveryOpcodeValidates(t *testing.T) {
	e := NewEncoder()
	e.EncodeReset()
	if err := e.SetClipRects([]Rect4{{X: 0, Y: 0, W: 10, H: 10}}); err != nil {
		t.Fatalf("SetClipRects: %v", err)
	}
	e.ClearClip()
	e.SetBlend(BlendSrcOver)
	e.SetTransform(1, 0, 0, 1, 0, 0)
	e.ResetTransform()
	e.SetAntialias(true)
	c := RGBA{R: 1, G: 1, B: 1, A: 1}
	if err := e.FillRect(0, 0, 10, 10, c); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	if err := e.StrokeRect(0, 0, 10, 10, 2, c); err != nil {
		t.Fatalf("StrokeRect: %v", err)
	}
	if err := e.StrokeLine(0, 0, 10, 10, 2, c); err != nil {
		t.Fatalf("StrokeLine: %v", err)
	}
	e.SetStrokeJoin(JoinRound)
	e.SetStrokeCap(CapRound)
	e.SetMiterLimit(4)
	if err := e.StrokeQuadBezier(0, 0, 5, 5, 10, 0, 2, c); err != nil {
		t.Fatalf("StrokeQuadBezier: %v", err)
	}
	if err := e.StrokeCubicBezier(0, 0, 3, 3, 6, 6, 10, 0, 2, c); err != nil {
		t.Fatalf("StrokeCubicBezier: %v", err)
	}
	if err := e.StrokePath([]Point{{X: 0, Y: 0}, {X: 10, Y: 10}}, 2, c); err != nil {
		t.Fatalf("StrokePath: %v", err)
	}
	if err := e.BlitImage(0, 0, 2, 2, make([]byte, 2*2*4)); err != nil {
		t.Fatalf("BlitImage: %v", err)
	}
	run := GlyphRun{
		BaseX: 0, BaseY: 0, Color: c,
		CellW: 8, CellH: 8, AtlasCols: 16, AtlasW: 128, AtlasH: 128,
		Glyphs: []Glyph{{Index: 1, DX: 0, DY: 0}},
		Alpha:  make([]byte, 128*128),
	}
	if err := e.DrawGlyphRun(run); err != nil {
		t.Fatalf("DrawGlyphRun: %v", err)
	}
	e.End()

	data := e.buildContainer()
	if err := Validate(data); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	build := func() []byte {
		e := NewEncoder()
		_ = e.FillRect(1, 2, 3, 4, RGBA{R: 1})
		e.End()
		return e.buildContainer()
	}
	a := build()
	b := build()
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("byte %d differs: %x vs %x", i, a[i], b[i])
		}
	}
}

func TestEncodeAlignment(t *testing.T) {
	e := NewEncoder()
	e.EncodeReset() // zero-length payload, header alone is 8 bytes, already aligned
	e.ClearClip()
	if e.buf.Len()%8 != 0 {
		t.Fatalf("buffer not 8-byte aligned after zero-payload records: %d", e.buf.Len())
	}
}

func TestStrokeRectRejectsZeroWidth(t *testing.T) {
	e := NewEncoder()
	if err := e.StrokeRect(0, 0, 1, 1, 0, RGBA{}); err == nil {
		t.Fatal("expected error for stroke_width == 0")
	}
}

func TestStrokePathRejectsOutOfRangeCounts(t *testing.T) {
	e := NewEncoder()
	if err := e.StrokePath([]Point{{}}, 1, RGBA{}); err == nil {
		t.Fatal("expected error for 1-point path")
	}
	many := make([]Point, MaxStrokePathPoints+1)
	if err := e.StrokePath(many, 1, RGBA{}); err == nil {
		t.Fatal("expected error for 65536-point path")
	}
}

func TestBlitImageRejectsSizeMismatch(t *testing.T) {
	e := NewEncoder()
	if err := e.BlitImage(0, 0, 2, 2, make([]byte, 10)); err == nil {
		t.Fatal("expected error for mismatched image byte length")
	}
}

func TestDrawGlyphRunRejectsEmpty(t *testing.T) {
	e := NewEncoder()
	run := GlyphRun{AtlasW: 1, AtlasH: 1, Alpha: make([]byte, 1)}
	if err := e.DrawGlyphRun(run); err == nil {
		t.Fatal("expected error for zero-glyph run")
	}
}

func TestFillRectRejectsNonFinite(t *testing.T) {
	e := NewEncoder()
	nan := float32(0)
	nan = nan / nan
	if err := e.FillRect(0, 0, nan, 1, RGBA{}); err == nil {
		t.Fatal("expected error for NaN width")
	}
}
