package sdcs

import (
	"bytes"
	"fmt"
	"os"
)

// Encoder builds an append-only SDCS command-record stream. Each method
// appends exactly one record: an 8-byte header followed by its payload and
// 0-7 pad bytes bringing the total to an 8-byte boundary (spec §4.1).
//
// An Encoder is not safe for concurrent use; callers build one SDCS buffer
// per goroutine, matching how clients build one buffer per frame.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns a ready-to-use Encoder.
func NewEncoder() *Encoder {
	e := &Encoder{}
	e.buf.Grow(256)
	return e
}

// Reset discards any buffered records and reuses the underlying storage.
func (e *Encoder) Reset() {
	e.buf.Reset()
}

// record writes a record header for op with the given payload length, then
// the payload bytes (already placed in payload), then pads to 8 bytes.
func (e *Encoder) record(op Opcode, flags uint16, payload []byte) {
	var hdr [RecordHeaderSize]byte
	byteOrder.PutUint16(hdr[0:2], uint16(op))
	byteOrder.PutUint16(hdr[2:4], flags)
	byteOrder.PutUint32(hdr[4:8], uint32(len(payload)))
	e.buf.Write(hdr[:])
	e.buf.Write(payload)

	total := RecordHeaderSize + len(payload)
	if pad := align8(total) - total; pad > 0 {
		var zeros [8]byte
		e.buf.Write(zeros[:pad])
	}
}

func putF32(dst []byte, v float32) {
	byteOrder.PutUint32(dst, f32bits(v))
}

// EncodeReset appends a RESET record.
func (e *Encoder) EncodeReset() { e.record(OpReset, 0, nil) }

// SetClipRects appends a SET_CLIP_RECTS record with count and count*(x,y,w,h).
func (e *Encoder) SetClipRects(rects []Rect4) error {
	payload := make([]byte, 4+len(rects)*16)
	byteOrder.PutUint32(payload[0:4], uint32(len(rects)))
	off := 4
	for _, r := range rects {
		putF32(payload[off:], r.X)
		putF32(payload[off+4:], r.Y)
		putF32(payload[off+8:], r.W)
		putF32(payload[off+12:], r.H)
		off += 16
	}
	e.record(OpSetClipRects, 0, payload)
	return nil
}

// ClearClip appends a CLEAR_CLIP record.
func (e *Encoder) ClearClip() { e.record(OpClearClip, 0, nil) }

// SetBlend appends a SET_BLEND record.
func (e *Encoder) SetBlend(mode BlendMode) {
	var payload [4]byte
	byteOrder.PutUint32(payload[:], uint32(mode))
	e.record(OpSetBlend, 0, payload[:])
}

// SetTransform appends a SET_TRANSFORM_2D record with the row-major affine
// matrix (a,b,c,d,e,f).
func (e *Encoder) SetTransform(a, b, c, d, ee, f float32) {
	var payload [24]byte
	vals := [6]float32{a, b, c, d, ee, f}
	for i, v := range vals {
		putF32(payload[i*4:], v)
	}
	e.record(OpSetTransform2D, 0, payload[:])
}

// ResetTransform appends a RESET_TRANSFORM record.
func (e *Encoder) ResetTransform() { e.record(OpResetTransform, 0, nil) }

// SetAntialias appends a SET_ANTIALIAS record.
func (e *Encoder) SetAntialias(on bool) {
	var payload [4]byte
	if on {
		byteOrder.PutUint32(payload[:], 1)
	}
	e.record(OpSetAntialias, 0, payload[:])
}

// Rect4 is a plain (x,y,w,h) float rectangle, used only for the encoder's
// public API; pkg/geom.Rect is used internally by the compositor/damage
// tracker.
type Rect4 struct{ X, Y, W, H float32 }

// RGBA is a float color, matching the r,g,b,a:f32 fields in every drawing
// payload.
type RGBA struct{ R, G, B, A float32 }

func encode8f32(payload []byte, vals ...float32) {
	for i, v := range vals {
		putF32(payload[i*4:], v)
	}
}

// FillRect appends a FILL_RECT record.
func (e *Encoder) FillRect(x, y, w, h float32, c RGBA) error {
	if !geometryFinite(x, y, w, h) || !colorFinite(c) {
		return fmt.Errorf("%w: fill_rect has non-finite field", ErrInvalidArgument)
	}
	var payload [32]byte
	encode8f32(payload[:], x, y, w, h, c.R, c.G, c.B, c.A)
	e.record(OpFillRect, 0, payload[:])
	return nil
}

// StrokeRect appends a STROKE_RECT record.
func (e *Encoder) StrokeRect(x, y, w, h, strokeWidth float32, c RGBA) error {
	if strokeWidth <= 0 {
		return fmt.Errorf("%w: stroke_width must be > 0", ErrInvalidArgument)
	}
	if !geometryFinite(x, y, w, h) || !colorFinite(c) {
		return fmt.Errorf("%w: stroke_rect has non-finite field", ErrInvalidArgument)
	}
	var payload [36]byte
	encode8f32(payload[:], x, y, w, h, strokeWidth, c.R, c.G, c.B, c.A)
	e.record(OpStrokeRect, 0, payload[:])
	return nil
}

// StrokeLine appends a STROKE_LINE record.
func (e *Encoder) StrokeLine(x0, y0, x1, y1, strokeWidth float32, c RGBA) error {
	if strokeWidth <= 0 {
		return fmt.Errorf("%w: stroke_width must be > 0", ErrInvalidArgument)
	}
	var payload [36]byte
	encode8f32(payload[:], x0, y0, x1, y1, strokeWidth, c.R, c.G, c.B, c.A)
	e.record(OpStrokeLine, 0, payload[:])
	return nil
}

// SetStrokeJoin appends a SET_STROKE_JOIN record.
func (e *Encoder) SetStrokeJoin(join StrokeJoin) {
	var payload [4]byte
	byteOrder.PutUint32(payload[:], uint32(join))
	e.record(OpSetStrokeJoin, 0, payload[:])
}

// SetStrokeCap appends a SET_STROKE_CAP record.
func (e *Encoder) SetStrokeCap(cap StrokeCap) {
	var payload [4]byte
	byteOrder.PutUint32(payload[:], uint32(cap))
	e.record(OpSetStrokeCap, 0, payload[:])
}

// SetMiterLimit appends a SET_MITER_LIMIT record.
func (e *Encoder) SetMiterLimit(limit float32) {
	var payload [4]byte
	putF32(payload[:], limit)
	e.record(OpSetMiterLimit, 0, payload[:])
}

// StrokeQuadBezier appends a STROKE_QUAD_BEZIER record (11 floats: p0,p1,p2,
// strokeWidth, r,g,b,a).
func (e *Encoder) StrokeQuadBezier(x0, y0, x1, y1, x2, y2, strokeWidth float32, c RGBA) error {
	if strokeWidth <= 0 {
		return fmt.Errorf("%w: stroke_width must be > 0", ErrInvalidArgument)
	}
	var payload [44]byte
	encode8f32(payload[:], x0, y0, x1, y1, x2, y2, strokeWidth, c.R, c.G, c.B, c.A)
	e.record(OpStrokeQuadBezier, 0, payload[:])
	return nil
}

// StrokeCubicBezier appends a STROKE_CUBIC_BEZIER record (13 floats: p0,p1,
// p2,p3, strokeWidth, r,g,b,a).
func (e *Encoder) StrokeCubicBezier(x0, y0, x1, y1, x2, y2, x3, y3, strokeWidth float32, c RGBA) error {
	if strokeWidth <= 0 {
		return fmt.Errorf("%w: stroke_width must be > 0", ErrInvalidArgument)
	}
	var payload [52]byte
	encode8f32(payload[:], x0, y0, x1, y1, x2, y2, x3, y3, strokeWidth, c.R, c.G, c.B, c.A)
	e.record(OpStrokeCubicBezier, 0, payload[:])
	return nil
}

// Point is a single (x,y) vertex, used by StrokePath.
type Point struct{ X, Y float32 }

// StrokePath appends a STROKE_PATH record. Rejects paths with fewer than 2
// or more than 65535 points (spec §4.1/§8).
func (e *Encoder) StrokePath(points []Point, strokeWidth float32, c RGBA) error {
	if len(points) < MinStrokePathPoints || len(points) > MaxStrokePathPoints {
		return fmt.Errorf("%w: stroke_path needs 2..65535 points, got %d", ErrTooManyPoints, len(points))
	}
	if strokeWidth <= 0 {
		return fmt.Errorf("%w: stroke_width must be > 0", ErrInvalidArgument)
	}
	payload := make([]byte, 24+len(points)*8)
	encode8f32(payload[:20], strokeWidth, c.R, c.G, c.B)
	putF32(payload[16:20], c.A)
	byteOrder.PutUint32(payload[20:24], uint32(len(points)))
	off := 24
	for _, p := range points {
		putF32(payload[off:], p.X)
		putF32(payload[off+4:], p.Y)
		off += 8
	}
	e.record(OpStrokePath, 0, payload)
	return nil
}

// BlitImage appends a BLIT_IMAGE record. rgba must have exactly w*h*4 bytes.
func (e *Encoder) BlitImage(dstX, dstY float32, w, h uint32, rgba []byte) error {
	want := int(w) * int(h) * 4
	if len(rgba) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrImageSize, len(rgba), want)
	}
	payload := make([]byte, 16+len(rgba))
	putF32(payload[0:4], dstX)
	putF32(payload[4:8], dstY)
	byteOrder.PutUint32(payload[8:12], w)
	byteOrder.PutUint32(payload[12:16], h)
	copy(payload[16:], rgba)
	e.record(OpBlitImage, 0, payload)
	return nil
}

// Glyph places one glyph-atlas cell at an offset from a glyph run's base
// position.
type Glyph struct {
	Index  uint32
	DX, DY float32
}

// GlyphRun describes a DRAW_GLYPH_RUN call.
type GlyphRun struct {
	BaseX, BaseY   float32
	Color          RGBA
	CellW, CellH   uint32
	AtlasCols      uint32
	AtlasW, AtlasH uint32
	Glyphs         []Glyph
	Alpha          []byte // atlas alpha bytes, length AtlasW*AtlasH
}

// DrawGlyphRun appends a DRAW_GLYPH_RUN record. Rejects empty runs and
// atlases whose declared dimensions don't match the supplied alpha bytes.
func (e *Encoder) DrawGlyphRun(run GlyphRun) error {
	if len(run.Glyphs) == 0 {
		return fmt.Errorf("%w: glyph run has zero glyphs", ErrGlyphRun)
	}
	wantAlpha := int(run.AtlasW) * int(run.AtlasH)
	if len(run.Alpha) != wantAlpha {
		return fmt.Errorf("%w: alpha buffer is %d bytes, want %d", ErrGlyphRun, len(run.Alpha), wantAlpha)
	}

	headerLen := 6*4 + 6*4 // base_x,base_y,r,g,b,a + cell_w,cell_h,atlas_cols,atlas_w,atlas_h,n
	payload := make([]byte, headerLen+len(run.Glyphs)*12+len(run.Alpha))
	encode8f32(payload[:24], run.BaseX, run.BaseY, run.Color.R, run.Color.G, run.Color.B, run.Color.A)
	byteOrder.PutUint32(payload[24:28], run.CellW)
	byteOrder.PutUint32(payload[28:32], run.CellH)
	byteOrder.PutUint32(payload[32:36], run.AtlasCols)
	byteOrder.PutUint32(payload[36:40], run.AtlasW)
	byteOrder.PutUint32(payload[40:44], run.AtlasH)
	byteOrder.PutUint32(payload[44:48], uint32(len(run.Glyphs)))
	off := 48
	for _, g := range run.Glyphs {
		byteOrder.PutUint32(payload[off:], g.Index)
		putF32(payload[off+4:], g.DX)
		putF32(payload[off+8:], g.DY)
		off += 12
	}
	copy(payload[off:], run.Alpha)
	e.record(OpDrawGlyphRun, 0, payload)
	return nil
}

// End appends the terminating END record. Every well-formed stream must end
// with exactly one of these as its final record (spec §3).
func (e *Encoder) End() { e.record(OpEnd, 0, nil) }

// FinishBytes returns ownership of the assembled record bytes (without a
// container header), leaving the Encoder ready for reuse via Reset.
func (e *Encoder) FinishBytes() []byte {
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	return out
}

// WriteToFile wraps the assembled records in a 64-byte container header and
// one CMDS chunk and writes the result to path. The chunk's byte totals are
// computed in a second pass after the record bytes are known, per spec
// §4.1's "write_to_file ... updating the chunk byte totals on a second
// pass".
func (e *Encoder) WriteToFile(path string) error {
	data := e.buildContainer()
	return os.WriteFile(path, data, 0o644)
}

// buildContainer assembles the full file image (header + one CMDS chunk
// directory entry + chunk payload) from the buffered records.
func (e *Encoder) buildContainer() []byte {
	records := e.buf.Bytes()
	payloadBytes := uint64(len(records))
	chunkBytes := payloadBytes // total span == payload span; no chunk sub-header beyond the 32-byte directory entry

	streamBytes := uint64(FileHeaderSize) + uint64(ChunkHeaderSize) + payloadBytes

	out := make([]byte, FileHeaderSize+ChunkHeaderSize+len(records))
	copy(out[0:8], Magic[:])
	byteOrder.PutUint16(out[8:10], VersionMajor)
	byteOrder.PutUint16(out[10:12], VersionMinor)
	byteOrder.PutUint32(out[12:16], FileHeaderSize)
	byteOrder.PutUint32(out[16:20], 0) // flags
	byteOrder.PutUint32(out[20:24], 1) // chunk_count
	byteOrder.PutUint64(out[24:32], streamBytes)
	byteOrder.PutUint64(out[32:40], FileHeaderSize) // chunk_dir_offset: directory immediately follows header
	// reserved[3] at out[40:64] stay zero

	chunkOff := FileHeaderSize
	byteOrder.PutUint32(out[chunkOff:chunkOff+4], uint32(ChunkTypeCMDS))
	byteOrder.PutUint32(out[chunkOff+4:chunkOff+8], 0) // flags
	byteOrder.PutUint64(out[chunkOff+8:chunkOff+16], uint64(FileHeaderSize+ChunkHeaderSize))
	byteOrder.PutUint64(out[chunkOff+16:chunkOff+24], chunkBytes)
	byteOrder.PutUint64(out[chunkOff+24:chunkOff+32], payloadBytes)

	copy(out[FileHeaderSize+ChunkHeaderSize:], records)
	return out
}

func geometryFinite(vals ...float32) bool {
	for _, v := range vals {
		if !isFiniteF32(v) {
			return false
		}
	}
	return true
}

func colorFinite(c RGBA) bool {
	return isFiniteF32(c.R) && isFiniteF32(c.G) && isFiniteF32(c.B) && isFiniteF32(c.A)
}
