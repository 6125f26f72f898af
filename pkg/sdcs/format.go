// Package sdcs implements the SDCS binary command-stream container: its
// fixed-width little-endian record layout, an append-only Encoder, and a
// structural Validator that walks a stream without executing it.
//
// Layout constants and field order follow spec §3, §4.1, §4.2, and §6
// exactly; the typed Write*/Read* helper shape is modeled on the teacher's
// internal/protocol/xdr package, with the byte order flipped to
// little-endian as spec §3 mandates (SDCS is not RFC 4506 XDR).
package sdcs

import (
	"encoding/binary"
	"math"
)

// byteOrder is the wire byte order for every multi-byte SDCS field.
var byteOrder = binary.LittleEndian

// f32bits reinterprets v as its IEEE-754 binary32 bit pattern, for writing
// onto the wire (spec §3: "floats are IEEE-754 binary32").
func f32bits(v float32) uint32 {
	return math.Float32bits(v)
}

// f32frombits is the inverse of f32bits, used when reading float fields back
// off the wire during validation.
func f32frombits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

// isFiniteF32 reports whether v is neither NaN nor +/-infinity (spec §4.2
// rule 4: every float field in a geometric payload must be finite).
func isFiniteF32(v float32) bool {
	bits := math.Float32bits(v)
	exponent := (bits >> 23) & 0xFF
	return exponent != 0xFF
}

// FileHeaderSize is the size in bytes of the 64-byte container header.
const FileHeaderSize = 64

// ChunkHeaderSize is the size in bytes of one chunk directory entry.
const ChunkHeaderSize = 32

// RecordHeaderSize is the size in bytes of one command record header.
const RecordHeaderSize = 8

// VersionMajor and VersionMinor are the format version this implementation
// produces; Validate accepts the same version_major with any version_minor
// up to VersionMinor (spec §6: minor is forward-compatible, major
// mismatches are fatal).
const (
	VersionMajor uint16 = 0
	VersionMinor uint16 = 1
)

// magicPrefix is the required prefix of the 8-byte file magic; spec §6 notes
// "SDCS0001" is the canonical magic but the "SDCS" prefix alone is sufficient
// for compatibility with other writer versions.
const magicPrefix = "SDCS"

// Magic is the canonical 8-byte magic this encoder writes.
var Magic = [8]byte{'S', 'D', 'C', 'S', '0', '0', '0', '1'}

// ChunkType identifies a chunk's payload kind, stored as a little-endian
// four-character code.
type ChunkType uint32

// Chunk type four-character codes, little-endian encoded per spec §6.
var (
	ChunkTypeCMDS = fourCC('C', 'M', 'D', 'S')
	ChunkTypeRSRC = fourCC('R', 'S', 'R', 'C')
	ChunkTypeDATA = fourCC('D', 'A', 'T', 'A')
	ChunkTypeMETA = fourCC('M', 'E', 'T', 'A')
)

func fourCC(a, b, c, d byte) ChunkType {
	return ChunkType(byteOrder.Uint32([]byte{a, b, c, d}))
}

func (t ChunkType) String() string {
	var b [4]byte
	byteOrder.PutUint32(b[:], uint32(t))
	return string(b[:])
}

// Opcode identifies a command record's payload layout.
type Opcode uint16

// Opcodes, per spec §4.1.
const (
	OpReset           Opcode = 0x0001
	OpSetClipRects    Opcode = 0x0002
	OpClearClip       Opcode = 0x0003
	OpSetBlend        Opcode = 0x0004
	OpSetTransform2D  Opcode = 0x0005
	OpResetTransform  Opcode = 0x0006
	OpSetAntialias    Opcode = 0x0007
	OpFillRect        Opcode = 0x0010
	OpStrokeRect      Opcode = 0x0011
	OpStrokeLine      Opcode = 0x0012
	OpSetStrokeJoin   Opcode = 0x0013
	OpSetStrokeCap    Opcode = 0x0014
	OpSetMiterLimit   Opcode = 0x0015
	OpStrokeQuadBezier Opcode = 0x0016
	OpStrokeCubicBezier Opcode = 0x0017
	OpStrokePath      Opcode = 0x0018
	OpBlitImage       Opcode = 0x0020
	OpDrawGlyphRun    Opcode = 0x0030
	OpEnd             Opcode = 0x00F0
)

// fixedPayloadSizes gives the exact payload byte length for opcodes whose
// payload is not self-describing (i.e. everything except SET_CLIP_RECTS,
// STROKE_PATH, BLIT_IMAGE, and DRAW_GLYPH_RUN, which carry their own counts).
var fixedPayloadSizes = map[Opcode]int{
	OpReset:             0,
	OpClearClip:         0,
	OpSetBlend:          4,
	OpSetTransform2D:    6 * 4,
	OpResetTransform:    0,
	OpSetAntialias:      4,
	OpFillRect:          8 * 4,
	OpStrokeRect:        9 * 4,
	OpStrokeLine:        9 * 4,
	OpSetStrokeJoin:     4,
	OpSetStrokeCap:      4,
	OpSetMiterLimit:     4,
	OpStrokeQuadBezier:  11 * 4,
	OpStrokeCubicBezier: 13 * 4,
	OpEnd:               0,
}

// OpcodeName returns a human-readable name for op, or "UNKNOWN" if op is not
// a recognized opcode. Used in validator diagnostics.
func OpcodeName(op Opcode) string {
	switch op {
	case OpReset:
		return "RESET"
	case OpSetClipRects:
		return "SET_CLIP_RECTS"
	case OpClearClip:
		return "CLEAR_CLIP"
	case OpSetBlend:
		return "SET_BLEND"
	case OpSetTransform2D:
		return "SET_TRANSFORM_2D"
	case OpResetTransform:
		return "RESET_TRANSFORM"
	case OpSetAntialias:
		return "SET_ANTIALIAS"
	case OpFillRect:
		return "FILL_RECT"
	case OpStrokeRect:
		return "STROKE_RECT"
	case OpStrokeLine:
		return "STROKE_LINE"
	case OpSetStrokeJoin:
		return "SET_STROKE_JOIN"
	case OpSetStrokeCap:
		return "SET_STROKE_CAP"
	case OpSetMiterLimit:
		return "SET_MITER_LIMIT"
	case OpStrokeQuadBezier:
		return "STROKE_QUAD_BEZIER"
	case OpStrokeCubicBezier:
		return "STROKE_CUBIC_BEZIER"
	case OpStrokePath:
		return "STROKE_PATH"
	case OpBlitImage:
		return "BLIT_IMAGE"
	case OpDrawGlyphRun:
		return "DRAW_GLYPH_RUN"
	case OpEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// BlendMode selects the compositing operator for subsequent fill/stroke ops.
type BlendMode uint32

const (
	BlendSrcOver BlendMode = 0
	BlendSrc     BlendMode = 1
	BlendClear   BlendMode = 2
	BlendAdd     BlendMode = 3
)

// StrokeJoin selects how stroked path segments meet at a vertex.
type StrokeJoin uint32

const (
	JoinMiter StrokeJoin = 0
	JoinBevel StrokeJoin = 1
	JoinRound StrokeJoin = 2
)

// StrokeCap selects how a stroked path's open ends are terminated.
type StrokeCap uint32

const (
	CapButt   StrokeCap = 0
	CapSquare StrokeCap = 1
	CapRound  StrokeCap = 2
)

// align8 rounds n up to the next multiple of 8.
func align8(n int) int {
	return (n + 7) &^ 7
}

// align8u64 is align8 for uint64 chunk-span arithmetic.
func align8u64(n uint64) uint64 {
	return (n + 7) &^ 7
}

// MaxStrokePathPoints is the largest point count accepted by STROKE_PATH
// (spec §4.1/§8: "path has... >65535 points" is rejected, so 65535 is the
// maximum accepted count).
const MaxStrokePathPoints = 65535

// MinStrokePathPoints is the smallest point count accepted by STROKE_PATH.
const MinStrokePathPoints = 2
