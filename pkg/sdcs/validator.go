package sdcs

import (
	"fmt"
)

// Validate walks data as an SDCS container without executing any command,
// enforcing every structural and contract rule in spec §4.2. It returns nil
// if data is a well-formed stream, or a *ValidationError describing the
// first failure encountered.
func Validate(data []byte) error {
	if len(data) < FileHeaderSize {
		return &ValidationError{Mode: FailProtocol, Offset: 0, Message: "file shorter than header"}
	}

	if string(data[0:4]) != magicPrefix {
		return &ValidationError{Mode: FailProtocol, Offset: 0, Message: "bad magic"}
	}
	versionMajor := byteOrder.Uint16(data[8:10])
	if versionMajor != VersionMajor {
		return &ValidationError{Mode: FailVersionUnsupported, Offset: 8,
			Message: fmt.Sprintf("unsupported version_major %d", versionMajor)}
	}
	versionMinor := byteOrder.Uint16(data[10:12])
	if versionMinor > VersionMinor {
		return &ValidationError{Mode: FailVersionUnsupported, Offset: 10,
			Message: fmt.Sprintf("unsupported version_minor %d", versionMinor)}
	}

	headerSize := byteOrder.Uint32(data[12:16])
	chunkCount := byteOrder.Uint32(data[20:24])
	streamBytes := byteOrder.Uint64(data[24:32])
	chunkDirOffset := byteOrder.Uint64(data[32:40])

	if uint64(headerSize) != FileHeaderSize {
		return &ValidationError{Mode: FailProtocol, Offset: 12, Message: "unexpected header_size"}
	}
	if streamBytes != uint64(len(data)) {
		return &ValidationError{Mode: FailProtocol, Offset: 24,
			Message: fmt.Sprintf("stream_bytes %d does not match file length %d", streamBytes, len(data))}
	}
	if chunkDirOffset+uint64(chunkCount)*ChunkHeaderSize > uint64(len(data)) {
		return &ValidationError{Mode: FailProtocol, Offset: int64(chunkDirOffset), Message: "chunk directory out of bounds"}
	}

	for i := uint32(0); i < chunkCount; i++ {
		entryOff := chunkDirOffset + uint64(i)*ChunkHeaderSize
		if err := validateChunk(data, entryOff); err != nil {
			return err
		}
	}
	return nil
}

func validateChunk(data []byte, entryOff uint64) error {
	chunkType := ChunkType(byteOrder.Uint32(data[entryOff : entryOff+4]))
	chunkDataOffset := byteOrder.Uint64(data[entryOff+8 : entryOff+16])
	chunkBytes := byteOrder.Uint64(data[entryOff+16 : entryOff+24])
	payloadBytes := byteOrder.Uint64(data[entryOff+24 : entryOff+32])

	// chunk_bytes is historically inconsistent across writers: some emit the
	// total span of the directory entry's data region, some the unpadded
	// payload span, some leave it zero. Rather than trust it verbatim, compute
	// the safe skip span a tolerant reader would use and bounds-check against
	// that instead of chunk_bytes directly.
	skipSpan := align8u64(payloadBytes)
	if fromBytes := skipSpanFromChunkBytes(chunkBytes); fromBytes > skipSpan {
		skipSpan = fromBytes
	}
	if chunkDataOffset+skipSpan > uint64(len(data)) {
		return &ValidationError{Mode: FailProtocol, Offset: int64(entryOff),
			Message: fmt.Sprintf("chunk %s spans past end of file", chunkType)}
	}
	if payloadBytes == 0 {
		return nil
	}

	if chunkType != ChunkTypeCMDS {
		// Non-command chunks (resource/data/metadata) are opaque to the
		// validator; only their bounds are checked above.
		return nil
	}

	return validateRecords(data, chunkDataOffset, payloadBytes)
}

// validateRecords walks one CMDS chunk's records, enforcing record-level
// structural and contract rules. offset and length are relative to data.
func validateRecords(data []byte, offset, length uint64) error {
	end := offset + length
	pos := offset
	sawEnd := false

	for pos < end {
		if sawEnd {
			return &ValidationError{Mode: FailProtocol, Offset: int64(pos), Message: "trailing bytes after END"}
		}
		if pos+RecordHeaderSize > end {
			return &ValidationError{Mode: FailProtocol, Offset: int64(pos), Message: "truncated record header"}
		}
		op := Opcode(byteOrder.Uint16(data[pos : pos+2]))
		payloadLen := byteOrder.Uint32(data[pos+4 : pos+8])
		payloadOff := pos + RecordHeaderSize

		if uint64(payloadOff)+uint64(payloadLen) > end {
			return &ValidationError{Mode: FailProtocol, Offset: int64(pos), Opcode: op, HaveOp: true,
				Message: "record payload overruns chunk"}
		}
		payload := data[payloadOff : payloadOff+uint64(payloadLen)]

		if err := validateRecordPayload(op, payload, int64(pos)); err != nil {
			return err
		}

		if op == OpEnd {
			sawEnd = true
		}

		recordTotal := align8(RecordHeaderSize + int(payloadLen))
		pos += uint64(recordTotal)
	}

	if !sawEnd {
		return &ValidationError{Mode: FailProtocol, Offset: int64(end), Message: "command stream missing END record"}
	}
	return nil
}

// validateRecordPayload enforces each opcode's payload-length and
// scalar-validity contract (spec §4.1/§4.2).
func validateRecordPayload(op Opcode, payload []byte, offset int64) error {
	if want, fixed := fixedPayloadSizes[op]; fixed {
		if len(payload) != want {
			return &ValidationError{Mode: FailProtocol, Offset: offset, Opcode: op, HaveOp: true,
				Expected: want, Actual: len(payload), Message: "unexpected payload length"}
		}
		return validateFixedScalars(op, payload, offset)
	}

	switch op {
	case OpSetClipRects:
		return validateClipRects(payload, offset)
	case OpStrokePath:
		return validateStrokePath(payload, offset)
	case OpBlitImage:
		return validateBlitImage(payload, offset)
	case OpDrawGlyphRun:
		return validateGlyphRun(payload, offset)
	default:
		return &ValidationError{Mode: FailUnsupportedOpcode, Offset: offset, Opcode: op, HaveOp: true}
	}
}

// skipSpanFromChunkBytes derives a safe span from the chunk directory
// entry's bytes field alone, per spec §9: bytes ≥ hdr_sz is read as a total
// span including the chunk header; anything smaller (including zero) is
// treated as an already-unpadded payload span.
func skipSpanFromChunkBytes(chunkBytes uint64) uint64 {
	if chunkBytes >= ChunkHeaderSize {
		return chunkBytes - ChunkHeaderSize
	}
	return align8u64(chunkBytes)
}

func readF32(b []byte) float32 {
	return f32frombits(byteOrder.Uint32(b))
}

// validateFixedScalars checks, for opcodes with a fixed payload layout,
// that every float field is finite and that the fields which must also be
// non-negative (a rectangle's w and h) are.
func validateFixedScalars(op Opcode, payload []byte, offset int64) error {
	var floatCount int
	var nonNegIdx []int // indices (in units of float32) that must be >= 0

	switch op {
	case OpSetTransform2D:
		floatCount = 6
	case OpFillRect:
		floatCount = 8
		nonNegIdx = []int{2, 3} // w, h
	case OpStrokeRect:
		floatCount = 9
		nonNegIdx = []int{2, 3} // w, h
	case OpStrokeLine:
		floatCount = 9
	case OpSetMiterLimit:
		floatCount = 1
	case OpStrokeQuadBezier:
		floatCount = 11
	case OpStrokeCubicBezier:
		floatCount = 13
	default:
		return nil // no float fields (SET_BLEND, SET_STROKE_JOIN/CAP, SET_ANTIALIAS, RESET*, END)
	}

	for i := 0; i < floatCount; i++ {
		v := readF32(payload[i*4 : i*4+4])
		if !isFiniteF32(v) {
			return &ValidationError{Mode: FailInvalidScalar, Offset: offset, Opcode: op, HaveOp: true,
				Message: fmt.Sprintf("field %d is not finite", i)}
		}
	}
	for _, idx := range nonNegIdx {
		v := readF32(payload[idx*4 : idx*4+4])
		if v < 0 {
			return &ValidationError{Mode: FailInvalidGeometry, Offset: offset, Opcode: op, HaveOp: true,
				Message: fmt.Sprintf("field %d must be non-negative", idx)}
		}
	}
	return nil
}

func validateClipRects(payload []byte, offset int64) error {
	if len(payload) < 4 {
		return &ValidationError{Mode: FailProtocol, Offset: offset, Opcode: OpSetClipRects, HaveOp: true,
			Message: "truncated count"}
	}
	count := byteOrder.Uint32(payload[0:4])
	want := 4 + int(count)*16
	if len(payload) != want {
		return &ValidationError{Mode: FailProtocol, Offset: offset, Opcode: OpSetClipRects, HaveOp: true,
			Expected: want, Actual: len(payload)}
	}
	for i := uint32(0); i < count; i++ {
		base := 4 + int(i)*16
		w := readF32(payload[base+8 : base+12])
		h := readF32(payload[base+12 : base+16])
		for _, v := range []float32{readF32(payload[base : base+4]), readF32(payload[base+4 : base+8]), w, h} {
			if !isFiniteF32(v) {
				return &ValidationError{Mode: FailInvalidScalar, Offset: offset, Opcode: OpSetClipRects, HaveOp: true,
					Message: fmt.Sprintf("rect %d has non-finite field", i)}
			}
		}
		if w < 0 || h < 0 {
			return &ValidationError{Mode: FailInvalidGeometry, Offset: offset, Opcode: OpSetClipRects, HaveOp: true,
				Message: fmt.Sprintf("rect %d has negative w/h", i)}
		}
	}
	return nil
}

func validateStrokePath(payload []byte, offset int64) error {
	if len(payload) < 24 {
		return &ValidationError{Mode: FailProtocol, Offset: offset, Opcode: OpStrokePath, HaveOp: true,
			Message: "truncated header"}
	}
	strokeWidth := readF32(payload[0:4])
	count := byteOrder.Uint32(payload[20:24])
	want := 24 + int(count)*8
	if len(payload) != want {
		return &ValidationError{Mode: FailProtocol, Offset: offset, Opcode: OpStrokePath, HaveOp: true,
			Expected: want, Actual: len(payload)}
	}
	if count < MinStrokePathPoints || count > MaxStrokePathPoints {
		return &ValidationError{Mode: FailProtocol, Offset: offset, Opcode: OpStrokePath, HaveOp: true,
			Message: fmt.Sprintf("point count %d out of range", count)}
	}
	for i := 0; i < 4; i++ {
		if !isFiniteF32(readF32(payload[i*4 : i*4+4])) {
			return &ValidationError{Mode: FailInvalidScalar, Offset: offset, Opcode: OpStrokePath, HaveOp: true,
				Message: "stroke color/width field not finite"}
		}
	}
	if strokeWidth <= 0 {
		return &ValidationError{Mode: FailInvalidGeometry, Offset: offset, Opcode: OpStrokePath, HaveOp: true,
			Message: "stroke_width must be > 0"}
	}
	for i := uint32(0); i < count; i++ {
		base := 24 + int(i)*8
		x := readF32(payload[base : base+4])
		y := readF32(payload[base+4 : base+8])
		if !isFiniteF32(x) || !isFiniteF32(y) {
			return &ValidationError{Mode: FailInvalidScalar, Offset: offset, Opcode: OpStrokePath, HaveOp: true,
				Message: fmt.Sprintf("point %d not finite", i)}
		}
	}
	return nil
}

func validateBlitImage(payload []byte, offset int64) error {
	if len(payload) < 16 {
		return &ValidationError{Mode: FailProtocol, Offset: offset, Opcode: OpBlitImage, HaveOp: true,
			Message: "truncated header"}
	}
	dstX := readF32(payload[0:4])
	dstY := readF32(payload[4:8])
	w := byteOrder.Uint32(payload[8:12])
	h := byteOrder.Uint32(payload[12:16])
	if !isFiniteF32(dstX) || !isFiniteF32(dstY) {
		return &ValidationError{Mode: FailInvalidScalar, Offset: offset, Opcode: OpBlitImage, HaveOp: true,
			Message: "dst_x/dst_y not finite"}
	}
	want := 16 + int(w)*int(h)*4
	if len(payload) != want {
		return &ValidationError{Mode: FailProtocol, Offset: offset, Opcode: OpBlitImage, HaveOp: true,
			Expected: want, Actual: len(payload)}
	}
	return nil
}

func validateGlyphRun(payload []byte, offset int64) error {
	const headerLen = 48
	if len(payload) < headerLen {
		return &ValidationError{Mode: FailProtocol, Offset: offset, Opcode: OpDrawGlyphRun, HaveOp: true,
			Message: "truncated header"}
	}
	for i := 0; i < 6; i++ {
		if !isFiniteF32(readF32(payload[i*4 : i*4+4])) {
			return &ValidationError{Mode: FailInvalidScalar, Offset: offset, Opcode: OpDrawGlyphRun, HaveOp: true,
				Message: "base position/color field not finite"}
		}
	}
	atlasW := byteOrder.Uint32(payload[36:40])
	atlasH := byteOrder.Uint32(payload[40:44])
	glyphCount := byteOrder.Uint32(payload[44:48])
	if glyphCount == 0 {
		return &ValidationError{Mode: FailProtocol, Offset: offset, Opcode: OpDrawGlyphRun, HaveOp: true,
			Message: "zero glyphs"}
	}
	want := headerLen + int(glyphCount)*12 + int(atlasW)*int(atlasH)
	if len(payload) != want {
		return &ValidationError{Mode: FailProtocol, Offset: offset, Opcode: OpDrawGlyphRun, HaveOp: true,
			Expected: want, Actual: len(payload)}
	}
	glyphsEnd := headerLen + int(glyphCount)*12
	for i := uint32(0); i < glyphCount; i++ {
		base := headerLen + int(i)*12
		dx := readF32(payload[base+4 : base+8])
		dy := readF32(payload[base+8 : base+12])
		if !isFiniteF32(dx) || !isFiniteF32(dy) {
			return &ValidationError{Mode: FailInvalidScalar, Offset: offset, Opcode: OpDrawGlyphRun, HaveOp: true,
				Message: fmt.Sprintf("glyph %d offset not finite", i)}
		}
	}
	_ = glyphsEnd
	return nil
}
