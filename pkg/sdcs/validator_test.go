package sdcs

import (
	"math"
	"testing"
)

func buildValid(t *testing.T) []byte {
	t.Helper()
	e := NewEncoder()
	if err := e.FillRect(0, 0, 10, 10, RGBA{R: 1, A: 1}); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	e.End()
	return e.buildContainer()
}

func TestValidateAcceptsWellFormedStream(t *testing.T) {
	if err := Validate(buildValid(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsShortFile(t *testing.T) {
	if err := Validate(make([]byte, 10)); err == nil {
		t.Fatal("expected error for truncated header")
	}
}

func TestValidateRejectsBadMagic(t *testing.T) {
	data := buildValid(t)
	data[0] = 'X'
	err := Validate(data)
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
	ve, ok := err.(*ValidationError)
	if !ok || ve.Mode != FailProtocol {
		t.Fatalf("expected FailProtocol, got %v", err)
	}
}

func TestValidateRejectsMissingEnd(t *testing.T) {
	e := NewEncoder()
	_ = e.FillRect(0, 0, 1, 1, RGBA{})
	// deliberately omit End()
	data := e.buildContainer()
	err := Validate(data)
	if err == nil {
		t.Fatal("expected error for missing END record")
	}
}

func TestValidateRejectsStreamBytesMismatch(t *testing.T) {
	data := buildValid(t)
	// Append a bogus trailing record's worth of bytes without updating the
	// chunk's byte totals, simulating a writer bug.
	extra := append(data, make([]byte, 8)...)
	err := Validate(extra)
	if err == nil {
		t.Fatal("expected error for stream_bytes/length mismatch")
	}
}

func TestValidateZeroChunkContainerSucceeds(t *testing.T) {
	// A minimal container with chunk_count=0 has no records to validate and
	// must be accepted.
	data := make([]byte, FileHeaderSize)
	copy(data[0:8], Magic[:])
	byteOrder.PutUint16(data[8:10], VersionMajor)
	byteOrder.PutUint16(data[10:12], VersionMinor)
	byteOrder.PutUint32(data[12:16], FileHeaderSize)
	byteOrder.PutUint32(data[20:24], 0) // chunk_count
	byteOrder.PutUint64(data[24:32], uint64(len(data)))
	byteOrder.PutUint64(data[32:40], FileHeaderSize)

	if err := Validate(data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateChunkBytesZeroWithPayloadBytesSucceeds(t *testing.T) {
	// Some historical writers leave the chunk directory's bytes field at
	// zero and rely on payload_bytes alone to describe the chunk's extent.
	// The validator must still compute a safe skip span and accept the
	// stream (spec §8 boundary test).
	data := buildValid(t)
	chunkDirOffset := byteOrder.Uint64(data[32:40])
	byteOrder.PutUint64(data[chunkDirOffset+16:chunkDirOffset+24], 0) // bytes

	if err := Validate(data); err != nil {
		t.Fatalf("expected zero bytes field with valid payload_bytes to validate, got %v", err)
	}
}

func TestValidateFillRectNegativeZeroWidthValidates(t *testing.T) {
	e := NewEncoder()
	if err := e.FillRect(0, 0, float32(math.Copysign(0, -1)), 10, RGBA{}); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	e.End()
	if err := Validate(e.buildContainer()); err != nil {
		t.Fatalf("expected w=-0.0 to validate, got %v", err)
	}
}

func TestValidateFillRectNegativeWidthFails(t *testing.T) {
	e := NewEncoder()
	if err := e.FillRect(0, 0, -1, 10, RGBA{}); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	e.End()
	err := Validate(e.buildContainer())
	ve, ok := err.(*ValidationError)
	if !ok || ve.Mode != FailInvalidGeometry {
		t.Fatalf("expected FailInvalidGeometry, got %v", err)
	}
}

func TestValidateStrokePathBoundaries(t *testing.T) {
	c := RGBA{R: 1, A: 1}

	e := NewEncoder()
	if err := e.StrokePath([]Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, 1, c); err != nil {
		t.Fatalf("2-point StrokePath: %v", err)
	}
	e.End()
	if err := Validate(e.buildContainer()); err != nil {
		t.Fatalf("expected 2-point path to validate, got %v", err)
	}
}
