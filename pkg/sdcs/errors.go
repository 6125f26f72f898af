package sdcs

import (
	"errors"
	"fmt"
	"log/slog"
)

// Sentinel errors returned by the encoder for malformed call arguments
// (spec §4.1 contracts). Use errors.Is to test for these.
var (
	ErrInvalidArgument = errors.New("sdcs: invalid argument")
	ErrTooManyPoints   = errors.New("sdcs: path point count out of range")
	ErrImageSize       = errors.New("sdcs: image byte length does not match w*h*4")
	ErrGlyphRun        = errors.New("sdcs: glyph run has zero glyphs or inconsistent atlas dimensions")
)

// FailureMode categorizes a validator failure, per spec §4.2.
type FailureMode int

const (
	// FailProtocol is a structural failure: truncated header, chunk out of
	// file bounds, record overrunning its chunk, missing/misplaced END, etc.
	FailProtocol FailureMode = iota
	// FailUnsupportedOpcode is an opcode the validator does not recognize.
	FailUnsupportedOpcode
	// FailVersionUnsupported is a version_major mismatch or version_minor
	// above what this implementation understands.
	FailVersionUnsupported
	// FailInvalidScalar is a non-finite float in a geometric payload.
	FailInvalidScalar
	// FailInvalidGeometry is a negative width/height field.
	FailInvalidGeometry
)

func (m FailureMode) String() string {
	switch m {
	case FailProtocol:
		return "Protocol"
	case FailUnsupportedOpcode:
		return "UnsupportedOpcode"
	case FailVersionUnsupported:
		return "VersionUnsupported"
	case FailInvalidScalar:
		return "InvalidScalar"
	case FailInvalidGeometry:
		return "InvalidGeometry"
	default:
		return "Unknown"
	}
}

// ValidationError is the diagnostic error returned by Validate. It carries
// enough context (file offset, opcode, expected vs. actual size) to log or
// print a precise failure report, per spec §4.2.
type ValidationError struct {
	Mode     FailureMode
	Offset   int64
	Opcode   Opcode
	HaveOp   bool
	Expected int
	Actual   int
	Message  string
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Mode.String()
	}
	if !e.HaveOp {
		return fmt.Sprintf("%s (offset=%d)", msg, e.Offset)
	}
	if e.Expected == 0 && e.Actual == 0 {
		return fmt.Sprintf("%s (opcode=%s offset=%d)", msg, OpcodeName(e.Opcode), e.Offset)
	}
	return fmt.Sprintf("%s (opcode=%s offset=%d expected=%d actual=%d)",
		msg, OpcodeName(e.Opcode), e.Offset, e.Expected, e.Actual)
}

// LogValue implements slog.LogValuer so a daemon logging a validation_failed
// reply gets one structured line with every diagnostic field broken out,
// following the key catalogue convention in internal/logger/fields.go.
func (e *ValidationError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("mode", e.Mode.String()),
		slog.Int64("offset", e.Offset),
	}
	if e.HaveOp {
		attrs = append(attrs, slog.String("opcode", OpcodeName(e.Opcode)))
	}
	if e.Expected != 0 || e.Actual != 0 {
		attrs = append(attrs, slog.Int("expected", e.Expected), slog.Int("actual", e.Actual))
	}
	if e.Message != "" {
		attrs = append(attrs, slog.String("message", e.Message))
	}
	return slog.GroupValue(attrs...)
}
