package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across session dispatch,
// the surface registry, damage tracking, and composition.
const (
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	KeyClientID   = "client_id"
	KeyTransport  = "transport"   // local, network
	KeyMsgType    = "msg_type"    // IPC message type name
	KeyErrorCode  = "error_code"  // IPC ErrorCode name

	KeySurfaceID   = "surface_id"
	KeyOutputID    = "output_id"
	KeyWidth       = "width"
	KeyHeight      = "height"
	KeyZ           = "z"
	KeyVisible     = "visible"
	KeyFrameNumber = "frame_number"

	KeySDCSBytes  = "sdcs_bytes"
	KeyShmBytes   = "shm_bytes"
	KeyChunkCount = "chunk_count"
	KeyOpcode     = "opcode"

	KeySurfacesRendered = "surfaces_rendered"
	KeyRenderTimeNs     = "render_time_ns"
	KeyFrameTimeNs      = "frame_time_ns"
	KeyTargetHz         = "target_hz"

	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeySelection  = "selection" // clipboard: primary, clipboard
)

func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }
func SpanID(id string) slog.Attr  { return slog.String(KeySpanID, id) }

func ClientID(id uint32) slog.Attr  { return slog.Any(KeyClientID, id) }
func Transport(kind string) slog.Attr { return slog.String(KeyTransport, kind) }
func MsgType(name string) slog.Attr { return slog.String(KeyMsgType, name) }
func ErrorCode(name string) slog.Attr { return slog.String(KeyErrorCode, name) }

func SurfaceID(id uint32) slog.Attr { return slog.Any(KeySurfaceID, id) }
func OutputID(id string) slog.Attr  { return slog.String(KeyOutputID, id) }
func Width(w uint32) slog.Attr      { return slog.Any(KeyWidth, w) }
func Height(h uint32) slog.Attr     { return slog.Any(KeyHeight, h) }
func Z(z int32) slog.Attr           { return slog.Any(KeyZ, z) }
func Visible(v bool) slog.Attr      { return slog.Bool(KeyVisible, v) }
func FrameNumber(n uint64) slog.Attr { return slog.Uint64(KeyFrameNumber, n) }

func SDCSBytes(n uint64) slog.Attr  { return slog.Uint64(KeySDCSBytes, n) }
func ShmBytes(n uint64) slog.Attr   { return slog.Uint64(KeyShmBytes, n) }
func ChunkCount(n int) slog.Attr    { return slog.Int(KeyChunkCount, n) }
func Opcode(op uint16) slog.Attr    { return slog.Any(KeyOpcode, op) }

func SurfacesRendered(n int) slog.Attr   { return slog.Int(KeySurfacesRendered, n) }
func RenderTimeNs(ns uint64) slog.Attr   { return slog.Uint64(KeyRenderTimeNs, ns) }
func FrameTimeNs(ns uint64) slog.Attr    { return slog.Uint64(KeyFrameTimeNs, ns) }
func TargetHz(hz float64) slog.Attr      { return slog.Float64(KeyTargetHz, hz) }

func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }
func Selection(s string) slog.Attr    { return slog.String(KeySelection, s) }

// Err returns a slog.Attr for an error, or a zero Attr for nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Hex formats b as lowercase hex under key, useful for SDCS chunk hashes
// or raw opcode payload previews.
func Hex(key string, b []byte) slog.Attr {
	return slog.String(key, fmt.Sprintf("%x", b))
}
