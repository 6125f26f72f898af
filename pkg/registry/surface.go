package registry

// BufferSlot is a reference to the SDCS byte range representing surface
// contents for an upcoming (pending) or currently displayed (current)
// frame (spec §3).
type BufferSlot struct {
	Bytes []byte
}

// Surface is one client-owned drawable (spec §3). The registry owns
// Surface values; sessions and the compositor hold only ids/borrowed
// references.
//
// Pending is nil until attach_buffer is called and is cleared back to nil
// by a successful commit; Current is nil until the first successful
// commit. This lets commit distinguish "never attached" (Pending == nil
// && Current == nil) from "attached once, no new attach since" (Pending
// == nil && Current != nil) — the former yields invalid_surface, the
// latter invalid_buffer (spec §4.5, §9).
type Surface struct {
	ID      uint32
	Owner   uint32
	Width   uint32
	Height  uint32
	Visible bool
	Z       int32
	X, Y    int32

	Pending *BufferSlot
	Current *BufferSlot

	FrameNumber uint64

	// pendingDestroy is set when destroy_surface arrives while a
	// composition pass is in flight; the surface is actually removed at
	// end_composition.
	pendingDestroy bool
}

// Pixels returns the surface's logical pixel count, used for per-client
// resource accounting.
func (s *Surface) Pixels() uint64 {
	return uint64(s.Width) * uint64(s.Height)
}
