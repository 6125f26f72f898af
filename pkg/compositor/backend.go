// Package compositor drives the scheduler, damage tracker, and surface
// registry through one composition pass per frame, delegating all actual
// pixel work to an externally implemented Backend (spec §4.8).
package compositor

// FramebufferDesc describes the output surface a Backend must initialize.
type FramebufferDesc struct {
	Width, Height uint32
	// PixelFormat is a backend-defined format tag (e.g. "rgba8888"); the
	// compositor never interprets it.
	PixelFormat string
	RefreshHz   float64
}

// Color is an RGBA clear color, in the same units as SDCS fill/stroke
// colors.
type Color struct {
	R, G, B, A float32
}

// RenderRequest is one surface's render instruction for the current pass.
type RenderRequest struct {
	SurfaceID uint32
	SDCS      []byte
	Framebuffer FramebufferDesc
	// ClearColor is set only for the first surface rendered in a pass when
	// a full repaint was requested; nil otherwise.
	ClearColor *Color
	X, Y       int32
}

// RenderResult is returned by Backend.Render for one surface.
type RenderResult struct {
	RenderTimeNs uint64
	// ErrMsg is non-empty if the backend could not render this surface;
	// the surface's damage is not cleared in that case.
	ErrMsg string
}

// KeyEvent and MouseEvent mirror the corresponding IPC event bodies; the
// backend surfaces host input this way so the daemon can forward it
// without depending on any particular windowing library.
type KeyEvent struct {
	SurfaceID uint32
	KeyCode   uint32
	Modifiers uint32
	Pressed   bool
}

type MouseEvent struct {
	SurfaceID uint32
	X, Y      int32
	Button    uint32
	EventType uint32
	Modifiers uint32
}

// Backend is implemented by the host-specific presentation layer (a
// framebuffer device, a window-system client, a headless test double).
// The compositor treats it as opaque: any implementation honoring this
// contract is acceptable (spec §4.8).
//
// Grounded on the teacher's pkg/controlplane/runtime.ProtocolAdapter: a
// small lifecycle interface (init/serve-equivalent, per-unit operation,
// teardown) that the core owns only through its methods, never its
// concrete type.
type Backend interface {
	InitFramebuffer(desc FramebufferDesc) error
	Render(req RenderRequest) (RenderResult, error)
	GetPixels() ([]byte, error)
	// PollEvents processes pending host events and returns false if the
	// host has requested shutdown (e.g. the window was closed).
	PollEvents() (bool, error)
	GetKeyEvents() []KeyEvent
	GetMouseEvents() []MouseEvent
	Deinit() error
}
