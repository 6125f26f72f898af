// Package headless implements compositor.Backend as an in-memory
// framebuffer with no real rasterization: Render fills the whole
// framebuffer with one flat color (the request's ClearColor, or one derived
// from the surface id) instead of interpreting SDCS commands. It exists so the daemon has a default, dependency-free
// --backend value; real presentation backends (software SIMD rasterizer,
// X11/Wayland/KMS/Vulkan) are external collaborators and are not built
// here (spec §4.8 Non-goals).
package headless

import (
	"fmt"
	"sync"

	"github.com/semadraw/semadraw/pkg/compositor"
)

// Backend is a compositor.Backend that holds pixels in memory and never
// touches a real display. Safe for concurrent use.
type Backend struct {
	mu     sync.Mutex
	desc   compositor.FramebufferDesc
	pixels []byte
	inited bool
}

// New returns an uninitialized headless backend.
func New() *Backend {
	return &Backend{}
}

// bytesPerPixel is fixed at 4 (rgba8888); the headless backend does not
// support any other PixelFormat tag.
const bytesPerPixel = 4

func (b *Backend) InitFramebuffer(desc compositor.FramebufferDesc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if desc.Width == 0 || desc.Height == 0 {
		return fmt.Errorf("headless: zero-sized framebuffer %dx%d", desc.Width, desc.Height)
	}
	if desc.PixelFormat != "" && desc.PixelFormat != "rgba8888" {
		return fmt.Errorf("headless: unsupported pixel format %q", desc.PixelFormat)
	}

	b.desc = desc
	b.pixels = make([]byte, int(desc.Width)*int(desc.Height)*bytesPerPixel)
	b.inited = true
	return nil
}

// Render fills the entire framebuffer with req's ClearColor (if set) or a
// flat color derived from SurfaceID, ignoring req.SDCS and the surface
// position entirely: this backend never rasterizes vector commands.
func (b *Backend) Render(req compositor.RenderRequest) (compositor.RenderResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inited {
		return compositor.RenderResult{}, fmt.Errorf("headless: framebuffer not initialized")
	}

	col := fallbackColor(req.SurfaceID)
	if req.ClearColor != nil {
		col = *req.ClearColor
	}
	r, g, bl, a := quantize(col)

	w := int(b.desc.Width)
	h := int(b.desc.Height)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * bytesPerPixel
			b.pixels[off+0] = r
			b.pixels[off+1] = g
			b.pixels[off+2] = bl
			b.pixels[off+3] = a
		}
	}

	return compositor.RenderResult{RenderTimeNs: 0}, nil
}

func (b *Backend) GetPixels() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inited {
		return nil, fmt.Errorf("headless: framebuffer not initialized")
	}
	out := make([]byte, len(b.pixels))
	copy(out, b.pixels)
	return out, nil
}

// PollEvents never reports a shutdown request: there is no host window
// to close.
func (b *Backend) PollEvents() (bool, error) {
	return true, nil
}

// GetKeyEvents and GetMouseEvents always return empty: a headless
// backend has no input device to surface events from.
func (b *Backend) GetKeyEvents() []compositor.KeyEvent     { return nil }
func (b *Backend) GetMouseEvents() []compositor.MouseEvent { return nil }

func (b *Backend) Deinit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pixels = nil
	b.inited = false
	return nil
}

func quantize(c compositor.Color) (r, g, bl, a byte) {
	return clamp(c.R), clamp(c.G), clamp(c.B), clamp(c.A)
}

func clamp(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v * 255)
}

// fallbackColor derives a stable, visually distinct color from a
// surface id when no ClearColor was requested, so a headless dump still
// shows distinct surfaces.
func fallbackColor(surfaceID uint32) compositor.Color {
	return compositor.Color{
		R: float32((surfaceID*37)%256) / 255,
		G: float32((surfaceID*67)%256) / 255,
		B: float32((surfaceID*97)%256) / 255,
		A: 1,
	}
}
