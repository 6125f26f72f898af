package headless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semadraw/semadraw/pkg/compositor"
)

func TestInitFramebufferAllocatesPixels(t *testing.T) {
	b := New()
	err := b.InitFramebuffer(compositor.FramebufferDesc{Width: 4, Height: 2, PixelFormat: "rgba8888"})
	require.NoError(t, err)

	px, err := b.GetPixels()
	require.NoError(t, err)
	assert.Len(t, px, 4*2*4)
}

func TestInitFramebufferRejectsZeroSize(t *testing.T) {
	b := New()
	err := b.InitFramebuffer(compositor.FramebufferDesc{Width: 0, Height: 2})
	assert.Error(t, err)
}

func TestInitFramebufferRejectsUnknownFormat(t *testing.T) {
	b := New()
	err := b.InitFramebuffer(compositor.FramebufferDesc{Width: 1, Height: 1, PixelFormat: "bgr565"})
	assert.Error(t, err)
}

func TestRenderFillsClearColor(t *testing.T) {
	b := New()
	require.NoError(t, b.InitFramebuffer(compositor.FramebufferDesc{Width: 2, Height: 2, PixelFormat: "rgba8888"}))

	col := compositor.Color{R: 1, G: 0, B: 0, A: 1}
	_, err := b.Render(compositor.RenderRequest{SurfaceID: 1, ClearColor: &col})
	require.NoError(t, err)

	px, err := b.GetPixels()
	require.NoError(t, err)
	assert.Equal(t, byte(255), px[0])
	assert.Equal(t, byte(0), px[1])
	assert.Equal(t, byte(0), px[2])
	assert.Equal(t, byte(255), px[3])
}

func TestRenderBeforeInitErrors(t *testing.T) {
	b := New()
	_, err := b.Render(compositor.RenderRequest{SurfaceID: 1})
	assert.Error(t, err)
}

func TestPollEventsNeverRequestsShutdown(t *testing.T) {
	b := New()
	ok, err := b.PollEvents()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, b.GetKeyEvents())
	assert.Empty(t, b.GetMouseEvents())
}

func TestDeinitClearsState(t *testing.T) {
	b := New()
	require.NoError(t, b.InitFramebuffer(compositor.FramebufferDesc{Width: 1, Height: 1, PixelFormat: "rgba8888"}))
	require.NoError(t, b.Deinit())

	_, err := b.GetPixels()
	assert.Error(t, err)
}
