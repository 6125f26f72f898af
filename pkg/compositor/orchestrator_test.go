package compositor

import (
	"context"
	"testing"
	"time"

	"github.com/semadraw/semadraw/pkg/damage"
	"github.com/semadraw/semadraw/pkg/registry"
)

type fakeClock struct {
	ready bool
}

func (c *fakeClock) ShouldComposite(now time.Time) bool { return c.ready }
func (c *fakeClock) BeginFrame(now time.Time)            {}
func (c *fakeClock) End(now time.Time)                   {}

type fakeBackend struct {
	renderCalls []RenderRequest
	failID      uint32
}

func (b *fakeBackend) InitFramebuffer(desc FramebufferDesc) error { return nil }

func (b *fakeBackend) Render(req RenderRequest) (RenderResult, error) {
	b.renderCalls = append(b.renderCalls, req)
	if req.SurfaceID == b.failID {
		return RenderResult{ErrMsg: "boom"}, nil
	}
	return RenderResult{RenderTimeNs: 1000}, nil
}

func (b *fakeBackend) GetPixels() ([]byte, error)     { return nil, nil }
func (b *fakeBackend) PollEvents() (bool, error)       { return true, nil }
func (b *fakeBackend) GetKeyEvents() []KeyEvent        { return nil }
func (b *fakeBackend) GetMouseEvents() []MouseEvent    { return nil }
func (b *fakeBackend) Deinit() error                   { return nil }

func setup(t *testing.T) (*registry.Registry, *damage.Tracker, *damage.Output, uint32) {
	t.Helper()
	reg := registry.New()
	id := reg.CreateSurface(1, 100, 100)
	_ = reg.AttachBuffer(id, []byte("sdcs-bytes"))
	if _, err := reg.Commit(id); err != nil {
		t.Fatal(err)
	}
	_ = reg.SetVisible(id, true)

	tracker := damage.New()
	tracker.MarkFull(id)
	output := &damage.Output{}
	return reg, tracker, output, id
}

func TestCompositeRendersDamagedVisibleSurface(t *testing.T) {
	reg, tracker, output, id := setup(t)
	backend := &fakeBackend{}
	o := New(&fakeClock{ready: true}, tracker, output, reg, backend, FramebufferDesc{Width: 800, Height: 600}, Color{A: 1})

	result, err := o.Composite(context.Background(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if result.SurfacesRendered != 1 {
		t.Fatalf("expected 1 surface rendered, got %d", result.SurfacesRendered)
	}
	if len(backend.renderCalls) != 1 || backend.renderCalls[0].SurfaceID != id {
		t.Fatalf("unexpected render calls: %+v", backend.renderCalls)
	}
	if tracker.IsDamaged(id) {
		t.Fatal("expected damage cleared after successful render")
	}
}

func TestCompositeSkipsUndamagedSurface(t *testing.T) {
	reg, tracker, output, id := setup(t)
	tracker.Clear(id) // no damage, no full repaint
	backend := &fakeBackend{}
	o := New(&fakeClock{ready: true}, tracker, output, reg, backend, FramebufferDesc{}, Color{})

	result, err := o.Composite(context.Background(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if result.SurfacesRendered != 0 {
		t.Fatalf("expected 0 surfaces rendered, got %d", result.SurfacesRendered)
	}
}

func TestCompositeLeavesDamageOnRenderError(t *testing.T) {
	reg, tracker, output, id := setup(t)
	backend := &fakeBackend{failID: id}
	o := New(&fakeClock{ready: true}, tracker, output, reg, backend, FramebufferDesc{}, Color{})

	result, err := o.Composite(context.Background(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if result.SurfacesRendered != 0 {
		t.Fatalf("expected 0 successful renders, got %d", result.SurfacesRendered)
	}
	if !tracker.IsDamaged(id) {
		t.Fatal("expected damage to remain after a failed render")
	}
}

func TestNeedsCompositeFalseWhenSchedulerNotReady(t *testing.T) {
	reg, tracker, output, _ := setup(t)
	backend := &fakeBackend{}
	o := New(&fakeClock{ready: false}, tracker, output, reg, backend, FramebufferDesc{}, Color{})

	if o.NeedsComposite(time.Now(), reg.GetCompositionOrder()) {
		t.Fatal("expected NeedsComposite to be false when the scheduler isn't ready")
	}
}
