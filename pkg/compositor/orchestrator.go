package compositor

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/semadraw/semadraw/internal/telemetry"
	"github.com/semadraw/semadraw/pkg/damage"
	"github.com/semadraw/semadraw/pkg/geom"
	"github.com/semadraw/semadraw/pkg/registry"
)

// frameClock is the subset of *scheduler.Scheduler (or
// *scheduler.AdaptiveScheduler) the orchestrator needs; kept as an
// interface so tests can substitute a deterministic clock.
type frameClock interface {
	ShouldComposite(now time.Time) bool
	BeginFrame(now time.Time)
	End(now time.Time)
}

// CompositeResult summarizes one composition pass (spec §4.8).
type CompositeResult struct {
	FrameNumber      uint64
	SurfacesRendered int
	TotalRenderTimeNs uint64
	FrameTimeNs      uint64
}

// Orchestrator drives one output's scheduler, damage tracker, and surface
// registry against an opaque Backend.
type Orchestrator struct {
	scheduler  frameClock
	damage     *damage.Tracker
	output     *damage.Output
	registry   *registry.Registry
	backend    Backend
	fbDesc     FramebufferDesc
	clearColor Color

	frameCounter uint64
}

// New creates an Orchestrator for one output.
func New(scheduler frameClock, tracker *damage.Tracker, output *damage.Output, reg *registry.Registry, backend Backend, fbDesc FramebufferDesc, clearColor Color) *Orchestrator {
	return &Orchestrator{
		scheduler:  scheduler,
		damage:     tracker,
		output:     output,
		registry:   reg,
		backend:    backend,
		fbDesc:     fbDesc,
		clearColor: clearColor,
	}
}

// Start initializes the backend's framebuffer for this output.
func (o *Orchestrator) Start() error {
	return o.backend.InitFramebuffer(o.fbDesc)
}

// PollBackend drains pending host events; false signals a host-requested
// shutdown (e.g. the backend's window was closed).
func (o *Orchestrator) PollBackend() (bool, error) {
	return o.backend.PollEvents()
}

// KeyEvents returns input events accumulated by the backend since the last
// PollBackend call, for the daemon to forward to owning clients.
func (o *Orchestrator) KeyEvents() []KeyEvent { return o.backend.GetKeyEvents() }

// MouseEvents returns pointer events accumulated by the backend since the
// last PollBackend call.
func (o *Orchestrator) MouseEvents() []MouseEvent { return o.backend.GetMouseEvents() }

// Stop releases the backend.
func (o *Orchestrator) Stop() error {
	return o.backend.Deinit()
}

// MarkSurfaceDamage records that surf has new contents to render on this
// output's next pass (e.g. after a commit), and RequestFullRepaint forces
// every visible surface to redraw on the next pass (e.g. after an output
// resize).
func (o *Orchestrator) MarkSurfaceDamage(surf uint32, rect geom.Rect) {
	o.damage.AddRegion(surf, rect)
}

// MarkSurfaceFullDamage promotes surf to full damage on this output.
func (o *Orchestrator) MarkSurfaceFullDamage(surf uint32) {
	o.damage.MarkFull(surf)
}

// RequestFullRepaint forces every visible surface to redraw on this
// output's next pass.
func (o *Orchestrator) RequestFullRepaint() {
	o.output.RequestFullRepaint()
}

// ForgetSurface drops per-surface damage bookkeeping, e.g. on destruction.
func (o *Orchestrator) ForgetSurface(surf uint32) {
	o.damage.Forget(surf)
}

// NeedsComposite reports whether a pass should run now: the scheduler's
// deadline has passed and some surface has damage (or a full repaint is
// pending).
func (o *Orchestrator) NeedsComposite(now time.Time, order []*registry.Surface) bool {
	if !o.scheduler.ShouldComposite(now) {
		return false
	}
	if o.output.FullRepaint {
		return true
	}
	for _, s := range order {
		if o.damage.IsDamaged(s.ID) {
			return true
		}
	}
	return false
}

// Composite performs one composition pass: it begins a scheduler frame,
// holds a CompositionGuard for the pass, renders each surface in
// composition order that has damage (every one, when a full repaint is
// pending), then ends the scheduler frame. Damage is cleared per surface,
// only after that surface renders successfully; a surface whose render
// fails keeps its damage for the next pass.
func (o *Orchestrator) Composite(ctx context.Context, now time.Time) (CompositeResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "compositor.composite", trace.WithAttributes(
		attribute.String("semadraw.output.pixel_format", o.fbDesc.PixelFormat),
	))
	defer span.End()
	_ = ctx

	o.scheduler.BeginFrame(now)

	guard := o.registry.BeginComposition()
	defer guard.End()

	order := o.registry.GetCompositionOrder()
	fullRepaint := o.output.Consume()

	result := CompositeResult{}
	first := true
	for _, surf := range order {
		if !fullRepaint && !o.damage.IsDamaged(surf.ID) {
			continue
		}
		if surf.Current == nil {
			continue
		}

		req := RenderRequest{
			SurfaceID:   surf.ID,
			SDCS:        surf.Current.Bytes,
			Framebuffer: o.fbDesc,
			X:           surf.X,
			Y:           surf.Y,
		}
		if first && fullRepaint {
			cc := o.clearColor
			req.ClearColor = &cc
		}
		first = false

		renderResult, err := o.backend.Render(req)
		if err != nil {
			span.RecordError(err)
			continue
		}
		if renderResult.ErrMsg != "" {
			span.RecordError(fmt.Errorf("surface %d: %s", surf.ID, renderResult.ErrMsg))
			continue
		}

		o.damage.Clear(surf.ID)
		result.SurfacesRendered++
		result.TotalRenderTimeNs += renderResult.RenderTimeNs
	}

	o.frameCounter++
	result.FrameNumber = o.frameCounter

	o.scheduler.End(time.Now())
	result.FrameTimeNs = uint64(time.Since(now))
	span.SetAttributes(
		attribute.Int("semadraw.surfaces_rendered", result.SurfacesRendered),
		attribute.Int64("semadraw.total_render_time_ns", int64(result.TotalRenderTimeNs)),
	)
	return result, nil
}
