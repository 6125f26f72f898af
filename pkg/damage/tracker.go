// Package damage tracks per-surface and per-output damage regions so the
// compositor only re-renders what changed between frames (spec §4.6).
//
// New code — the teacher has no 2D damage concept — built as small,
// heavily unit-tested primitives over pkg/geom.Rect, in the same plain
// value-type style pkg/geom itself follows.
package damage

import "github.com/semadraw/semadraw/pkg/geom"

// maxRects is the number of damage rectangles a surface may accumulate
// before it is promoted to full damage (spec §4.6).
const maxRects = 32

// SurfaceDamage is one surface's accumulated damage since its last Clear.
type SurfaceDamage struct {
	Rects []geom.Rect
	Full  bool
}

// Tracker owns per-surface damage state, keyed by surface id.
type Tracker struct {
	surfaces map[uint32]*SurfaceDamage
}

// New returns an empty damage tracker.
func New() *Tracker {
	return &Tracker{surfaces: make(map[uint32]*SurfaceDamage)}
}

func (t *Tracker) entry(id uint32) *SurfaceDamage {
	d, ok := t.surfaces[id]
	if !ok {
		d = &SurfaceDamage{}
		t.surfaces[id] = d
	}
	return d
}

// AddRegion records rect as damaged on surface id. If rect can be merged
// into an existing rectangle without growing the bounding area beyond the
// sum of the two inputs' areas, it is merged in place; otherwise it is
// appended. A surface accumulating more than maxRects distinct rectangles
// is promoted to full damage, since tracking every rectangle individually
// stops being worthwhile.
func (t *Tracker) AddRegion(id uint32, rect geom.Rect) {
	if rect.IsEmpty() {
		return
	}
	d := t.entry(id)
	if d.Full {
		return
	}

	for i, existing := range d.Rects {
		union := existing.UnionWith(rect)
		if union.Area() <= existing.Area()+rect.Area() {
			d.Rects[i] = union
			return
		}
	}

	d.Rects = append(d.Rects, rect)
	if len(d.Rects) > maxRects {
		d.Full = true
		d.Rects = nil
	}
}

// MarkFull promotes a surface directly to full damage, e.g. on first
// commit or on a resize.
func (t *Tracker) MarkFull(id uint32) {
	d := t.entry(id)
	d.Full = true
	d.Rects = nil
}

// IsDamaged reports whether surface id has any damage recorded (full or
// rectangle-based).
func (t *Tracker) IsDamaged(id uint32) bool {
	d, ok := t.surfaces[id]
	if !ok {
		return false
	}
	return d.Full || len(d.Rects) > 0
}

// Get returns the current damage state for surface id.
func (t *Tracker) Get(id uint32) SurfaceDamage {
	d, ok := t.surfaces[id]
	if !ok {
		return SurfaceDamage{}
	}
	return *d
}

// Clear resets a surface's damage after it has been successfully rendered.
// Invoked once per composition pass, per rendered surface (spec §4.6).
func (t *Tracker) Clear(id uint32) {
	d := t.entry(id)
	d.Rects = nil
	d.Full = false
}

// Forget drops all damage state for a destroyed surface.
func (t *Tracker) Forget(id uint32) {
	delete(t.surfaces, id)
}
