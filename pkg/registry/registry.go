// Package registry owns every Surface in the daemon: creation/destruction,
// pending/current buffer swap-on-commit, attribute mutation, and the
// z-ordered composition sequence the compositor iterates each frame.
//
// Structurally grounded on the teacher's pkg/registry.Registry: one
// mutex-guarded map behind named Register*/Get*/Remove* accessors, with
// fmt.Errorf-wrapped sentinel errors on duplicate/missing keys. Because the
// daemon's core (spec §5) runs single-threaded, the mutex here guards only
// against the compositor's in-flight composition pass (see guard.go), not
// concurrent goroutines.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Registry owns every live Surface, keyed by id.
type Registry struct {
	mu       sync.RWMutex
	surfaces map[uint32]*Surface
	nextID   uint32
	compositing bool
	deferredRemovals []uint32
}

// New returns an empty registry. Surface ids start at 1 and are
// monotonically increasing for the lifetime of the registry.
func New() *Registry {
	return &Registry{surfaces: make(map[uint32]*Surface)}
}

// CreateSurface registers a new surface owned by owner and returns its id.
func (r *Registry) CreateSurface(owner uint32, w, h uint32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.surfaces[id] = &Surface{ID: id, Owner: owner, Width: w, Height: h}
	return id
}

// DestroySurface removes a surface. If a composition pass is in flight, the
// removal is deferred until the CompositionGuard's End is called.
func (r *Registry) DestroySurface(id uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.surfaces[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if r.compositing {
		s.pendingDestroy = true
		r.deferredRemovals = append(r.deferredRemovals, id)
		return nil
	}
	delete(r.surfaces, id)
	return nil
}

// IsOwner reports whether client owns surface id.
func (r *Registry) IsOwner(id, client uint32) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.surfaces[id]
	if !ok {
		return false, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return s.Owner == client, nil
}

// Get returns the surface for id.
func (r *Registry) Get(id uint32) (*Surface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.surfaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return s, nil
}

// AttachBuffer sets a surface's pending slot to bytes.
func (r *Registry) AttachBuffer(id uint32, bytes []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.surfaces[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	s.Pending = &BufferSlot{Bytes: bytes}
	return nil
}

// Commit swaps a surface's pending buffer into current and returns the new
// frame number. See Surface's doc comment for the invalid_surface vs.
// invalid_buffer distinction.
func (r *Registry) Commit(id uint32) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.surfaces[id]
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if s.Pending == nil {
		if s.Current == nil {
			return 0, fmt.Errorf("%w: surface %d", ErrNoPendingBuffer, id)
		}
		return 0, fmt.Errorf("%w: surface %d", ErrStaleCommit, id)
	}
	s.Current = s.Pending
	s.Pending = nil
	s.FrameNumber++
	return s.FrameNumber, nil
}

// SetVisible sets a surface's visibility flag.
func (r *Registry) SetVisible(id uint32, visible bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.surfaces[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	s.Visible = visible
	return nil
}

// SetZOrder sets a surface's stacking order.
func (r *Registry) SetZOrder(id uint32, z int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.surfaces[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	s.Z = z
	return nil
}

// SetPosition sets a surface's output-coordinate position.
func (r *Registry) SetPosition(id uint32, x, y int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.surfaces[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	s.X, s.Y = x, y
	return nil
}

// RemoveClientSurfaces destroys every surface owned by client, e.g. on
// disconnect. Deferred the same way DestroySurface is if a composition
// pass is in flight.
func (r *Registry) RemoveClientSurfaces(client uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.surfaces {
		if s.Owner != client {
			continue
		}
		if r.compositing {
			s.pendingDestroy = true
			r.deferredRemovals = append(r.deferredRemovals, id)
			continue
		}
		delete(r.surfaces, id)
	}
}

// Count returns the number of live surfaces, regardless of visibility.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.surfaces)
}

// GetCompositionOrder returns every visible surface with a current buffer,
// ordered ascending by z, then by creation order (ascending id) within
// equal z (spec §4.5).
func (r *Registry) GetCompositionOrder() []*Surface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Surface, 0, len(r.surfaces))
	for _, s := range r.surfaces {
		if s.Visible && s.Current != nil {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Z != out[j].Z {
			return out[i].Z < out[j].Z
		}
		return out[i].ID < out[j].ID
	})
	return out
}
