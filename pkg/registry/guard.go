package registry

// CompositionGuard scopes one composition pass: while held, surface
// destruction is deferred rather than applied immediately, so the
// compositor's borrowed Surface references stay valid for the pass's
// duration (spec §3: "the compositor borrows surface state for the
// duration of one composition pass; surface destruction is deferred while
// a composition pass is in flight").
//
// This has no teacher analogue — dittofs has no equivalent "pause
// destructive mutation during a read" primitive — because a plain
// `defer r.mu.Unlock()` can't express "defer only the destructive half of
// subsequent calls while still allowing attribute mutation and new
// attach_buffer/commit calls to proceed." It is a small purpose-built type
// rather than a bare method pair so callers can't forget to call
// EndComposition after a panic in the render path; defer guard.End() reads
// naturally at the call site.
type CompositionGuard struct {
	r *Registry
}

// BeginComposition starts one composition pass, deferring surface removal
// until the returned guard's End method is called.
func (r *Registry) BeginComposition() *CompositionGuard {
	r.mu.Lock()
	r.compositing = true
	r.mu.Unlock()
	return &CompositionGuard{r: r}
}

// End applies every removal deferred during the pass.
func (g *CompositionGuard) End() {
	r := g.r
	r.mu.Lock()
	defer r.mu.Unlock()

	r.compositing = false
	for _, id := range r.deferredRemovals {
		delete(r.surfaces, id)
	}
	r.deferredRemovals = r.deferredRemovals[:0]
}
