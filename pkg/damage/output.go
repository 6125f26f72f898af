package damage

// Output tracks output-level damage: an explicit full-repaint flag that,
// when set, forces every visible surface to render on the next
// composition pass regardless of its own per-surface damage state (spec
// §4.6).
type Output struct {
	FullRepaint bool
}

// RequestFullRepaint sets the full-repaint flag, e.g. after a mode change
// or backend reinitialization.
func (o *Output) RequestFullRepaint() {
	o.FullRepaint = true
}

// Consume reports whether a full repaint was pending and clears the flag.
// Called once per composition pass.
func (o *Output) Consume() bool {
	v := o.FullRepaint
	o.FullRepaint = false
	return v
}
