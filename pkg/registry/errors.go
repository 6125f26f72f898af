package registry

import "errors"

// Sentinel errors returned by Registry operations; session/daemon code
// translates these to the matching IPC error code (spec §4.3) at the
// session boundary.
var (
	ErrNotFound        = errors.New("registry: surface not found")
	ErrNotOwner        = errors.New("registry: client does not own surface")
	ErrNoPendingBuffer = errors.New("registry: surface has no pending buffer")
	ErrStaleCommit     = errors.New("registry: no new buffer attached since last commit")
)
