// Package clipboard implements the daemon-mediated clipboard submodule
// (SPEC_FULL.md §4.10, resolving spec.md §9's open question): two
// independent selections, last-setter-wins ownership, no direct
// client-to-client channel.
//
// Structurally grounded on pkg/registry.Registry: a small mutex-guarded
// map behind named accessors, matching the teacher's registry style at a
// smaller scale (two fixed keys instead of a dynamic id space).
package clipboard

import (
	"sync"

	"github.com/semadraw/semadraw/pkg/ipc"
)

// Mime is the single content type this implementation's transfer envelope
// carries; the wire protocol's clipboard_set/clipboard_data bodies declare
// only a byte length, so mime negotiation is out of scope for the wire
// format (SPEC_FULL.md §4.10).
const Mime = "text/plain; charset=utf-8"

// selection holds one selection's current contents and owning client.
type selection struct {
	owner uint32
	data  []byte
	set   bool
}

// Board owns the primary and clipboard selections.
type Board struct {
	mu  sync.Mutex
	sel [2]selection
}

// New returns an empty clipboard board.
func New() *Board {
	return &Board{}
}

// Set stores data as the new contents of sel, owned by clientID. A prior
// owner's contents are discarded.
func (b *Board) Set(sel ipc.Selection, clientID uint32, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := selectionIndex(sel)
	buf := make([]byte, len(data))
	copy(buf, data)
	b.sel[idx] = selection{owner: clientID, data: buf, set: true}
}

// Get returns sel's current owner and contents. ok is false if the
// selection has never been set, or was released by its owner's
// disconnection.
func (b *Board) Get(sel ipc.Selection) (owner uint32, data []byte, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.sel[selectionIndex(sel)]
	if !s.set {
		return 0, nil, false
	}
	return s.owner, s.data, true
}

// ReleaseOwner clears any selection currently owned by clientID, mirroring
// surface cleanup on client disconnection (SPEC_FULL.md §4.10).
func (b *Board) ReleaseOwner(clientID uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.sel {
		if b.sel[i].set && b.sel[i].owner == clientID {
			b.sel[i] = selection{}
		}
	}
}

func selectionIndex(sel ipc.Selection) int {
	if sel == ipc.SelectionClipboard {
		return 1
	}
	return 0
}
