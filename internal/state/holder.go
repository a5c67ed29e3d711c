// Package state owns the lifecycle of the derived snapshot: atomic
// publication for readers and the load-build-publish reload path.
package state

import (
	"sync/atomic"

	"github.com/oldto/oldto/internal/index"
)

// Holder publishes immutable snapshots to concurrent readers. A snapshot is
// never mutated after Publish, so readers need no locking; a reload swaps
// the pointer in one step and readers always observe a complete snapshot.
type Holder struct {
	current atomic.Pointer[index.Snapshot]
}

// NewHolder returns an empty holder. Current returns nil until the first
// Publish.
func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the most recently published snapshot, or nil before the
// first load completes.
func (h *Holder) Current() *index.Snapshot {
	return h.current.Load()
}

// Publish atomically replaces the visible snapshot.
func (h *Holder) Publish(s *index.Snapshot) {
	h.current.Store(s)
}
