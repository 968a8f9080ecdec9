package periodic

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle is the caller's cancellation token for one periodic entry.
// It is shared between the caller and the registry; Finish is the only way
// to deregister the entry and cannot be undone.
type Handle struct {
	id       string
	finished atomic.Bool
}

func newHandle() *Handle {
	return &Handle{id: uuid.NewString()}
}

// ID returns the handle's unique identifier.
func (h *Handle) ID() string {
	return h.id
}

// Finish marks the entry finished. It is idempotent and safe to call from
// any goroutine, including from inside the entry's own callback. The entry
// is removed on the next registry scan and never fires after that scan.
func (h *Handle) Finish() {
	h.finished.Store(true)
}

// IsFinished reports whether Finish has been called.
func (h *Handle) IsFinished() bool {
	return h.finished.Load()
}
