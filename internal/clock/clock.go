package clock

import (
	"sync/atomic"
	"time"
)

// Clock abstracts wall-clock reads and deferred callbacks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// AfterFunc calls f once after d elapses.
	AfterFunc(d time.Duration, f func()) *Handle
	// Every calls f each time d elapses until the handle is cancelled.
	Every(d time.Duration, f func()) *Handle
}

// Handle is the cancellation token of a scheduled callback.
// A nil Handle means "nothing scheduled"; Cancel on it is a no-op.
type Handle struct {
	// done is set once the callback is cancelled or a one-shot callback has run.
	done atomic.Bool
	// stop releases the underlying timer resources.
	stop func()
}

// Cancel revokes the callback. Cancelling an already fired, already
// cancelled or nil handle does nothing.
func (h *Handle) Cancel() {
	if h == nil || h.done.Swap(true) {
		return
	}

	if h.stop != nil {
		h.stop()
	}
}

// Active reports whether the callback may still fire.
func (h *Handle) Active() bool {
	return h != nil && !h.done.Load()
}

// claim marks a one-shot handle as fired and reports whether the caller won
// the race against Cancel.
func (h *Handle) claim() bool {
	return h.done.CompareAndSwap(false, true)
}
