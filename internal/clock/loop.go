package clock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultQueueSize is the number of callbacks a Loop buffers before posters block.
const DefaultQueueSize = 64

// ErrLoopStopped is returned by Do once the loop has stopped running.
var ErrLoopStopped = errors.New("event loop stopped")

// Loop is a real-time Clock that runs every callback on the goroutine
// executing Run, one at a time.
type Loop struct {
	// queue carries callbacks and commands to the loop goroutine.
	queue chan func()
	// done is closed when Run returns.
	done chan struct{}
	// closeOnce guards done.
	closeOnce sync.Once
}

// NewLoop creates a loop with the given queue size. Non-positive sizes fall
// back to DefaultQueueSize.
func NewLoop(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &Loop{
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Run executes queued callbacks until the context is canceled.
func (l *Loop) Run(ctx context.Context) {
	defer l.closeOnce.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case f := <-l.queue:
			f()
		}
	}
}

// Done is closed after Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Do runs f on the loop goroutine and waits for it to finish.
// It must not be called from inside a loop callback.
func (l *Loop) Do(ctx context.Context, f func()) error {
	finished := make(chan struct{})

	select {
	case l.queue <- func() {
		defer close(finished)
		f()
	}:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

// Now returns the current time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, f func()) *Handle {
	h := new(Handle)

	t := time.AfterFunc(d, func() {
		l.post(func() {
			if h.claim() {
				f()
			}
		})
	})

	h.stop = func() { t.Stop() }

	return h
}

// Every schedules f on the loop each time d elapses. Non-positive periods
// are treated as one millisecond.
func (l *Loop) Every(d time.Duration, f func()) *Handle {
	if d <= 0 {
		d = time.Millisecond
	}

	var (
		h      = new(Handle)
		ticker = time.NewTicker(d)
		stop   = make(chan struct{})
	)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.post(func() {
					if h.Active() {
						f()
					}
				})
			case <-stop:
				return
			case <-l.done:
				return
			}
		}
	}()

	h.stop = func() { close(stop) }

	return h
}

// post hands f to the loop goroutine; it is dropped once the loop has stopped.
func (l *Loop) post(f func()) {
	select {
	case l.queue <- f:
	case <-l.done:
	}
}
