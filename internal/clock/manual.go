package clock

import (
	"sync"
	"time"
)

// Manual is a virtual Clock. Time only moves when Advance is called, and due
// callbacks run synchronously on the caller's goroutine in deadline order.
type Manual struct {
	// mu protects now, seq and pending; it is released while callbacks run.
	mu sync.Mutex
	// now is the current virtual time.
	now time.Time
	// seq orders callbacks that share a deadline by scheduling order.
	seq uint64
	// pending holds the scheduled callbacks.
	pending []*manualCall
}

// manualCall is one scheduled callback of a Manual clock.
type manualCall struct {
	at     time.Time
	seq    uint64
	period time.Duration
	fn     func()
	handle *Handle
}

// NewManual returns a virtual clock positioned at start.
func NewManual(start time.Time) *Manual {
	return &Manual{
		now: start,
	}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

// AfterFunc schedules f to run once the virtual time reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, f func()) *Handle {
	return m.schedule(d, 0, f)
}

// Every schedules f to run every d of virtual time. Non-positive periods are
// treated as one nanosecond.
func (m *Manual) Every(d time.Duration, f func()) *Handle {
	if d <= 0 {
		d = time.Nanosecond
	}

	return m.schedule(d, d, f)
}

// Advance moves the virtual time forward by d, running every callback that
// becomes due, including ones scheduled by callbacks during the advance.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		call := m.popDue(target)
		if call == nil {
			break
		}

		if call.period == 0 && !call.handle.claim() {
			continue
		}

		call.fn()
	}

	m.mu.Lock()
	if target.After(m.now) {
		m.now = target
	}
	m.mu.Unlock()
}

// Pending returns the number of callbacks that may still fire.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0

	for _, call := range m.pending {
		if call.handle.Active() {
			count++
		}
	}

	return count
}

func (m *Manual) schedule(d, period time.Duration, f func()) *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}

	m.seq++

	call := &manualCall{
		at:     m.now.Add(d),
		seq:    m.seq,
		period: period,
		fn:     f,
		handle: new(Handle),
	}

	m.pending = append(m.pending, call)

	return call.handle
}

// popDue removes and returns the earliest active callback due at or before
// target, moving the virtual time to its deadline. Periodic callbacks are
// rescheduled before they are returned.
func (m *Manual) popDue(target time.Time) *manualCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	best := -1

	for i := 0; i < len(m.pending); i++ {
		call := m.pending[i]
		if !call.handle.Active() {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			i--

			continue
		}

		if call.at.After(target) {
			continue
		}

		if best < 0 || call.at.Before(m.pending[best].at) ||
			(call.at.Equal(m.pending[best].at) && call.seq < m.pending[best].seq) {
			best = i
		}
	}

	if best < 0 {
		return nil
	}

	call := m.pending[best]
	if call.at.After(m.now) {
		m.now = call.at
	}

	if call.period > 0 {
		m.seq++
		m.pending[best] = &manualCall{
			at:     call.at.Add(call.period),
			seq:    m.seq,
			period: call.period,
			fn:     call.fn,
			handle: call.handle,
		}

		return call
	}

	m.pending = append(m.pending[:best], m.pending[best+1:]...)

	return call
}
