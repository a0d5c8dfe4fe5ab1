package countdown

import (
	"time"

	"github.com/oshokin/pose-timer/internal/clock"
)

const (
	// DefaultTickPeriod is the nominal interval between ticks of a running timer.
	DefaultTickPeriod = time.Second

	// Step is the amount AddOne and SubtractOne move the duration by.
	Step = time.Minute
)

// Reason tells a tick observer what caused the notification.
type Reason int

const (
	// ReasonTick is a periodic tick of a running timer.
	ReasonTick Reason = iota
	// ReasonStart is emitted when a stopped timer starts running.
	ReasonStart
	// ReasonStop is emitted when a running timer is paused.
	ReasonStop
	// ReasonReset is emitted when the elapsed time is cleared.
	ReasonReset
	// ReasonDuration is emitted when the duration changes.
	ReasonDuration
	// ReasonSync is emitted after Synchronize.
	ReasonSync
	// ReasonExpired is emitted when a started timer reaches zero.
	ReasonExpired
)

// String returns the reason name used in logs.
func (r Reason) String() string {
	switch r {
	case ReasonTick:
		return "tick"
	case ReasonStart:
		return "start"
	case ReasonStop:
		return "stop"
	case ReasonReset:
		return "reset"
	case ReasonDuration:
		return "duration"
	case ReasonSync:
		return "sync"
	case ReasonExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Timer counts a duration down against a clock.
type Timer struct {
	// clock supplies the wall time and schedules ticks.
	clock clock.Clock
	// period is the nominal tick interval.
	period time.Duration
	// duration is the total length of the countdown.
	duration time.Duration
	// accumulated is the elapsed time banked from finished run segments.
	accumulated time.Duration
	// anchor is when the current run segment started; zero when stopped.
	anchor time.Time
	// running is true between Start and Stop, Reset or expiry.
	running bool
	// tick is the pending tick callback while running.
	tick *clock.Handle
	// onTick observes every tick and state change.
	onTick func(Reason)
}

// Option configures a Timer.
type Option func(*Timer)

// WithDuration sets the initial duration.
func WithDuration(d time.Duration) Option {
	return func(t *Timer) {
		t.duration = max(d, 0)
	}
}

// WithTickPeriod sets the nominal tick period; non-positive values are ignored.
func WithTickPeriod(period time.Duration) Option {
	return func(t *Timer) {
		if period > 0 {
			t.period = period
		}
	}
}

// New creates a stopped timer driven by c.
func New(c clock.Clock, opts ...Option) *Timer {
	t := &Timer{
		clock:  c,
		period: DefaultTickPeriod,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// OnTick registers the tick observer, replacing any previous one. nil clears it.
func (t *Timer) OnTick(fn func(Reason)) {
	t.onTick = fn
}

// Duration returns the total countdown length.
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// SetDuration changes the countdown length. Negative values are clamped to
// zero. The timer is stopped and its elapsed time cleared.
func (t *Timer) SetDuration(d time.Duration) {
	t.halt()
	t.duration = max(d, 0)
	t.accumulated = 0
	t.notify(ReasonDuration)
}

// Elapsed returns the time counted so far, never more than the duration.
func (t *Timer) Elapsed() time.Duration {
	elapsed := t.accumulated
	if t.running {
		elapsed += t.clock.Now().Sub(t.anchor)
	}

	return min(max(elapsed, 0), t.duration)
}

// Remaining returns the time left, never negative.
func (t *Timer) Remaining() time.Duration {
	return max(t.duration-t.Elapsed(), 0)
}

// Running reports whether the timer is counting. It turns false the instant
// the remaining time reaches zero.
func (t *Timer) Running() bool {
	return t.running && t.Remaining() > 0
}

// Expired reports whether no time remains.
func (t *Timer) Expired() bool {
	return t.Remaining() == 0
}

// Start begins or resumes counting. A timer with no time left stays stopped
// and reports expiry immediately.
func (t *Timer) Start() {
	if t.running {
		if t.Remaining() > 0 {
			return
		}

		t.expire()

		return
	}

	t.running = true
	t.anchor = t.clock.Now()

	if t.Remaining() == 0 {
		t.expire()

		return
	}

	t.schedule()
	t.notify(ReasonStart)
}

// Stop pauses counting, keeping the elapsed time. It is a no-op when the
// timer is not running.
func (t *Timer) Stop() {
	if !t.running {
		return
	}

	if t.Remaining() == 0 {
		t.expire()

		return
	}

	t.halt()
	t.notify(ReasonStop)
}

// Reset clears the elapsed time and stops the timer.
func (t *Timer) Reset() {
	t.cancelTick()
	t.running = false
	t.anchor = time.Time{}
	t.accumulated = 0
	t.notify(ReasonReset)
}

// AddOne lengthens the duration by one Step and stops the timer.
func (t *Timer) AddOne() {
	t.SetDuration(t.duration + Step)
}

// SubtractOne shortens the duration by one Step, never below zero, and stops
// the timer.
func (t *Timer) SubtractOne() {
	t.SetDuration(max(t.duration-Step, 0))
}

// Synchronize adopts an authoritative snapshot. The duration is clamped at
// zero and the remaining time into [0, duration]. The timer runs afterwards
// only when the snapshot was running with time left, in which case the
// remaining time holds at the moment of the call and decreases from there.
func (t *Timer) Synchronize(running bool, duration, remaining time.Duration) {
	t.cancelTick()

	t.duration = max(duration, 0)
	remaining = min(max(remaining, 0), t.duration)
	t.accumulated = t.duration - remaining
	t.running = false
	t.anchor = time.Time{}

	if running && t.duration > 0 && remaining > 0 {
		t.running = true
		t.anchor = t.clock.Now()
		t.schedule()
	}

	t.notify(ReasonSync)
}

// halt folds the current run segment into the accumulated time.
func (t *Timer) halt() {
	if !t.running {
		return
	}

	t.accumulated = t.Elapsed()
	t.running = false
	t.anchor = time.Time{}
	t.cancelTick()
}

// expire settles a timer that has run out and reports the expiry.
func (t *Timer) expire() {
	t.cancelTick()
	t.running = false
	t.anchor = time.Time{}
	t.accumulated = t.duration
	t.notify(ReasonExpired)
}

// schedule arms the next tick at the next whole period of the remaining
// time, or at expiry when less than a period is left.
func (t *Timer) schedule() {
	t.cancelTick()

	remaining := t.Remaining()

	delay := remaining % t.period
	if delay == 0 {
		delay = t.period
	}

	delay = min(delay, remaining)

	t.tick = t.clock.AfterFunc(delay, t.onTimer)
}

func (t *Timer) onTimer() {
	t.tick = nil

	if !t.running {
		return
	}

	if t.Remaining() == 0 {
		t.expire()

		return
	}

	t.schedule()
	t.notify(ReasonTick)
}

func (t *Timer) cancelTick() {
	t.tick.Cancel()
	t.tick = nil
}

func (t *Timer) notify(reason Reason) {
	if t.onTick != nil {
		t.onTick(reason)
	}
}
