package modeltimer

import "time"

// EventKind names a timer event.
type EventKind string

// Timer events.
const (
	EventTick                    EventKind = "tick"
	EventAlarm                   EventKind = "alarm"
	EventTimerStarted            EventKind = "timer-started"
	EventAlert10MinutesRemaining EventKind = "alert-10-minutes"
	EventAlert1MinuteRemaining   EventKind = "alert-1-minute"
	EventChangePose              EventKind = "change-pose"

	// EventSnapshot is never fired by a Timer. Owners of a timer publish it
	// to resend the current state to late or idle observers.
	EventSnapshot EventKind = "snapshot"
)

// Event is one notification of the timer together with the snapshot taken
// when it fired.
type Event struct {
	Kind EventKind
	Info Info
	// Sounding is the alarm state carried by EventAlarm.
	Sounding bool
	// At is when Info was taken; zero when unknown.
	At time.Time
}

// Notify registers fn as the handler of every event, replacing the
// individual handlers. It lets several consumers share one registration
// through a fan-out on the caller's side. nil clears all handlers.
func (t *Timer) Notify(fn func(Event)) {
	if fn == nil {
		t.handlers = handlers{}

		return
	}

	emit := func(kind EventKind) func() {
		return func() { fn(Event{Kind: kind, Info: t.Info(), At: t.clock.Now()}) }
	}

	t.handlers = handlers{
		tick: func(info Info) {
			fn(Event{Kind: EventTick, Info: info, At: t.clock.Now()})
		},
		alarm: func(sounding bool) {
			fn(Event{Kind: EventAlarm, Info: t.Info(), Sounding: sounding, At: t.clock.Now()})
		},
		timerStarted: emit(EventTimerStarted),
		alert10:      emit(EventAlert10MinutesRemaining),
		alert1:       emit(EventAlert1MinuteRemaining),
		changePose:   emit(EventChangePose),
	}
}
