package timer

import (
	"math"
	"time"

	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/domain/session"
)

// Actor identifies the caller of a request.
type Actor struct {
	Hostname string `cbor:"1,keyasint"`
	Username string `cbor:"2,keyasint"`
}

// InfoMessage is the synchronization snapshot of a timer.
type InfoMessage struct {
	Running       bool  `cbor:"1,keyasint"`
	DurationMs    int64 `cbor:"2,keyasint"`
	RemainingMs   int64 `cbor:"3,keyasint"`
	AlarmSounding bool  `cbor:"4,keyasint"`
}

// ChangeMessage describes the last command applied to the timer.
type ChangeMessage struct {
	TimestampMs int64  `cbor:"1,keyasint"`
	Actor       *Actor `cbor:"2,keyasint,omitempty"`
	Command     string `cbor:"3,keyasint"`
}

// StatusMessage is the full state of the session timer.
type StatusMessage struct {
	Info              InfoMessage    `cbor:"1,keyasint"`
	Segment           string         `cbor:"2,keyasint"`
	ElapsedMs         int64          `cbor:"3,keyasint"`
	AutoStartRunning  bool           `cbor:"4,keyasint"`
	SoundAlerts       bool           `cbor:"5,keyasint"`
	PoseLengthsMs     []int64        `cbor:"6,keyasint,omitempty"`
	ChangePoseTimesMs []int64        `cbor:"7,keyasint,omitempty"`
	LastChange        *ChangeMessage `cbor:"8,keyasint,omitempty"`
}

// GetInfoRequest asks for the current state.
type GetInfoRequest struct {
	Actor *Actor `cbor:"1,keyasint,omitempty"`
}

// ExecuteRequest runs one command.
type ExecuteRequest struct {
	Actor         *Actor       `cbor:"1,keyasint"`
	Kind          string       `cbor:"2,keyasint"`
	SoundAlerts   *bool        `cbor:"3,keyasint,omitempty"`
	DurationMs    int64        `cbor:"4,keyasint,omitempty"`
	PoseLengthsMs []int64      `cbor:"5,keyasint,omitempty"`
	Remote        *InfoMessage `cbor:"6,keyasint,omitempty"`
}

// WatchRequest subscribes to timer events.
type WatchRequest struct {
	Actor *Actor `cbor:"1,keyasint,omitempty"`
}

// EventMessage is one timer event pushed to a watcher.
type EventMessage struct {
	Kind      string      `cbor:"1,keyasint"`
	Info      InfoMessage `cbor:"2,keyasint"`
	Sounding  bool        `cbor:"3,keyasint,omitempty"`
	// TakenAtMs is the server time of Info in Unix milliseconds, 0 when unknown.
	TakenAtMs int64       `cbor:"4,keyasint,omitempty"`
}

// NewActor converts a domain actor.
func NewActor(actor *session.Actor) *Actor {
	if actor == nil {
		return nil
	}

	return &Actor{
		Hostname: actor.Hostname,
		Username: actor.Username,
	}
}

// ToDomain converts the message to a domain actor.
func (a *Actor) ToDomain() *session.Actor {
	if a == nil {
		return nil
	}

	return &session.Actor{
		Hostname: a.Hostname,
		Username: a.Username,
	}
}

// NewInfoMessage converts a timer snapshot.
func NewInfoMessage(info modeltimer.Info) InfoMessage {
	return InfoMessage{
		Running:       info.Running,
		DurationMs:    info.Duration.Milliseconds(),
		RemainingMs:   info.Remaining.Milliseconds(),
		AlarmSounding: info.AlarmSounding,
	}
}

// ToDomain converts the message to a timer snapshot.
func (m InfoMessage) ToDomain() modeltimer.Info {
	return modeltimer.Info{
		Running:       m.Running,
		Duration:      fromMs(m.DurationMs),
		Remaining:     fromMs(m.RemainingMs),
		AlarmSounding: m.AlarmSounding,
	}
}

// NewStatusMessage converts a server state.
func NewStatusMessage(state *session.State) *StatusMessage {
	if state == nil {
		return new(StatusMessage)
	}

	status := state.Status

	msg := &StatusMessage{
		Info:              NewInfoMessage(status.Info),
		Segment:           status.Segment.String(),
		ElapsedMs:         status.Elapsed.Milliseconds(),
		AutoStartRunning:  status.AutoStartRunning,
		SoundAlerts:       status.SoundAlerts,
		PoseLengthsMs:     toMsSlice(status.PoseLengths),
		ChangePoseTimesMs: toMsSlice(status.ChangePoseTimes),
	}

	if change := state.LastChange; change != nil {
		msg.LastChange = &ChangeMessage{
			TimestampMs: change.Timestamp.UnixMilli(),
			Actor:       NewActor(change.Actor),
			Command:     string(change.Command),
		}
	}

	return msg
}

// ToDomain converts the message to a server state.
func (m *StatusMessage) ToDomain() *session.State {
	if m == nil {
		return new(session.State)
	}

	segment, _ := modeltimer.ParseSegment(m.Segment)

	state := &session.State{
		Status: modeltimer.Status{
			Info:             m.Info.ToDomain(),
			Segment:          segment,
			Elapsed:          fromMs(m.ElapsedMs),
			AutoStartRunning: m.AutoStartRunning,
			SoundAlerts:      m.SoundAlerts,
			PoseLengths:      fromMsSlice(m.PoseLengthsMs),
			ChangePoseTimes:  fromMsSlice(m.ChangePoseTimesMs),
		},
	}

	if change := m.LastChange; change != nil {
		state.LastChange = &session.Change{
			Timestamp: time.UnixMilli(change.TimestampMs),
			Actor:     change.Actor.ToDomain(),
			Command:   modeltimer.CommandKind(change.Command),
		}
	}

	return state
}

// NewExecuteRequest converts a command issued by actor.
func NewExecuteRequest(actor *session.Actor, cmd modeltimer.Command) *ExecuteRequest {
	req := &ExecuteRequest{
		Actor:         NewActor(actor),
		Kind:          string(cmd.Kind),
		SoundAlerts:   cmd.SoundAlerts,
		DurationMs:    cmd.Duration.Milliseconds(),
		PoseLengthsMs: toMsSlice(cmd.PoseLengths),
	}

	if cmd.Kind == modeltimer.CommandSynchronize {
		remote := NewInfoMessage(cmd.Remote)
		req.Remote = &remote
	}

	return req
}

// ToCommand validates the request and converts it to a command.
func (r *ExecuteRequest) ToCommand() (modeltimer.Command, error) {
	kind, err := modeltimer.ParseCommandKind(r.Kind)
	if err != nil {
		return modeltimer.Command{}, err
	}

	cmd := modeltimer.Command{
		Kind:        kind,
		SoundAlerts: r.SoundAlerts,
		Duration:    fromMs(r.DurationMs),
		PoseLengths: fromMsSlice(r.PoseLengthsMs),
	}

	if r.Remote != nil {
		cmd.Remote = r.Remote.ToDomain()
	}

	return cmd, nil
}

// NewEventMessage converts a timer event.
func NewEventMessage(event modeltimer.Event) *EventMessage {
	msg := &EventMessage{
		Kind:     string(event.Kind),
		Info:     NewInfoMessage(event.Info),
		Sounding: event.Sounding,
	}

	if !event.At.IsZero() {
		msg.TakenAtMs = event.At.UnixMilli()
	}

	return msg
}

// ToDomain converts the message to a timer event.
func (m *EventMessage) ToDomain() modeltimer.Event {
	event := modeltimer.Event{
		Kind:     modeltimer.EventKind(m.Kind),
		Info:     m.Info.ToDomain(),
		Sounding: m.Sounding,
	}

	if m.TakenAtMs != 0 {
		event.At = time.UnixMilli(m.TakenAtMs)
	}

	return event
}

// fromMs converts wire milliseconds, saturating instead of overflowing.
func fromMs(ms int64) time.Duration {
	const limit = math.MaxInt64 / int64(time.Millisecond)

	switch {
	case ms > limit:
		return math.MaxInt64
	case ms < -limit:
		return math.MinInt64
	default:
		return time.Duration(ms) * time.Millisecond
	}
}

func toMsSlice(durations []time.Duration) []int64 {
	if len(durations) == 0 {
		return nil
	}

	out := make([]int64, len(durations))
	for i, d := range durations {
		out[i] = d.Milliseconds()
	}

	return out
}

func fromMsSlice(values []int64) []time.Duration {
	if len(values) == 0 {
		return nil
	}

	out := make([]time.Duration, len(values))
	for i, ms := range values {
		out[i] = fromMs(ms)
	}

	return out
}
