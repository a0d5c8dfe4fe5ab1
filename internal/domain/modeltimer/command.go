package modeltimer

import (
	"errors"
	"fmt"
	"time"
)

// CommandKind names an operation a remote caller can ask the timer to perform.
type CommandKind string

// Supported commands.
const (
	CommandStart          CommandKind = "start"
	CommandStop           CommandKind = "stop"
	CommandReset          CommandKind = "reset"
	CommandNext           CommandKind = "next"
	CommandStopAlarm      CommandKind = "stop-alarm"
	CommandAddOne         CommandKind = "add-one"
	CommandSubtractOne    CommandKind = "subtract-one"
	CommandSetDuration    CommandKind = "set-duration"
	CommandSetPoseLengths CommandKind = "set-pose-lengths"
	CommandSynchronize    CommandKind = "synchronize"
)

// ErrUnknownCommand is returned by Apply for a command it does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Command is one operation plus its arguments.
type Command struct {
	// Kind selects the operation.
	Kind CommandKind
	// SoundAlerts overrides the alert policy of CommandStart when set.
	SoundAlerts *bool
	// Duration is the argument of CommandSetDuration.
	Duration time.Duration
	// PoseLengths is the argument of CommandSetPoseLengths.
	PoseLengths []time.Duration
	// Remote is the snapshot applied by CommandSynchronize.
	Remote Info
}

// Apply runs a command against the timer.
func (t *Timer) Apply(cmd Command) error {
	switch cmd.Kind {
	case CommandStart:
		t.Start(cmd.SoundAlerts)
	case CommandStop:
		t.Stop()
	case CommandReset:
		t.Reset()
	case CommandNext:
		t.Next()
	case CommandStopAlarm:
		t.StopAlarm()
	case CommandAddOne:
		t.AddOne()
	case CommandSubtractOne:
		t.SubtractOne()
	case CommandSetDuration:
		t.SetDuration(cmd.Duration)
	case CommandSetPoseLengths:
		t.SetPoseLengths(cmd.PoseLengths)
	case CommandSynchronize:
		t.SynchronizeInfo(cmd.Remote)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}

	return nil
}

// ParseCommandKind validates a command name.
func ParseCommandKind(s string) (CommandKind, error) {
	kind := CommandKind(s)

	switch kind {
	case CommandStart, CommandStop, CommandReset, CommandNext, CommandStopAlarm,
		CommandAddOne, CommandSubtractOne, CommandSetDuration, CommandSetPoseLengths, CommandSynchronize:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
}
