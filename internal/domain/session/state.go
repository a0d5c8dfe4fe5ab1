package session

import (
	"slices"
	"time"

	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
)

// Actor identifies who performed an action in the system.
type Actor struct {
	// Hostname is the machine name where the action was performed.
	Hostname string
	// Username is the system user who triggered the action.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return "unknown"
	}

	return a.Username + "@" + a.Hostname
}

// Change records the last command applied to the timer.
type Change struct {
	// Timestamp is when the command was applied.
	Timestamp time.Time
	// Actor is who issued the command.
	Actor *Actor
	// Command is the kind of the command.
	Command modeltimer.CommandKind
}

// Clone returns a deep copy of the change.
func (c *Change) Clone() *Change {
	if c == nil {
		return nil
	}

	return &Change{
		Timestamp: c.Timestamp,
		Actor:     c.Actor.Clone(),
		Command:   c.Command,
	}
}

// State is the timer status at a point in time together with its last change.
type State struct {
	// Status is the full session timer state.
	Status modeltimer.Status
	// LastChange is the last command applied, nil before the first one.
	LastChange *Change
}

// Clone returns a copy of the state to avoid leaking internal references.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	status := s.Status
	status.PoseLengths = slices.Clone(s.Status.PoseLengths)
	status.ChangePoseTimes = slices.Clone(s.Status.ChangePoseTimes)

	return &State{
		Status:     status,
		LastChange: s.LastChange.Clone(),
	}
}
