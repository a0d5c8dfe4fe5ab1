package control

import (
	"fmt"
	"strings"
	"time"

	"github.com/oshokin/pose-timer/internal/domain/countdown"
	"github.com/oshokin/pose-timer/internal/domain/session"
)

// FormatState renders a server state as one line, e.g.
// "pose 12:34 of 20:00, running, last: start by o.shokin@desk at 2024-03-01T10:00:00Z".
func FormatState(state *session.State) string {
	if state == nil {
		return "<nil state>"
	}

	status := state.Status

	var b strings.Builder

	fmt.Fprintf(&b, "%s %s of %s", status.Segment, countdown.Format(status.Remaining), countdown.Format(status.Duration))

	switch {
	case status.AlarmSounding:
		b.WriteString(", ALARM")
	case status.Running:
		b.WriteString(", running")
	default:
		b.WriteString(", stopped")
	}

	if status.AutoStartRunning {
		b.WriteString(", auto-start pending")
	}

	if len(status.ChangePoseTimes) > 0 {
		fmt.Fprintf(&b, ", next pose change in %s", countdown.Format(status.ChangePoseTimes[0]-status.Elapsed))
	}

	if change := state.LastChange; change != nil {
		fmt.Fprintf(&b, ", last: %s by %s at %s", change.Command, change.Actor, change.Timestamp.Format(time.RFC3339))
	}

	return b.String()
}
