package follower

import (
	"context"
	"time"

	"github.com/oshokin/pose-timer/internal/clock"
	"github.com/oshokin/pose-timer/internal/domain/countdown"
	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/logger"
)

// DefaultTolerance is how far the local remaining time may drift from a
// remote tick before the follower resynchronizes.
const DefaultTolerance = 250 * time.Millisecond

// maxTransit is the longest event delay that is compensated. Older stamps
// point at clock skew between hosts rather than transport latency.
const maxTransit = 2 * time.Second

// follower keeps a local timer in step with remote events. All methods must
// run on the goroutine of the timer's clock.
type follower struct {
	// ctx carries the logger for local events.
	ctx context.Context //nolint:containedctx // Used for logging from timer callbacks only.
	// clock is the clock of the local timer.
	clock clock.Clock
	// timer is the local mirror of the server timer.
	timer *modeltimer.Timer
	// tolerance is the accepted drift of the remaining time.
	tolerance time.Duration
	// synced counts the snapshots applied.
	synced int
}

// newFollower creates a follower whose local timer runs on c. Alerts, pose
// changes and starts are announced from the remote events, since a
// synchronized timer never starts a run of its own; the local alarm is
// logged so it still sounds while the server is unreachable.
func newFollower(ctx context.Context, c clock.Clock, settings modeltimer.Settings, tolerance time.Duration) *follower {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	f := &follower{
		ctx:       ctx,
		clock:     c,
		timer:     modeltimer.New(c, modeltimer.WithSettings(settings), modeltimer.WithLogger(logger.FromContext(ctx))),
		tolerance: tolerance,
	}

	f.timer.OnTick(func(info modeltimer.Info) {
		logger.DebugKV(f.ctx, "Tick", "remaining", countdown.Format(info.Remaining), "running", info.Running)
	})
	f.timer.OnAlarm(func(sounding bool) {
		if sounding {
			logger.Warn(f.ctx, "Alarm! Time is up")

			return
		}

		logger.Info(f.ctx, "Alarm stopped")
	})

	return f
}

// apply reconciles the local timer with a remote event and reports whether
// a snapshot was applied.
func (f *follower) apply(event modeltimer.Event) bool {
	event.Info = compensate(event.Info, event.At, f.clock.Now())

	f.announce(event)

	if !needsSync(f.timer.Info(), event, f.tolerance) {
		return false
	}

	f.timer.SynchronizeInfo(event.Info)
	f.synced++

	logger.DebugKV(f.ctx, "Synchronized",
		"event", string(event.Kind),
		"remaining", countdown.Format(event.Info.Remaining),
		"running", event.Info.Running,
		"alarm", event.Info.AlarmSounding,
	)

	return true
}

// announce logs the remote events that carry a cue for the room.
func (f *follower) announce(event modeltimer.Event) {
	switch event.Kind {
	case modeltimer.EventTimerStarted:
		logger.InfoKV(f.ctx, "Timer started", "remaining", countdown.Format(event.Info.Remaining))
	case modeltimer.EventAlert10MinutesRemaining:
		logger.Info(f.ctx, "10 minutes remaining")
	case modeltimer.EventAlert1MinuteRemaining:
		logger.Info(f.ctx, "1 minute remaining")
	case modeltimer.EventChangePose:
		logger.InfoKV(f.ctx, "Change pose", "remaining", countdown.Format(event.Info.Remaining))
	}
}

// compensate moves a running snapshot taken at `at` forward to now, so the
// local timer converges to the remote one instead of lagging by the
// transport delay. Stamps from the future or older than maxTransit are
// taken as clock skew and ignored.
func compensate(info modeltimer.Info, at, now time.Time) modeltimer.Info {
	if !info.Running || at.IsZero() {
		return info
	}

	transit := now.Sub(at)
	if transit <= 0 || transit > maxTransit {
		return info
	}

	info.Remaining = max(info.Remaining-transit, 0)

	return info
}

// needsSync decides whether a remote event must be applied. Periodic ticks
// are only applied when the local state disagrees, so a local timer that is
// already in step keeps its own tick schedule.
func needsSync(local modeltimer.Info, event modeltimer.Event, tolerance time.Duration) bool {
	remote := event.Info

	if event.Kind != modeltimer.EventTick {
		return true
	}

	if local.Running != remote.Running ||
		local.Duration != remote.Duration ||
		local.AlarmSounding != remote.AlarmSounding {
		return true
	}

	drift := local.Remaining - remote.Remaining

	return drift > tolerance || drift < -tolerance
}
