package server

import (
	"context"
	"fmt"
	"time"

	api "github.com/oshokin/pose-timer/internal/api/grpc/timer"
	"github.com/oshokin/pose-timer/internal/clock"
	"github.com/oshokin/pose-timer/internal/domain/countdown"
	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/domain/session"
	"github.com/oshokin/pose-timer/internal/logger"
)

// service owns the session timer. Every access to the timer happens on the
// loop goroutine; the methods below may be called from any goroutine.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// loop serializes timer callbacks and commands.
	loop *clock.Loop
	// timer is the authoritative session timer.
	timer *modeltimer.Timer
	// hub fans timer events out to watchers.
	hub *hub
	// lastChange is the last applied command; loop only.
	lastChange *session.Change
}

// newService creates a service whose timer runs on loop. The loop may start
// running after newService returns.
func newService(ctx context.Context, loop *clock.Loop, settings modeltimer.Settings) *service {
	log := logger.FromContext(ctx)

	s := &service{
		loop: loop,
		timer: modeltimer.New(loop,
			modeltimer.WithSettings(settings),
			modeltimer.WithLogger(log.Named("model-timer")),
		),
		hub: newHub(log, DefaultSubscriberBuffer),
	}

	s.timer.Notify(s.hub.publish)

	return s
}

// State returns the current timer state.
func (s *service) State(ctx context.Context) (*session.State, error) {
	var state *session.State

	if err := s.do(ctx, func() { state = s.snapshot() }); err != nil {
		return nil, err
	}

	return state, nil
}

// Execute applies a command on behalf of actor and returns the new state.
func (s *service) Execute(ctx context.Context, actor *session.Actor, cmd modeltimer.Command) (*session.State, error) {
	var (
		state    *session.State
		applyErr error
	)

	err := s.do(ctx, func() {
		if applyErr = s.timer.Apply(cmd); applyErr != nil {
			return
		}

		s.lastChange = &session.Change{
			Timestamp: s.loop.Now(),
			Actor:     actor.Clone(),
			Command:   cmd.Kind,
		}
		state = s.snapshot()
	})
	if err != nil {
		return nil, err
	}

	if applyErr != nil {
		logger.WarnKV(ctx, "Command rejected", "command", string(cmd.Kind), "actor", actor.String(), "error", applyErr)

		return nil, fmt.Errorf("apply %s: %w", cmd.Kind, applyErr)
	}

	logger.InfoKV(ctx, "Command executed",
		"command", string(cmd.Kind),
		"actor", actor.String(),
		"segment", state.Status.Segment.String(),
		"running", state.Status.Running,
		"remaining", countdown.Format(state.Status.Remaining),
	)

	return state, nil
}

// Watch sends every timer event to send, starting with a snapshot, until ctx
// ends, send fails or the subscriber is dropped.
func (s *service) Watch(ctx context.Context, actor *session.Actor, send func(modeltimer.Event) error) error {
	id, sub, err := s.hub.subscribe()
	if err != nil {
		return err
	}
	defer s.hub.unsubscribe(id)

	ctx = logger.WithKV(ctx, "subscriber", id.String(), "actor", actor.String())
	logger.Info(ctx, "Watcher subscribed")

	// The snapshot is taken on the loop, so it precedes every event published
	// after it.
	err = s.do(ctx, func() {
		s.hub.publishTo(id, s.snapshotEvent())
	})
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Watcher left")

			return nil
		case event, ok := <-sub.events:
			if !ok {
				logger.WarnKV(ctx, "Watcher dropped", "reason", sub.err)

				return sub.err
			}

			if err := send(event); err != nil {
				return fmt.Errorf("send %s event: %w", event.Kind, err)
			}
		}
	}
}

// startHeartbeat publishes a snapshot every period so idle watchers can
// correct their drift.
func (s *service) startHeartbeat(period time.Duration) *clock.Handle {
	return s.loop.Every(period, func() {
		s.hub.publish(s.snapshotEvent())
	})
}

// close disconnects every watcher.
func (s *service) close() {
	s.hub.close()
}

// snapshotEvent must run on the loop.
func (s *service) snapshotEvent() modeltimer.Event {
	return modeltimer.Event{Kind: modeltimer.EventSnapshot, Info: s.timer.Info(), At: s.loop.Now()}
}

// snapshot must run on the loop.
func (s *service) snapshot() *session.State {
	return &session.State{
		Status:     s.timer.Status(),
		LastChange: s.lastChange.Clone(),
	}
}

// do runs f on the loop, translating a stopped loop into api.ErrUnavailable.
func (s *service) do(ctx context.Context, f func()) error {
	err := s.loop.Do(ctx, f)
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return fmt.Errorf("timer loop: %w", err)
	}

	return fmt.Errorf("%w: %w", api.ErrUnavailable, err)
}
