package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	api "github.com/oshokin/pose-timer/internal/api/grpc/timer"
	"github.com/oshokin/pose-timer/internal/clock"
	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/domain/session"
	"github.com/oshokin/pose-timer/internal/logger"
)

var testActor = &session.Actor{Hostname: "studio-desk", Username: "o.shokin"}

// startService runs a service on a fresh loop; the loop stops with the test bubble.
func startService(t *testing.T, settings modeltimer.Settings) (*service, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(logger.ToContext(context.Background(), zap.NewNop().Sugar()))
	loop := clock.NewLoop(0)
	svc := newService(ctx, loop, settings)

	go loop.Run(ctx)

	return svc, func() {
		cancel()
		<-loop.Done()
	}
}

// TestService_ExecuteAndState verifies commands run on the loop and record the actor.
func TestService_ExecuteAndState(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		svc, stop := startService(t, modeltimer.Settings{PoseDuration: 5 * time.Minute})
		defer stop()

		ctx := context.Background()

		state, err := svc.State(ctx)
		require.NoError(t, err)
		require.Nil(t, state.LastChange)
		require.Equal(t, 5*time.Minute, state.Status.Remaining)

		state, err = svc.Execute(ctx, testActor, modeltimer.Command{Kind: modeltimer.CommandStart})
		require.NoError(t, err)
		require.True(t, state.Status.Running)
		require.Equal(t, modeltimer.CommandStart, state.LastChange.Command)
		require.Equal(t, testActor, state.LastChange.Actor)
		require.NotSame(t, testActor, state.LastChange.Actor)

		time.Sleep(90 * time.Second)

		state, err = svc.State(ctx)
		require.NoError(t, err)
		require.Equal(t, 210*time.Second, state.Status.Remaining)

		_, err = svc.Execute(ctx, testActor, modeltimer.Command{Kind: "launch"})
		require.ErrorIs(t, err, modeltimer.ErrUnknownCommand)
	})
}

// TestService_StoppedLoop reports the timer as unavailable.
func TestService_StoppedLoop(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		svc, stop := startService(t, modeltimer.Settings{})
		stop()

		_, err := svc.State(context.Background())
		require.ErrorIs(t, err, api.ErrUnavailable)
	})
}

// TestService_Watch streams a snapshot first and then live events.
func TestService_Watch(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		svc, stop := startService(t, modeltimer.Settings{
			PoseDuration:  3 * time.Second,
			AlarmDuration: time.Second,
		})
		defer stop()

		watchCtx, leave := context.WithCancel(context.Background())

		var (
			mu     sync.Mutex
			events []modeltimer.Event
			done   = make(chan error, 1)
		)

		go func() {
			done <- svc.Watch(watchCtx, testActor, func(e modeltimer.Event) error {
				mu.Lock()
				defer mu.Unlock()

				events = append(events, e)

				return nil
			})
		}()

		synctest.Wait()
		require.Equal(t, 1, svc.hub.size())

		_, err := svc.Execute(context.Background(), testActor, modeltimer.Command{Kind: modeltimer.CommandStart})
		require.NoError(t, err)

		time.Sleep(5 * time.Second)
		synctest.Wait()

		leave()
		require.NoError(t, <-done)
		require.Zero(t, svc.hub.size())

		mu.Lock()
		defer mu.Unlock()

		kinds := make([]modeltimer.EventKind, 0, len(events))
		for _, e := range events {
			kinds = append(kinds, e.Kind)
		}

		require.Equal(t, modeltimer.EventSnapshot, kinds[0])
		require.Contains(t, kinds, modeltimer.EventTimerStarted)
		require.Contains(t, kinds, modeltimer.EventAlarm)

		var alarms []bool

		for _, e := range events {
			if e.Kind == modeltimer.EventAlarm {
				alarms = append(alarms, e.Sounding)
			}
		}

		require.Equal(t, []bool{true, false}, alarms)
	})
}

// TestService_WatchSendError ends the watch with the transport error.
func TestService_WatchSendError(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		svc, stop := startService(t, modeltimer.Settings{})
		defer stop()

		errGone := errors.New("client gone")

		err := svc.Watch(context.Background(), testActor, func(modeltimer.Event) error { return errGone })
		require.ErrorIs(t, err, errGone)
		require.Zero(t, svc.hub.size())
	})
}

// TestService_CloseEndsWatchers disconnects watchers on shutdown.
func TestService_CloseEndsWatchers(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		svc, stop := startService(t, modeltimer.Settings{})
		defer stop()

		done := make(chan error, 1)

		go func() {
			done <- svc.Watch(context.Background(), testActor, func(modeltimer.Event) error { return nil })
		}()

		synctest.Wait()
		svc.close()

		require.ErrorIs(t, <-done, api.ErrUnavailable)

		err := svc.Watch(context.Background(), testActor, func(modeltimer.Event) error { return nil })
		require.ErrorIs(t, err, api.ErrUnavailable)
	})
}

// TestService_Heartbeat publishes snapshots while the timer is idle.
func TestService_Heartbeat(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		svc, stop := startService(t, modeltimer.Settings{})
		defer stop()

		id, sub, err := svc.hub.subscribe()
		require.NoError(t, err)

		heartbeat := svc.startHeartbeat(10 * time.Second)

		time.Sleep(35 * time.Second)
		synctest.Wait()
		heartbeat.Cancel()

		require.Len(t, sub.events, 3)

		event := <-sub.events
		require.Equal(t, modeltimer.EventSnapshot, event.Kind)
		require.Equal(t, modeltimer.DefaultPoseDuration, event.Info.Remaining)

		svc.hub.unsubscribe(id)
	})
}

// TestHub_DropsSlowSubscriber verifies a full buffer disconnects the watcher.
func TestHub_DropsSlowSubscriber(t *testing.T) {
	t.Parallel()

	h := newHub(zap.NewNop().Sugar(), 2)

	_, slow, err := h.subscribe()
	require.NoError(t, err)

	for range 3 {
		h.publish(modeltimer.Event{Kind: modeltimer.EventTick})
	}

	require.Zero(t, h.size())

	count := 0
	for range slow.events {
		count++
	}

	require.Equal(t, 2, count)
	require.ErrorIs(t, slow.err, api.ErrSlowSubscriber)
}

// TestResolveListenAddress covers the override and the port extraction.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("timer.local:50051", "")
	require.NoError(t, err)
	require.Equal(t, ":50051", addr)

	addr, err = resolveListenAddress("timer.local:50051", "127.0.0.1:7000")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:7000", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("timer.local", "")
	require.Error(t, err)
}
