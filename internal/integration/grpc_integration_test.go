package integration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/pose-timer/internal/config"
	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/domain/session"
	"github.com/oshokin/pose-timer/internal/service/common"
	"github.com/oshokin/pose-timer/internal/service/server"
)

// errAlarmSeen stops the watch once the alarm event arrives.
var errAlarmSeen = errors.New("alarm seen")

// startServer runs the real server on a free port with a short pose and
// returns its address. The server stops when the test ends.
func startServer(t *testing.T, timer config.Timer) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(t, config.Save(cfgPath, &config.Config{
		ServerAddress: "127.0.0.1:0",
		Timeout:       3 * time.Second,
		Timer:         timer,
	}))

	ready := make(chan string, 1)
	stopped := make(chan error, 1)

	go func() {
		stopped <- server.Run(ctx, &server.Options{
			ConfigPath:    cfgPath,
			ListenAddress: "127.0.0.1:0",
			Ready:         func(address string) { ready <- address },
		})
	}()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-stopped)
	})

	select {
	case address := <-ready:
		return address
	case err := <-stopped:
		require.FailNow(t, "server stopped before listening", "error: %v", err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "server did not start")
	}

	return ""
}

func dial(t *testing.T, address string) *common.Client {
	t.Helper()

	client, err := common.Dial(context.Background(), address, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.WaitForHealth(ctx))

	return client
}

// TestGRPC_ExecuteAndGetInfo drives the real server through commands and reads
// the shared state back from a second connection.
func TestGRPC_ExecuteAndGetInfo(t *testing.T) {
	t.Parallel()

	address := startServer(t, config.Timer{Pose: 20 * time.Minute, Break: 5 * time.Minute})
	ctx := context.Background()

	first := dial(t, address)
	second := dial(t, address)

	alice := &session.Actor{Hostname: "studio", Username: "alice"}
	bob := &session.Actor{Hostname: "laptop", Username: "bob"}

	state, err := first.GetInfo(ctx, alice)
	require.NoError(t, err)
	require.False(t, state.Status.Running)
	require.Equal(t, 20*time.Minute, state.Status.Duration)
	require.Nil(t, state.LastChange)

	state, err = first.Execute(ctx, alice, modeltimer.Command{Kind: modeltimer.CommandAddOne})
	require.NoError(t, err)
	require.Equal(t, 21*time.Minute, state.Status.Duration)

	state, err = first.Execute(ctx, alice, modeltimer.Command{Kind: modeltimer.CommandNext})
	require.NoError(t, err)
	require.Equal(t, modeltimer.SegmentBreak, state.Status.Segment)
	require.Equal(t, 5*time.Minute, state.Status.Duration)

	state, err = second.Execute(ctx, bob, modeltimer.Command{Kind: modeltimer.CommandStart})
	require.NoError(t, err)
	require.True(t, state.Status.Running)

	state, err = first.GetInfo(ctx, alice)
	require.NoError(t, err)
	require.True(t, state.Status.Running)
	require.NotNil(t, state.LastChange)
	require.Equal(t, "bob@laptop", state.LastChange.Actor.String())
	require.Equal(t, modeltimer.CommandStart, state.LastChange.Command)
}

// TestGRPC_WatchUntilAlarm follows a short pose over the event stream until
// the alarm sounds.
func TestGRPC_WatchUntilAlarm(t *testing.T) {
	t.Parallel()

	address := startServer(t, config.Timer{
		Pose:       time.Second,
		Break:      time.Second,
		Alarm:      5 * time.Second,
		AutoStart:  time.Minute,
		TickPeriod: 50 * time.Millisecond,
	})

	client := dial(t, address)
	actor := &session.Actor{Hostname: "studio", Username: "alice"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var kinds []modeltimer.EventKind

	started := make(chan struct{})

	watchErr := make(chan error, 1)

	go func() {
		watchErr <- client.Watch(ctx, actor, func(event modeltimer.Event) error {
			kinds = append(kinds, event.Kind)

			if len(kinds) == 1 {
				close(started)
			}

			if event.Kind == modeltimer.EventAlarm {
				return errAlarmSeen
			}

			return nil
		})
	}()

	select {
	case <-started:
	case <-ctx.Done():
		require.FailNow(t, "no snapshot received")
	}

	_, err := client.Execute(ctx, actor, modeltimer.Command{Kind: modeltimer.CommandStart})
	require.NoError(t, err)

	require.ErrorIs(t, <-watchErr, errAlarmSeen)
	require.Equal(t, modeltimer.EventSnapshot, kinds[0])
	require.Contains(t, kinds, modeltimer.EventTimerStarted)
	require.Contains(t, kinds, modeltimer.EventTick)
	require.Equal(t, modeltimer.EventAlarm, kinds[len(kinds)-1])

	state, err := client.GetInfo(context.Background(), actor)
	require.NoError(t, err)
	require.True(t, state.Status.AlarmSounding)
	require.False(t, state.Status.Running)
}
