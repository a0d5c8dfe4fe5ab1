package console

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/domain/session"
)

// recordingExecutor remembers the commands it receives.
type recordingExecutor struct {
	commands []modeltimer.Command
	infos    int
}

func (r *recordingExecutor) GetInfo(context.Context, *session.Actor) (*session.State, error) {
	r.infos++

	return &session.State{Status: modeltimer.Status{Info: modeltimer.Info{Duration: time.Minute, Remaining: time.Minute}}}, nil
}

func (r *recordingExecutor) Execute(_ context.Context, _ *session.Actor, cmd modeltimer.Command) (*session.State, error) {
	r.commands = append(r.commands, cmd)

	return &session.State{Status: modeltimer.Status{Info: modeltimer.Info{Running: true, Duration: time.Minute, Remaining: time.Minute}}}, nil
}

// TestShell_Handle dispatches console lines.
func TestShell_Handle(t *testing.T) {
	t.Parallel()

	var (
		out  bytes.Buffer
		exec = new(recordingExecutor)
		sh   = &shell{client: exec, out: &out, timeout: time.Second}
		ctx  = context.Background()
	)

	require.NoError(t, sh.handle(ctx, "   "))
	require.NoError(t, sh.handle(ctx, "status"))
	require.Equal(t, 1, exec.infos)
	require.Contains(t, out.String(), "pose 1:00 of 1:00, stopped")

	require.NoError(t, sh.handle(ctx, "Start off"))
	require.NoError(t, sh.handle(ctx, "duration 25"))
	require.NoError(t, sh.handle(ctx, "+"))
	require.Contains(t, out.String(), "running")

	require.Len(t, exec.commands, 3)
	require.Equal(t, modeltimer.CommandStart, exec.commands[0].Kind)
	require.False(t, *exec.commands[0].SoundAlerts)
	require.Equal(t, 25*time.Minute, exec.commands[1].Duration)
	require.Equal(t, modeltimer.CommandAddOne, exec.commands[2].Kind)

	require.ErrorIs(t, sh.handle(ctx, "launch"), modeltimer.ErrUnknownCommand)
	require.Len(t, exec.commands, 3)

	out.Reset()
	require.NoError(t, sh.handle(ctx, "help"))
	require.Contains(t, out.String(), "stop-alarm")

	require.ErrorIs(t, sh.handle(ctx, "quit"), errQuit)
}
