package control

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/pose-timer/internal/config"
	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/domain/session"
	"github.com/oshokin/pose-timer/internal/logger"
	"github.com/oshokin/pose-timer/internal/service/common"
	"github.com/oshokin/pose-timer/internal/version"
)

// Options configures a one-shot command.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Command is the command to run; nil only queries the state.
	Command *modeltimer.Command
	// Out receives the resulting state, stdout when nil.
	Out io.Writer
}

// defaultRetryInterval is the delay between attempts while the server is unreachable.
const defaultRetryInterval = 500 * time.Millisecond

// Run executes the command and prints the resulting state. Calls that fail
// because the server cannot be reached are retried until the configured
// timeout; any other failure is returned at once so a command is never
// applied twice.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pose-timer")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithUserAgent(version.UserAgent("pose-timer")),
	)
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	state, err := Execute(ctx, client, actor, opts.Command)
	if err != nil {
		return err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	_, err = fmt.Fprintln(out, FormatState(state))

	return err
}

// Executor is the part of the client a command needs.
type Executor interface {
	GetInfo(ctx context.Context, actor *session.Actor) (*session.State, error)
	Execute(ctx context.Context, actor *session.Actor, cmd modeltimer.Command) (*session.State, error)
}

// Execute runs cmd, or only fetches the state when cmd is nil, retrying while
// the server is unavailable.
func Execute(
	ctx context.Context,
	client Executor,
	actor *session.Actor,
	cmd *modeltimer.Command,
) (*session.State, error) {
	attempt := func() (*session.State, error) {
		if cmd == nil {
			return client.GetInfo(ctx, actor)
		}

		return client.Execute(ctx, actor, *cmd)
	}

	ticker := time.NewTicker(defaultRetryInterval)
	defer ticker.Stop()

	for {
		state, err := attempt()
		if err == nil {
			return state, nil
		}

		if status.Code(err) != codes.Unavailable {
			return nil, err
		}

		logger.WarnKV(ctx, "Timer server unavailable, retrying", "error", err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w (last error: %w)", ctx.Err(), err)
		case <-ticker.C:
		}
	}
}
