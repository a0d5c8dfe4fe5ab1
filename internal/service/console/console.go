package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/oshokin/pose-timer/internal/config"
	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/domain/session"
	"github.com/oshokin/pose-timer/internal/logger"
	"github.com/oshokin/pose-timer/internal/service/common"
	"github.com/oshokin/pose-timer/internal/service/control"
	"github.com/oshokin/pose-timer/internal/version"
)

// Options configures the console.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// HistoryFile keeps the command history between sessions when set.
	HistoryFile string
	// Stdin and Stdout replace the terminal when set.
	Stdin  io.ReadCloser
	Stdout io.Writer
}

// errQuit ends the read loop.
var errQuit = errors.New("quit")

const helpText = `Commands:
  status | s                show the timer state
  start [on|off]            start, optionally forcing the alerts
  stop | pause              pause the countdown
  reset                     back to the start of the segment
  next                      switch between pose and break
  stop-alarm | silence      silence the alarm
  add | +                   one minute more
  subtract | sub | -        one minute less
  duration <d>              set the segment length (25, 25m, 1h)
  poses <d>...              set the pose-change schedule
  help | ?                  show this help
  quit | exit | q           leave the console`

// completer offers the command names on tab.
//
//nolint:gochecknoglobals // Read-only completion tree.
var completer = readline.NewPrefixCompleter(
	readline.PcItem("status"),
	readline.PcItem("start", readline.PcItem("on"), readline.PcItem("off")),
	readline.PcItem("stop"),
	readline.PcItem("pause"),
	readline.PcItem("reset"),
	readline.PcItem("next"),
	readline.PcItem("stop-alarm"),
	readline.PcItem("add"),
	readline.PcItem("subtract"),
	readline.PcItem("duration"),
	readline.PcItem("poses"),
	readline.PcItem("help"),
	readline.PcItem("quit"),
)

// Run reads commands until quit, EOF or the context ends.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pose-timer-console")

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
		common.WithUserAgent(version.UserAgent("pose-timer-console")),
	)
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "pose-timer> ",
		HistoryFile:     opts.HistoryFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           opts.Stdin,
		Stdout:          opts.Stdout,
	})
	if err != nil {
		return fmt.Errorf("create readline: %w", err)
	}

	defer func() {
		_ = rl.Close()
	}()

	// Close readline when the context ends so a pending read returns.
	stop := context.AfterFunc(ctx, func() { _ = rl.Close() })
	defer stop()

	sh := &shell{
		client:  client,
		actor:   actor,
		out:     rl.Stdout(),
		timeout: cfg.Timeout,
	}

	_, _ = fmt.Fprintln(sh.out, helpText)

	for {
		line, err := rl.Readline()

		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}

			continue
		case err != nil:
			return nil
		}

		if err := sh.handle(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}

			_, _ = fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}

// shell executes console lines against the server.
type shell struct {
	// client reaches the server.
	client control.Executor
	// actor is sent with every command.
	actor *session.Actor
	// out receives the output.
	out io.Writer
	// timeout bounds one command including its retries.
	timeout time.Duration
}

// handle runs one console line.
func (s *shell) handle(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "help", "?":
		_, _ = fmt.Fprintln(s.out, helpText)

		return nil
	case "quit", "exit", "q":
		return errQuit
	case "status", "s":
		return s.run(ctx, nil)
	}

	cmd, err := control.ParseCommand(name, args)
	if err != nil {
		return err
	}

	return s.run(ctx, &cmd)
}

func (s *shell) run(ctx context.Context, cmd *modeltimer.Command) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	state, err := control.Execute(ctx, s.client, s.actor, cmd)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(s.out, control.FormatState(state))

	return err
}
