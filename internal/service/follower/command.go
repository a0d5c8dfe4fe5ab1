package follower

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/pose-timer/internal/clock"
	"github.com/oshokin/pose-timer/internal/config"
	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/logger"
	"github.com/oshokin/pose-timer/internal/service/common"
	"github.com/oshokin/pose-timer/internal/version"
)

// Options controls the follower.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// Tolerance overrides DefaultTolerance when positive.
	Tolerance time.Duration
	// ReconnectInterval is the delay before a broken stream is reopened.
	ReconnectInterval time.Duration
}

// DefaultReconnectInterval is the delay between reconnection attempts.
const DefaultReconnectInterval = 2 * time.Second

// Run follows the server until the context is canceled, reconnecting
// whenever the event stream breaks.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pose-timer-follower")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = DefaultReconnectInterval
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
		common.WithUserAgent(version.UserAgent("pose-timer-follower")),
	)
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	loop := clock.NewLoop(clock.DefaultQueueSize)

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer func() {
		stopLoop()
		<-loop.Done()
	}()

	go loop.Run(loopCtx)

	f := newFollower(ctx, loop, cfg.Timer.Settings(), opts.Tolerance)

	logger.InfoKV(ctx, "Following timer server", "server_address", serverAddress, "tolerance", f.tolerance.String())

	for {
		err := client.Watch(ctx, actor, func(event modeltimer.Event) error {
			return loop.Do(ctx, func() { f.apply(event) })
		})

		if ctx.Err() != nil {
			logger.Info(ctx, "Context canceled, exiting")

			return nil
		}

		if errors.Is(err, clock.ErrLoopStopped) {
			return err
		}

		logger.WarnKV(ctx, "Event stream broken, reconnecting", "error", err, "retry_in", opts.ReconnectInterval.String())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(opts.ReconnectInterval):
		}
	}
}
