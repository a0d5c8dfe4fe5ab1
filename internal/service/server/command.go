package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	api "github.com/oshokin/pose-timer/internal/api/grpc/timer"
	"github.com/oshokin/pose-timer/internal/clock"
	"github.com/oshokin/pose-timer/internal/config"
	"github.com/oshokin/pose-timer/internal/logger"
)

// Options controls the pose-timer-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// LogLevel overrides the level from the settings file when set.
	LogLevel string
	// Ready, when set, receives the bound listen address once the server accepts connections.
	Ready func(address string)
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pose-timer-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err := applyLogLevel(settings.LogLevel, opts.LogLevel); err != nil {
		return err
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	warnOtherInstances(ctx)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	// The loop outlives ctx so in-flight calls can finish during the graceful stop.
	loopCtx, stopLoop := context.WithCancel(context.WithoutCancel(ctx))
	defer stopLoop()

	loop := clock.NewLoop(clock.DefaultQueueSize)
	svc := newService(ctx, loop, settings.Timer.Settings())

	go loop.Run(loopCtx)

	heartbeat := svc.startHeartbeat(settings.Timer.Heartbeat)

	grpcServer := grpc.NewServer()
	api.RegisterTimerServiceServer(grpcServer, api.NewServer(svc))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(api.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	logger.InfoKV(ctx, "Pose timer server listening",
		"listen_address", lis.Addr().String(),
		"pose", settings.Timer.Pose,
		"break", settings.Timer.Break,
		"pose_lengths", settings.Timer.PoseLengths,
	)

	if opts.Ready != nil {
		opts.Ready(lis.Addr().String())
	}

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		healthServer.Shutdown()
		heartbeat.Cancel()
		svc.close()
		grpcServer.GracefulStop()
		stopLoop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	<-loop.Done()
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// applyLogLevel sets the process log level, preferring the command line.
func applyLogLevel(fromConfig, override string) error {
	name := fromConfig
	if override != "" {
		name = override
	}

	level, ok := logger.ParseLogLevel(name)
	if !ok {
		return fmt.Errorf("unknown log level %q", name)
	}

	logger.SetLevel(level)

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Bind on all interfaces.
	return ":" + port, nil
}
