//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	api "github.com/oshokin/pose-timer/internal/api/grpc/timer"
	"github.com/oshokin/pose-timer/internal/config"
	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/domain/session"
	"github.com/oshokin/pose-timer/internal/logger"
)

// Client wraps the gRPC TimerService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the timer server.
	conn *grpc.ClientConn
	// api is the TimerService client stub.
	api api.TimerServiceClient
	// health checks whether the server is serving.
	health grpc_health_v1.HealthClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// userAgent is sent with every call.
	userAgent string
	// dialOptions are appended to the defaults.
	dialOptions []grpc.DialOption
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithUserAgent sets the user agent sent to the server.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithDialOptions adds gRPC dial options, e.g. a custom dialer in tests.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
)

// healthBackoffLimit caps the delay between health probes.
const healthBackoffLimit = time.Second

// Dial establishes a gRPC connection to the timer server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	dialOptions := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if client.userAgent != "" {
		dialOptions = append(dialOptions, grpc.WithUserAgent(client.userAgent))
	}

	dialOptions = append(dialOptions, client.dialOptions...)

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("dial timer server: %w", err)
	}

	client.conn = conn
	client.api = api.NewTimerServiceClient(conn)
	client.health = grpc_health_v1.NewHealthClient(conn)

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetInfo retrieves the current timer state.
func (c *Client) GetInfo(ctx context.Context, actor *session.Actor) (*session.State, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetInfo(callCtx, &api.GetInfoRequest{Actor: api.NewActor(actor)})
	if err != nil {
		return nil, fmt.Errorf("get timer info: %w", err)
	}

	return resp.ToDomain(), nil
}

// Execute runs a command on the remote timer and returns the resulting state.
func (c *Client) Execute(
	ctx context.Context,
	actor *session.Actor,
	cmd modeltimer.Command,
) (*session.State, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.Execute(callCtx, api.NewExecuteRequest(actor, cmd))
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", cmd.Kind, err)
	}

	return response.ToDomain(), nil
}

// Watch subscribes to timer events and calls handle for each one until ctx
// ends, the stream breaks or handle returns an error. The stream has no call
// timeout.
func (c *Client) Watch(ctx context.Context, actor *session.Actor, handle func(modeltimer.Event) error) error {
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.api.Watch(streamCtx, &api.WatchRequest{Actor: api.NewActor(actor)})
	if err != nil {
		return fmt.Errorf("watch timer: %w", err)
	}

	for {
		msg, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return fmt.Errorf("receive timer event: %w", err)
		}

		if err := handle(msg.ToDomain()); err != nil {
			return err
		}
	}
}

// WaitForHealth blocks until the server reports SERVING for the timer
// service or the context ends.
func (c *Client) WaitForHealth(ctx context.Context) error {
	backoff := 100 * time.Millisecond

	for {
		callCtx, cancel := c.callContext(ctx)
		response, err := c.health.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: api.ServiceName})

		cancel()

		if err == nil && response.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
			return nil
		}

		if err != nil {
			logger.DebugKV(ctx, "Waiting for timer server", "error", err)
		} else {
			logger.DebugKV(ctx, "Waiting for timer server", "status", response.GetStatus().String())
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for timer server: %w", ctx.Err())
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, healthBackoffLimit)
	}
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
