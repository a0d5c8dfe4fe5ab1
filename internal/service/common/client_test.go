//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	api "github.com/oshokin/pose-timer/internal/api/grpc/timer"
	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/domain/session"
)

var testActor = &session.Actor{Hostname: "studio-desk", Username: "o.shokin"}

// echoService answers with a state derived from the last command.
type echoService struct{}

func (echoService) State(context.Context) (*session.State, error) {
	return &session.State{Status: modeltimer.Status{Info: modeltimer.Info{Duration: time.Minute, Remaining: time.Minute}}}, nil
}

func (echoService) Execute(_ context.Context, actor *session.Actor, cmd modeltimer.Command) (*session.State, error) {
	return &session.State{
		Status:     modeltimer.Status{Info: modeltimer.Info{Duration: cmd.Duration, Remaining: cmd.Duration}},
		LastChange: &session.Change{Actor: actor, Command: cmd.Kind, Timestamp: time.UnixMilli(0)},
	}, nil
}

func (echoService) Watch(ctx context.Context, _ *session.Actor, send func(modeltimer.Event) error) error {
	for _, kind := range []modeltimer.EventKind{modeltimer.EventSnapshot, modeltimer.EventTick} {
		if err := send(modeltimer.Event{Kind: kind}); err != nil {
			return err
		}
	}

	<-ctx.Done()

	return nil
}

// dialTestServer serves echoService and health over bufconn.
func dialTestServer(t *testing.T, healthy bool) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	api.RegisterTimerServiceServer(server, api.NewServer(echoService{}))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)

	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if healthy {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}

	healthServer.SetServingStatus(api.ServiceName, status)

	go func() { _ = server.Serve(lis) }()

	t.Cleanup(server.Stop)

	client, err := Dial(context.Background(), "passthrough:///bufnet",
		WithCallTimeout(time.Second),
		WithUserAgent("pose-timer-test/1"),
		WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		})),
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestExecute_NilActor asserts that a nil actor is rejected by the client.
func TestExecute_NilActor(t *testing.T) {
	t.Parallel()

	c := new(Client)

	_, err := c.Execute(context.Background(), nil, modeltimer.Command{Kind: modeltimer.CommandStart})
	require.Error(t, err)
}

// TestClose_Nil tolerates a client that never connected.
func TestClose_Nil(t *testing.T) {
	t.Parallel()

	var c *Client

	require.NoError(t, c.Close())
}

// TestClient_Calls exercises every RPC through the wrapper.
func TestClient_Calls(t *testing.T) {
	t.Parallel()

	client := dialTestServer(t, true)
	ctx := context.Background()

	require.NoError(t, client.WaitForHealth(ctx))

	state, err := client.GetInfo(ctx, testActor)
	require.NoError(t, err)
	require.Equal(t, time.Minute, state.Status.Remaining)

	state, err = client.Execute(ctx, testActor, modeltimer.Command{Kind: modeltimer.CommandSetDuration, Duration: 3 * time.Minute})
	require.NoError(t, err)
	require.Equal(t, 3*time.Minute, state.Status.Duration)
	require.Equal(t, testActor, state.LastChange.Actor)

	errEnough := errors.New("enough")

	var kinds []modeltimer.EventKind

	err = client.Watch(ctx, testActor, func(e modeltimer.Event) error {
		kinds = append(kinds, e.Kind)
		if len(kinds) == 2 {
			return errEnough
		}

		return nil
	})
	require.ErrorIs(t, err, errEnough)
	require.Equal(t, []modeltimer.EventKind{modeltimer.EventSnapshot, modeltimer.EventTick}, kinds)
}

// TestWaitForHealth_GivesUp returns once the context ends on a server that is not serving.
func TestWaitForHealth_GivesUp(t *testing.T) {
	t.Parallel()

	client := dialTestServer(t, false)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, client.WaitForHealth(ctx), context.DeadlineExceeded)
}
