package timer

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/domain/session"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	// State returns the current timer state.
	State(ctx context.Context) (*session.State, error)
	// Execute applies a command on behalf of actor.
	Execute(ctx context.Context, actor *session.Actor, cmd modeltimer.Command) (*session.State, error)
	// Watch streams timer events to send until ctx ends or send fails.
	Watch(ctx context.Context, actor *session.Actor, send func(modeltimer.Event) error) error
}

var (
	// ErrUnavailable is returned by a Service that can no longer reach its timer.
	ErrUnavailable = errors.New("timer is not available")
	// ErrSlowSubscriber is returned by Watch when a subscriber fell too far behind.
	ErrSlowSubscriber = errors.New("subscriber is too slow")
)

// Server implements the TimerService gRPC API.
type Server struct {
	UnimplementedTimerServiceServer

	// service provides the business logic for timer operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetInfo returns the current timer state.
func (s *Server) GetInfo(ctx context.Context, _ *GetInfoRequest) (*StatusMessage, error) {
	state, err := s.service.State(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return NewStatusMessage(state), nil
}

// Execute applies one command and returns the resulting state.
func (s *Server) Execute(ctx context.Context, req *ExecuteRequest) (*StatusMessage, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.Actor == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	cmd, err := req.ToCommand()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if cmd.Kind == modeltimer.CommandSynchronize && req.Remote == nil {
		return nil, status.Error(codes.InvalidArgument, "remote snapshot is required")
	}

	state, err := s.service.Execute(ctx, req.Actor.ToDomain(), cmd)
	if err != nil {
		return nil, toStatus(err)
	}

	return NewStatusMessage(state), nil
}

// Watch streams timer events until the client goes away.
func (s *Server) Watch(req *WatchRequest, stream grpc.ServerStreamingServer[EventMessage]) error {
	var actor *session.Actor
	if req != nil {
		actor = req.Actor.ToDomain()
	}

	err := s.service.Watch(stream.Context(), actor, func(event modeltimer.Event) error {
		return stream.Send(NewEventMessage(event))
	})
	if err != nil {
		return toStatus(err)
	}

	return nil
}

// toStatus maps service errors to gRPC status codes.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, modeltimer.ErrUnknownCommand):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrSlowSubscriber):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "timer operation failed")
	}
}
