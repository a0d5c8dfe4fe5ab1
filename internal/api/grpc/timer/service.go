package timer

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified name of the timer service.
const ServiceName = "posetimer.v1.TimerService"

// Full method names of the timer service.
const (
	GetInfoMethod = "/" + ServiceName + "/GetInfo"
	ExecuteMethod = "/" + ServiceName + "/Execute"
	WatchMethod   = "/" + ServiceName + "/Watch"
)

// TimerServiceServer is the server API of the timer service.
type TimerServiceServer interface {
	GetInfo(ctx context.Context, req *GetInfoRequest) (*StatusMessage, error)
	Execute(ctx context.Context, req *ExecuteRequest) (*StatusMessage, error)
	Watch(req *WatchRequest, stream grpc.ServerStreamingServer[EventMessage]) error
}

// UnimplementedTimerServiceServer answers every call with codes.Unimplemented.
// Embed it to stay compatible with methods added later.
type UnimplementedTimerServiceServer struct{}

// GetInfo is not implemented.
func (UnimplementedTimerServiceServer) GetInfo(context.Context, *GetInfoRequest) (*StatusMessage, error) {
	return nil, status.Error(codes.Unimplemented, "method GetInfo not implemented")
}

// Execute is not implemented.
func (UnimplementedTimerServiceServer) Execute(context.Context, *ExecuteRequest) (*StatusMessage, error) {
	return nil, status.Error(codes.Unimplemented, "method Execute not implemented")
}

// Watch is not implemented.
func (UnimplementedTimerServiceServer) Watch(*WatchRequest, grpc.ServerStreamingServer[EventMessage]) error {
	return status.Error(codes.Unimplemented, "method Watch not implemented")
}

// TimerServiceDesc describes the timer service for grpc.Server.
//
//nolint:gochecknoglobals // Service descriptors are package level by convention.
var TimerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TimerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetInfo",
			Handler:    getInfoHandler,
		},
		{
			MethodName: "Execute",
			Handler:    executeHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "posetimer/v1/timer",
}

// RegisterTimerServiceServer registers srv on a gRPC server.
func RegisterTimerServiceServer(registrar grpc.ServiceRegistrar, srv TimerServiceServer) {
	registrar.RegisterService(&TimerServiceDesc, srv)
}

func getInfoHandler(
	srv any,
	ctx context.Context, //nolint:revive // Order is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(GetInfoRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(TimerServiceServer).GetInfo(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetInfoMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TimerServiceServer).GetInfo(ctx, req.(*GetInfoRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func executeHandler(
	srv any,
	ctx context.Context, //nolint:revive // Order is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(ExecuteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(TimerServiceServer).Execute(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ExecuteMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TimerServiceServer).Execute(ctx, req.(*ExecuteRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	return srv.(TimerServiceServer).Watch(in, &grpc.GenericServerStream[WatchRequest, EventMessage]{ServerStream: stream})
}

// TimerServiceClient is the client API of the timer service.
type TimerServiceClient interface {
	GetInfo(ctx context.Context, in *GetInfoRequest, opts ...grpc.CallOption) (*StatusMessage, error)
	Execute(ctx context.Context, in *ExecuteRequest, opts ...grpc.CallOption) (*StatusMessage, error)
	Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[EventMessage], error)
}

// timerServiceClient calls the timer service over a connection, always with
// the cbor codec.
type timerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTimerServiceClient creates a client stub on top of a connection.
func NewTimerServiceClient(cc grpc.ClientConnInterface) TimerServiceClient {
	return &timerServiceClient{cc: cc}
}

// GetInfo returns the current state.
func (c *timerServiceClient) GetInfo(
	ctx context.Context,
	in *GetInfoRequest,
	opts ...grpc.CallOption,
) (*StatusMessage, error) {
	out := new(StatusMessage)
	if err := c.cc.Invoke(ctx, GetInfoMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}

	return out, nil
}

// Execute runs a command and returns the resulting state.
func (c *timerServiceClient) Execute(
	ctx context.Context,
	in *ExecuteRequest,
	opts ...grpc.CallOption,
) (*StatusMessage, error) {
	out := new(StatusMessage)
	if err := c.cc.Invoke(ctx, ExecuteMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}

	return out, nil
}

// Watch opens the event stream.
func (c *timerServiceClient) Watch(
	ctx context.Context,
	in *WatchRequest,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[EventMessage], error) {
	stream, err := c.cc.NewStream(ctx, &TimerServiceDesc.Streams[0], WatchMethod, withCodec(opts)...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[WatchRequest, EventMessage]{ClientStream: stream}
	if err := x.SendMsg(in); err != nil {
		return nil, err
	}

	if err := x.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

// withCodec prepends the cbor content subtype to the call options.
func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
