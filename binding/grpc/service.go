// Package grpc implements the world transport over gRPC, with all messages
// serialized using canonical CBOR.
package grpc

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"

	"github.com/aqua-stark/world-binding/binding/api"
)

// ServiceName is the gRPC service name of the world gateway.
const ServiceName = "aquastark.World"

var (
	// methodExecute is the Execute method.
	methodExecute = newMethod("Execute")
	// methodCall is the Call method.
	methodCall = newMethod("Call")

	// serviceDesc is the gRPC service descriptor.
	serviceDesc = grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*World)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: methodExecute.short,
				Handler:    handlerExecute,
			},
			{
				MethodName: methodCall.short,
				Handler:    handlerCall,
			},
		},
		Streams: []grpc.StreamDesc{},
	}
)

type methodDesc struct {
	short string
	full  string
}

func newMethod(name string) *methodDesc {
	if strings.Contains(name, "/") {
		panic(fmt.Errorf("'/' not allowed in method name: %s", name))
	}
	return &methodDesc{
		short: name,
		full:  fmt.Sprintf("/%s/%s", ServiceName, name),
	}
}

// ExecuteRequest is a signed mutation.
type ExecuteRequest struct {
	Account    string         `json:"account"`
	Signature  []byte         `json:"signature"`
	Invocation api.Invocation `json:"invocation"`
}

// World is the world gateway, as seen by the server side.
type World interface {
	// Execute submits a signed mutation.
	Execute(ctx context.Context, req *ExecuteRequest) (*api.TransactionHandle, error)

	// Call performs a read-only invocation.
	Call(ctx context.Context, inv *api.Invocation) (api.ResultSet, error)
}

func handlerExecute(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	var req ExecuteRequest
	if err := dec(&req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(World).Execute(ctx, &req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodExecute.full,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(World).Execute(ctx, req.(*ExecuteRequest))
	}
	return interceptor(ctx, &req, info, handler)
}

func handlerCall(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	var inv api.Invocation
	if err := dec(&inv); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(World).Call(ctx, &inv)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: methodCall.full,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(World).Call(ctx, req.(*api.Invocation))
	}
	return interceptor(ctx, &inv, info, handler)
}

// NewServer creates a new gRPC server configured with the CBOR codec.
func NewServer(opts ...grpc.ServerOption) *grpc.Server {
	sOpts := []grpc.ServerOption{
		grpc.ForceServerCodec(&CBORCodec{}),
		grpc.ChainUnaryInterceptor(serverUnaryErrorMapper),
	}
	return grpc.NewServer(append(sOpts, opts...)...)
}

// RegisterService registers a new world gateway with the given gRPC server.
func RegisterService(server *grpc.Server, world World) {
	server.RegisterService(&serviceDesc, world)
}
