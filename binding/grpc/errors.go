package grpc

import (
	"context"

	anypb "github.com/golang/protobuf/ptypes/any"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aqua-stark/world-binding/common/cbor"
	"github.com/aqua-stark/world-binding/common/errors"
)

// IsErrorCode returns true if the given error represents a specific gRPC error code.
func IsErrorCode(err error, code codes.Code) bool {
	var grpcError interface {
		error
		GRPCStatus() *status.Status
	}
	if !errors.As(err, &grpcError) {
		return false
	}

	return grpcError.GRPCStatus().Code() == code
}

// grpcError is a serializable registered error.
type grpcError struct {
	Module string `json:"module,omitempty"`
	Code   uint32 `json:"code,omitempty"`
}

func errorToGrpc(err error) error {
	if err == nil {
		return nil
	}

	module, code := errors.Code(err)
	if module == errors.UnknownModule {
		return err
	}

	// The details are serialized with the CBOR codec as well.
	return status.FromProto(&spb.Status{
		Code:    int32(status.Code(err)),
		Message: err.Error(),
		Details: []*anypb.Any{
			{
				Value: cbor.Marshal(&grpcError{Module: module, Code: code}),
			},
		},
	}).Err()
}

func errorFromGrpc(err error) error {
	if err == nil {
		return nil
	}

	s, ok := status.FromError(err)
	if !ok {
		return err
	}
	sp := s.Proto()
	if len(sp.Details) != 1 {
		return err
	}
	var ge grpcError
	if cerr := cbor.Unmarshal(sp.Details[0].Value, &ge); cerr != nil {
		return err
	}
	return errors.FromCode(ge.Module, ge.Code, s.Message())
}

func serverUnaryErrorMapper(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	rsp, err := handler(ctx, req)
	return rsp, errorToGrpc(err)
}

func clientUnaryErrorMapper(
	ctx context.Context,
	method string,
	req, rsp interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	err := invoker(ctx, method, req, rsp, cc, opts...)
	return errorFromGrpc(err)
}
