package grpc

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/aqua-stark/world-binding/binding/api"
	cmnBackoff "github.com/aqua-stark/world-binding/common/backoff"
	"github.com/aqua-stark/world-binding/common/cbor"
	"github.com/aqua-stark/world-binding/common/logging"
)

// maxCallRetries is the number of times a call is retried while the
// gateway is unavailable.
const maxCallRetries = 3

var _ api.Transport = (*Transport)(nil)

// Transport is a world transport backed by a gRPC client connection.
type Transport struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// Execute implements api.Transport.
func (t *Transport) Execute(ctx context.Context, signer api.Signer, inv *api.Invocation) (*api.TransactionHandle, error) {
	sig, err := signer.Sign(SigningPayload(inv))
	if err != nil {
		return nil, fmt.Errorf("grpc: failed to sign invocation: %w", err)
	}
	req := &ExecuteRequest{
		Account:    signer.Address(),
		Signature:  sig,
		Invocation: *inv,
	}

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	var rsp api.TransactionHandle
	if err = t.conn.Invoke(ctx, methodExecute.full, req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// Call implements api.Transport.
func (t *Transport) Call(ctx context.Context, inv *api.Invocation) (api.ResultSet, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	// Calls are read-only, so they are retried while the gateway is
	// unavailable. Mutations are never retried.
	var rsp api.ResultSet
	op := func() error {
		rsp = nil
		err := t.conn.Invoke(ctx, methodCall.full, inv, &rsp)
		if err != nil && !IsErrorCode(err, codes.Unavailable) {
			return backoff.Permanent(err)
		}
		return err
	}
	sched := backoff.WithContext(backoff.WithMaxRetries(cmnBackoff.NewExponentialBackOff(), maxCallRetries), ctx)
	if err := backoff.Retry(op, sched); err != nil {
		return nil, err
	}
	return rsp, nil
}

func (t *Transport) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

// Close closes the underlying connection.
func (t *Transport) Close() error {
	return t.conn.Close()
}

// NewTransport creates a new transport over an existing connection. The
// connection must use the CBOR codec, see Dial.
func NewTransport(conn *grpc.ClientConn, timeout time.Duration) *Transport {
	return &Transport{
		conn:    conn,
		timeout: timeout,
	}
}

// SigningPayload returns the bytes a signer signs to authorize inv.
func SigningPayload(inv *api.Invocation) []byte {
	return cbor.Marshal(inv)
}

// Dial creates a client connection to the given world gateway.
func Dial(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	initMetrics()

	logAdapter := &clientLogger{
		logger: logging.GetLogger("binding/grpc/client"),
	}
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(&CBORCodec{})),
		grpc.WithChainUnaryInterceptor(logAdapter.unaryClientLogger, clientUnaryErrorMapper),
	}
	dialOpts = append(dialOpts, opts...)
	return grpc.Dial(target, dialOpts...)
}

type clientLogger struct {
	logger *logging.Logger
	reqSeq uint64
}

func (l *clientLogger) unaryClientLogger(ctx context.Context,
	method string,
	req, rsp any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	seq := atomic.AddUint64(&l.reqSeq, 1)
	l.logger.Debug("request",
		"method", method,
		"req_seq", seq,
	)

	grpcClientCalls.WithLabelValues(method).Inc()

	start := time.Now()
	err := invoker(ctx, method, req, rsp, cc, opts...)
	grpcClientLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		grpcClientFailures.WithLabelValues(method).Inc()
		l.logger.Debug("request failed",
			"method", method,
			"req_seq", seq,
			"err", err,
		)
		return err
	}

	return nil
}
