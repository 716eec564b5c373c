package grpc

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/binding/dispatch"
	"github.com/aqua-stark/world-binding/codec"
	"github.com/aqua-stark/world-binding/common"
	"github.com/aqua-stark/world-binding/signer/memory"
)

var (
	testTarget = api.NewTarget("GrpcTest")
	testNew    = testTarget.NewMethod("new_thing", api.Mutation, api.P("name", codec.ByteArrayShape))
	testGet    = testTarget.NewMethod("get_thing", api.View, api.P("id", codec.FeltShape))
)

// testWorld is an in-memory world gateway.
type testWorld struct {
	sync.Mutex

	keys   map[string]ed25519.PublicKey
	things []string

	unavailable int
	calls       int
}

func (w *testWorld) Execute(_ context.Context, req *ExecuteRequest) (*api.TransactionHandle, error) {
	w.Lock()
	defer w.Unlock()

	pk, ok := w.keys[req.Account]
	if !ok || !memory.Verify(pk, SigningPayload(&req.Invocation), req.Signature) {
		return nil, api.ErrUnauthorized
	}

	values, err := codec.DecodeAll([]codec.Shape{codec.ByteArrayShape}, req.Invocation.Calldata)
	if err != nil {
		return nil, err
	}
	if len(values[0].String()) > 8 {
		return nil, status.Error(codes.FailedPrecondition, "Failure reason: 0x4e616d65 ('Name is too long').")
	}
	w.things = append(w.things, values[0].String())
	id := int64(len(w.things))

	return &api.TransactionHandle{
		TransactionID: fmt.Sprintf("0x%x", id),
		RawEvents: []api.RawEvent{
			{
				Keys: []string{req.Invocation.Namespace.Tag("ThingCreated")},
				Data: []*big.Int{big.NewInt(id)},
			},
		},
	}, nil
}

func (w *testWorld) Call(_ context.Context, inv *api.Invocation) (api.ResultSet, error) {
	w.Lock()
	defer w.Unlock()

	w.calls++
	if w.unavailable > 0 {
		w.unavailable--
		return nil, status.Error(codes.Unavailable, "indexer warming up")
	}

	id := inv.Calldata[0].Int64()
	if id < 1 || id > int64(len(w.things)) {
		return nil, nil
	}
	return codec.Compile(codec.EncodeByteArray(w.things[id-1]))
}

func newTestTransport(t *testing.T, world World) *Transport {
	listener := bufconn.Listen(1 << 20)
	server := NewServer()
	RegisterService(server, world)
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := Dial("bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
	)
	require.NoError(t, err, "Dial")
	transport := NewTransport(conn, 5*time.Second)
	t.Cleanup(func() { _ = transport.Close() })

	return transport
}

func TestTransport(t *testing.T) {
	require := require.New(t)

	signer, err := memory.NewSigner(rand.Reader)
	require.NoError(err)
	world := &testWorld{
		keys: map[string]ed25519.PublicKey{signer.Address(): signer.Public()},
	}
	d, err := dispatch.New(common.DefaultNamespace, newTestTransport(t, world))
	require.NoError(err)

	ctx := context.Background()

	h, err := d.Mutate(ctx, signer, testNew.MustBuild(codec.EncodeByteArray("nemo")))
	require.NoError(err)
	require.Equal("0x1", h.TransactionID)
	id, ok := h.EventID("ThingCreated")
	require.True(ok)
	require.EqualValues(1, id.Int64())

	rs, err := d.Query(ctx, testGet.MustBuild(codec.NewFelt(1)))
	require.NoError(err)
	values, err := rs.Decode(codec.ByteArrayShape)
	require.NoError(err)
	require.Equal("nemo", values[0].String())

	rs, err = d.Query(ctx, testGet.MustBuild(codec.NewFelt(7)))
	require.NoError(err)
	require.Zero(rs.Len())
}

func TestTransportErrors(t *testing.T) {
	require := require.New(t)

	signer, err := memory.NewSigner(rand.Reader)
	require.NoError(err)
	stranger, err := memory.NewSigner(rand.Reader)
	require.NoError(err)
	world := &testWorld{
		keys: map[string]ed25519.PublicKey{signer.Address(): signer.Public()},
	}
	d, err := dispatch.New(common.DefaultNamespace, newTestTransport(t, world))
	require.NoError(err)

	ctx := context.Background()

	_, err = d.Mutate(ctx, signer, testNew.MustBuild(codec.EncodeByteArray("a very long name")))
	require.ErrorIs(err, api.ErrDispatch)
	require.True(IsErrorCode(err, codes.FailedPrecondition))
	require.Equal("Name is too long", api.RevertReason(err))

	_, err = d.Mutate(ctx, stranger, testNew.MustBuild(codec.EncodeByteArray("nemo")))
	require.ErrorIs(err, api.ErrDispatch)
	require.ErrorIs(err, api.ErrUnauthorized, "registered errors survive the round trip")

	require.Empty(world.things)
}

func TestTransportCallRetries(t *testing.T) {
	require := require.New(t)

	world := &testWorld{
		things:      []string{"nemo"},
		unavailable: 2,
	}
	d, err := dispatch.New(common.DefaultNamespace, newTestTransport(t, world))
	require.NoError(err)

	rs, err := d.Query(context.Background(), testGet.MustBuild(codec.NewFelt(1)))
	require.NoError(err, "unavailable gateways are retried")
	require.NotZero(rs.Len())
	require.Equal(3, world.calls)

	world.Lock()
	world.unavailable = maxCallRetries + 1
	world.calls = 0
	world.Unlock()

	_, err = d.Query(context.Background(), testGet.MustBuild(codec.NewFelt(1)))
	require.ErrorIs(err, api.ErrDispatch)
	require.True(IsErrorCode(err, codes.Unavailable))
	require.Equal(maxCallRetries+1, world.calls)
}

func TestErrorMapping(t *testing.T) {
	require := require.New(t)

	require.NoError(errorToGrpc(nil))
	require.NoError(errorFromGrpc(nil))

	err := errorToGrpc(api.ErrUnauthorized)
	st, ok := status.FromError(err)
	require.True(ok, "registered errors are carried as a status")
	require.Len(st.Proto().Details, 1)
	require.ErrorIs(errorFromGrpc(err), api.ErrUnauthorized)

	plain := fmt.Errorf("plain failure")
	require.Equal(plain, errorToGrpc(plain), "unregistered errors pass through")

	unavailable := status.Error(codes.Unavailable, "down")
	require.Equal(unavailable, errorFromGrpc(unavailable), "statuses without details pass through")
}

func TestCBORCodec(t *testing.T) {
	require := require.New(t)

	var c CBORCodec
	require.Equal("cbor", c.String())

	inv := &api.Invocation{
		Namespace:  common.DefaultNamespace,
		Target:     "GrpcTest",
		Entrypoint: "get_thing",
		Selector:   api.Selector("get_thing"),
		Calldata:   []*big.Int{big.NewInt(7)},
	}
	data, err := c.Marshal(inv)
	require.NoError(err)

	var decoded api.Invocation
	require.NoError(c.Unmarshal(data, &decoded))
	require.Equal(inv.Tag(), decoded.Tag())
	require.Zero(inv.Selector.Cmp(decoded.Selector))
	require.Len(decoded.Calldata, 1)
	require.EqualValues(7, decoded.Calldata[0].Int64())
}
