package reconcile

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/binding/dispatch"
	"github.com/aqua-stark/world-binding/binding/tests"
	"github.com/aqua-stark/world-binding/codec"
	"github.com/aqua-stark/world-binding/common"
)

var (
	testTarget = api.NewTarget("ReconcileTest")
	testCount  = testTarget.NewMethod("get_count", api.View, api.P("owner", codec.AddressShape))
	testCreate = testTarget.NewMethod("create", api.Mutation)
)

func newTestPoller(t *testing.T, transport *tests.MockTransport, timer *tests.ManualTimer) *Poller {
	d, err := dispatch.New(common.DefaultNamespace, transport)
	require.NoError(t, err, "dispatch.New")
	return NewPoller(d, WithTimer(func() backoff.Timer { return timer }))
}

func countDescriptor(t *testing.T) *api.Descriptor {
	owner, err := codec.EncodeAddress("0x1")
	require.NoError(t, err, "EncodeAddress")
	return testCount.MustBuild(owner)
}

func TestPollConverges(t *testing.T) {
	require := require.New(t)

	transport := tests.NewMockTransport()
	transport.OnCallSequence("get_count", tests.Felts(1), tests.Felts(1), tests.Felts(2), tests.Felts(3))
	timer := tests.NewManualTimer(true)
	p := newTestPoller(t, transport, timer)

	outcome, err := p.Poll(context.Background(), countDescriptor(t), Target{
		Predicate:   FeltGreaterThan(0, big.NewInt(1)),
		MaxAttempts: 5,
		Interval:    2 * time.Second,
	})
	require.NoError(err)
	require.True(outcome.Converged())
	require.Equal(Converged, outcome.State)
	require.Equal(3, outcome.Attempts)
	require.Equal(tests.Felts(2), outcome.Result, "the satisfying result set is returned")
	require.NoError(outcome.LastErr)

	require.Equal(3, transport.Count("get_count"))
	require.Equal([]time.Duration{2 * time.Second, 2 * time.Second}, timer.Starts())
}

func TestPollConvergesFirstAttempt(t *testing.T) {
	require := require.New(t)

	transport := tests.NewMockTransport()
	transport.OnCallSequence("get_count", tests.Felts(4))
	timer := tests.NewManualTimer(true)
	p := newTestPoller(t, transport, timer)

	outcome, err := p.Poll(context.Background(), countDescriptor(t), Target{
		Predicate:   NonEmpty,
		MaxAttempts: 1,
		Interval:    time.Second,
	})
	require.NoError(err)
	require.True(outcome.Converged())
	require.Equal(1, outcome.Attempts)
	require.Empty(timer.Starts())
}

func TestPollExhausts(t *testing.T) {
	require := require.New(t)

	transport := tests.NewMockTransport()
	transport.OnCallSequence("get_count", tests.Felts(1))
	timer := tests.NewManualTimer(true)
	p := newTestPoller(t, transport, timer)

	outcome, err := p.Poll(context.Background(), countDescriptor(t), Target{
		Predicate:   FeltGreaterThan(0, big.NewInt(1)),
		MaxAttempts: 4,
		Interval:    500 * time.Millisecond,
	})
	require.NoError(err, "exhaustion is not an error")
	require.False(outcome.Converged())
	require.Equal(Exhausted, outcome.State)
	require.Equal(4, outcome.Attempts)
	require.Nil(outcome.Result)
	require.Equal(4, transport.Count("get_count"))
	require.Len(timer.Starts(), 3)
}

func TestPollRealTimer(t *testing.T) {
	require := require.New(t)

	transport := tests.NewMockTransport()
	transport.OnCallSequence("get_count", tests.Felts(), tests.Felts(), tests.Felts(9))
	d, err := dispatch.New(common.DefaultNamespace, transport)
	require.NoError(err)
	p := NewPoller(d)

	const interval = 20 * time.Millisecond
	start := time.Now()
	outcome, err := p.Poll(context.Background(), countDescriptor(t), Target{
		Predicate:   NonEmpty,
		MaxAttempts: 5,
		Interval:    interval,
	})
	require.NoError(err)
	require.True(outcome.Converged())
	require.Equal(3, outcome.Attempts)
	require.GreaterOrEqual(time.Since(start), 2*interval)
}

func TestPollTransportFailures(t *testing.T) {
	require := require.New(t)

	var calls int
	transport := tests.NewMockTransport()
	transport.OnCall("get_count", func(*api.Invocation) (api.ResultSet, error) {
		calls++
		if calls < 3 {
			return nil, fmt.Errorf("indexer unavailable")
		}
		return tests.Felts(1), nil
	})
	p := newTestPoller(t, transport, tests.NewManualTimer(true))

	target := Target{Predicate: NonEmpty, MaxAttempts: 3, Interval: time.Second}
	outcome, err := p.Poll(context.Background(), countDescriptor(t), target)
	require.NoError(err)
	require.True(outcome.Converged())
	require.Equal(3, outcome.Attempts)
	require.ErrorIs(outcome.LastErr, api.ErrDispatch)

	calls = 0
	target.MaxAttempts = 2
	outcome, err = p.Poll(context.Background(), countDescriptor(t), target)
	require.NoError(err)
	require.Equal(Exhausted, outcome.State)
	require.Equal(2, outcome.Attempts)
	require.Equal("indexer unavailable", api.RevertReason(outcome.LastErr))
}

type failingQuerier struct {
	calls int
	err   error
}

func (q *failingQuerier) Query(context.Context, *api.Descriptor) (api.ResultSet, error) {
	q.calls++
	return nil, q.err
}

func TestPollAborts(t *testing.T) {
	require := require.New(t)

	guardErr := fmt.Errorf("capability missing")
	q := &failingQuerier{err: guardErr}
	p := NewPoller(q, WithTimer(func() backoff.Timer { return tests.NewManualTimer(true) }))

	_, err := p.Poll(context.Background(), countDescriptor(t), Target{Predicate: NonEmpty, MaxAttempts: 5})
	require.ErrorIs(err, guardErr)
	require.Equal(1, q.calls, "non-transport errors are not retried")
}

func TestPollInvalid(t *testing.T) {
	require := require.New(t)

	transport := tests.NewMockTransport()
	p := newTestPoller(t, transport, tests.NewManualTimer(true))

	for _, target := range []Target{
		{MaxAttempts: 1},
		{Predicate: NonEmpty, MaxAttempts: 0},
		{Predicate: NonEmpty, MaxAttempts: 1, Interval: -time.Second},
	} {
		_, err := p.Poll(context.Background(), countDescriptor(t), target)
		require.ErrorIs(err, ErrInvalidTarget)
	}

	_, err := p.Poll(context.Background(), testCreate.MustBuild(), Target{Predicate: NonEmpty, MaxAttempts: 1})
	require.ErrorIs(err, api.ErrInvalidDescriptor)
	require.Zero(transport.Count(""))
}

func TestPollCanceled(t *testing.T) {
	require := require.New(t)

	transport := tests.NewMockTransport()
	timer := tests.NewManualTimer(false)
	p := newTestPoller(t, transport, timer)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-timer.Started()
		cancel()
	}()

	_, err := p.Poll(ctx, countDescriptor(t), Target{Predicate: NonEmpty, MaxAttempts: 5, Interval: time.Hour})
	require.ErrorIs(err, context.Canceled)
	require.Equal(1, transport.Count("get_count"))
}

func TestPendingWait(t *testing.T) {
	require := require.New(t)

	transport := tests.NewMockTransport()
	transport.OnCallSequence("get_count", tests.Felts(), tests.Felts(1))
	p := newTestPoller(t, transport, tests.NewManualTimer(true))

	pending := p.Start(context.Background(), countDescriptor(t), Target{Predicate: NonEmpty, MaxAttempts: 3, Interval: time.Second})
	outcome, err := pending.Wait(context.Background())
	require.NoError(err)
	require.True(outcome.Converged())
	require.Equal(Converged, pending.State())
	require.True(pending.State().IsFinal())

	pending.Dispose()
	require.Equal(Converged, pending.State(), "disposing a finished reconciliation keeps its outcome")
}

func TestPendingAborted(t *testing.T) {
	require := require.New(t)

	transport := tests.NewMockTransport()
	p := newTestPoller(t, transport, tests.NewManualTimer(true))

	pending := p.Start(context.Background(), countDescriptor(t), Target{Predicate: NonEmpty})
	outcome, err := pending.Wait(context.Background())
	require.ErrorIs(err, ErrInvalidTarget)
	require.NotErrorIs(err, ErrDisposed)
	require.Equal(Aborted, outcome.State)
	require.Equal(Aborted, pending.State())
	require.True(pending.State().IsFinal())
	require.Zero(transport.Count(""))

	guardErr := fmt.Errorf("capability missing")
	p = NewPoller(&failingQuerier{err: guardErr}, WithTimer(func() backoff.Timer { return tests.NewManualTimer(true) }))
	pending = p.Start(context.Background(), countDescriptor(t), Target{Predicate: NonEmpty, MaxAttempts: 3})
	outcome, err = pending.Wait(context.Background())
	require.ErrorIs(err, guardErr)
	require.Equal(Aborted, outcome.State)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pending = p.Start(ctx, countDescriptor(t), Target{Predicate: NonEmpty, MaxAttempts: 3})
	outcome, err = pending.Wait(context.Background())
	require.ErrorIs(err, context.Canceled)
	require.Equal(Aborted, outcome.State, "a canceled parent is not a dispose")
}

func TestPendingDispose(t *testing.T) {
	require := require.New(t)

	transport := tests.NewMockTransport()
	timer := tests.NewManualTimer(false)
	p := newTestPoller(t, transport, timer)

	pending := p.Start(context.Background(), countDescriptor(t), Target{Predicate: NonEmpty, MaxAttempts: 5, Interval: time.Hour})

	select {
	case <-timer.Started():
	case <-time.After(5 * time.Second):
		require.FailNow("the first attempt was never spaced")
	}
	require.Equal(Polling, pending.State())

	pending.Dispose()
	require.Equal(Disposed, pending.State())

	outcome, err := pending.Wait(context.Background())
	require.ErrorIs(err, ErrDisposed)
	require.Equal(Disposed, outcome.State)
	require.Equal(1, transport.Count("get_count"), "no tick is issued after dispose")

	select {
	case <-pending.Done():
	default:
		require.Fail("pending must be done after dispose")
	}
}

func TestPredicates(t *testing.T) {
	require := require.New(t)

	require.False(NonEmpty(api.ResultSet{}))
	require.True(NonEmpty(tests.Felts(0)))

	gt := FeltGreaterThan(1, big.NewInt(2))
	require.False(gt(tests.Felts(5)), "index out of range")
	require.False(gt(tests.Felts(5, 2)))
	require.True(gt(tests.Felts(0, 3)))

	longer := ArrayLenGreaterThan(1)
	require.False(longer(tests.Felts(1, 7)))
	require.True(longer(tests.Felts(2, 7, 8)))
	require.False(longer(tests.Felts(3, 7)), "malformed arrays never satisfy")

	named := Decoded(func(v []codec.Value) bool {
		return v[0].String() == "nemo"
	}, codec.ByteArrayShape)
	cd, err := codec.Compile(codec.EncodeByteArray("nemo"))
	require.NoError(err)
	require.True(named(cd))
	require.False(named(tests.Felts(1)))
}
