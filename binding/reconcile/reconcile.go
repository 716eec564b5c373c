// Package reconcile implements the reconciliation poller, which bridges the
// gap between an accepted mutation and a read model that reflects it.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/aqua-stark/world-binding/binding/api"
	cmnBackoff "github.com/aqua-stark/world-binding/common/backoff"
	"github.com/aqua-stark/world-binding/common/errors"
	"github.com/aqua-stark/world-binding/common/logging"
)

// ModuleName is the module name used for error definitions.
const ModuleName = "reconcile"

var (
	// ErrInvalidTarget is the error returned when a reconciliation target
	// is unbounded or has no predicate.
	ErrInvalidTarget = errors.New(ModuleName, 1, "reconcile: invalid reconciliation target")

	// ErrDisposed is the error returned by a pending reconciliation that
	// was disposed before it finished.
	ErrDisposed = errors.New(ModuleName, 2, "reconcile: disposed")

	errNotConverged = fmt.Errorf("reconcile: predicate not satisfied")
)

// State is the state of a reconciliation.
type State uint32

const (
	Idle State = iota
	Polling
	Converged
	Exhausted
	Disposed
	// Aborted is the state of a background reconciliation that stopped on
	// an error other than being disposed.
	Aborted
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	case Disposed:
		return "disposed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("[unknown state: %d]", uint32(s))
	}
}

// IsFinal returns true iff the state is terminal.
func (s State) IsFinal() bool {
	return s == Converged || s == Exhausted || s == Disposed || s == Aborted
}

// Predicate decides whether the read model reflects the expected effect.
type Predicate func(rs api.ResultSet) bool

// Target describes what "done" means for a pending mutation.
type Target struct {
	// Predicate is evaluated against every query result.
	Predicate Predicate
	// MaxAttempts is the total number of queries issued before giving up.
	MaxAttempts int
	// Interval is the spacing between two consecutive queries.
	Interval time.Duration
}

// Validate checks that the target is bounded.
func (t *Target) Validate() error {
	switch {
	case t.Predicate == nil:
		return errors.WithContext(ErrInvalidTarget, "no predicate")
	case t.MaxAttempts < 1:
		return errors.WithContextf(ErrInvalidTarget, "max attempts must be positive, got %d", t.MaxAttempts)
	case t.Interval < 0:
		return errors.WithContextf(ErrInvalidTarget, "negative interval %s", t.Interval)
	}
	return nil
}

// Outcome is the result of a finished reconciliation. Exhaustion is an
// outcome, not an error.
type Outcome struct {
	State    State
	Result   api.ResultSet
	Attempts int
	// LastErr is the last query failure, if any attempt failed.
	LastErr error
}

// Converged returns true iff the expected effect was observed.
func (o *Outcome) Converged() bool {
	return o != nil && o.State == Converged
}

// Querier issues read-only queries.
type Querier interface {
	Query(ctx context.Context, desc *api.Descriptor) (api.ResultSet, error)
}

// Poller repeatedly queries the read model until a target is satisfied.
type Poller struct {
	querier  Querier
	newTimer func() backoff.Timer

	logger *logging.Logger
}

// Option is a poller option.
type Option func(*Poller)

// WithTimer overrides the timer used to space attempts.
func WithTimer(fn func() backoff.Timer) Option {
	return func(p *Poller) {
		p.newTimer = fn
	}
}

// NewPoller creates a new poller issuing queries through querier.
func NewPoller(querier Querier, opts ...Option) *Poller {
	initMetrics()

	p := &Poller{
		querier: querier,
		logger:  logging.GetLogger("binding/reconcile"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll queries desc until target is satisfied or its attempts are
// exhausted.
//
// Transport failures count as failed attempts. Any other query error and
// context cancellation abort the reconciliation with an error.
func (p *Poller) Poll(ctx context.Context, desc *api.Descriptor, target Target) (*Outcome, error) {
	return p.poll(ctx, desc, target, nil)
}

func (p *Poller) poll(ctx context.Context, desc *api.Descriptor, target Target, state *atomic.Uint32) (*Outcome, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if desc.Kind() != api.View {
		return nil, errors.WithContextf(api.ErrInvalidDescriptor, "%s is not a view", desc.Method().FullName())
	}
	if state != nil {
		state.Store(uint32(Polling))
	}

	logger := p.logger.With("entrypoint", desc.Entrypoint())
	outcome := &Outcome{State: Polling}
	start := time.Now()

	op := func() error {
		outcome.Attempts++
		rs, err := p.querier.Query(ctx, desc)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return backoff.Permanent(ctx.Err())
		case errors.Is(err, api.ErrDispatch):
			outcome.LastErr = err
			return err
		default:
			return backoff.Permanent(err)
		}

		if !target.Predicate(rs) {
			return errNotConverged
		}
		outcome.Result = rs
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Debug("read model not caught up",
			"attempt", outcome.Attempts,
			"max_attempts", target.MaxAttempts,
			"next", next,
			"err", err,
		)
	}

	var timer backoff.Timer
	if p.newTimer != nil {
		timer = p.newTimer()
	}
	sched := backoff.WithContext(cmnBackoff.NewBoundedConstant(target.Interval, target.MaxAttempts), ctx)
	err := backoff.RetryNotifyWithTimer(op, sched, notify, timer)

	switch {
	case err == nil:
		outcome.State = Converged
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, errNotConverged) || errors.Is(err, api.ErrDispatch):
		outcome.State = Exhausted
	default:
		return nil, err
	}

	reconcileAttempts.WithLabelValues(desc.Entrypoint()).Observe(float64(outcome.Attempts))
	reconcileDuration.WithLabelValues(desc.Entrypoint(), outcome.State.String()).Observe(time.Since(start).Seconds())
	reconcileOutcomes.WithLabelValues(desc.Entrypoint(), outcome.State.String()).Inc()

	logger.Debug("reconciliation finished",
		"state", outcome.State,
		"attempts", outcome.Attempts,
	)

	return outcome, nil
}

// Start starts reconciling in the background and returns a handle to the
// pending reconciliation.
func (p *Poller) Start(ctx context.Context, desc *api.Descriptor, target Target) *Pending {
	ctx, cancel := context.WithCancel(ctx)
	pending := &Pending{
		cancel: cancel,
		doneCh: make(chan struct{}),
	}

	go func() {
		defer close(pending.doneCh)
		defer cancel()

		outcome, err := p.poll(ctx, desc, target, &pending.state)
		if err != nil {
			state := Aborted
			if pending.disposed.Load() {
				state, err = Disposed, ErrDisposed
			}
			outcome = &Outcome{State: state}
			reconcileOutcomes.WithLabelValues(desc.Entrypoint(), state.String()).Inc()
		}
		pending.outcome, pending.err = outcome, err
		pending.state.Store(uint32(outcome.State))
	}()

	return pending
}

// Pending is a reconciliation running in the background.
type Pending struct {
	state    atomic.Uint32
	disposed atomic.Bool

	disposeOnce sync.Once
	cancel      context.CancelFunc
	doneCh      chan struct{}

	outcome *Outcome
	err     error
}

// State returns the current state of the reconciliation.
func (p *Pending) State() State {
	return State(p.state.Load())
}

// Done returns a channel that is closed once the reconciliation finished.
func (p *Pending) Done() <-chan struct{} {
	return p.doneCh
}

// Wait waits for the reconciliation to finish.
func (p *Pending) Wait(ctx context.Context) (*Outcome, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.doneCh:
		return p.outcome, p.err
	}
}

// Dispose stops the reconciliation, clearing any scheduled attempt, and
// waits for it to be torn down. A finished reconciliation keeps its
// outcome.
func (p *Pending) Dispose() {
	p.disposeOnce.Do(func() {
		p.disposed.Store(true)
		p.cancel()
	})
	<-p.doneCh
}
