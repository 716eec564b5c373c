// Package workflow composes façade calls with reconciliation: a creation is
// dispatched, and its effect is then confirmed either from the emitted
// event or by polling the read model.
package workflow

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/binding/reconcile"
	"github.com/aqua-stark/world-binding/codec"
	"github.com/aqua-stark/world-binding/common/errors"
	"github.com/aqua-stark/world-binding/common/logging"
	"github.com/aqua-stark/world-binding/facade"
)

// ModuleName is the module name used for error definitions.
const ModuleName = "workflow"

// ErrAlreadyPending is the error returned when a different creation of the
// same kind is still pending for the owner.
var ErrAlreadyPending = errors.New(ModuleName, 1, "workflow: creation already pending")

const (
	// EventAquariumCreated is the event key fragment carrying a new aquarium id.
	EventAquariumCreated = "AquariumCreated"
	// EventFishCreated is the event key fragment carrying a new fish id.
	EventFishCreated = "FishCreated"

	// LogEventCreationConfirmed is a log event value signalling that a
	// creation was confirmed.
	LogEventCreationConfirmed = "workflow/creation_confirmed"
	// LogEventCreationUnobserved is a log event value signalling that a
	// creation was not observed before giving up.
	LogEventCreationUnobserved = "workflow/creation_unobserved"

	// DefaultMaxAttempts is the default number of read model queries.
	DefaultMaxAttempts = 5
	// DefaultInterval is the default spacing between read model queries.
	DefaultInterval = 2 * time.Second
)

// Source is where the confirmation of a workflow came from.
type Source uint8

const (
	// Unconfirmed means the effect was not observed before giving up.
	Unconfirmed Source = iota
	// FromEvent means the effect was read from an emitted event.
	FromEvent
	// FromReadModel means the effect was observed by polling.
	FromReadModel
)

// String returns a string representation of the source.
func (s Source) String() string {
	switch s {
	case Unconfirmed:
		return "unconfirmed"
	case FromEvent:
		return "event"
	case FromReadModel:
		return "read model"
	default:
		return fmt.Sprintf("[unknown source: %d]", uint8(s))
	}
}

// Result is the result of a workflow.
type Result struct {
	// Handle is the handle of the dispatched mutation.
	Handle *api.TransactionHandle
	// ID is the id of the created entity, if known.
	ID *big.Int
	// Source is where the confirmation came from.
	Source Source
	// Outcome is the reconciliation outcome, if the read model was polled.
	Outcome *reconcile.Outcome
}

// Confirmed returns true iff the effect of the mutation was observed.
func (r *Result) Confirmed() bool {
	return r != nil && r.Source != Unconfirmed
}

// Config is the workflow configuration.
type Config struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultConfig returns the default workflow configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultInterval,
	}
}

func (c Config) target(p reconcile.Predicate) reconcile.Target {
	return reconcile.Target{
		Predicate:   p,
		MaxAttempts: c.MaxAttempts,
		Interval:    c.Interval,
	}
}

// Workflows runs multi-step game flows.
type Workflows struct {
	cfg    Config
	poller *reconcile.Poller

	player   *facade.Player
	aquarium *facade.Aquarium
	fish     *facade.Fish

	group singleflight.Group

	pendingLock sync.Mutex
	pending     map[string]*pendingSlot

	logger *logging.Logger
}

type pendingSlot struct {
	key     string
	callers int
}

// New creates new workflows on top of backend.
func New(backend *facade.Backend, cfg Config, opts ...reconcile.Option) *Workflows {
	return &Workflows{
		cfg:      cfg,
		poller:   reconcile.NewPoller(backend, opts...),
		player:   facade.NewPlayer(backend),
		aquarium: facade.NewAquarium(backend),
		fish:     facade.NewFish(backend),
		pending:  make(map[string]*pendingSlot),
		logger:   logging.GetLogger("workflow"),
	}
}

// once runs fn at most once at a time per owner and kind. Identical
// requests join the running one, any other request fails with
// ErrAlreadyPending.
func (w *Workflows) once(kind, owner, request string, fn func() (*Result, error)) (*Result, error) {
	slot := kind + "/" + owner
	key := slot + "/" + request

	w.pendingLock.Lock()
	p, ok := w.pending[slot]
	switch {
	case !ok:
		p = &pendingSlot{key: key}
		w.pending[slot] = p
	case p.key != key:
		w.pendingLock.Unlock()
		return nil, errors.WithContextf(ErrAlreadyPending, "%s for %s", kind, owner)
	}
	p.callers++
	w.pendingLock.Unlock()

	// Each caller drops its own reference, the last one frees the slot.
	defer func() {
		w.pendingLock.Lock()
		defer w.pendingLock.Unlock()
		if p.callers--; p.callers == 0 {
			delete(w.pending, slot)
		}
	}()

	v, err, _ := w.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// CreateAquarium creates an aquarium owned by the signer and resolves its
// id, from the AquariumCreated event when one is emitted and otherwise by
// waiting for the owner's aquarium count to increase.
func (w *Workflows) CreateAquarium(ctx context.Context, signer api.Signer, maxCapacity, maxDecorations uint64) (*Result, error) {
	if signer == nil {
		return nil, errors.WithContext(api.ErrUnauthorized, "create aquarium")
	}
	owner := signer.Address()
	request := fmt.Sprintf("%d/%d", maxCapacity, maxDecorations)

	return w.once("aquarium", owner, request, func() (*Result, error) {
		return w.create(ctx, owner, EventAquariumCreated,
			func() (api.ResultSet, error) {
				return w.player.GetPlayerAquariumCount(ctx, owner)
			},
			func() (*api.TransactionHandle, error) {
				return w.aquarium.NewAquarium(ctx, signer, owner, maxCapacity, maxDecorations)
			},
			func() (*api.Descriptor, error) {
				return facade.BuildPlayerGetPlayerAquariumCount(owner)
			},
			func() (api.ResultSet, error) {
				return w.player.GetPlayerAquariums(ctx, owner)
			},
		)
	})
}

// CreateFish creates a fish of the given species in an aquarium and
// resolves its id, from the FishCreated event when one is emitted and
// otherwise by waiting for the owner's fish count to increase.
func (w *Workflows) CreateFish(ctx context.Context, signer api.Signer, aquariumID uint64, species facade.Species) (*Result, error) {
	if signer == nil {
		return nil, errors.WithContext(api.ErrUnauthorized, "create fish")
	}
	owner := signer.Address()
	request := fmt.Sprintf("%d/%s", aquariumID, species)

	return w.once("fish", owner, request, func() (*Result, error) {
		return w.create(ctx, owner, EventFishCreated,
			func() (api.ResultSet, error) {
				return w.player.GetPlayerFishCount(ctx, owner)
			},
			func() (*api.TransactionHandle, error) {
				return w.fish.NewFish(ctx, signer, aquariumID, species)
			},
			func() (*api.Descriptor, error) {
				return facade.BuildPlayerGetPlayerFishCount(owner)
			},
			func() (api.ResultSet, error) {
				return w.player.GetPlayerFishes(ctx, owner)
			},
		)
	})
}

func (w *Workflows) create(
	ctx context.Context,
	owner string,
	event string,
	count func() (api.ResultSet, error),
	mutate func() (*api.TransactionHandle, error),
	countDesc func() (*api.Descriptor, error),
	collection func() (api.ResultSet, error),
) (*Result, error) {
	logger := w.logger.With("owner", owner, "event", event)

	// The baseline must be taken before the mutation is dispatched.
	rs, err := count()
	if err != nil {
		return nil, fmt.Errorf("workflow: failed to query baseline count: %w", err)
	}
	before, err := decodeCount(rs)
	if err != nil {
		return nil, fmt.Errorf("workflow: malformed baseline count: %w", err)
	}

	handle, err := mutate()
	if err != nil {
		return nil, err
	}
	if id, ok := handle.EventID(event); ok {
		logger.Info("creation confirmed by event",
			logging.LogEvent, LogEventCreationConfirmed,
			"tx_id", handle.TransactionID,
			"id", id,
		)
		return &Result{Handle: handle, ID: id, Source: FromEvent}, nil
	}

	desc, err := countDesc()
	if err != nil {
		return nil, err
	}
	outcome, err := w.poller.Poll(ctx, desc, w.cfg.target(reconcile.FeltGreaterThan(0, before)))
	if err != nil {
		return nil, err
	}
	res := &Result{Handle: handle, Outcome: outcome}
	if !outcome.Converged() {
		logger.Warn("creation not observed",
			logging.LogEvent, LogEventCreationUnobserved,
			"tx_id", handle.TransactionID,
			"attempts", outcome.Attempts,
			"err", outcome.LastErr,
		)
		return res, nil
	}
	res.Source = FromReadModel

	// The newest entity is the last of the owner's collection.
	if rs, err = collection(); err != nil {
		logger.Warn("failed to resolve created id",
			"tx_id", handle.TransactionID,
			"err", err,
		)
		return res, nil
	}
	if res.ID, err = lastID(rs); err != nil {
		logger.Warn("malformed collection",
			"tx_id", handle.TransactionID,
			"err", err,
		)
	}
	logger.Info("creation confirmed by read model",
		logging.LogEvent, LogEventCreationConfirmed,
		"tx_id", handle.TransactionID,
		"attempts", outcome.Attempts,
		"id", res.ID,
	)
	return res, nil
}

// WaitFishVisible waits until the fish is retrievable. Concurrent waits for
// the same fish share one reconciliation.
func (w *Workflows) WaitFishVisible(ctx context.Context, fishID uint64) (*reconcile.Outcome, error) {
	v, err, _ := w.group.Do(fmt.Sprintf("fish-visible/%d", fishID), func() (any, error) {
		desc, err := facade.BuildFishGetFish(fishID)
		if err != nil {
			return nil, err
		}
		return w.poller.Poll(ctx, desc, w.cfg.target(reconcile.NonEmpty))
	})
	if err != nil {
		return nil, err
	}
	return v.(*reconcile.Outcome), nil
}

// RegisterPlayer registers the signer under username and waits until the
// player is verified.
func (w *Workflows) RegisterPlayer(ctx context.Context, signer api.Signer, username string) (*Result, error) {
	handle, err := w.player.Register(ctx, signer, username)
	if err != nil {
		return nil, err
	}

	desc, err := facade.BuildPlayerIsVerified(signer.Address())
	if err != nil {
		return nil, err
	}
	outcome, err := w.poller.Poll(ctx, desc, w.cfg.target(reconcile.FeltGreaterThan(0, big.NewInt(0))))
	if err != nil {
		return nil, err
	}

	res := &Result{Handle: handle, Outcome: outcome}
	if outcome.Converged() {
		res.Source = FromReadModel
	}
	return res, nil
}

func decodeCount(rs api.ResultSet) (*big.Int, error) {
	values, err := rs.Decode(codec.FeltShape)
	if err != nil {
		return nil, err
	}
	return values[0].(codec.Felt).Int(), nil
}

func lastID(rs api.ResultSet) (*big.Int, error) {
	values, err := rs.Decode(codec.ArrayShape{Elem: codec.FeltShape})
	if err != nil {
		return nil, err
	}
	items := values[0].(codec.Array).Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("workflow: empty collection")
	}
	return items[len(items)-1].(codec.Felt).Int(), nil
}
