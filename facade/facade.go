// Package facade implements the module façades, one per world subsystem.
//
// Every façade method runs the validation guard, builds a call descriptor
// and dispatches it, returning the raw result. Decoding results is up to
// the caller, and façades never call each other.
package facade

import (
	"context"
	"sync/atomic"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/binding/dispatch"
	"github.com/aqua-stark/world-binding/common/errors"
	"github.com/aqua-stark/world-binding/common/logging"
	"github.com/aqua-stark/world-binding/world/manifest"
)

// ModuleName is the module name used for error definitions.
const ModuleName = "facade"

// ErrModuleNotFound is the error returned when the capability backing a
// façade is missing.
var ErrModuleNotFound = errors.New(ModuleName, 1, "facade: module not found")

// EnsureReady checks that the capability set exposes module.
func EnsureReady(caps *manifest.CapabilitySet, module string) error {
	if caps == nil {
		return errors.WithContextf(ErrModuleNotFound, "%s: no capabilities", module)
	}
	if !caps.Has(module) {
		return errors.WithContextf(ErrModuleNotFound, "%s", module)
	}
	return nil
}

// Backend is shared by all façades: the dispatcher and a capability set
// which may be replaced at any time, e.g. on reconnect.
type Backend struct {
	dispatcher *dispatch.Dispatcher
	caps       atomic.Pointer[manifest.CapabilitySet]

	logger *logging.Logger
}

// NewBackend creates a new façade backend.
func NewBackend(dispatcher *dispatch.Dispatcher, caps *manifest.CapabilitySet) *Backend {
	b := &Backend{
		dispatcher: dispatcher,
		logger:     logging.GetLogger("facade"),
	}
	b.caps.Store(caps)
	return b
}

// Dispatcher returns the underlying dispatcher.
func (b *Backend) Dispatcher() *dispatch.Dispatcher {
	return b.dispatcher
}

// Capabilities returns the current capability set.
func (b *Backend) Capabilities() *manifest.CapabilitySet {
	return b.caps.Load()
}

// SetCapabilities replaces the capability set.
func (b *Backend) SetCapabilities(caps *manifest.CapabilitySet) {
	b.caps.Store(caps)
	b.logger.Info("capabilities replaced",
		"targets", caps.Targets(),
	)
}

// Query dispatches a read-only descriptor after running the guard for its
// target. It makes the backend usable as a reconciliation querier.
func (b *Backend) Query(ctx context.Context, desc *api.Descriptor) (api.ResultSet, error) {
	if err := b.ensureReady(desc.Method()); err != nil {
		return nil, err
	}
	return b.dispatcher.Query(ctx, desc)
}

func (b *Backend) ensureReady(m *api.Method) error {
	caps := b.Capabilities()
	if err := EnsureReady(caps, string(m.Target())); err != nil {
		return err
	}
	if c, _ := caps.Contract(string(m.Target())); !c.HasSystem(m.Entrypoint()) {
		return errors.WithContextf(ErrModuleNotFound, "%s does not expose %s", m.Target(), m.Entrypoint())
	}
	return nil
}

func (b *Backend) mutate(ctx context.Context, signer api.Signer, m *api.Method, build func() (*api.Descriptor, error)) (*api.TransactionHandle, error) {
	if err := b.ensureReady(m); err != nil {
		return nil, err
	}
	desc, err := build()
	if err != nil {
		return nil, err
	}
	return b.dispatcher.Mutate(ctx, signer, desc)
}

func (b *Backend) query(ctx context.Context, m *api.Method, build func() (*api.Descriptor, error)) (api.ResultSet, error) {
	if err := b.ensureReady(m); err != nil {
		return nil, err
	}
	desc, err := build()
	if err != nil {
		return nil, err
	}
	return b.dispatcher.Query(ctx, desc)
}
