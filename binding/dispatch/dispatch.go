// Package dispatch implements the dispatcher, which sends call descriptors
// through the execute (mutating) or call (read-only) channel of a
// transport.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/common"
	"github.com/aqua-stark/world-binding/common/errors"
	"github.com/aqua-stark/world-binding/common/logging"
)

// Dispatcher sends descriptors to the world under a fixed namespace.
//
// The dispatcher never retries: a mutation submitted twice is two
// submissions.
type Dispatcher struct {
	namespace common.Namespace
	transport api.Transport

	logger *logging.Logger
}

// New creates a new dispatcher for the given namespace.
func New(namespace common.Namespace, transport api.Transport) (*Dispatcher, error) {
	if !namespace.IsValid() {
		return nil, fmt.Errorf("dispatch: %w: %q", common.ErrMalformedNamespace, namespace)
	}
	if transport == nil {
		return nil, fmt.Errorf("dispatch: no transport")
	}

	initMetrics()

	return &Dispatcher{
		namespace: namespace,
		transport: transport,
		logger:    logging.GetLogger("binding/dispatch").With("namespace", namespace),
	}, nil
}

// Namespace returns the namespace every descriptor is dispatched under.
func (d *Dispatcher) Namespace() common.Namespace {
	return d.namespace
}

// Mutate submits a mutation signed by signer and returns the handle of the
// pending transaction.
func (d *Dispatcher) Mutate(ctx context.Context, signer api.Signer, desc *api.Descriptor) (*api.TransactionHandle, error) {
	if signer == nil {
		dispatchUnauthorized.Inc()
		return nil, errors.WithContext(api.ErrUnauthorized, desc.Method().FullName())
	}
	if desc.Kind() != api.Mutation {
		return nil, errors.WithContextf(api.ErrInvalidDescriptor, "%s is not a mutation", desc.Method().FullName())
	}

	inv, err := desc.Invocation(d.namespace)
	if err != nil {
		return nil, err
	}

	var handle *api.TransactionHandle
	err = d.observe(api.ChannelExecute, inv, func() error {
		var terr error
		if handle, terr = d.transport.Execute(ctx, signer, inv); terr != nil {
			return terr
		}
		if handle == nil || handle.TransactionID == "" {
			return fmt.Errorf("transport returned no transaction id")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Debug("mutation submitted",
		"entrypoint", inv.Entrypoint,
		"signer", signer.Address(),
		"tx", handle.TransactionID,
		"events", len(handle.RawEvents),
	)

	return handle, nil
}

// Query performs a read-only call. Queries are safe to repeat.
func (d *Dispatcher) Query(ctx context.Context, desc *api.Descriptor) (api.ResultSet, error) {
	if desc.Kind() != api.View {
		return nil, errors.WithContextf(api.ErrInvalidDescriptor, "%s is not a view", desc.Method().FullName())
	}

	inv, err := desc.Invocation(d.namespace)
	if err != nil {
		return nil, err
	}

	var rs api.ResultSet
	err = d.observe(api.ChannelCall, inv, func() error {
		var terr error
		rs, terr = d.transport.Call(ctx, inv)
		return terr
	})
	if err != nil {
		return nil, err
	}
	if rs == nil {
		rs = api.ResultSet{}
	}

	return rs, nil
}

func (d *Dispatcher) observe(channel api.Channel, inv *api.Invocation, fn func() error) error {
	labels := []string{string(channel), inv.Entrypoint}

	start := time.Now()
	err := fn()
	dispatchLatency.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

	if err != nil {
		dispatchFailures.WithLabelValues(labels...).Inc()
		d.logger.Debug("dispatch failed",
			"channel", channel,
			"tag", inv.Tag(),
			"entrypoint", inv.Entrypoint,
			"calldata_len", len(inv.Calldata),
			"err", err,
		)
		return api.NewDispatchError(channel, inv.Target, inv.Entrypoint, err)
	}
	dispatchSuccesses.WithLabelValues(labels...).Inc()

	return nil
}
