// Package api defines the call descriptors, transport interface and
// results shared by every part of the world binding layer.
package api

import (
	"context"
	"math/big"
	"strings"

	"github.com/aqua-stark/world-binding/codec"
	"github.com/aqua-stark/world-binding/common"
	"github.com/aqua-stark/world-binding/common/errors"
)

// ModuleName is the module name used for error definitions.
const ModuleName = "binding"

var (
	// ErrUnauthorized is the error returned when a mutation is attempted
	// without a signer.
	ErrUnauthorized = errors.New(ModuleName, 1, "binding: mutation requires a signer")

	// ErrDispatch is the error returned when the transport rejected or
	// failed to complete a request.
	ErrDispatch = errors.New(ModuleName, 2, "binding: dispatch failed")

	// ErrInvalidDescriptor is the error returned when a descriptor does not
	// match its method declaration or is sent through the wrong channel.
	ErrInvalidDescriptor = errors.New(ModuleName, 3, "binding: invalid call descriptor")
)

// Channel is a dispatch channel.
type Channel string

const (
	// ChannelExecute is the state-mutating, signer-authorized channel.
	ChannelExecute Channel = "execute"
	// ChannelCall is the read-only channel.
	ChannelCall Channel = "call"
)

// Signer authorizes mutations. Key management is the wallet's concern,
// the binding layer only passes the signer through to the transport.
type Signer interface {
	// Address returns the account address of the signer.
	Address() string

	// Sign signs the given message.
	Sign(message []byte) ([]byte, error)
}

// Invocation is a compiled descriptor, as handed to a transport.
type Invocation struct {
	Namespace  common.Namespace `cbor:"namespace"`
	Target     string           `cbor:"target"`
	Entrypoint string           `cbor:"entrypoint"`
	Selector   *big.Int         `cbor:"selector"`
	Calldata   []*big.Int       `cbor:"calldata"`
}

// Tag returns the contract tag the invocation is addressed to.
func (inv *Invocation) Tag() string {
	return inv.Namespace.Tag(inv.Target)
}

// Transport is the opaque RPC transport to the world.
type Transport interface {
	// Execute submits a state-changing invocation signed by signer.
	Execute(ctx context.Context, signer Signer, inv *Invocation) (*TransactionHandle, error)

	// Call performs a read-only invocation.
	Call(ctx context.Context, inv *Invocation) (ResultSet, error)
}

// RawEvent is an event emitted by a submitted transaction.
type RawEvent struct {
	Keys []string   `cbor:"keys"`
	Data []*big.Int `cbor:"data"`
}

// TransactionHandle is the pending effect of a submitted mutation.
type TransactionHandle struct {
	TransactionID string     `cbor:"transaction_id"`
	RawEvents     []RawEvent `cbor:"events,omitempty"`
}

// FindEvent returns the first event with a key containing fragment.
func (h *TransactionHandle) FindEvent(fragment string) (*RawEvent, bool) {
	for i := range h.RawEvents {
		for _, key := range h.RawEvents[i].Keys {
			if strings.Contains(key, fragment) {
				return &h.RawEvents[i], true
			}
		}
	}
	return nil, false
}

// EventID returns the first data element of the first event whose key
// contains fragment, which by convention is the id of the created entity.
func (h *TransactionHandle) EventID(fragment string) (*big.Int, bool) {
	ev, ok := h.FindEvent(fragment)
	if !ok || len(ev.Data) == 0 || ev.Data[0] == nil {
		return nil, false
	}
	return new(big.Int).Set(ev.Data[0]), true
}

// ResultSet is the ordered felt sequence returned by a read-only call.
type ResultSet []*big.Int

// Decode decodes the result set into values of the given shapes. The
// whole result set must be consumed.
func (rs ResultSet) Decode(shapes ...codec.Shape) ([]codec.Value, error) {
	return codec.DecodeAll(shapes, rs)
}

// Len returns the number of felts in the result set.
func (rs ResultSet) Len() int {
	return len(rs)
}

// String returns the result set as a list of hex felts.
func (rs ResultSet) String() string {
	return codec.FormatCalldata(rs)
}
