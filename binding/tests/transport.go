// Package tests contains helpers shared by the world binding tests.
package tests

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/aqua-stark/world-binding/binding/api"
)

// Request is a request recorded by the mock transport.
type Request struct {
	Channel    api.Channel
	Signer     string
	Invocation *api.Invocation
}

// CallFunc answers a read-only call.
type CallFunc func(inv *api.Invocation) (api.ResultSet, error)

// ExecuteFunc answers a mutation.
type ExecuteFunc func(inv *api.Invocation) (*api.TransactionHandle, error)

// MockTransport is an in-memory transport which records every request and
// answers with scripted responses keyed by entrypoint.
type MockTransport struct {
	sync.Mutex

	requests []Request
	calls    map[string]CallFunc
	executes map[string]ExecuteFunc
	nextTx   uint64
}

// NewMockTransport creates a new mock transport with no scripted
// responses. Unscripted calls return an empty result set and unscripted
// mutations return a fresh transaction id without events.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		calls:    make(map[string]CallFunc),
		executes: make(map[string]ExecuteFunc),
	}
}

// OnCall scripts the responses to calls of the given entrypoint.
func (m *MockTransport) OnCall(entrypoint string, fn CallFunc) {
	m.Lock()
	defer m.Unlock()
	m.calls[entrypoint] = fn
}

// OnCallSequence scripts consecutive responses to calls of the given
// entrypoint. The last response is repeated once the sequence runs out.
func (m *MockTransport) OnCallSequence(entrypoint string, results ...api.ResultSet) {
	var (
		l sync.Mutex
		i int
	)
	m.OnCall(entrypoint, func(*api.Invocation) (api.ResultSet, error) {
		l.Lock()
		defer l.Unlock()
		rs := results[i]
		if i < len(results)-1 {
			i++
		}
		return rs, nil
	})
}

// OnExecute scripts the responses to mutations of the given entrypoint.
func (m *MockTransport) OnExecute(entrypoint string, fn ExecuteFunc) {
	m.Lock()
	defer m.Unlock()
	m.executes[entrypoint] = fn
}

// Requests returns a copy of the recorded requests.
func (m *MockTransport) Requests() []Request {
	m.Lock()
	defer m.Unlock()
	return append([]Request{}, m.requests...)
}

// Count returns the number of recorded requests to the given entrypoint.
// An empty entrypoint counts every request.
func (m *MockTransport) Count(entrypoint string) int {
	m.Lock()
	defer m.Unlock()
	var n int
	for _, r := range m.requests {
		if entrypoint == "" || r.Invocation.Entrypoint == entrypoint {
			n++
		}
	}
	return n
}

// Execute implements api.Transport.
func (m *MockTransport) Execute(ctx context.Context, signer api.Signer, inv *api.Invocation) (*api.TransactionHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.Lock()
	m.requests = append(m.requests, Request{Channel: api.ChannelExecute, Signer: signer.Address(), Invocation: inv})
	m.nextTx++
	txID := fmt.Sprintf("0x%x", m.nextTx)
	fn := m.executes[inv.Entrypoint]
	m.Unlock()

	if fn == nil {
		return &api.TransactionHandle{TransactionID: txID}, nil
	}
	h, err := fn(inv)
	if err != nil {
		return nil, err
	}
	if h != nil && h.TransactionID == "" {
		h.TransactionID = txID
	}
	return h, nil
}

// Call implements api.Transport.
func (m *MockTransport) Call(ctx context.Context, inv *api.Invocation) (api.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.Lock()
	m.requests = append(m.requests, Request{Channel: api.ChannelCall, Invocation: inv})
	fn := m.calls[inv.Entrypoint]
	m.Unlock()

	if fn == nil {
		return api.ResultSet{}, nil
	}
	return fn(inv)
}

// StaticSigner is a signer with a fixed address and no key.
type StaticSigner string

// Address implements api.Signer.
func (s StaticSigner) Address() string {
	return string(s)
}

// Sign implements api.Signer.
func (s StaticSigner) Sign(message []byte) ([]byte, error) {
	return append([]byte(s), message...), nil
}

// Felts is a shorthand for building result sets.
func Felts(xs ...int64) api.ResultSet {
	rs := make(api.ResultSet, 0, len(xs))
	for _, x := range xs {
		rs = append(rs, big.NewInt(x))
	}
	return rs
}

// CreatedEvent builds an event with the given key carrying an entity id.
func CreatedEvent(key string, id int64) api.RawEvent {
	return api.RawEvent{
		Keys: []string{key},
		Data: []*big.Int{big.NewInt(id)},
	}
}
