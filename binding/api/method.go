package api

import (
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/aqua-stark/world-binding/codec"
	"github.com/aqua-stark/world-binding/common/errors"
)

var (
	registeredMethods sync.Map

	entrypointRegexp = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	targetRegexp     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

	selectorMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))
)

// MethodKind is the kind of a method, which decides its dispatch channel.
type MethodKind uint8

const (
	// Mutation methods change world state and go through the execute
	// channel.
	Mutation MethodKind = iota + 1
	// View methods are read-only and go through the call channel.
	View
)

// String returns a string representation of the method kind.
func (k MethodKind) String() string {
	switch k {
	case Mutation:
		return "mutation"
	case View:
		return "view"
	default:
		return fmt.Sprintf("[unknown method kind: %d]", uint8(k))
	}
}

// Channel returns the dispatch channel of methods of this kind.
func (k MethodKind) Channel() Channel {
	if k == Mutation {
		return ChannelExecute
	}
	return ChannelCall
}

// Target is the name of a world contract that owns a set of methods.
type Target string

// NewTarget creates a new target name.
func NewTarget(name string) Target {
	if !targetRegexp.MatchString(name) {
		panic(fmt.Errorf("api: malformed target name: %q", name))
	}
	return Target(name)
}

// Param is a declared method parameter.
type Param struct {
	Name  string
	Shape codec.Shape
}

// P declares a parameter.
func P(name string, shape codec.Shape) Param {
	return Param{Name: name, Shape: shape}
}

// Method is an entry in the method table: the owning target, the stable
// wire name of the entrypoint and the declared parameters.
type Method struct {
	target     Target
	entrypoint string
	kind       MethodKind
	params     []Param
	selector   *big.Int
}

// NewMethod registers a new method of the target.
//
// Target and entrypoint pairs must be unique. If they are not, this method
// will panic.
func (t Target) NewMethod(entrypoint string, kind MethodKind, params ...Param) *Method {
	if !entrypointRegexp.MatchString(entrypoint) {
		panic(fmt.Errorf("api: entrypoint must be snake_case: %q", entrypoint))
	}
	if kind != Mutation && kind != View {
		panic(fmt.Errorf("api: invalid method kind for %s: %d", entrypoint, kind))
	}
	for _, p := range params {
		if p.Shape == nil {
			panic(fmt.Errorf("api: parameter %s of %s has no shape", p.Name, entrypoint))
		}
	}

	m := &Method{
		target:     t,
		entrypoint: entrypoint,
		kind:       kind,
		params:     params,
		selector:   Selector(entrypoint),
	}
	if _, isRegistered := registeredMethods.LoadOrStore(m.FullName(), m); isRegistered {
		panic(fmt.Errorf("api: method already registered: %s", m.FullName()))
	}

	return m
}

// Target returns the owning target.
func (m *Method) Target() Target {
	return m.target
}

// Entrypoint returns the wire name of the method.
func (m *Method) Entrypoint() string {
	return m.entrypoint
}

// Kind returns the method kind.
func (m *Method) Kind() MethodKind {
	return m.kind
}

// Params returns a copy of the declared parameters.
func (m *Method) Params() []Param {
	return append([]Param{}, m.params...)
}

// Selector returns the entrypoint selector.
func (m *Method) Selector() *big.Int {
	return new(big.Int).Set(m.selector)
}

// FullName returns the target qualified name of the method.
func (m *Method) FullName() string {
	return fmt.Sprintf("%s::%s", m.target, m.entrypoint)
}

// Build returns a fresh descriptor for the given arguments, which must
// match the declared parameters in number, order and shape.
func (m *Method) Build(args ...codec.Value) (*Descriptor, error) {
	if len(args) != len(m.params) {
		return nil, errors.WithContextf(ErrInvalidDescriptor, "%s takes %d arguments, got %d", m.FullName(), len(m.params), len(args))
	}
	for i, p := range m.params {
		if err := p.Shape.Check(args[i]); err != nil {
			return nil, fmt.Errorf("%s: parameter %s: %w", m.FullName(), p.Name, err)
		}
	}

	return &Descriptor{
		method:    m,
		arguments: append([]codec.Value{}, args...),
	}, nil
}

// MustBuild is Build for arguments that are known to be valid. Panics on
// error.
func (m *Method) MustBuild(args ...codec.Value) *Descriptor {
	d, err := m.Build(args...)
	if err != nil {
		panic(err)
	}
	return d
}

// LookupMethod returns a registered method by target and entrypoint.
func LookupMethod(target, entrypoint string) (*Method, bool) {
	m, ok := registeredMethods.Load(fmt.Sprintf("%s::%s", target, entrypoint))
	if !ok {
		return nil, false
	}
	return m.(*Method), true
}

// Methods returns all registered methods ordered by full name.
func Methods() []*Method {
	var methods []*Method
	registeredMethods.Range(func(_, v any) bool {
		methods = append(methods, v.(*Method))
		return true
	})
	sort.Slice(methods, func(i, j int) bool {
		return methods[i].FullName() < methods[j].FullName()
	})
	return methods
}

// Selector derives the selector of an entrypoint: the keccak-256 hash of
// its name truncated to 250 bits.
func Selector(entrypoint string) *big.Int {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(entrypoint))
	sel := new(big.Int).SetBytes(h.Sum(nil))
	return sel.And(sel, selectorMask)
}
