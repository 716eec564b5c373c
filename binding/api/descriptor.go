package api

import (
	"fmt"

	"github.com/aqua-stark/world-binding/codec"
	"github.com/aqua-stark/world-binding/common"
)

// Descriptor is a single contract invocation: the target, the entrypoint
// and the encoded arguments in declared order. Descriptors are built fresh
// per invocation and never modified.
type Descriptor struct {
	method    *Method
	arguments []codec.Value
}

// Method returns the method table entry the descriptor was built from.
func (d *Descriptor) Method() *Method {
	return d.method
}

// Target returns the owning contract name.
func (d *Descriptor) Target() string {
	return string(d.method.target)
}

// Entrypoint returns the wire name of the operation.
func (d *Descriptor) Entrypoint() string {
	return d.method.entrypoint
}

// Kind returns the method kind.
func (d *Descriptor) Kind() MethodKind {
	return d.method.kind
}

// Arguments returns a copy of the encoded arguments.
func (d *Descriptor) Arguments() []codec.Value {
	return append([]codec.Value{}, d.arguments...)
}

// Equal returns true iff both descriptors have the same target,
// entrypoint and argument sequence.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Target() == other.Target() &&
		d.Entrypoint() == other.Entrypoint() &&
		codec.EqualAll(d.arguments, other.arguments)
}

// Invocation compiles the descriptor into calldata under the given
// namespace.
func (d *Descriptor) Invocation(namespace common.Namespace) (*Invocation, error) {
	calldata, err := codec.Compile(d.arguments...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.method.FullName(), err)
	}
	return &Invocation{
		Namespace:  namespace,
		Target:     d.Target(),
		Entrypoint: d.Entrypoint(),
		Selector:   d.method.Selector(),
		Calldata:   calldata,
	}, nil
}

// String returns a human readable representation of the descriptor.
func (d *Descriptor) String() string {
	args := make([]any, 0, len(d.arguments))
	for _, a := range d.arguments {
		args = append(args, a)
	}
	return fmt.Sprintf("%s%v", d.method.FullName(), args)
}
