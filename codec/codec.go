// Package codec implements the translation between application values and
// the calldata representation understood by the world contracts.
//
// Arguments are first encoded into a tree of Values (numbers, short
// strings, addresses, byte arrays, tagged enums, optionals, tuples and
// arrays). Compile flattens that tree into the ordered felt sequence that is
// sent on the wire, and Decode is its inverse, driven by a Shape that
// describes what the caller expects to read back.
package codec

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/aqua-stark/world-binding/common/errors"
)

// ModuleName is the module name used for error definitions.
const ModuleName = "codec"

var (
	// ErrEncoding is the error returned when a value cannot be represented
	// in the wire format.
	ErrEncoding = errors.New(ModuleName, 1, "codec: value cannot be encoded")

	// ErrDecoding is the error returned when calldata cannot be parsed into
	// the expected shape.
	ErrDecoding = errors.New(ModuleName, 2, "codec: value cannot be decoded")
)

// Kind is the kind of an encoded value.
type Kind uint8

const (
	KindFelt Kind = iota + 1
	KindShortString
	KindAddress
	KindByteArray
	KindEnum
	KindOption
	KindTuple
	KindArray
)

// String returns a string representation of the value kind.
func (k Kind) String() string {
	switch k {
	case KindFelt:
		return "felt"
	case KindShortString:
		return "short_string"
	case KindAddress:
		return "address"
	case KindByteArray:
		return "byte_array"
	case KindEnum:
		return "enum"
	case KindOption:
		return "option"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("[unknown kind: %d]", uint8(k))
	}
}

// Value is an encoded value. Values are immutable once constructed.
type Value interface {
	fmt.Stringer

	// Kind returns the kind of the value.
	Kind() Kind

	appendCalldata(dst []*big.Int) ([]*big.Int, error)
	equal(other Value) bool
}

// Compile flattens the given values, in order, into calldata.
func Compile(values ...Value) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(values))
	for i, v := range values {
		if v == nil {
			return nil, errors.WithContextf(ErrEncoding, "argument %d is nil", i)
		}

		var err error
		if out, err = v.appendCalldata(out); err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
	}
	return out, nil
}

// Equal returns true iff both values have the same kind and contents.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	return a.equal(b)
}

// EqualAll returns true iff both sequences are pairwise Equal.
func EqualAll(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// FormatCalldata renders calldata as a bracketed list of hex felts.
func FormatCalldata(calldata []*big.Int) string {
	parts := make([]string, 0, len(calldata))
	for _, f := range calldata {
		parts = append(parts, "0x"+f.Text(16))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func joinValues(values []Value) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ", ")
}
