package codec

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/aqua-stark/world-binding/common/errors"
)

var (
	_ Value = Felt{}
	_ Value = ShortString{}
	_ Value = Address{}
	_ Value = ByteArray{}
	_ Value = (*Enum)(nil)
	_ Value = Option{}
	_ Value = Tuple{}
	_ Value = Array{}
)

// Felt is an unbounded precision integer value.
type Felt struct {
	v *big.Int
}

// EncodeFelt encodes an application integer, see ParseInteger for the
// accepted inputs.
func EncodeFelt(x any) (Felt, error) {
	v, err := ParseInteger(x)
	if err != nil {
		return Felt{}, err
	}
	return Felt{v: v}, nil
}

// NewFelt returns a felt value for a non-negative machine integer.
func NewFelt(x uint64) Felt {
	return Felt{v: new(big.Int).SetUint64(x)}
}

// EncodeBool encodes a boolean as a 0/1 felt.
func EncodeBool(b bool) Felt {
	if b {
		return NewFelt(1)
	}
	return NewFelt(0)
}

// Int returns a copy of the integer.
func (f Felt) Int() *big.Int {
	if f.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(f.v)
}

// Kind implements Value.
func (f Felt) Kind() Kind {
	return KindFelt
}

// String implements fmt.Stringer.
func (f Felt) String() string {
	return f.Int().String()
}

func (f Felt) appendCalldata(dst []*big.Int) ([]*big.Int, error) {
	v := f.Int()
	if err := checkFeltRange(v); err != nil {
		return nil, err
	}
	return append(dst, v), nil
}

func (f Felt) equal(other Value) bool {
	return f.Int().Cmp(other.(Felt).Int()) == 0
}

// ShortString is a string packed into a single felt slot.
type ShortString struct {
	s string
}

// EncodeShortString encodes an ASCII string of at most ChunkSize bytes
// into a single slot. Longer strings are rejected, never truncated.
func EncodeShortString(s string) (ShortString, error) {
	if len(s) > ChunkSize {
		return ShortString{}, errors.WithContextf(ErrEncoding, "short string is %d bytes long, at most %d fit", len(s), ChunkSize)
	}
	for i := 0; i < len(s); i++ {
		if s[i] == 0 || s[i] > 0x7f {
			return ShortString{}, errors.WithContextf(ErrEncoding, "short string has non-ASCII byte at %d", i)
		}
	}
	return ShortString{s: s}, nil
}

// Kind implements Value.
func (s ShortString) Kind() Kind {
	return KindShortString
}

// String implements fmt.Stringer.
func (s ShortString) String() string {
	return s.s
}

func (s ShortString) appendCalldata(dst []*big.Int) ([]*big.Int, error) {
	return append(dst, packBytes([]byte(s.s))), nil
}

func (s ShortString) equal(other Value) bool {
	return s.s == other.(ShortString).s
}

// Address is a contract or account address.
type Address struct {
	v *big.Int
}

// EncodeAddress encodes a 0x-prefixed hexadecimal address.
func EncodeAddress(s string) (Address, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return Address{}, errors.WithContextf(ErrEncoding, "address %q is not 0x-prefixed", s)
	}
	v, err := parseIntegerString(s)
	if err != nil {
		return Address{}, err
	}
	if err = checkFeltRange(v); err != nil {
		return Address{}, err
	}
	return Address{v: v}, nil
}

// Int returns the address as an integer.
func (a Address) Int() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.v)
}

// Hex returns the canonical 0x-prefixed hexadecimal form of the address.
func (a Address) Hex() string {
	return hexFelt(a.Int())
}

// Kind implements Value.
func (a Address) Kind() Kind {
	return KindAddress
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

func (a Address) appendCalldata(dst []*big.Int) ([]*big.Int, error) {
	return append(dst, a.Int()), nil
}

func (a Address) equal(other Value) bool {
	return a.Int().Cmp(other.(Address).Int()) == 0
}

// ByteArray is a string of arbitrary length, split into ChunkSize byte
// words plus a pending word on the wire.
type ByteArray struct {
	s string
}

// EncodeByteArray encodes a string of any length.
func EncodeByteArray(s string) ByteArray {
	return ByteArray{s: s}
}

// Kind implements Value.
func (b ByteArray) Kind() Kind {
	return KindByteArray
}

// String implements fmt.Stringer.
func (b ByteArray) String() string {
	return b.s
}

// Chunks returns the full words and the pending word of the byte array.
func (b ByteArray) Chunks() (full [][]byte, pending []byte) {
	raw := []byte(b.s)
	for len(raw) >= ChunkSize {
		full = append(full, raw[:ChunkSize])
		raw = raw[ChunkSize:]
	}
	return full, raw
}

func (b ByteArray) appendCalldata(dst []*big.Int) ([]*big.Int, error) {
	full, pending := b.Chunks()
	dst = append(dst, big.NewInt(int64(len(full))))
	for _, word := range full {
		dst = append(dst, packBytes(word))
	}
	return append(dst, packBytes(pending), big.NewInt(int64(len(pending)))), nil
}

func (b ByteArray) equal(other Value) bool {
	return b.s == other.(ByteArray).s
}

// DecodeString recovers the text carried by a short string or byte array
// value.
func DecodeString(v Value) (string, error) {
	switch s := v.(type) {
	case ShortString:
		return s.s, nil
	case ByteArray:
		return s.s, nil
	default:
		return "", errors.WithContextf(ErrDecoding, "%s value does not carry text", describe(v))
	}
}

// EnumVariant is a single variant slot of an encoded enum.
type EnumVariant struct {
	// Name is the variant name.
	Name string
	// Active is true for the selected variant only.
	Active bool
	// Payload is the associated value of the active variant, if any.
	Payload Value
}

// Enum is a tagged enum value. Every declared variant is present, exactly
// one of them is active.
type Enum struct {
	name     string
	variants []EnumVariant
}

// Kind implements Value.
func (e *Enum) Kind() Kind {
	return KindEnum
}

// Name returns the enum type name.
func (e *Enum) Name() string {
	return e.name
}

// Variants returns a copy of all variant slots.
func (e *Enum) Variants() []EnumVariant {
	return append([]EnumVariant{}, e.variants...)
}

// Active returns the index, name and payload of the active variant.
func (e *Enum) Active() (int, string, Value) {
	for i, v := range e.variants {
		if v.Active {
			return i, v.Name, v.Payload
		}
	}
	panic("codec: enum without an active variant")
}

// String implements fmt.Stringer.
func (e *Enum) String() string {
	_, name, payload := e.Active()
	if payload == nil {
		return e.name + "::" + name
	}
	return fmt.Sprintf("%s::%s(%s)", e.name, name, payload)
}

func (e *Enum) appendCalldata(dst []*big.Int) ([]*big.Int, error) {
	idx, _, payload := e.Active()
	dst = append(dst, big.NewInt(int64(idx)))
	if payload == nil {
		return dst, nil
	}
	return payload.appendCalldata(dst)
}

func (e *Enum) equal(other Value) bool {
	o := other.(*Enum)
	if e.name != o.name || len(e.variants) != len(o.variants) {
		return false
	}
	for i := range e.variants {
		a, b := e.variants[i], o.variants[i]
		if a.Name != b.Name || a.Active != b.Active || !Equal(a.Payload, b.Payload) {
			return false
		}
	}
	return true
}

// Option is an optional value. Absence is distinct from any zero value.
type Option struct {
	v       Value
	present bool
}

// Some wraps a present value. A nil payload is not an absent value: the
// option is present and fails to encode.
func Some(v Value) Option {
	return Option{v: v, present: true}
}

// None returns an absent optional value.
func None() Option {
	return Option{}
}

// Get returns the wrapped value and whether it is present.
func (o Option) Get() (Value, bool) {
	return o.v, o.present
}

// Kind implements Value.
func (o Option) Kind() Kind {
	return KindOption
}

// String implements fmt.Stringer.
func (o Option) String() string {
	if !o.present {
		return "None"
	}
	return fmt.Sprintf("Some(%s)", o.v)
}

func (o Option) appendCalldata(dst []*big.Int) ([]*big.Int, error) {
	if !o.present {
		return append(dst, big.NewInt(1)), nil
	}
	if o.v == nil {
		return nil, errors.WithContext(ErrEncoding, "present option has no payload")
	}
	return o.v.appendCalldata(append(dst, big.NewInt(0)))
}

func (o Option) equal(other Value) bool {
	p := other.(Option)
	if o.present != p.present {
		return false
	}
	return !o.present || Equal(o.v, p.v)
}

// Tuple is a fixed-size sequence of values.
type Tuple struct {
	items []Value
}

// NewTuple creates a tuple of the given values.
func NewTuple(items ...Value) Tuple {
	return Tuple{items: append([]Value{}, items...)}
}

// EncodeU256 encodes a 256-bit unsigned integer as its (low, high) 128-bit
// halves.
func EncodeU256(x any) (Tuple, error) {
	v, err := ParseInteger(x)
	if err != nil {
		return Tuple{}, err
	}
	if v.Sign() < 0 || v.Cmp(two256) >= 0 {
		return Tuple{}, errors.WithContextf(ErrEncoding, "%s does not fit in u256", v)
	}
	low := new(big.Int).And(v, mask128)
	high := new(big.Int).Rsh(v, 128)
	return NewTuple(Felt{v: low}, Felt{v: high}), nil
}

// U256 recombines a (low, high) tuple produced by EncodeU256 or decoded
// with U256Shape.
func U256(v Value) (*big.Int, error) {
	t, ok := v.(Tuple)
	if !ok || len(t.items) != 2 {
		return nil, errors.WithContextf(ErrDecoding, "%v is not a u256", v)
	}
	low, lok := t.items[0].(Felt)
	high, hok := t.items[1].(Felt)
	if !lok || !hok || low.Int().Cmp(two128) >= 0 || high.Int().Cmp(two128) >= 0 {
		return nil, errors.WithContextf(ErrDecoding, "%v is not a u256", v)
	}
	out := high.Int()
	out.Lsh(out, 128)
	return out.Or(out, low.Int()), nil
}

// Items returns a copy of the tuple items.
func (t Tuple) Items() []Value {
	return append([]Value{}, t.items...)
}

// Kind implements Value.
func (t Tuple) Kind() Kind {
	return KindTuple
}

// String implements fmt.Stringer.
func (t Tuple) String() string {
	return "(" + joinValues(t.items) + ")"
}

func (t Tuple) appendCalldata(dst []*big.Int) ([]*big.Int, error) {
	var err error
	for _, item := range t.items {
		if dst, err = item.appendCalldata(dst); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func (t Tuple) equal(other Value) bool {
	return EqualAll(t.items, other.(Tuple).items)
}

// Array is a homogeneous, length-prefixed sequence of values.
type Array struct {
	items []Value
}

// NewArray creates an array, all items must be of the same kind.
func NewArray(items ...Value) (Array, error) {
	for i, item := range items {
		if item == nil {
			return Array{}, errors.WithContextf(ErrEncoding, "array item %d is nil", i)
		}
		if item.Kind() != items[0].Kind() {
			return Array{}, errors.WithContextf(ErrEncoding, "array item %d is %s, expected %s", i, item.Kind(), items[0].Kind())
		}
	}
	return Array{items: append([]Value{}, items...)}, nil
}

// FeltArray encodes a list of integers as an array of felts.
func FeltArray[T any](xs []T) (Array, error) {
	items := make([]Value, 0, len(xs))
	for _, x := range xs {
		f, err := EncodeFelt(x)
		if err != nil {
			return Array{}, err
		}
		items = append(items, f)
	}
	return NewArray(items...)
}

// Items returns a copy of the array items.
func (a Array) Items() []Value {
	return append([]Value{}, a.items...)
}

// Len returns the number of items.
func (a Array) Len() int {
	return len(a.items)
}

// Kind implements Value.
func (a Array) Kind() Kind {
	return KindArray
}

// String implements fmt.Stringer.
func (a Array) String() string {
	return "[" + joinValues(a.items) + "]"
}

func (a Array) appendCalldata(dst []*big.Int) ([]*big.Int, error) {
	dst = append(dst, big.NewInt(int64(len(a.items))))
	var err error
	for _, item := range a.items {
		if dst, err = item.appendCalldata(dst); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func (a Array) equal(other Value) bool {
	return EqualAll(a.items, other.(Array).items)
}
