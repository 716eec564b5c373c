package codec

import (
	"math/big"

	"github.com/aqua-stark/world-binding/common/errors"
)

// Shape describes the expected layout of a value. Shapes drive decoding
// and are used to check that descriptor arguments match a method's
// declared parameters.
type Shape interface {
	// Kind returns the kind of values of this shape.
	Kind() Kind

	// Check returns an error if the value does not have this shape.
	Check(v Value) error

	decode(felts []*big.Int) (Value, []*big.Int, error)
}

type scalarShape Kind

var (
	// FeltShape is the shape of a single felt.
	FeltShape Shape = scalarShape(KindFelt)
	// ShortStringShape is the shape of a single-slot string.
	ShortStringShape Shape = scalarShape(KindShortString)
	// AddressShape is the shape of an address.
	AddressShape Shape = scalarShape(KindAddress)
	// ByteArrayShape is the shape of a chunked string.
	ByteArrayShape Shape = scalarShape(KindByteArray)
	// U256Shape is the shape of a 256-bit unsigned integer.
	U256Shape Shape = TupleShape{Elems: []Shape{FeltShape, FeltShape}}
)

func (s scalarShape) Kind() Kind {
	return Kind(s)
}

func (s scalarShape) Check(v Value) error {
	if v == nil || v.Kind() != Kind(s) {
		return errors.WithContextf(ErrEncoding, "expected %s, got %s", Kind(s), describe(v))
	}
	return nil
}

func (s scalarShape) decode(felts []*big.Int) (Value, []*big.Int, error) {
	if Kind(s) == KindByteArray {
		return decodeByteArray(felts)
	}

	if len(felts) == 0 {
		return nil, nil, errors.WithContextf(ErrDecoding, "missing %s", Kind(s))
	}
	f, rest := new(big.Int).Set(felts[0]), felts[1:]
	if f.Sign() < 0 || f.Cmp(FieldPrime) >= 0 {
		return nil, nil, errors.WithContextf(ErrDecoding, "%s is not a felt", f)
	}

	switch Kind(s) {
	case KindFelt:
		return Felt{v: f}, rest, nil
	case KindAddress:
		return Address{v: f}, rest, nil
	case KindShortString:
		raw, err := unpackBytes(f, ChunkSize)
		if err != nil {
			return nil, nil, err
		}
		i := 0
		for i < len(raw) && raw[i] == 0 {
			i++
		}
		ss, err := EncodeShortString(string(raw[i:]))
		if err != nil {
			return nil, nil, errors.WithContextf(ErrDecoding, "malformed short string %s", hexFelt(f))
		}
		return ss, rest, nil
	default:
		panic("codec: unsupported scalar shape")
	}
}

func decodeByteArray(felts []*big.Int) (Value, []*big.Int, error) {
	if len(felts) < 3 {
		return nil, nil, errors.WithContext(ErrDecoding, "truncated byte array")
	}
	n, err := feltToInt(felts[0], "byte array word count")
	if err != nil {
		return nil, nil, err
	}
	if len(felts) < n+3 {
		return nil, nil, errors.WithContext(ErrDecoding, "truncated byte array")
	}

	var out []byte
	for _, word := range felts[1 : n+1] {
		b, err := unpackBytes(word, ChunkSize)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, b...)
	}
	pendingLen, err := feltToInt(felts[n+2], "byte array pending length")
	if err != nil {
		return nil, nil, err
	}
	if pendingLen >= ChunkSize {
		return nil, nil, errors.WithContextf(ErrDecoding, "pending length %d too large", pendingLen)
	}
	pending, err := unpackBytes(felts[n+1], pendingLen)
	if err != nil {
		return nil, nil, err
	}
	out = append(out, pending...)

	return ByteArray{s: string(out)}, felts[n+3:], nil
}

// VariantShape is a single declared enum variant.
type VariantShape struct {
	// Name is the variant name.
	Name string
	// Payload is the shape of the associated value, nil for unit variants.
	Payload Shape
}

// EnumShape is the full declaration of a tagged enum.
type EnumShape struct {
	// Name is the enum type name.
	Name string
	// Variants are the declared variants, in declaration order.
	Variants []VariantShape
}

// NewEnumShape declares an enum type from its variants.
func NewEnumShape(name string, variants ...VariantShape) *EnumShape {
	if len(variants) == 0 {
		panic("codec: enum must declare at least one variant")
	}
	seen := make(map[string]bool)
	for _, v := range variants {
		if seen[v.Name] {
			panic("codec: duplicate enum variant: " + name + "::" + v.Name)
		}
		seen[v.Name] = true
	}
	return &EnumShape{Name: name, Variants: variants}
}

// NewUnitEnumShape declares an enum whose variants carry no payload.
func NewUnitEnumShape(name string, variants ...string) *EnumShape {
	vs := make([]VariantShape, 0, len(variants))
	for _, v := range variants {
		vs = append(vs, VariantShape{Name: v})
	}
	return NewEnumShape(name, vs...)
}

// Encode selects a variant, every other variant is marked absent.
func (s *EnumShape) Encode(variant string, payload Value) (*Enum, error) {
	e := &Enum{
		name:     s.Name,
		variants: make([]EnumVariant, len(s.Variants)),
	}
	found := false
	for i, vs := range s.Variants {
		e.variants[i].Name = vs.Name
		if vs.Name != variant {
			continue
		}
		found = true
		e.variants[i].Active = true
		switch {
		case vs.Payload == nil && payload != nil:
			return nil, errors.WithContextf(ErrEncoding, "%s::%s takes no payload", s.Name, variant)
		case vs.Payload != nil:
			if err := vs.Payload.Check(payload); err != nil {
				return nil, errors.WithContextf(ErrEncoding, "%s::%s payload: %s", s.Name, variant, errors.Context(err))
			}
			e.variants[i].Payload = payload
		}
	}
	if !found {
		return nil, errors.WithContextf(ErrEncoding, "%s has no variant %q", s.Name, variant)
	}
	return e, nil
}

// Kind implements Shape.
func (s *EnumShape) Kind() Kind {
	return KindEnum
}

// Check implements Shape.
func (s *EnumShape) Check(v Value) error {
	e, ok := v.(*Enum)
	if !ok {
		return errors.WithContextf(ErrEncoding, "expected enum %s, got %s", s.Name, describe(v))
	}
	if e.name != s.Name || len(e.variants) != len(s.Variants) {
		return errors.WithContextf(ErrEncoding, "expected enum %s, got enum %s", s.Name, e.name)
	}
	active := 0
	for i, vs := range s.Variants {
		ev := e.variants[i]
		if ev.Name != vs.Name {
			return errors.WithContextf(ErrEncoding, "enum %s variant %d is %q, expected %q", s.Name, i, ev.Name, vs.Name)
		}
		if !ev.Active {
			if ev.Payload != nil {
				return errors.WithContextf(ErrEncoding, "inactive variant %s::%s has a payload", s.Name, ev.Name)
			}
			continue
		}
		active++
		if vs.Payload != nil {
			if err := vs.Payload.Check(ev.Payload); err != nil {
				return err
			}
		} else if ev.Payload != nil {
			return errors.WithContextf(ErrEncoding, "%s::%s takes no payload", s.Name, ev.Name)
		}
	}
	if active != 1 {
		return errors.WithContextf(ErrEncoding, "enum %s has %d active variants", s.Name, active)
	}
	return nil
}

func (s *EnumShape) decode(felts []*big.Int) (Value, []*big.Int, error) {
	if len(felts) == 0 {
		return nil, nil, errors.WithContextf(ErrDecoding, "missing %s variant index", s.Name)
	}
	idx, err := feltToInt(felts[0], s.Name+" variant index")
	if err != nil {
		return nil, nil, err
	}
	if idx >= len(s.Variants) {
		return nil, nil, errors.WithContextf(ErrDecoding, "%s has no variant with index %d", s.Name, idx)
	}

	vs := s.Variants[idx]
	rest := felts[1:]
	var payload Value
	if vs.Payload != nil {
		if payload, rest, err = vs.Payload.decode(rest); err != nil {
			return nil, nil, err
		}
	}
	e, err := s.Encode(vs.Name, payload)
	if err != nil {
		return nil, nil, errors.WithContext(ErrDecoding, errors.Context(err))
	}
	return e, rest, nil
}

// OptionShape is the shape of an optional value.
type OptionShape struct {
	Elem Shape
}

// Kind implements Shape.
func (s OptionShape) Kind() Kind {
	return KindOption
}

// Check implements Shape.
func (s OptionShape) Check(v Value) error {
	o, ok := v.(Option)
	if !ok {
		return errors.WithContextf(ErrEncoding, "expected option, got %s", describe(v))
	}
	inner, present := o.Get()
	switch {
	case !present:
		return nil
	case inner == nil:
		return errors.WithContext(ErrEncoding, "present option has no payload")
	default:
		return s.Elem.Check(inner)
	}
}

func (s OptionShape) decode(felts []*big.Int) (Value, []*big.Int, error) {
	if len(felts) == 0 {
		return nil, nil, errors.WithContext(ErrDecoding, "missing option tag")
	}
	switch {
	case felts[0].Cmp(big.NewInt(0)) == 0:
		inner, rest, err := s.Elem.decode(felts[1:])
		if err != nil {
			return nil, nil, err
		}
		return Some(inner), rest, nil
	case felts[0].Cmp(big.NewInt(1)) == 0:
		return None(), felts[1:], nil
	default:
		return nil, nil, errors.WithContextf(ErrDecoding, "invalid option tag %s", felts[0])
	}
}

// TupleShape is the shape of a fixed-size tuple.
type TupleShape struct {
	Elems []Shape
}

// Kind implements Shape.
func (s TupleShape) Kind() Kind {
	return KindTuple
}

// Check implements Shape.
func (s TupleShape) Check(v Value) error {
	t, ok := v.(Tuple)
	if !ok || len(t.items) != len(s.Elems) {
		return errors.WithContextf(ErrEncoding, "expected %d-tuple, got %s", len(s.Elems), describe(v))
	}
	for i, elem := range s.Elems {
		if err := elem.Check(t.items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s TupleShape) decode(felts []*big.Int) (Value, []*big.Int, error) {
	items := make([]Value, 0, len(s.Elems))
	rest := felts
	for _, elem := range s.Elems {
		var (
			item Value
			err  error
		)
		if item, rest, err = elem.decode(rest); err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}
	return Tuple{items: items}, rest, nil
}

// ArrayShape is the shape of a homogeneous array.
type ArrayShape struct {
	Elem Shape
}

// Kind implements Shape.
func (s ArrayShape) Kind() Kind {
	return KindArray
}

// Check implements Shape.
func (s ArrayShape) Check(v Value) error {
	a, ok := v.(Array)
	if !ok {
		return errors.WithContextf(ErrEncoding, "expected array, got %s", describe(v))
	}
	for _, item := range a.items {
		if err := s.Elem.Check(item); err != nil {
			return err
		}
	}
	return nil
}

func (s ArrayShape) decode(felts []*big.Int) (Value, []*big.Int, error) {
	if len(felts) == 0 {
		return nil, nil, errors.WithContext(ErrDecoding, "missing array length")
	}
	n, err := feltToInt(felts[0], "array length")
	if err != nil {
		return nil, nil, err
	}
	// Every item occupies at least one felt.
	if n > len(felts)-1 {
		return nil, nil, errors.WithContextf(ErrDecoding, "array length %d exceeds remaining calldata", n)
	}

	items := make([]Value, 0, n)
	rest := felts[1:]
	for i := 0; i < n; i++ {
		var item Value
		if item, rest, err = s.Elem.decode(rest); err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}
	return Array{items: items}, rest, nil
}

// Decode decodes exactly one value of the given shape. Trailing calldata
// is an error.
func Decode(shape Shape, felts []*big.Int) (Value, error) {
	values, err := DecodeAll([]Shape{shape}, felts)
	if err != nil {
		return nil, err
	}
	return values[0], nil
}

// DecodeAll decodes a sequence of values of the given shapes, consuming
// all of the calldata.
func DecodeAll(shapes []Shape, felts []*big.Int) ([]Value, error) {
	values, rest, err := DecodePrefix(shapes, felts)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, errors.WithContextf(ErrDecoding, "%d trailing felts", len(rest))
	}
	return values, nil
}

// DecodePrefix decodes a sequence of values of the given shapes from the
// start of the calldata and returns the remainder.
func DecodePrefix(shapes []Shape, felts []*big.Int) ([]Value, []*big.Int, error) {
	for i, f := range felts {
		if f == nil {
			return nil, nil, errors.WithContextf(ErrDecoding, "felt %d is nil", i)
		}
	}

	values := make([]Value, 0, len(shapes))
	rest := felts
	for _, shape := range shapes {
		var (
			v   Value
			err error
		)
		if v, rest, err = shape.decode(rest); err != nil {
			return nil, nil, err
		}
		values = append(values, v)
	}
	return values, rest, nil
}

func describe(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}
