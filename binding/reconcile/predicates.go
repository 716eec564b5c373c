package reconcile

import (
	"math/big"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/codec"
)

// NonEmpty is satisfied by any non-empty result set.
func NonEmpty(rs api.ResultSet) bool {
	return rs.Len() > 0
}

// FeltGreaterThan is satisfied when the felt at index exceeds x, e.g. a
// collection count that increased.
func FeltGreaterThan(index int, x *big.Int) Predicate {
	x = new(big.Int).Set(x)
	return func(rs api.ResultSet) bool {
		if index < 0 || index >= rs.Len() || rs[index] == nil {
			return false
		}
		return rs[index].Cmp(x) > 0
	}
}

// ArrayLenGreaterThan is satisfied when the result set is a felt array
// with more than n elements.
func ArrayLenGreaterThan(n int) Predicate {
	return func(rs api.ResultSet) bool {
		values, err := rs.Decode(codec.ArrayShape{Elem: codec.FeltShape})
		if err != nil {
			return false
		}
		return values[0].(codec.Array).Len() > n
	}
}

// Decoded is satisfied when the result set decodes into values of the
// given shapes and fn accepts them.
func Decoded(fn func([]codec.Value) bool, shapes ...codec.Shape) Predicate {
	return func(rs api.ResultSet) bool {
		values, err := rs.Decode(shapes...)
		if err != nil {
			return false
		}
		return fn(values)
	}
}
