package codec

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/aqua-stark/world-binding/common/errors"
)

// ChunkSize is the number of bytes that fit into a single felt slot.
const ChunkSize = 31

var (
	// FieldPrime is the modulus of the field calldata felts live in.
	FieldPrime, _ = new(big.Int).SetString("3618502788666131213697322783095070105623107215331596699973092056135872020481", 10)

	two128  = new(big.Int).Lsh(big.NewInt(1), 128)
	two256  = new(big.Int).Lsh(big.NewInt(1), 256)
	mask128 = new(big.Int).Sub(two128, big.NewInt(1))
)

// ParseInteger converts an application integer into an unbounded
// precision integer. Accepted inputs are Go integer types, *big.Int,
// big.Int and decimal or 0x-prefixed hexadecimal strings.
func ParseInteger(x any) (*big.Int, error) {
	switch v := x.(type) {
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case *big.Int:
		if v == nil {
			return nil, errors.WithContext(ErrEncoding, "nil integer")
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case string:
		return parseIntegerString(v)
	default:
		return nil, errors.WithContextf(ErrEncoding, "unsupported integer type %T", x)
	}
}

func parseIntegerString(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		base = 16
		digits = digits[2:]
	}
	if digits == "" {
		return nil, errors.WithContextf(ErrEncoding, "malformed integer %q", s)
	}

	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, errors.WithContextf(ErrEncoding, "malformed integer %q", s)
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}

func checkFeltRange(v *big.Int) error {
	if v.Sign() < 0 || v.Cmp(FieldPrime) >= 0 {
		return errors.WithContextf(ErrEncoding, "%s does not fit a felt slot", v)
	}
	return nil
}

// packBytes packs at most ChunkSize bytes into a big-endian felt.
func packBytes(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// unpackBytes unpacks a felt into exactly n big-endian bytes.
func unpackBytes(f *big.Int, n int) ([]byte, error) {
	if f.Sign() < 0 || f.BitLen() > 8*n {
		return nil, errors.WithContextf(ErrDecoding, "felt %s does not fit in %d bytes", f, n)
	}
	out := make([]byte, n)
	return f.FillBytes(out), nil
}

// feltToInt converts a felt holding a length or index into an int.
func feltToInt(f *big.Int, what string) (int, error) {
	if f.Sign() < 0 || !f.IsInt64() || f.Int64() > math.MaxInt32 {
		return 0, errors.WithContextf(ErrDecoding, "%s %s out of range", what, f)
	}
	return int(f.Int64()), nil
}

func hexFelt(f *big.Int) string {
	return fmt.Sprintf("0x%s", f.Text(16))
}
