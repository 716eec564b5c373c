package memory

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aqua-stark/world-binding/codec"
)

func TestSigner(t *testing.T) {
	require := require.New(t)

	s, err := NewSigner(rand.Reader)
	require.NoError(err)
	require.Equal("[redacted private key]", s.String())

	msg := []byte("register alice")
	sig, err := s.Sign(msg)
	require.NoError(err)
	require.True(Verify(s.Public(), msg, sig))
	require.False(Verify(s.Public(), []byte("register bob"), sig))
	require.False(Verify(nil, msg, sig))

	_, err = codec.EncodeAddress(s.Address())
	require.NoError(err, "addresses are felts")
	require.True(strings.HasPrefix(s.Address(), "0x"))

	s.Reset()
	_, err = s.Sign(msg)
	require.Error(err)
}

func TestNewFromSeed(t *testing.T) {
	require := require.New(t)

	seed := strings.Repeat("ab", SeedSize)
	s1, err := NewFromHexSeed(seed)
	require.NoError(err)
	s2, err := NewFromHexSeed(seed)
	require.NoError(err)
	require.Equal(s1.Address(), s2.Address(), "seeded signers are deterministic")
	require.Equal(AddressOf(s1.Public()), s1.Address())

	_, err = NewFromHexSeed("abcd")
	require.Error(err)
	_, err = NewFromHexSeed("zz")
	require.Error(err)
}
