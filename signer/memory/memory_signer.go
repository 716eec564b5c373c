// Package memory provides a memory backed Signer, primarily for use in testing
// and debug tooling.
package memory

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/aqua-stark/world-binding/binding/api"
)

const (
	// SignerName is the name used to identify the memory backed signer.
	SignerName = "memory"

	// SeedSize is the size of an RFC 8032 seed in bytes.
	SeedSize = ed25519.SeedSize

	// SignatureContext is the domain separation context of invocation
	// signatures.
	SignatureContext = "aqua-stark/world-binding: invocation"
)

var (
	_ api.Signer = (*Signer)(nil)

	addressMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))
)

// Signer is a memory backed Signer.
type Signer struct {
	privateKey ed25519.PrivateKey
	address    string
}

// Address returns the account address derived from the public key.
func (s *Signer) Address() string {
	return s.address
}

// Public returns the public key corresponding to the signer.
func (s *Signer) Public() ed25519.PublicKey {
	return s.privateKey.Public().(ed25519.PublicKey)
}

// Sign generates a signature with the private key over the context and
// message.
func (s *Signer) Sign(message []byte) ([]byte, error) {
	if len(s.privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("signer/memory: signer was reset")
	}
	return ed25519.Sign(s.privateKey, prepareMessage(message)), nil
}

// String returns anything but the actual private key backing the Signer.
func (s *Signer) String() string {
	return "[redacted private key]"
}

// Reset tears down the Signer and obliterates any sensitive state if any.
func (s *Signer) Reset() {
	for idx := range s.privateKey {
		s.privateKey[idx] = 0
	}
	s.privateKey = nil
}

// Verify verifies a signature produced by a memory signer.
func Verify(publicKey ed25519.PublicKey, message, sig []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(publicKey, prepareMessage(message), sig)
}

// AddressOf derives the account address of a public key: its keccak-256
// hash truncated to 250 bits.
func AddressOf(publicKey ed25519.PublicKey) string {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(publicKey)
	a := new(big.Int).SetBytes(h.Sum(nil))
	return "0x" + a.And(a, addressMask).Text(16)
}

func prepareMessage(message []byte) []byte {
	return append([]byte(SignatureContext), message...)
}

func newSigner(privateKey ed25519.PrivateKey) *Signer {
	return &Signer{
		privateKey: privateKey,
		address:    AddressOf(privateKey.Public().(ed25519.PublicKey)),
	}
}

// NewSigner creates a new signer using entropy from rng.
func NewSigner(rng io.Reader) (*Signer, error) {
	_, privateKey, err := ed25519.GenerateKey(rng)
	if err != nil {
		return nil, err
	}
	return newSigner(privateKey), nil
}

// NewFromSeed creates a new signer from an RFC 8032 seed.
func NewFromSeed(seed []byte) (*Signer, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("signer/memory: malformed seed: expected %d bytes, got %d", SeedSize, len(seed))
	}
	return newSigner(ed25519.NewKeyFromSeed(seed)), nil
}

// NewFromHexSeed creates a new signer from a hex encoded seed.
func NewFromHexSeed(s string) (*Signer, error) {
	seed, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("signer/memory: malformed hex seed: %w", err)
	}
	return NewFromSeed(seed)
}
