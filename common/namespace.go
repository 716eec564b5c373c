// Package common contains types shared by every part of the binding layer.
package common

import (
	"encoding"
	"errors"
	"regexp"
)

// DefaultNamespace is the namespace the Aqua Stark world is deployed under.
const DefaultNamespace Namespace = "aqua_stark"

var (
	// ErrMalformedNamespace is the error returned when a namespace
	// identifier is malformed.
	ErrMalformedNamespace = errors.New("malformed namespace")

	namespaceRegexp = regexp.MustCompile(`^[a-z][a-z0-9_]{0,30}$`)

	_ encoding.TextMarshaler   = Namespace("")
	_ encoding.TextUnmarshaler = (*Namespace)(nil)
)

// Namespace is the scope every world call is issued under. A contract is
// addressed by its tag, which is the namespace joined with the contract
// name.
type Namespace string

// NewNamespace validates and returns a namespace.
func NewNamespace(s string) (Namespace, error) {
	n := Namespace(s)
	if !n.IsValid() {
		return "", ErrMalformedNamespace
	}
	return n, nil
}

// IsValid returns true iff the namespace is a lower case snake_case
// identifier that fits in a short string.
func (n Namespace) IsValid() bool {
	return namespaceRegexp.MatchString(string(n))
}

// Tag returns the contract tag of the named contract in this namespace.
func (n Namespace) Tag(contract string) string {
	return string(n) + "-" + contract
}

// MarshalText encodes a namespace into text form.
func (n Namespace) MarshalText() ([]byte, error) {
	return []byte(n), nil
}

// UnmarshalText decodes a text marshaled namespace.
func (n *Namespace) UnmarshalText(text []byte) error {
	ns, err := NewNamespace(string(text))
	if err != nil {
		return err
	}
	*n = ns
	return nil
}

// String returns the string representation of a namespace.
func (n Namespace) String() string {
	return string(n)
}
