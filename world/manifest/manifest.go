// Package manifest parses the world deployment manifest into the capability
// set backing the module façades.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/aqua-stark/world-binding/codec"
	"github.com/aqua-stark/world-binding/common"
	"github.com/aqua-stark/world-binding/common/errors"
)

// ModuleName is the module name used for error definitions.
const ModuleName = "manifest"

// ErrMalformedManifest is the error returned when a deployment manifest
// cannot be parsed or is inconsistent.
var ErrMalformedManifest = errors.New(ModuleName, 1, "manifest: malformed deployment manifest")

// World is the deployed world contract.
type World struct {
	Address   string `json:"address"`
	ClassHash string `json:"class_hash,omitempty"`
	Seed      string `json:"seed,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Contract is a deployed world contract exposing a set of systems.
type Contract struct {
	Address   string          `json:"address"`
	ClassHash string          `json:"class_hash,omitempty"`
	Tag       string          `json:"tag"`
	Systems   []string        `json:"systems,omitempty"`
	ABI       json.RawMessage `json:"abi,omitempty"`
}

// Target returns the contract name without the namespace prefix.
func (c *Contract) Target() string {
	if i := strings.IndexByte(c.Tag, '-'); i >= 0 {
		return c.Tag[i+1:]
	}
	return c.Tag
}

// Namespace returns the namespace prefix of the contract tag.
func (c *Contract) Namespace() common.Namespace {
	if i := strings.IndexByte(c.Tag, '-'); i >= 0 {
		return common.Namespace(c.Tag[:i])
	}
	return ""
}

// HasSystem returns true iff the contract exposes the given entrypoint.
// Contracts that do not list their systems expose everything.
func (c *Contract) HasSystem(entrypoint string) bool {
	if len(c.Systems) == 0 {
		return true
	}
	for _, s := range c.Systems {
		if s == entrypoint {
			return true
		}
	}
	return false
}

// Manifest is a world deployment manifest.
type Manifest struct {
	World     World      `json:"world"`
	Contracts []Contract `json:"contracts"`
}

// Validate checks the manifest for consistency under the given namespace.
func (m *Manifest) Validate(namespace common.Namespace) error {
	var result *multierror.Error

	if _, err := codec.EncodeAddress(m.World.Address); err != nil {
		result = multierror.Append(result, fmt.Errorf("world: address: %w", err))
	}

	seen := make(map[string]bool)
	for i := range m.Contracts {
		c := &m.Contracts[i]
		if c.Namespace() != namespace || c.Target() == "" {
			result = multierror.Append(result, fmt.Errorf("contract %d: tag %q is not in namespace %s", i, c.Tag, namespace))
			continue
		}
		if seen[c.Target()] {
			result = multierror.Append(result, fmt.Errorf("contract %d: duplicate target %s", i, c.Target()))
		}
		seen[c.Target()] = true
		if _, err := codec.EncodeAddress(c.Address); err != nil {
			result = multierror.Append(result, fmt.Errorf("contract %s: address: %w", c.Tag, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.WithContext(ErrMalformedManifest, err.Error())
	}
	return nil
}

// CapabilitySet returns the set of deployed contracts keyed by target.
func (m *Manifest) CapabilitySet(namespace common.Namespace) (*CapabilitySet, error) {
	if err := m.Validate(namespace); err != nil {
		return nil, err
	}
	return NewCapabilitySet(namespace, m.World.Address, m.Contracts...), nil
}

// Parse parses a JSON encoded deployment manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WithContext(ErrMalformedManifest, err.Error())
	}
	return &m, nil
}

// Load reads and validates a deployment manifest from a file.
func Load(path string, namespace common.Namespace) (*CapabilitySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return m.CapabilitySet(namespace)
}

// CapabilitySet is the set of world contracts available to the façades.
// It is immutable, a reconnect replaces the whole set.
type CapabilitySet struct {
	namespace common.Namespace
	world     string
	contracts map[string]*Contract
}

// NewCapabilitySet creates a new capability set from deployed contracts.
func NewCapabilitySet(namespace common.Namespace, world string, contracts ...Contract) *CapabilitySet {
	cs := &CapabilitySet{
		namespace: namespace,
		world:     world,
		contracts: make(map[string]*Contract, len(contracts)),
	}
	for i := range contracts {
		c := contracts[i]
		cs.contracts[c.Target()] = &c
	}
	return cs
}

// Namespace returns the namespace of the deployment.
func (cs *CapabilitySet) Namespace() common.Namespace {
	return cs.namespace
}

// World returns the world address.
func (cs *CapabilitySet) World() string {
	return cs.world
}

// Contract returns the contract deployed for target.
func (cs *CapabilitySet) Contract(target string) (*Contract, bool) {
	if cs == nil {
		return nil, false
	}
	c, ok := cs.contracts[target]
	return c, ok
}

// Has returns true iff the set exposes target.
func (cs *CapabilitySet) Has(target string) bool {
	_, ok := cs.Contract(target)
	return ok
}

// Targets returns the exposed targets in sorted order.
func (cs *CapabilitySet) Targets() []string {
	if cs == nil {
		return nil
	}
	targets := make([]string, 0, len(cs.contracts))
	for t := range cs.contracts {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}
