// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package coin

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/complex-gh/walletcore/errs"
)

//go:embed registry.json
var registryJSON []byte

// Registry is an immutable set of coin descriptors. It is safe for
// concurrent use.
type Registry struct {
	version int
	coins   map[ID]*Descriptor
	order   []ID
}

type registryFile struct {
	Version int           `json:"version"`
	Coins   []*Descriptor `json:"coins"`
}

// NewRegistry builds a registry from a JSON table of the registry.json
// shape. Unknown fields and inconsistent descriptors are rejected.
func NewRegistry(data []byte) (*Registry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var file registryFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("could not decode coin registry: %w", err)
	}
	if file.Version < 1 {
		return nil, fmt.Errorf("coin registry has no version")
	}

	r := &Registry{
		version: file.Version,
		coins:   make(map[ID]*Descriptor, len(file.Coins)),
	}
	for i, d := range file.Coins {
		if err := d.validate(); err != nil {
			return nil, fmt.Errorf("coin registry entry %d (%s): %w", i, d.ID, err)
		}
		if _, dup := r.coins[d.ID]; dup {
			return nil, fmt.Errorf("coin registry repeats %q", d.ID)
		}
		r.coins[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r, nil
}

var defaultRegistry = func() *Registry {
	r, err := NewRegistry(registryJSON)
	if err != nil {
		panic(err)
	}
	return r
}()

// Default returns the registry built from the embedded table.
func Default() *Registry { return defaultRegistry }

// Version returns the table version.
func (r *Registry) Version() int { return r.version }

// Lookup returns the descriptor of id or an UnsupportedCoin error.
func (r *Registry) Lookup(id ID) (*Descriptor, error) {
	d, ok := r.coins[id]
	if !ok {
		return nil, errs.E(errs.UnsupportedCoin, "coin.Lookup", "no coin %q", id)
	}
	return d, nil
}

// All returns every descriptor in table order.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, len(r.order))
	for i, id := range r.order {
		out[i] = r.coins[id]
	}
	return out
}

// Lookup finds id in the default registry.
func Lookup(id ID) (*Descriptor, error) { return defaultRegistry.Lookup(id) }

// All lists the default registry.
func All() []*Descriptor { return defaultRegistry.All() }
