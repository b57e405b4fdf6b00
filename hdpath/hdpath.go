// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package hdpath parses derivation paths such as m/44'/0'/0'/0/0 and walks
// them down a key tree.
//
// The grammar is strict: the path starts with "m", every further segment is
// "/" followed by an unsigned decimal below 2^31 and an optional "'" marking
// a hardened step. "m" alone is the root.
package hdpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/complex-gh/walletcore/errs"
	"github.com/complex-gh/walletcore/hdkey"
)

// Purpose is the first level of a BIP43 path.
type Purpose uint32

// Purposes of the supported address schemes.
const (
	PurposeBIP44 Purpose = 44 // legacy P2PKH and account-based coins
	PurposeBIP49 Purpose = 49 // P2SH-P2WPKH
	PurposeBIP84 Purpose = 84 // P2WPKH
	PurposeBIP86 Purpose = 86 // P2TR key path
)

// Component is one step of a path.
type Component struct {
	Value    uint32
	Hardened bool
}

// Index returns the BIP32 child number with the hardened bit applied.
func (c Component) Index() uint32 {
	if c.Hardened {
		return c.Value | hdkey.HardenedKeyStart
	}
	return c.Value
}

func (c Component) String() string {
	if c.Hardened {
		return strconv.FormatUint(uint64(c.Value), 10) + "'"
	}
	return strconv.FormatUint(uint64(c.Value), 10)
}

// Path is an ordered list of derivation steps from the master key.
type Path []Component

// New builds the five-level BIP44 style path
// m/purpose'/coin'/account'/change/index.
func New(purpose Purpose, coinType, account, change, index uint32) Path {
	return Path{
		{Value: uint32(purpose), Hardened: true},
		{Value: coinType, Hardened: true},
		{Value: account, Hardened: true},
		{Value: change},
		{Value: index},
	}
}

// Account returns the three-level account path m/purpose'/coin'/account'.
func Account(purpose Purpose, coinType, account uint32) Path {
	return New(purpose, coinType, account, 0, 0)[:3]
}

// Parse parses a path string.
func Parse(s string) (Path, error) {
	const op = "hdpath.Parse"

	if s == "m" {
		return Path{}, nil
	}
	rest, ok := strings.CutPrefix(s, "m/")
	if !ok {
		return nil, errs.E(errs.MalformedPath, op, "path %q must start with \"m/\"", s)
	}

	segments := strings.Split(rest, "/")
	path := make(Path, 0, len(segments))
	for i, seg := range segments {
		c, err := parseComponent(seg)
		if err != nil {
			return nil, errs.E(errs.MalformedPath, op, "segment %d %q: %w", i+1, seg, err)
		}
		path = append(path, c)
	}
	return path, nil
}

func parseComponent(seg string) (Component, error) {
	var c Component
	if digits, ok := strings.CutSuffix(seg, "'"); ok {
		c.Hardened = true
		seg = digits
	}
	if seg == "" {
		return c, fmt.Errorf("empty index")
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return c, fmt.Errorf("unexpected character %q", r)
		}
	}
	v, err := strconv.ParseUint(seg, 10, 32)
	if err != nil || v >= uint64(hdkey.HardenedKeyStart) {
		return c, fmt.Errorf("index must be below 2^31")
	}
	c.Value = uint32(v)
	return c, nil
}

// String renders the path in the m/44'/0'/0'/0/0 form.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, c := range p {
		b.WriteByte('/')
		b.WriteString(c.String())
	}
	return b.String()
}

// at returns the value of level i or 0 if the path is shorter.
func (p Path) at(i int) uint32 {
	if i >= len(p) {
		return 0
	}
	return p[i].Value
}

// Purpose returns the first level.
func (p Path) Purpose() Purpose { return Purpose(p.at(0)) }

// Coin returns the SLIP-44 coin type level.
func (p Path) Coin() uint32 { return p.at(1) }

// Account returns the account level.
func (p Path) Account() uint32 { return p.at(2) }

// Change returns the change level: 0 external, 1 internal.
func (p Path) Change() uint32 { return p.at(3) }

// AddressIndex returns the address level.
func (p Path) AddressIndex() uint32 { return p.at(4) }

// Append returns a copy of p extended with the given steps.
func (p Path) Append(c ...Component) Path {
	out := make(Path, 0, len(p)+len(c))
	return append(append(out, p...), c...)
}

// SegmentError reports the step of a path at which derivation failed.
type SegmentError struct {
	// Segment is the failing step.
	Segment Component
	// Position is the 1-based position of the step in the path.
	Position int
	// Err is the derivation failure.
	Err error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("could not derive segment %d (%s): %v", e.Position, e.Segment, e.Err)
}

// Unwrap returns the derivation failure so errors.Is sees its kind.
func (e *SegmentError) Unwrap() error { return e.Err }

// Resolve derives the key at path below master. Intermediate keys are wiped;
// master is left untouched and returned as is for an empty path. The first
// failing step aborts the walk.
func Resolve(path Path, master *hdkey.ExtendedKey) (*hdkey.ExtendedKey, error) {
	key := master
	for i, c := range path {
		child, err := key.DeriveChild(c.Value, c.Hardened)
		if key != master {
			key.Zero()
		}
		if err != nil {
			return nil, &SegmentError{Segment: c, Position: i + 1, Err: err}
		}
		key = child
	}
	return key, nil
}

// Below returns the steps of path that lie under key. A path counts as
// absolute when its first Depth steps are hardened and the last of them is
// key's child index, as m/44'/195'/0'/0/3 is for an account key at
// m/44'/195'/0'; the remaining steps are returned. Any other path is
// relative to key and returned as is. An absolute path that ends its
// hardened prefix at another index names a different account and fails with
// InvalidParameter.
func Below(path Path, key *hdkey.ExtendedKey) (Path, error) {
	depth := int(key.Depth())
	if depth == 0 || len(path) < depth {
		return path, nil
	}
	for _, c := range path[:depth] {
		if !c.Hardened {
			return path, nil
		}
	}
	if path[depth-1].Index() != key.ChildIndex() {
		return nil, errs.E(errs.InvalidParameter, "hdpath.Below",
			"path %s does not pass through the extended key at depth %d", path, depth)
	}
	return path[depth:], nil
}
