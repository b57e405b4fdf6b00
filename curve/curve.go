// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package curve wraps the elliptic curve arithmetic needed by hierarchical
// key derivation behind one interface. The set of curves is closed: the
// interface carries an unexported method so only this package implements it.
//
// Scalars and points travel as byte slices in the encoding native to each
// curve: big-endian scalars and 33-byte compressed points on secp256k1,
// little-endian scalars and 32-byte compressed points on edwards25519.
package curve

import (
	"fmt"

	"github.com/complex-gh/walletcore/errs"
)

// Kind identifies a curve and its key derivation flavour.
type Kind uint8

const (
	// Secp256k1 is the Koblitz curve used by Bitcoin, Ethereum and Tron.
	Secp256k1 Kind = iota + 1
	// Ed25519 is RFC 8032 ed25519 as used by SLIP-10, where private keys
	// are 32-byte seeds.
	Ed25519
	// Ed25519BIP32 is ed25519 with BIP32-Ed25519 extended keys, where the
	// private key is the clamped scalar kL.
	Ed25519BIP32
)

var kindNames = map[Kind]string{
	Secp256k1:    "secp256k1",
	Ed25519:      "ed25519",
	Ed25519BIP32: "ed25519-bip32",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("curve(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown curve %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown curve %q", text)
}

// Curve is the arithmetic of one curve.
//
// The secp256k1 point operations (ScalarBaseMultiply, ScalarMultiply and
// PointAdd) use btcec's NonConst routines, whose running time depends on
// the scalar. They serve offline derivation; do not expose them where an
// attacker can time repeated operations on the same secret. Scalar
// arithmetic and the edwards25519 operations are constant time.
type Curve interface {
	// Kind returns the curve identifier.
	Kind() Kind
	// PrivateKeySize and PublicKeySize return the encoded key lengths.
	PrivateKeySize() int
	PublicKeySize() int

	// IsValidScalar returns an InvalidKey error if k cannot serve as a
	// private key.
	IsValidScalar(k []byte) error
	// PublicFromPrivate returns the public key of a private key.
	PublicFromPrivate(priv []byte) ([]byte, error)
	// ScalarBaseMultiply returns k*G.
	ScalarBaseMultiply(k []byte) ([]byte, error)
	// ScalarMultiply returns k*P.
	ScalarMultiply(k, p []byte) ([]byte, error)
	// PointAdd returns P+Q. The identity is rejected with InvalidKey.
	PointAdd(p, q []byte) ([]byte, error)
	// ScalarAdd returns a+b in the curve's scalar arithmetic.
	ScalarAdd(a, b []byte) ([]byte, error)

	sealed()
}

var curves = map[Kind]Curve{
	Secp256k1:    secp256k1Curve{},
	Ed25519:      ed25519Curve{},
	Ed25519BIP32: ed25519BIP32Curve{},
}

// For returns the arithmetic of kind.
func For(kind Kind) (Curve, error) {
	c, ok := curves[kind]
	if !ok {
		return nil, errs.E(errs.InvalidParameter, "curve.For", "unknown curve %d", uint8(kind))
	}
	return c, nil
}

// MustFor is like For but panics on an unknown kind. It is meant for the
// package-level constants of callers.
func MustFor(kind Kind) Curve {
	c, err := For(kind)
	if err != nil {
		panic(err)
	}
	return c
}

func invalidKey(op, format string, args ...any) error {
	return errs.E(errs.InvalidKey, op, format, args...)
}

func checkLen(op, what string, b []byte, n int) error {
	if len(b) != n {
		return invalidKey(op, "%s must be %d bytes, got %d", what, n, len(b))
	}
	return nil
}
