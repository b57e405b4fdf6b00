// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package curve

import (
	"crypto/ed25519"

	"filippo.io/edwards25519"
)

const edSize = 32

// edPoint decodes a compressed edwards25519 point.
func edPoint(op string, p []byte) (*edwards25519.Point, error) {
	if err := checkLen(op, "point", p, edSize); err != nil {
		return nil, err
	}
	pt, err := new(edwards25519.Point).SetBytes(p)
	if err != nil {
		return nil, invalidKey(op, "could not decode point: %w", err)
	}
	return pt, nil
}

// edEncode serialises pt, failing on the identity.
func edEncode(op string, pt *edwards25519.Point) ([]byte, error) {
	if pt.Equal(edwards25519.NewIdentityPoint()) == 1 {
		return nil, invalidKey(op, "result is the identity point")
	}
	return pt.Bytes(), nil
}

// edCanonical parses a little-endian scalar that must be below the group
// order and non-zero.
func edCanonical(op string, k []byte) (*edwards25519.Scalar, error) {
	if err := checkLen(op, "scalar", k, edSize); err != nil {
		return nil, err
	}
	s, err := edwards25519.NewScalar().SetCanonicalBytes(k)
	if err != nil {
		return nil, invalidKey(op, "scalar is not below the group order")
	}
	if s.Equal(edwards25519.NewScalar()) == 1 {
		return nil, invalidKey(op, "scalar is zero")
	}
	return s, nil
}

// edReduced interprets k as a 256-bit little-endian integer and reduces it
// modulo the group order. Zero after reduction is rejected.
func edReduced(op string, k []byte) (*edwards25519.Scalar, error) {
	if err := checkLen(op, "scalar", k, edSize); err != nil {
		return nil, err
	}
	var wide [64]byte
	copy(wide[:], k)
	s, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	clear(wide[:])
	if err != nil {
		return nil, invalidKey(op, "%w", err)
	}
	if s.Equal(edwards25519.NewScalar()) == 1 {
		return nil, invalidKey(op, "scalar is zero modulo the group order")
	}
	return s, nil
}

// edPointOps implements the point operations shared by both ed25519
// flavours; scalar parses the flavour's scalar encoding.
type edPointOps struct {
	scalar func(op string, k []byte) (*edwards25519.Scalar, error)
}

func (e edPointOps) scalarBaseMultiply(k []byte) ([]byte, error) {
	const op = "curve.ScalarBaseMultiply"
	s, err := e.scalar(op, k)
	if err != nil {
		return nil, err
	}
	return edEncode(op, new(edwards25519.Point).ScalarBaseMult(s))
}

func (e edPointOps) scalarMultiply(k, p []byte) ([]byte, error) {
	const op = "curve.ScalarMultiply"
	s, err := e.scalar(op, k)
	if err != nil {
		return nil, err
	}
	pt, err := edPoint(op, p)
	if err != nil {
		return nil, err
	}
	return edEncode(op, new(edwards25519.Point).ScalarMult(s, pt))
}

func edPointAdd(p, q []byte) ([]byte, error) {
	const op = "curve.PointAdd"
	a, err := edPoint(op, p)
	if err != nil {
		return nil, err
	}
	b, err := edPoint(op, q)
	if err != nil {
		return nil, err
	}
	return edEncode(op, new(edwards25519.Point).Add(a, b))
}

// ed25519Curve is SLIP-10 ed25519: private keys are RFC 8032 seeds that
// are hashed and clamped before use, scalars in the arithmetic methods are
// canonical.
type ed25519Curve struct{}

func (ed25519Curve) sealed() {}

func (ed25519Curve) Kind() Kind { return Ed25519 }

func (ed25519Curve) PrivateKeySize() int { return ed25519.SeedSize }

func (ed25519Curve) PublicKeySize() int { return ed25519.PublicKeySize }

// IsValidScalar accepts any 32-byte seed.
func (ed25519Curve) IsValidScalar(k []byte) error {
	return checkLen("curve.IsValidScalar", "seed", k, ed25519.SeedSize)
}

func (ed25519Curve) PublicFromPrivate(priv []byte) ([]byte, error) {
	if err := checkLen("curve.PublicFromPrivate", "seed", priv, ed25519.SeedSize); err != nil {
		return nil, err
	}
	key := ed25519.NewKeyFromSeed(priv)
	defer clear(key)
	return append([]byte(nil), key.Public().(ed25519.PublicKey)...), nil
}

func (ed25519Curve) ScalarBaseMultiply(k []byte) ([]byte, error) {
	return edPointOps{edCanonical}.scalarBaseMultiply(k)
}

func (ed25519Curve) ScalarMultiply(k, p []byte) ([]byte, error) {
	return edPointOps{edCanonical}.scalarMultiply(k, p)
}

func (ed25519Curve) PointAdd(p, q []byte) ([]byte, error) { return edPointAdd(p, q) }

// ScalarAdd adds canonical scalars modulo the group order.
func (ed25519Curve) ScalarAdd(a, b []byte) ([]byte, error) {
	const op = "curve.ScalarAdd"
	x, err := edCanonical(op, a)
	if err != nil {
		return nil, err
	}
	y, err := edCanonical(op, b)
	if err != nil {
		return nil, err
	}
	sum := edwards25519.NewScalar().Add(x, y)
	if sum.Equal(edwards25519.NewScalar()) == 1 {
		return nil, invalidKey(op, "sum is zero")
	}
	return sum.Bytes(), nil
}

// ed25519BIP32Curve holds the private key as the clamped scalar kL, a
// 256-bit little-endian integer that is reduced modulo the group order
// only when multiplied.
type ed25519BIP32Curve struct{}

func (ed25519BIP32Curve) sealed() {}

func (ed25519BIP32Curve) Kind() Kind { return Ed25519BIP32 }

func (ed25519BIP32Curve) PrivateKeySize() int { return edSize }

func (ed25519BIP32Curve) PublicKeySize() int { return edSize }

// IsValidScalar rejects kL values that are zero modulo the group order.
func (ed25519BIP32Curve) IsValidScalar(k []byte) error {
	_, err := edReduced("curve.IsValidScalar", k)
	return err
}

func (c ed25519BIP32Curve) PublicFromPrivate(priv []byte) ([]byte, error) {
	return c.ScalarBaseMultiply(priv)
}

func (ed25519BIP32Curve) ScalarBaseMultiply(k []byte) ([]byte, error) {
	return edPointOps{edReduced}.scalarBaseMultiply(k)
}

func (ed25519BIP32Curve) ScalarMultiply(k, p []byte) ([]byte, error) {
	return edPointOps{edReduced}.scalarMultiply(k, p)
}

func (ed25519BIP32Curve) PointAdd(p, q []byte) ([]byte, error) { return edPointAdd(p, q) }

// ScalarAdd adds two 256-bit little-endian integers modulo 2^256, which is
// how BIP32-Ed25519 combines kL with 8*zL and kR with zR.
func (ed25519BIP32Curve) ScalarAdd(a, b []byte) ([]byte, error) {
	const op = "curve.ScalarAdd"
	if err := checkLen(op, "scalar", a, edSize); err != nil {
		return nil, err
	}
	if err := checkLen(op, "scalar", b, edSize); err != nil {
		return nil, err
	}
	return AddLE256(a, b), nil
}

// AddLE256 returns a+b mod 2^256 for 32-byte little-endian integers.
func AddLE256(a, b []byte) []byte {
	out := make([]byte, edSize)
	var carry uint16
	for i := 0; i < edSize; i++ {
		carry += uint16(a[i]) + uint16(b[i])
		out[i] = byte(carry)
		carry >>= 8
	}
	return out
}

// MulLE8 returns 8*x for a little-endian integer of at most 28 bytes,
// widened to 32 bytes.
func MulLE8(x []byte) []byte {
	out := make([]byte, edSize)
	var carry uint16
	for i := 0; i < len(x); i++ {
		carry += uint16(x[i]) << 3
		out[i] = byte(carry)
		carry >>= 8
	}
	if len(x) < edSize {
		out[len(x)] = byte(carry)
	}
	return out
}
