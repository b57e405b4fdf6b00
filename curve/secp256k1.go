// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package curve

import (
	"github.com/btcsuite/btcd/btcec/v2"
)

const (
	secpScalarSize = 32
	secpPointSize  = btcec.PubKeyBytesLenCompressed
)

type secp256k1Curve struct{}

func (secp256k1Curve) sealed() {}

func (secp256k1Curve) Kind() Kind { return Secp256k1 }

func (secp256k1Curve) PrivateKeySize() int { return secpScalarSize }

func (secp256k1Curve) PublicKeySize() int { return secpPointSize }

// scalar parses k and rejects zero and values not below the group order.
func secpScalar(op string, k []byte) (*btcec.ModNScalar, error) {
	if err := checkLen(op, "scalar", k, secpScalarSize); err != nil {
		return nil, err
	}
	var s btcec.ModNScalar
	if overflow := s.SetByteSlice(k); overflow {
		s.Zero()
		return nil, invalidKey(op, "scalar is not below the group order")
	}
	if s.IsZero() {
		return nil, invalidKey(op, "scalar is zero")
	}
	return &s, nil
}

func secpPoint(op string, p []byte) (*btcec.JacobianPoint, error) {
	pub, err := btcec.ParsePubKey(p)
	if err != nil {
		return nil, invalidKey(op, "could not parse point: %w", err)
	}
	var jp btcec.JacobianPoint
	pub.AsJacobian(&jp)
	return &jp, nil
}

// secpEncode converts jp to affine and serialises it, failing on the point
// at infinity.
func secpEncode(op string, jp *btcec.JacobianPoint) ([]byte, error) {
	jp.ToAffine()
	if jp.X.IsZero() && jp.Y.IsZero() {
		return nil, invalidKey(op, "result is the point at infinity")
	}
	return btcec.NewPublicKey(&jp.X, &jp.Y).SerializeCompressed(), nil
}

func (secp256k1Curve) IsValidScalar(k []byte) error {
	s, err := secpScalar("curve.IsValidScalar", k)
	if err != nil {
		return err
	}
	s.Zero()
	return nil
}

func (c secp256k1Curve) PublicFromPrivate(priv []byte) ([]byte, error) {
	return c.ScalarBaseMultiply(priv)
}

func (secp256k1Curve) ScalarBaseMultiply(k []byte) ([]byte, error) {
	const op = "curve.ScalarBaseMultiply"
	s, err := secpScalar(op, k)
	if err != nil {
		return nil, err
	}
	defer s.Zero()

	var jp btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(s, &jp)
	return secpEncode(op, &jp)
}

func (secp256k1Curve) ScalarMultiply(k, p []byte) ([]byte, error) {
	const op = "curve.ScalarMultiply"
	s, err := secpScalar(op, k)
	if err != nil {
		return nil, err
	}
	defer s.Zero()
	point, err := secpPoint(op, p)
	if err != nil {
		return nil, err
	}

	var jp btcec.JacobianPoint
	btcec.ScalarMultNonConst(s, point, &jp)
	return secpEncode(op, &jp)
}

func (secp256k1Curve) PointAdd(p, q []byte) ([]byte, error) {
	const op = "curve.PointAdd"
	a, err := secpPoint(op, p)
	if err != nil {
		return nil, err
	}
	b, err := secpPoint(op, q)
	if err != nil {
		return nil, err
	}

	var sum btcec.JacobianPoint
	btcec.AddNonConst(a, b, &sum)
	return secpEncode(op, &sum)
}

// ScalarAdd adds modulo the group order. Operands must be valid scalars and
// a zero sum is rejected.
func (secp256k1Curve) ScalarAdd(a, b []byte) ([]byte, error) {
	const op = "curve.ScalarAdd"
	x, err := secpScalar(op, a)
	if err != nil {
		return nil, err
	}
	defer x.Zero()
	y, err := secpScalar(op, b)
	if err != nil {
		return nil, err
	}
	defer y.Zero()

	x.Add(y)
	if x.IsZero() {
		return nil, invalidKey(op, "sum is zero")
	}
	out := x.Bytes()
	return out[:], nil
}
