// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package signing

import (
	"crypto/sha512"

	"filippo.io/edwards25519"
	"github.com/complex-gh/walletcore/errs"
	"github.com/complex-gh/walletcore/secret"
)

// signExtended signs with a BIP32-Ed25519 key. kL takes the place of the
// hashed and clamped RFC 8032 scalar and kR the place of the nonce prefix,
// so the result verifies as a plain ed25519 signature under pub.
func signExtended(kl, kr, pub, digest []byte) ([]byte, error) {
	const op = "signing.Sign"

	var wide [64]byte
	copy(wide[:], kl)
	a, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	secret.Wipe(wide[:])
	if err != nil {
		return nil, errs.Wrap(errs.InvalidKey, op, err)
	}

	h := sha512.New()
	h.Write(kr)
	h.Write(digest)
	nonce := h.Sum(nil)
	defer secret.Wipe(nonce)
	r, err := edwards25519.NewScalar().SetUniformBytes(nonce)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidKey, op, err)
	}
	nonceR := new(edwards25519.Point).ScalarBaseMult(r).Bytes()

	h.Reset()
	h.Write(nonceR)
	h.Write(pub)
	h.Write(digest)
	k, err := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	if err != nil {
		return nil, errs.Wrap(errs.InvalidKey, op, err)
	}

	s := edwards25519.NewScalar().MultiplyAdd(k, a, r)
	return append(nonceR, s.Bytes()...), nil
}
