// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package signing produces and checks signatures over transaction digests
// with the scheme a coin descriptor names. The digest is signed as given;
// hashing the transaction is the caller's job.
package signing

import (
	"crypto/ed25519"

	"github.com/complex-gh/walletcore/coin"
	"github.com/complex-gh/walletcore/curve"
	"github.com/complex-gh/walletcore/errs"
	"github.com/complex-gh/walletcore/hdkey"
	"github.com/complex-gh/walletcore/secret"
)

// Signature sizes.
const (
	SizeCompact     = 64 // R||S, BIP340 and ed25519 signatures
	SizeRecoverable = 65 // R||S||V
)

// Size returns the signature length of a scheme.
func Size(s coin.Scheme) int {
	if s == coin.SchemeECDSARecoverable {
		return SizeRecoverable
	}
	return SizeCompact
}

// Sign signs digest with key under the descriptor's scheme. The key must be
// private and on the descriptor's curve, and the digest must be exactly
// DigestSize bytes.
func Sign(d *coin.Descriptor, key *hdkey.ExtendedKey, digest []byte) ([]byte, error) {
	const op = "signing.Sign"

	if len(digest) != d.DigestSize {
		return nil, errs.E(errs.InvalidDigestLength, op, "%s signs %d-byte digests, got %d", d.ID, d.DigestSize, len(digest))
	}
	if key.Curve() != d.Curve {
		return nil, errs.E(errs.InvalidKey, op, "%s needs a %s key, got %s", d.ID, d.Curve, key.Curve())
	}
	if !key.IsPrivate() {
		return nil, errs.E(errs.InvalidKey, op, "cannot sign with a public key")
	}

	priv, err := key.PrivateKey()
	if err != nil {
		return nil, err
	}
	defer secret.Wipe(priv)

	switch d.Scheme {
	case coin.SchemeECDSA:
		return signECDSA(priv, digest)
	case coin.SchemeECDSARecoverable:
		return signRecoverable(priv, digest, d.RecoveryOffset)
	case coin.SchemeSchnorr:
		return signSchnorr(priv, digest, false)
	case coin.SchemeTaproot:
		return signSchnorr(priv, digest, true)
	case coin.SchemeEd25519:
		sk := ed25519.NewKeyFromSeed(priv)
		defer secret.Wipe(sk)
		return ed25519.Sign(sk, digest), nil
	case coin.SchemeEd25519Extended:
		kr, err := key.ExtensionKey()
		if err != nil {
			return nil, err
		}
		defer secret.Wipe(kr)
		pub, err := key.PublicKey()
		if err != nil {
			return nil, err
		}
		return signExtended(priv, kr, pub, digest)
	}
	return nil, errs.E(errs.UnsupportedCoin, op, "unknown signature scheme %q", d.Scheme)
}

// Verify reports whether sig is a valid signature of digest by pub under
// the descriptor's scheme. It never fails loudly: malformed input is simply
// not a valid signature.
func Verify(d *coin.Descriptor, pub, digest, sig []byte) bool {
	if len(digest) != d.DigestSize || len(sig) != Size(d.Scheme) {
		return false
	}
	if len(pub) != curve.MustFor(d.Curve).PublicKeySize() {
		return false
	}

	switch d.Scheme {
	case coin.SchemeECDSA:
		return verifyECDSA(pub, digest, sig)
	case coin.SchemeECDSARecoverable:
		return verifyRecoverable(pub, digest, sig, d.RecoveryOffset)
	case coin.SchemeSchnorr:
		return verifySchnorr(pub, digest, sig, false)
	case coin.SchemeTaproot:
		return verifySchnorr(pub, digest, sig, true)
	case coin.SchemeEd25519, coin.SchemeEd25519Extended:
		return ed25519.Verify(pub, digest, sig)
	}
	return false
}
