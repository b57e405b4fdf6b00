// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package signing

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/complex-gh/walletcore/curve"
	"github.com/complex-gh/walletcore/errs"
)

// compactHeader is the first byte of a compact signature for a compressed
// key with recovery id 0.
const compactHeader = 27 + 4

func privKey(priv []byte) (*btcec.PrivateKey, error) {
	if err := curve.MustFor(curve.Secp256k1).IsValidScalar(priv); err != nil {
		return nil, err
	}
	key, _ := btcec.PrivKeyFromBytes(priv)
	return key, nil
}

// signCompact returns R||S and the recovery id. SignCompact uses RFC 6979
// nonces and always produces a low S.
func signCompact(priv, digest []byte) ([]byte, byte, error) {
	key, err := privKey(priv)
	if err != nil {
		return nil, 0, err
	}
	defer key.Zero()

	compact := ecdsa.SignCompact(key, digest, true)
	return compact[1:], compact[0] - compactHeader, nil
}

func signECDSA(priv, digest []byte) ([]byte, error) {
	rs, _, err := signCompact(priv, digest)
	return rs, err
}

func signRecoverable(priv, digest []byte, offset byte) ([]byte, error) {
	rs, recID, err := signCompact(priv, digest)
	if err != nil {
		return nil, err
	}
	return append(rs, recID+offset), nil
}

func signSchnorr(priv, digest []byte, tweak bool) ([]byte, error) {
	key, err := privKey(priv)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	if tweak {
		tweaked := txscript.TweakTaprootPrivKey(*key, nil)
		defer tweaked.Zero()
		key = tweaked
	}
	sig, err := schnorr.Sign(key, digest)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidKey, "signing.Sign", err)
	}
	return sig.Serialize(), nil
}

// parseRS splits R||S, rejecting out of range values and high S.
func parseRS(sig []byte) (*ecdsa.Signature, bool) {
	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return nil, false
	}
	if overflow := s.SetByteSlice(sig[32:64]); overflow || s.IsZero() || s.IsOverHalfOrder() {
		return nil, false
	}
	return ecdsa.NewSignature(&r, &s), true
}

func verifyECDSA(pub, digest, sig []byte) bool {
	key, err := btcec.ParsePubKey(pub)
	if err != nil {
		return false
	}
	parsed, ok := parseRS(sig)
	return ok && parsed.Verify(digest, key)
}

func verifyRecoverable(pub, digest, sig []byte, offset byte) bool {
	if sig[64] < offset || sig[64]-offset > 3 {
		return false
	}
	if _, ok := parseRS(sig); !ok {
		return false
	}

	compact := make([]byte, 65)
	compact[0] = compactHeader + sig[64] - offset
	copy(compact[1:], sig[:64])
	recovered, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return false
	}
	return bytes.Equal(recovered.SerializeCompressed(), pub)
}

// verifySchnorr checks a BIP340 signature against the x-only form of pub,
// or against its BIP86 output key when tweak is set.
func verifySchnorr(pub, digest, sig []byte, tweak bool) bool {
	key, err := btcec.ParsePubKey(pub)
	if err != nil {
		return false
	}
	if tweak {
		key = txscript.ComputeTaprootKeyNoScript(key)
	}
	xonly, err := schnorr.ParsePubKey(schnorr.SerializePubKey(key))
	if err != nil {
		return false
	}
	parsed, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(digest, xonly)
}
