// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package hdkey

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/complex-gh/walletcore/curve"
	"github.com/complex-gh/walletcore/errs"
	"github.com/complex-gh/walletcore/secret"
)

// Well-known BIP32 serialisation versions.
const (
	VersionXPrv uint32 = 0x0488ade4
	VersionXPub uint32 = 0x0488b21e
	VersionTPrv uint32 = 0x04358394
	VersionTPub uint32 = 0x043587cf
	VersionYPrv uint32 = 0x049d7878
	VersionYPub uint32 = 0x049d7cb2
	VersionZPrv uint32 = 0x04b2430c
	VersionZPub uint32 = 0x04b24746
)

const (
	// SerializedKeyLen is the length of a serialised key before the
	// checksum.
	SerializedKeyLen = 78
	checksumLen      = 4
)

// Serialize encodes a secp256k1 key in the BIP32 base58 format under the
// given version bytes.
func (k *ExtendedKey) Serialize(version uint32) (string, error) {
	const op = "hdkey.Serialize"
	if k.curve != curve.Secp256k1 {
		return "", errs.E(errs.InvalidParameter, op, "only secp256k1 keys have a BIP32 serialisation, not %s", k.curve)
	}
	if len(k.chainCode) != ChainCodeSize {
		return "", errs.E(errs.InvalidKey, op, "key has been wiped")
	}

	buf := make([]byte, 0, SerializedKeyLen+checksumLen)
	buf = binary.BigEndian.AppendUint32(buf, version)
	buf = append(buf, k.depth)
	buf = append(buf, k.parentFP[:]...)
	buf = binary.BigEndian.AppendUint32(buf, k.childNum)
	buf = append(buf, k.chainCode...)
	if k.isPrivate {
		buf = append(buf, 0x00)
		buf = append(buf, k.key...)
	} else {
		buf = append(buf, k.key...)
	}
	defer secret.Wipe(buf)

	buf = append(buf, chainhash.DoubleHashB(buf)[:checksumLen]...)
	return base58.Encode(buf), nil
}

// Parse decodes a BIP32 serialised secp256k1 key and returns it with its
// version bytes. Whether the key is private is read from the key data, so
// any version pair is accepted.
func Parse(s string) (*ExtendedKey, uint32, error) {
	const op = "hdkey.Parse"

	raw := base58.Decode(s)
	defer secret.Wipe(raw)
	if len(raw) != SerializedKeyLen+checksumLen {
		return nil, 0, errs.E(errs.InvalidParameter, op,
			"extended key must decode to %d bytes, got %d", SerializedKeyLen+checksumLen, len(raw))
	}

	payload, sum := raw[:SerializedKeyLen], raw[SerializedKeyLen:]
	want := chainhash.DoubleHashB(payload)[:checksumLen]
	for i := range sum {
		if sum[i] != want[i] {
			return nil, 0, errs.E(errs.ChecksumMismatch, op, "extended key checksum does not match")
		}
	}

	version := binary.BigEndian.Uint32(payload[0:4])
	depth := payload[4]
	var parentFP [FingerprintSize]byte
	copy(parentFP[:], payload[5:9])
	childNum := binary.BigEndian.Uint32(payload[9:13])
	chainCode := clone(payload[13:45])
	keyData := payload[45:78]

	if depth == 0 && (parentFP != [FingerprintSize]byte{} || childNum != 0) {
		return nil, 0, errs.E(errs.InvalidKey, op, "master key with a parent fingerprint or child index")
	}

	if keyData[0] == 0x00 {
		priv := clone(keyData[1:])
		if err := curve.MustFor(curve.Secp256k1).IsValidScalar(priv); err != nil {
			secret.Wipe(priv)
			return nil, 0, errs.Wrap(errs.InvalidKey, op, err)
		}
		return newPrivate(curve.Secp256k1, priv, nil, chainCode, parentFP, depth, childNum), version, nil
	}

	if _, err := btcec.ParsePubKey(keyData); err != nil {
		return nil, 0, errs.E(errs.InvalidKey, op, "could not parse public key: %w", err)
	}
	return newPublic(curve.Secp256k1, clone(keyData), chainCode, parentFP, depth, childNum), version, nil
}
