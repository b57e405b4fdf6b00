// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package hdkey

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/complex-gh/walletcore/curve"
	"github.com/complex-gh/walletcore/errs"
	"github.com/complex-gh/walletcore/secret"
)

var (
	// slip10SeedKey is the SLIP-10 ed25519 master HMAC key.
	slip10SeedKey = []byte("ed25519 seed")
	// cardanoSeedKey is the SLIP-23 master HMAC key.
	cardanoSeedKey = []byte("ed25519 cardano seed")
)

func slip10Master(seed []byte) (*ExtendedKey, error) {
	i := hmac512(slip10SeedKey, seed)
	defer secret.Wipe(i)
	return newPrivate(curve.Ed25519, clone(i[:32]), nil, clone(i[32:]),
		[FingerprintSize]byte{}, 0, 0), nil
}

// slip10Child derives hardened ed25519 children: every 32-byte string is a
// valid key so no index is ever skipped.
func (k *ExtendedKey) slip10Child(fp [FingerprintSize]byte) func(uint32) (*ExtendedKey, error) {
	return func(i uint32) (*ExtendedKey, error) {
		data := make([]byte, 1+32+4)
		copy(data[1:], k.key)
		binary.BigEndian.PutUint32(data[33:], i)
		ilr := hmac512(k.chainCode, data)
		defer secret.Wipe(data, ilr)
		return newPrivate(curve.Ed25519, clone(ilr[:32]), nil, clone(ilr[32:]), fp, k.depth+1, i), nil
	}
}

// bip32EdMaster follows SLIP-23: the HMAC output is re-hashed until the
// third highest bit of kL is clear, then kL is clamped.
func bip32EdMaster(seed []byte) (*ExtendedKey, error) {
	i := hmac512(cardanoSeedKey, seed)
	k := sha512.Sum512(i[:32])
	for k[31]&0x20 != 0 {
		next := hmac512(cardanoSeedKey, i)
		secret.Wipe(i)
		i = next
		k = sha512.Sum512(i[:32])
	}
	defer secret.Wipe(i, k[:])

	k[0] &= 0xf8
	k[31] &= 0x7f
	k[31] |= 0x40

	if err := curve.MustFor(curve.Ed25519BIP32).IsValidScalar(k[:32]); err != nil {
		return nil, errs.Wrap(errs.InvalidKey, "hdkey.NewMaster", err)
	}
	return newPrivate(curve.Ed25519BIP32, clone(k[:32]), clone(k[32:]), clone(i[32:]),
		[FingerprintSize]byte{}, 0, 0), nil
}

// bip32EdChild implements BIP32-Ed25519 derivation. Indices are serialised
// little-endian and Z is split into zL (28 bytes, multiplied by 8) and zR.
func (k *ExtendedKey) bip32EdChild(fp [FingerprintSize]byte, hardened bool) (func(uint32) (*ExtendedKey, error), error) {
	c := curve.MustFor(curve.Ed25519BIP32)

	var pub []byte
	zTag, ccTag := byte(0x02), byte(0x03)
	if hardened {
		zTag, ccTag = 0x00, 0x01
	} else {
		var err error
		if pub, err = k.PublicKey(); err != nil {
			return nil, err
		}
	}

	return func(i uint32) (*ExtendedKey, error) {
		var idx [4]byte
		binary.LittleEndian.PutUint32(idx[:], i)

		var z, cc []byte
		if hardened {
			z = hmac512(k.chainCode, []byte{zTag}, k.key, k.ext, idx[:])
			cc = hmac512(k.chainCode, []byte{ccTag}, k.key, k.ext, idx[:])
		} else {
			z = hmac512(k.chainCode, []byte{zTag}, pub, idx[:])
			cc = hmac512(k.chainCode, []byte{ccTag}, pub, idx[:])
		}
		zl8 := curve.MulLE8(z[:28])
		defer secret.Wipe(z, cc[:32], zl8)

		if k.isPrivate {
			kl, err := c.ScalarAdd(k.key, zl8)
			if err != nil {
				return nil, invalidChild(err)
			}
			if err := c.IsValidScalar(kl); err != nil {
				secret.Wipe(kl)
				return nil, invalidChild(err)
			}
			kr, err := c.ScalarAdd(k.ext, z[32:])
			if err != nil {
				secret.Wipe(kl)
				return nil, invalidChild(err)
			}
			return newPrivate(curve.Ed25519BIP32, kl, kr, cc[32:], fp, k.depth+1, i), nil
		}

		tweak, err := c.ScalarBaseMultiply(zl8)
		if err != nil {
			return nil, invalidChild(err)
		}
		childKey, err := c.PointAdd(k.key, tweak)
		if err != nil {
			return nil, invalidChild(err)
		}
		return newPublic(curve.Ed25519BIP32, childKey, cc[32:], fp, k.depth+1, i), nil
	}, nil
}
