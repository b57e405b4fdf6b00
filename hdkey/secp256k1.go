// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package hdkey

import (
	"encoding/binary"

	"github.com/complex-gh/walletcore/curve"
	"github.com/complex-gh/walletcore/errs"
	"github.com/complex-gh/walletcore/secret"
)

// bitcoinSeedKey is the BIP32 master key HMAC key.
var bitcoinSeedKey = []byte("Bitcoin seed")

func secpMaster(seed []byte) (*ExtendedKey, error) {
	i := hmac512(bitcoinSeedKey, seed)
	defer secret.Wipe(i)

	if err := curve.MustFor(curve.Secp256k1).IsValidScalar(i[:32]); err != nil {
		return nil, errs.Wrap(errs.InvalidKey, "hdkey.NewMaster", err)
	}
	return newPrivate(curve.Secp256k1, clone(i[:32]), nil, clone(i[32:]),
		[FingerprintSize]byte{}, 0, 0), nil
}

// secpChild implements BIP32 CKDpriv and CKDpub.
func (k *ExtendedKey) secpChild(fp [FingerprintSize]byte, hardened bool) (func(uint32) (*ExtendedKey, error), error) {
	c := curve.MustFor(curve.Secp256k1)

	// hardened: 0x00 || ser256(k) || ser32(i), otherwise serP(K) || ser32(i)
	var pub []byte
	if !hardened {
		var err error
		if pub, err = k.PublicKey(); err != nil {
			return nil, err
		}
	}

	return func(i uint32) (*ExtendedKey, error) {
		data := make([]byte, 33+4)
		if hardened {
			copy(data[1:], k.key)
		} else {
			copy(data, pub)
		}
		binary.BigEndian.PutUint32(data[33:], i)
		ilr := hmac512(k.chainCode, data)
		defer secret.Wipe(data, ilr)
		il, ir := ilr[:32], ilr[32:]

		if k.isPrivate {
			childKey, err := c.ScalarAdd(il, k.key)
			if err != nil {
				return nil, invalidChild(err)
			}
			return newPrivate(curve.Secp256k1, childKey, nil, clone(ir), fp, k.depth+1, i), nil
		}

		ilG, err := c.ScalarBaseMultiply(il)
		if err != nil {
			return nil, invalidChild(err)
		}
		childKey, err := c.PointAdd(ilG, k.key)
		if err != nil {
			return nil, invalidChild(err)
		}
		return newPublic(curve.Secp256k1, childKey, clone(ir), fp, k.depth+1, i), nil
	}, nil
}
