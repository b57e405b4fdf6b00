// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package coin

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/complex-gh/walletcore/curve"
	"github.com/complex-gh/walletcore/errs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// AddressFromPublicKey encodes pub as an address of the coin. The key must
// be in the encoding of the coin's curve: 33-byte compressed on secp256k1,
// 32 bytes on ed25519.
func AddressFromPublicKey(d *Descriptor, pub []byte) (string, error) {
	const op = "coin.AddressFromPublicKey"

	if want := curve.MustFor(d.Curve).PublicKeySize(); len(pub) != want {
		return "", errs.E(errs.InvalidKey, op, "%s public key must be %d bytes, got %d", d.Curve, want, len(pub))
	}

	payload, err := hashKey(d.Hash, pub)
	if err != nil {
		return "", errs.Wrap(errs.InvalidKey, op, err)
	}
	payload = append(append([]byte(nil), d.Prefix...), payload...)

	switch d.Encoding {
	case EncodingBase58:
		if d.Checksum == ChecksumDoubleSHA256 {
			payload = append(payload, chainhash.DoubleHashB(payload)[:4]...)
		}
		return base58.Encode(payload), nil

	case EncodingSegwit:
		conv, err := bech32.ConvertBits(payload, 8, 5, true)
		if err != nil {
			return "", errs.Wrap(errs.InvalidParameter, op, err)
		}
		data := append([]byte{d.WitnessVersion}, conv...)
		if d.Checksum == ChecksumBech32m {
			return bech32.EncodeM(d.HRP, data)
		}
		return bech32.Encode(d.HRP, data)

	case EncodingBech32:
		conv, err := bech32.ConvertBits(payload, 8, 5, true)
		if err != nil {
			return "", errs.Wrap(errs.InvalidParameter, op, err)
		}
		return bech32.Encode(d.HRP, conv)

	case EncodingHex:
		if d.Checksum == ChecksumEIP55 {
			return common.BytesToAddress(payload).Hex(), nil
		}
		return "0x" + hex.EncodeToString(payload), nil
	}
	return "", errs.E(errs.UnsupportedCoin, op, "unknown encoding %q", d.Encoding)
}

// hashKey applies the hash stage.
func hashKey(h Hash, pub []byte) ([]byte, error) {
	switch h {
	case HashHash160:
		return btcutil.Hash160(pub), nil

	case HashP2SHP2WPKH:
		// redeem script: OP_0 <20-byte key hash>
		script := append([]byte{txscript.OP_0, txscript.OP_DATA_20}, btcutil.Hash160(pub)...)
		return btcutil.Hash160(script), nil

	case HashKeccak160:
		key, err := btcec.ParsePubKey(pub)
		if err != nil {
			return nil, err
		}
		k := sha3.NewLegacyKeccak256()
		k.Write(key.SerializeUncompressed()[1:])
		return k.Sum(nil)[12:], nil

	case HashBlake2b224:
		d, err := blake2b.New(28, nil)
		if err != nil {
			return nil, err
		}
		d.Write(pub)
		return d.Sum(nil), nil

	case HashTaproot:
		key, err := btcec.ParsePubKey(pub)
		if err != nil {
			return nil, err
		}
		return schnorr.SerializePubKey(txscript.ComputeTaprootKeyNoScript(key)), nil

	case HashXOnly:
		key, err := btcec.ParsePubKey(pub)
		if err != nil {
			return nil, err
		}
		return schnorr.SerializePubKey(key), nil

	case HashNone:
		return append([]byte(nil), pub...), nil
	}
	return nil, errs.E(errs.UnsupportedCoin, "coin.hashKey", "unknown hash %q", h)
}

// WIF encodes a secp256k1 private key in wallet import format for coins
// that define a WIF version byte. The compressed-key flag is always set.
func WIF(d *Descriptor, priv []byte) (string, error) {
	const op = "coin.WIF"
	if len(d.WIF) != 1 {
		return "", errs.E(errs.UnsupportedCoin, op, "%s has no WIF encoding", d.ID)
	}
	if err := curve.MustFor(curve.Secp256k1).IsValidScalar(priv); err != nil {
		return "", err
	}

	key, _ := btcec.PrivKeyFromBytes(priv)
	defer key.Zero()
	wif, err := btcutil.NewWIF(key, &chaincfg.Params{PrivateKeyID: d.WIF[0]}, true)
	if err != nil {
		return "", errs.Wrap(errs.InvalidKey, op, err)
	}
	return wif.String(), nil
}
