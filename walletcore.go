// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package walletcore is the entry point of the wallet core. It derives keys
// for several coins from a BIP39 mnemonic or a raw seed, encodes their
// addresses and signs transaction digests.
//
// The API deals in strings and byte slices only so that thin platform
// bindings can wrap it directly. Seeds, private keys and Key handles belong
// to the caller: wipe seeds when done and Close every Key.
package walletcore

import (
	"fmt"

	"github.com/complex-gh/walletcore/coin"
	"github.com/complex-gh/walletcore/hdkey"
	"github.com/complex-gh/walletcore/hdpath"
	"github.com/complex-gh/walletcore/mnemonic"
	"github.com/complex-gh/walletcore/secret"
	"github.com/complex-gh/walletcore/signing"
)

// GenerateMnemonic returns a new English mnemonic of entropyBits bits of
// randomness: 128, 160, 192, 224 or 256.
func GenerateMnemonic(entropyBits int) (string, error) {
	return mnemonic.GenerateMnemonic(entropyBits)
}

// ValidateMnemonic reports whether phrase is a valid English mnemonic.
func ValidateMnemonic(phrase string) bool {
	return mnemonic.IsValid(phrase)
}

// SeedFromMnemonic validates phrase and stretches it with passphrase into a
// 64-byte seed.
func SeedFromMnemonic(phrase, passphrase string) ([]byte, error) {
	seed, err := mnemonic.English.ToSeedChecked(phrase, passphrase)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	return seed, nil
}

// Key is a derived private key bound to a coin. It is not safe for
// concurrent use with Close.
type Key struct {
	desc *coin.Descriptor
	path hdpath.Path
	key  *hdkey.ExtendedKey
}

// DeriveKey derives the key of coin id at path below the master key of
// seed. An empty path selects the coin's default path.
func DeriveKey(seed []byte, path string, id coin.ID) (*Key, error) {
	desc, err := coin.Lookup(id)
	if err != nil {
		return nil, err
	}

	p := desc.Path()
	if path != "" {
		if p, err = hdpath.Parse(path); err != nil {
			return nil, err
		}
	}

	master, err := hdkey.NewMaster(seed, desc.Curve)
	if err != nil {
		return nil, fmt.Errorf("could not create master key: %w", err)
	}
	key, err := hdpath.Resolve(p, master)
	if key != master {
		master.Zero()
	}
	if err != nil {
		return nil, fmt.Errorf("could not derive %s: %w", p, err)
	}
	return &Key{desc: desc, path: p, key: key}, nil
}

// Coin returns the coin the key was derived for.
func (k *Key) Coin() coin.ID { return k.desc.ID }

// Path returns the derivation path of the key.
func (k *Key) Path() string { return k.path.String() }

// PublicKey returns the public key in the coin's curve encoding, or nil
// once the key is closed.
func (k *Key) PublicKey() []byte {
	pub, err := k.key.PublicKey()
	if err != nil {
		return nil
	}
	return pub
}

// Address encodes the public key as an address of the key's coin.
func (k *Key) Address() (string, error) {
	pub, err := k.key.PublicKey()
	if err != nil {
		return "", err
	}
	return coin.AddressFromPublicKey(k.desc, pub)
}

// Sign signs a digest with the coin's signature scheme.
func (k *Key) Sign(digest []byte) ([]byte, error) {
	return signing.Sign(k.desc, k.key, digest)
}

// WIF returns the private key in wallet import format, for coins that have
// one.
func (k *Key) WIF() (string, error) {
	priv, err := k.key.PrivateKey()
	if err != nil {
		return "", err
	}
	var wif string
	err = secret.Use(priv, func(priv []byte) (err error) {
		wif, err = coin.WIF(k.desc, priv)
		return err
	})
	return wif, err
}

// PrivateKey returns a copy of the raw private key. The caller must wipe it.
func (k *Key) PrivateKey() ([]byte, error) {
	return k.key.PrivateKey()
}

// Close wipes the key. The handle is unusable afterwards.
func (k *Key) Close() {
	k.key.Zero()
}

// Verify reports whether signature is a valid signature of digest by pubkey
// under the scheme of coin id. Unknown coins never verify.
func Verify(id coin.ID, pubkey, digest, signature []byte) bool {
	desc, err := coin.Lookup(id)
	if err != nil {
		return false
	}
	return signing.Verify(desc, pubkey, digest, signature)
}
