// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package walletcore

import (
	"fmt"

	"github.com/complex-gh/walletcore/coin"
	"github.com/complex-gh/walletcore/curve"
	"github.com/complex-gh/walletcore/errs"
	"github.com/complex-gh/walletcore/hdkey"
	"github.com/complex-gh/walletcore/hdpath"
)

// AccountExtendedKeys returns the serialised private and public extended
// keys of account at m/purpose'/coin'/account', using the purpose, coin
// type and version bytes of coin id. Only coins with BIP32 versions
// qualify.
func AccountExtendedKeys(seed []byte, id coin.ID, account uint32) (xprv, xpub string, err error) {
	const op = "walletcore.AccountExtendedKeys"

	desc, err := coin.Lookup(id)
	if err != nil {
		return "", "", err
	}
	if !desc.HasExtendedKeys() || desc.Curve != curve.Secp256k1 {
		return "", "", errs.E(errs.UnsupportedCoin, op, "%s has no extended key serialisation", id)
	}

	master, err := hdkey.NewMaster(seed, desc.Curve)
	if err != nil {
		return "", "", fmt.Errorf("could not create master key: %w", err)
	}
	defer master.Zero()

	key, err := hdpath.Resolve(desc.AccountPath(account), master)
	if err != nil {
		return "", "", fmt.Errorf("could not derive account %d: %w", account, err)
	}
	defer key.Zero()

	if xprv, err = key.Serialize(uint32(desc.PrivateVersion)); err != nil {
		return "", "", err
	}
	pub, err := key.Neuter()
	if err != nil {
		return "", "", err
	}
	if xpub, err = pub.Serialize(uint32(desc.PublicVersion)); err != nil {
		return "", "", err
	}
	return xprv, xpub, nil
}

// fromExtended parses a serialised extended key and derives path below it.
// The path is either the full path of the wanted key, such as
// "m/44'/0'/0'/0/5" below an account key, or relative to the extended key,
// such as "m/0/5". See hdpath.Below for the rule that tells them apart.
func fromExtended(extended, path string) (*hdkey.ExtendedKey, error) {
	root, _, err := hdkey.Parse(extended)
	if err != nil {
		return nil, fmt.Errorf("could not parse extended key: %w", err)
	}
	p, err := hdpath.Parse(path)
	if err == nil {
		p, err = hdpath.Below(p, root)
	}
	if err != nil {
		root.Zero()
		return nil, err
	}

	key, err := hdpath.Resolve(p, root)
	if key != root {
		root.Zero()
	}
	if err != nil {
		return nil, fmt.Errorf("could not derive %s: %w", p, err)
	}
	return key, nil
}

// PublicKeyFromExtended derives the compressed public key at path below a
// serialised extended key, private or public.
func PublicKeyFromExtended(extended, path string) ([]byte, error) {
	key, err := fromExtended(extended, path)
	if err != nil {
		return nil, err
	}
	defer key.Zero()
	return key.PublicKey()
}

// PrivateKeyFromExtended derives the private key at path below a serialised
// private extended key. The caller must wipe the result.
func PrivateKeyFromExtended(extended, path string) ([]byte, error) {
	key, err := fromExtended(extended, path)
	if err != nil {
		return nil, err
	}
	defer key.Zero()
	return key.PrivateKey()
}

// AddressFromExtended derives the address of coin id at path below a
// serialised extended key. This is how a watch-only wallet enumerates
// receive addresses from an account xpub; path may be the full path of the
// address or relative to the extended key.
func AddressFromExtended(id coin.ID, extended, path string) (string, error) {
	desc, err := coin.Lookup(id)
	if err != nil {
		return "", err
	}
	if desc.Curve != curve.Secp256k1 {
		return "", errs.E(errs.InvalidKey, "walletcore.AddressFromExtended", "%s does not use secp256k1 extended keys", id)
	}
	pub, err := PublicKeyFromExtended(extended, path)
	if err != nil {
		return "", err
	}
	return coin.AddressFromPublicKey(desc, pub)
}
