// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package walletcore

import (
	"encoding/hex"
	"fmt"

	"github.com/complex-gh/walletcore/secret"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// NostrCoin is the registry identifier of NIP-06 Nostr keys.
const NostrCoin = "nostr"

// DeriveNostrKeys derives the NIP-06 key pair at m/44'/1237'/0'/0/0 from an
// English BIP39 mnemonic and returns it bech32 encoded as npub and nsec.
func DeriveNostrKeys(phrase, passphrase string) (npub, nsec string, err error) {
	seed, err := SeedFromMnemonic(phrase, passphrase)
	if err != nil {
		return "", "", err
	}
	defer secret.Wipe(seed)
	return DeriveNostrKeysFromSeed(seed)
}

// DeriveNostrKeysFromSeed is DeriveNostrKeys for a seed produced by any
// wordlist.
func DeriveNostrKeysFromSeed(seed []byte) (npub, nsec string, err error) {
	key, err := DeriveKey(seed, "", NostrCoin)
	if err != nil {
		return "", "", err
	}
	defer key.Close()

	if npub, err = key.Address(); err != nil {
		return "", "", fmt.Errorf("failed to encode public key: %w", err)
	}

	priv, err := key.PrivateKey()
	if err != nil {
		return "", "", err
	}
	err = secret.Use(priv, func(priv []byte) (err error) {
		nsec, err = nip19.EncodePrivateKey(hex.EncodeToString(priv))
		return err
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to encode private key: %w", err)
	}
	return npub, nsec, nil
}
