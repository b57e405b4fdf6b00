// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package mnemonic

import (
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"
)

// SeedSize is the length of a BIP39 seed in bytes.
const SeedSize = 64

// ToSeed stretches a phrase and optional passphrase into a 64-byte seed with
// PBKDF2-HMAC-SHA512, 2048 rounds and the salt "mnemonic"+passphrase. Both
// inputs are NFKD-normalised first. The phrase is not validated; call
// ValidateMnemonic beforehand when checksum errors matter.
func ToSeed(phrase, passphrase string) []byte {
	return bip39.NewSeed(norm.NFKD.String(phrase), norm.NFKD.String(passphrase))
}

// ToSeedChecked validates phrase against the wordlist and then derives the
// seed.
func (w *Wordlist) ToSeedChecked(phrase, passphrase string) ([]byte, error) {
	if err := w.Validate(phrase); err != nil {
		return nil, err
	}
	return ToSeed(phrase, passphrase), nil
}
