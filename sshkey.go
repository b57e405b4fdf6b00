// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package walletcore

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	polyseed "github.com/complex-gh/polyseed_go"
	"github.com/complex-gh/walletcore/errs"
	"github.com/complex-gh/walletcore/mnemonic"
	"github.com/complex-gh/walletcore/secret"
)

// polyseedWords is the length of a Polyseed phrase.
const polyseedWords = 16

// entropySizes maps BIP39 word counts to entropy bytes.
var entropySizes = map[int]int{
	12: 16, // 128 bits
	15: 20, // 160 bits
	18: 24, // 192 bits
	21: 28, // 224 bits
	24: 32, // 256 bits
}

// combineSeedPassphrase XORs the key seed with SHA-256 of the passphrase.
func combineSeedPassphrase(keySeed []byte, seedPassphrase string) []byte {
	passphraseHash := sha256.Sum256([]byte(seedPassphrase))
	defer secret.Wipe(passphraseHash[:])

	combined := make([]byte, len(keySeed))
	for i := range keySeed {
		combined[i] = keySeed[i] ^ passphraseHash[i]
	}
	return combined
}

// MnemonicFromKey deterministically turns an ed25519 private key, such as an
// SSH key, into a mnemonic of wordCount words. The same key and passphrase
// always yield the same phrase. The key cannot be recovered from the phrase.
//
// A non-empty seedPassphrase is folded into the key seed first. For 24 words
// the seed is used as entropy directly. Other lengths hash the seed behind a
// two-byte word count prefix so that each length yields unrelated words.
//
// Valid word counts are 12, 15, 18, 21 and 24 (BIP39) and 16 (Polyseed).
func MnemonicFromKey(key *ed25519.PrivateKey, wordCount int, seedPassphrase string) (string, error) {
	const op = "walletcore.MnemonicFromKey"

	if key == nil || len(*key) != ed25519.PrivateKeySize {
		return "", errs.E(errs.InvalidKey, op, "not an ed25519 private key")
	}
	if _, ok := entropySizes[wordCount]; !ok && wordCount != polyseedWords {
		return "", errs.E(errs.InvalidParameter, op,
			"invalid word count: %d (must be 12, 15, 16, 18, 21, or 24)", wordCount)
	}

	keySeed := key.Seed()
	defer secret.Wipe(keySeed)

	var combined []byte
	if seedPassphrase != "" {
		combined = combineSeedPassphrase(keySeed, seedPassphrase)
	} else {
		combined = append([]byte(nil), keySeed...)
	}
	defer secret.Wipe(combined)

	if wordCount == 24 {
		words, err := mnemonic.FromEntropy(combined)
		if err != nil {
			return "", fmt.Errorf("could not create a mnemonic set of words: %w", err)
		}
		return words, nil
	}

	prefixed := make([]byte, 2+len(combined))
	defer secret.Wipe(prefixed)
	binary.BigEndian.PutUint16(prefixed, uint16(wordCount))
	copy(prefixed[2:], combined)

	hash := sha256.Sum256(prefixed)
	defer secret.Wipe(hash[:])

	if wordCount == polyseedWords {
		return polyseedPhrase(hash[:19])
	}

	words, err := mnemonic.FromEntropy(hash[:entropySizes[wordCount]])
	if err != nil {
		return "", fmt.Errorf("could not create a mnemonic set of words: %w", err)
	}
	return words, nil
}

// polyseedPhrase encodes 150 bits of entropy as an English Polyseed phrase.
func polyseedPhrase(entropy []byte) (string, error) {
	seed, err := polyseed.CreateFromBytes(entropy, 0)
	if err != nil {
		return "", fmt.Errorf("could not create polyseed: %w", err)
	}
	defer seed.Free()

	lang := polyseed.GetLang(0)
	if lang == nil {
		return "", fmt.Errorf("could not get polyseed language")
	}
	return seed.Encode(lang, polyseed.CoinMonero), nil
}
