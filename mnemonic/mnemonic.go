// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package mnemonic converts entropy to BIP39 mnemonic phrases and back, and
// stretches phrases into 64-byte seeds.
//
// Entropy of 128, 160, 192, 224 or 256 bits is extended with a checksum made
// of the first ENT/32 bits of its SHA-256 digest. The result is cut into
// 11-bit groups, each naming a word of a 2048-word list:
//
//	entropy bits | checksum bits | words
//	         128 |             4 |    12
//	         160 |             5 |    15
//	         192 |             6 |    18
//	         224 |             7 |    21
//	         256 |             8 |    24
//
// The package level functions use the English wordlist, which is encoded
// and decoded by go-bip39. The other languages share a local encoder since
// go-bip39 selects its list process-wide.
package mnemonic

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/complex-gh/walletcore/errs"
	"github.com/complex-gh/walletcore/secret"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"
)

const bitsPerWord = 11

// validEntropyBits reports whether bits is a BIP39 entropy size.
func validEntropyBits(bits int) bool {
	return bits >= 128 && bits <= 256 && bits%32 == 0
}

// validWordCount reports whether n is a BIP39 phrase length.
func validWordCount(n int) bool {
	return n >= 12 && n <= 24 && n%3 == 0
}

// GenerateMnemonic creates a phrase from fresh entropy of the given size
// using the English wordlist.
func GenerateMnemonic(entropyBits int) (string, error) {
	return English.Generate(entropyBits)
}

// FromEntropy encodes entropy as an English phrase.
func FromEntropy(entropy []byte) (string, error) {
	return English.FromEntropy(entropy)
}

// MnemonicToEntropy decodes an English phrase back to its entropy.
func MnemonicToEntropy(phrase string) ([]byte, error) {
	return English.ToEntropy(phrase)
}

// ValidateMnemonic checks an English phrase. It returns nil for a valid
// phrase and an error of kind InvalidParameter, UnknownWord or
// ChecksumMismatch otherwise.
func ValidateMnemonic(phrase string) error {
	return English.Validate(phrase)
}

// IsValid reports whether phrase is a valid English mnemonic.
func IsValid(phrase string) bool {
	return English.Validate(phrase) == nil
}

// Generate creates a phrase from entropyBits bits read from a
// cryptographically secure source.
func (w *Wordlist) Generate(entropyBits int) (string, error) {
	if !validEntropyBits(entropyBits) {
		return "", errs.E(errs.InvalidParameter, "mnemonic.Generate",
			"entropy must be 128-256 bits in steps of 32, got %d", entropyBits)
	}
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", errs.Wrap(errs.InvalidParameter, "mnemonic.Generate", err)
	}
	defer secret.Wipe(entropy)

	return w.FromEntropy(entropy)
}

// FromEntropy encodes entropy with its checksum as a phrase.
func (w *Wordlist) FromEntropy(entropy []byte) (string, error) {
	const op = "mnemonic.FromEntropy"

	bits := len(entropy) * 8
	if !validEntropyBits(bits) {
		return "", errs.E(errs.InvalidParameter, op,
			"entropy must be 16-32 bytes in steps of 4, got %d", len(entropy))
	}

	if w == English {
		phrase, err := bip39.NewMnemonic(entropy)
		if err != nil {
			return "", errs.Wrap(errs.InvalidParameter, op, err)
		}
		return phrase, nil
	}
	return w.pack(entropy), nil
}

// ToEntropy decodes a phrase and verifies its checksum.
func (w *Wordlist) ToEntropy(phrase string) ([]byte, error) {
	const op = "mnemonic.ToEntropy"

	words := strings.Fields(norm.NFKD.String(phrase))
	if !validWordCount(len(words)) {
		return nil, errs.E(errs.InvalidParameter, op,
			"phrase must have 12, 15, 18, 21 or 24 words, got %d", len(words))
	}

	if w != English {
		return w.unpack(op, words)
	}

	for i, word := range words {
		if _, ok := bip39.GetWordIndex(word); !ok {
			return nil, errs.E(errs.UnknownWord, op, "word %d is not in the %s wordlist", i+1, w.name)
		}
	}
	entropy, err := bip39.EntropyFromMnemonic(strings.Join(words, " "))
	switch {
	case errors.Is(err, bip39.ErrChecksumIncorrect):
		return nil, errs.E(errs.ChecksumMismatch, op, "checksum bits do not match the entropy")
	case err != nil:
		return nil, errs.Wrap(errs.InvalidParameter, op, err)
	}
	return entropy, nil
}

// pack encodes entropy and checksum with this wordlist. go-bip39 only
// encodes with its process-wide list, which stays English.
func (w *Wordlist) pack(entropy []byte) string {
	bits := len(entropy) * 8

	// entropy followed by the checksum byte; only its top bits/32 bits are read
	buf := make([]byte, len(entropy)+1)
	defer secret.Wipe(buf)
	copy(buf, entropy)
	sum := sha256.Sum256(entropy)
	buf[len(entropy)] = sum[0]
	secret.Wipe(sum[:])

	count := (bits + bits/32) / bitsPerWord
	words := make([]string, count)
	for i := range words {
		words[i] = w.words[readBits(buf, i*bitsPerWord)]
	}
	return strings.Join(words, w.sep)
}

// unpack is the inverse of pack for NFKD-normalised words.
func (w *Wordlist) unpack(op string, words []string) ([]byte, error) {
	total := len(words) * bitsPerWord
	csBits := total / 33
	entBits := total - csBits

	buf := make([]byte, entBits/8+1)
	defer secret.Wipe(buf)
	for i, word := range words {
		idx, ok := w.Index(word)
		if !ok {
			return nil, errs.E(errs.UnknownWord, op, "word %d is not in the %s wordlist", i+1, w.name)
		}
		writeBits(buf, i*bitsPerWord, idx)
	}

	entropy := make([]byte, entBits/8)
	copy(entropy, buf)
	sum := sha256.Sum256(entropy)
	defer secret.Wipe(sum[:])

	mask := byte(0xff) << (8 - csBits)
	if subtle.ConstantTimeByteEq(sum[0]&mask, buf[len(entropy)]&mask) != 1 {
		secret.Wipe(entropy)
		return nil, errs.E(errs.ChecksumMismatch, op, "checksum bits do not match the entropy")
	}
	return entropy, nil
}

// Validate checks word count, words and checksum of a phrase.
func (w *Wordlist) Validate(phrase string) error {
	entropy, err := w.ToEntropy(phrase)
	secret.Wipe(entropy)
	return err
}

// readBits returns the 11-bit big-endian group starting at bit offset off.
func readBits(b []byte, off int) int {
	v := 0
	for j := 0; j < bitsPerWord; j++ {
		bit := off + j
		v = v<<1 | int(b[bit/8]>>(7-bit%8)&1)
	}
	return v
}

// writeBits stores the 11-bit value v at bit offset off.
func writeBits(b []byte, off, v int) {
	for j := 0; j < bitsPerWord; j++ {
		bit := off + j
		if v>>(bitsPerWord-1-j)&1 == 1 {
			b[bit/8] |= 1 << (7 - bit%8)
		}
	}
}
