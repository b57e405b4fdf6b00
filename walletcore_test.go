// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package walletcore

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/complex-gh/walletcore/coin"
	"github.com/complex-gh/walletcore/errs"
	"github.com/complex-gh/walletcore/mnemonic"
	"github.com/matryer/is"
)

const abandonMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func abandonSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(abandonMnemonic, "")
	if err != nil {
		t.Fatal(err)
	}
	return seed
}

// TestGenerateMnemonic_Valid tests generated phrases validate
func TestGenerateMnemonic_Valid(t *testing.T) {
	is := is.New(t)

	phrase, err := GenerateMnemonic(256)
	is.NoErr(err)
	is.Equal(len(strings.Fields(phrase)), 24)
	is.True(ValidateMnemonic(phrase))

	_, err = GenerateMnemonic(100)
	is.True(errors.Is(err, errs.InvalidParameter))
}

// TestSeedFromMnemonic_Invalid tests that invalid mnemonics return errors
func TestSeedFromMnemonic_Invalid(t *testing.T) {
	is := is.New(t)

	for _, phrase := range []string{
		"invalid mnemonic phrase",
		"abandon abandon abandon",
		"",
		"zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo",
	} {
		_, err := SeedFromMnemonic(phrase, "")
		is.True(err != nil)
		is.True(!ValidateMnemonic(phrase))
	}
}

// TestDeriveKey_DefaultPath checks an empty path selects the coin default
func TestDeriveKey_DefaultPath(t *testing.T) {
	is := is.New(t)
	seed := abandonSeed(t)

	key, err := DeriveKey(seed, "", "bitcoin")
	is.NoErr(err)
	defer key.Close()
	is.Equal(key.Path(), "m/44'/0'/0'/0/0")
	is.Equal(key.Coin(), coin.ID("bitcoin"))

	explicit, err := DeriveKey(seed, "m/44'/0'/0'/0/0", "bitcoin")
	is.NoErr(err)
	defer explicit.Close()
	is.Equal(key.PublicKey(), explicit.PublicKey())
}

// TestDeriveKey_Errors checks coin, path and seed failures
func TestDeriveKey_Errors(t *testing.T) {
	is := is.New(t)
	seed := abandonSeed(t)

	_, err := DeriveKey(seed, "", "monero")
	is.True(errors.Is(err, errs.UnsupportedCoin))

	_, err = DeriveKey(seed, "m/44'/x", "bitcoin")
	is.True(errors.Is(err, errs.MalformedPath))

	_, err = DeriveKey(seed[:8], "", "bitcoin")
	is.True(errors.Is(err, errs.InvalidParameter))

	// solana only derives hardened steps
	_, err = DeriveKey(seed, "m/44'/501'/0'/0", "solana")
	is.True(errors.Is(err, errs.InvalidParameter))
}

// TestKey_SignVerify signs through the handle and verifies by coin id
func TestKey_SignVerify(t *testing.T) {
	is := is.New(t)
	seed := abandonSeed(t)
	digest := sha256.Sum256([]byte("walletcore"))

	for _, d := range coin.All() {
		key, err := DeriveKey(seed, "", d.ID)
		is.NoErr(err)

		sig, err := key.Sign(digest[:])
		is.NoErr(err)
		is.True(Verify(d.ID, key.PublicKey(), digest[:], sig))
		key.Close()
	}

	is.True(!Verify("monero", nil, digest[:], nil))
}

// TestKey_Close checks a closed handle no longer yields key material and
// fails with InvalidKey instead of panicking, for every coin
func TestKey_Close(t *testing.T) {
	seed := abandonSeed(t)

	for _, d := range coin.All() {
		t.Run(string(d.ID), func(t *testing.T) {
			is := is.New(t)

			key, err := DeriveKey(seed, "", d.ID)
			is.NoErr(err)
			key.Close()

			is.Equal(key.PublicKey(), nil)
			_, err = key.Address()
			is.True(errors.Is(err, errs.InvalidKey))
			_, err = key.Sign(make([]byte, d.DigestSize))
			is.True(errors.Is(err, errs.InvalidKey))
			_, err = key.PrivateKey()
			is.True(errors.Is(err, errs.InvalidKey))
		})
	}
}

// TestKey_WIF checks WIF is offered only where the coin defines it
func TestKey_WIF(t *testing.T) {
	is := is.New(t)
	seed := abandonSeed(t)

	btc, err := DeriveKey(seed, "", "bitcoin")
	is.NoErr(err)
	defer btc.Close()
	wif, err := btc.WIF()
	is.NoErr(err)
	is.True(strings.HasPrefix(wif, "K") || strings.HasPrefix(wif, "L"))

	eth, err := DeriveKey(seed, "", "ethereum")
	is.NoErr(err)
	defer eth.Close()
	_, err = eth.WIF()
	is.True(errors.Is(err, errs.UnsupportedCoin))
}

// TestExtendedKeys_WatchOnly derives receive addresses from an account xpub
// and checks they match the private derivation
func TestExtendedKeys_WatchOnly(t *testing.T) {
	is := is.New(t)
	seed := abandonSeed(t)

	for _, id := range []coin.ID{"bitcoin", "bitcoin-native-segwit", "ethereum", "tron"} {
		xprv, xpub, err := AccountExtendedKeys(seed, id, 0)
		is.NoErr(err)

		d, err := coin.Lookup(id)
		is.NoErr(err)

		for i := 0; i < 3; i++ {
			rel := "m/0/" + strconv.Itoa(i)
			watch, err := AddressFromExtended(id, xpub, rel)
			is.NoErr(err)

			key, err := DeriveKey(seed, d.AccountPath(0).String()+"/0/"+strconv.Itoa(i), id)
			is.NoErr(err)
			want, err := key.Address()
			is.NoErr(err)
			is.Equal(watch, want)

			priv, err := PrivateKeyFromExtended(xprv, rel)
			is.NoErr(err)
			direct, err := key.PrivateKey()
			is.NoErr(err)
			is.Equal(priv, direct)
			key.Close()
		}
	}
}

// TestExtendedKeys_FullPath derives below account keys with the full
// address path, the form the JNI surface passes
func TestExtendedKeys_FullPath(t *testing.T) {
	is := is.New(t)
	seed := abandonSeed(t)

	xprv, xpub, err := AccountExtendedKeys(seed, "tron", 0)
	is.NoErr(err)

	for _, path := range []string{"m/44'/195'/0'/0/0", "m/44'/195'/0'/1/4"} {
		key, err := DeriveKey(seed, path, "tron")
		is.NoErr(err)
		wantPriv, err := key.PrivateKey()
		is.NoErr(err)
		wantAddr, err := key.Address()
		is.NoErr(err)
		key.Close()

		priv, err := PrivateKeyFromExtended(xprv, path)
		is.NoErr(err)
		is.Equal(priv, wantPriv)

		pub, err := PublicKeyFromExtended(xpub, path)
		is.NoErr(err)
		is.Equal(pub, tronPublicKey(t, seed, path))

		addr, err := AddressFromExtended("tron", xpub, path)
		is.NoErr(err)
		is.Equal(addr, wantAddr)
	}

	// a path through another account is refused, not derived elsewhere
	_, err = PrivateKeyFromExtended(xprv, "m/44'/195'/1'/0/0")
	is.True(errors.Is(err, errs.InvalidParameter))
	_, err = PublicKeyFromExtended(xpub, "m/44'/195'/1'/0/0")
	is.True(errors.Is(err, errs.InvalidParameter))
}

func tronPublicKey(t *testing.T, seed []byte, path string) []byte {
	t.Helper()
	key, err := DeriveKey(seed, path, "tron")
	if err != nil {
		t.Fatal(err)
	}
	defer key.Close()
	return key.PublicKey()
}

// TestExtendedKeys_Errors checks unsupported coins and public-only input
func TestExtendedKeys_Errors(t *testing.T) {
	is := is.New(t)
	seed := abandonSeed(t)

	_, _, err := AccountExtendedKeys(seed, "solana", 0)
	is.True(errors.Is(err, errs.UnsupportedCoin))

	_, xpub, err := AccountExtendedKeys(seed, "bitcoin", 0)
	is.NoErr(err)

	_, err = PrivateKeyFromExtended(xpub, "m/0/0")
	is.True(errors.Is(err, errs.InvalidKey))
	_, err = PublicKeyFromExtended(xpub, "m/0'/0")
	is.True(errors.Is(err, errs.HardenedFromPublicKey))
	_, err = AddressFromExtended("cardano", xpub, "m/0/0")
	is.True(errors.Is(err, errs.InvalidKey))
	_, err = PublicKeyFromExtended("not-a-key", "m/0")
	is.True(err != nil)
}

// TestMnemonicFromKey_AllFormats tests all word count formats
func TestMnemonicFromKey_AllFormats(t *testing.T) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	for _, count := range []int{12, 15, 16, 18, 21, 24} {
		t.Run(strconv.Itoa(count), func(t *testing.T) {
			is := is.New(t)
			phrase, err := MnemonicFromKey(&key, count, "")
			is.NoErr(err)
			is.Equal(len(strings.Fields(phrase)), count)
			if count != 16 {
				is.True(ValidateMnemonic(phrase))
			}
		})
	}
}

// TestMnemonicFromKey_InvalidWordCount tests invalid word counts
func TestMnemonicFromKey_InvalidWordCount(t *testing.T) {
	is := is.New(t)

	_, key, err := ed25519.GenerateKey(rand.Reader)
	is.NoErr(err)

	for _, count := range []int{10, 11, 13, 14, 17, 19, 20, 22, 23, 25, 30} {
		_, err := MnemonicFromKey(&key, count, "")
		is.True(errors.Is(err, errs.InvalidParameter))
	}

	_, err = MnemonicFromKey(nil, 12, "")
	is.True(errors.Is(err, errs.InvalidKey))
}

// TestMnemonicFromKey_Deterministic verifies that the same key and
// passphrase always produce the same mnemonic, and that changing either
// changes it
func TestMnemonicFromKey_Deterministic(t *testing.T) {
	is := is.New(t)

	_, key1, err := ed25519.GenerateKey(rand.Reader)
	is.NoErr(err)
	_, key2, err := ed25519.GenerateKey(rand.Reader)
	is.NoErr(err)

	for _, count := range []int{12, 16, 24} {
		a, err := MnemonicFromKey(&key1, count, "test-passphrase")
		is.NoErr(err)
		b, err := MnemonicFromKey(&key1, count, "test-passphrase")
		is.NoErr(err)
		is.Equal(a, b)

		c, err := MnemonicFromKey(&key2, count, "test-passphrase")
		is.NoErr(err)
		is.True(a != c)

		d, err := MnemonicFromKey(&key1, count, "other-passphrase")
		is.NoErr(err)
		is.True(a != d)
	}

	// 24 words encode the key seed itself
	phrase, err := MnemonicFromKey(&key1, 24, "")
	is.NoErr(err)
	want, err := mnemonic.FromEntropy(key1.Seed())
	is.NoErr(err)
	is.Equal(phrase, want)
}

// TestDeriveNostrKeys_Format tests the npub/nsec encodings and passphrase
// sensitivity
func TestDeriveNostrKeys_Format(t *testing.T) {
	is := is.New(t)

	npub, nsec, err := DeriveNostrKeys(abandonMnemonic, "")
	is.NoErr(err)
	is.True(strings.HasPrefix(npub, "npub1"))
	is.True(strings.HasPrefix(nsec, "nsec1"))

	npub2, nsec2, err := DeriveNostrKeys(abandonMnemonic, "test-passphrase")
	is.NoErr(err)
	is.True(npub != npub2)
	is.True(nsec != nsec2)

	_, _, err = DeriveNostrKeys("abandon abandon abandon", "")
	is.True(err != nil)
}

// TestFromSeed_Wordlists checks the seed-based Nostr and PayNym variants
// agree with the phrase versions and accept seeds of any wordlist
func TestFromSeed_Wordlists(t *testing.T) {
	is := is.New(t)

	npub, nsec, err := DeriveNostrKeys(abandonMnemonic, "")
	is.NoErr(err)
	seedNpub, seedNsec, err := DeriveNostrKeysFromSeed(abandonSeed(t))
	is.NoErr(err)
	is.Equal(seedNpub, npub)
	is.Equal(seedNsec, nsec)

	payNym, err := DerivePayNym(abandonMnemonic, "")
	is.NoErr(err)
	seedPayNym, err := DerivePayNymFromSeed(abandonSeed(t))
	is.NoErr(err)
	is.Equal(*seedPayNym, *payNym)

	entropy := make([]byte, 16)
	spanish, err := mnemonic.Spanish.FromEntropy(entropy)
	is.NoErr(err)
	_, _, err = DeriveNostrKeys(spanish, "")
	is.True(err != nil) // phrase helpers are English only

	seed, err := mnemonic.Spanish.ToSeedChecked(spanish, "")
	is.NoErr(err)
	esNpub, _, err := DeriveNostrKeysFromSeed(seed)
	is.NoErr(err)
	is.True(esNpub != npub)
	esPayNym, err := DerivePayNymFromSeed(seed)
	is.NoErr(err)
	is.True(esPayNym.PaymentCode != payNym.PaymentCode)
}
