// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package hdkey

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/complex-gh/walletcore/curve"
	"github.com/complex-gh/walletcore/errs"
	"github.com/matryer/is"
	"github.com/tyler-smith/go-bip32"
	"pgregory.net/rapid"
)

const vector1Seed = "000102030405060708090a0b0c0d0e0f"

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// TestBIP32_Vector1 checks the first published BIP32 vector chain
func TestBIP32_Vector1(t *testing.T) {
	is := is.New(t)

	vectors := []struct {
		path []uint32
		xprv string
		xpub string
	}{
		{
			nil,
			"xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6cq3jPPqjiChkVvvNKmPGJxWUtg6LnF5kejMRNNU3TGtRBeJgk33yuGBxrMPHi",
			"xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8NqtwybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMcet8",
		},
		{
			[]uint32{HardenedKeyStart},
			"xprv9uHRZZhk6KAJC1avXpDAp4MDc3sQKNxDiPvvkX8Br5ngLNv1TxvUxt4cV1rGL5hj6KCesnDYUhd7oWgT11eZG7XnxHrnYeSvkzY7d2bhkJ7",
			"xpub68Gmy5EdvgibQVfPdqkBBCHxA5htiqg55crXYuXoQRKfDBFA1WEjWgP6LHhwBZeNK1VTsfTFUHCdrfp1bgwQ9xv5ski8PX9rL2dZXvgGDnw",
		},
		{
			[]uint32{HardenedKeyStart, 1},
			"xprv9wTYmMFdV23N2TdNG573QoEsfRrWKQgWeibmLntzniatZvR9BmLnvSxqu53Kw1UmYPxLgboyZQaXwTCg8MSY3H2EU4pWcQDnRnrVA1xe8fs",
			"xpub6ASuArnXKPbfEwhqN6e3mwBcDTgzisQN1wXN9BJcM47sSikHjJf3UFHKkNAWbWMiGj7Wf5uMash7SyYq527Hqck2AxYysAA7xmALppuCkwQ",
		},
	}

	master, err := NewMaster(mustHex(t, vector1Seed), curve.Secp256k1)
	is.NoErr(err)

	for _, v := range vectors {
		key := master
		for _, step := range v.path {
			key, err = key.Derive(step)
			is.NoErr(err)
		}

		xprv, err := key.Serialize(VersionXPrv)
		is.NoErr(err)
		is.Equal(xprv, v.xprv)

		pub, err := key.Neuter()
		is.NoErr(err)
		xpub, err := pub.Serialize(VersionXPub)
		is.NoErr(err)
		is.Equal(xpub, v.xpub)
		is.Equal(pub.ChildIndex(), key.ChildIndex())
		is.Equal(pub.ParentFingerprint(), key.ParentFingerprint())
	}
}

// TestBIP32_PublicDerivation verifies CKDpub matches CKDpriv for normal
// children
func TestBIP32_PublicDerivation(t *testing.T) {
	is := is.New(t)

	master, err := NewMaster(mustHex(t, vector1Seed), curve.Secp256k1)
	is.NoErr(err)
	account, err := master.DeriveChild(0, true)
	is.NoErr(err)
	accountPub, err := account.Neuter()
	is.NoErr(err)

	fromPriv, err := account.DeriveChild(1, false)
	is.NoErr(err)
	fromPub, err := accountPub.DeriveChild(1, false)
	is.NoErr(err)

	want, err := fromPriv.PublicKey()
	is.NoErr(err)
	got, err := fromPub.PublicKey()
	is.NoErr(err)
	is.True(bytes.Equal(got, want))
	is.True(!fromPub.IsPrivate())

	_, err = accountPub.DeriveChild(1, true)
	is.True(errors.Is(err, errs.HardenedFromPublicKey))
	_, err = fromPub.PrivateKey()
	is.True(errors.Is(err, errs.InvalidKey))
}

// TestBIP32_MatchesHdkeychain cross-checks random seeds and paths against
// btcutil's hdkeychain
func TestBIP32_MatchesHdkeychain(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "seed")
		steps := rapid.SliceOfN(rapid.Uint32(), 1, 4).Draw(t, "path")

		ours, err := NewMaster(seed, curve.Secp256k1)
		if err != nil {
			t.Fatalf("NewMaster: %v", err)
		}
		theirs, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
		if err != nil {
			t.Fatalf("hdkeychain.NewMaster: %v", err)
		}

		for _, step := range steps {
			if ours, err = ours.Derive(step); err != nil {
				t.Fatalf("Derive(%d): %v", step, err)
			}
			if theirs, err = theirs.Derive(step); err != nil {
				t.Fatalf("hdkeychain Derive(%d): %v", step, err)
			}
		}

		got, err := ours.Serialize(VersionXPrv)
		if err != nil {
			t.Fatalf("Serialize: %v", err)
		}
		if want := theirs.String(); got != want {
			t.Fatalf("got %s, want %s", got, want)
		}
	})
}

// TestBIP32_MatchesGoBIP32 cross-checks the BIP44 account key with go-bip32
func TestBIP32_MatchesGoBIP32(t *testing.T) {
	is := is.New(t)

	seed := mustHex(t, vector1Seed)
	theirs, err := bip32.NewMasterKey(seed)
	is.NoErr(err)
	ours, err := NewMaster(seed, curve.Secp256k1)
	is.NoErr(err)

	for _, step := range []uint32{44, 0, 0} {
		theirs, err = theirs.NewChildKey(bip32.FirstHardenedChild + step)
		is.NoErr(err)
		ours, err = ours.DeriveChild(step, true)
		is.NoErr(err)
	}

	xprv, err := ours.Serialize(VersionXPrv)
	is.NoErr(err)
	is.Equal(xprv, theirs.String())
}

// TestSLIP10_Ed25519Vector1 checks the first SLIP-10 ed25519 vector
func TestSLIP10_Ed25519Vector1(t *testing.T) {
	is := is.New(t)

	master, err := NewMaster(mustHex(t, vector1Seed), curve.Ed25519)
	is.NoErr(err)

	priv, err := master.PrivateKey()
	is.NoErr(err)
	pub, err := master.PublicKey()
	is.NoErr(err)
	is.Equal(hex.EncodeToString(master.ChainCode()), "90046a93de5380a72b5e45010748567d5ea02bbf6522f979e05c0d8d8ca9fffb")
	is.Equal(hex.EncodeToString(priv), "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7")
	is.Equal(hex.EncodeToString(pub), "a4b2856bfec510abab89753fac1ac0e1112364e7d250545963f135f2a33188ed")

	child, err := master.DeriveChild(0, true)
	is.NoErr(err)
	priv, err = child.PrivateKey()
	is.NoErr(err)
	pub, err = child.PublicKey()
	is.NoErr(err)
	is.Equal(hex.EncodeToString(child.ChainCode()), "8b59aa11380b624e81507a27fedda59fea6d0b779a778918a2fd3590e16e9c69")
	is.Equal(hex.EncodeToString(priv), "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3")
	is.Equal(hex.EncodeToString(pub), "8c8a13df77a28f3445213a0f432fde644acaa215fc72dcdf300d5efaa85d350c")
	is.Equal(child.ChildIndex(), HardenedKeyStart)

	fp, err := master.Fingerprint()
	is.NoErr(err)
	is.Equal(child.ParentFingerprint(), fp)
}

// TestSLIP10_RejectsNormalDerivation verifies ed25519 refuses normal steps
func TestSLIP10_RejectsNormalDerivation(t *testing.T) {
	is := is.New(t)

	master, err := NewMaster(mustHex(t, vector1Seed), curve.Ed25519)
	is.NoErr(err)
	_, err = master.DeriveChild(0, false)
	is.True(errors.Is(err, errs.InvalidParameter))

	_, err = master.Serialize(VersionXPrv)
	is.True(errors.Is(err, errs.InvalidParameter))
}

// TestBIP32Ed25519_MasterClamping checks the SLIP-23 bit layout of kL
func TestBIP32Ed25519_MasterClamping(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.SliceOfN(rapid.Byte(), 16, 64).Draw(t, "seed")
		master, err := NewMaster(seed, curve.Ed25519BIP32)
		if err != nil {
			t.Fatalf("NewMaster: %v", err)
		}
		kl, err := master.PrivateKey()
		if err != nil {
			t.Fatal(err)
		}
		if kl[0]&0x07 != 0 || kl[31]&0x80 != 0 || kl[31]&0x40 == 0 || kl[31]&0x20 != 0 {
			t.Fatalf("kL %x is not clamped", kl)
		}
		kr, err := master.ExtensionKey()
		if err != nil || len(kr) != 32 {
			t.Fatalf("ExtensionKey: %x %v", kr, err)
		}
	})
}

// bip32EdReference derives BIP32-Ed25519 keys with big integers straight
// from the SLIP-23 and Khovratovich-Law definitions.
type bip32EdReference struct {
	kl, kr, c []byte
}

func leInt(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	return new(big.Int).SetBytes(be)
}

func leBytes(x *big.Int) []byte {
	mod := new(big.Int).Lsh(big.NewInt(1), 256)
	be := new(big.Int).Mod(x, mod).FillBytes(make([]byte, 32))
	le := make([]byte, 32)
	for i := range be {
		le[31-i] = be[i]
	}
	return le
}

func refHMAC(key []byte, data ...[]byte) []byte {
	mac := hmac.New(sha512.New, key)
	for _, d := range data {
		mac.Write(d)
	}
	return mac.Sum(nil)
}

func newBIP32EdReference(seed []byte) *bip32EdReference {
	key := []byte("ed25519 cardano seed")
	i := refHMAC(key, seed)
	k := sha512.Sum512(i[:32])
	for k[31]&0x20 != 0 {
		i = refHMAC(key, i)
		k = sha512.Sum512(i[:32])
	}
	k[0] &= 0xf8
	k[31] &= 0x7f
	k[31] |= 0x40
	return &bip32EdReference{kl: k[:32], kr: k[32:], c: i[32:]}
}

func (r *bip32EdReference) public() []byte {
	l, _ := new(big.Int).SetString("7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)
	reduced := leBytes(new(big.Int).Mod(leInt(r.kl), l))
	s, err := edwards25519.NewScalar().SetCanonicalBytes(reduced)
	if err != nil {
		panic(err)
	}
	return new(edwards25519.Point).ScalarBaseMult(s).Bytes()
}

func (r *bip32EdReference) child(index uint32) *bip32EdReference {
	idx := []byte{byte(index), byte(index >> 8), byte(index >> 16), byte(index >> 24)}
	var z, cc []byte
	if index >= HardenedKeyStart {
		z = refHMAC(r.c, []byte{0x00}, r.kl, r.kr, idx)
		cc = refHMAC(r.c, []byte{0x01}, r.kl, r.kr, idx)
	} else {
		a := r.public()
		z = refHMAC(r.c, []byte{0x02}, a, idx)
		cc = refHMAC(r.c, []byte{0x03}, a, idx)
	}
	zl := new(big.Int).Mul(leInt(z[:28]), big.NewInt(8))
	return &bip32EdReference{
		kl: leBytes(zl.Add(zl, leInt(r.kl))),
		kr: leBytes(new(big.Int).Add(leInt(z[32:]), leInt(r.kr))),
		c:  cc[32:],
	}
}

// TestBIP32Ed25519_MatchesReference walks a CIP-1852 style path and
// compares every node with the big integer reference
func TestBIP32Ed25519_MatchesReference(t *testing.T) {
	for _, seedHex := range []string{
		vector1Seed,
		"578d685d20b602683dc5171df411d3e2",
		"fffcf9f6f3f0edeae7e4e1dedbd8d5d2cfccc9c6c3c0bdbab7b4b1aeaba8a5a29f9c999693908d8a8784817e7b7875726f6c696663605d5a5754514e4b484542",
	} {
		t.Run(seedHex[:8], func(t *testing.T) {
			is := is.New(t)
			seed := mustHex(t, seedHex)

			key, err := NewMaster(seed, curve.Ed25519BIP32)
			is.NoErr(err)
			ref := newBIP32EdReference(seed)

			for _, index := range []uint32{
				1852 + HardenedKeyStart, 1815 + HardenedKeyStart, HardenedKeyStart, 0, 7,
			} {
				if key, err = key.Derive(index); err != nil {
					t.Fatal(err)
				}
				ref = ref.child(index)

				kl, err := key.PrivateKey()
				is.NoErr(err)
				kr, err := key.ExtensionKey()
				is.NoErr(err)
				pub, err := key.PublicKey()
				is.NoErr(err)

				is.Equal(hex.EncodeToString(kl), hex.EncodeToString(ref.kl))
				is.Equal(hex.EncodeToString(kr), hex.EncodeToString(ref.kr))
				is.Equal(hex.EncodeToString(key.ChainCode()), hex.EncodeToString(ref.c))
				is.Equal(hex.EncodeToString(pub), hex.EncodeToString(ref.public()))
				is.Equal(key.ChildIndex(), index)
			}
		})
	}
}

// TestNeuterEquivalence verifies deriving then neutering equals neutering
// then deriving for every curve with public derivation
func TestNeuterEquivalence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		kind := rapid.SampledFrom([]curve.Kind{curve.Secp256k1, curve.Ed25519BIP32}).Draw(t, "curve")
		seed := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "seed")
		index := rapid.Uint32Range(0, HardenedKeyStart-1).Draw(t, "index")

		master, err := NewMaster(seed, kind)
		if err != nil {
			t.Fatalf("NewMaster: %v", err)
		}
		child, err := master.DeriveChild(index, false)
		if err != nil {
			t.Fatalf("DeriveChild: %v", err)
		}
		want, err := child.Neuter()
		if err != nil {
			t.Fatal(err)
		}

		pub, err := master.Neuter()
		if err != nil {
			t.Fatal(err)
		}
		got, err := pub.DeriveChild(index, false)
		if err != nil {
			t.Fatalf("public DeriveChild: %v", err)
		}

		wantKey, _ := want.PublicKey()
		gotKey, _ := got.PublicKey()
		if !bytes.Equal(gotKey, wantKey) || !bytes.Equal(got.ChainCode(), want.ChainCode()) {
			t.Fatalf("public child %x differs from neutered private child %x", gotKey, wantKey)
		}
		if got.ChildIndex() != want.ChildIndex() || got.Depth() != 1 {
			t.Fatalf("position mismatch")
		}
	})
}

// TestDeriveChild_Bounds checks index, depth and seed validation
func TestDeriveChild_Bounds(t *testing.T) {
	is := is.New(t)

	_, err := NewMaster(make([]byte, 15), curve.Secp256k1)
	is.True(errors.Is(err, errs.InvalidParameter))
	_, err = NewMaster(make([]byte, 65), curve.Secp256k1)
	is.True(errors.Is(err, errs.InvalidParameter))

	master, err := NewMaster(mustHex(t, vector1Seed), curve.Secp256k1)
	is.NoErr(err)
	_, err = master.DeriveChild(HardenedKeyStart, false)
	is.True(errors.Is(err, errs.InvalidParameter))

	deep := *master
	deep.depth = MaxDepth
	_, err = deep.DeriveChild(0, false)
	is.True(errors.Is(err, errs.InvalidParameter))
}

// TestRetryInvalid checks skipped indices and the hardened boundary
func TestRetryInvalid(t *testing.T) {
	is := is.New(t)

	var tried []uint32
	fake := func(i uint32) (*ExtendedKey, error) {
		tried = append(tried, i)
		if len(tried) < 3 {
			return nil, invalidChild(errs.E(errs.InvalidKey, "test", "scalar out of range"))
		}
		return &ExtendedKey{childNum: i}, nil
	}
	key, err := retryInvalid(7, fake)
	is.NoErr(err)
	is.Equal(key.ChildIndex(), uint32(9))
	is.Equal(tried, []uint32{7, 8, 9})

	// no index left below the boundary
	_, err = retryInvalid(HardenedKeyStart-1, func(uint32) (*ExtendedKey, error) {
		return nil, invalidChild(errs.E(errs.InvalidKey, "test", "scalar out of range"))
	})
	is.True(errors.Is(err, errs.InvalidKey))

	// other failures are not retried, an InvalidKey about the parent included
	for _, fail := range []error{
		errs.E(errs.InvalidParameter, "test", "bad"),
		errs.E(errs.InvalidKey, "test", "parent key is wiped"),
	} {
		calls := 0
		_, err = retryInvalid(0, func(uint32) (*ExtendedKey, error) {
			calls++
			return nil, fail
		})
		is.Equal(err, fail)
		is.Equal(calls, 1)
	}
}

// TestWipedKeyFailsFast checks a zeroed key reports InvalidKey from every
// accessor and from derivation instead of walking the index range
func TestWipedKeyFailsFast(t *testing.T) {
	for _, kind := range []curve.Kind{curve.Secp256k1, curve.Ed25519, curve.Ed25519BIP32} {
		t.Run(kind.String(), func(t *testing.T) {
			is := is.New(t)

			master, err := NewMaster(mustHex(t, vector1Seed), kind)
			is.NoErr(err)
			pub, err := master.Neuter()
			is.NoErr(err)
			if pub == master {
				t.Fatal("neuter returned the private key")
			}

			for _, key := range []*ExtendedKey{master, pub} {
				key.Zero()

				_, err = key.PublicKey()
				is.True(errors.Is(err, errs.InvalidKey))
				_, err = key.PrivateKey()
				is.True(errors.Is(err, errs.InvalidKey))
				_, err = key.ExtensionKey()
				is.True(errors.Is(err, errs.InvalidKey))
				_, err = key.DeriveChild(0, true)
				is.True(err != nil)
				if kind != curve.Ed25519 {
					_, err = key.DeriveChild(0, false)
					is.True(errors.Is(err, errs.InvalidKey))
				}
			}
		})
	}
}

// TestParse checks round trips and corrupt input
func TestParse(t *testing.T) {
	is := is.New(t)

	const xprv = "xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6cq3jPPqjiChkVvvNKmPGJxWUtg6LnF5kejMRNNU3TGtRBeJgk33yuGBxrMPHi"
	const xpub = "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8NqtwybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMcet8"

	key, version, err := Parse(xprv)
	is.NoErr(err)
	is.Equal(version, VersionXPrv)
	is.True(key.IsPrivate())
	back, err := key.Serialize(version)
	is.NoErr(err)
	is.Equal(back, xprv)

	pub, version, err := Parse(xpub)
	is.NoErr(err)
	is.Equal(version, VersionXPub)
	is.True(!pub.IsPrivate())

	// change one character in the middle
	corrupt := []byte(xpub)
	if corrupt[40] == 'a' {
		corrupt[40] = 'b'
	} else {
		corrupt[40] = 'a'
	}
	_, _, err = Parse(string(corrupt))
	is.True(err != nil)

	_, _, err = Parse("xpub")
	is.True(errors.Is(err, errs.InvalidParameter))
}

// TestZero verifies wiping clears the key material
func TestZero(t *testing.T) {
	is := is.New(t)

	master, err := NewMaster(mustHex(t, vector1Seed), curve.Ed25519BIP32)
	is.NoErr(err)
	key := master.key
	ext := master.ext

	master.Zero()
	is.Equal(key, make([]byte, 32))
	is.Equal(ext, make([]byte, 32))
	_, err = master.PublicKey()
	is.True(err != nil)

	var nilKey *ExtendedKey
	nilKey.Zero()
}
