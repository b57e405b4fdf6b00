// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package hdkey implements hierarchical deterministic key trees on the
// curves of package curve:
//
//   - secp256k1 keys follow BIP32.
//   - ed25519 keys follow SLIP-10 and allow hardened derivation only.
//   - ed25519-bip32 keys follow BIP32-Ed25519 with SLIP-23 master
//     generation, and allow public derivation.
//
// An ExtendedKey is either private or public. Neuter turns a private key
// into its public counterpart; there is no way back.
package hdkey

import (
	"crypto/hmac"
	"crypto/sha512"
	"errors"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/complex-gh/walletcore/curve"
	"github.com/complex-gh/walletcore/errs"
	"github.com/complex-gh/walletcore/secret"
)

const (
	// HardenedKeyStart is the first hardened child index (2^31).
	HardenedKeyStart uint32 = 0x80000000

	// MaxDepth is the deepest level a key can sit at.
	MaxDepth = 255

	// ChainCodeSize is the length of a chain code.
	ChainCodeSize = 32

	// FingerprintSize is the length of a key fingerprint.
	FingerprintSize = 4

	// MinSeedLen and MaxSeedLen bound the master seed length in bytes.
	MinSeedLen = 16
	MaxSeedLen = 64
)

// ExtendedKey is a node of a key tree: a key, its chain code and its
// position.
type ExtendedKey struct {
	curve     curve.Kind
	key       []byte // private scalar or seed, or public point
	ext       []byte // kR of an ed25519-bip32 private key
	chainCode []byte
	parentFP  [FingerprintSize]byte
	depth     uint8
	childNum  uint32
	isPrivate bool

	pubKey []byte // cached public key of a private node
}

func newPrivate(kind curve.Kind, key, ext, chainCode []byte, parentFP [FingerprintSize]byte, depth uint8, childNum uint32) *ExtendedKey {
	return &ExtendedKey{
		curve:     kind,
		key:       key,
		ext:       ext,
		chainCode: chainCode,
		parentFP:  parentFP,
		depth:     depth,
		childNum:  childNum,
		isPrivate: true,
	}
}

func newPublic(kind curve.Kind, key, chainCode []byte, parentFP [FingerprintSize]byte, depth uint8, childNum uint32) *ExtendedKey {
	return &ExtendedKey{
		curve:     kind,
		key:       key,
		chainCode: chainCode,
		parentFP:  parentFP,
		depth:     depth,
		childNum:  childNum,
	}
}

// NewMaster derives the root key of a tree from a 16 to 64 byte seed.
func NewMaster(seed []byte, kind curve.Kind) (*ExtendedKey, error) {
	const op = "hdkey.NewMaster"
	if len(seed) < MinSeedLen || len(seed) > MaxSeedLen {
		return nil, errs.E(errs.InvalidParameter, op,
			"seed must be %d to %d bytes, got %d", MinSeedLen, MaxSeedLen, len(seed))
	}

	switch kind {
	case curve.Secp256k1:
		return secpMaster(seed)
	case curve.Ed25519:
		return slip10Master(seed)
	case curve.Ed25519BIP32:
		return bip32EdMaster(seed)
	default:
		return nil, errs.E(errs.InvalidParameter, op, "unknown curve %s", kind)
	}
}

// DeriveChild returns the child at index, which must be below 2^31; hardened
// selects the hardened branch. If the index yields an invalid key the next
// index is used instead and recorded in the child.
func (k *ExtendedKey) DeriveChild(index uint32, hardened bool) (*ExtendedKey, error) {
	const op = "hdkey.DeriveChild"

	if index >= HardenedKeyStart {
		return nil, errs.E(errs.InvalidParameter, op, "index %d is not below 2^31", index)
	}
	if k.depth == MaxDepth {
		return nil, errs.E(errs.InvalidParameter, op, "cannot derive past depth %d", MaxDepth)
	}
	if k.curve == curve.Ed25519 && !hardened {
		return nil, errs.E(errs.InvalidParameter, op, "ed25519 keys only support hardened derivation")
	}
	if hardened && !k.isPrivate {
		return nil, errs.E(errs.HardenedFromPublicKey, op, "cannot derive hardened child %d from a public key", index)
	}
	if err := k.checkMaterial(op); err != nil {
		return nil, err
	}
	if len(k.chainCode) != ChainCodeSize {
		return nil, errs.E(errs.InvalidKey, op, "chain code must be %d bytes, got %d", ChainCodeSize, len(k.chainCode))
	}

	derive, err := k.childFunc(hardened)
	if err != nil {
		return nil, err
	}
	return retryInvalid(index, func(i uint32) (*ExtendedKey, error) {
		if hardened {
			i += HardenedKeyStart
		}
		return derive(i)
	})
}

// Derive is DeriveChild with the hardened flag folded into the index, as in
// BIP32 notation.
func (k *ExtendedKey) Derive(childNum uint32) (*ExtendedKey, error) {
	return k.DeriveChild(childNum&^HardenedKeyStart, childNum >= HardenedKeyStart)
}

// childFunc precomputes what a derivation step needs from the parent and
// returns the per-index step.
func (k *ExtendedKey) childFunc(hardened bool) (func(uint32) (*ExtendedKey, error), error) {
	fp, err := k.Fingerprint()
	if err != nil {
		return nil, err
	}
	switch k.curve {
	case curve.Secp256k1:
		return k.secpChild(fp, hardened)
	case curve.Ed25519:
		return k.slip10Child(fp), nil
	case curve.Ed25519BIP32:
		return k.bip32EdChild(fp, hardened)
	}
	return nil, errs.E(errs.InvalidKey, "hdkey.DeriveChild", "unknown curve %s", k.curve)
}

// invalidChildError marks an index whose child key BIP32 declares invalid.
// Only these failures move derivation on to the next index.
type invalidChildError struct {
	err error
}

func (e *invalidChildError) Error() string { return e.err.Error() }

func (e *invalidChildError) Unwrap() error { return e.err }

func invalidChild(err error) error {
	return &invalidChildError{err: err}
}

// retryInvalid calls fn with index and, while fn reports an invalid child,
// with the following indices until the hardened boundary is reached.
func retryInvalid(index uint32, fn func(uint32) (*ExtendedKey, error)) (*ExtendedKey, error) {
	for {
		child, err := fn(index)
		var ice *invalidChildError
		if err == nil || !errors.As(err, &ice) || index+1 >= HardenedKeyStart {
			return child, err
		}
		index++
	}
}

// checkMaterial fails with InvalidKey when k does not hold a key of its
// curve's size, as after Zero.
func (k *ExtendedKey) checkMaterial(op string) error {
	c, err := curve.For(k.curve)
	if err != nil {
		return errs.Wrap(errs.InvalidKey, op, err)
	}
	size := c.PublicKeySize()
	if k.isPrivate {
		size = c.PrivateKeySize()
	}
	if len(k.key) != size {
		return errs.E(errs.InvalidKey, op, "key material is missing or wiped")
	}
	if k.isPrivate && k.curve == curve.Ed25519BIP32 && len(k.ext) != size {
		return errs.E(errs.InvalidKey, op, "extension key is missing or wiped")
	}
	return nil
}

// Neuter returns the public counterpart of k. A public key is returned as
// is.
func (k *ExtendedKey) Neuter() (*ExtendedKey, error) {
	if !k.isPrivate {
		return k, nil
	}
	pub, err := k.PublicKey()
	if err != nil {
		return nil, err
	}
	return newPublic(k.curve, pub, clone(k.chainCode), k.parentFP, k.depth, k.childNum), nil
}

// Fingerprint returns the first four bytes of HASH160 of the public key.
// Ed25519 public keys are prefixed with a zero byte first, as SLIP-10 does.
func (k *ExtendedKey) Fingerprint() ([FingerprintSize]byte, error) {
	var fp [FingerprintSize]byte
	pub, err := k.PublicKey()
	if err != nil {
		return fp, err
	}
	if k.curve != curve.Secp256k1 {
		pub = append([]byte{0x00}, pub...)
	}
	copy(fp[:], btcutil.Hash160(pub))
	return fp, nil
}

// PublicKey returns the serialised public key: 33 bytes compressed on
// secp256k1, 32 bytes on ed25519.
func (k *ExtendedKey) PublicKey() ([]byte, error) {
	if err := k.checkMaterial("hdkey.PublicKey"); err != nil {
		return nil, err
	}
	if !k.isPrivate {
		return clone(k.key), nil
	}
	if k.pubKey == nil {
		pub, err := curve.MustFor(k.curve).PublicFromPrivate(k.key)
		if err != nil {
			return nil, err
		}
		k.pubKey = pub
	}
	return clone(k.pubKey), nil
}

// PrivateKey returns a copy of the private key: the scalar on secp256k1,
// the seed on ed25519 and kL on ed25519-bip32. The caller owns the copy.
func (k *ExtendedKey) PrivateKey() ([]byte, error) {
	if !k.isPrivate {
		return nil, errs.E(errs.InvalidKey, "hdkey.PrivateKey", "key is public only")
	}
	if err := k.checkMaterial("hdkey.PrivateKey"); err != nil {
		return nil, err
	}
	return clone(k.key), nil
}

// ExtensionKey returns a copy of kR, the right half of an ed25519-bip32
// private key.
func (k *ExtendedKey) ExtensionKey() ([]byte, error) {
	if !k.isPrivate || k.curve != curve.Ed25519BIP32 {
		return nil, errs.E(errs.InvalidKey, "hdkey.ExtensionKey", "key has no extension half")
	}
	if err := k.checkMaterial("hdkey.ExtensionKey"); err != nil {
		return nil, err
	}
	return clone(k.ext), nil
}

// Curve returns the curve the key lives on.
func (k *ExtendedKey) Curve() curve.Kind { return k.curve }

// IsPrivate reports whether k holds private key material.
func (k *ExtendedKey) IsPrivate() bool { return k.isPrivate }

// Depth returns the number of derivation steps from the master key.
func (k *ExtendedKey) Depth() uint8 { return k.depth }

// ChildIndex returns the index k was derived at, hardened bit included.
func (k *ExtendedKey) ChildIndex() uint32 { return k.childNum }

// ParentFingerprint returns the fingerprint of the parent key, zero for a
// master key.
func (k *ExtendedKey) ParentFingerprint() [FingerprintSize]byte { return k.parentFP }

// ChainCode returns a copy of the chain code.
func (k *ExtendedKey) ChainCode() []byte { return clone(k.chainCode) }

// Zero wipes the key material. The key is unusable afterwards.
func (k *ExtendedKey) Zero() {
	if k == nil {
		return
	}
	secret.Wipe(k.key, k.ext, k.chainCode, k.pubKey)
	k.key, k.ext, k.chainCode, k.pubKey = nil, nil, nil, nil
	k.parentFP = [FingerprintSize]byte{}
	k.depth, k.childNum = 0, 0
}

func hmac512(key []byte, data ...[]byte) []byte {
	mac := hmac.New(sha512.New, key)
	for _, d := range data {
		mac.Write(d)
	}
	return mac.Sum(nil)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
