// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package coin describes the supported coins and turns public keys into
// address strings.
//
// Every coin is a Descriptor loaded from the embedded registry.json table.
// An address is produced by a fixed pipeline whose stages are named by the
// descriptor:
//
//	public key -> hash -> prefix -> checksum -> text encoding
//
// so adding a coin that reuses known stages is a data change only.
package coin

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/complex-gh/walletcore/curve"
	"github.com/complex-gh/walletcore/hdpath"
)

// ID is the stable identifier of a coin, e.g. "bitcoin" or "ethereum".
type ID string

// Hash is the address hash stage.
type Hash string

// Address hashes.
const (
	HashHash160    Hash = "hash160"     // RIPEMD160(SHA256(compressed key))
	HashP2SHP2WPKH Hash = "p2sh-p2wpkh" // HASH160 of the P2WPKH witness program
	HashKeccak160  Hash = "keccak160"   // last 20 bytes of Keccak256(uncompressed key)
	HashBlake2b224 Hash = "blake2b224"  // Blake2b-224 of the key
	HashTaproot    Hash = "taproot"     // BIP86 tweaked x-only output key
	HashXOnly      Hash = "xonly"       // BIP340 x-only key
	HashNone       Hash = "none"        // the key itself
)

// Checksum is the address checksum stage.
type Checksum string

// Address checksums.
const (
	ChecksumDoubleSHA256 Checksum = "double-sha256"
	ChecksumBech32       Checksum = "bech32"
	ChecksumBech32m      Checksum = "bech32m"
	ChecksumEIP55        Checksum = "eip55"
	ChecksumNone         Checksum = "none"
)

// Encoding is the final text encoding of an address.
type Encoding string

// Address encodings.
const (
	EncodingBase58 Encoding = "base58"
	EncodingSegwit Encoding = "segwit" // BIP173/BIP350 witness address
	EncodingBech32 Encoding = "bech32" // plain bech32 of the payload bytes
	EncodingHex    Encoding = "hex"    // 0x-prefixed hex
)

// Scheme is the signature scheme of a coin.
type Scheme string

// Signature schemes.
const (
	SchemeECDSA            Scheme = "ecdsa"             // 64-byte R||S
	SchemeECDSARecoverable Scheme = "ecdsa-recoverable" // 65-byte R||S||V
	SchemeSchnorr          Scheme = "schnorr"           // BIP340
	SchemeTaproot          Scheme = "taproot"           // BIP340 under the BIP86 tweak
	SchemeEd25519          Scheme = "ed25519"           // RFC 8032
	SchemeEd25519Extended  Scheme = "ed25519-extended"  // RFC 8032 with a kL/kR key
)

// schemeCurve is the curve each signature scheme works on.
var schemeCurve = map[Scheme]curve.Kind{
	SchemeECDSA:            curve.Secp256k1,
	SchemeECDSARecoverable: curve.Secp256k1,
	SchemeSchnorr:          curve.Secp256k1,
	SchemeTaproot:          curve.Secp256k1,
	SchemeEd25519:          curve.Ed25519,
	SchemeEd25519Extended:  curve.Ed25519BIP32,
}

func oneOf[T ~string](what string, v T, allowed ...T) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", what, string(v))
}

// Validate reports whether h is a known hash.
func (h Hash) Validate() error {
	return oneOf("hash", h, HashHash160, HashP2SHP2WPKH, HashKeccak160, HashBlake2b224,
		HashTaproot, HashXOnly, HashNone)
}

// Validate reports whether c is a known checksum.
func (c Checksum) Validate() error {
	return oneOf("checksum", c, ChecksumDoubleSHA256, ChecksumBech32, ChecksumBech32m,
		ChecksumEIP55, ChecksumNone)
}

// Validate reports whether e is a known encoding.
func (e Encoding) Validate() error {
	return oneOf("encoding", e, EncodingBase58, EncodingSegwit, EncodingBech32, EncodingHex)
}

// Validate reports whether s is a known signature scheme.
func (s Scheme) Validate() error {
	return oneOf("signature scheme", s, SchemeECDSA, SchemeECDSARecoverable, SchemeSchnorr,
		SchemeTaproot, SchemeEd25519, SchemeEd25519Extended)
}

// HexBytes is a byte string written as hex in the registry.
type HexBytes []byte

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *HexBytes) UnmarshalText(text []byte) error {
	out, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid hex %q: %w", text, err)
	}
	*b = out
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (b HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}

// Version is a four byte BIP32 serialisation version written as hex.
type Version uint32

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	n, err := strconv.ParseUint(string(text), 16, 32)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", text, err)
	}
	*v = Version(n)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%08x", uint32(v))), nil
}

// Descriptor is the immutable description of a coin. Callers must not
// modify the descriptors returned by a Registry.
type Descriptor struct {
	ID       ID         `json:"id"`
	Name     string     `json:"name"`
	Symbol   string     `json:"symbol"`
	CoinType uint32     `json:"coin_type"`
	Curve    curve.Kind `json:"curve"`

	Hash     Hash     `json:"hash"`
	Prefix   HexBytes `json:"prefix,omitempty"`
	Checksum Checksum `json:"checksum"`
	Encoding Encoding `json:"encoding"`
	// HRP is the bech32 human readable part.
	HRP string `json:"hrp,omitempty"`
	// WitnessVersion is used by the segwit encoding.
	WitnessVersion byte `json:"witness_version,omitempty"`

	Scheme     Scheme `json:"signature"`
	DigestSize int    `json:"digest_size"`
	// RecoveryOffset is added to the recovery id of recoverable ECDSA
	// signatures: 0 for Ethereum, 27 for Tron.
	RecoveryOffset byte `json:"recovery_offset,omitempty"`

	// WIF is the wallet import format version byte. Nil means the coin has
	// no WIF encoding.
	WIF HexBytes `json:"wif,omitempty"`
	// PrivateVersion and PublicVersion are the BIP32 serialisation versions.
	// Zero means extended keys are not serialised for the coin.
	PrivateVersion Version `json:"xprv_version,omitempty"`
	PublicVersion  Version `json:"xpub_version,omitempty"`

	// DefaultPath is the first receive address path.
	DefaultPath string `json:"default_path"`

	path hdpath.Path
}

// Path returns the parsed default path.
func (d *Descriptor) Path() hdpath.Path {
	return d.path.Append()
}

// AccountPath returns m/purpose'/coin'/account' for the default path's
// purpose and coin type.
func (d *Descriptor) AccountPath(account uint32) hdpath.Path {
	return hdpath.Account(d.path.Purpose(), d.path.Coin(), account)
}

// HasExtendedKeys reports whether the coin serialises BIP32 extended keys.
func (d *Descriptor) HasExtendedKeys() bool {
	return d.PrivateVersion != 0 && d.PublicVersion != 0
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Symbol)
}

// validate checks the stages fit together and parses the default path.
func (d *Descriptor) validate() error {
	if d.ID == "" {
		return fmt.Errorf("missing id")
	}
	if _, err := curve.For(d.Curve); err != nil {
		return err
	}
	for _, err := range []error{d.Hash.Validate(), d.Checksum.Validate(), d.Encoding.Validate(), d.Scheme.Validate()} {
		if err != nil {
			return err
		}
	}
	if d.DigestSize <= 0 {
		return fmt.Errorf("digest size must be positive")
	}

	switch d.Encoding {
	case EncodingSegwit:
		if d.HRP == "" || (d.Checksum != ChecksumBech32 && d.Checksum != ChecksumBech32m) {
			return fmt.Errorf("segwit encoding needs an hrp and a bech32 or bech32m checksum")
		}
		if (d.WitnessVersion == 0) != (d.Checksum == ChecksumBech32) {
			return fmt.Errorf("witness version %d does not use %s", d.WitnessVersion, d.Checksum)
		}
	case EncodingBech32:
		if d.HRP == "" || d.Checksum != ChecksumBech32 {
			return fmt.Errorf("bech32 encoding needs an hrp and a bech32 checksum")
		}
	case EncodingHex:
		if d.Checksum != ChecksumEIP55 && d.Checksum != ChecksumNone {
			return fmt.Errorf("hex encoding supports eip55 or no checksum")
		}
	case EncodingBase58:
		if d.Checksum != ChecksumDoubleSHA256 && d.Checksum != ChecksumNone {
			return fmt.Errorf("base58 encoding supports double-sha256 or no checksum")
		}
	}

	secpOnly := d.Hash == HashHash160 || d.Hash == HashP2SHP2WPKH || d.Hash == HashKeccak160 ||
		d.Hash == HashTaproot || d.Hash == HashXOnly
	if secpOnly && d.Curve != curve.Secp256k1 {
		return fmt.Errorf("hash %s needs a secp256k1 key", d.Hash)
	}
	if want := schemeCurve[d.Scheme]; want != d.Curve {
		return fmt.Errorf("signature scheme %s needs a %s key", d.Scheme, want)
	}
	if len(d.WIF) > 1 {
		return fmt.Errorf("wif version must be one byte")
	}

	path, err := hdpath.Parse(d.DefaultPath)
	if err != nil {
		return err
	}
	d.path = path
	return nil
}
