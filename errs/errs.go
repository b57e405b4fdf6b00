// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package errs defines the failure kinds shared by every walletcore package.
//
// A Kind is itself an error, so callers match failures with errors.Is:
//
//	if errors.Is(err, errs.ChecksumMismatch) {
//		// ask the user to re-type the phrase
//	}
//
// Concrete failures are reported as *Error values that carry the kind, the
// operation that failed and, optionally, the underlying cause.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind uint8

const (
	// Unknown is returned by KindOf for errors that carry no Kind.
	Unknown Kind = iota

	// InvalidParameter reports malformed caller input, for example an
	// unsupported entropy length or word count.
	InvalidParameter

	// ChecksumMismatch reports a mnemonic whose checksum bits disagree with
	// its entropy.
	ChecksumMismatch

	// UnknownWord reports a mnemonic word that is not in the wordlist.
	UnknownWord

	// MalformedPath reports a derivation path string that does not follow
	// the m/a'/b/... grammar.
	MalformedPath

	// HardenedFromPublicKey reports an attempt to derive a hardened child
	// from a public-only extended key.
	HardenedFromPublicKey

	// InvalidKey reports an out-of-range scalar, an invalid point or a key
	// used with the wrong curve.
	InvalidKey

	// UnsupportedCoin reports a coin identifier missing from the registry.
	UnsupportedCoin

	// InvalidDigestLength reports a digest whose size does not match the
	// coin's signature scheme.
	InvalidDigestLength
)

var kindNames = [...]string{
	Unknown:               "unknown error",
	InvalidParameter:      "invalid parameter",
	ChecksumMismatch:      "checksum mismatch",
	UnknownWord:           "unknown word",
	MalformedPath:         "malformed path",
	HardenedFromPublicKey: "hardened derivation from public key",
	InvalidKey:            "invalid key",
	UnsupportedCoin:       "unsupported coin",
	InvalidDigestLength:   "invalid digest length",
}

// String returns a short human readable name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error makes a Kind usable as a sentinel error.
func (k Kind) Error() string {
	return k.String()
}

// Error is a failure of a walletcore operation.
type Error struct {
	// Kind is the failure class.
	Kind Kind
	// Op names the operation that failed, e.g. "mnemonic.ToEntropy".
	Op string
	// Err is the underlying cause. It may be nil.
	Err error
}

// E builds an *Error of the given kind. The message is formatted with
// fmt.Sprintf semantics and becomes the underlying cause; %w verbs are
// honoured.
func E(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap builds an *Error of the given kind around err.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of the first *Error or Kind found in err's chain,
// or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return Unknown
}
