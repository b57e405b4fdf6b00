// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package secret holds helpers that bound the lifetime of secret material
// such as seeds, entropy and private keys.
package secret

// Wipe overwrites every given buffer with zeros.
func Wipe(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
}

// Use calls fn with b and wipes b afterwards, whether fn fails or panics.
func Use(b []byte, fn func([]byte) error) error {
	defer clear(b)
	return fn(b)
}
