// Package random provides the CSPRNG-backed primitives the capsa core
// builds on: raw random bytes, master keys, IVs, and zeroization of
// sensitive buffers.
package random

import (
	"crypto/rand"
	"fmt"
	"io"
)

// MasterKeySize is the size in bytes of a capsa master key.
const MasterKeySize = 32

// IVSize is the size in bytes of an AES-GCM nonce used throughout a capsa.
const IVSize = 12

// randReader is the source of cryptographically secure randomness. It is a
// package-level variable so tests can substitute a failing or
// deterministic reader; production code never overrides it.
var randReader io.Reader = rand.Reader

// SetReaderForTesting swaps the random source used by this package and
// returns a function that restores the original reader. Intended for tests
// only.
func SetReaderForTesting(r io.Reader) func() {
	original := randReader
	randReader = r
	return func() { randReader = original }
}

// Bytes returns n cryptographically secure random bytes.
func Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(randReader, buf); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return buf, nil
}

// MasterKey returns a fresh 32-byte AES-256-GCM master key.
func MasterKey() ([]byte, error) {
	return Bytes(MasterKeySize)
}

// IV returns a fresh 12-byte AES-GCM nonce.
func IV() ([]byte, error) {
	return Bytes(IVSize)
}

// Zeroize overwrites buf with zeros in place. Callers must call this on
// every copy of sensitive key material on every exit path.
func Zeroize(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
