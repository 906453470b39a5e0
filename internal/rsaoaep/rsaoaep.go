// Package rsaoaep implements the RSA-OAEP wrap/unwrap operation used to
// deliver the per-capsa master key to each recipient's public key.
package rsaoaep

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/tessarai/capsa-go/internal/b64"
)

// MinModulusBits mirrors keycodec.MinModulusBits; duplicated here so this
// package has no import-time dependency on key parsing, only on key use.
const MinModulusBits = 4096

// masterKeySize is the only plaintext length Unwrap will accept.
const masterKeySize = 32

// ErrDecryptionFailed is returned by Unwrap on any padding, tag, or
// length failure. No partial plaintext is ever returned alongside it.
var ErrDecryptionFailed = errors.New("rsa-oaep decryption failed")

// ErrKeyTooSmall is returned when the supplied key's modulus is below
// MinModulusBits.
var ErrKeyTooSmall = errors.New("rsa key modulus too small")

// Wrap encrypts masterKey under pub using RSA-OAEP with SHA-256 as both
// the digest and MGF1 hash and an empty label, returning the ciphertext
// as a base64url string.
func Wrap(masterKey []byte, pub *rsa.PublicKey) (string, error) {
	if pub.N.BitLen() < MinModulusBits {
		return "", ErrKeyTooSmall
	}
	ct, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, masterKey, nil)
	if err != nil {
		return "", fmt.Errorf("rsa-oaep encrypt: %w", err)
	}
	return b64.Encode(ct), nil
}

// Unwrap decrypts a base64url ciphertext produced by Wrap, returning the
// 32-byte master key.
func Unwrap(ciphertextB64url string, priv *rsa.PrivateKey) ([]byte, error) {
	if priv.N.BitLen() < MinModulusBits {
		return nil, ErrKeyTooSmall
	}
	ct, err := b64.Decode(ciphertextB64url)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	pt, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ct, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	if len(pt) != masterKeySize {
		return nil, ErrDecryptionFailed
	}
	return pt, nil
}
