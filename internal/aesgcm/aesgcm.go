// Package aesgcm implements the per-field AES-256-GCM encryption used for
// every plaintext field inside a capsa.
package aesgcm

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

// KeySize and IVSize are the only sizes this package accepts.
const (
	KeySize = 32
	IVSize  = 12
	TagSize = 16
)

var (
	// ErrInvalidKeySize is returned when key is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.New("aes-gcm: invalid key size")
	// ErrInvalidIVSize is returned when iv is not exactly IVSize bytes.
	ErrInvalidIVSize = errors.New("aes-gcm: invalid iv size")
	// ErrAuthenticationFailed is returned by Decrypt when the tag does
	// not authenticate the ciphertext under the given key and IV.
	ErrAuthenticationFailed = errors.New("aes-gcm: authentication failed")
)

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes-gcm: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, TagSize)
	if err != nil {
		return nil, fmt.Errorf("aes-gcm: new gcm: %w", err)
	}
	return gcm, nil
}

// Encrypt encrypts plaintext under key and iv, returning the ciphertext
// and authentication tag as separate byte slices.
func Encrypt(plaintext, key, iv []byte) (ciphertext, tag []byte, err error) {
	if len(iv) != IVSize {
		return nil, nil, ErrInvalidIVSize
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	sealed := gcm.Seal(nil, iv, plaintext, nil)
	split := len(sealed) - TagSize
	return sealed[:split], sealed[split:], nil
}

// Decrypt authenticates tag against ciphertext under key and iv and, on
// success, returns the recovered plaintext.
func Decrypt(ciphertext, key, iv, tag []byte) ([]byte, error) {
	if len(iv) != IVSize {
		return nil, ErrInvalidIVSize
	}
	if len(tag) != TagSize {
		return nil, ErrAuthenticationFailed
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)
	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
