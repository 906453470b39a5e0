// Package keycodec parses and emits RSA keys in the textual PEM envelopes
// a capsa carries keys in: SPKI for public keys, PKCS#8 for private keys.
package keycodec

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/tessarai/capsa-go/internal/digest"
)

// MinModulusBits is the smallest RSA modulus size a capsa key is allowed
// to carry.
const MinModulusBits = 4096

var (
	// ErrInvalidKeyFormat is returned when PEM decoding or the underlying
	// DER encoding fails, or the key is not an RSA key.
	ErrInvalidKeyFormat = errors.New("invalid key format")
	// ErrKeyTooSmall is returned when a parsed RSA key's modulus is
	// below MinModulusBits.
	ErrKeyTooSmall = errors.New("rsa key modulus too small")
)

// ParsePublicKey decodes an SPKI-PEM-encoded RSA public key.
func ParsePublicKey(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, ErrInvalidKeyFormat
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrInvalidKeyFormat)
	}
	if rsaPub.N.BitLen() < MinModulusBits {
		return nil, ErrKeyTooSmall
	}
	return rsaPub, nil
}

// ParsePrivateKey decodes a PKCS#8-PEM-encoded RSA private key.
func ParsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, ErrInvalidKeyFormat
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrInvalidKeyFormat)
	}
	if rsaKey.N.BitLen() < MinModulusBits {
		return nil, ErrKeyTooSmall
	}
	return rsaKey, nil
}

// MarshalPublicKey encodes pub as an SPKI-PEM block.
func MarshalPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// MarshalPrivateKey encodes priv as a PKCS#8-PEM block.
func MarshalPrivateKey(priv *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// Fingerprint returns the SHA-256 hex digest of pub's DER-encoded SPKI
// form, used to identify a public key independent of its PEM formatting.
func Fingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	return digest.SHA256Hex(der), nil
}
