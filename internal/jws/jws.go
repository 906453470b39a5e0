// Package jws implements the detached RS256 signature format used to
// authenticate a capsa's canonical string: a fixed protected header, a
// base64url payload, and an RSASSA-PKCS1-v1.5 signature over both.
package jws

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/tessarai/capsa-go/internal/b64"
	"github.com/tessarai/capsa-go/internal/digest"
)

// protectedHeader is the exact byte sequence every capsa signature's
// protected header encodes. It is never reserialized through
// encoding/json, to keep the byte sequence fixed regardless of field
// ordering or whitespace a generic marshaler might choose.
const protectedHeader = `{"alg":"RS256","typ":"JWT"}`

// SignatureSize is the only length a base64url-decoded signature is
// accepted at.
const SignatureSize = 512

var (
	// ErrSignatureInvalid is returned by Verify for any failure: bad
	// encoding, payload mismatch, wrong signature length, or a failed
	// cryptographic check. Verify never distinguishes between these to
	// a caller.
	ErrSignatureInvalid = errors.New("jws: signature invalid")
)

// Signed holds the three dot-joined components of a signed capsa.
type Signed struct {
	Protected string
	Payload   string
	Signature string
}

// Sign produces a detached RS256 signature over canonicalString.
func Sign(canonicalString string, priv *rsa.PrivateKey) (Signed, error) {
	protected := b64.Encode([]byte(protectedHeader))
	payload := b64.Encode([]byte(canonicalString))
	signingInput := protected + "." + payload

	h := sha256.Sum256([]byte(signingInput))
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, h[:])
	if err != nil {
		return Signed{}, fmt.Errorf("jws sign: %w", err)
	}

	return Signed{
		Protected: protected,
		Payload:   payload,
		Signature: b64.Encode(sig),
	}, nil
}

// Verify checks that signed is a valid RS256 signature, under pub, over
// canonicalString. The expected payload is recomputed from
// canonicalString and compared in constant time against the received
// payload before the signature itself is checked.
func Verify(signed Signed, canonicalString string, pub *rsa.PublicKey) error {
	expectedPayload := b64.Encode([]byte(canonicalString))
	if !digest.ConstantTimeEqual([]byte(expectedPayload), []byte(signed.Payload)) {
		return ErrSignatureInvalid
	}

	sig, err := b64.Decode(signed.Signature)
	if err != nil {
		return ErrSignatureInvalid
	}
	if len(sig) != SignatureSize {
		return ErrSignatureInvalid
	}

	signingInput := signed.Protected + "." + signed.Payload
	h := sha256.Sum256([]byte(signingInput))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, h[:], sig); err != nil {
		return ErrSignatureInvalid
	}
	return nil
}

// Encode joins the three components of signed with '.', the compact JWS
// serialization form used when a capsa envelope carries its signature as
// a single string.
func (s Signed) Encode() string {
	return strings.Join([]string{s.Protected, s.Payload, s.Signature}, ".")
}

// Decode splits a compact JWS string back into its three components.
func Decode(compact string) (Signed, error) {
	parts := strings.Split(compact, ".")
	if len(parts) != 3 {
		return Signed{}, ErrSignatureInvalid
	}
	return Signed{Protected: parts[0], Payload: parts[1], Signature: parts[2]}, nil
}
