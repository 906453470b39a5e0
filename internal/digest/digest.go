// Package digest provides the SHA-256 hashing and constant-time comparison
// primitives used to hash ciphertexts and compare security-relevant byte
// sequences without leaking timing information.
package digest

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SHA256Hex returns the lowercase hex SHA-256 digest of data, exactly 64
// characters.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEqual reports whether a and b are equal, in time independent
// of their contents (though not of their lengths). Use this for any
// security-relevant comparison, such as the JWS payload check in
// verification.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
