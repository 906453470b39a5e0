// Package b64 implements the base64url-without-padding encoding (RFC 4648
// §5) used for every byte-valued field in a capsa envelope.
package b64

import (
	"encoding/base64"
	"fmt"
)

// Encode encodes data as URL-safe base64 without padding.
func Encode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode decodes a base64url string. It accepts the URL-safe alphabet with
// or without padding, and the standard alphabet without padding only, and
// always treats malformed input as an error; it never falls back to
// guessing an unrelated encoding.
func Decode(s string) ([]byte, error) {
	if data, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	// Tolerate accidental standard-alphabet input (+ / instead of - _),
	// still without guessing at padding vs. no padding beyond what
	// encoding/base64 itself tries above.
	data, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return data, nil
}
