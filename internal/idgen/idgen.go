// Package idgen generates the opaque, CSPRNG-derived identifiers a capsa
// and its files carry: package_id and file_id.
package idgen

import (
	"fmt"

	"github.com/tessarai/capsa-go/internal/random"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// rejectionCeiling is the largest multiple of 36 not exceeding 256; bytes
// at or above it are discarded to avoid modulo bias.
const rejectionCeiling = 252

// PackageIDLength is the number of alphabet characters following the
// "capsa_" prefix.
const PackageIDLength = 22

// FileIDLength is the number of alphabet characters following the
// "file_" prefix, before the ".enc" suffix.
const FileIDLength = 16

func randomSymbols(n int) (string, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		buf, err := random.Bytes(1)
		if err != nil {
			return "", fmt.Errorf("idgen: read random byte: %w", err)
		}
		b := buf[0]
		if b >= rejectionCeiling {
			continue
		}
		out = append(out, alphabet[int(b)%36])
	}
	return string(out), nil
}

// PackageID generates a fresh "capsa_" + 22-character package identifier.
func PackageID() (string, error) {
	symbols, err := randomSymbols(PackageIDLength)
	if err != nil {
		return "", err
	}
	return "capsa_" + symbols, nil
}

// FileID generates a fresh "file_" + 16-character + ".enc" file identifier.
func FileID() (string, error) {
	symbols, err := randomSymbols(FileIDLength)
	if err != nil {
		return "", err
	}
	return "file_" + symbols + ".enc", nil
}
