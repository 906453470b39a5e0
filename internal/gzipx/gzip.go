// Package gzipx implements the size-benefit gzip compression applied to
// capsa field plaintext before encryption.
package gzipx

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// CompressionThreshold is the gzip header break-even point below which
// compression is never attempted.
const CompressionThreshold = 150

// ShouldCompress reports whether a buffer of the given length is large
// enough to be worth attempting to compress.
func ShouldCompress(byteLen int) bool {
	return byteLen >= CompressionThreshold
}

// Result describes the outcome of CompressIfBeneficial.
type Result struct {
	Data         []byte
	Compressed   bool
	Algorithm    string
	OriginalSize int
}

// CompressIfBeneficial gzips buf and returns the compressed form only when
// it is strictly smaller than buf itself; otherwise it returns buf
// unchanged.
func CompressIfBeneficial(buf []byte) (Result, error) {
	if !ShouldCompress(len(buf)) {
		return Result{Data: buf}, nil
	}
	var out bytes.Buffer
	w := gzip.NewWriter(&out)
	if _, err := w.Write(buf); err != nil {
		return Result{}, fmt.Errorf("gzip compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return Result{}, fmt.Errorf("gzip compress: %w", err)
	}
	if out.Len() >= len(buf) {
		return Result{Data: buf}, nil
	}
	return Result{
		Data:         out.Bytes(),
		Compressed:   true,
		Algorithm:    "gzip",
		OriginalSize: len(buf),
	}, nil
}

// Decompress inverts CompressIfBeneficial's compressed branch.
func Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	return out, nil
}
