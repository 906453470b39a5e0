package gzipx

import (
	"bytes"
	"strings"
	"testing"
)

func TestShouldCompress(t *testing.T) {
	t.Parallel()
	if ShouldCompress(149) {
		t.Fatal("149 bytes should not be compressed")
	}
	if !ShouldCompress(150) {
		t.Fatal("150 bytes should be compressed")
	}
}

func TestCompressIfBeneficial_BelowThreshold(t *testing.T) {
	t.Parallel()
	buf := []byte("short")
	res, err := CompressIfBeneficial(buf)
	if err != nil {
		t.Fatalf("CompressIfBeneficial: %v", err)
	}
	if res.Compressed {
		t.Fatal("short buffer should not be marked compressed")
	}
	if !bytes.Equal(res.Data, buf) {
		t.Fatal("short buffer should be returned unchanged")
	}
}

func TestCompressIfBeneficial_Beneficial(t *testing.T) {
	t.Parallel()
	buf := []byte(strings.Repeat("a", 1000))
	res, err := CompressIfBeneficial(buf)
	if err != nil {
		t.Fatalf("CompressIfBeneficial: %v", err)
	}
	if !res.Compressed {
		t.Fatal("highly repetitive buffer should compress")
	}
	if res.Algorithm != "gzip" {
		t.Fatalf("algorithm = %q, want gzip", res.Algorithm)
	}
	if res.OriginalSize != len(buf) {
		t.Fatalf("original size = %d, want %d", res.OriginalSize, len(buf))
	}
	if len(res.Data) >= len(buf) {
		t.Fatal("compressed data should be strictly smaller")
	}

	out, err := Decompress(res.Data)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, buf) {
		t.Fatal("round trip mismatch")
	}
}

func TestCompressIfBeneficial_NotBeneficial(t *testing.T) {
	t.Parallel()
	// Random-looking data above the threshold but incompressible enough
	// that gzip's header overhead loses.
	buf := make([]byte, 150)
	for i := range buf {
		buf[i] = byte(i*37 + 11)
	}
	res, err := CompressIfBeneficial(buf)
	if err != nil {
		t.Fatalf("CompressIfBeneficial: %v", err)
	}
	if res.Compressed {
		t.Skip("synthetic buffer happened to compress; not a meaningful failure")
	}
	if !bytes.Equal(res.Data, buf) {
		t.Fatal("non-beneficial buffer should be returned unchanged")
	}
}

func TestDecompress_Invalid(t *testing.T) {
	t.Parallel()
	if _, err := Decompress([]byte("not gzip")); err == nil {
		t.Fatal("expected error decompressing invalid data")
	}
}
