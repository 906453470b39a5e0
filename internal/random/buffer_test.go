package random

import (
	"errors"
	"testing"
)

func TestSecureBuffer_BytesAndZeroize(t *testing.T) {
	t.Parallel()
	buf := NewSecureBuffer([]byte{1, 2, 3, 4})

	got, err := buf.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	buf.Zeroize()
	if !buf.Disposed() {
		t.Fatal("expected Disposed() == true after Zeroize")
	}

	if _, err := buf.Bytes(); !errors.Is(err, ErrDisposed) {
		t.Fatalf("Bytes after zeroize: got %v, want ErrDisposed", err)
	}
}

func TestSecureBuffer_ZeroizeIdempotent(t *testing.T) {
	t.Parallel()
	buf := NewSecureBuffer([]byte{9, 9, 9})
	buf.Zeroize()
	buf.Zeroize() // must not panic
	if !buf.Disposed() {
		t.Fatal("expected Disposed() == true")
	}
}

func TestSecureBuffer_ZeroizesUnderlyingBytes(t *testing.T) {
	t.Parallel()
	raw := []byte{5, 6, 7, 8}
	buf := NewSecureBuffer(raw)
	buf.Zeroize()
	for i, b := range raw {
		if b != 0 {
			t.Fatalf("raw[%d] = %d, want 0 (zeroize must act on underlying array)", i, b)
		}
	}
}
