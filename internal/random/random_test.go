package random

import (
	"bytes"
	"errors"
	"testing"
)

// failingReader is an io.Reader that always returns an error.
type failingReader struct{}

func (f failingReader) Read(p []byte) (n int, err error) {
	return 0, errors.New("random source failure")
}

func TestBytes(t *testing.T) {
	t.Parallel()
	b, err := Bytes(16)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(b) != 16 {
		t.Fatalf("len = %d, want 16", len(b))
	}
}

func TestBytes_Distinct(t *testing.T) {
	t.Parallel()
	a, err := Bytes(32)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Bytes(32)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("two independent draws were equal")
	}
}

func TestMasterKey_Size(t *testing.T) {
	t.Parallel()
	k, err := MasterKey()
	if err != nil {
		t.Fatal(err)
	}
	if len(k) != MasterKeySize {
		t.Fatalf("len = %d, want %d", len(k), MasterKeySize)
	}
}

func TestIV_Size(t *testing.T) {
	t.Parallel()
	iv, err := IV()
	if err != nil {
		t.Fatal(err)
	}
	if len(iv) != IVSize {
		t.Fatalf("len = %d, want %d", len(iv), IVSize)
	}
}

func TestBytes_RandomFailure(t *testing.T) {
	// Modifies global state, cannot run in parallel.
	restore := SetReaderForTesting(failingReader{})
	defer restore()

	if _, err := Bytes(16); err == nil {
		t.Fatal("expected error from failing reader")
	}
}

func TestZeroize(t *testing.T) {
	t.Parallel()
	buf := []byte{1, 2, 3, 4}
	Zeroize(buf)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("buf[%d] = %d, want 0", i, b)
		}
	}
}
