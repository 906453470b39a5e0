package jws

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	"github.com/tessarai/capsa-go/internal/b64"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 4096)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return priv
}

func TestSignVerify_RoundTrip(t *testing.T) {
	priv := testKey(t)
	canonical := "capsa_abc|1.0.0|10|AES-256-GCM|hash1"

	signed, err := Sign(canonical, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(signed, canonical, &priv.PublicKey); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestSign_ProtectedHeaderFixed(t *testing.T) {
	priv := testKey(t)
	signed, err := Sign("anything", priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	want := b64.Encode([]byte(`{"alg":"RS256","typ":"JWT"}`))
	if signed.Protected != want {
		t.Fatalf("protected header = %q, want %q", signed.Protected, want)
	}
}

func TestVerify_PayloadMismatch(t *testing.T) {
	priv := testKey(t)
	signed, err := Sign("original string", priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(signed, "tampered string", &priv.PublicKey); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("got %v, want ErrSignatureInvalid", err)
	}
}

func TestVerify_WrongKey(t *testing.T) {
	priv := testKey(t)
	other := testKey(t)
	canonical := "capsa_1|1.0.0|0|AES-256-GCM"

	signed, err := Sign(canonical, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(signed, canonical, &other.PublicKey); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("got %v, want ErrSignatureInvalid", err)
	}
}

func TestVerify_BitFlippedSignature(t *testing.T) {
	priv := testKey(t)
	canonical := "capsa_2|1.0.0|5|AES-256-GCM"

	signed, err := Sign(canonical, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sigBytes, err := b64.Decode(signed.Signature)
	if err != nil {
		t.Fatalf("Decode signature: %v", err)
	}
	sigBytes[0] ^= 0xff
	signed.Signature = b64.Encode(sigBytes)

	if err := Verify(signed, canonical, &priv.PublicKey); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("got %v, want ErrSignatureInvalid", err)
	}
}

func TestVerify_WrongSignatureLength(t *testing.T) {
	priv := testKey(t)
	canonical := "capsa_3|1.0.0|1|AES-256-GCM"

	signed, err := Sign(canonical, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sigBytes, err := b64.Decode(signed.Signature)
	if err != nil {
		t.Fatalf("Decode signature: %v", err)
	}
	signed.Signature = b64.Encode(sigBytes[:len(sigBytes)-1])

	if err := Verify(signed, canonical, &priv.PublicKey); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("got %v, want ErrSignatureInvalid", err)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	priv := testKey(t)
	signed, err := Sign("capsa_4|1.0.0|2|AES-256-GCM", priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	compact := signed.Encode()
	decoded, err := Decode(compact)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != signed {
		t.Fatal("decode did not reproduce original Signed value")
	}
}

func TestDecode_WrongPartCount(t *testing.T) {
	if _, err := Decode("only.two"); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("got %v, want ErrSignatureInvalid", err)
	}
}
