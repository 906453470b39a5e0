package capsa

import (
	"errors"
	"testing"

	"github.com/tessarai/capsa-go/internal/keycodec"
)

func TestGenerateKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair(2048)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if kp.Bits != 2048 {
		t.Fatalf("expected 2048-bit key, got %d", kp.Bits)
	}
	if kp.Fingerprint == "" {
		t.Fatal("expected a non-empty fingerprint")
	}
	if _, err := keycodec.ParsePublicKey([]byte(kp.PublicKeyPEM)); err == nil {
		t.Fatal("expected a 2048-bit key to fail keycodec's minimum-size check")
	}
}

func TestGenerateKeyPair_RejectsTinyModulus(t *testing.T) {
	_, err := GenerateKeyPair(1024)
	if !errors.Is(err, ErrArgument) {
		t.Fatalf("expected ErrArgument, got %v", err)
	}
}

func TestStaticPartyKeySource_SkipsUnknownIDs(t *testing.T) {
	src := StaticPartyKeySource{Parties: map[string]PartyKey{
		"a": {ID: "a"},
	}}
	out, err := src.Resolve(nil, []string{"a", "ghost"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(out) != 1 || out[0].ID != "a" {
		t.Fatalf("expected only party a, got %v", out)
	}
}

func TestVerifyJWS(t *testing.T) {
	creator := newTestParty(t, "creator")
	alice := newTestParty(t, "alice")
	built := buildSimpleCapsa(t, creator, alice, false)

	canonical := canonicalStringOf(built.Envelope)
	sig := built.Envelope.Signature
	if !VerifyJWS(sig.Protected, sig.Payload, sig.Signature, canonical, &creator.priv.PublicKey) {
		t.Fatal("expected VerifyJWS to accept a valid signature")
	}
	if VerifyJWS(sig.Protected, sig.Payload, sig.Signature, canonical+"tampered", &creator.priv.PublicKey) {
		t.Fatal("expected VerifyJWS to reject a mismatched canonical string")
	}
}
