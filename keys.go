package capsa

import (
	"context"
	"crypto/rand"
	"crypto/rsa"

	"github.com/tessarai/capsa-go/internal/jws"
	"github.com/tessarai/capsa-go/internal/keycodec"
)

// ProductionModulusBits is the modulus size GenerateKeyPair uses unless a
// caller explicitly requests a smaller one for tests.
const ProductionModulusBits = 4096

// KeyPair is a generated RSA key pair in the capsa textual-envelope form.
type KeyPair struct {
	PublicKeyPEM  string
	PrivateKeyPEM string
	Fingerprint   string
	Bits          int
}

// GenerateKeyPair generates an RSA key pair of the given modulus size.
// Production use calls GenerateKeyPair(ProductionModulusBits); smaller
// sizes down to 2048 are accepted for tests but rejected by every other
// component in this package that enforces keycodec.MinModulusBits.
func GenerateKeyPair(bits int) (KeyPair, error) {
	if bits < 2048 {
		return KeyPair{}, newErr(ErrArgument, "bits")
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return KeyPair{}, wrapErr(ErrIoError, "", err)
	}

	pubPEM, err := keycodec.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		return KeyPair{}, wrapErr(ErrIoError, "", err)
	}
	privPEM, err := keycodec.MarshalPrivateKey(priv)
	if err != nil {
		return KeyPair{}, wrapErr(ErrIoError, "", err)
	}
	fingerprint, err := keycodec.Fingerprint(&priv.PublicKey)
	if err != nil {
		return KeyPair{}, wrapErr(ErrIoError, "", err)
	}

	return KeyPair{
		PublicKeyPEM:  string(pubPEM),
		PrivateKeyPEM: string(privPEM),
		Fingerprint:   fingerprint,
		Bits:          priv.N.BitLen(),
	}, nil
}

// PartyKey is one party's resolved public key material, as returned by a
// PartyKeySource.
type PartyKey struct {
	ID          string
	PublicKey   string
	Fingerprint string
	// IsDelegate, when non-nil, lists the party IDs this party acts for.
	IsDelegate []string
}

// Limits bounds the size and count of a single build.
type Limits struct {
	MaxFileSize      int64
	MaxFilesPerCapsa int
	MaxTotalSize     int64
}

// DefaultLimits returns the default ceilings from the data model.
func DefaultLimits() Limits {
	const mib = 1 << 20
	return Limits{
		MaxFileSize:      100 * mib,
		MaxFilesPerCapsa: 100,
		MaxTotalSize:     500 * mib,
	}
}

// FileBlob pairs a file's ciphertext bytes with its file ID, for handoff
// to a BlobStore.
type FileBlob struct {
	FileID     string
	Ciphertext []byte
}

// PartyKeySource resolves party identifiers to their public key material.
// The builder passes the party ID list through unchanged; implementations
// silently skip entries they cannot resolve.
type PartyKeySource interface {
	Resolve(ctx context.Context, partyIDs []string) ([]PartyKey, error)
}

// LimitsSource returns the configured size/count ceilings for a build.
type LimitsSource interface {
	Limits(ctx context.Context) (Limits, error)
}

// BlobStore stores file ciphertexts out of band and returns retrieval
// URLs. The core never calls BlobStore itself; it is a convenience for
// callers wiring a BuiltCapsa to transport.
type BlobStore interface {
	Store(ctx context.Context, env *Envelope, blobs []FileBlob) error
	RetrievalURL(ctx context.Context, fileID string) (string, error)
}

// StaticLimitsSource implements LimitsSource by returning a fixed value,
// useful for tests and for callers without a server-provided limits
// endpoint.
type StaticLimitsSource struct {
	Value Limits
}

// Limits returns the fixed configured value.
func (s StaticLimitsSource) Limits(context.Context) (Limits, error) {
	return s.Value, nil
}

// StaticPartyKeySource implements PartyKeySource over a fixed, in-memory
// set of parties, useful for tests.
type StaticPartyKeySource struct {
	Parties map[string]PartyKey
}

// Resolve returns the subset of partyIDs present in the source's map, in
// the order requested. Unknown IDs are skipped.
func (s StaticPartyKeySource) Resolve(_ context.Context, partyIDs []string) ([]PartyKey, error) {
	out := make([]PartyKey, 0, len(partyIDs))
	for _, id := range partyIDs {
		if pk, ok := s.Parties[id]; ok {
			out = append(out, pk)
		}
	}
	return out, nil
}

// VerifyJWS is exposed for diagnostics: it verifies a detached RS256
// signature against a canonical string without requiring a full opener.
func VerifyJWS(protected, payload, signature, canonicalString string, pub *rsa.PublicKey) bool {
	signed := jws.Signed{Protected: protected, Payload: payload, Signature: signature}
	return jws.Verify(signed, canonicalString, pub) == nil
}
