// Command capsademo builds and opens a single capsa end to end, using
// freshly generated RSA key pairs, to exercise the library the way an
// integrator would. It is a demo, not a service: every key it touches is
// generated or loaded from local disk for the duration of one run.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tessarai/capsa-go"
	"github.com/tessarai/capsa-go/internal/keycodec"
	"github.com/tessarai/capsa-go/internal/transport"
)

func main() {
	if err := run(os.Args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "capsademo: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr *os.File) error {
	_ = godotenv.Load() // optional; absence is not an error for a demo run

	log := zerolog.New(stderr).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	creator, err := capsa.GenerateKeyPair(capsa.ProductionModulusBits)
	if err != nil {
		return fmt.Errorf("generate creator key pair: %w", err)
	}
	recipient, err := capsa.GenerateKeyPair(capsa.ProductionModulusBits)
	if err != nil {
		return fmt.Errorf("generate recipient key pair: %w", err)
	}
	log.Info().Str("creator_fingerprint", creator.Fingerprint).Str("recipient_fingerprint", recipient.Fingerprint).Msg("generated key pairs")

	creatorPriv, err := keycodec.ParsePrivateKey([]byte(creator.PrivateKeyPEM))
	if err != nil {
		return fmt.Errorf("parse creator private key: %w", err)
	}
	recipientPriv, err := keycodec.ParsePrivateKey([]byte(recipient.PrivateKeyPEM))
	if err != nil {
		return fmt.Errorf("parse recipient private key: %w", err)
	}
	creatorPub, err := keycodec.ParsePublicKey([]byte(creator.PublicKeyPEM))
	if err != nil {
		return fmt.Errorf("parse creator public key: %w", err)
	}

	keys := capsa.StaticPartyKeySource{Parties: map[string]capsa.PartyKey{
		"creator": {ID: "creator", PublicKey: creator.PublicKeyPEM, Fingerprint: creator.Fingerprint},
		"alice":   {ID: "alice", PublicKey: recipient.PublicKeyPEM, Fingerprint: recipient.Fingerprint},
	}}
	limits := capsa.StaticLimitsSource{Value: capsa.DefaultLimits()}

	builder, err := capsa.NewBuilder("creator")
	if err != nil {
		return fmt.Errorf("new builder: %w", err)
	}
	builder.SetSubject("Quarterly report")
	builder.SetBody("See attached for the full breakdown.")
	if err := builder.AddRecipient("alice"); err != nil {
		return fmt.Errorf("add recipient: %w", err)
	}
	if err := builder.AddFileBytes([]byte("quarter,revenue\nQ1,1000000\n"), "report.csv"); err != nil {
		return fmt.Errorf("add file: %w", err)
	}

	built, err := builder.Build(ctx, creatorPriv, []string{"creator", "alice"}, keys, limits)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	log.Info().Str("package_id", built.Envelope.PackageID).Int("files", len(built.Envelope.Files)).Msg("built capsa")

	if err := storeOverNetwork(ctx, log, built); err != nil {
		return fmt.Errorf("network blob store: %w", err)
	}

	opened, err := capsa.Open(built.Envelope, recipientPriv, "alice", creatorPub, true)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer opened.Close()

	fmt.Fprintf(stdout, "subject: %s\n", opened.Subject)
	fmt.Fprintf(stdout, "body: %s\n", opened.Body)
	for _, f := range built.Envelope.Files {
		name, err := opened.DecryptFilename(f.FileID)
		if err != nil {
			return fmt.Errorf("decrypt filename: %w", err)
		}
		var ciphertext []byte
		for _, b := range built.Blobs {
			if b.FileID == f.FileID {
				ciphertext = b.Ciphertext
			}
		}
		content, err := opened.DecryptFile(f.FileID, ciphertext)
		if err != nil {
			return fmt.Errorf("decrypt file: %w", err)
		}
		fmt.Fprintf(stdout, "file %s: %d bytes\n", name, len(content))
	}

	return nil
}

// networkClient builds a transport.Client from CAPSA_API_KEY/CAPSA_BASE_URL.
// Both are optional; ok is false and err is nil when CAPSA_API_KEY is unset,
// so a demo run with no backend configured proceeds using only local blobs.
func networkClient(log zerolog.Logger) (client *transport.Client, ok bool, err error) {
	apiKey := os.Getenv("CAPSA_API_KEY")
	if apiKey == "" {
		return nil, false, nil
	}
	c, err := transport.New(apiKey,
		transport.WithBaseURL(os.Getenv("CAPSA_BASE_URL")),
		transport.WithAuditLogger(transport.NewZerologAuditLogger(log)),
	)
	if err != nil {
		return nil, false, fmt.Errorf("new transport client: %w", err)
	}
	return c, true, nil
}

// storeOverNetwork uploads a built capsa's file blobs to a real backend
// through internal/transport, when one is configured. It is a no-op
// otherwise; the demo's own decryption step always reads from the blobs
// Build already returned in memory.
func storeOverNetwork(ctx context.Context, log zerolog.Logger, built *capsa.BuiltCapsa) error {
	client, ok, err := networkClient(log)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug().Msg("CAPSA_API_KEY not set; skipping network blob store")
		return nil
	}

	blobStore := transport.BlobStore{Client: client}
	if err := blobStore.Store(ctx, built.Envelope, built.Blobs); err != nil {
		return fmt.Errorf("store blobs: %w", err)
	}
	log.Info().Str("package_id", built.Envelope.PackageID).Msg("stored blobs over network")

	keySource := transport.PartyKeySource{Client: client}
	resolved, err := keySource.Resolve(ctx, []string{"creator", "alice"})
	if err != nil {
		return fmt.Errorf("resolve party keys: %w", err)
	}
	log.Info().Int("resolved", len(resolved)).Msg("resolved party keys over network")

	return nil
}
