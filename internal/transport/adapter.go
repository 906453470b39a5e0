package transport

import (
	"context"

	"github.com/tessarai/capsa-go"
)

// PartyKeySource adapts Client to capsa.PartyKeySource, translating the
// wire-shaped PartyKeyRecord into the core's PartyKey type.
type PartyKeySource struct {
	Client *Client
}

// Resolve satisfies capsa.PartyKeySource.
func (s PartyKeySource) Resolve(ctx context.Context, partyIDs []string) ([]capsa.PartyKey, error) {
	records, err := s.Client.ResolvePartyKeys(ctx, partyIDs)
	if err != nil {
		return nil, err
	}
	out := make([]capsa.PartyKey, len(records))
	for i, r := range records {
		out[i] = capsa.PartyKey{
			ID:          r.ID,
			PublicKey:   r.PublicKey,
			Fingerprint: r.Fingerprint,
			IsDelegate:  r.IsDelegate,
		}
	}
	return out, nil
}

// BlobStore adapts Client to capsa.BlobStore.
type BlobStore struct {
	Client *Client
}

// Store satisfies capsa.BlobStore by uploading every file blob for the
// envelope's package ID.
func (s BlobStore) Store(ctx context.Context, env *capsa.Envelope, blobs []capsa.FileBlob) error {
	converted := make([]FileBlob, len(blobs))
	for i, b := range blobs {
		converted[i] = FileBlob{FileID: b.FileID, Ciphertext: b.Ciphertext}
	}
	return s.Client.StoreBlobs(ctx, env.PackageID, converted)
}

// RetrievalURL satisfies capsa.BlobStore.
func (s BlobStore) RetrievalURL(ctx context.Context, fileID string) (string, error) {
	return s.Client.RetrievalURL(ctx, fileID)
}
