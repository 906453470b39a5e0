package transport

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// FileBlob is a single file's ciphertext bytes keyed by file ID, as produced
// by the capsa builder for out-of-band storage.
type FileBlob struct {
	FileID     string
	Ciphertext []byte
}

// StoreBlobs uploads the ciphertext blobs for a built capsa. The envelope
// itself (metadata, keychain, signature) is assumed to have already been
// (or will separately be) persisted by the caller; this call only moves the
// opaque file bytes.
//
// A 409 response (ErrBlobConflict) is swallowed rather than returned: a
// capsa's file IDs are generated once at build time and never reused, so a
// conflict here means a prior call already stored this exact blob and the
// retry loop's success response was lost, not that two different files are
// fighting over one ID.
func (c *Client) StoreBlobs(ctx context.Context, packageID string, blobs []FileBlob) error {
	req := storeBlobsRequest{Blobs: make([]blobRecord, 0, len(blobs))}
	for _, b := range blobs {
		req.Blobs = append(req.Blobs, blobRecord{
			FileID:     b.FileID,
			Ciphertext: base64.StdEncoding.EncodeToString(b.Ciphertext),
		})
	}

	path := fmt.Sprintf("/capsas/%s/blobs", packageID)
	err := c.Do(ctx, "POST", path, req, nil)
	if errors.Is(err, ErrBlobConflict) {
		return nil
	}
	return err
}

// RetrievalURL returns a signed retrieval URL for a previously stored file.
func (c *Client) RetrievalURL(ctx context.Context, fileID string) (string, error) {
	var resp retrievalURLResponse
	path := fmt.Sprintf("/files/%s/url", fileID)
	if err := c.Do(ctx, "GET", path, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
