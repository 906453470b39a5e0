package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tessarai/capsa-go"
)

func TestPartyKeySourceAdapter_Resolve(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(resolvePartyKeysResponse{Parties: []PartyKeyRecord{
			{ID: "alice", PublicKey: "pem-alice", Fingerprint: "fp-alice"},
		}})
	}))
	defer server.Close()

	src := PartyKeySource{Client: fastRetryClient(t, server.URL)}
	var _ capsa.PartyKeySource = src

	keys, err := src.Resolve(context.Background(), []string{"alice"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(keys) != 1 || keys[0].ID != "alice" || keys[0].PublicKey != "pem-alice" {
		t.Fatalf("unexpected keys: %+v", keys)
	}
}

func TestBlobStoreAdapter_Store(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/capsas/capsa_xyz/blobs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	store := BlobStore{Client: fastRetryClient(t, server.URL)}
	var _ capsa.BlobStore = store

	env := &capsa.Envelope{PackageID: "capsa_xyz"}
	blobs := []capsa.FileBlob{{FileID: "file_1", Ciphertext: []byte("ct")}}
	if err := store.Store(context.Background(), env, blobs); err != nil {
		t.Fatalf("Store: %v", err)
	}
}
