package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStoreBlobs_EncodesCiphertext(t *testing.T) {
	t.Parallel()
	var gotReq storeBlobsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/capsas/capsa_abc/blobs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := fastRetryClient(t, server.URL)
	blobs := []FileBlob{{FileID: "file_1", Ciphertext: []byte("secret")}}
	if err := client.StoreBlobs(context.Background(), "capsa_abc", blobs); err != nil {
		t.Fatalf("StoreBlobs: %v", err)
	}

	if len(gotReq.Blobs) != 1 {
		t.Fatalf("expected 1 blob, got %d", len(gotReq.Blobs))
	}
	want := base64.StdEncoding.EncodeToString([]byte("secret"))
	if gotReq.Blobs[0].Ciphertext != want {
		t.Fatalf("expected ciphertext %q, got %q", want, gotReq.Blobs[0].Ciphertext)
	}
	if gotReq.Blobs[0].FileID != "file_1" {
		t.Fatalf("expected file ID file_1, got %q", gotReq.Blobs[0].FileID)
	}
}

func TestStoreBlobs_ConflictTreatedAsSuccess(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "blob already exists"})
	}))
	defer server.Close()

	client := fastRetryClient(t, server.URL)
	blobs := []FileBlob{{FileID: "file_1", Ciphertext: []byte("secret")}}
	if err := client.StoreBlobs(context.Background(), "capsa_abc", blobs); err != nil {
		t.Fatalf("expected a 409 conflict to be treated as success, got %v", err)
	}
}

func TestRetrievalURL(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/file_1/url" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(retrievalURLResponse{URL: "https://example.com/file_1"})
	}))
	defer server.Close()

	client := fastRetryClient(t, server.URL)
	url, err := client.RetrievalURL(context.Background(), "file_1")
	if err != nil {
		t.Fatalf("RetrievalURL: %v", err)
	}
	if url != "https://example.com/file_1" {
		t.Fatalf("expected URL https://example.com/file_1, got %q", url)
	}
}
