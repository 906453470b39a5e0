package capsabuilder

import (
	"context"
	"testing"

	"github.com/tessarai/capsa-go"
)

func TestNewEnvelope_EmptyCreatorIDPropagatesError(t *testing.T) {
	t.Parallel()
	f := NewEnvelope("")
	_, err := f.Subject("hi").Build(context.Background(), nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for empty creator ID")
	}
}

func TestAddFile_EmptyFilenamePropagatesError(t *testing.T) {
	t.Parallel()
	f := NewEnvelope("creator").AddFile([]byte("data"), "")
	_, err := f.Build(context.Background(), nil, nil, capsa.StaticLimitsSource{Value: capsa.DefaultLimits()})
	if err == nil {
		t.Fatal("expected error for empty filename")
	}
}

func TestChainStopsAfterFirstError(t *testing.T) {
	t.Parallel()
	f := NewEnvelope("creator").
		AddFile([]byte("data"), "").
		Subject("should not panic").
		To("party1")
	if f.err == nil {
		t.Fatal("expected the first error to stick")
	}
}
