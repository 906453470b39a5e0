// Package capsabuilder provides a chained, error-accumulating wrapper
// over capsa.Builder for callers who prefer assembling a capsa as one
// fluent expression instead of checking an error after every step.
package capsabuilder

import (
	"context"
	"crypto/rsa"
	"io"
	"time"

	"github.com/tessarai/capsa-go"
)

// Fluent wraps a capsa.Builder, deferring the first error it encounters
// until Build is called.
type Fluent struct {
	builder  *capsa.Builder
	partyIDs []string
	err      error
}

// NewEnvelope starts a fluent build for a capsa created by creatorID.
func NewEnvelope(creatorID string) *Fluent {
	b, err := capsa.NewBuilder(creatorID)
	return &Fluent{builder: b, err: err}
}

// Subject sets the plaintext subject line.
func (f *Fluent) Subject(subject string) *Fluent {
	if f.err != nil || f.builder == nil {
		return f
	}
	f.builder.SetSubject(subject)
	return f
}

// Body sets the plaintext body.
func (f *Fluent) Body(body string) *Fluent {
	if f.err != nil || f.builder == nil {
		return f
	}
	f.builder.SetBody(body)
	return f
}

// Structured sets the structured-data payload.
func (f *Fluent) Structured(data *capsa.StructuredData) *Fluent {
	if f.err != nil || f.builder == nil {
		return f
	}
	f.builder.SetStructured(data)
	return f
}

// ExpiresAt sets the capsa's access-control expiration.
func (f *Fluent) ExpiresAt(t time.Time) *Fluent {
	if f.err != nil || f.builder == nil {
		return f
	}
	f.builder.SetExpiration(t)
	return f
}

// Metadata sets the unencrypted metadata block.
func (f *Fluent) Metadata(m *capsa.Metadata) *Fluent {
	if f.err != nil || f.builder == nil {
		return f
	}
	f.builder.SetMetadata(m)
	return f
}

// AddFile attaches a file from an in-memory byte slice.
func (f *Fluent) AddFile(data []byte, filename string, opts ...capsa.FileOption) *Fluent {
	if f.err != nil || f.builder == nil {
		return f
	}
	f.err = f.builder.AddFileBytes(data, filename, opts...)
	return f
}

// AddFilePath attaches a file read from disk at build time.
func (f *Fluent) AddFilePath(path string, opts ...capsa.FileOption) *Fluent {
	if f.err != nil || f.builder == nil {
		return f
	}
	f.err = f.builder.AddFilePath(path, opts...)
	return f
}

// AddFileReader attaches a file fully read from r at build time.
func (f *Fluent) AddFileReader(r io.Reader, filename string, opts ...capsa.FileOption) *Fluent {
	if f.err != nil || f.builder == nil {
		return f
	}
	f.err = f.builder.AddFileReader(r, filename, opts...)
	return f
}

// To declares partyID as a recipient.
func (f *Fluent) To(partyID string, opts ...capsa.RecipientOption) *Fluent {
	if f.err != nil || f.builder == nil {
		return f
	}
	f.err = f.builder.AddRecipient(partyID, opts...)
	return f
}

// For records the full set of party IDs that must be resolved at build
// time: the creator, every declared recipient, and any delegates.
func (f *Fluent) For(partyIDs ...string) *Fluent {
	if f.err != nil || f.builder == nil {
		return f
	}
	f.partyIDs = partyIDs
	return f
}

// Build finalizes the chain: if any prior step failed, the builder (if
// one was created) is disposed and that error is returned. Otherwise it
// delegates to capsa.Builder.Build.
func (f *Fluent) Build(ctx context.Context, creatorPriv *rsa.PrivateKey, keys capsa.PartyKeySource, limits capsa.LimitsSource) (*capsa.BuiltCapsa, error) {
	if f.err != nil {
		if f.builder != nil {
			f.builder.Dispose()
		}
		return nil, f.err
	}
	return f.builder.Build(ctx, creatorPriv, f.partyIDs, keys, limits)
}

// Dispose zeroizes the underlying builder's master key without
// completing the build. Safe to call after Build.
func (f *Fluent) Dispose() {
	if f.builder != nil {
		f.builder.Dispose()
	}
}
