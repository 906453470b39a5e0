// Package canon builds the pipe-delimited canonical string that a capsa's
// JWS signature is computed over.
package canon

import (
	"strconv"
	"strings"
)

// Version is the literal protocol version field in every canonical
// string.
const Version = "1.0.0"

// Algorithm is the literal algorithm field in every canonical string.
const Algorithm = "AES-256-GCM"

// FileFields holds the per-file values that contribute to the canonical
// string, in the order files appear in the capsa.
type FileFields struct {
	ContentHash string
	ContentIV   string
	FilenameIV  string
}

// Input collects every field the canonical string is built from.
type Input struct {
	PackageID    string
	TotalSize    int64
	Files        []FileFields
	StructuredIV string
	SubjectIV    string
	BodyIV       string
}

// Build produces the pipe-joined canonical string for in. Optional IVs are
// included only when non-empty; omitted fields are absent entirely, not
// represented as empty segments.
func Build(in Input) string {
	var parts []string
	parts = append(parts, in.PackageID, Version, strconv.FormatInt(in.TotalSize, 10), Algorithm)

	for _, f := range in.Files {
		parts = append(parts, f.ContentHash)
	}
	for _, f := range in.Files {
		parts = append(parts, f.ContentIV)
	}
	for _, f := range in.Files {
		parts = append(parts, f.FilenameIV)
	}

	if in.StructuredIV != "" {
		parts = append(parts, in.StructuredIV)
	}
	if in.SubjectIV != "" {
		parts = append(parts, in.SubjectIV)
	}
	if in.BodyIV != "" {
		parts = append(parts, in.BodyIV)
	}

	return strings.Join(parts, "|")
}
