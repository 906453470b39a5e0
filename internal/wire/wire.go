// Package wire defines the JSON-serializable envelope types exchanged
// over the boundary, with field names fixed exactly as the wire format
// requires.
package wire

// Envelope is the top-level capsa record.
type Envelope struct {
	PackageID        string        `json:"packageId"`
	Keychain         Keychain      `json:"keychain"`
	Signature        Signature     `json:"signature"`
	AccessControl    AccessControl `json:"accessControl"`
	DeliveryPriority string        `json:"deliveryPriority"`
	Files            []FileEntry   `json:"files"`

	EncryptedSubject string `json:"encryptedSubject,omitempty"`
	SubjectIV        string `json:"subjectIV,omitempty"`
	SubjectAuthTag   string `json:"subjectAuthTag,omitempty"`

	EncryptedBody string `json:"encryptedBody,omitempty"`
	BodyIV        string `json:"bodyIV,omitempty"`
	BodyAuthTag   string `json:"bodyAuthTag,omitempty"`

	EncryptedStructured string `json:"encryptedStructured,omitempty"`
	StructuredIV        string `json:"structuredIV,omitempty"`
	StructuredAuthTag   string `json:"structuredAuthTag,omitempty"`

	Metadata *Metadata `json:"metadata,omitempty"`
}

// AccessControl carries capsa-level access constraints.
type AccessControl struct {
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// Keychain is the ordered set of wrapped-master-key entries.
type Keychain struct {
	Algorithm string          `json:"algorithm"`
	Keys      []KeychainEntry `json:"keys"`
}

// KeychainEntry grants one party access to the master key, directly or on
// behalf of others.
type KeychainEntry struct {
	Party        string   `json:"party"`
	EncryptedKey string   `json:"encryptedKey"`
	IV           string   `json:"iv"`
	Fingerprint  string   `json:"fingerprint"`
	Permissions  []string `json:"permissions"`
	ActingFor    []string `json:"actingFor,omitempty"`
	Revoked      bool     `json:"revoked,omitempty"`
}

// Signature is the detached RS256 JWS over the canonical string.
type Signature struct {
	Algorithm string `json:"algorithm"`
	Protected string `json:"protected"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// FileEntry describes one encrypted file attached to a capsa.
type FileEntry struct {
	FileID            string `json:"fileId"`
	EncryptedFilename string `json:"encryptedFilename"`
	FilenameIV        string `json:"filenameIV"`
	FilenameAuthTag   string `json:"filenameAuthTag"`
	IV                string `json:"iv"`
	AuthTag           string `json:"authTag"`
	Mimetype          string `json:"mimetype"`
	Size              int64  `json:"size"`
	Hash              string `json:"hash"`
	HashAlgorithm     string `json:"hashAlgorithm"`
	ExpiresAt         string `json:"expiresAt,omitempty"`

	Compressed           bool   `json:"compressed,omitempty"`
	CompressionAlgorithm string `json:"compressionAlgorithm,omitempty"`
	OriginalSize         int64  `json:"originalSize,omitempty"`
	Transform            string `json:"transform,omitempty"`
}

// Metadata is unencrypted bookkeeping attached to a capsa.
type Metadata struct {
	Label           string   `json:"label,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	RelatedPackages []string `json:"relatedPackages,omitempty"`
}
