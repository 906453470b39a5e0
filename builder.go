package capsa

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tessarai/capsa-go/internal/aesgcm"
	"github.com/tessarai/capsa-go/internal/canon"
	"github.com/tessarai/capsa-go/internal/digest"
	"github.com/tessarai/capsa-go/internal/gzipx"
	"github.com/tessarai/capsa-go/internal/idgen"
	"github.com/tessarai/capsa-go/internal/jws"
	"github.com/tessarai/capsa-go/internal/keycodec"
	"github.com/tessarai/capsa-go/internal/mimetype"
	"github.com/tessarai/capsa-go/internal/random"
	"github.com/tessarai/capsa-go/internal/rsaoaep"
)

const (
	maxSubjectChars    = 65536
	maxBodyChars       = 1 << 20
	maxStructuredChars = 1 << 20
	maxFilenameChars   = 2048
	maxPayloadChars    = 65536
	maxKeychainEntries = 100
	maxActingFor       = 10
	maxPartyIDChars    = 100

	maxMetadataLabelChars = 512
	maxMetadataTags       = 100
	maxMetadataTagChars   = 100
	maxMetadataNotesChars = 10240
	maxRelatedPackages    = 50
)

type fileKind int

const (
	fileKindBytes fileKind = iota
	fileKindPath
	fileKindStream
)

type fileInput struct {
	kind      fileKind
	data      []byte
	path      string
	reader    io.Reader
	filename  string
	mimetype  string
	expiresAt *time.Time
	transform string
	compress  *bool
}

// FileOption customizes one file added to a Builder.
type FileOption func(*fileInput)

// WithFileMimetype overrides automatic MIME-type detection for this file.
func WithFileMimetype(mt string) FileOption {
	return func(f *fileInput) { f.mimetype = mt }
}

// WithFileExpiration sets a per-file expiration, rounded down to the
// minute on build.
func WithFileExpiration(t time.Time) FileOption {
	return func(f *fileInput) { f.expiresAt = &t }
}

// WithFileTransform attaches an opaque transform reference to this file.
func WithFileTransform(ref string) FileOption {
	return func(f *fileInput) { f.transform = ref }
}

// WithFileCompress overrides the default compress-when-beneficial
// behavior for this file.
func WithFileCompress(compress bool) FileOption {
	return func(f *fileInput) { f.compress = &compress }
}

type recipientSpec struct {
	partyID     string
	permissions []string
	actingFor   []string
}

// RecipientOption customizes one recipient added to a Builder.
type RecipientOption func(*recipientSpec)

// WithRecipientActingFor marks this recipient as also acting for the
// given party IDs. The list is written unchanged into this recipient's
// keychain entry; delegates resolved at build time get entries of their
// own and are not merged into it.
func WithRecipientActingFor(partyIDs ...string) RecipientOption {
	return func(r *recipientSpec) { r.actingFor = partyIDs }
}

// Builder assembles one capsa. It owns exactly one freshly generated
// master key, held until Build (or disposal) zeroizes it. A Builder must
// not be reused after Build returns or after Dispose is called.
type Builder struct {
	creatorID string
	masterKey *random.SecureBuffer
	disposed  bool

	subject    string
	body       string
	structured *StructuredData
	expiresAt  *time.Time

	recipients []recipientSpec
	files      []fileInput
	metadata   *Metadata
}

// NewBuilder creates a Builder that will act as creatorID, generating a
// fresh master key immediately.
func NewBuilder(creatorID string) (*Builder, error) {
	if creatorID == "" {
		return nil, newErr(ErrArgument, "creatorID")
	}
	if len(creatorID) > maxPartyIDChars {
		return nil, newErr(ErrLimitExceeded, "partyId")
	}
	key, err := random.MasterKey()
	if err != nil {
		return nil, wrapErr(ErrIoError, "masterKey", err)
	}
	return &Builder{
		creatorID: creatorID,
		masterKey: random.NewSecureBuffer(key),
	}, nil
}

// Dispose zeroizes the master key. It is safe to call multiple times and
// must be called on every exit path that does not reach Build, including
// cancellation.
func (b *Builder) Dispose() {
	if b.disposed {
		return
	}
	b.masterKey.Zeroize()
	b.disposed = true
}

// SetSubject sets the plaintext subject line.
func (b *Builder) SetSubject(subject string) *Builder {
	b.subject = subject
	return b
}

// SetBody sets the plaintext body.
func (b *Builder) SetBody(body string) *Builder {
	b.body = body
	return b
}

// SetStructured sets the structured-data payload.
func (b *Builder) SetStructured(data *StructuredData) *Builder {
	b.structured = data
	return b
}

// SetExpiration sets the capsa's access-control expiration.
func (b *Builder) SetExpiration(t time.Time) *Builder {
	b.expiresAt = &t
	return b
}

// SetMetadata sets the unencrypted metadata block.
func (b *Builder) SetMetadata(m *Metadata) *Builder {
	b.metadata = m
	return b
}

// AddRecipient declares partyID as a recipient with read permission.
// Options set the recipient's acting-for list; none changes its
// permissions.
func (b *Builder) AddRecipient(partyID string, opts ...RecipientOption) error {
	if len(b.recipients) >= maxKeychainEntries-1 {
		return newErr(ErrLimitExceeded, "recipients")
	}
	if len(partyID) > maxPartyIDChars {
		return newErr(ErrLimitExceeded, "partyId")
	}
	spec := recipientSpec{partyID: partyID, permissions: []string{"read"}}
	for _, opt := range opts {
		opt(&spec)
	}
	if len(spec.actingFor) > maxActingFor {
		return newErr(ErrLimitExceeded, "actingFor")
	}
	b.recipients = append(b.recipients, spec)
	return nil
}

// AddFileBytes adds a file from an in-memory byte slice.
func (b *Builder) AddFileBytes(data []byte, filename string, opts ...FileOption) error {
	f := fileInput{kind: fileKindBytes, data: data, filename: filename}
	for _, opt := range opts {
		opt(&f)
	}
	return b.addFile(f)
}

// AddFilePath adds a file read from a filesystem path at build time.
func (b *Builder) AddFilePath(path string, opts ...FileOption) error {
	f := fileInput{kind: fileKindPath, path: path, filename: filepath.Base(path)}
	for _, opt := range opts {
		opt(&f)
	}
	return b.addFile(f)
}

// AddFileReader adds a file whose content is read, fully, from r at build
// time.
func (b *Builder) AddFileReader(r io.Reader, filename string, opts ...FileOption) error {
	f := fileInput{kind: fileKindStream, reader: r, filename: filename}
	for _, opt := range opts {
		opt(&f)
	}
	return b.addFile(f)
}

func (b *Builder) addFile(f fileInput) error {
	if f.filename == "" {
		return newErr(ErrArgument, "filename")
	}
	b.files = append(b.files, f)
	return nil
}

// BuiltCapsa is the output of a successful Build: the envelope ready for
// transport, and the file ciphertexts it references, kept apart from the
// envelope because they are handed to a BlobStore rather than embedded.
type BuiltCapsa struct {
	Envelope *Envelope
	Blobs    []FileBlob
}

// Build runs the deterministic build algorithm: it reads every added
// file, compresses and encrypts each field under the builder's master
// key, wraps the master key for every resolved party, canonicalizes and
// signs the result, and audits global IV uniqueness before returning.
// The master key is zeroized unconditionally when Build returns,
// regardless of outcome.
// partyIDs is the full, caller-supplied list of party identifiers to
// resolve through keys: the creator, every declared recipient, and any
// delegates that should be considered for inclusion even though they
// were never added via AddRecipient. Entries AddRecipient did not see
// are still eligible as delegates if a resolved record's IsDelegate
// intersects the recipient set.
func (b *Builder) Build(ctx context.Context, creatorPriv *rsa.PrivateKey, partyIDs []string, keys PartyKeySource, limitsSrc LimitsSource) (*BuiltCapsa, error) {
	if b.disposed {
		return nil, newErr(ErrDisposed, "")
	}
	defer b.Dispose()

	if len(b.files) == 0 && b.subject == "" && b.body == "" {
		return nil, newErr(ErrEmpty, "")
	}

	if err := validateMetadata(b.metadata); err != nil {
		return nil, err
	}

	masterKey, err := b.masterKey.Bytes()
	if err != nil {
		return nil, wrapErr(ErrDisposed, "masterKey", err)
	}

	limits, err := limitsSrc.Limits(ctx)
	if err != nil {
		return nil, wrapErr(ErrIoError, "limits", err)
	}

	packageID, err := idgen.PackageID()
	if err != nil {
		return nil, wrapErr(ErrIoError, "packageID", err)
	}

	allIVs := make(map[string]struct{})
	addIV := func(iv string) error {
		if _, dup := allIVs[iv]; dup {
			return newErr(ErrCsprngFault, "")
		}
		allIVs[iv] = struct{}{}
		return nil
	}

	if len(b.files) > limits.MaxFilesPerCapsa {
		return nil, newErr(ErrLimitExceeded, "files")
	}

	var totalSize int64
	entries := make([]wireFileBuild, 0, len(b.files))
	blobs := make([]FileBlob, 0, len(b.files))

	for _, f := range b.files {
		plaintext, err := readFileInput(f)
		if err != nil {
			return nil, wrapErr(ErrIoError, "file", err)
		}
		if int64(len(plaintext)) > limits.MaxFileSize {
			return nil, newErr(ErrLimitExceeded, "fileSize")
		}

		wantCompress := gzipx.ShouldCompress(len(plaintext))
		if f.compress != nil {
			wantCompress = *f.compress
		}
		contentPlain := plaintext
		var compressed bool
		var originalSize int64
		if wantCompress {
			res, err := gzipx.CompressIfBeneficial(plaintext)
			if err != nil {
				return nil, wrapErr(ErrIoError, "compress", err)
			}
			if res.Compressed {
				contentPlain = res.Data
				compressed = true
				originalSize = int64(res.OriginalSize)
			}
		}

		contentIV, err := random.IV()
		if err != nil {
			return nil, wrapErr(ErrIoError, "iv", err)
		}
		ciphertext, tag, err := aesgcm.Encrypt(contentPlain, masterKey, contentIV)
		if err != nil {
			return nil, wrapErr(ErrArgument, "content", err)
		}
		totalSize += int64(len(ciphertext))
		if totalSize > limits.MaxTotalSize {
			return nil, newErr(ErrLimitExceeded, "totalSize")
		}
		hash := digest.SHA256Hex(ciphertext)

		filenameIV, err := random.IV()
		if err != nil {
			return nil, wrapErr(ErrIoError, "iv", err)
		}
		fnCiphertext, fnTag, err := aesgcm.Encrypt([]byte(f.filename), masterKey, filenameIV)
		if err != nil {
			return nil, wrapErr(ErrArgument, "filename", err)
		}
		if len(encodeB64(fnCiphertext)) > maxFilenameChars {
			return nil, newErr(ErrLimitExceeded, "encryptedFilename")
		}

		mt := f.mimetype
		if mt == "" {
			mt = mimetype.Detect(f.filename)
		}

		fileID, err := idgen.FileID()
		if err != nil {
			return nil, wrapErr(ErrIoError, "fileID", err)
		}

		if err := addIV(encodeIV(contentIV)); err != nil {
			return nil, err
		}
		if err := addIV(encodeIV(filenameIV)); err != nil {
			return nil, err
		}

		entry := FileEntry{
			FileID:                fileID,
			EncryptedFilename:     encodeB64(fnCiphertext),
			FilenameIV:            encodeIV(filenameIV),
			FilenameAuthTag:       encodeB64(fnTag),
			IV:                    encodeIV(contentIV),
			AuthTag:               encodeB64(tag),
			Mimetype:              mt,
			Size:                  int64(len(ciphertext)),
			Hash:                  hash,
			HashAlgorithm:         "SHA-256",
			Compressed:            compressed,
			Transform:             f.transform,
		}
		if compressed {
			entry.CompressionAlgorithm = "gzip"
			entry.OriginalSize = originalSize
		}
		if f.expiresAt != nil {
			entry.ExpiresAt = f.expiresAt.UTC().Truncate(time.Minute).Format(time.RFC3339)
		}

		entries = append(entries, wireFileBuild{entry: entry, hash: hash, contentIV: entry.IV, filenameIV: entry.FilenameIV})
		blobs = append(blobs, FileBlob{FileID: fileID, Ciphertext: ciphertext})
	}

	var subjectIV, bodyIV, structuredIV string
	var encSubject, encBody, encStructured string
	var subjectTag, bodyTag, structuredTag string

	if b.subject != "" {
		iv, err := random.IV()
		if err != nil {
			return nil, wrapErr(ErrIoError, "iv", err)
		}
		ct, tag, err := aesgcm.Encrypt([]byte(b.subject), masterKey, iv)
		if err != nil {
			return nil, wrapErr(ErrArgument, "subject", err)
		}
		encSubject = encodeB64(ct)
		if len(encSubject) > maxSubjectChars {
			return nil, newErr(ErrLimitExceeded, "subject")
		}
		subjectIV = encodeIV(iv)
		if err := addIV(subjectIV); err != nil {
			return nil, err
		}
		subjectTag = encodeB64(tag)
	}

	if b.body != "" {
		iv, err := random.IV()
		if err != nil {
			return nil, wrapErr(ErrIoError, "iv", err)
		}
		ct, tag, err := aesgcm.Encrypt([]byte(b.body), masterKey, iv)
		if err != nil {
			return nil, wrapErr(ErrArgument, "body", err)
		}
		encBody = encodeB64(ct)
		if len(encBody) > maxBodyChars {
			return nil, newErr(ErrLimitExceeded, "body")
		}
		bodyIV = encodeIV(iv)
		if err := addIV(bodyIV); err != nil {
			return nil, err
		}
		bodyTag = encodeB64(tag)
	}

	if b.structured != nil && b.structured.Len() > 0 {
		raw, err := json.Marshal(b.structured)
		if err != nil {
			return nil, wrapErr(ErrArgument, "structured", err)
		}
		iv, err := random.IV()
		if err != nil {
			return nil, wrapErr(ErrIoError, "iv", err)
		}
		ct, tag, err := aesgcm.Encrypt(raw, masterKey, iv)
		if err != nil {
			return nil, wrapErr(ErrArgument, "structured", err)
		}
		encStructured = encodeB64(ct)
		if len(encStructured) > maxStructuredChars {
			return nil, newErr(ErrLimitExceeded, "structured")
		}
		structuredIV = encodeIV(iv)
		if err := addIV(structuredIV); err != nil {
			return nil, err
		}
		structuredTag = encodeB64(tag)
	}

	recipientSet := make(map[string]recipientSpec, len(b.recipients))
	for _, r := range b.recipients {
		recipientSet[r.partyID] = r
	}

	resolved, err := keys.Resolve(ctx, partyIDs)
	if err != nil {
		return nil, wrapErr(ErrIoError, "partyKeys", err)
	}

	recipientIDSet := make(map[string]struct{}, len(b.recipients))
	for _, r := range b.recipients {
		recipientIDSet[r.partyID] = struct{}{}
	}

	directRecipient := make(map[string]struct{}, len(b.recipients))
	actingForUnion := make(map[string]struct{})

	keychainEntries := make([]KeychainEntry, 0, len(resolved))
	for _, pk := range resolved {
		if len(pk.IsDelegate) > 0 {
			actingFor := intersect(pk.IsDelegate, recipientIDSet)
			if len(actingFor) == 0 {
				continue
			}
			if len(actingFor) > maxActingFor {
				actingFor = actingFor[:maxActingFor]
			}
			entry, iv, err := wrapForParty(pk, masterKey, []string{"delegate"}, actingFor)
			if err != nil {
				return nil, err
			}
			if err := addIV(iv); err != nil {
				return nil, err
			}
			keychainEntries = append(keychainEntries, entry)
			for _, recipientID := range actingFor {
				actingForUnion[recipientID] = struct{}{}
			}
			continue
		}

		if pk.ID == b.creatorID {
			entry, iv, err := wrapForParty(pk, masterKey, []string{}, nil)
			if err != nil {
				return nil, err
			}
			if err := addIV(iv); err != nil {
				return nil, err
			}
			keychainEntries = append(keychainEntries, entry)
			continue
		}

		if spec, ok := recipientSet[pk.ID]; ok {
			entry, iv, err := wrapForParty(pk, masterKey, spec.permissions, spec.actingFor)
			if err != nil {
				return nil, err
			}
			if err := addIV(iv); err != nil {
				return nil, err
			}
			keychainEntries = append(keychainEntries, entry)
			directRecipient[pk.ID] = struct{}{}
			continue
		}
		// Otherwise skip: not the creator, not a declared recipient,
		// not a delegate acting for any declared recipient.
	}

	// Recipients with no resolvable public key of their own, reachable only
	// through a delegate's acting_for, still get a keychain entry: empty
	// encrypted_key, so the opener can locate them by party or acting_for
	// and report NotInKeychain rather than silently dropping the recipient.
	for _, r := range b.recipients {
		if _, ok := directRecipient[r.partyID]; ok {
			continue
		}
		if _, ok := actingForUnion[r.partyID]; !ok {
			continue
		}
		iv, err := random.IV()
		if err != nil {
			return nil, wrapErr(ErrIoError, "iv", err)
		}
		ivEnc := encodeIV(iv)
		if err := addIV(ivEnc); err != nil {
			return nil, err
		}
		keychainEntries = append(keychainEntries, KeychainEntry{
			Party:       r.partyID,
			Permissions: r.permissions,
			ActingFor:   r.actingFor,
			IV:          ivEnc,
		})
	}

	if len(keychainEntries) == 0 || len(keychainEntries) > maxKeychainEntries {
		return nil, newErr(ErrLimitExceeded, "keychain")
	}

	files := make([]canon.FileFields, len(entries))
	wireFiles := make([]FileEntry, len(entries))
	for i, e := range entries {
		files[i] = canon.FileFields{ContentHash: e.hash, ContentIV: e.contentIV, FilenameIV: e.filenameIV}
		wireFiles[i] = e.entry
	}

	canonicalString := canon.Build(canon.Input{
		PackageID:    packageID,
		TotalSize:    totalSize,
		Files:        files,
		StructuredIV: structuredIV,
		SubjectIV:    subjectIV,
		BodyIV:       bodyIV,
	})
	if len(canonicalString) > maxPayloadChars {
		return nil, newErr(ErrLimitExceeded, "payload")
	}

	signed, err := jws.Sign(canonicalString, creatorPriv)
	if err != nil {
		return nil, wrapErr(ErrArgument, "signature", err)
	}

	var accessControl AccessControl
	if b.expiresAt != nil {
		accessControl.ExpiresAt = b.expiresAt.UTC().Truncate(time.Minute).Format(time.RFC3339)
	}

	env := &Envelope{
		PackageID: packageID,
		Keychain:  Keychain{Algorithm: keychainAlgorithm, Keys: keychainEntries},
		Signature: Signature{
			Algorithm: signatureAlgorithm,
			Protected: signed.Protected,
			Payload:   signed.Payload,
			Signature: signed.Signature,
		},
		AccessControl:       accessControl,
		DeliveryPriority:    deliveryPriority,
		Files:               wireFiles,
		EncryptedSubject:    encSubject,
		SubjectIV:           subjectIV,
		SubjectAuthTag:      subjectTag,
		EncryptedBody:       encBody,
		BodyIV:              bodyIV,
		BodyAuthTag:         bodyTag,
		EncryptedStructured: encStructured,
		StructuredIV:        structuredIV,
		StructuredAuthTag:   structuredTag,
		Metadata:            b.metadata,
	}

	return &BuiltCapsa{Envelope: env, Blobs: blobs}, nil
}

// validateMetadata enforces the size bounds on the unencrypted metadata
// block. A nil metadata is valid; it simply carries nothing.
func validateMetadata(m *Metadata) error {
	if m == nil {
		return nil
	}
	if len(m.Label) > maxMetadataLabelChars {
		return newErr(ErrLimitExceeded, "label")
	}
	if len(m.Tags) > maxMetadataTags {
		return newErr(ErrLimitExceeded, "tags")
	}
	for _, tag := range m.Tags {
		if len(tag) > maxMetadataTagChars {
			return newErr(ErrLimitExceeded, "tags")
		}
	}
	if len(m.Notes) > maxMetadataNotesChars {
		return newErr(ErrLimitExceeded, "notes")
	}
	if len(m.RelatedPackages) > maxRelatedPackages {
		return newErr(ErrLimitExceeded, "relatedPackages")
	}
	return nil
}

type wireFileBuild struct {
	entry      FileEntry
	hash       string
	contentIV  string
	filenameIV string
}

func wrapForParty(pk PartyKey, masterKey []byte, permissions, actingFor []string) (KeychainEntry, string, error) {
	pub, err := keycodec.ParsePublicKey([]byte(pk.PublicKey))
	if err != nil {
		return KeychainEntry{}, "", wrapErr(ErrMalformedInput, "publicKey", err)
	}
	wrapped, err := rsaoaep.Wrap(masterKey, pub)
	if err != nil {
		return KeychainEntry{}, "", wrapErr(ErrArgument, "wrap", err)
	}
	iv, err := random.IV()
	if err != nil {
		return KeychainEntry{}, "", wrapErr(ErrIoError, "iv", err)
	}
	ivEnc := encodeIV(iv)
	fingerprint := pk.Fingerprint
	if fingerprint == "" {
		fingerprint, err = keycodec.Fingerprint(pub)
		if err != nil {
			return KeychainEntry{}, "", wrapErr(ErrIoError, "fingerprint", err)
		}
	}
	return KeychainEntry{
		Party:        pk.ID,
		EncryptedKey: wrapped,
		IV:           ivEnc,
		Fingerprint:  fingerprint,
		Permissions:  permissions,
		ActingFor:    actingFor,
	}, ivEnc, nil
}

func intersect(a []string, set map[string]struct{}) []string {
	out := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

func readFileInput(f fileInput) ([]byte, error) {
	switch f.kind {
	case fileKindBytes:
		return f.data, nil
	case fileKindPath:
		return os.ReadFile(f.path)
	case fileKindStream:
		return io.ReadAll(f.reader)
	default:
		return nil, fmt.Errorf("unknown file source kind %d", f.kind)
	}
}
