package capsa

import (
	"crypto/rsa"
	"encoding/json"

	"github.com/tessarai/capsa-go/internal/aesgcm"
	"github.com/tessarai/capsa-go/internal/canon"
	"github.com/tessarai/capsa-go/internal/gzipx"
	"github.com/tessarai/capsa-go/internal/jws"
	"github.com/tessarai/capsa-go/internal/random"
	"github.com/tessarai/capsa-go/internal/rsaoaep"
)

// OpenedCapsa is a scoped handle over a recovered master key. Close (and
// any access after Close) follows a one-way Open -> Closed transition:
// metadata stays readable after Close, but the master key and anything
// requiring it do not.
type OpenedCapsa struct {
	masterKey *random.SecureBuffer

	Subject    string
	Body       string
	Structured map[string]any
	Files      []FileEntry
}

// Open recovers an OpenedCapsa from env using recipientPriv. When
// verifySignature is true, creatorPub is required and the envelope's
// detached signature must verify against the canonical string
// reconstructed from env before anything else proceeds. partyID, when
// non-empty, selects a specific keychain entry by party identifier or by
// membership in an entry's ActingFor list; when empty, the first entry
// with a usable wrapped key is selected.
func Open(env *Envelope, recipientPriv *rsa.PrivateKey, partyID string, creatorPub *rsa.PublicKey, verifySignature bool) (*OpenedCapsa, error) {
	if verifySignature {
		if creatorPub == nil {
			return nil, newErr(ErrConfigurationError, "creatorPub")
		}
		canonicalString := canonicalStringOf(env)
		signed := jws.Signed{
			Protected: env.Signature.Protected,
			Payload:   env.Signature.Payload,
			Signature: env.Signature.Signature,
		}
		if err := jws.Verify(signed, canonicalString, creatorPub); err != nil {
			return nil, newErr(ErrSignatureInvalid, "")
		}
	}

	entry, err := selectKeychainEntry(env, partyID)
	if err != nil {
		return nil, err
	}
	if entry.EncryptedKey == "" {
		return nil, newErr(ErrNotInKeychain, "")
	}

	masterKey, err := rsaoaep.Unwrap(entry.EncryptedKey, recipientPriv)
	if err != nil {
		return nil, newErr(ErrInvalidMasterKey, "")
	}
	if len(masterKey) != random.MasterKeySize {
		random.Zeroize(masterKey)
		return nil, newErr(ErrInvalidMasterKey, "")
	}

	opened := &OpenedCapsa{
		masterKey: random.NewSecureBuffer(masterKey),
		Files:     env.Files,
	}

	if env.EncryptedSubject != "" && env.SubjectIV != "" && env.SubjectAuthTag != "" {
		plain, err := decryptField(masterKey, env.EncryptedSubject, env.SubjectIV, env.SubjectAuthTag)
		if err != nil {
			opened.Close()
			return nil, newErr(ErrAuthenticationFailed, "subject")
		}
		opened.Subject = string(plain)
	}

	if env.EncryptedBody != "" && env.BodyIV != "" && env.BodyAuthTag != "" {
		plain, err := decryptField(masterKey, env.EncryptedBody, env.BodyIV, env.BodyAuthTag)
		if err != nil {
			opened.Close()
			return nil, newErr(ErrAuthenticationFailed, "body")
		}
		opened.Body = string(plain)
	}

	if env.EncryptedStructured != "" && env.StructuredIV != "" && env.StructuredAuthTag != "" {
		plain, err := decryptField(masterKey, env.EncryptedStructured, env.StructuredIV, env.StructuredAuthTag)
		if err != nil {
			opened.Close()
			return nil, newErr(ErrAuthenticationFailed, "structured")
		}
		var m map[string]any
		if err := json.Unmarshal(plain, &m); err != nil {
			opened.Close()
			return nil, wrapErr(ErrMalformedInput, "structured", err)
		}
		opened.Structured = m
	}

	return opened, nil
}

func selectKeychainEntry(env *Envelope, partyID string) (KeychainEntry, error) {
	if partyID != "" {
		for _, e := range env.Keychain.Keys {
			if e.Party == partyID {
				return e, nil
			}
		}
		for _, e := range env.Keychain.Keys {
			for _, a := range e.ActingFor {
				if a == partyID {
					return e, nil
				}
			}
		}
		return KeychainEntry{}, newErr(ErrNotInKeychain, "partyID")
	}

	for _, e := range env.Keychain.Keys {
		if e.EncryptedKey != "" {
			return e, nil
		}
	}
	if len(env.Keychain.Keys) > 0 {
		return env.Keychain.Keys[0], nil
	}
	return KeychainEntry{}, newErr(ErrNotInKeychain, "")
}

func decryptField(masterKey []byte, ciphertextB64, ivB64, tagB64 string) ([]byte, error) {
	ciphertext, err := decodeB64(ciphertextB64)
	if err != nil {
		return nil, err
	}
	iv, err := decodeB64(ivB64)
	if err != nil {
		return nil, err
	}
	tag, err := decodeB64(tagB64)
	if err != nil {
		return nil, err
	}
	return aesgcm.Decrypt(ciphertext, masterKey, iv, tag)
}

// GetMasterKey returns a fresh copy of the master key. It fails once the
// handle is closed.
func (o *OpenedCapsa) GetMasterKey() ([]byte, error) {
	key, err := o.masterKey.Bytes()
	if err != nil {
		return nil, newErr(ErrDisposed, "")
	}
	out := make([]byte, len(key))
	copy(out, key)
	return out, nil
}

// DecryptFile decrypts the content of the file identified by fileID,
// gunzipping first if it was marked compressed. The authentication tag
// must be present; a missing or empty tag is rejected before the
// ciphertext is touched.
func (o *OpenedCapsa) DecryptFile(fileID string, ciphertext []byte) ([]byte, error) {
	entry, err := o.findFile(fileID)
	if err != nil {
		return nil, err
	}
	if entry.AuthTag == "" {
		return nil, newErr(ErrAuthenticationFailed, "authTag")
	}
	masterKey, err := o.masterKey.Bytes()
	if err != nil {
		return nil, newErr(ErrDisposed, "")
	}

	iv, err := decodeB64(entry.IV)
	if err != nil {
		return nil, wrapErr(ErrMalformedInput, "iv", err)
	}
	tag, err := decodeB64(entry.AuthTag)
	if err != nil {
		return nil, wrapErr(ErrMalformedInput, "authTag", err)
	}
	plain, err := aesgcm.Decrypt(ciphertext, masterKey, iv, tag)
	if err != nil {
		return nil, newErr(ErrAuthenticationFailed, "content")
	}
	if entry.Compressed {
		plain, err = gzipx.Decompress(plain)
		if err != nil {
			return nil, wrapErr(ErrMalformedInput, "compressed", err)
		}
	}
	return plain, nil
}

// DecryptFilename decrypts the filename of the file identified by
// fileID.
func (o *OpenedCapsa) DecryptFilename(fileID string) (string, error) {
	entry, err := o.findFile(fileID)
	if err != nil {
		return "", err
	}
	if entry.FilenameAuthTag == "" {
		return "", newErr(ErrAuthenticationFailed, "filenameAuthTag")
	}
	masterKey, err := o.masterKey.Bytes()
	if err != nil {
		return "", newErr(ErrDisposed, "")
	}

	ciphertext, err := decodeB64(entry.EncryptedFilename)
	if err != nil {
		return "", wrapErr(ErrMalformedInput, "encryptedFilename", err)
	}
	iv, err := decodeB64(entry.FilenameIV)
	if err != nil {
		return "", wrapErr(ErrMalformedInput, "filenameIV", err)
	}
	tag, err := decodeB64(entry.FilenameAuthTag)
	if err != nil {
		return "", wrapErr(ErrMalformedInput, "filenameAuthTag", err)
	}
	plain, err := aesgcm.Decrypt(ciphertext, masterKey, iv, tag)
	if err != nil {
		return "", newErr(ErrAuthenticationFailed, "filename")
	}
	return string(plain), nil
}

func (o *OpenedCapsa) findFile(fileID string) (FileEntry, error) {
	for _, f := range o.Files {
		if f.FileID == fileID {
			return f, nil
		}
	}
	return FileEntry{}, newErr(ErrArgument, "fileID")
}

// Close zeroizes the master key. Safe to call more than once.
func (o *OpenedCapsa) Close() {
	o.masterKey.Zeroize()
}

// canonicalStringOf reconstructs the canonical string that should have
// been signed for env, from env's own fields.
func canonicalStringOf(env *Envelope) string {
	files := make([]canon.FileFields, len(env.Files))
	var totalSize int64
	for i, f := range env.Files {
		files[i] = canon.FileFields{ContentHash: f.Hash, ContentIV: f.IV, FilenameIV: f.FilenameIV}
		totalSize += f.Size
	}
	return canon.Build(canon.Input{
		PackageID:    env.PackageID,
		TotalSize:    totalSize,
		Files:        files,
		StructuredIV: env.StructuredIV,
		SubjectIV:    env.SubjectIV,
		BodyIV:       env.BodyIV,
	})
}
