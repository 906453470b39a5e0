// Package capsa implements the client-side cryptographic core of a
// zero-knowledge capsule sharing system: building an authenticated,
// end-to-end encrypted envelope from plaintext inputs and recipient
// public keys, and opening a received envelope back into plaintext.
//
// Nothing in this package performs network I/O. Callers supply a
// PartyKeySource and LimitsSource to Builder.Build and hand the result to
// their own BlobStore (or the default HTTP one in the transport
// subpackage) to actually deliver a capsa.
package capsa

import "github.com/tessarai/capsa-go/internal/wire"

// Envelope, Keychain, KeychainEntry, Signature, AccessControl, FileEntry,
// and Metadata are the wire-format types, aliased here so callers never
// need to import internal/wire directly.
type (
	Envelope      = wire.Envelope
	Keychain      = wire.Keychain
	KeychainEntry = wire.KeychainEntry
	Signature     = wire.Signature
	AccessControl = wire.AccessControl
	FileEntry     = wire.FileEntry
	Metadata      = wire.Metadata
)

// deliveryPriority is emitted unconditionally on every built envelope.
// TODO: make this configurable once something downstream of Build
// actually reads it.
const deliveryPriority = "normal"

// signatureAlgorithm and keychainAlgorithm are the only values these
// fields ever take in this implementation.
const (
	signatureAlgorithm = "RS256"
	keychainAlgorithm  = "AES-256-GCM"
)
