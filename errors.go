package capsa

import "errors"

// Sentinel errors returned by the core. Check these with errors.Is; most
// come wrapped in a *CapsaError that also carries the offending field
// name.
var (
	// ErrDisposed indicates use of a Builder or OpenedCapsa after it
	// released its master key.
	ErrDisposed = errors.New("capsa: disposed")
	// ErrArgument indicates a contract violation on an input value.
	ErrArgument = errors.New("capsa: invalid argument")
	// ErrLimitExceeded indicates a size or count guard from the data
	// model was exceeded.
	ErrLimitExceeded = errors.New("capsa: limit exceeded")
	// ErrEmpty indicates a build was attempted with no content at all.
	ErrEmpty = errors.New("capsa: empty capsa")
	// ErrMalformedInput indicates a base64url, PEM, or JSON parse
	// failure.
	ErrMalformedInput = errors.New("capsa: malformed input")
	// ErrAuthenticationFailed indicates a GCM tag mismatch on decrypt.
	ErrAuthenticationFailed = errors.New("capsa: authentication failed")
	// ErrSignatureInvalid indicates JWS verification failed.
	ErrSignatureInvalid = errors.New("capsa: signature invalid")
	// ErrNotInKeychain indicates the requested party has no usable
	// keychain entry.
	ErrNotInKeychain = errors.New("capsa: party not in keychain")
	// ErrInvalidMasterKey indicates the selected keychain entry could not
	// be unwrapped with the supplied private key (wrong key, bad padding,
	// malformed ciphertext) or did not unwrap to exactly 32 bytes.
	ErrInvalidMasterKey = errors.New("capsa: invalid master key")
	// ErrCsprngFault indicates a duplicate IV was found across the
	// fields of one capsa. The envelope this produced must not be
	// transmitted.
	ErrCsprngFault = errors.New("capsa: csprng fault, duplicate iv detected")
	// ErrIoError indicates a failure reading input or calling a
	// collaborator: a file or stream read, the random source, the
	// LimitsSource, or the PartyKeySource.
	ErrIoError = errors.New("capsa: io error")
	// ErrConfigurationError indicates a required collaborator or option
	// was not supplied, such as a missing creator public key when
	// signature verification is requested.
	ErrConfigurationError = errors.New("capsa: configuration error")
)

// CapsaError wraps a sentinel error with the field that triggered it, for
// Argument and LimitExceeded failures that must name the offending field.
type CapsaError struct {
	Kind  error
	Field string
	Err   error
}

func (e *CapsaError) Error() string {
	if e.Field != "" {
		if e.Err != nil {
			return e.Kind.Error() + ": " + e.Field + ": " + e.Err.Error()
		}
		return e.Kind.Error() + ": " + e.Field
	}
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *CapsaError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error's Kind, so that
// errors.Is(err, ErrArgument) works regardless of field or wrapped cause.
func (e *CapsaError) Is(target error) bool {
	return e.Kind == target
}

func newErr(kind error, field string) *CapsaError {
	return &CapsaError{Kind: kind, Field: field}
}

func wrapErr(kind error, field string, cause error) *CapsaError {
	return &CapsaError{Kind: kind, Field: field, Err: cause}
}
