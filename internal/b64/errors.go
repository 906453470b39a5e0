package b64

import "errors"

// ErrMalformed is returned when input cannot be decoded under any
// tolerated base64 variant.
var ErrMalformed = errors.New("malformed base64 input")
