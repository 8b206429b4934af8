package params

import (
	"errors"
	"fmt"
)

// Domain errors for parameter mapping.
var (
	// ErrUnknownAttribute is returned when a semantic name or code is not
	// bound by the resolved schema.
	ErrUnknownAttribute = errors.New("eufy: unknown attribute")

	// ErrInvalidValue is returned when a value does not match the shape
	// expected by the code it is written to.
	ErrInvalidValue = errors.New("eufy: invalid value")

	// ErrDecodingFailed is returned when a raw wire value cannot be decoded.
	ErrDecodingFailed = errors.New("eufy: decoding failed")
)

// DecodeError describes a single parameter that could not be decoded.
// It wraps ErrDecodingFailed.
type DecodeError struct {
	Code int
	Name string
	Raw  string
	Err  error
}

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding parameter %s (%d) from %q: %v", e.Name, e.Code, e.Raw, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
