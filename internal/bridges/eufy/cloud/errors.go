package cloud

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for cloud operations.
var (
	// ErrNotAuthenticated is returned when login did not yield a token.
	ErrNotAuthenticated = errors.New("cloud: not authenticated")

	// ErrInvalidResponse is returned when a response body is not a valid envelope.
	ErrInvalidResponse = errors.New("cloud: invalid response")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("cloud: %s %s returned status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("cloud: %s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// APIError reports a response whose envelope carries a non-zero code.
type APIError struct {
	Path    string
	Code    int
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("cloud: %s failed with code %d: %s", e.Path, e.Code, e.Message)
}

// IsAuthFailure reports whether err is an HTTP 401/403 from the cloud.
func IsAuthFailure(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden
}
