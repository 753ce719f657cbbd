// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Common sentinels across session/api/ui layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the backend rejected the credentials even after a refresh.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionTerminated indicates the stored tokens were dropped and a new sign-in is required.
	ErrSessionTerminated = errors.New("session terminated")

	// ErrValidation indicates input rejected locally before any network call.
	ErrValidation = errors.New("validation")

	// ErrMalformedResponse indicates the backend answered with a body that is not a valid envelope.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrPopupBlocked indicates the print document could not be opened.
	ErrPopupBlocked = errors.New("print window blocked")

	// ErrRateLimited indicates too many failed sign-ins; retry later.
	ErrRateLimited = errors.New("rate limited")

	// ErrSuperseded indicates a newer request replaced this one before it completed.
	ErrSuperseded = errors.New("superseded")
)

// HTTPError is a non-2xx transport-level answer from the backend.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d %s", e.Status, http.StatusText(e.Status))
}

// Unwrap maps well-known statuses onto sentinels.
func (e *HTTPError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	}
	return nil
}

// APIError is an application-level failure: the envelope code was not 200.
type APIError struct {
	Code    int
	Status  string
	Message string
	// HasResult is set when the envelope still carried a non-null result.
	HasResult bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api %d %s", e.Code, e.Status)
}

// Unwrap maps well-known envelope codes onto sentinels.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	}
	return nil
}

// ValidationError reports a single offending form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return "validation: " + e.Field + ": " + e.Message }

// Unwrap lets callers match any validation failure with errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Status extracts the HTTP status from err, or 0 when it is not an HTTP error.
func Status(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}
