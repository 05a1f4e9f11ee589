package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrNotSupported = errors.New("operation not supported")
)

// APIError is a non-2xx response. Err holds the sentinel the status maps to,
// if any, so errors.Is(err, ErrUnauthorized) works through it.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }

// MessageOf returns the service-provided message carried by err, or "".
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsUnauthorized reports whether err carries the unauthorized classification.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
