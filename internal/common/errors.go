// Package common defines shared constants and sentinel errors used across
// client and devserver layers of userdesk. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Auth errors (invalid, malformed or revoked token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")

	// Credential errors returned by the login endpoint.
	ErrMissingPassword = errors.New("Missing password")
	ErrMissingEmail    = errors.New("Missing email or username")
	ErrUserNotFound    = errors.New("user not found")
)
