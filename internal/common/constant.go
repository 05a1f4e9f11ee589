// Package common contains shared constants and sentinel errors used across
// userdesk components.
package common

const (
	// TokenStorageKey is the fixed durable-storage key holding the session token.
	TokenStorageKey = "token"

	// EmailStorageKey remembers which account the stored token belongs to.
	EmailStorageKey = "email"

	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// APIKeyHeaderName carries the optional service API key.
	APIKeyHeaderName = "x-api-key"

	// RequestIDHeaderName correlates client requests with server logs.
	RequestIDHeaderName = "X-Request-Id"
)
