// Package devserver is a small reqres-compatible user service for local
// development and integration tests. It issues HS256 tokens on login, keeps
// a revocation list for logged-out tokens, and serves a paged in-memory user
// table behind bearer authentication.
package devserver
