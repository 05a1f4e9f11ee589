// Package client contains client-side building blocks for userdesk.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the user service: Login/Logout, ListUsers, UpdateUser, DeleteUser,
//     plus the optional UserFetcher capability for single-record fetches.
//  2. A concrete REST implementation (see HTTPClient) that injects the bearer
//     token from a token source, tags each request with an id, and maps HTTP
//     status codes to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations) for
//     the CLI, wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrNotSupported.
// Service-provided messages travel in *APIError; use MessageOf to read them.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation; timeouts are configured on the
// underlying http.Client.
package client
