// Package metadata persists small string values (session token and the
// signed-in identity) that must survive a restart.
package metadata

import (
	"context"
)

// Repository is a durable string key/value store.
//
// Get reports ok=false when the key is absent. SetAll and Remove apply all of
// their keys or none of them.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	SetAll(ctx context.Context, values map[string]string) error
	Remove(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string]string, error)
}
