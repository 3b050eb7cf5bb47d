// Package cache provides the keyed result cache sitting in front of
// list/detail reads and query execution, plus the coordinator that
// invalidates entries when registries mutate state.
package cache

import (
	"context"
	"time"
)

// Store is the backing key-value store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
