// Package cache provides the byte-level storage behind registry lookups.
//
// The npm client memoizes parsed metadata in memory for a single process;
// a [Cache] sits underneath it so that repeated CLI runs (or several
// processes sharing a Redis instance) do not refetch the same packuments.
//
// Implementations:
//   - [FileCache]: one JSON file per key under ~/.cache/peerscan (CLI default)
//   - [RedisCache]: shared cache for CI runners and multi-process use
//   - [MemoryCache]: process-local, mainly for tests
//   - [NullCache]: disables caching (--no-cache)
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys with a per-entry TTL.
// A TTL of 0 means the entry does not expire. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns the payload for key. A miss is (nil, false, nil), never an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any previous entry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
