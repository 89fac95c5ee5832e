package ports

import (
	"context"
	"time"
)

// CacheStore is the pluggable key-value backend for the static-feature
// cache. Implementations could use Redis, Memcached, or in-memory
// storage. Store failures never propagate to the ranking hot path; the
// cache layer degrades to recomputation.
type CacheStore interface {
	// Get retrieves a cached value by key. It returns the value and true
	// when found, or nil and false on a miss. An error indicates the
	// store itself is unhealthy, not a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an expiration. A zero ttl means the entry
	// does not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
