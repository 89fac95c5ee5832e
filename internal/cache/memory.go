// Package cache stores slow-changing per-lawyer feature values between
// ranking passes. It sits on a pluggable key-value store with an
// in-process fallback; every failure path degrades to recomputation,
// never to an error.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jusmatch/matchengine/internal/ports"
)

var _ ports.CacheStore = (*MemoryStore)(nil)

// MemoryStore is an in-process ports.CacheStore with per-entry TTL and
// last-writer-wins semantics. It backs the feature cache when no external
// store is configured and serves as the fallback when one is unreachable.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is injectable for expiry tests.
	now func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements ports.CacheStore. Expired entries are evicted lazily.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a fresh write may have landed.
		if cur, stillThere := m.entries[key]; stillThere && !cur.expiresAt.IsZero() && !m.now().Before(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}

	out := append([]byte(nil), entry.value...)
	return out, true, nil
}

// Set implements ports.CacheStore.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete implements ports.CacheStore.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of live entries, for tests and gauges.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
