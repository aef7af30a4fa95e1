// internal/session/memory.go
//
// In-memory session store.
//
// Suitable for embedding, tests, and single-process deployments.  Capacity
// is bounded by an LRU so an abusive client cannot grow memory without
// limit; expiry is checked lazily on Find.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/yanizio/relay/internal/cache"
)

type memoryEntry struct {
	sess    *Session
	expires time.Time
}

// MemoryStore is a concurrency-safe, TTL- and capacity-bounded store.
type MemoryStore struct {
	mu  sync.Mutex
	lru *cache.LRU
	ttl time.Duration
}

// NewMemoryStore returns a store holding at most maxEntries sessions, each
// expiring ttl after its last Save.
func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{lru: cache.New(maxEntries), ttl: ttl}
}

// Find returns the live session for id or ErrNotFound.
func (m *MemoryStore) Find(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.lru.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	e := v.(memoryEntry)
	if time.Now().After(e.expires) {
		m.lru.Remove(id)
		return nil, ErrNotFound
	}
	return e.sess, nil
}

// Save inserts or refreshes the session and resets its TTL.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Add(s.ID, memoryEntry{sess: s, expires: time.Now().Add(m.ttl)})
	return nil
}

// Delete drops the session; deleting an absent id is not an error.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Remove(id)
	return nil
}
