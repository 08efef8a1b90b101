package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// memoryStoreSize bounds the LRU so an ephemeral cache cannot grow without
// limit the way the disk store can.
const memoryStoreSize = 1024

// MemoryStore implements Store in memory on top of an LRU. It backs the
// "memory" cache backend and stands in for the disk store in tests.
type MemoryStore struct {
	entries *lru.Cache[string, *Entry]
	ttl     time.Duration
	now     Clock
	mu      sync.Mutex
}

// NewMemory creates an in-memory store. A nil clock means time.Now.
func NewMemory(ttl time.Duration, now Clock) (*MemoryStore, error) {
	entries, err := lru.New[string, *Entry](memoryStoreSize)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: entries,
		ttl:     ttl,
		now:     now,
	}, nil
}

// Get retrieves a live entry, evicting it if expired.
func (m *MemoryStore) Get(key string) (*Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries.Get(key)
	if !ok {
		metrics.misses.Inc()
		return nil, false
	}
	if m.now().Sub(entry.StoredAt) >= m.ttl {
		m.entries.Remove(key)
		metrics.evictions.Inc()
		metrics.misses.Inc()
		return nil, false
	}

	metrics.hits.Inc()
	return entry, true
}

// Put stores the entry, stamping StoredAt.
func (m *MemoryStore) Put(key string, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.StoredAt = m.now()
	m.entries.Add(key, entry)
	return nil
}

// Clear drops every entry and returns the count removed.
func (m *MemoryStore) Clear() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.entries.Len()
	m.entries.Purge()
	return removed, nil
}
