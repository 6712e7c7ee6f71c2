package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is the ephemeral Store backend. A positive maxEntries caps
// the number of stored keys; inserting past the cap fails with
// ErrQuotaExceeded, which is how tests and the ephemeral deployment mode
// exercise the repository's quota handling.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]string
	maxEntries int
}

// NewMemoryStore creates a memory store. maxEntries <= 0 means unbounded.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]string),
		maxEntries: maxEntries,
	}
}

// Get returns the value for key.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, found := m.entries[key]
	return value, found, nil
}

// Set writes the value for key, enforcing the entry cap on inserts.
func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists {
		if m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
			return ErrQuotaExceeded
		}
	}
	m.entries[key] = value
	return nil
}

// Delete removes the key.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Keys returns all keys with the given prefix.
func (m *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
