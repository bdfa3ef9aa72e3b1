package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is a process-local cache holding JSON-encoded values so callers never share memory.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return ErrCacheMiss
	}
	if !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		if current, ok := m.entries[key]; ok && !m.now().Before(current.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return ErrCacheMiss
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return nil
}

// Purge drops every expired entry.
func (m *MemoryCache) Purge() {
	now := m.now()

	m.mu.Lock()
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}

func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryCache) Stats() map[string]interface{} {
	return map[string]interface{}{"entries": m.Len()}
}
