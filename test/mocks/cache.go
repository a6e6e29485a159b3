// Package mocks provides in-memory doubles for external collaborators.
package mocks

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// MockCache is an in-memory stand-in for the Redis cache.
// Expirations are honored against Now, which tests may replace.
type MockCache struct {
	data map[string]entry
	mu   sync.RWMutex

	Now func() time.Time
}

// NewMockCache creates a new mock cache instance
func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]entry),
		Now:  time.Now,
	}
}

func (m *MockCache) live(key string) (entry, bool) {
	e, ok := m.data[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !m.Now().Before(e.expiresAt) {
		return entry{}, false
	}
	return e, true
}

// Set stores a value in the mock cache
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: value}
	if expiration > 0 {
		e.expiresAt = m.Now().Add(expiration)
	}
	m.data[key] = e
	return nil
}

// Exists counts how many keys are present
func (m *MockCache) Exists(ctx context.Context, keys ...string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, key := range keys {
		if _, ok := m.live(key); ok {
			count++
		}
	}
	return count, nil
}

// Len returns the number of stored keys, expired or not.
func (m *MockCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
