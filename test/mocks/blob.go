package mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/storage"
)

// ErrBlobUnavailable is returned by MockBlobStore when PutErr is set without a custom error.
var ErrBlobUnavailable = errors.New("blob store unavailable")

// MockBlobStore keeps uploaded blobs in memory.
type MockBlobStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	seq     int
	Deleted []string

	// PutErr makes every Put fail.
	PutErr error
}

// NewMockBlobStore creates an empty blob store.
func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{blobs: make(map[string][]byte)}
}

// Put stores the content of r under a generated key.
func (m *MockBlobStore) Put(_ context.Context, name, _ string, r io.Reader) (*storage.Object, error) {
	if m.PutErr != nil {
		return nil, m.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	key := fmt.Sprintf("evidence/%d-%s", m.seq, name)
	m.blobs[key] = data
	return &storage.Object{URL: "https://blobs.test/" + key, Key: key}, nil
}

// Delete removes a blob.
func (m *MockBlobStore) Delete(_ context.Context, key string, _ models.EvidenceType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return fmt.Errorf("blob %q not found", key)
	}
	delete(m.blobs, key)
	m.Deleted = append(m.Deleted, key)
	return nil
}

// Get returns a stored blob.
func (m *MockBlobStore) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	return data, ok
}

// Len returns the number of stored blobs.
func (m *MockBlobStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
