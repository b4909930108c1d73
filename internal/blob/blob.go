// Package blob defines the boundary to the external blob-storage
// collaborator: store bytes under a key, get back a retrievable URL. Upload
// transport is out of scope; the engine only consumes the result.
package blob

import (
	"context"
	"sync"

	dErrors "mandate/pkg/domain-errors"
)

type Store interface {
	// Store persists the bytes and returns a retrievable URL.
	Store(ctx context.Context, key string, data []byte) (string, error)
}

// InMemoryStore is the development and test implementation.
type InMemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{blobs: make(map[string][]byte)}
}

func (s *InMemoryStore) Store(_ context.Context, key string, data []byte) (string, error) {
	if key == "" {
		return "", dErrors.New(dErrors.CodeValidation, "blob key is required")
	}
	if len(data) == 0 {
		return "", dErrors.New(dErrors.CodeValidation, "blob data is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	s.blobs[key] = copied
	return "memory://" + key, nil
}

// Get retrieves stored bytes; test helper.
func (s *InMemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	return data, ok
}
