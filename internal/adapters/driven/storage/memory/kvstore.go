package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

// Ensure KeyValueStore implements the interface.
var _ driven.KeyValueStore = (*KeyValueStore)(nil)

// KeyValueStore is an in-memory implementation of driven.KeyValueStore.
type KeyValueStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewKeyValueStore creates a new in-memory key-value store.
func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{
		values: make(map[string][]byte),
	}
}

// Get retrieves the values for the given keys. Missing keys are absent
// from the result map.
func (s *KeyValueStore) Get(_ context.Context, keys []string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		value, ok := s.values[key]
		if !ok {
			continue
		}
		// Copy so callers cannot mutate stored bytes
		buf := make([]byte, len(value))
		copy(buf, value)
		result[key] = buf
	}
	return result, nil
}

// Set stores all given values.
func (s *KeyValueStore) Set(_ context.Context, values map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range values {
		buf := make([]byte, len(value))
		copy(buf, value)
		s.values[key] = buf
	}
	return nil
}
