package store

import (
	"context"
	"sync"
)

// memoryStore implements TreeStore with an in-process map. Used for tests
// and local development; state does not survive a restart.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory creates an empty in-memory tree store.
func NewMemory() TreeStore {
	return &memoryStore{records: make(map[string][]byte)}
}

func (s *memoryStore) Get(ctx context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.records[path]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *memoryStore) Set(ctx context.Context, path string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[path] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) Update(ctx context.Context, path string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var old []byte
	if v, ok := s.records[path]; ok {
		old = append([]byte(nil), v...)
	}

	next, err := fn(old)
	if err == ErrUnchanged {
		return nil
	}
	if err != nil {
		return err
	}

	s.records[path] = append([]byte(nil), next...)
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
