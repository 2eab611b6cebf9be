package storage

import (
	"errors"
	"sync"
)

// ErrUnavailable is returned by a MemoryStore whose failure toggle is on.
var ErrUnavailable = errors.New("store unavailable")

// MemoryStore is a map-backed Store used by tests and as a fallback when no
// persistence path is configured. The Fail toggle makes every operation
// error, which tests use to exercise the cache's degraded mode.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	// Fail makes all Get/Set calls return ErrUnavailable while set.
	Fail bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get returns the stored value for key, if any.
func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Fail {
		return nil, false, ErrUnavailable
	}

	value, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail {
		return ErrUnavailable
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
