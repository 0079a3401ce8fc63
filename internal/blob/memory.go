package blob

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryStore keeps blobs in memory for tests.
type InMemoryStore struct {
	mu         sync.RWMutex
	containers map[string]map[string][]byte
	// FailPut forces PutObject to fail; test hook for the two-phase upload.
	FailPut bool
}

// NewMemory constructs an empty in-memory blob store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{containers: make(map[string]map[string][]byte)}
}

func (s *InMemoryStore) EnsureContainer(_ context.Context, container string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.containers[container]; !ok {
		s.containers[container] = make(map[string][]byte)
	}
	return nil
}

func (s *InMemoryStore) PutObject(_ context.Context, container, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPut {
		return "", fmt.Errorf("put object %q: %w", key, errForcedFailure)
	}
	c, ok := s.containers[container]
	if !ok {
		return "", fmt.Errorf("container %q does not exist", container)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	c[key] = cp
	return "mem://" + container + "/" + key, nil
}

// Get returns a stored object; test helper.
func (s *InMemoryStore) Get(container, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.containers[container]
	if !ok {
		return nil, false
	}
	data, ok := c[key]
	return data, ok
}

var errForcedFailure = fmt.Errorf("forced failure")
