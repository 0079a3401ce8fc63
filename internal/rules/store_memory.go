package rules

import (
	"context"
	"sync"

	"amparo/internal/payment/split"
)

// InMemoryStore holds rule rows in memory for tests/dev.
type InMemoryStore struct {
	mu        sync.RWMutex
	cutoffDay int
}

// NewMemory constructs a rules store with the packaged defaults.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{cutoffDay: split.DefaultCutoffDay}
}

// SetPaymentCutoffDay overrides the cutoff; admin/test helper.
func (s *InMemoryStore) SetPaymentCutoffDay(day int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffDay = day
}

func (s *InMemoryStore) PaymentCutoffDay(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cutoffDay, nil
}
