package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"amparo/internal/vigency/models"
	"amparo/pkg/platform/sentinel"
)

// InMemoryStore keeps validity periods in memory for tests/dev.
type InMemoryStore struct {
	mu      sync.RWMutex
	periods []*models.Period
}

// NewMemory constructs an empty in-memory period store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{}
}

// Seed appends a period row; test helper for the admin-owned table.
func (s *InMemoryStore) Seed(period *models.Period) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods = append(s.periods, period)
}

func (s *InMemoryStore) FindActiveForDate(_ context.Context, date time.Time) (*models.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.periods {
		if p.IsOpen() && p.Contains(date) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("no open validity period for %s: %w", date.Format("2006-01-02"), sentinel.ErrNotFound)
}
