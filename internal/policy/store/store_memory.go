package store

import (
	"context"
	"fmt"
	"sync"

	"amparo/internal/policy/models"
	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
)

// InMemoryStore keeps policies in memory for tests/dev.
type InMemoryStore struct {
	mu       sync.RWMutex
	policies map[id.PolicyID]*models.Policy
	copays   map[id.CopayConfigID]*models.CopayConfig
}

// NewMemory constructs an empty in-memory policy store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		policies: make(map[id.PolicyID]*models.Policy),
		copays:   make(map[id.CopayConfigID]*models.CopayConfig),
	}
}

// Seed inserts a policy directly; test helper for the externally-owned table.
func (s *InMemoryStore) Seed(policy *models.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[policy.ID] = policy
}

// SeedCopayConfig inserts a copay configuration row.
func (s *InMemoryStore) SeedCopayConfig(cfg *models.CopayConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copays[cfg.ID] = cfg
}

func (s *InMemoryStore) FindByID(_ context.Context, policyID id.PolicyID) (*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.policies[policyID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("policy %s: %w", policyID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, policyID id.PolicyID, status models.PolicyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.policies[policyID]
	if !ok {
		return fmt.Errorf("policy %s: %w", policyID, sentinel.ErrNotFound)
	}
	p.Status = status
	return nil
}

func (s *InMemoryStore) FindCopayConfig(_ context.Context, policyID id.PolicyID) (*models.CopayConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[policyID]
	if !ok {
		return nil, fmt.Errorf("policy %s: %w", policyID, sentinel.ErrNotFound)
	}
	if p.CopayConfigID == nil {
		return nil, fmt.Errorf("policy %s has no copay config: %w", policyID, sentinel.ErrNotFound)
	}
	if cfg, ok := s.copays[*p.CopayConfigID]; ok {
		cp := *cfg
		return &cp, nil
	}
	return nil, fmt.Errorf("copay config %s: %w", p.CopayConfigID, sentinel.ErrNotFound)
}
