package store

import (
	"context"
	"fmt"
	"sync"

	"amparo/internal/payment/models"
	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
)

type periodKey struct {
	policy id.PolicyID
	period models.Period
}

// InMemoryStore keeps payments in memory for tests/dev. The map key enforces
// the one-row-per-(policy, period) invariant the way the unique index does in
// PostgreSQL.
type InMemoryStore struct {
	mu       sync.RWMutex
	payments map[periodKey]*models.Payment
}

// NewMemory constructs an empty in-memory payment store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{payments: make(map[periodKey]*models.Payment)}
}

func (s *InMemoryStore) Insert(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := periodKey{policy: payment.PolicyID, period: payment.Period}
	if _, ok := s.payments[key]; ok {
		return fmt.Errorf("payment for policy %s period %d/%d: %w",
			payment.PolicyID, payment.Period.Month, payment.Period.Year, sentinel.ErrConflict)
	}
	cp := *payment
	s.payments[key] = &cp
	return nil
}

func (s *InMemoryStore) InsertPending(_ context.Context, payments []*models.Payment) ([]*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var inserted []*models.Payment
	for _, payment := range payments {
		key := periodKey{policy: payment.PolicyID, period: payment.Period}
		if _, ok := s.payments[key]; ok {
			continue
		}
		cp := *payment
		s.payments[key] = &cp
		inserted = append(inserted, payment)
	}
	return inserted, nil
}

func (s *InMemoryStore) FindByPeriod(_ context.Context, policyID id.PolicyID, period models.Period) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.payments[periodKey{policy: policyID, period: period}]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("payment for policy %s period %d/%d: %w",
		policyID, period.Month, period.Year, sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindOverdueByPolicy(_ context.Context, policyID id.PolicyID, current models.Period) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var overdue []*models.Payment
	for key, p := range s.payments {
		if key.policy != policyID {
			continue
		}
		if p.Status == models.PaymentStatusPending && p.Period.Before(current) {
			cp := *p
			overdue = append(overdue, &cp)
		}
	}
	return overdue, nil
}

func (s *InMemoryStore) ListPeriods(_ context.Context, policyID id.PolicyID) ([]models.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var periods []models.Period
	for key := range s.payments {
		if key.policy == policyID {
			periods = append(periods, key.period)
		}
	}
	return periods, nil
}
