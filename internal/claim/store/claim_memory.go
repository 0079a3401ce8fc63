package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"amparo/internal/claim/models"
	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
)

type incidentKey struct {
	policy   id.PolicyID
	deceased string
	date     string
}

func keyFor(c *models.Claim) incidentKey {
	return incidentKey{
		policy:   c.PolicyID,
		deceased: c.DeceasedID,
		date:     c.IncidentDate.Format("2006-01-02"),
	}
}

// InMemoryClaimStore keeps claims in memory for tests/dev. The incident index
// mirrors the unique constraint the PostgreSQL store relies on.
type InMemoryClaimStore struct {
	mu        sync.RWMutex
	claims    map[id.ClaimID]*models.Claim
	incidents map[incidentKey]id.ClaimID
}

// NewClaimMemory constructs an empty in-memory claim store.
func NewClaimMemory() *InMemoryClaimStore {
	return &InMemoryClaimStore{
		claims:    make(map[id.ClaimID]*models.Claim),
		incidents: make(map[incidentKey]id.ClaimID),
	}
}

func (s *InMemoryClaimStore) Create(_ context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := keyFor(claim)
	if _, exists := s.incidents[key]; exists {
		return fmt.Errorf("claim for policy %s deceased %s on %s: %w",
			claim.PolicyID, claim.DeceasedID, key.date, sentinel.ErrConflict)
	}
	copied := *claim
	s.claims[claim.ID] = &copied
	s.incidents[key] = claim.ID
	return nil
}

func (s *InMemoryClaimStore) FindByID(_ context.Context, claimID id.ClaimID) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	claim, ok := s.claims[claimID]
	if !ok {
		return nil, fmt.Errorf("claim %s: %w", claimID, sentinel.ErrNotFound)
	}
	copied := *claim
	return &copied, nil
}

func (s *InMemoryClaimStore) UpdateStatus(_ context.Context, claimID id.ClaimID, from, to models.ClaimStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	claim, ok := s.claims[claimID]
	if !ok {
		return fmt.Errorf("claim %s: %w", claimID, sentinel.ErrNotFound)
	}
	if claim.Status != from {
		return fmt.Errorf("claim %s is %s, expected %s: %w", claimID, claim.Status, from, sentinel.ErrConflict)
	}
	claim.Status = to
	return nil
}

func (s *InMemoryClaimStore) SetLiquidation(_ context.Context, claimID id.ClaimID, amount float64, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	claim, ok := s.claims[claimID]
	if !ok {
		return fmt.Errorf("claim %s: %w", claimID, sentinel.ErrNotFound)
	}
	claim.LiquidationAmount = &amount
	claim.LiquidationDate = &date
	return nil
}
