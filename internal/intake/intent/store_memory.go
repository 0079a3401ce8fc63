package intent

import (
	"context"
	"sync"
	"time"

	id "amparo/pkg/domain"
)

type memKey struct {
	claim  id.ClaimID
	digest string
}

type memEntry struct {
	startedAt time.Time
	expiresAt time.Time
}

// InMemoryStore keeps upload intents in memory for tests/dev.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[memKey]memEntry
}

// NewMemory constructs an empty in-memory intent store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{entries: make(map[memKey]memEntry)}
}

func (s *InMemoryStore) Begin(_ context.Context, claimID id.ClaimID, digest string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.entries[memKey{claim: claimID, digest: digest}] = memEntry{
		startedAt: now,
		expiresAt: now.Add(ttl),
	}
	return nil
}

func (s *InMemoryStore) Complete(_ context.Context, claimID id.ClaimID, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, memKey{claim: claimID, digest: digest})
	return nil
}

func (s *InMemoryStore) Scan(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := time.Now()
	var records []Record
	for key, entry := range s.entries {
		if entry.expiresAt.Before(now) {
			continue
		}
		records = append(records, Record{
			ClaimID:   key.claim,
			Digest:    key.digest,
			StartedAt: entry.startedAt,
		})
	}
	return records, nil
}
