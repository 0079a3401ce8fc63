package store

import (
	"context"
	"fmt"
	"sync"

	"amparo/internal/claim/models"
	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
)

// InMemoryDocumentStore keeps document metadata in memory for tests/dev.
type InMemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[id.DocumentID]*models.Document
}

// NewDocumentMemory constructs an empty in-memory document store.
func NewDocumentMemory() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{docs: make(map[id.DocumentID]*models.Document)}
}

func (s *InMemoryDocumentStore) Insert(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *doc
	s.docs[doc.ID] = &copied
	return nil
}

func (s *InMemoryDocumentStore) CountByClaim(_ context.Context, claimID id.ClaimID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, doc := range s.docs {
		if doc.ClaimID == claimID {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryDocumentStore) ListByClaim(_ context.Context, claimID id.ClaimID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []*models.Document
	for _, doc := range s.docs {
		if doc.ClaimID == claimID {
			copied := *doc
			docs = append(docs, &copied)
		}
	}
	return docs, nil
}

func (s *InMemoryDocumentStore) UpdateValidation(_ context.Context, docID id.DocumentID, status models.ValidationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docID]
	if !ok {
		return fmt.Errorf("document %s: %w", docID, sentinel.ErrNotFound)
	}
	doc.ValidationStatus = status
	return nil
}

func (s *InMemoryDocumentStore) ExistsByDigest(_ context.Context, claimID id.ClaimID, digest string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.ClaimID == claimID && doc.Digest == digest {
			return true, nil
		}
	}
	return false, nil
}
