// Package intent records write-ahead markers around the two-phase document
// upload (blob write, then metadata insert). The upload itself keeps its
// non-transactional behavior; intents only make orphaned blobs observable so
// the sweeper can report them. Strictly an observability enhancement: no
// compensating deletes happen anywhere.
package intent

import (
	"context"
	"time"

	id "amparo/pkg/domain"
)

// Record marks an upload that began but has not been confirmed complete.
type Record struct {
	ClaimID   id.ClaimID
	Digest    string
	StartedAt time.Time
}

// Store persists upload intents with a TTL so abandoned records age out.
type Store interface {
	// Begin writes the intent before the blob write.
	Begin(ctx context.Context, claimID id.ClaimID, digest string, ttl time.Duration) error
	// Complete clears the intent after the metadata insert commits.
	Complete(ctx context.Context, claimID id.ClaimID, digest string) error
	// Scan lists intents still pending; these are uploads that died between
	// the blob write and the metadata insert (or are still in flight).
	Scan(ctx context.Context) ([]Record, error)
}
