// Package store persists claims and their attached documents.
//
// Error contract:
//   - Create returns sentinel.ErrConflict (wrapped) when another claim already
//     exists for the same (policy, deceased, incident date)
//   - FindByID returns sentinel.ErrNotFound (wrapped) when the row is missing
//   - UpdateStatus takes the expected current status and returns
//     sentinel.ErrConflict when the row moved underneath the caller
package store

import (
	"context"
	"time"

	"amparo/internal/claim/models"
	id "amparo/pkg/domain"
)

type ClaimStore interface {
	Create(ctx context.Context, claim *models.Claim) error
	FindByID(ctx context.Context, claimID id.ClaimID) (*models.Claim, error)
	// UpdateStatus moves the claim from the expected status to the target
	// status in one conditional write.
	UpdateStatus(ctx context.Context, claimID id.ClaimID, from, to models.ClaimStatus) error
	// SetLiquidation records the payout amount and date on a claim.
	SetLiquidation(ctx context.Context, claimID id.ClaimID, amount float64, date time.Time) error
}

type DocumentStore interface {
	Insert(ctx context.Context, doc *models.Document) error
	CountByClaim(ctx context.Context, claimID id.ClaimID) (int, error)
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Document, error)
	UpdateValidation(ctx context.Context, docID id.DocumentID, status models.ValidationStatus) error
	// ExistsByDigest reports whether a metadata row landed for the given
	// upload digest. Used by the intent sweeper.
	ExistsByDigest(ctx context.Context, claimID id.ClaimID, digest string) (bool, error)
}
