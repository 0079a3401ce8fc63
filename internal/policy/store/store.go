// Package store persists policies. The claims core treats this as an
// external collaborator: read status/premium/copay, update status, nothing
// else.
//
// Error contract:
//   - FindByID / FindCopayConfig return sentinel.ErrNotFound (wrapped) when
//     the row does not exist
//   - infrastructure failures come back wrapped with context
package store

import (
	"context"

	"amparo/internal/policy/models"
	id "amparo/pkg/domain"
)

type Store interface {
	FindByID(ctx context.Context, policyID id.PolicyID) (*models.Policy, error)
	UpdateStatus(ctx context.Context, policyID id.PolicyID, status models.PolicyStatus) error
	// FindCopayConfig resolves the policy's copay configuration row.
	// Returns ErrNotFound when the policy has no copay config assigned.
	FindCopayConfig(ctx context.Context, policyID id.PolicyID) (*models.CopayConfig, error)
}
