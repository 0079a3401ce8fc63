// Package store persists premium payments.
//
// Error contract:
//   - Insert returns sentinel.ErrConflict when a row already exists for the
//     payment's (policy, period); the losing side of a concurrent register
//     surfaces this and the caller decides whether to retry
//   - FindByPeriod returns sentinel.ErrNotFound for missing rows
//   - infrastructure failures come back wrapped with context
package store

import (
	"context"

	"amparo/internal/payment/models"
	id "amparo/pkg/domain"
)

type Store interface {
	Insert(ctx context.Context, payment *models.Payment) error
	// InsertPending inserts several pending rows at once. Periods that
	// gained a row concurrently are skipped, not errors.
	InsertPending(ctx context.Context, payments []*models.Payment) ([]*models.Payment, error)
	FindByPeriod(ctx context.Context, policyID id.PolicyID, period models.Period) (*models.Payment, error)
	// FindOverdueByPolicy lists pending rows whose period lies strictly
	// before the current billing period.
	FindOverdueByPolicy(ctx context.Context, policyID id.PolicyID, current models.Period) ([]*models.Payment, error)
	// ListPeriods returns every period that already has a row for the policy.
	ListPeriods(ctx context.Context, policyID id.PolicyID) ([]models.Period, error)
}
