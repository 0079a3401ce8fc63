//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amparo/internal/payment/models"
	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
	"amparo/pkg/testutil/containers"
)

func seedPolicyRow(t *testing.T, pg *containers.PostgresContainer) id.PolicyID {
	t.Helper()
	policyID := id.NewPolicyID()
	_, err := pg.DB.Exec(`
		INSERT INTO policies (id, holder_id, status, monthly_premium, valid_from, valid_to)
		VALUES ($1, $2, 'active', 120, now() - interval '1 year', now() + interval '1 year')
	`, uuid.UUID(policyID), uuid.New())
	require.NoError(t, err)
	return policyID
}

func TestPostgresPaymentStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	payments := NewPostgres(pg.DB)
	ctx := context.Background()

	policyID := seedPolicyRow(t, pg)
	now := time.Now().UTC()
	paid := &models.Payment{
		ID:            id.NewPaymentID(),
		PolicyID:      policyID,
		Period:        models.Period{Month: 3, Year: 2026},
		Amount:        120,
		EmployeeShare: 120,
		Status:        models.PaymentStatusPaid,
		PaidAt:        &now,
		CreatedAt:     now,
	}
	require.NoError(t, payments.Insert(ctx, paid))

	t.Run("duplicate period hits the unique index", func(t *testing.T) {
		dup := *paid
		dup.ID = id.NewPaymentID()
		err := payments.Insert(ctx, &dup)
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("batch pending insert skips taken periods", func(t *testing.T) {
		var batch []*models.Payment
		for month := 1; month <= 4; month++ {
			batch = append(batch, &models.Payment{
				ID:            id.NewPaymentID(),
				PolicyID:      policyID,
				Period:        models.Period{Month: month, Year: 2026},
				Amount:        120,
				EmployeeShare: 120,
				Status:        models.PaymentStatusPending,
				CreatedAt:     now,
			})
		}
		inserted, err := payments.InsertPending(ctx, batch)
		require.NoError(t, err)
		// March already has the paid row.
		require.Len(t, inserted, 3)

		again, err := payments.InsertPending(ctx, batch)
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("overdue lists pending periods before the current one", func(t *testing.T) {
		overdue, err := payments.FindOverdueByPolicy(ctx, policyID, models.Period{Month: 4, Year: 2026})
		require.NoError(t, err)
		require.Len(t, overdue, 2)
		for _, p := range overdue {
			assert.Equal(t, models.PaymentStatusPending, p.Status)
			assert.Less(t, p.Period.Month, 4)
		}
	})

	t.Run("list periods covers paid and pending", func(t *testing.T) {
		periods, err := payments.ListPeriods(ctx, policyID)
		require.NoError(t, err)
		assert.Len(t, periods, 4)
	})

	t.Run("find by period round-trips", func(t *testing.T) {
		stored, err := payments.FindByPeriod(ctx, policyID, models.Period{Month: 3, Year: 2026})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, stored.Status)
		require.NotNil(t, stored.PaidAt)

		_, err = payments.FindByPeriod(ctx, policyID, models.Period{Month: 12, Year: 2030})
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
