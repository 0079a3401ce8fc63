package vigency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amparo/internal/vigency/models"
	"amparo/internal/vigency/store"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdmissionPeriod(t *testing.T) {
	ctx := context.Background()

	t.Run("open period containing the date admits", func(t *testing.T) {
		periods := store.NewMemory()
		periods.Seed(&models.Period{
			ID:        id.NewPeriodID(),
			Year:      2026,
			Status:    models.PeriodStatusOpen,
			StartDate: day(2026, time.January, 1),
			EndDate:   day(2026, time.December, 31),
		})
		guard := NewGuard(periods)

		period, err := guard.AdmissionPeriod(ctx, day(2026, time.June, 15))
		require.NoError(t, err)
		assert.Equal(t, 2026, period.Year)
	})

	t.Run("closed period blocks", func(t *testing.T) {
		periods := store.NewMemory()
		periods.Seed(&models.Period{
			ID:        id.NewPeriodID(),
			Year:      2026,
			Status:    models.PeriodStatusClosed,
			StartDate: day(2026, time.January, 1),
			EndDate:   day(2026, time.December, 31),
		})
		guard := NewGuard(periods)

		_, err := guard.AdmissionPeriod(ctx, day(2026, time.June, 15))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeGuardBlocked))
	})

	t.Run("date outside the window blocks", func(t *testing.T) {
		periods := store.NewMemory()
		periods.Seed(&models.Period{
			ID:        id.NewPeriodID(),
			Year:      2025,
			Status:    models.PeriodStatusOpen,
			StartDate: day(2025, time.January, 1),
			EndDate:   day(2025, time.December, 31),
		})
		guard := NewGuard(periods)

		_, err := guard.AdmissionPeriod(ctx, day(2026, time.January, 2))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeGuardBlocked))
	})

	t.Run("window boundaries are inclusive", func(t *testing.T) {
		periods := store.NewMemory()
		periods.Seed(&models.Period{
			ID:        id.NewPeriodID(),
			Year:      2026,
			Status:    models.PeriodStatusOpen,
			StartDate: day(2026, time.March, 1),
			EndDate:   day(2026, time.March, 31),
		})
		guard := NewGuard(periods)

		_, err := guard.AdmissionPeriod(ctx, day(2026, time.March, 1))
		assert.NoError(t, err)
		_, err = guard.AdmissionPeriod(ctx, day(2026, time.March, 31))
		assert.NoError(t, err)
	})
}
