// Package vigency decides whether new claims may be admitted for a given
// date. A claim is admissible only while an open validity period contains the
// admission date; the commercial-exception bypass is handled by the caller,
// never here.
package vigency

import (
	"context"
	"errors"
	"time"

	"amparo/internal/vigency/models"
	"amparo/internal/vigency/store"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/sentinel"
)

// Guard evaluates admission windows against the period store. Stateless; the
// store is re-read on every call so administrative edits apply immediately.
type Guard struct {
	periods store.Store
}

// NewGuard constructs a vigency guard over the given period store.
func NewGuard(periods store.Store) *Guard {
	return &Guard{periods: periods}
}

// AdmissionPeriod returns the open validity period containing date, or a
// guard_blocked error when admission is closed.
func (g *Guard) AdmissionPeriod(ctx context.Context, date time.Time) (*models.Period, error) {
	period, err := g.periods.FindActiveForDate(ctx, date)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeGuardBlocked, "claim admission is closed: no open validity period for the requested date")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not evaluate validity period")
	}
	return period, nil
}
