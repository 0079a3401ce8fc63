// Package store reads validity periods. Rows are re-read on every guard
// evaluation so administrative edits take effect immediately (no caching).
package store

import (
	"context"
	"time"

	"amparo/internal/vigency/models"
)

type Store interface {
	// FindActiveForDate returns the open period whose window contains date.
	// Returns sentinel.ErrNotFound when no such period exists.
	FindActiveForDate(ctx context.Context, date time.Time) (*models.Period, error)
}
