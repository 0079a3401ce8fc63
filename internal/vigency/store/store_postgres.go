package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"amparo/internal/vigency/models"
	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
)

// PostgresStore reads validity periods from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed period store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindActiveForDate(ctx context.Context, date time.Time) (*models.Period, error) {
	query := `
		SELECT id, year, status, start_date, end_date
		FROM validity_periods
		WHERE status = 'open' AND start_date <= $1 AND end_date >= $1
		ORDER BY start_date DESC
		LIMIT 1
	`
	var (
		p     models.Period
		rawID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, date).Scan(&rawID, &p.Year, &p.Status, &p.StartDate, &p.EndDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no open validity period for %s: %w", date.Format("2006-01-02"), sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find active period: %w", err)
	}
	p.ID = id.PeriodID(rawID)
	return &p, nil
}
