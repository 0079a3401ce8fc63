package rules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"amparo/internal/payment/split"
)

// PostgresStore reads rule rows from PostgreSQL on every call.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed rules store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) PaymentCutoffDay(ctx context.Context) (int, error) {
	var day int
	err := s.db.QueryRowContext(ctx,
		`SELECT int_value FROM business_rules WHERE name = 'payment_cutoff_day'`).Scan(&day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return split.DefaultCutoffDay, nil
		}
		return 0, fmt.Errorf("read payment cutoff day: %w", err)
	}
	return day, nil
}
