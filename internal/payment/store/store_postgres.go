package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"amparo/internal/payment/models"
	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// PostgresStore persists payments in PostgreSQL. The unique index on
// (policy_id, month, year) is the concurrency control for duplicate
// registrations; the losing insert surfaces sentinel.ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed payment store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, policy_id, month, year, amount, employee_share, institution_share, extemporaneous, status, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(payment.ID), uuid.UUID(payment.PolicyID),
		payment.Period.Month, payment.Period.Year,
		payment.Amount, payment.EmployeeShare, payment.InstitutionShare,
		payment.Extemporaneous, string(payment.Status), payment.PaidAt, payment.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("payment for policy %s period %d/%d: %w",
				payment.PolicyID, payment.Period.Month, payment.Period.Year, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// InsertPending batch-inserts pending rows with unnest so a policy backlog is
// one round trip. ON CONFLICT DO NOTHING skips periods that gained a row
// concurrently.
func (s *PostgresStore) InsertPending(ctx context.Context, payments []*models.Payment) ([]*models.Payment, error) {
	if len(payments) == 0 {
		return nil, nil
	}

	ids := make([]string, len(payments))
	policyIDs := make([]string, len(payments))
	months := make([]int64, len(payments))
	years := make([]int64, len(payments))
	amounts := make([]float64, len(payments))
	employee := make([]float64, len(payments))
	institution := make([]float64, len(payments))
	for i, p := range payments {
		ids[i] = p.ID.String()
		policyIDs[i] = p.PolicyID.String()
		months[i] = int64(p.Period.Month)
		years[i] = int64(p.Period.Year)
		amounts[i] = p.Amount
		employee[i] = p.EmployeeShare
		institution[i] = p.InstitutionShare
	}

	query := `
		INSERT INTO payments (id, policy_id, month, year, amount, employee_share, institution_share, extemporaneous, status, created_at)
		SELECT unnest($1::uuid[]), unnest($2::uuid[]), unnest($3::int[]), unnest($4::int[]),
		       unnest($5::numeric[]), unnest($6::numeric[]), unnest($7::numeric[]),
		       false, 'pending', now()
		ON CONFLICT (policy_id, month, year) DO NOTHING
		RETURNING policy_id, month, year
	`
	rows, err := s.db.QueryContext(ctx, query,
		pq.Array(ids), pq.Array(policyIDs), pq.Array(months), pq.Array(years),
		pq.Array(amounts), pq.Array(employee), pq.Array(institution),
	)
	if err != nil {
		return nil, fmt.Errorf("insert pending payments: %w", err)
	}
	defer rows.Close()

	won := make(map[models.Period]bool, len(payments))
	for rows.Next() {
		var (
			policy uuid.UUID
			month  int
			year   int
		)
		if err := rows.Scan(&policy, &month, &year); err != nil {
			return nil, fmt.Errorf("scan inserted pending payment: %w", err)
		}
		won[models.Period{Month: month, Year: year}] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("insert pending payments: %w", err)
	}

	var inserted []*models.Payment
	for _, p := range payments {
		if won[p.Period] {
			inserted = append(inserted, p)
		}
	}
	return inserted, nil
}

func (s *PostgresStore) FindByPeriod(ctx context.Context, policyID id.PolicyID, period models.Period) (*models.Payment, error) {
	query := `
		SELECT id, policy_id, month, year, amount, employee_share, institution_share, extemporaneous, status, paid_at, created_at
		FROM payments
		WHERE policy_id = $1 AND month = $2 AND year = $3
	`
	payment, err := scanPayment(s.db.QueryRowContext(ctx, query, uuid.UUID(policyID), period.Month, period.Year))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment for policy %s period %d/%d: %w",
				policyID, period.Month, period.Year, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find payment by period: %w", err)
	}
	return payment, nil
}

func (s *PostgresStore) FindOverdueByPolicy(ctx context.Context, policyID id.PolicyID, current models.Period) ([]*models.Payment, error) {
	query := `
		SELECT id, policy_id, month, year, amount, employee_share, institution_share, extemporaneous, status, paid_at, created_at
		FROM payments
		WHERE policy_id = $1 AND status = 'pending' AND (year, month) < ($3, $2)
		ORDER BY year, month
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(policyID), current.Month, current.Year)
	if err != nil {
		return nil, fmt.Errorf("find overdue payments: %w", err)
	}
	defer rows.Close()

	var overdue []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan overdue payment: %w", err)
		}
		overdue = append(overdue, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find overdue payments: %w", err)
	}
	return overdue, nil
}

func (s *PostgresStore) ListPeriods(ctx context.Context, policyID id.PolicyID) ([]models.Period, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT month, year FROM payments WHERE policy_id = $1`, uuid.UUID(policyID))
	if err != nil {
		return nil, fmt.Errorf("list payment periods: %w", err)
	}
	defer rows.Close()

	var periods []models.Period
	for rows.Next() {
		var p models.Period
		if err := rows.Scan(&p.Month, &p.Year); err != nil {
			return nil, fmt.Errorf("scan payment period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payment periods: %w", err)
	}
	return periods, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var (
		p        models.Payment
		rawID    uuid.UUID
		policyID uuid.UUID
		paidAt   sql.NullTime
	)
	err := row.Scan(&rawID, &policyID, &p.Period.Month, &p.Period.Year,
		&p.Amount, &p.EmployeeShare, &p.InstitutionShare,
		&p.Extemporaneous, &p.Status, &paidAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = id.PaymentID(rawID)
	p.PolicyID = id.PolicyID(policyID)
	if paidAt.Valid {
		t := paidAt.Time
		p.PaidAt = &t
	}
	return &p, nil
}
