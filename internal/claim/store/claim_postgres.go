package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"amparo/internal/claim/models"
	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// PostgresClaimStore persists claims in PostgreSQL. The unique index on
// (policy_id, deceased_id, incident_date) is the concurrency control for
// duplicate intake; the losing insert surfaces sentinel.ErrConflict.
type PostgresClaimStore struct {
	db *sql.DB
}

// NewClaimPostgres constructs a PostgreSQL-backed claim store.
func NewClaimPostgres(db *sql.DB) *PostgresClaimStore {
	return &PostgresClaimStore{db: db}
}

func (s *PostgresClaimStore) Create(ctx context.Context, claim *models.Claim) error {
	query := `
		INSERT INTO claims (id, policy_id, deceased_id, incident_date, reported_at, status, cause, extemporaneous, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(claim.ID), uuid.UUID(claim.PolicyID), claim.DeceasedID,
		claim.IncidentDate, claim.ReportedAt, string(claim.Status),
		claim.Cause, claim.Extemporaneous, claim.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("claim for policy %s deceased %s: %w",
				claim.PolicyID, claim.DeceasedID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (s *PostgresClaimStore) FindByID(ctx context.Context, claimID id.ClaimID) (*models.Claim, error) {
	query := `
		SELECT id, policy_id, deceased_id, incident_date, reported_at, status, cause,
		       liquidation_amount, liquidation_date, extemporaneous, created_at
		FROM claims
		WHERE id = $1
	`
	var (
		c         models.Claim
		rawID     uuid.UUID
		policyID  uuid.UUID
		liqAmount sql.NullFloat64
		liqDate   sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(claimID)).Scan(
		&rawID, &policyID, &c.DeceasedID, &c.IncidentDate, &c.ReportedAt,
		&c.Status, &c.Cause, &liqAmount, &liqDate, &c.Extemporaneous, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("claim %s: %w", claimID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find claim: %w", err)
	}
	c.ID = id.ClaimID(rawID)
	c.PolicyID = id.PolicyID(policyID)
	if liqAmount.Valid {
		v := liqAmount.Float64
		c.LiquidationAmount = &v
	}
	if liqDate.Valid {
		t := liqDate.Time
		c.LiquidationDate = &t
	}
	return &c, nil
}

// UpdateStatus is a conditional write keyed on the expected current status, so
// two concurrent transitions cannot both win.
func (s *PostgresClaimStore) UpdateStatus(ctx context.Context, claimID id.ClaimID, from, to models.ClaimStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE claims SET status = $3 WHERE id = $1 AND status = $2`,
		uuid.UUID(claimID), string(from), string(to),
	)
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM claims WHERE id = $1)`, uuid.UUID(claimID),
		).Scan(&exists); err != nil {
			return fmt.Errorf("update claim status: %w", err)
		}
		if !exists {
			return fmt.Errorf("claim %s: %w", claimID, sentinel.ErrNotFound)
		}
		return fmt.Errorf("claim %s is no longer %s: %w", claimID, from, sentinel.ErrConflict)
	}
	return nil
}

func (s *PostgresClaimStore) SetLiquidation(ctx context.Context, claimID id.ClaimID, amount float64, date time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE claims SET liquidation_amount = $2, liquidation_date = $3 WHERE id = $1`,
		uuid.UUID(claimID), amount, date,
	)
	if err != nil {
		return fmt.Errorf("set claim liquidation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set claim liquidation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("claim %s: %w", claimID, sentinel.ErrNotFound)
	}
	return nil
}
