package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"amparo/internal/policy/models"
	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
)

// PostgresStore persists policies in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed policy store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, policyID id.PolicyID) (*models.Policy, error) {
	query := `
		SELECT id, holder_id, status, monthly_premium, coverage_amount, copay_config_id, valid_from, valid_to, created_at
		FROM policies
		WHERE id = $1
	`
	var (
		p       models.Policy
		rawID   uuid.UUID
		holder  uuid.UUID
		copayID uuid.NullUUID
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(policyID)).Scan(
		&rawID, &holder, &p.Status, &p.MonthlyPremium, &p.CoverageAmount,
		&copayID, &p.ValidFrom, &p.ValidTo, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy %s: %w", policyID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find policy: %w", err)
	}
	p.ID = id.PolicyID(rawID)
	p.HolderID = id.HolderID(holder)
	if copayID.Valid {
		cid := id.CopayConfigID(copayID.UUID)
		p.CopayConfigID = &cid
	}
	return &p, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, policyID id.PolicyID, status models.PolicyStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE policies SET status = $2 WHERE id = $1`,
		uuid.UUID(policyID), string(status),
	)
	if err != nil {
		return fmt.Errorf("update policy status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update policy status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("policy %s: %w", policyID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) FindCopayConfig(ctx context.Context, policyID id.PolicyID) (*models.CopayConfig, error) {
	query := `
		SELECT c.id, c.institution_pct
		FROM copay_configs c
		JOIN policies p ON p.copay_config_id = c.id
		WHERE p.id = $1
	`
	var (
		cfg   models.CopayConfig
		rawID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(policyID)).Scan(&rawID, &cfg.InstitutionPct)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("copay config for policy %s: %w", policyID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find copay config: %w", err)
	}
	cfg.ID = id.CopayConfigID(rawID)
	return &cfg, nil
}
