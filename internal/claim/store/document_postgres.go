package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"amparo/internal/claim/models"
	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
)

// PostgresDocumentStore persists document metadata in PostgreSQL.
type PostgresDocumentStore struct {
	db *sql.DB
}

// NewDocumentPostgres constructs a PostgreSQL-backed document store.
func NewDocumentPostgres(db *sql.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

func (s *PostgresDocumentStore) Insert(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, claim_id, type, digest, url, validation_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(doc.ID), uuid.UUID(doc.ClaimID), doc.Type,
		doc.Digest, doc.URL, string(doc.ValidationStatus), doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresDocumentStore) CountByClaim(ctx context.Context, claimID id.ClaimID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE claim_id = $1`, uuid.UUID(claimID),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

func (s *PostgresDocumentStore) ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Document, error) {
	query := `
		SELECT id, claim_id, type, digest, url, validation_status, created_at
		FROM documents
		WHERE claim_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(claimID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var (
			d     models.Document
			rawID uuid.UUID
			claim uuid.UUID
		)
		if err := rows.Scan(&rawID, &claim, &d.Type, &d.Digest, &d.URL, &d.ValidationStatus, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.ID = id.DocumentID(rawID)
		d.ClaimID = id.ClaimID(claim)
		docs = append(docs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *PostgresDocumentStore) UpdateValidation(ctx context.Context, docID id.DocumentID, status models.ValidationStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET validation_status = $2 WHERE id = $1`,
		uuid.UUID(docID), string(status),
	)
	if err != nil {
		return fmt.Errorf("update document validation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document validation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %s: %w", docID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresDocumentStore) ExistsByDigest(ctx context.Context, claimID id.ClaimID, digest string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE claim_id = $1 AND digest = $2)`,
		uuid.UUID(claimID), digest,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("document exists by digest: %w", err)
	}
	return exists, nil
}
