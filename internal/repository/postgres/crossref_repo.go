package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"ndclink/internal/domain"
)

type crossRefRepo struct {
	db *sqlx.DB
}

// NewCrossRefRepo creates a new PostgreSQL-backed CrossRefRepository.
func NewCrossRefRepo(db *sqlx.DB) *crossRefRepo {
	return &crossRefRepo{db: db}
}

const upsertQuery = `
	INSERT INTO ndc_manufacturers (ndc, duns, created_at, updated_at)
	VALUES (:ndc, :duns, NOW(), NOW())
	ON CONFLICT (ndc) DO UPDATE SET
		duns = EXCLUDED.duns,
		updated_at = NOW()`

// UpsertBatch writes one batch with a single multi-row statement. The
// whole batch fails or succeeds together; per-row recovery is the
// caller's concern.
func (r *crossRefRepo) UpsertBatch(ctx context.Context, rows []domain.CrossReference) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := r.db.NamedExecContext(ctx, upsertQuery, rows); err != nil {
		return fmt.Errorf("upserting batch of %d rows: %w", len(rows), err)
	}
	return nil
}

func (r *crossRefRepo) Upsert(ctx context.Context, row domain.CrossReference) error {
	if _, err := r.db.NamedExecContext(ctx, upsertQuery, row); err != nil {
		return fmt.Errorf("upserting ndc %s: %w", row.NDC, err)
	}
	return nil
}

func (r *crossRefRepo) GetByNDC(ctx context.Context, ndc string) (*domain.CrossReference, error) {
	var row domain.CrossReference
	err := r.db.GetContext(ctx, &row,
		`SELECT ndc, duns, updated_at FROM ndc_manufacturers WHERE ndc = $1`, ndc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting ndc %s: %w", ndc, err)
	}
	return &row, nil
}

func (r *crossRefRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM ndc_manufacturers`); err != nil {
		return 0, fmt.Errorf("counting cross-references: %w", err)
	}
	return count, nil
}

func (r *crossRefRepo) List(ctx context.Context, offset, limit int) ([]domain.CrossReference, error) {
	var rows []domain.CrossReference
	err := r.db.SelectContext(ctx, &rows,
		`SELECT ndc, duns, updated_at FROM ndc_manufacturers ORDER BY ndc LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing cross-references: %w", err)
	}
	return rows, nil
}
