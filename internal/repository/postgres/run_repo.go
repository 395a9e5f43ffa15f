package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"ndclink/internal/domain"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new PostgreSQL-backed RunRepository.
func NewRunRepo(db *sqlx.DB) *runRepo {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run *domain.PipelineRun) error {
	query := `
		INSERT INTO pipeline_runs (id, status, archive_source, started_at)
		VALUES (:id, :status, :archive_source, :started_at)`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("creating pipeline run: %w", err)
	}
	return nil
}

func (r *runRepo) Finish(ctx context.Context, run *domain.PipelineRun) error {
	query := `
		UPDATE pipeline_runs SET
			status = :status,
			documents_seen = :documents_seen,
			parse_failures = :parse_failures,
			no_manufacturer = :no_manufacturer,
			rows_extracted = :rows_extracted,
			rows_persisted = :rows_persisted,
			rows_failed = :rows_failed,
			error = :error,
			finished_at = NOW()
		WHERE id = :id`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("finishing pipeline run %s: %w", run.ID, err)
	}
	return nil
}

func (r *runRepo) Latest(ctx context.Context) (*domain.PipelineRun, error) {
	var run domain.PipelineRun
	err := r.db.GetContext(ctx, &run, `
		SELECT id, status, archive_source, documents_seen, parse_failures,
			no_manufacturer, rows_extracted, rows_persisted, rows_failed,
			error, started_at, finished_at
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest pipeline run: %w", err)
	}
	return &run, nil
}
