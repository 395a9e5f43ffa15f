package port

import (
	"context"

	"ndclink/internal/domain"
)

// CrossRefRepository defines the contract for cross-reference persistence.
// Upserts are blind writes keyed on NDC; conflict resolution is delegated
// to the store's native ON CONFLICT semantics.
type CrossRefRepository interface {
	UpsertBatch(ctx context.Context, rows []domain.CrossReference) error
	Upsert(ctx context.Context, row domain.CrossReference) error
	GetByNDC(ctx context.Context, ndc string) (*domain.CrossReference, error)
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, offset, limit int) ([]domain.CrossReference, error)
}
