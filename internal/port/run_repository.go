package port

import (
	"context"

	"ndclink/internal/domain"
)

// RunRepository defines the contract for pipeline run audit persistence.
type RunRepository interface {
	Create(ctx context.Context, run *domain.PipelineRun) error
	Finish(ctx context.Context, run *domain.PipelineRun) error
	Latest(ctx context.Context) (*domain.PipelineRun, error)
}
