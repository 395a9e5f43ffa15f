package port

import (
	"context"

	"ndclink/internal/domain"
)

// ReportSender delivers the end-of-run statistics report to operators.
type ReportSender interface {
	SendRunReport(ctx context.Context, run *domain.PipelineRun) error
}
