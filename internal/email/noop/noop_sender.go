package noop

import (
	"context"
	"log"

	"ndclink/internal/domain"
	"ndclink/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op ReportSender that logs the run summary
// instead of mailing it.
func NewNoopSender() port.ReportSender {
	return &noopSender{}
}

func (s *noopSender) SendRunReport(_ context.Context, run *domain.PipelineRun) error {
	log.Printf("[NOOP EMAIL] run %s %s: %d documents, %d parse failures, %d rows persisted, %d rows failed",
		run.ID, run.Status, run.DocumentsSeen, run.ParseFailures, run.RowsPersisted, run.RowsFailed)
	return nil
}
