package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ndclink/internal/domain"
)

// MockReportSender is a mock implementation of port.ReportSender.
type MockReportSender struct {
	mock.Mock
}

func (m *MockReportSender) SendRunReport(ctx context.Context, run *domain.PipelineRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}
