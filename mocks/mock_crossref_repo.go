package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ndclink/internal/domain"
)

// MockCrossRefRepo is a mock implementation of port.CrossRefRepository.
type MockCrossRefRepo struct {
	mock.Mock
}

func (m *MockCrossRefRepo) UpsertBatch(ctx context.Context, rows []domain.CrossReference) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockCrossRefRepo) Upsert(ctx context.Context, row domain.CrossReference) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockCrossRefRepo) GetByNDC(ctx context.Context, ndc string) (*domain.CrossReference, error) {
	args := m.Called(ctx, ndc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CrossReference), args.Error(1)
}

func (m *MockCrossRefRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCrossRefRepo) List(ctx context.Context, offset, limit int) ([]domain.CrossReference, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CrossReference), args.Error(1)
}
