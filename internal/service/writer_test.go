package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ndclink/internal/domain"
	"ndclink/mocks"
)

func TestFlush_AllBatchesSucceed(t *testing.T) {
	repo := new(mocks.MockCrossRefRepo)
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	w := NewWriter(repo, 2)
	mapping := map[string]string{
		"0001-0001-01": "111111111",
		"0001-0002-01": "111111111",
		"0001-0003-01": "222222222",
		"0001-0004-01": "222222222",
		"0001-0005-01": "333333333",
	}

	persisted, failed := w.Flush(context.Background(), mapping)

	assert.Equal(t, 5, persisted)
	assert.Equal(t, 0, failed)
	repo.AssertNumberOfCalls(t, "UpsertBatch", 3)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestFlush_FailedBatchDegradesToRows(t *testing.T) {
	repo := new(mocks.MockCrossRefRepo)

	// Rows flush in NDC order, so the first batch is 0001/0002.
	firstBatch := mock.MatchedBy(func(rows []domain.CrossReference) bool {
		return len(rows) > 0 && rows[0].NDC == "0001-0001-01"
	})
	repo.On("UpsertBatch", mock.Anything, firstBatch).Return(errors.New("bad batch"))
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	repo.On("Upsert", mock.Anything, domain.CrossReference{NDC: "0001-0001-01", DUNS: "111111111"}).Return(nil)
	repo.On("Upsert", mock.Anything, domain.CrossReference{NDC: "0001-0002-01", DUNS: "oops"}).Return(errors.New("constraint violation"))

	w := NewWriter(repo, 2)
	mapping := map[string]string{
		"0001-0001-01": "111111111",
		"0001-0002-01": "oops",
		"0001-0003-01": "222222222",
	}

	persisted, failed := w.Flush(context.Background(), mapping)

	assert.Equal(t, 2, persisted)
	assert.Equal(t, 1, failed)
	repo.AssertNumberOfCalls(t, "Upsert", 2)
}

func TestFlush_EmptyMapping(t *testing.T) {
	repo := new(mocks.MockCrossRefRepo)

	w := NewWriter(repo, 100)
	persisted, failed := w.Flush(context.Background(), nil)

	assert.Zero(t, persisted)
	assert.Zero(t, failed)
	repo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestNewWriter_ClampsBatchSize(t *testing.T) {
	repo := new(mocks.MockCrossRefRepo)
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	w := NewWriter(repo, 0)
	persisted, _ := w.Flush(context.Background(), map[string]string{
		"0001-0001-01": "111111111",
		"0001-0002-01": "111111111",
	})

	assert.Equal(t, 2, persisted)
	repo.AssertNumberOfCalls(t, "UpsertBatch", 2)
}
