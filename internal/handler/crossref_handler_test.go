package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ndclink/internal/domain"
	"ndclink/mocks"
)

func newTestRouter(repo *mocks.MockCrossRefRepo, runs *mocks.MockRunRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	crossRefH := NewCrossRefHandler(repo)
	r.GET("/api/v1/crossrefs", crossRefH.List)
	r.GET("/api/v1/crossrefs/export/csv", crossRefH.ExportCSV)
	r.GET("/api/v1/crossrefs/:ndc", crossRefH.GetByNDC)

	if runs != nil {
		runH := NewRunHandler(runs)
		r.GET("/api/v1/runs/latest", runH.Latest)
	}
	return r
}

func TestGetByNDC(t *testing.T) {
	repo := new(mocks.MockCrossRefRepo)
	repo.On("GetByNDC", mock.Anything, "0001-0111-11").Return(&domain.CrossReference{
		NDC:  "0001-0111-11",
		DUNS: "111111111",
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/crossrefs/0001-0111-11", nil)
	newTestRouter(repo, nil).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "0001-0111-11", data["ndc"])
	assert.Equal(t, "111111111", data["duns"])
}

func TestGetByNDC_NotFound(t *testing.T) {
	repo := new(mocks.MockCrossRefRepo)
	repo.On("GetByNDC", mock.Anything, "9999-9999-99").Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/crossrefs/9999-9999-99", nil)
	newTestRouter(repo, nil).ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestList(t *testing.T) {
	repo := new(mocks.MockCrossRefRepo)
	repo.On("Count", mock.Anything).Return(2, nil)
	repo.On("List", mock.Anything, 0, 50).Return([]domain.CrossReference{
		{NDC: "0001-0111-11", DUNS: "111111111"},
		{NDC: "0002-0222-22", DUNS: "222222222"},
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/crossrefs", nil)
	newTestRouter(repo, nil).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)
	assert.Equal(t, 0, resp.Meta.Offset)
	assert.Equal(t, 50, resp.Meta.Limit)
}

func TestList_PaginationParams(t *testing.T) {
	repo := new(mocks.MockCrossRefRepo)
	repo.On("Count", mock.Anything).Return(0, nil)
	repo.On("List", mock.Anything, 100, 25).Return([]domain.CrossReference{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/crossrefs?offset=100&limit=25", nil)
	newTestRouter(repo, nil).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	repo.AssertCalled(t, "List", mock.Anything, 100, 25)
}

func TestList_LimitClamped(t *testing.T) {
	repo := new(mocks.MockCrossRefRepo)
	repo.On("Count", mock.Anything).Return(0, nil)
	repo.On("List", mock.Anything, 0, maxLimit).Return([]domain.CrossReference{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/crossrefs?limit=999999", nil)
	newTestRouter(repo, nil).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	repo.AssertCalled(t, "List", mock.Anything, 0, maxLimit)
}

func TestList_RepoError(t *testing.T) {
	repo := new(mocks.MockCrossRefRepo)
	repo.On("Count", mock.Anything).Return(0, errors.New("connection refused"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/crossrefs", nil)
	newTestRouter(repo, nil).ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExportCSV(t *testing.T) {
	repo := new(mocks.MockCrossRefRepo)
	repo.On("List", mock.Anything, 0, exportPageSize).Return([]domain.CrossReference{
		{NDC: "0001-0111-11", DUNS: "111111111", UpdatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}, nil)
	repo.On("List", mock.Anything, exportPageSize, exportPageSize).Return([]domain.CrossReference{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/crossrefs/export/csv", nil)
	newTestRouter(repo, nil).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	body := w.Body.String()
	assert.Contains(t, body, "NDC,Manufacturer DUNS,Updated At")
	assert.Contains(t, body, "0001-0111-11,111111111,2026-03-01T00:00:00Z")
}

func TestRunLatest(t *testing.T) {
	finished := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	runs := new(mocks.MockRunRepo)
	runs.On("Latest", mock.Anything).Return(&domain.PipelineRun{
		Status:        domain.RunStatusCompleted,
		RowsPersisted: 42,
		FinishedAt:    &finished,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil)
	newTestRouter(new(mocks.MockCrossRefRepo), runs).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, float64(42), data["rows_persisted"])
}

func TestRunLatest_NoneYet(t *testing.T) {
	runs := new(mocks.MockRunRepo)
	runs.On("Latest", mock.Anything).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil)
	newTestRouter(new(mocks.MockCrossRefRepo), runs).ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}
