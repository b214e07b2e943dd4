package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goldyhq/goldy/internal/models"
	"github.com/goldyhq/goldy/internal/scheduler"
)

// MockScrapeService is a mock for ScrapeService
type MockScrapeService struct {
	mock.Mock
}

func (m *MockScrapeService) TriggerBatch(ctx context.Context) (models.BatchResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.BatchResult), args.Error(1)
}

func (m *MockScrapeService) TriggerListing(ctx context.Context, listingID string) (bool, error) {
	args := m.Called(ctx, listingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockScrapeService) Status() scheduler.Status {
	args := m.Called()
	return args.Get(0).(scheduler.Status)
}

// MockOutboxStats is a mock for OutboxStats
type MockOutboxStats struct {
	mock.Mock
}

func (m *MockOutboxStats) GetPendingCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxStats) GetDeadLetterCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func testHandlers(scrapes ScrapeService, outbox OutboxStats) *Handlers {
	return &Handlers{
		scrapes: scrapes,
		outbox:  outbox,
		logger:  slog.Default(),
	}
}

func TestHandlers_TriggerScraping(t *testing.T) {
	t.Run("returns 202 with the aggregate", func(t *testing.T) {
		mockScrapes := new(MockScrapeService)
		mockScrapes.On("TriggerBatch", mock.Anything).Return(models.BatchResult{
			Success: 2,
			Failed:  1,
			Results: []models.ListingResult{
				{ListingID: "l1", Success: true},
				{ListingID: "l2", Success: true},
				{ListingID: "l3", Error: "no suitable scraper strategy found"},
			},
		}, nil)

		h := testHandlers(mockScrapes, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scraping/trigger", nil)
		rec := httptest.NewRecorder()

		h.TriggerScraping(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)

		var result models.BatchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 2, result.Success)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Results, 3)

		mockScrapes.AssertExpectations(t)
	})

	t.Run("returns 409 when a run is active", func(t *testing.T) {
		mockScrapes := new(MockScrapeService)
		mockScrapes.On("TriggerBatch", mock.Anything).
			Return(models.BatchResult{}, scheduler.ErrAlreadyRunning)

		h := testHandlers(mockScrapes, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scraping/trigger", nil)
		rec := httptest.NewRecorder()

		h.TriggerScraping(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), scheduler.ErrAlreadyRunning.Error())
	})

	t.Run("returns 500 on unexpected failure", func(t *testing.T) {
		mockScrapes := new(MockScrapeService)
		mockScrapes.On("TriggerBatch", mock.Anything).
			Return(models.BatchResult{}, errors.New("db down"))

		h := testHandlers(mockScrapes, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scraping/trigger", nil)
		rec := httptest.NewRecorder()

		h.TriggerScraping(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func listingRequest(t *testing.T, listingID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scraping/trigger/listing/"+listingID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("listingID", listingID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandlers_TriggerListingScraping(t *testing.T) {
	t.Run("successful scrape", func(t *testing.T) {
		mockScrapes := new(MockScrapeService)
		mockScrapes.On("TriggerListing", mock.Anything, "l1").Return(true, nil)

		h := testHandlers(mockScrapes, nil)

		rec := httptest.NewRecorder()
		h.TriggerListingScraping(rec, listingRequest(t, "l1"))

		assert.Equal(t, http.StatusAccepted, rec.Code)

		var resp ListingScrapeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "l1", resp.ListingID)
		assert.True(t, resp.Success)
		assert.Empty(t, resp.Error)
	})

	t.Run("miss is reported in the body", func(t *testing.T) {
		mockScrapes := new(MockScrapeService)
		mockScrapes.On("TriggerListing", mock.Anything, "l1").Return(false, nil)

		h := testHandlers(mockScrapes, nil)

		rec := httptest.NewRecorder()
		h.TriggerListingScraping(rec, listingRequest(t, "l1"))

		assert.Equal(t, http.StatusAccepted, rec.Code)

		var resp ListingScrapeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("unexpected failure is 500", func(t *testing.T) {
		mockScrapes := new(MockScrapeService)
		mockScrapes.On("TriggerListing", mock.Anything, "l1").Return(false, errors.New("browser crashed"))

		h := testHandlers(mockScrapes, nil)

		rec := httptest.NewRecorder()
		h.TriggerListingScraping(rec, listingRequest(t, "l1"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandlers_GetScrapingStatus(t *testing.T) {
	mockScrapes := new(MockScrapeService)
	mockScrapes.On("Status").Return(scheduler.Status{IsRunning: true})

	h := testHandlers(mockScrapes, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scraping/status", nil)
	rec := httptest.NewRecorder()

	h.GetScrapingStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var status scheduler.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.IsRunning)
}

func TestHandlers_Health(t *testing.T) {
	t.Run("healthy with outbox gauges", func(t *testing.T) {
		mockOutbox := new(MockOutboxStats)
		mockOutbox.On("GetPendingCount", mock.Anything).Return(int64(3), nil)
		mockOutbox.On("GetDeadLetterCount", mock.Anything).Return(int64(0), nil)

		h := testHandlers(nil, mockOutbox)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		h.Health(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var health map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		assert.Equal(t, "ok", health["status"])

		outbox := health["outbox"].(map[string]interface{})
		assert.EqualValues(t, 3, outbox["pending"])
	})

	t.Run("warning on pending backlog", func(t *testing.T) {
		mockOutbox := new(MockOutboxStats)
		mockOutbox.On("GetPendingCount", mock.Anything).Return(int64(5000), nil)
		mockOutbox.On("GetDeadLetterCount", mock.Anything).Return(int64(0), nil)

		h := testHandlers(nil, mockOutbox)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		h.Health(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "warning")
	})

	t.Run("unavailable on dead letter backlog", func(t *testing.T) {
		mockOutbox := new(MockOutboxStats)
		mockOutbox.On("GetPendingCount", mock.Anything).Return(int64(0), nil)
		mockOutbox.On("GetDeadLetterCount", mock.Anything).Return(int64(500), nil)

		h := testHandlers(nil, mockOutbox)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		h.Health(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("no outbox wired", func(t *testing.T) {
		h := testHandlers(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		h.Health(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
