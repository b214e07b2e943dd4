package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/goldyhq/goldy/internal/database"
	"github.com/goldyhq/goldy/internal/models"
	"github.com/goldyhq/goldy/internal/pricing"
	"github.com/goldyhq/goldy/internal/scheduler"
)

// ScrapeService is the scheduler surface the API exposes.
type ScrapeService interface {
	TriggerBatch(ctx context.Context) (models.BatchResult, error)
	TriggerListing(ctx context.Context, listingID string) (bool, error)
	Status() scheduler.Status
}

// OutboxStats feeds the health endpoint's outbox gauges.
type OutboxStats interface {
	GetPendingCount(ctx context.Context) (int64, error)
	GetDeadLetterCount(ctx context.Context) (int64, error)
}

type Handlers struct {
	scrapes  ScrapeService
	assets   *database.AssetRepository
	dealers  *database.DealerRepository
	listings *database.ListingRepository
	prices   *database.PriceRepository
	analyzer *pricing.Analyzer
	outbox   OutboxStats
	logger   *slog.Logger
}

func NewHandlers(
	scrapes ScrapeService,
	assets *database.AssetRepository,
	dealers *database.DealerRepository,
	listings *database.ListingRepository,
	prices *database.PriceRepository,
	analyzer *pricing.Analyzer,
	outbox OutboxStats,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		scrapes:  scrapes,
		assets:   assets,
		dealers:  dealers,
		listings: listings,
		prices:   prices,
		analyzer: analyzer,
		outbox:   outbox,
		logger:   logger.With("component", "api"),
	}
}

// TriggerScraping starts a batch run and returns the aggregate, 202-style:
// the aggregate is returned even when every listing failed. Only a colliding
// run is a hard error.
func (h *Handlers) TriggerScraping(w http.ResponseWriter, r *http.Request) {
	result, err := h.scrapes.TriggerBatch(r.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrAlreadyRunning) {
			h.respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("failed to run batch scrape", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to run batch scrape")
		return
	}

	h.respondJSON(w, http.StatusAccepted, result)
}

// ListingScrapeResponse is the outcome of a single-listing trigger.
type ListingScrapeResponse struct {
	ListingID string `json:"listing_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

func (h *Handlers) TriggerListingScraping(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	if listingID == "" {
		h.respondError(w, http.StatusBadRequest, "listing ID is required")
		return
	}

	ok, err := h.scrapes.TriggerListing(r.Context(), listingID)
	if err != nil {
		h.logger.Error("failed to scrape listing", "listing_id", listingID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to scrape listing")
		return
	}

	resp := ListingScrapeResponse{ListingID: listingID, Success: ok}
	if !ok {
		resp.Error = "no suitable scraper strategy found or listing not found"
	}

	h.respondJSON(w, http.StatusAccepted, resp)
}

func (h *Handlers) GetScrapingStatus(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.scrapes.Status())
}

func (h *Handlers) GetLatestPrices(w http.ResponseWriter, r *http.Request) {
	latest, err := h.prices.FindLatestPrices(r.Context())
	if err != nil {
		h.logger.Error("failed to get latest prices", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get latest prices")
		return
	}

	h.respondJSON(w, http.StatusOK, latest)
}

func (h *Handlers) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	if listingID == "" {
		h.respondError(w, http.StatusBadRequest, "listing ID is required")
		return
	}

	records, err := h.prices.FindByListingID(r.Context(), listingID, 0)
	if err != nil {
		h.logger.Error("failed to get price history", "listing_id", listingID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get price history")
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}

// GetPricesByDateRange returns all records in a window, for exports and
// offline analysis. Start and end are RFC 3339 timestamps.
func (h *Handlers) GetPricesByDateRange(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "start must be an RFC 3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "end must be an RFC 3339 timestamp")
		return
	}
	if end.Before(start) {
		h.respondError(w, http.StatusBadRequest, "end must not be before start")
		return
	}

	records, err := h.prices.FindByDateRange(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to get prices by date range", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get prices")
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}

func (h *Handlers) GetPriceRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.prices.FindByID(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		h.logger.Error("failed to get price record", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get price record")
		return
	}
	if record == nil {
		h.respondError(w, http.StatusNotFound, "price record not found")
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

func (h *Handlers) ComparePrices(w http.ResponseWriter, r *http.Request) {
	assetID := r.URL.Query().Get("asset_id")

	comparisons, err := h.analyzer.CompareAcrossDealers(r.Context(), assetID)
	if err != nil {
		h.logger.Error("failed to compare prices", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to compare prices")
		return
	}

	h.respondJSON(w, http.StatusOK, comparisons)
}

func (h *Handlers) GetPriceTrend(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	if listingID == "" {
		h.respondError(w, http.StatusBadRequest, "listing ID is required")
		return
	}

	trend, err := h.analyzer.TrendForListing(r.Context(), listingID)
	if err != nil {
		h.logger.Error("failed to get price trend", "listing_id", listingID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get price trend")
		return
	}

	h.respondJSON(w, http.StatusOK, trend)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status": "ok",
	}
	status := http.StatusOK

	if h.outbox != nil {
		pendingCount, _ := h.outbox.GetPendingCount(r.Context())
		deadLetterCount, _ := h.outbox.GetDeadLetterCount(r.Context())

		health["outbox"] = map[string]interface{}{
			"pending":     pendingCount,
			"dead_letter": deadLetterCount,
		}

		if pendingCount > 1000 {
			health["status"] = "warning"
			health["message"] = "High number of pending outbox events"
		}
		if deadLetterCount > 100 {
			health["status"] = "error"
			health["message"] = "High number of dead letter events"
			status = http.StatusServiceUnavailable
		}
	}

	h.respondJSON(w, status, health)
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
