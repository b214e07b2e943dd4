package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goldyhq/goldy/internal/models"
	"github.com/goldyhq/goldy/internal/ratelimit"
)

// ErrNoStrategyMessage is recorded on a listing whose dealer matches no
// registered strategy.
const ErrNoStrategyMessage = "no suitable scraper strategy found"

// Orchestrator drives a batch run: pull eligible listings, resolve a
// strategy per listing, fetch+extract+persist, one listing at a time with a
// fixed delay in between. Listings are never scraped concurrently; the
// throttle is what keeps dealer sites from flagging us.
type Orchestrator struct {
	listings ListingStore
	prices   PriceStore
	registry *Registry
	limiter  ratelimit.Limiter
	logger   *slog.Logger
}

func NewOrchestrator(listings ListingStore, prices PriceStore, registry *Registry, limiter ratelimit.Limiter, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		listings: listings,
		prices:   prices,
		registry: registry,
		limiter:  limiter,
		logger:   logger.With("component", "orchestrator"),
	}
}

// ScrapeAll runs one full pass over all eligible listings and aggregates the
// outcome. A single listing's failure never aborts the batch: strategy
// misses, soft extraction failures, and unexpected errors are all absorbed
// into per-listing result entries. Only the initial listing query can fail
// the call as a whole.
func (o *Orchestrator) ScrapeAll(ctx context.Context) (models.BatchResult, error) {
	eligible, err := o.listings.FindEligibleForScraping(ctx)
	if err != nil {
		return models.BatchResult{}, fmt.Errorf("failed to load eligible listings: %w", err)
	}

	o.logger.Info("starting scrape", "listings", len(eligible))

	result := models.BatchResult{Results: make([]models.ListingResult, 0, len(eligible))}

	for i, listing := range eligible {
		if i > 0 {
			if err := o.limiter.Wait(ctx); err != nil {
				// Context cancelled mid-batch; absorb the remainder as
				// failures so the aggregate still accounts for every listing.
				for _, rest := range eligible[i:] {
					result.Failed++
					result.Results = append(result.Results, models.ListingResult{
						ListingID: rest.ID,
						Error:     err.Error(),
					})
				}
				break
			}
		}

		entry := o.scrapeListing(ctx, listing)
		if entry.Success {
			result.Success++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, entry)
	}

	o.logger.Info("scraping completed", "success", result.Success, "failed", result.Failed)

	return result, nil
}

func (o *Orchestrator) scrapeListing(ctx context.Context, listing *models.Listing) models.ListingResult {
	strategy := o.registry.Resolve(listing.Dealer.Name)
	if strategy == nil {
		o.logger.Warn("no scraper strategy for dealer",
			"listing_id", listing.ID,
			"dealer", listing.Dealer.Name)
		return models.ListingResult{ListingID: listing.ID, Error: ErrNoStrategyMessage}
	}

	scraped, err := strategy.ScrapePrice(ctx, listing)
	if err != nil {
		o.logger.Error("failed to scrape listing", "listing_id", listing.ID, "error", err)
		return models.ListingResult{ListingID: listing.ID, Error: err.Error()}
	}
	if scraped == nil {
		// Soft extraction failure: page unreachable or nothing parseable.
		return models.ListingResult{ListingID: listing.ID}
	}

	if err := o.persist(ctx, listing.ID, scraped); err != nil {
		o.logger.Error("failed to persist scraped price", "listing_id", listing.ID, "error", err)
		return models.ListingResult{ListingID: listing.ID, Error: err.Error()}
	}

	return models.ListingResult{ListingID: listing.ID, Success: true}
}

// ScrapeOne scrapes a single listing on demand. Unlike the batch path, it
// propagates unexpected errors to the caller; a missing listing or a miss
// (no strategy, nothing extracted) is reported as false without an error.
func (o *Orchestrator) ScrapeOne(ctx context.Context, listingID string) (bool, error) {
	listing, err := o.listings.FindByID(ctx, listingID)
	if err != nil {
		return false, fmt.Errorf("failed to load listing: %w", err)
	}
	if listing == nil {
		o.logger.Warn("listing not found", "listing_id", listingID)
		return false, nil
	}

	strategy := o.registry.Resolve(listing.Dealer.Name)
	if strategy == nil {
		o.logger.Warn("no scraper strategy for dealer",
			"listing_id", listingID,
			"dealer", listing.Dealer.Name)
		return false, nil
	}

	scraped, err := strategy.ScrapePrice(ctx, listing)
	if err != nil {
		return false, err
	}
	if scraped == nil {
		return false, nil
	}

	if err := o.persist(ctx, listingID, scraped); err != nil {
		return false, err
	}

	return true, nil
}

// persist writes the price record first and only then stamps the listing:
// last_scraped_at must never claim a scrape whose record was not stored.
func (o *Orchestrator) persist(ctx context.Context, listingID string, scraped *models.ScrapedPrice) error {
	record, err := o.prices.CreatePriceRecord(ctx, listingID, scraped)
	if err != nil {
		return fmt.Errorf("failed to create price record: %w", err)
	}

	if err := o.listings.UpdateLastScrapedAt(ctx, listingID, record.ScrapedAt); err != nil {
		return fmt.Errorf("failed to update last scraped at: %w", err)
	}

	o.logger.Info("saved price record",
		"listing_id", listingID,
		"record_id", record.ID,
		"scraped_at", record.ScrapedAt)

	return nil
}
