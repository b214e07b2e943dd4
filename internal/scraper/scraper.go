// Package scraper implements the dealer price scraping engine: a browser
// fetcher, selector-driven price extraction, per-vendor strategies, and the
// orchestrator that drives a batch run over all eligible listings.
package scraper

import (
	"context"
	"time"

	"github.com/goldyhq/goldy/internal/models"
)

// PageFetcher renders a URL and returns the resulting markup, optionally
// waiting for a selector to appear first. Implementations log and return an
// error on any failure; no retries happen at this level.
type PageFetcher interface {
	Fetch(ctx context.Context, url, waitForSelector string) (string, error)
}

// Strategy is the vendor-specific fetch+extract logic for a dealer family.
// ScrapePrice returns (nil, nil) when the page could not be fetched or no
// data was extractable; that is a soft failure, not an error.
type Strategy interface {
	CanHandle(dealerName string) bool
	ScrapePrice(ctx context.Context, listing *models.Listing) (*models.ScrapedPrice, error)
}

// ListingStore is the slice of the listing repository the engine consumes.
type ListingStore interface {
	FindEligibleForScraping(ctx context.Context) ([]*models.Listing, error)
	FindByID(ctx context.Context, id string) (*models.Listing, error)
	UpdateLastScrapedAt(ctx context.Context, id string, scrapedAt time.Time) error
}

// PriceStore persists one observation per successful scrape. It accepts the
// raw scraped fields and computes derived fields (premium, scraped_at).
type PriceStore interface {
	CreatePriceRecord(ctx context.Context, listingID string, scraped *models.ScrapedPrice) (*models.PriceRecord, error)
}
