package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/goldyhq/goldy/internal/models"
)

// VendorStrategy is the shared implementation behind every dealer family:
// fetch the listing page, wait for the price container, extract with the
// dealer's selectors. Vendor variants differ only in the name they match and
// the currency they quote in; the fetcher and extractor are injected
// collaborators rather than an inherited base.
type VendorStrategy struct {
	vendor   string
	match    string
	currency string
	fetcher  PageFetcher
	ext      *Extractor
	logger   *slog.Logger
}

func NewVendorStrategy(vendor, match, currency string, fetcher PageFetcher, ext *Extractor, logger *slog.Logger) *VendorStrategy {
	return &VendorStrategy{
		vendor:   vendor,
		match:    strings.ToLower(match),
		currency: currency,
		fetcher:  fetcher,
		ext:      ext,
		logger:   logger.With("component", "strategy", "vendor", vendor),
	}
}

// NewAPMEXStrategy handles dealers whose display name contains "apmex".
func NewAPMEXStrategy(fetcher PageFetcher, ext *Extractor, logger *slog.Logger) *VendorStrategy {
	return NewVendorStrategy("apmex", "apmex", "USD", fetcher, ext, logger)
}

// NewJMBullionStrategy handles dealers whose display name contains "jm bullion".
func NewJMBullionStrategy(fetcher PageFetcher, ext *Extractor, logger *slog.Logger) *VendorStrategy {
	return NewVendorStrategy("jmbullion", "jm bullion", "USD", fetcher, ext, logger)
}

// CanHandle matches case-insensitively against the dealer's display name.
func (s *VendorStrategy) CanHandle(dealerName string) bool {
	return strings.Contains(strings.ToLower(dealerName), s.match)
}

// ScrapePrice fetches the listing page and extracts the current offer.
// A page that cannot be fetched is a soft failure: the method logs and
// returns (nil, nil) so the caller records the miss and moves on.
func (s *VendorStrategy) ScrapePrice(ctx context.Context, listing *models.Listing) (*models.ScrapedPrice, error) {
	selectors := listing.Dealer.ScrapingConfig.Selectors

	s.logger.Info("scraping price", "listing_id", listing.ID, "url", listing.ProductLink)

	html, err := s.fetcher.Fetch(ctx, listing.ProductLink, SelectorOrDefault(selectors, SelectorPriceContainer))
	if err != nil {
		s.logger.Warn("failed to fetch page",
			"listing_id", listing.ID,
			"url", listing.ProductLink,
			"error", err)
		return nil, nil
	}

	scraped, err := s.ext.Extract(html, selectors)
	if err != nil {
		return nil, err
	}

	scraped.Currency = s.currency

	s.logger.Info("scraped price",
		"listing_id", listing.ID,
		"sell_price", floatOrNil(scraped.SellPrice),
		"buy_price", floatOrNil(scraped.BuyPrice),
		"in_stock", scraped.InStock)

	return scraped, nil
}

func floatOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
