package scraper

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goldyhq/goldy/internal/models"
)

// MockPageFetcher is a mock for PageFetcher
type MockPageFetcher struct {
	mock.Mock
}

func (m *MockPageFetcher) Fetch(ctx context.Context, url, waitForSelector string) (string, error) {
	args := m.Called(ctx, url, waitForSelector)
	return args.String(0), args.Error(1)
}

func testListing(dealerName string) *models.Listing {
	return &models.Listing{
		ID:          "listing-1",
		ProductLink: "https://example.com/gold-eagle-1oz",
		IsActive:    true,
		Asset: models.Asset{
			ID:        "asset-1",
			Name:      "1 oz Gold Eagle",
			MetalType: models.MetalGold,
			AssetType: models.AssetTypeCoin,
		},
		Dealer: models.Dealer{
			ID:   "dealer-1",
			Name: dealerName,
			ScrapingConfig: models.ScrapingConfig{
				Selectors: map[string]string{
					SelectorSellPrice: ".product-price",
				},
			},
		},
	}
}

func TestVendorStrategy_CanHandle(t *testing.T) {
	logger := slog.Default()
	apmex := NewAPMEXStrategy(nil, nil, logger)
	jm := NewJMBullionStrategy(nil, nil, logger)

	tests := []struct {
		name     string
		strategy *VendorStrategy
		dealer   string
		expected bool
	}{
		{"exact match", apmex, "apmex", true},
		{"case insensitive", apmex, "APMEX", true},
		{"substring match", apmex, "APMEX Inc.", true},
		{"no match", apmex, "JM Bullion", false},
		{"empty dealer name", apmex, "", false},
		{"jm bullion match", jm, "JM Bullion", true},
		{"jm bullion mixed case", jm, "jm BULLION llc", true},
		{"jm bullion no match", jm, "SD Bullion", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.strategy.CanHandle(tt.dealer))
		})
	}
}

func TestVendorStrategy_ScrapePrice(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful scrape sets currency", func(t *testing.T) {
		mockFetcher := new(MockPageFetcher)
		strategy := NewAPMEXStrategy(mockFetcher, NewExtractor(), logger)
		listing := testListing("APMEX")

		html := `<html><body>
			<div class="product-price">$2,412.30</div>
			<div class="stock-status">In Stock</div>
		</body></html>`

		mockFetcher.On("Fetch", ctx, listing.ProductLink, defaultSelectors[SelectorPriceContainer]).
			Return(html, nil)

		scraped, err := strategy.ScrapePrice(ctx, listing)
		require.NoError(t, err)
		require.NotNil(t, scraped)

		require.NotNil(t, scraped.SellPrice)
		assert.InDelta(t, 2412.30, *scraped.SellPrice, 0.0001)
		assert.Equal(t, "USD", scraped.Currency)
		assert.True(t, scraped.InStock)

		mockFetcher.AssertExpectations(t)
	})

	t.Run("fetch failure is soft", func(t *testing.T) {
		mockFetcher := new(MockPageFetcher)
		strategy := NewAPMEXStrategy(mockFetcher, NewExtractor(), logger)
		listing := testListing("APMEX")

		mockFetcher.On("Fetch", ctx, listing.ProductLink, mock.Anything).
			Return("", errors.New("navigation timeout"))

		scraped, err := strategy.ScrapePrice(ctx, listing)
		assert.NoError(t, err)
		assert.Nil(t, scraped)

		mockFetcher.AssertExpectations(t)
	})

	t.Run("uses the dealer's price container selector", func(t *testing.T) {
		mockFetcher := new(MockPageFetcher)
		strategy := NewAPMEXStrategy(mockFetcher, NewExtractor(), logger)
		listing := testListing("APMEX")
		listing.Dealer.ScrapingConfig.Selectors[SelectorPriceContainer] = "#buy-box"

		mockFetcher.On("Fetch", ctx, listing.ProductLink, "#buy-box").
			Return(`<html><body><div class="product-price">$85.00</div></body></html>`, nil)

		scraped, err := strategy.ScrapePrice(ctx, listing)
		require.NoError(t, err)
		require.NotNil(t, scraped)
		require.NotNil(t, scraped.SellPrice)
		assert.InDelta(t, 85.00, *scraped.SellPrice, 0.0001)

		mockFetcher.AssertExpectations(t)
	})

	t.Run("page without prices still returns an observation", func(t *testing.T) {
		mockFetcher := new(MockPageFetcher)
		strategy := NewAPMEXStrategy(mockFetcher, NewExtractor(), logger)
		listing := testListing("APMEX")

		mockFetcher.On("Fetch", ctx, listing.ProductLink, mock.Anything).
			Return(`<html><body><p>maintenance</p></body></html>`, nil)

		scraped, err := strategy.ScrapePrice(ctx, listing)
		require.NoError(t, err)
		require.NotNil(t, scraped)
		assert.Nil(t, scraped.SellPrice)
		assert.Nil(t, scraped.BuyPrice)
	})
}
