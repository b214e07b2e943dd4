package pricing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/goldyhq/goldy/internal/models"
)

// Moves below half a percent read as noise, not a trend.
const stableTrendThresholdPercent = 0.5

// PriceReader is the slice of the price store the analyzer needs.
type PriceReader interface {
	FindLatestPrices(ctx context.Context) ([]*models.LatestPrice, error)
	FindByListingID(ctx context.Context, listingID string, limit int) ([]*models.PriceRecord, error)
}

// Comparison is the latest observation for one listing enriched with
// weight-normalized prices.
type Comparison struct {
	ListingID         string    `json:"listing_id"`
	AssetName         string    `json:"asset_name"`
	DealerName        string    `json:"dealer_name"`
	SellPrice         *float64  `json:"sell_price,omitempty"`
	BuyPrice          *float64  `json:"buy_price,omitempty"`
	SpotPrice         *float64  `json:"spot_price,omitempty"`
	PremiumPercent    *float64  `json:"premium_percent,omitempty"`
	PricePerGram      *float64  `json:"price_per_gram,omitempty"`
	PricePerTroyOunce *float64  `json:"price_per_troy_ounce,omitempty"`
	Currency          string    `json:"currency"`
	InStock           bool      `json:"in_stock"`
	LastUpdated       time.Time `json:"last_updated"`
}

type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// Trend describes the movement between the two most recent observations of a
// listing.
type Trend struct {
	ListingID          string         `json:"listing_id"`
	CurrentPrice       *float64       `json:"current_price,omitempty"`
	PreviousPrice      *float64       `json:"previous_price,omitempty"`
	PriceChange        *float64       `json:"price_change,omitempty"`
	PriceChangePercent *float64       `json:"price_change_percent,omitempty"`
	Trend              TrendDirection `json:"trend"`
}

// Analyzer computes read-only views over the stored price history.
type Analyzer struct {
	prices PriceReader
}

func NewAnalyzer(prices PriceReader) *Analyzer {
	return &Analyzer{prices: prices}
}

// CompareAcrossDealers returns the latest price of every listing, optionally
// filtered to a single asset.
func (a *Analyzer) CompareAcrossDealers(ctx context.Context, assetID string) ([]*Comparison, error) {
	latest, err := a.prices.FindLatestPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest prices: %w", err)
	}

	var comparisons []*Comparison
	for _, lp := range latest {
		if assetID != "" && lp.AssetID != assetID {
			continue
		}

		c := &Comparison{
			ListingID:      lp.Record.ListingID,
			AssetName:      lp.AssetName,
			DealerName:     lp.DealerName,
			SellPrice:      lp.Record.SellPrice,
			BuyPrice:       lp.Record.BuyPrice,
			SpotPrice:      lp.Record.SpotPrice,
			PremiumPercent: lp.Record.PremiumPercent,
			Currency:       lp.Record.Currency,
			InStock:        lp.Record.InStock,
			LastUpdated:    lp.Record.ScrapedAt,
		}

		if lp.Record.SellPrice != nil && lp.WeightGrams > 0 {
			perGram := PricePerGram(*lp.Record.SellPrice, lp.WeightGrams)
			perOunce := PricePerTroyOunce(*lp.Record.SellPrice, lp.WeightGrams)
			c.PricePerGram = &perGram
			c.PricePerTroyOunce = &perOunce
		}

		comparisons = append(comparisons, c)
	}

	// Cheapest dealer first; unpriced listings sink to the end.
	sort.SliceStable(comparisons, func(i, j int) bool {
		a, b := comparisons[i].SellPrice, comparisons[j].SellPrice
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})

	return comparisons, nil
}

// TrendForListing compares the two newest records of a listing. Fewer than
// two priced records, or a move under half a percent, yields a stable trend.
func (a *Analyzer) TrendForListing(ctx context.Context, listingID string) (*Trend, error) {
	records, err := a.prices.FindByListingID(ctx, listingID, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}

	trend := &Trend{
		ListingID: listingID,
		Trend:     TrendStable,
	}

	if len(records) > 0 {
		trend.CurrentPrice = records[0].SellPrice
	}
	if len(records) > 1 {
		trend.PreviousPrice = records[1].SellPrice
	}

	if trend.CurrentPrice == nil || trend.PreviousPrice == nil {
		return trend, nil
	}

	change := *trend.CurrentPrice - *trend.PreviousPrice
	trend.PriceChange = &change

	if *trend.PreviousPrice != 0 {
		changePercent := (change / *trend.PreviousPrice) * 100
		trend.PriceChangePercent = &changePercent

		switch {
		case math.Abs(changePercent) < stableTrendThresholdPercent:
			// noise
		case change > 0:
			trend.Trend = TrendUp
		case change < 0:
			trend.Trend = TrendDown
		}
	}

	return trend, nil
}
