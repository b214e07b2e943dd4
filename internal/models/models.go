package models

import (
	"time"
)

type AssetType string

const (
	AssetTypeCoin AssetType = "coin"
	AssetTypeBar  AssetType = "bar"
)

type MetalType string

const (
	MetalGold      MetalType = "gold"
	MetalSilver    MetalType = "silver"
	MetalPlatinum  MetalType = "platinum"
	MetalPalladium MetalType = "palladium"
)

// Asset is a physical product tracked across dealers, e.g. a 1oz gold coin.
type Asset struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ManufacturerName string    `json:"manufacturer_name"`
	AssetType        AssetType `json:"asset_type"`
	MetalType        MetalType `json:"metal_type"`
	WeightGrams      float64   `json:"weight_grams"`
	Purity           string    `json:"purity,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ScrapingConfig holds per-dealer extraction rules: named element selectors
// (sellPrice, buyPrice, stockStatus, delivery, priceContainer) and URL
// patterns per asset type. Selectors left unset fall back to defaults.
type ScrapingConfig struct {
	Selectors   map[string]string    `json:"selectors"`
	URLPatterns map[AssetType]string `json:"url_patterns"`
}

// Dealer is a vendor site offering assets.
type Dealer struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	WebsiteURL     string         `json:"website_url"`
	ScrapingConfig ScrapingConfig `json:"scraping_config"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Listing is a specific dealer's page offering one asset, the unit of scraping.
type Listing struct {
	ID            string     `json:"id"`
	Asset         Asset      `json:"asset"`
	Dealer        Dealer     `json:"dealer"`
	ProductLink   string     `json:"product_link"`
	IsActive      bool       `json:"is_active"`
	LastScrapedAt *time.Time `json:"last_scraped_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ScrapedPrice is the transient result of one successful extraction. It is
// never persisted as-is; the price store derives a PriceRecord from it.
type ScrapedPrice struct {
	SellPrice    *float64 `json:"sell_price,omitempty"`
	BuyPrice     *float64 `json:"buy_price,omitempty"`
	SpotPrice    *float64 `json:"spot_price,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	DeliveryDays *int     `json:"delivery_days,omitempty"`
	InStock      bool     `json:"in_stock"`
}

// PriceRecord is an append-only, timestamped price observation.
type PriceRecord struct {
	ID             string    `json:"id"`
	ListingID      string    `json:"listing_id"`
	SellPrice      *float64  `json:"sell_price,omitempty"`
	BuyPrice       *float64  `json:"buy_price,omitempty"`
	SpotPrice      *float64  `json:"spot_price,omitempty"`
	PremiumPercent *float64  `json:"premium_percent,omitempty"`
	Currency       string    `json:"currency"`
	DeliveryDays   *int      `json:"delivery_days,omitempty"`
	InStock        bool      `json:"in_stock"`
	ScrapedAt      time.Time `json:"scraped_at"`
}

// LatestPrice is a PriceRecord joined with the listing context it belongs to,
// used for cross-dealer comparison.
type LatestPrice struct {
	Record      PriceRecord `json:"record"`
	AssetID     string      `json:"asset_id"`
	AssetName   string      `json:"asset_name"`
	DealerName  string      `json:"dealer_name"`
	WeightGrams float64     `json:"weight_grams"`
}

// ListingResult is the per-listing outcome of a batch run.
type ListingResult struct {
	ListingID string `json:"listing_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// BatchResult aggregates one full pass over all eligible listings.
type BatchResult struct {
	Success int             `json:"success"`
	Failed  int             `json:"failed"`
	Results []ListingResult `json:"results"`
}
