package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/goldyhq/goldy/internal/models"
)

// ListingRepository handles persistence of listings. Reads always join the
// owning dealer and asset so callers get a fully populated listing.
type ListingRepository struct {
	db *DB
}

func NewListingRepository(db *DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `
	l.id, l.product_link, l.is_active, l.last_scraped_at, l.created_at, l.updated_at,
	a.id, a.name, a.manufacturer_name, a.asset_type, a.metal_type, a.weight_grams, a.purity, a.created_at, a.updated_at,
	d.id, d.name, d.website_url, d.scraping_config, d.is_active, d.created_at`

const listingJoins = `
	FROM listings l
	JOIN assets a ON a.id = l.asset_id
	JOIN dealers d ON d.id = l.dealer_id`

func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}

	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	query := `
		INSERT INTO listings (id, asset_id, dealer_id, product_link, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		listing.ID, listing.Asset.ID, listing.Dealer.ID, listing.ProductLink,
		listing.IsActive, listing.CreatedAt, listing.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT` + listingColumns + listingJoins + `
	WHERE l.id = $1`

	listing, err := scanListing(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	return listing, nil
}

func (r *ListingRepository) FindAll(ctx context.Context) ([]*models.Listing, error) {
	query := `SELECT` + listingColumns + listingJoins + `
	ORDER BY l.created_at DESC`

	return r.queryListings(ctx, query)
}

func (r *ListingRepository) FindByDealerID(ctx context.Context, dealerID string) ([]*models.Listing, error) {
	query := `SELECT` + listingColumns + listingJoins + `
	WHERE l.dealer_id = $1
	ORDER BY l.created_at DESC`

	return r.queryListings(ctx, query, dealerID)
}

func (r *ListingRepository) FindByAssetID(ctx context.Context, assetID string) ([]*models.Listing, error) {
	query := `SELECT` + listingColumns + listingJoins + `
	WHERE l.asset_id = $1
	ORDER BY l.created_at DESC`

	return r.queryListings(ctx, query, assetID)
}

// FindEligibleForScraping returns listings that are active and belong to an
// active dealer. Inactive listings and listings of paused dealers are never
// scraped.
func (r *ListingRepository) FindEligibleForScraping(ctx context.Context) ([]*models.Listing, error) {
	query := `SELECT` + listingColumns + listingJoins + `
	WHERE l.is_active AND d.is_active
	ORDER BY l.created_at ASC`

	return r.queryListings(ctx, query)
}

// UpdateLastScrapedAt records the moment a price record was successfully
// written for the listing. Only called after persistence succeeds.
func (r *ListingRepository) UpdateLastScrapedAt(ctx context.Context, id string, scrapedAt time.Time) error {
	query := `UPDATE listings SET last_scraped_at = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, scrapedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last scraped at: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("listing not found: %s", id)
	}

	return nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	listing.UpdatedAt = time.Now()

	query := `
		UPDATE listings
		SET product_link = $1, is_active = $2, updated_at = $3
		WHERE id = $4`

	result, err := r.db.Exec(ctx, query,
		listing.ProductLink, listing.IsActive, listing.UpdatedAt, listing.ID)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("listing not found: %s", listing.ID)
	}

	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete listing: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *ListingRepository) queryListings(ctx context.Context, query string, args ...interface{}) ([]*models.Listing, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return listings, nil
}

func scanListing(row pgx.Row) (*models.Listing, error) {
	listing := &models.Listing{}
	var cfg []byte

	err := row.Scan(
		&listing.ID, &listing.ProductLink, &listing.IsActive, &listing.LastScrapedAt,
		&listing.CreatedAt, &listing.UpdatedAt,
		&listing.Asset.ID, &listing.Asset.Name, &listing.Asset.ManufacturerName,
		&listing.Asset.AssetType, &listing.Asset.MetalType, &listing.Asset.WeightGrams,
		&listing.Asset.Purity, &listing.Asset.CreatedAt, &listing.Asset.UpdatedAt,
		&listing.Dealer.ID, &listing.Dealer.Name, &listing.Dealer.WebsiteURL, &cfg,
		&listing.Dealer.IsActive, &listing.Dealer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &listing.Dealer.ScrapingConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scraping config: %w", err)
		}
	}

	return listing, nil
}
