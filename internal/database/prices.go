package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/goldyhq/goldy/internal/models"
	"github.com/goldyhq/goldy/internal/pricing"
)

var (
	ErrInvalidSellPrice = errors.New("sell price must be greater than zero")
	ErrInvalidBuyPrice  = errors.New("buy price must be greater than zero")
	ErrInvalidSpotPrice = errors.New("spot price must be greater than zero")
)

// EventPublisher publishes a domain event within the caller's transaction.
// Implemented by the events package; kept as an interface here so the
// repository does not depend on the event wiring.
type EventPublisher interface {
	PriceRecorded(ctx context.Context, tx pgx.Tx, record *models.PriceRecord) error
}

// PriceRepository handles the append-only price history. Records are created
// once per successful scrape and never mutated afterwards.
type PriceRepository struct {
	db     *DB
	events EventPublisher
}

func NewPriceRepository(db *DB, events EventPublisher) *PriceRepository {
	return &PriceRepository{db: db, events: events}
}

// CreatePriceRecord derives a PriceRecord from a scrape observation and
// persists it. The premium over spot is computed here, and scraped_at is
// assigned at persistence time, not at fetch time. The insert and the
// price-recorded event share one transaction.
func (r *PriceRepository) CreatePriceRecord(ctx context.Context, listingID string, scraped *models.ScrapedPrice) (*models.PriceRecord, error) {
	if scraped.SellPrice != nil && *scraped.SellPrice <= 0 {
		return nil, ErrInvalidSellPrice
	}
	if scraped.BuyPrice != nil && *scraped.BuyPrice <= 0 {
		return nil, ErrInvalidBuyPrice
	}
	if scraped.SpotPrice != nil && *scraped.SpotPrice <= 0 {
		return nil, ErrInvalidSpotPrice
	}

	record := &models.PriceRecord{
		ID:           uuid.New().String(),
		ListingID:    listingID,
		SellPrice:    scraped.SellPrice,
		BuyPrice:     scraped.BuyPrice,
		SpotPrice:    scraped.SpotPrice,
		Currency:     scraped.Currency,
		DeliveryDays: scraped.DeliveryDays,
		InStock:      scraped.InStock,
		ScrapedAt:    time.Now(),
	}
	if record.Currency == "" {
		record.Currency = "USD"
	}
	if record.SellPrice != nil && record.SpotPrice != nil {
		premium := pricing.PremiumPercent(*record.SellPrice, *record.SpotPrice)
		record.PremiumPercent = &premium
	}

	query := `
		INSERT INTO price_records
			(id, listing_id, sell_price, buy_price, spot_price, premium_percent,
			 currency, delivery_days, in_stock, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			record.ID, record.ListingID, record.SellPrice, record.BuyPrice,
			record.SpotPrice, record.PremiumPercent, record.Currency,
			record.DeliveryDays, record.InStock, record.ScrapedAt)
		if err != nil {
			return fmt.Errorf("failed to insert price record: %w", err)
		}

		if r.events != nil {
			if err := r.events.PriceRecorded(ctx, tx, record); err != nil {
				return fmt.Errorf("failed to publish price recorded event: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

const priceColumns = `
	id, listing_id, sell_price, buy_price, spot_price, premium_percent,
	currency, delivery_days, in_stock, scraped_at`

func (r *PriceRepository) FindByID(ctx context.Context, id string) (*models.PriceRecord, error) {
	query := `SELECT` + priceColumns + ` FROM price_records WHERE id = $1`

	record, err := scanPriceRecord(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price record: %w", err)
	}

	return record, nil
}

// FindByListingID returns the price history of a listing, newest first.
func (r *PriceRepository) FindByListingID(ctx context.Context, listingID string, limit int) ([]*models.PriceRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT` + priceColumns + `
		FROM price_records
		WHERE listing_id = $1
		ORDER BY scraped_at DESC
		LIMIT $2`

	return r.queryRecords(ctx, query, listingID, limit)
}

func (r *PriceRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]*models.PriceRecord, error) {
	query := `SELECT` + priceColumns + `
		FROM price_records
		WHERE scraped_at BETWEEN $1 AND $2
		ORDER BY scraped_at DESC`

	return r.queryRecords(ctx, query, start, end)
}

// FindLatestPrices returns the newest record per listing joined with the
// asset and dealer it belongs to, for cross-dealer comparison.
func (r *PriceRepository) FindLatestPrices(ctx context.Context) ([]*models.LatestPrice, error) {
	query := `
		SELECT DISTINCT ON (p.listing_id)
			p.id, p.listing_id, p.sell_price, p.buy_price, p.spot_price, p.premium_percent,
			p.currency, p.delivery_days, p.in_stock, p.scraped_at,
			a.id, a.name, d.name, a.weight_grams
		FROM price_records p
		JOIN listings l ON l.id = p.listing_id
		JOIN assets a ON a.id = l.asset_id
		JOIN dealers d ON d.id = l.dealer_id
		ORDER BY p.listing_id, p.scraped_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest prices: %w", err)
	}
	defer rows.Close()

	var latest []*models.LatestPrice
	for rows.Next() {
		lp := &models.LatestPrice{}
		err := rows.Scan(
			&lp.Record.ID, &lp.Record.ListingID, &lp.Record.SellPrice, &lp.Record.BuyPrice,
			&lp.Record.SpotPrice, &lp.Record.PremiumPercent, &lp.Record.Currency,
			&lp.Record.DeliveryDays, &lp.Record.InStock, &lp.Record.ScrapedAt,
			&lp.AssetID, &lp.AssetName, &lp.DealerName, &lp.WeightGrams,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan latest price: %w", err)
		}
		latest = append(latest, lp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return latest, nil
}

func (r *PriceRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*models.PriceRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price records: %w", err)
	}
	defer rows.Close()

	var records []*models.PriceRecord
	for rows.Next() {
		record, err := scanPriceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

func scanPriceRecord(row pgx.Row) (*models.PriceRecord, error) {
	record := &models.PriceRecord{}
	err := row.Scan(
		&record.ID, &record.ListingID, &record.SellPrice, &record.BuyPrice,
		&record.SpotPrice, &record.PremiumPercent, &record.Currency,
		&record.DeliveryDays, &record.InStock, &record.ScrapedAt)
	if err != nil {
		return nil, err
	}

	return record, nil
}
