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

// DealerRepository handles persistence of dealers. ScrapingConfig is stored
// as a JSONB column so selector changes never need a migration.
type DealerRepository struct {
	db *DB
}

func NewDealerRepository(db *DB) *DealerRepository {
	return &DealerRepository{db: db}
}

func (r *DealerRepository) Create(ctx context.Context, dealer *models.Dealer) error {
	if dealer.ID == "" {
		dealer.ID = uuid.New().String()
	}
	dealer.CreatedAt = time.Now()

	cfg, err := json.Marshal(dealer.ScrapingConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal scraping config: %w", err)
	}

	query := `
		INSERT INTO dealers (id, name, website_url, scraping_config, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.Exec(ctx, query,
		dealer.ID, dealer.Name, dealer.WebsiteURL, cfg, dealer.IsActive, dealer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create dealer: %w", err)
	}

	return nil
}

func (r *DealerRepository) FindByID(ctx context.Context, id string) (*models.Dealer, error) {
	query := `
		SELECT id, name, website_url, scraping_config, is_active, created_at
		FROM dealers
		WHERE id = $1`

	dealer, err := scanDealer(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dealer: %w", err)
	}

	return dealer, nil
}

func (r *DealerRepository) FindAll(ctx context.Context) ([]*models.Dealer, error) {
	query := `
		SELECT id, name, website_url, scraping_config, is_active, created_at
		FROM dealers
		ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list dealers: %w", err)
	}
	defer rows.Close()

	var dealers []*models.Dealer
	for rows.Next() {
		dealer, err := scanDealer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dealer: %w", err)
		}
		dealers = append(dealers, dealer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return dealers, nil
}

func (r *DealerRepository) Update(ctx context.Context, dealer *models.Dealer) error {
	cfg, err := json.Marshal(dealer.ScrapingConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal scraping config: %w", err)
	}

	query := `
		UPDATE dealers
		SET name = $1, website_url = $2, scraping_config = $3, is_active = $4
		WHERE id = $5`

	result, err := r.db.Exec(ctx, query,
		dealer.Name, dealer.WebsiteURL, cfg, dealer.IsActive, dealer.ID)
	if err != nil {
		return fmt.Errorf("failed to update dealer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("dealer not found: %s", dealer.ID)
	}

	return nil
}

func (r *DealerRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM dealers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete dealer: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func scanDealer(row pgx.Row) (*models.Dealer, error) {
	dealer := &models.Dealer{}
	var cfg []byte

	err := row.Scan(&dealer.ID, &dealer.Name, &dealer.WebsiteURL, &cfg,
		&dealer.IsActive, &dealer.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &dealer.ScrapingConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scraping config: %w", err)
		}
	}

	return dealer, nil
}
