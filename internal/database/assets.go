package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/goldyhq/goldy/internal/models"
)

// AssetRepository handles persistence of assets.
type AssetRepository struct {
	db *DB
}

func NewAssetRepository(db *DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}

	now := time.Now()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	query := `
		INSERT INTO assets (id, name, manufacturer_name, asset_type, metal_type, weight_grams, purity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		asset.ID, asset.Name, asset.ManufacturerName, asset.AssetType,
		asset.MetalType, asset.WeightGrams, asset.Purity, asset.CreatedAt, asset.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

func (r *AssetRepository) FindByID(ctx context.Context, id string) (*models.Asset, error) {
	query := `
		SELECT id, name, manufacturer_name, asset_type, metal_type, weight_grams, purity, created_at, updated_at
		FROM assets
		WHERE id = $1`

	asset := &models.Asset{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&asset.ID, &asset.Name, &asset.ManufacturerName, &asset.AssetType,
		&asset.MetalType, &asset.WeightGrams, &asset.Purity, &asset.CreatedAt, &asset.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

func (r *AssetRepository) FindAll(ctx context.Context) ([]*models.Asset, error) {
	query := `
		SELECT id, name, manufacturer_name, asset_type, metal_type, weight_grams, purity, created_at, updated_at
		FROM assets
		ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		asset := &models.Asset{}
		err := rows.Scan(
			&asset.ID, &asset.Name, &asset.ManufacturerName, &asset.AssetType,
			&asset.MetalType, &asset.WeightGrams, &asset.Purity, &asset.CreatedAt, &asset.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return assets, nil
}

func (r *AssetRepository) Update(ctx context.Context, asset *models.Asset) error {
	asset.UpdatedAt = time.Now()

	query := `
		UPDATE assets
		SET name = $1, manufacturer_name = $2, asset_type = $3, metal_type = $4,
		    weight_grams = $5, purity = $6, updated_at = $7
		WHERE id = $8`

	result, err := r.db.Exec(ctx, query,
		asset.Name, asset.ManufacturerName, asset.AssetType, asset.MetalType,
		asset.WeightGrams, asset.Purity, asset.UpdatedAt, asset.ID)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("asset not found: %s", asset.ID)
	}

	return nil
}

func (r *AssetRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete asset: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
