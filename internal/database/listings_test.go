package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldyhq/goldy/internal/models"
)

func TestListingRepository_FindEligibleForScraping(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	assets := NewAssetRepository(db)
	dealers := NewDealerRepository(db)
	listings := NewListingRepository(db)

	asset := &models.Asset{
		Name:        "Gold Eagle 1oz",
		AssetType:   models.AssetTypeCoin,
		MetalType:   models.MetalGold,
		WeightGrams: 31.1034768,
		Purity:      "0.9167",
	}
	require.NoError(t, assets.Create(ctx, asset))

	activeDealer := &models.Dealer{
		Name:       "APMEX",
		WebsiteURL: "https://www.apmex.com",
		IsActive:   true,
	}
	require.NoError(t, dealers.Create(ctx, activeDealer))

	pausedDealer := &models.Dealer{
		Name:       "JM Bullion",
		WebsiteURL: "https://www.jmbullion.com",
		IsActive:   false,
	}
	require.NoError(t, dealers.Create(ctx, pausedDealer))

	newListing := func(dealer *models.Dealer, active bool) *models.Listing {
		listing := &models.Listing{
			Asset:       *asset,
			Dealer:      *dealer,
			ProductLink: fmt.Sprintf("%s/gold-eagle-%v", dealer.WebsiteURL, active),
			IsActive:    active,
		}
		require.NoError(t, listings.Create(ctx, listing))
		return listing
	}

	eligible := newListing(activeDealer, true)
	newListing(activeDealer, false)
	newListing(pausedDealer, true)
	newListing(pausedDealer, false)

	found, err := listings.FindEligibleForScraping(ctx)
	require.NoError(t, err)

	// Only the active listing of the active dealer qualifies.
	require.Len(t, found, 1)
	assert.Equal(t, eligible.ID, found[0].ID)
	assert.Equal(t, activeDealer.ID, found[0].Dealer.ID)
	assert.True(t, found[0].IsActive)
	assert.True(t, found[0].Dealer.IsActive)
}

func TestListingRepository_UpdateLastScrapedAt(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	listings := NewListingRepository(db)

	err := listings.UpdateLastScrapedAt(ctx, "00000000-0000-0000-0000-000000000000", time.Now())
	assert.ErrorContains(t, err, "listing not found")
}
