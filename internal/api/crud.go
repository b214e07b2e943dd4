package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goldyhq/goldy/internal/models"
)

// CreateAssetRequest is the payload for registering a new asset.
type CreateAssetRequest struct {
	Name             string           `json:"name"`
	ManufacturerName string           `json:"manufacturer_name"`
	AssetType        models.AssetType `json:"asset_type"`
	MetalType        models.MetalType `json:"metal_type"`
	WeightGrams      float64          `json:"weight_grams"`
	Purity           string           `json:"purity"`
}

func (h *Handlers) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.WeightGrams <= 0 {
		h.respondError(w, http.StatusBadRequest, "name and a positive weight_grams are required")
		return
	}

	asset := &models.Asset{
		Name:             req.Name,
		ManufacturerName: req.ManufacturerName,
		AssetType:        req.AssetType,
		MetalType:        req.MetalType,
		WeightGrams:      req.WeightGrams,
		Purity:           req.Purity,
	}

	if err := h.assets.Create(r.Context(), asset); err != nil {
		h.logger.Error("failed to create asset", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create asset")
		return
	}

	h.respondJSON(w, http.StatusCreated, asset)
}

func (h *Handlers) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assets.FindAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list assets", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}

	h.respondJSON(w, http.StatusOK, assets)
}

func (h *Handlers) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assets.FindByID(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		h.logger.Error("failed to get asset", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get asset")
		return
	}
	if asset == nil {
		h.respondError(w, http.StatusNotFound, "asset not found")
		return
	}

	h.respondJSON(w, http.StatusOK, asset)
}

func (h *Handlers) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assets.FindByID(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		h.logger.Error("failed to get asset", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to update asset")
		return
	}
	if asset == nil {
		h.respondError(w, http.StatusNotFound, "asset not found")
		return
	}

	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.WeightGrams <= 0 {
		h.respondError(w, http.StatusBadRequest, "name and a positive weight_grams are required")
		return
	}

	asset.Name = req.Name
	asset.ManufacturerName = req.ManufacturerName
	asset.AssetType = req.AssetType
	asset.MetalType = req.MetalType
	asset.WeightGrams = req.WeightGrams
	asset.Purity = req.Purity

	if err := h.assets.Update(r.Context(), asset); err != nil {
		h.logger.Error("failed to update asset", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to update asset")
		return
	}

	h.respondJSON(w, http.StatusOK, asset)
}

func (h *Handlers) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.assets.Delete(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		h.logger.Error("failed to delete asset", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to delete asset")
		return
	}
	if !deleted {
		h.respondError(w, http.StatusNotFound, "asset not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateDealerRequest is the payload for registering a new dealer.
type CreateDealerRequest struct {
	Name           string                `json:"name"`
	WebsiteURL     string                `json:"website_url"`
	ScrapingConfig models.ScrapingConfig `json:"scraping_config"`
	IsActive       *bool                 `json:"is_active"`
}

func (h *Handlers) CreateDealer(w http.ResponseWriter, r *http.Request) {
	var req CreateDealerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.WebsiteURL == "" {
		h.respondError(w, http.StatusBadRequest, "name and website_url are required")
		return
	}

	dealer := &models.Dealer{
		Name:           req.Name,
		WebsiteURL:     req.WebsiteURL,
		ScrapingConfig: req.ScrapingConfig,
		IsActive:       true,
	}
	if req.IsActive != nil {
		dealer.IsActive = *req.IsActive
	}

	if err := h.dealers.Create(r.Context(), dealer); err != nil {
		h.logger.Error("failed to create dealer", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create dealer")
		return
	}

	h.respondJSON(w, http.StatusCreated, dealer)
}

func (h *Handlers) ListDealers(w http.ResponseWriter, r *http.Request) {
	dealers, err := h.dealers.FindAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list dealers", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list dealers")
		return
	}

	h.respondJSON(w, http.StatusOK, dealers)
}

func (h *Handlers) GetDealer(w http.ResponseWriter, r *http.Request) {
	dealer, err := h.dealers.FindByID(r.Context(), chi.URLParam(r, "dealerID"))
	if err != nil {
		h.logger.Error("failed to get dealer", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get dealer")
		return
	}
	if dealer == nil {
		h.respondError(w, http.StatusNotFound, "dealer not found")
		return
	}

	h.respondJSON(w, http.StatusOK, dealer)
}

func (h *Handlers) UpdateDealer(w http.ResponseWriter, r *http.Request) {
	dealer, err := h.dealers.FindByID(r.Context(), chi.URLParam(r, "dealerID"))
	if err != nil {
		h.logger.Error("failed to get dealer", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to update dealer")
		return
	}
	if dealer == nil {
		h.respondError(w, http.StatusNotFound, "dealer not found")
		return
	}

	var req CreateDealerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.WebsiteURL == "" {
		h.respondError(w, http.StatusBadRequest, "name and website_url are required")
		return
	}

	dealer.Name = req.Name
	dealer.WebsiteURL = req.WebsiteURL
	dealer.ScrapingConfig = req.ScrapingConfig
	if req.IsActive != nil {
		dealer.IsActive = *req.IsActive
	}

	if err := h.dealers.Update(r.Context(), dealer); err != nil {
		h.logger.Error("failed to update dealer", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to update dealer")
		return
	}

	h.respondJSON(w, http.StatusOK, dealer)
}

func (h *Handlers) DeleteDealer(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.dealers.Delete(r.Context(), chi.URLParam(r, "dealerID"))
	if err != nil {
		h.logger.Error("failed to delete dealer", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to delete dealer")
		return
	}
	if !deleted {
		h.respondError(w, http.StatusNotFound, "dealer not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateListingRequest links an asset to a dealer's product page.
type CreateListingRequest struct {
	AssetID     string `json:"asset_id"`
	DealerID    string `json:"dealer_id"`
	ProductLink string `json:"product_link"`
	IsActive    *bool  `json:"is_active"`
}

func (h *Handlers) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AssetID == "" || req.DealerID == "" || req.ProductLink == "" {
		h.respondError(w, http.StatusBadRequest, "asset_id, dealer_id and product_link are required")
		return
	}

	listing := &models.Listing{
		Asset:       models.Asset{ID: req.AssetID},
		Dealer:      models.Dealer{ID: req.DealerID},
		ProductLink: req.ProductLink,
		IsActive:    true,
	}
	if req.IsActive != nil {
		listing.IsActive = *req.IsActive
	}

	if err := h.listings.Create(r.Context(), listing); err != nil {
		h.logger.Error("failed to create listing", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create listing")
		return
	}

	h.respondJSON(w, http.StatusCreated, listing)
}

func (h *Handlers) ListListings(w http.ResponseWriter, r *http.Request) {
	var (
		listings []*models.Listing
		err      error
	)

	switch {
	case r.URL.Query().Get("dealer_id") != "":
		listings, err = h.listings.FindByDealerID(r.Context(), r.URL.Query().Get("dealer_id"))
	case r.URL.Query().Get("asset_id") != "":
		listings, err = h.listings.FindByAssetID(r.Context(), r.URL.Query().Get("asset_id"))
	default:
		listings, err = h.listings.FindAll(r.Context())
	}

	if err != nil {
		h.logger.Error("failed to list listings", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}

	h.respondJSON(w, http.StatusOK, listings)
}

func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.FindByID(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		h.logger.Error("failed to get listing", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get listing")
		return
	}
	if listing == nil {
		h.respondError(w, http.StatusNotFound, "listing not found")
		return
	}

	h.respondJSON(w, http.StatusOK, listing)
}

// UpdateListingRequest changes a listing's page URL or active flag. The
// asset and dealer links are immutable; replace the listing instead.
type UpdateListingRequest struct {
	ProductLink string `json:"product_link"`
	IsActive    *bool  `json:"is_active"`
}

func (h *Handlers) UpdateListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.FindByID(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		h.logger.Error("failed to get listing", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to update listing")
		return
	}
	if listing == nil {
		h.respondError(w, http.StatusNotFound, "listing not found")
		return
	}

	var req UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProductLink != "" {
		listing.ProductLink = req.ProductLink
	}
	if req.IsActive != nil {
		listing.IsActive = *req.IsActive
	}

	if err := h.listings.Update(r.Context(), listing); err != nil {
		h.logger.Error("failed to update listing", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to update listing")
		return
	}

	h.respondJSON(w, http.StatusOK, listing)
}

func (h *Handlers) DeleteListing(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.listings.Delete(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		h.logger.Error("failed to delete listing", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to delete listing")
		return
	}
	if !deleted {
		h.respondError(w, http.StatusNotFound, "listing not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
