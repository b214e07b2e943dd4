package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the API surface: scraping triggers, price history reads,
// and CRUD for the three record types.
func NewRouter(h *Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/scraping", func(r chi.Router) {
			r.Post("/trigger", h.TriggerScraping)
			r.Post("/trigger/listing/{listingID}", h.TriggerListingScraping)
			r.Get("/status", h.GetScrapingStatus)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Post("/", h.CreateAsset)
			r.Get("/", h.ListAssets)
			r.Get("/{assetID}", h.GetAsset)
			r.Put("/{assetID}", h.UpdateAsset)
			r.Delete("/{assetID}", h.DeleteAsset)
		})

		r.Route("/dealers", func(r chi.Router) {
			r.Post("/", h.CreateDealer)
			r.Get("/", h.ListDealers)
			r.Get("/{dealerID}", h.GetDealer)
			r.Put("/{dealerID}", h.UpdateDealer)
			r.Delete("/{dealerID}", h.DeleteDealer)
		})

		r.Route("/listings", func(r chi.Router) {
			r.Post("/", h.CreateListing)
			r.Get("/", h.ListListings)
			r.Get("/{listingID}", h.GetListing)
			r.Put("/{listingID}", h.UpdateListing)
			r.Delete("/{listingID}", h.DeleteListing)
		})

		r.Route("/prices", func(r chi.Router) {
			r.Get("/latest", h.GetLatestPrices)
			r.Get("/listing/{listingID}", h.GetPriceHistory)
			r.Get("/range", h.GetPricesByDateRange)
			r.Get("/records/{recordID}", h.GetPriceRecord)
			r.Get("/compare", h.ComparePrices)
			r.Get("/trend/{listingID}", h.GetPriceTrend)
		})
	})

	return r
}
