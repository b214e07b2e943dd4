package scraper

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goldyhq/goldy/internal/models"
)

// stubStrategy matches a fixed substring and records nothing.
type stubStrategy struct {
	match string
}

func (s *stubStrategy) CanHandle(dealerName string) bool {
	return strings.Contains(strings.ToLower(dealerName), s.match)
}

func (s *stubStrategy) ScrapePrice(ctx context.Context, listing *models.Listing) (*models.ScrapedPrice, error) {
	return nil, nil
}

func TestRegistry_Resolve(t *testing.T) {
	apmex := &stubStrategy{match: "apmex"}
	jm := &stubStrategy{match: "jm bullion"}
	registry := NewRegistry(apmex, jm)

	t.Run("resolves the matching strategy", func(t *testing.T) {
		assert.Same(t, Strategy(apmex), registry.Resolve("APMEX Inc."))
		assert.Same(t, Strategy(jm), registry.Resolve("JM Bullion"))
	})

	t.Run("unknown dealer resolves to nil", func(t *testing.T) {
		assert.Nil(t, registry.Resolve("SD Bullion"))
	})

	t.Run("first registered strategy wins on overlap", func(t *testing.T) {
		broad := &stubStrategy{match: "bullion"}
		r := NewRegistry(jm, broad)
		assert.Same(t, Strategy(jm), r.Resolve("JM Bullion"))
		assert.Same(t, Strategy(broad), r.Resolve("SD Bullion"))
	})

	t.Run("empty registry resolves to nil", func(t *testing.T) {
		assert.Nil(t, NewRegistry().Resolve("APMEX"))
	})

	t.Run("register after construction", func(t *testing.T) {
		r := NewRegistry()
		r.Register(apmex)
		assert.Same(t, Strategy(apmex), r.Resolve("apmex"))
	})
}

func TestRegistry_WithVendorStrategies(t *testing.T) {
	logger := slog.Default()
	registry := NewRegistry(
		NewAPMEXStrategy(nil, nil, logger),
		NewJMBullionStrategy(nil, nil, logger),
	)

	assert.NotNil(t, registry.Resolve("APMEX"))
	assert.NotNil(t, registry.Resolve("JM Bullion Inc."))
	assert.Nil(t, registry.Resolve("Kitco"))
}
