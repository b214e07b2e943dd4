package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPremiumPercent(t *testing.T) {
	tests := []struct {
		name       string
		assetPrice float64
		spotPrice  float64
		expected   float64
	}{
		{"ten percent premium", 2200, 2000, 10},
		{"at spot", 2000, 2000, 0},
		{"discount to spot", 1900, 2000, -5},
		{"zero spot yields zero", 2200, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PremiumPercent(tt.assetPrice, tt.spotPrice), 0.0001)
		})
	}
}

func TestWeightConversions(t *testing.T) {
	t.Run("one troy ounce round trip", func(t *testing.T) {
		assert.InDelta(t, 31.1034768, TroyOuncesToGrams(1), 0.0000001)
		assert.InDelta(t, 1, GramsToTroyOunces(31.1034768), 0.0000001)
	})

	t.Run("kilogram and pound", func(t *testing.T) {
		assert.InDelta(t, 1, GramsToKilograms(1000), 0.0001)
		assert.InDelta(t, 1, GramsToPounds(453.592), 0.0001)
	})
}

func TestUnitPrices(t *testing.T) {
	t.Run("price per gram", func(t *testing.T) {
		assert.InDelta(t, 77.69, PricePerGram(2416.5, 31.1034768), 0.01)
	})

	t.Run("price per troy ounce for a fractional coin", func(t *testing.T) {
		// Half-ounce coin priced at 1250: per-ounce rate is 2500.
		assert.InDelta(t, 2500, PricePerTroyOunce(1250, TroyOuncesToGrams(0.5)), 0.01)
	})

	t.Run("zero weight yields zero", func(t *testing.T) {
		assert.Zero(t, PricePerGram(2400, 0))
		assert.Zero(t, PricePerTroyOunce(2400, 0))
	})

	t.Run("spot value for weight", func(t *testing.T) {
		assert.InDelta(t, 1000, SpotValueForWeight(2000, TroyOuncesToGrams(0.5)), 0.01)
	})
}
