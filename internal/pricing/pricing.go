// Package pricing holds the arithmetic shared by the price store and the
// analytics endpoints: premium over spot and weight-based unit prices.
package pricing

const (
	GramsPerTroyOunce = 31.1034768
	GramsPerKilogram  = 1000.0
	GramsPerPound     = 453.592
)

// PremiumPercent is the markup of an asset price over the spot value,
// expressed as a percentage. A zero spot price yields zero, not a division
// error.
func PremiumPercent(assetPrice, spotPrice float64) float64 {
	if spotPrice == 0 {
		return 0
	}
	return ((assetPrice - spotPrice) / spotPrice) * 100
}

func PricePerGram(totalPrice, weightGrams float64) float64 {
	if weightGrams == 0 {
		return 0
	}
	return totalPrice / weightGrams
}

func PricePerTroyOunce(totalPrice, weightGrams float64) float64 {
	if weightGrams == 0 {
		return 0
	}
	return totalPrice / GramsToTroyOunces(weightGrams)
}

// SpotValueForWeight converts a per-troy-ounce spot quote to the melt value
// of a given weight.
func SpotValueForWeight(spotPricePerOunce, weightGrams float64) float64 {
	return spotPricePerOunce * GramsToTroyOunces(weightGrams)
}

func GramsToTroyOunces(grams float64) float64 {
	return grams / GramsPerTroyOunce
}

func TroyOuncesToGrams(ounces float64) float64 {
	return ounces * GramsPerTroyOunce
}

func GramsToKilograms(grams float64) float64 {
	return grams / GramsPerKilogram
}

func GramsToPounds(grams float64) float64 {
	return grams / GramsPerPound
}
