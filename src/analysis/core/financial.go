package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// CalculateChangePercent calculates fractional change.
func CalculateChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous
}

// -----------------------------------------------------------------------------

// PriceRange returns min and max of values. ok is false for an empty slice.
func PriceRange(values []float64) (low, high float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	low, high = math.MaxFloat64, -math.MaxFloat64
	for _, v := range values {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	return low, high, true
}

// -----------------------------------------------------------------------------

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
