package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Round8 rounds v to 8 decimal places. Applied to every monetary value
// before it is persisted so float drift never reaches stored state.
// Non-finite values are returned unchanged.
func Round8(v float64) float64 {
	if !IsFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(8).InexactFloat64()
}

// BasisPoints returns amount * bps / 10_000 computed in decimal.
func BasisPoints(amount float64, bps int64) float64 {
	if !IsFinite(amount) {
		return amount * float64(bps) / 10_000
	}
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromInt(bps)).
		Div(decimal.NewFromInt(10_000)).
		InexactFloat64()
}
