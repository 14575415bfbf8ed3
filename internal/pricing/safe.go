package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	zero    = decimal.Zero
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// FromFloat coerces a float into a decimal, degrading NaN and infinities
// to zero so malformed input never propagates through a calculation.
func FromFloat(value float64) decimal.Decimal {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return zero
	}
	return decimal.NewFromFloat(value)
}

// ParseDecimal coerces a string into a decimal, degrading malformed input
// to zero.
func ParseDecimal(value string) decimal.Decimal {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return zero
	}
	return parsed
}

// NonNegative floors a value at zero.
func NonNegative(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return zero
	}
	return value
}

// ClampPercent restricts a percentage to [0, 100].
func ClampPercent(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return zero
	}
	if value.GreaterThan(hundred) {
		return hundred
	}
	return value
}

// ClampRange restricts a value to [0, max]. A negative max collapses the
// range to zero.
func ClampRange(value, max decimal.Decimal) decimal.Decimal {
	if max.IsNegative() {
		return zero
	}
	if value.IsNegative() {
		return zero
	}
	if value.GreaterThan(max) {
		return max
	}
	return value
}
