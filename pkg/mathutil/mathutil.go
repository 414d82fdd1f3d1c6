// Package mathutil provides the rounding, ratio and discounting helpers shared
// by the calculators.
package mathutil

import (
	"math"

	"github.com/iwvelando/property-finance/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within a penny)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsPositive checks if a value is positive (greater than tolerance)
func IsPositive(val float64) bool {
	return val > constants.CurrencyTolerance
}

// IsNegative checks if a value is negative (less than negative tolerance)
func IsNegative(val float64) bool {
	return val < -constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Clamp bounds val to [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	return Max(lo, Min(val, hi))
}

// SafeDivide divides a by b, returning 0 when b is zero or the result is not finite.
func SafeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return Finite(a / b)
}

// Finite replaces NaN and infinities with zero.
func Finite(val float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	return val
}

// ClampInt truncates val toward zero and bounds it to [lo, hi]. NaN is lo.
func ClampInt(val float64, lo, hi int) int {
	if math.IsNaN(val) || val <= float64(lo) {
		return lo
	}
	if val >= float64(hi) {
		return hi
	}
	return int(val)
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	return SafeDivide(value, total) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// AnnuityFactor returns the present value of 1 per year for the given number of
// years at ratePct. A zero rate degenerates to the number of years.
func AnnuityFactor(ratePct, years float64) float64 {
	if years <= 0 {
		return 0
	}
	r := ratePct / constants.PercentageMultiplier
	if r == 0 {
		return years
	}
	return Finite((1 - math.Pow(1+r, -years)) / r)
}

// PresentValue discounts value received after the given number of years.
func PresentValue(value, ratePct, years float64) float64 {
	if years <= 0 {
		return value
	}
	r := ratePct / constants.PercentageMultiplier
	return Finite(value * math.Pow(1+r, -years))
}

// NPV discounts a series of end-of-period flows at ratePct and adds the
// undiscounted initial flow (usually a negative outlay).
func NPV(ratePct, initial float64, flows []float64) float64 {
	total := initial
	r := ratePct / constants.PercentageMultiplier
	for i, flow := range flows {
		total += flow / math.Pow(1+r, float64(i+1))
	}
	return Finite(total)
}
