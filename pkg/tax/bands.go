// Package tax implements the UK property tax bandings used across the
// calculators: stamp duty land tax, income tax, capital gains tax and
// corporation tax. Rates are those in force for England and Northern Ireland
// from 1 April 2025.
package tax

import (
	"math"

	"github.com/shopspring/decimal"
)

// Band is a slice of value taxed at a single rate. Upper is exclusive of the
// next band; an infinite upper bound is represented by math.Inf(1).
type Band struct {
	Lower float64
	Upper float64
	Rate  float64 // percent
}

// BandCharge is the tax due on the portion of a value falling inside a band.
type BandCharge struct {
	Band
	Taxable float64
	Tax     float64
}

// ApplyBands slices value across bands and returns the total tax together with
// the per-band breakdown. Bands must be ordered by Lower. Arithmetic is done in
// decimal so long band sums do not drift.
func ApplyBands(value float64, bands []Band) (float64, []BandCharge) {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, nil
	}

	total := decimal.Zero
	amount := decimal.NewFromFloat(value)
	hundred := decimal.NewFromInt(100)
	charges := make([]BandCharge, 0, len(bands))

	for _, band := range bands {
		lower := decimal.NewFromFloat(band.Lower)
		if amount.LessThanOrEqual(lower) {
			break
		}
		top := amount
		if !math.IsInf(band.Upper, 1) {
			top = decimal.Min(amount, decimal.NewFromFloat(band.Upper))
		}
		taxable := top.Sub(lower)
		due := taxable.Mul(decimal.NewFromFloat(band.Rate)).Div(hundred)
		total = total.Add(due)

		charges = append(charges, BandCharge{
			Band:    band,
			Taxable: taxable.InexactFloat64(),
			Tax:     due.InexactFloat64(),
		})
	}

	return total.InexactFloat64(), charges
}

// withSurcharge returns a copy of bands with surcharge percentage points added
// to every rate.
func withSurcharge(bands []Band, surcharge float64) []Band {
	if surcharge == 0 {
		return bands
	}
	out := make([]Band, len(bands))
	for i, band := range bands {
		band.Rate += surcharge
		out[i] = band
	}
	return out
}
