package tax

import (
	"math"

	"github.com/iwvelando/property-finance/pkg/mathutil"
)

const (
	// PersonalAllowance is the tax-free income allowance before tapering.
	PersonalAllowance = 12570.0
	// AllowanceTaperThreshold is the income above which the allowance is withdrawn £1 for every £2.
	AllowanceTaperThreshold = 100000.0
	// BasicRateBand is the width of the basic-rate band of taxable income.
	BasicRateBand = 37700.0
	// AdditionalRateThreshold is the taxable income at which the additional rate starts.
	AdditionalRateThreshold = 125140.0

	// BasicRate is the basic rate of income tax.
	BasicRate = 20.0
	// HigherRate is the higher rate of income tax.
	HigherRate = 40.0
	// AdditionalRate is the additional rate of income tax.
	AdditionalRate = 45.0

	// FinanceCostCreditRate is the rate of the tax reduction for residential finance costs.
	FinanceCostCreditRate = BasicRate

	// CGTAnnualExemptAmount is the capital gains annual exempt amount.
	CGTAnnualExemptAmount = 3000.0
	// CGTLowerRate applies to residential gains within the unused basic-rate band.
	CGTLowerRate = 18.0
	// CGTHigherRate applies to residential gains above the basic-rate band.
	CGTHigherRate = 24.0

	// CorporationSmallProfitsRate applies to profits up to the lower limit.
	CorporationSmallProfitsRate = 19.0
	// CorporationMainRate applies to profits at or above the upper limit.
	CorporationMainRate = 25.0
	// CorporationLowerLimit is the small profits threshold.
	CorporationLowerLimit = 50000.0
	// CorporationUpperLimit is the main rate threshold.
	CorporationUpperLimit = 250000.0
	// MarginalReliefFraction is the standard fraction for marginal relief.
	MarginalReliefFraction = 3.0 / 200.0
)

// Allowance returns the personal allowance after tapering for the given income.
func Allowance(income float64) float64 {
	if income <= AllowanceTaperThreshold {
		return PersonalAllowance
	}
	return math.Max(0, PersonalAllowance-(income-AllowanceTaperThreshold)/2)
}

// IncomeTax returns the income tax due on total income for the year.
func IncomeTax(income float64) float64 {
	if income <= 0 {
		return 0
	}
	allowance := Allowance(income)
	taxable := income - allowance
	bands := []Band{
		{Lower: 0, Upper: BasicRateBand, Rate: BasicRate},
		{Lower: BasicRateBand, Upper: AdditionalRateThreshold - allowance, Rate: HigherRate},
		{Lower: AdditionalRateThreshold - allowance, Upper: math.Inf(1), Rate: AdditionalRate},
	}
	total, _ := ApplyBands(taxable, bands)
	return total
}

// MarginalRate returns the income tax rate applying to the last pound of income.
func MarginalRate(income float64) float64 {
	allowance := Allowance(income)
	taxable := income - allowance
	switch {
	case taxable <= 0:
		return 0
	case income > AllowanceTaperThreshold && allowance > 0:
		// Inside the taper the effective marginal rate is 60%.
		return HigherRate * 1.5
	case taxable <= BasicRateBand:
		return BasicRate
	case income <= AdditionalRateThreshold:
		return HigherRate
	default:
		return AdditionalRate
	}
}

// UnusedBasicRateBand returns how much of the basic-rate band is left after
// the given taxable income.
func UnusedBasicRateBand(otherIncome float64) float64 {
	taxable := math.Max(0, otherIncome-Allowance(otherIncome))
	return math.Max(0, BasicRateBand-taxable)
}

// CapitalGainsTax returns the residential CGT due on a gain for an individual
// with otherIncome, after the annual exempt amount.
func CapitalGainsTax(gain, otherIncome float64) float64 {
	taxable := math.Max(0, gain-CGTAnnualExemptAmount)
	if taxable == 0 {
		return 0
	}
	lower := math.Min(taxable, UnusedBasicRateBand(otherIncome))
	return mathutil.ApplyPercentage(lower, CGTLowerRate) + mathutil.ApplyPercentage(taxable-lower, CGTHigherRate)
}

// CorporationTax returns corporation tax on a company's taxable profit with
// marginal relief between the lower and upper limits.
func CorporationTax(profit float64) float64 {
	switch {
	case profit <= 0:
		return 0
	case profit <= CorporationLowerLimit:
		return mathutil.ApplyPercentage(profit, CorporationSmallProfitsRate)
	case profit >= CorporationUpperLimit:
		return mathutil.ApplyPercentage(profit, CorporationMainRate)
	default:
		return mathutil.ApplyPercentage(profit, CorporationMainRate) - (CorporationUpperLimit-profit)*MarginalReliefFraction
	}
}
