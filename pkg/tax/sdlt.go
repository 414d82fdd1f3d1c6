package tax

import (
	"math"

	"github.com/iwvelando/property-finance/pkg/mathutil"
)

// BuyerType selects which SDLT rate table applies to a purchase.
type BuyerType string

const (
	// BuyerStandard is a home mover replacing their main residence.
	BuyerStandard BuyerType = "standard"
	// BuyerFirstTime qualifies for first-time buyer relief.
	BuyerFirstTime BuyerType = "first-time"
	// BuyerAdditional is buying an additional dwelling (investors, second homes).
	BuyerAdditional BuyerType = "additional"
	// BuyerCompany is a non-natural person buying a dwelling.
	BuyerCompany BuyerType = "company"
)

// BuyerTypes lists the accepted buyer types.
var BuyerTypes = []string{
	string(BuyerStandard),
	string(BuyerFirstTime),
	string(BuyerAdditional),
	string(BuyerCompany),
}

const (
	// AdditionalDwellingSurcharge is added to every band for additional dwellings.
	AdditionalDwellingSurcharge = 5.0
	// AdditionalDwellingMinimum is the price below which the surcharge does not apply.
	AdditionalDwellingMinimum = 40000.0
	// NonResidentSurcharge is added to every band for non-UK-resident buyers.
	NonResidentSurcharge = 2.0
	// FirstTimeBuyerCap is the price above which first-time buyer relief is lost.
	FirstTimeBuyerCap = 500000.0
	// CompanyFlatRateThreshold is the price above which companies pay the flat rate.
	CompanyFlatRateThreshold = 500000.0
	// CompanyFlatRate is the rate charged on the whole price of high-value company purchases.
	CompanyFlatRate = 17.0
)

// ResidentialBands are the standard residential SDLT bands.
var ResidentialBands = []Band{
	{Lower: 0, Upper: 125000, Rate: 0},
	{Lower: 125000, Upper: 250000, Rate: 2},
	{Lower: 250000, Upper: 925000, Rate: 5},
	{Lower: 925000, Upper: 1500000, Rate: 10},
	{Lower: 1500000, Upper: math.Inf(1), Rate: 12},
}

// FirstTimeBuyerBands apply when first-time buyer relief is available.
var FirstTimeBuyerBands = []Band{
	{Lower: 0, Upper: 300000, Rate: 0},
	{Lower: 300000, Upper: 500000, Rate: 5},
}

// StampDutyResult is the SDLT due on a purchase.
type StampDutyResult struct {
	Total         float64
	EffectiveRate float64
	Surcharge     float64 // portion of Total due to surcharges
	FlatRate      bool
	Bands         []BandCharge
}

// StampDuty computes SDLT on a residential purchase. relief disapplies the
// company flat rate (e.g. property rental businesses).
func StampDuty(price float64, buyer BuyerType, nonResident, relief bool) StampDutyResult {
	var result StampDutyResult
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return result
	}

	surcharge := 0.0
	if nonResident {
		surcharge += NonResidentSurcharge
	}

	bands := ResidentialBands
	switch buyer {
	case BuyerFirstTime:
		if price <= FirstTimeBuyerCap {
			bands = FirstTimeBuyerBands
		}
	case BuyerAdditional:
		if price >= AdditionalDwellingMinimum {
			surcharge += AdditionalDwellingSurcharge
		}
	case BuyerCompany:
		if price > CompanyFlatRateThreshold && !relief {
			rate := CompanyFlatRate + surcharge
			total, charges := ApplyBands(price, []Band{{Lower: 0, Upper: math.Inf(1), Rate: rate}})
			result.Total = total
			result.FlatRate = true
			result.Bands = charges
			result.Surcharge = mathutil.ApplyPercentage(price, surcharge)
			result.EffectiveRate = mathutil.CalculatePercentage(total, price)
			return result
		}
		if price >= AdditionalDwellingMinimum {
			surcharge += AdditionalDwellingSurcharge
		}
	}

	base, _ := ApplyBands(price, bands)
	total, charges := ApplyBands(price, withSurcharge(bands, surcharge))
	result.Total = total
	result.Surcharge = total - base
	result.Bands = charges
	result.EffectiveRate = mathutil.CalculatePercentage(total, price)
	return result
}
