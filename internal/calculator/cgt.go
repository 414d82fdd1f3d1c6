package calculator

import (
	"math"

	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
	"github.com/iwvelando/property-finance/pkg/tax"
)

// CGTForm holds the capital gains tax inputs for a residential disposal.
type CGTForm struct {
	PurchasePrice    string `json:"purchasePrice" label:"Purchase price" kind:"currency"`
	PurchaseCosts    string `json:"purchaseCosts" label:"Purchase costs (SDLT, legal)" kind:"currency"`
	ImprovementCosts string `json:"improvementCosts" label:"Capital improvements" kind:"currency"`
	SalePrice        string `json:"salePrice" label:"Sale price" kind:"currency"`
	SaleCosts        string `json:"saleCosts" label:"Sale costs" kind:"currency"`
	Owners           string `json:"owners" label:"Number of owners" default:"1"`
	OtherIncome      string `json:"otherIncome" label:"Each owner's taxable income" kind:"currency"`
}

// CGTMetrics is the capital gains tax due on a disposal.
type CGTMetrics struct {
	Gain            float64 `json:"gain"`
	Loss            float64 `json:"loss"`
	Owners          int     `json:"owners"`
	GainPerOwner    float64 `json:"gainPerOwner"`
	TaxablePerOwner float64 `json:"taxablePerOwner"`
	TaxPerOwner     float64 `json:"taxPerOwner"`
	TotalTax        float64 `json:"totalTax"`
	EffectiveRate   float64 `json:"effectiveRate"`
	NetProceeds     float64 `json:"netProceeds"`
}

// DeriveCGTMetrics splits the gain equally between owners, each of whom has
// their own annual exempt amount and basic-rate band.
func DeriveCGTMetrics(form CGTForm) CGTMetrics {
	sale := parse.Amount(form.SalePrice)
	saleCosts := parse.Amount(form.SaleCosts)
	base := parse.Amount(form.PurchasePrice) + parse.Amount(form.PurchaseCosts) + parse.Amount(form.ImprovementCosts)

	var m CGTMetrics
	m.Owners = mathutil.ClampInt(parse.AmountOr(form.Owners, 1), 1, math.MaxInt32)
	net := sale - saleCosts - base
	m.Gain = math.Max(0, net)
	m.Loss = math.Max(0, -net)

	m.GainPerOwner = m.Gain / float64(m.Owners)
	m.TaxablePerOwner = math.Max(0, m.GainPerOwner-tax.CGTAnnualExemptAmount)
	m.TaxPerOwner = tax.CapitalGainsTax(m.GainPerOwner, parse.Amount(form.OtherIncome))
	m.TotalTax = m.TaxPerOwner * float64(m.Owners)
	m.EffectiveRate = mathutil.CalculatePercentage(m.TotalTax, m.Gain)
	m.NetProceeds = sale - saleCosts - m.TotalTax
	return m
}

// Fields implements Result.
func (m CGTMetrics) Fields() []Field {
	return []Field{
		currency("gain", "Gain", m.Gain),
		currency("loss", "Allowable loss", m.Loss),
		quantity("owners", "Owners", float64(m.Owners), UnitCount),
		currency("gainPerOwner", "Gain per owner", m.GainPerOwner),
		currency("taxablePerOwner", "Taxable gain per owner", m.TaxablePerOwner),
		currency("taxPerOwner", "Tax per owner", m.TaxPerOwner),
		currency("totalTax", "Total capital gains tax", m.TotalTax),
		percent("effectiveRate", "Effective rate on the gain", m.EffectiveRate),
		currency("netProceeds", "Proceeds after costs and tax", m.NetProceeds),
	}
}

// CapitalGains is the residential capital gains tax calculator.
var CapitalGains Calculator = definition[CGTForm, CGTMetrics]{
	name:        "capital-gains",
	title:       "Capital Gains Tax",
	description: "Residential capital gains tax on a sale, split across joint owners at 18% and 24%.",
	derive:      DeriveCGTMetrics,
}
