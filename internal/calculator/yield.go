package calculator

import (
	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
	"github.com/iwvelando/property-finance/pkg/tax"
)

// YieldForm holds the rental yield calculator inputs.
type YieldForm struct {
	PurchasePrice    string `json:"purchasePrice" label:"Purchase price" kind:"currency"`
	IncludeStampDuty string `json:"includeStampDuty" label:"Add stamp duty to the cost" kind:"flag"`
	BuyerType        string `json:"buyerType" label:"Buyer type" kind:"choice" default:"additional" options:"standard|first-time|additional|company"`
	PurchaseCosts    string `json:"purchaseCosts" label:"Other purchase costs" kind:"currency"`
	MonthlyRent      string `json:"monthlyRent" label:"Monthly rent" kind:"currency"`
	VoidWeeks        string `json:"voidWeeks" label:"Void weeks per year"`
	ManagementFee    string `json:"managementFee" label:"Management fee" kind:"percent"`
	Maintenance      string `json:"maintenance" label:"Annual maintenance" kind:"currency"`
	Insurance        string `json:"insurance" label:"Annual insurance" kind:"currency"`
	ServiceCharge    string `json:"serviceCharge" label:"Annual service charge" kind:"currency"`
	GroundRent       string `json:"groundRent" label:"Annual ground rent" kind:"currency"`
}

// YieldMetrics holds gross and net rental yields.
type YieldMetrics struct {
	TotalCost     float64 `json:"totalCost"`
	StampDuty     float64 `json:"stampDuty"`
	AnnualRent    float64 `json:"annualRent"`
	EffectiveRent float64 `json:"effectiveRent"`
	AnnualCosts   float64 `json:"annualCosts"`
	NetIncome     float64 `json:"netIncome"`
	GrossYield    float64 `json:"grossYield"`
	NetYield      float64 `json:"netYield"`
}

// DeriveYieldMetrics computes gross yield on the purchase price and net yield
// on the total cost after voids and running costs.
func DeriveYieldMetrics(form YieldForm) YieldMetrics {
	price := parse.Amount(form.PurchasePrice)
	rent := parse.Amount(form.MonthlyRent)

	var m YieldMetrics
	if parse.Bool(form.IncludeStampDuty) {
		buyer := parse.Choice(form.BuyerType, tax.BuyerTypes, string(tax.BuyerAdditional))
		m.StampDuty = tax.StampDuty(price, tax.BuyerType(buyer), false, false).Total
	}
	m.TotalCost = price + m.StampDuty + parse.Amount(form.PurchaseCosts)

	m.AnnualRent = rent * constants.MonthsPerYear
	voidWeeks := mathutil.Clamp(parse.Amount(form.VoidWeeks), 0, constants.WeeksPerYear)
	m.EffectiveRent = m.AnnualRent * (constants.WeeksPerYear - voidWeeks) / constants.WeeksPerYear

	m.AnnualCosts = mathutil.ApplyPercentage(m.EffectiveRent, parse.Percent(form.ManagementFee)) +
		parse.Amount(form.Maintenance) + parse.Amount(form.Insurance) +
		parse.Amount(form.ServiceCharge) + parse.Amount(form.GroundRent)
	m.NetIncome = m.EffectiveRent - m.AnnualCosts

	m.GrossYield = mathutil.CalculatePercentage(m.AnnualRent, price)
	m.NetYield = mathutil.CalculatePercentage(m.NetIncome, m.TotalCost)
	return m
}

// Fields implements Result.
func (m YieldMetrics) Fields() []Field {
	return []Field{
		currency("totalCost", "Total cost", m.TotalCost),
		currency("stampDuty", "Stamp duty", m.StampDuty),
		currency("annualRent", "Annual rent", m.AnnualRent),
		currency("effectiveRent", "Rent after voids", m.EffectiveRent),
		currency("annualCosts", "Annual running costs", m.AnnualCosts),
		currency("netIncome", "Net income", m.NetIncome),
		percent("grossYield", "Gross yield", m.GrossYield),
		percent("netYield", "Net yield", m.NetYield),
	}
}

// Yield is the rental yield calculator.
var Yield Calculator = definition[YieldForm, YieldMetrics]{
	name:        "rental-yield",
	title:       "Rental Yield",
	description: "Gross and net rental yield after voids, management and running costs.",
	derive:      DeriveYieldMetrics,
}
