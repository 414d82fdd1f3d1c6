package calculator

import (
	"math"

	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/loans"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
	"github.com/iwvelando/property-finance/pkg/tax"
)

// Tax treatments of trading profit.
const (
	ProfitTaxNone    = "none"
	ProfitTaxIncome  = "income"
	ProfitTaxCompany = "company"
)

var profitTaxTreatments = []string{ProfitTaxNone, ProfitTaxIncome, ProfitTaxCompany}

// FlipForm holds the buy-refurbish-sell inputs.
type FlipForm struct {
	PurchasePrice  string `json:"purchasePrice" label:"Purchase price" kind:"currency"`
	BuyerType      string `json:"buyerType" label:"Buyer type" kind:"choice" default:"additional" options:"standard|first-time|additional|company"`
	PurchaseLegal  string `json:"purchaseLegal" label:"Purchase legal and survey fees" kind:"currency"`
	RefurbCost     string `json:"refurbCost" label:"Refurbishment cost" kind:"currency"`
	HoldingMonths  string `json:"holdingMonths" label:"Months from purchase to sale" default:"6"`
	MonthlyHolding string `json:"monthlyHolding" label:"Monthly holding costs" kind:"currency"`
	LoanAmount     string `json:"loanAmount" label:"Bridging loan" kind:"currency"`
	MonthlyRate    string `json:"monthlyRate" label:"Bridging rate (monthly)" kind:"percent"`
	ArrangementFee string `json:"arrangementFee" label:"Arrangement fee" kind:"percent" default:"2"`
	SalePrice      string `json:"salePrice" label:"Sale price" kind:"currency"`
	AgentFee       string `json:"agentFee" label:"Estate agent fee" kind:"percent" default:"1.5"`
	SaleLegal      string `json:"saleLegal" label:"Sale legal fees" kind:"currency"`
	TaxTreatment   string `json:"taxTreatment" label:"Tax on profit" kind:"choice" default:"none" options:"none|income|company"`
	OtherIncome    string `json:"otherIncome" label:"Other taxable income" kind:"currency"`
}

// FlipMetrics is the outcome of a buy-refurbish-sell project.
type FlipMetrics struct {
	StampDuty       float64 `json:"stampDuty"`
	AcquisitionCost float64 `json:"acquisitionCost"`
	RefurbCost      float64 `json:"refurbCost"`
	HoldingCosts    float64 `json:"holdingCosts"`
	FinanceCosts    float64 `json:"financeCosts"`
	SaleCosts       float64 `json:"saleCosts"`
	TotalCost       float64 `json:"totalCost"`
	ProfitBeforeTax float64 `json:"profitBeforeTax"`
	Tax             float64 `json:"tax"`
	ProfitAfterTax  float64 `json:"profitAfterTax"`
	CashInvested    float64 `json:"cashInvested"`
	ROI             float64 `json:"roi"`
	AnnualisedROI   float64 `json:"annualisedROI"`
	ProfitOnCost    float64 `json:"profitOnCost"`
	BreakEvenPrice  float64 `json:"breakEvenPrice"`
}

// tradingTax is the tax on a trading profit. For an individual the profit is
// taxed on top of their other income.
func tradingTax(profit, otherIncome float64, treatment string) float64 {
	if profit <= 0 {
		return 0
	}
	switch treatment {
	case ProfitTaxIncome:
		return tax.IncomeTax(otherIncome+profit) - tax.IncomeTax(otherIncome)
	case ProfitTaxCompany:
		return tax.CorporationTax(profit)
	default:
		return 0
	}
}

// DeriveFlipMetrics costs a flip from purchase to sale. Bridging interest is
// serviced simple interest over the holding period.
func DeriveFlipMetrics(form FlipForm) FlipMetrics {
	price := parse.Amount(form.PurchasePrice)
	buyer := parse.Choice(form.BuyerType, tax.BuyerTypes, string(tax.BuyerAdditional))
	months := mathutil.ClampInt(parse.AmountOr(form.HoldingMonths, 6), 0, math.MaxInt32)
	loan := parse.Amount(form.LoanAmount)
	sale := parse.Amount(form.SalePrice)
	treatment := parse.Choice(form.TaxTreatment, profitTaxTreatments, ProfitTaxNone)

	var m FlipMetrics
	m.StampDuty = tax.StampDuty(price, tax.BuyerType(buyer), false, false).Total
	m.AcquisitionCost = price + m.StampDuty + parse.Amount(form.PurchaseLegal)
	m.RefurbCost = parse.Amount(form.RefurbCost)
	m.HoldingCosts = parse.Amount(form.MonthlyHolding) * float64(months)
	m.FinanceCosts = loans.SimpleInterest(loan, parse.Percent(form.MonthlyRate), months) +
		mathutil.ApplyPercentage(loan, parse.PercentOr(form.ArrangementFee, 2))

	agentRate := parse.PercentOr(form.AgentFee, 1.5)
	m.SaleCosts = mathutil.ApplyPercentage(sale, agentRate) + parse.Amount(form.SaleLegal)
	m.TotalCost = m.AcquisitionCost + m.RefurbCost + m.HoldingCosts + m.FinanceCosts + m.SaleCosts

	m.ProfitBeforeTax = sale - m.TotalCost
	m.Tax = tradingTax(m.ProfitBeforeTax, parse.Amount(form.OtherIncome), treatment)
	m.ProfitAfterTax = m.ProfitBeforeTax - m.Tax

	// Sale costs come out of the proceeds, so only the rest needs funding.
	m.CashInvested = math.Max(0, m.TotalCost-m.SaleCosts-loan)
	m.ROI = mathutil.CalculatePercentage(m.ProfitAfterTax, m.CashInvested)
	if months > 0 {
		m.AnnualisedROI = m.ROI * constants.MonthsPerYear / float64(months)
	}
	m.ProfitOnCost = mathutil.CalculatePercentage(m.ProfitBeforeTax, m.TotalCost)

	fixed := m.TotalCost - m.SaleCosts + parse.Amount(form.SaleLegal)
	if agentRate < constants.PercentageMultiplier {
		m.BreakEvenPrice = fixed / (1 - agentRate/constants.PercentageMultiplier)
	}
	return m
}

// Fields implements Result.
func (m FlipMetrics) Fields() []Field {
	return []Field{
		currency("stampDuty", "Stamp duty", m.StampDuty),
		currency("acquisitionCost", "Acquisition cost", m.AcquisitionCost),
		currency("refurbCost", "Refurbishment", m.RefurbCost),
		currency("holdingCosts", "Holding costs", m.HoldingCosts),
		currency("financeCosts", "Finance costs", m.FinanceCosts),
		currency("saleCosts", "Sale costs", m.SaleCosts),
		currency("totalCost", "Total cost", m.TotalCost),
		currency("profitBeforeTax", "Profit before tax", m.ProfitBeforeTax),
		currency("tax", "Tax", m.Tax),
		currency("profitAfterTax", "Profit after tax", m.ProfitAfterTax),
		currency("cashInvested", "Cash invested", m.CashInvested),
		percent("roi", "Return on cash", m.ROI),
		percent("annualisedROI", "Annualised return", m.AnnualisedROI),
		percent("profitOnCost", "Profit on cost", m.ProfitOnCost),
		currency("breakEvenPrice", "Break-even sale price", m.BreakEvenPrice),
	}
}

// Flip is the buy-refurbish-sell calculator.
var Flip Calculator = definition[FlipForm, FlipMetrics]{
	name:        "flip",
	title:       "Property Flip",
	description: "Acquisition, refurbishment, holding, finance and sale costs of a flip with profit, tax and return on cash.",
	derive:      DeriveFlipMetrics,
}
