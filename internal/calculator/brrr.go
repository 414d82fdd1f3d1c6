package calculator

import (
	"math"

	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/loans"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
	"github.com/iwvelando/property-finance/pkg/tax"
)

// Mortgage repayment types.
const (
	RepaymentMortgage    = "repayment"
	InterestOnlyMortgage = "interest-only"
)

var mortgageTypes = []string{RepaymentMortgage, InterestOnlyMortgage}

// BRRRForm holds the buy-refurbish-refinance-rent calculator inputs.
type BRRRForm struct {
	PurchasePrice     string `json:"purchasePrice" label:"Purchase price" kind:"currency"`
	BuyerType         string `json:"buyerType" label:"Buyer type" kind:"choice" default:"additional" options:"standard|first-time|additional|company"`
	PurchaseCosts     string `json:"purchaseCosts" label:"Legal and survey costs" kind:"currency"`
	RefurbCost        string `json:"refurbCost" label:"Refurbishment cost" kind:"currency"`
	Contingency       string `json:"contingency" label:"Refurbishment contingency" kind:"percent" default:"10"`
	BridgingLTV       string `json:"bridgingLtv" label:"Bridging loan (% of purchase)" kind:"percent"`
	BridgingRate      string `json:"bridgingRate" label:"Bridging monthly rate" kind:"percent"`
	BridgingFee       string `json:"bridgingFee" label:"Bridging arrangement fee" kind:"percent" default:"2"`
	ProjectMonths     string `json:"projectMonths" label:"Months until refinance" default:"6"`
	EndValue          string `json:"endValue" label:"Value after works" kind:"currency"`
	RefinanceLTV      string `json:"refinanceLtv" label:"Refinance LTV" kind:"percent" default:"75"`
	MortgageRate      string `json:"mortgageRate" label:"Mortgage rate" kind:"percent"`
	MortgageTermYears string `json:"mortgageTermYears" label:"Mortgage term (years)" default:"25"`
	MortgageType      string `json:"mortgageType" label:"Mortgage type" kind:"choice" default:"interest-only" options:"repayment|interest-only"`
	RefinanceFees     string `json:"refinanceFees" label:"Refinance fees" kind:"currency"`
	MonthlyRent       string `json:"monthlyRent" label:"Monthly rent" kind:"currency"`
	ManagementFee     string `json:"managementFee" label:"Management fee" kind:"percent"`
	Voids             string `json:"voids" label:"Voids allowance" kind:"percent"`
	Maintenance       string `json:"maintenance" label:"Maintenance allowance" kind:"percent"`
	Insurance         string `json:"insurance" label:"Annual insurance" kind:"currency"`
	OtherAnnualCosts  string `json:"otherAnnualCosts" label:"Other annual costs" kind:"currency"`
}

// BRRRMetrics summarises a BRRR deal from purchase to refinance.
type BRRRMetrics struct {
	StampDuty         float64 `json:"stampDuty"`
	RefurbTotal       float64 `json:"refurbTotal"`
	BridgingLoan      float64 `json:"bridgingLoan"`
	BridgingCost      float64 `json:"bridgingCost"`
	TotalProjectCost  float64 `json:"totalProjectCost"`
	CashInvested      float64 `json:"cashInvested"`
	RefinanceMortgage float64 `json:"refinanceMortgage"`
	CashReleased      float64 `json:"cashReleased"`
	MoneyLeftIn       float64 `json:"moneyLeftIn"`
	CashRecycled      float64 `json:"cashRecycled"`
	Equity            float64 `json:"equity"`
	MonthlyMortgage   float64 `json:"monthlyMortgage"`
	MonthlyCosts      float64 `json:"monthlyCosts"`
	MonthlyCashflow   float64 `json:"monthlyCashflow"`
	AnnualCashflow    float64 `json:"annualCashflow"`
	ROI               float64 `json:"roi"`
	InfiniteROI       bool    `json:"infiniteRoi"`
	ICR               float64 `json:"icr"`
	GrossYield        float64 `json:"grossYield"`
}

// DeriveBRRRMetrics works a BRRR deal through bridging purchase, works and
// refinance onto a term mortgage.
func DeriveBRRRMetrics(form BRRRForm) BRRRMetrics {
	price := parse.Amount(form.PurchasePrice)
	buyer := parse.Choice(form.BuyerType, tax.BuyerTypes, string(tax.BuyerAdditional))
	refurb := parse.Amount(form.RefurbCost)
	months := mathutil.ClampInt(parse.AmountOr(form.ProjectMonths, 6), 0, math.MaxInt32)
	endValue := parse.Amount(form.EndValue)
	mortgageRate := parse.Percent(form.MortgageRate)
	termYears := parse.AmountOr(form.MortgageTermYears, 25)
	rent := parse.Amount(form.MonthlyRent)

	var m BRRRMetrics
	m.StampDuty = tax.StampDuty(price, tax.BuyerType(buyer), false, false).Total
	m.RefurbTotal = refurb + mathutil.ApplyPercentage(refurb, parse.PercentOr(form.Contingency, 10))

	m.BridgingLoan = mathutil.ApplyPercentage(price, parse.Percent(form.BridgingLTV))
	m.BridgingCost = loans.SimpleInterest(m.BridgingLoan, parse.Percent(form.BridgingRate), months) +
		mathutil.ApplyPercentage(m.BridgingLoan, parse.PercentOr(form.BridgingFee, 2))

	m.TotalProjectCost = price + m.StampDuty + parse.Amount(form.PurchaseCosts) + m.RefurbTotal +
		m.BridgingCost + parse.Amount(form.RefinanceFees)
	m.CashInvested = m.TotalProjectCost - m.BridgingLoan

	m.RefinanceMortgage = mathutil.ApplyPercentage(endValue, parse.PercentOr(form.RefinanceLTV, 75))
	m.CashReleased = m.RefinanceMortgage - m.BridgingLoan
	m.MoneyLeftIn = m.TotalProjectCost - m.RefinanceMortgage
	m.CashRecycled = mathutil.CalculatePercentage(m.CashReleased, m.CashInvested)
	m.Equity = endValue - m.RefinanceMortgage

	switch parse.Choice(form.MortgageType, mortgageTypes, InterestOnlyMortgage) {
	case RepaymentMortgage:
		m.MonthlyMortgage = loans.CalculateMonthlyPayment(m.RefinanceMortgage, 0, mortgageRate, mathutil.ClampInt(termYears*constants.MonthsPerYear, 0, constants.MaxLoanTermMonths))
	default:
		m.MonthlyMortgage = loans.InterestOnlyPayment(m.RefinanceMortgage, mortgageRate)
	}

	variable := parse.Percent(form.ManagementFee) + parse.Percent(form.Voids) + parse.Percent(form.Maintenance)
	fixed := parse.Amount(form.Insurance) + parse.Amount(form.OtherAnnualCosts)
	m.MonthlyCosts = mathutil.ApplyPercentage(rent, variable) + fixed/constants.MonthsPerYear
	m.MonthlyCashflow = rent - m.MonthlyCosts - m.MonthlyMortgage
	m.AnnualCashflow = m.MonthlyCashflow * constants.MonthsPerYear

	if mathutil.IsPositive(m.MoneyLeftIn) {
		m.ROI = mathutil.CalculatePercentage(m.AnnualCashflow, m.MoneyLeftIn)
	} else {
		// All cash recycled: any positive cashflow is an infinite return.
		m.InfiniteROI = m.AnnualCashflow > 0
	}

	annualInterest := mathutil.ApplyPercentage(m.RefinanceMortgage, mortgageRate)
	m.ICR = mathutil.CalculatePercentage(rent*constants.MonthsPerYear, annualInterest)
	m.GrossYield = mathutil.CalculatePercentage(rent*constants.MonthsPerYear, endValue)
	return m
}

// Fields implements Result.
func (m BRRRMetrics) Fields() []Field {
	return []Field{
		currency("stampDuty", "Stamp duty", m.StampDuty),
		currency("refurbTotal", "Refurbishment incl. contingency", m.RefurbTotal),
		currency("bridgingLoan", "Bridging loan", m.BridgingLoan),
		currency("bridgingCost", "Bridging interest and fees", m.BridgingCost),
		currency("totalProjectCost", "Total project cost", m.TotalProjectCost),
		currency("cashInvested", "Cash invested", m.CashInvested),
		currency("refinanceMortgage", "Refinance mortgage", m.RefinanceMortgage),
		currency("cashReleased", "Cash released on refinance", m.CashReleased),
		currency("moneyLeftIn", "Money left in", m.MoneyLeftIn),
		percent("cashRecycled", "Cash recycled", m.CashRecycled),
		currency("equity", "Equity after refinance", m.Equity),
		currency("monthlyMortgage", "Monthly mortgage payment", m.MonthlyMortgage),
		currency("monthlyCosts", "Monthly running costs", m.MonthlyCosts),
		currency("monthlyCashflow", "Monthly cashflow", m.MonthlyCashflow),
		currency("annualCashflow", "Annual cashflow", m.AnnualCashflow),
		percent("roi", "Return on money left in", m.ROI),
		flag("infiniteRoi", "Infinite return", m.InfiniteROI),
		percent("icr", "Interest cover", m.ICR),
		percent("grossYield", "Gross yield on end value", m.GrossYield),
	}
}

// BRRR is the buy-refurbish-refinance-rent calculator.
var BRRR Calculator = definition[BRRRForm, BRRRMetrics]{
	name:        "brrr",
	title:       "Buy, Refurbish, Refinance, Rent",
	description: "Cash invested, cash recycled on refinance, money left in the deal and ongoing cashflow for a BRRR project.",
	derive:      DeriveBRRRMetrics,
}
