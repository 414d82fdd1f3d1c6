package calculator

import (
	"math"

	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/loans"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
)

// Borrower tax bands used to pick the lender ICR threshold.
const (
	TaxBandBasic   = "basic"
	TaxBandHigher  = "higher"
	TaxBandCompany = "company"
)

var taxBands = []string{TaxBandBasic, TaxBandHigher, TaxBandCompany}

// ICRForm holds the buy-to-let stress test inputs.
type ICRForm struct {
	MonthlyRent  string `json:"monthlyRent" label:"Monthly rent" kind:"currency"`
	LoanAmount   string `json:"loanAmount" label:"Loan amount" kind:"currency"`
	ProductRate  string `json:"productRate" label:"Product rate" kind:"percent"`
	StressRate   string `json:"stressRate" label:"Stress rate (blank for lender default)" kind:"percent"`
	TaxBand      string `json:"taxBand" label:"Borrower tax band" kind:"choice" default:"basic" options:"basic|higher|company"`
	ICRThreshold string `json:"icrThreshold" label:"Required ICR (blank for lender default)" kind:"percent"`
}

// ICRMetrics is the outcome of an interest cover stress test.
type ICRMetrics struct {
	AnnualRent       float64 `json:"annualRent"`
	StressRate       float64 `json:"stressRate"`
	Threshold        float64 `json:"threshold"`
	StressedInterest float64 `json:"stressedInterest"`
	ICR              float64 `json:"icr"`
	Pass             bool    `json:"pass"`
	MaxLoan          float64 `json:"maxLoan"`
	RentRequired     float64 `json:"rentRequired"`
	Headroom         float64 `json:"headroom"`
	MonthlyInterest  float64 `json:"monthlyInterest"`
}

// DefaultStressRate is the rate lenders test at when none is given: the
// product rate plus a buffer, never below the floor.
func DefaultStressRate(productRate float64) float64 {
	return math.Max(productRate+constants.StressRateBuffer, constants.StressRateFloor)
}

// ICRThreshold returns the lender ICR requirement for a tax band.
func ICRThreshold(band string) float64 {
	if band == TaxBandHigher {
		return constants.ICRHigherRate
	}
	return constants.ICRBasicRate
}

// DeriveICRMetrics stress tests a buy-to-let loan. ICR is annual rent over
// annual interest at the stress rate, as a percentage; the test passes when
// ICR meets or exceeds the threshold.
func DeriveICRMetrics(form ICRForm) ICRMetrics {
	rent := parse.Amount(form.MonthlyRent)
	loan := parse.Amount(form.LoanAmount)
	product := parse.Percent(form.ProductRate)
	band := parse.Choice(form.TaxBand, taxBands, TaxBandBasic)

	var m ICRMetrics
	m.AnnualRent = rent * constants.MonthsPerYear
	// Lenders never test at a zero or negative rate.
	m.StressRate = parse.PercentOr(form.StressRate, DefaultStressRate(product))
	if m.StressRate <= 0 {
		m.StressRate = DefaultStressRate(product)
	}
	m.Threshold = parse.PercentOr(form.ICRThreshold, ICRThreshold(band))
	m.StressedInterest = mathutil.ApplyPercentage(loan, m.StressRate)
	m.ICR = mathutil.CalculatePercentage(m.AnnualRent, m.StressedInterest)
	m.Pass = loan > 0 && m.ICR >= m.Threshold

	if m.StressRate > 0 && m.Threshold > 0 {
		m.MaxLoan = m.AnnualRent / (m.Threshold / constants.PercentageMultiplier) / (m.StressRate / constants.PercentageMultiplier)
	}
	m.RentRequired = mathutil.ApplyPercentage(m.StressedInterest, m.Threshold) / constants.MonthsPerYear
	m.Headroom = m.MaxLoan - loan
	m.MonthlyInterest = loans.InterestOnlyPayment(loan, product)
	return m
}

// Fields implements Result.
func (m ICRMetrics) Fields() []Field {
	return []Field{
		currency("annualRent", "Annual rent", m.AnnualRent),
		percent("stressRate", "Stress rate", m.StressRate),
		percent("threshold", "Required ICR", m.Threshold),
		currency("stressedInterest", "Annual interest at stress rate", m.StressedInterest),
		percent("icr", "Interest cover ratio", m.ICR),
		flag("pass", "Passes stress test", m.Pass),
		currency("maxLoan", "Maximum loan", m.MaxLoan),
		currency("rentRequired", "Monthly rent required", m.RentRequired),
		currency("headroom", "Borrowing headroom", m.Headroom),
		currency("monthlyInterest", "Monthly interest at product rate", m.MonthlyInterest),
	}
}

// ICR is the buy-to-let interest cover calculator.
var ICR Calculator = definition[ICRForm, ICRMetrics]{
	name:        "icr",
	title:       "Buy-to-Let Interest Cover",
	description: "Lender ICR stress test: whether the rent covers stressed interest, the maximum loan and the rent needed to pass.",
	derive:      DeriveICRMetrics,
}
