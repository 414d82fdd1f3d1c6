package calculator

import (
	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/loans"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
)

// Interest treatments offered on bridging loans.
const (
	InterestServiced = "serviced"
	InterestRetained = "retained"
	InterestRolled   = "rolled"
)

var interestTreatments = []string{InterestServiced, InterestRetained, InterestRolled}

// BridgingForm holds the bridging loan calculator inputs.
type BridgingForm struct {
	PropertyValue  string `json:"propertyValue" label:"Property value" kind:"currency"`
	LoanAmount     string `json:"loanAmount" label:"Gross loan" kind:"currency"`
	MonthlyRate    string `json:"monthlyRate" label:"Monthly interest rate" kind:"percent"`
	TermMonths     string `json:"termMonths" label:"Term (months)"`
	InterestType   string `json:"interestType" label:"Interest treatment" kind:"choice" default:"rolled" options:"serviced|retained|rolled"`
	ArrangementFee string `json:"arrangementFee" label:"Arrangement fee" kind:"percent" default:"2"`
	ExitFee        string `json:"exitFee" label:"Exit fee" kind:"percent"`
	BrokerFee      string `json:"brokerFee" label:"Broker fee" kind:"percent"`
	ValuationFee   string `json:"valuationFee" label:"Valuation fee" kind:"currency"`
	LegalFees      string `json:"legalFees" label:"Legal fees" kind:"currency"`
}

// BridgingMetrics is the cost of a bridging loan.
type BridgingMetrics struct {
	LoanAmount       float64 `json:"loanAmount"`
	InterestType     string  `json:"interestType"`
	LTV              float64 `json:"ltv"`
	MonthlyInterest  float64 `json:"monthlyInterest"`
	MonthlyPayment   float64 `json:"monthlyPayment"`
	TotalInterest    float64 `json:"totalInterest"`
	ArrangementFee   float64 `json:"arrangementFee"`
	ExitFee          float64 `json:"exitFee"`
	BrokerFee        float64 `json:"brokerFee"`
	OtherFees        float64 `json:"otherFees"`
	NetAdvance       float64 `json:"netAdvance"`
	RedemptionAmount float64 `json:"redemptionAmount"`
	TotalCost        float64 `json:"totalCost"`
	AnnualisedCost   float64 `json:"annualisedCost"`
	EndLTV           float64 `json:"endLtv"`
}

// DeriveBridgingMetrics prices a bridging loan. Serviced and retained interest
// is simple; rolled interest compounds monthly into the redemption balance.
func DeriveBridgingMetrics(form BridgingForm) BridgingMetrics {
	value := parse.Amount(form.PropertyValue)
	loan := parse.Amount(form.LoanAmount)
	rate := parse.Percent(form.MonthlyRate)
	term := parse.Int(form.TermMonths)
	if term < 0 {
		term = 0
	}
	treatment := parse.Choice(form.InterestType, interestTreatments, InterestRolled)

	m := BridgingMetrics{
		LoanAmount:      loan,
		InterestType:    treatment,
		LTV:             mathutil.CalculatePercentage(loan, value),
		MonthlyInterest: loans.SimpleInterest(loan, rate, 1),
		ArrangementFee:  mathutil.ApplyPercentage(loan, parse.PercentOr(form.ArrangementFee, 2)),
		ExitFee:         mathutil.ApplyPercentage(loan, parse.Percent(form.ExitFee)),
		BrokerFee:       mathutil.ApplyPercentage(loan, parse.Percent(form.BrokerFee)),
		OtherFees:       parse.Amount(form.ValuationFee) + parse.Amount(form.LegalFees),
	}

	switch treatment {
	case InterestRolled:
		balance := loans.RolledInterestBalance(loan, rate, term)
		m.TotalInterest = balance - loan
		m.NetAdvance = loan - m.ArrangementFee
		m.RedemptionAmount = balance + m.ExitFee
	case InterestRetained:
		m.TotalInterest = loans.SimpleInterest(loan, rate, term)
		m.NetAdvance = loan - m.ArrangementFee - m.TotalInterest
		m.RedemptionAmount = loan + m.ExitFee
	default:
		m.TotalInterest = loans.SimpleInterest(loan, rate, term)
		m.MonthlyPayment = m.MonthlyInterest
		m.NetAdvance = loan - m.ArrangementFee
		m.RedemptionAmount = loan + m.ExitFee
	}

	m.TotalCost = m.TotalInterest + m.ArrangementFee + m.ExitFee + m.BrokerFee + m.OtherFees
	if term > 0 {
		years := float64(term) / constants.MonthsPerYear
		m.AnnualisedCost = mathutil.CalculatePercentage(m.TotalCost, loan) / years
	}
	m.EndLTV = mathutil.CalculatePercentage(m.RedemptionAmount, value)
	return m
}

// Fields implements Result.
func (m BridgingMetrics) Fields() []Field {
	return []Field{
		currency("loanAmount", "Gross loan", m.LoanAmount),
		percent("ltv", "Day-one LTV", m.LTV),
		currency("monthlyInterest", "Monthly interest", m.MonthlyInterest),
		currency("monthlyPayment", "Monthly payment", m.MonthlyPayment),
		currency("totalInterest", "Total interest", m.TotalInterest),
		currency("arrangementFee", "Arrangement fee", m.ArrangementFee),
		currency("exitFee", "Exit fee", m.ExitFee),
		currency("brokerFee", "Broker fee", m.BrokerFee),
		currency("otherFees", "Valuation and legal fees", m.OtherFees),
		currency("netAdvance", "Net advance", m.NetAdvance),
		currency("redemptionAmount", "Redemption amount", m.RedemptionAmount),
		currency("totalCost", "Total cost of finance", m.TotalCost),
		percent("annualisedCost", "Annualised cost", m.AnnualisedCost),
		percent("endLtv", "LTV at redemption", m.EndLTV),
	}
}

// Bridging is the bridging loan calculator.
var Bridging Calculator = definition[BridgingForm, BridgingMetrics]{
	name:        "bridging-loan",
	title:       "Bridging Loan",
	description: "Interest, fees, net advance and redemption figure for a short-term bridging loan with serviced, retained or rolled-up interest.",
	derive:      DeriveBridgingMetrics,
}
