package calculator

import (
	"math"

	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/loans"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
)

// MortgageForm holds the mortgage payment inputs.
type MortgageForm struct {
	PropertyValue      string `json:"propertyValue" label:"Property value" kind:"currency"`
	Deposit            string `json:"deposit" label:"Deposit" kind:"currency"`
	InterestRate       string `json:"interestRate" label:"Interest rate" kind:"percent"`
	TermYears          string `json:"termYears" label:"Term (years)" default:"25"`
	MortgageType       string `json:"mortgageType" label:"Mortgage type" kind:"choice" default:"repayment" options:"repayment|interest-only"`
	MonthlyOverpayment string `json:"monthlyOverpayment" label:"Monthly overpayment" kind:"currency"`
}

// MortgageMetrics is the cost of a mortgage over its term.
type MortgageMetrics struct {
	Loan                float64 `json:"loan"`
	LTV                 float64 `json:"ltv"`
	TermMonths          int     `json:"termMonths"`
	MonthlyPayment      float64 `json:"monthlyPayment"`
	TotalInterest       float64 `json:"totalInterest"`
	TotalPaid           float64 `json:"totalPaid"`
	OverpaymentMonths   int     `json:"overpaymentMonths"`
	OverpaymentInterest float64 `json:"overpaymentInterest"`
	InterestSaved       float64 `json:"interestSaved"`
	MonthsSaved         int     `json:"monthsSaved"`
}

// DeriveMortgageMetrics costs a repayment or interest-only mortgage. An
// interest-only loan repays the capital at the end of the term; overpayments
// are modelled on repayment loans only.
func DeriveMortgageMetrics(form MortgageForm) MortgageMetrics {
	value := parse.Amount(form.PropertyValue)
	deposit := parse.Amount(form.Deposit)
	rate := parse.Percent(form.InterestRate)
	kind := parse.Choice(form.MortgageType, mortgageTypes, RepaymentMortgage)

	var m MortgageMetrics
	m.Loan = math.Max(0, value-deposit)
	m.LTV = mathutil.CalculatePercentage(m.Loan, value)
	m.TermMonths = mathutil.ClampInt(parse.AmountOr(form.TermYears, 25)*constants.MonthsPerYear, 0, constants.MaxLoanTermMonths)
	if m.Loan == 0 || m.TermMonths == 0 {
		return m
	}

	if kind == InterestOnlyMortgage {
		m.MonthlyPayment = loans.InterestOnlyPayment(m.Loan, rate)
		m.TotalInterest = m.MonthlyPayment * float64(m.TermMonths)
		m.TotalPaid = m.TotalInterest + m.Loan
		return m
	}

	generator := loans.NewAmortizationScheduleGenerator(nil)
	loan := loans.LoanConfig{
		Name:         "mortgage",
		Principal:    value,
		Deposit:      deposit,
		InterestRate: rate,
		Term:         m.TermMonths,
	}
	m.MonthlyPayment = loans.CalculateMonthlyPayment(value, deposit, rate, m.TermMonths)
	base := loans.Summarize(generator.GenerateSchedule(loan))
	m.TotalInterest = base.TotalInterest
	m.TotalPaid = base.TotalPaid

	if overpayment := parse.Amount(form.MonthlyOverpayment); overpayment > 0 {
		loan.MonthlyOverpayment = overpayment
		with := loans.Summarize(generator.GenerateSchedule(loan))
		m.OverpaymentMonths = with.Months
		m.OverpaymentInterest = with.TotalInterest
		m.InterestSaved = base.TotalInterest - with.TotalInterest
		m.MonthsSaved = base.Months - with.Months
	}
	return m
}

// Fields implements Result.
func (m MortgageMetrics) Fields() []Field {
	return []Field{
		currency("loan", "Loan", m.Loan),
		percent("ltv", "Loan to value", m.LTV),
		quantity("termMonths", "Term", float64(m.TermMonths), UnitMonths),
		currency("monthlyPayment", "Monthly payment", m.MonthlyPayment),
		currency("totalInterest", "Total interest", m.TotalInterest),
		currency("totalPaid", "Total repaid", m.TotalPaid),
		quantity("overpaymentMonths", "Term with overpayments", float64(m.OverpaymentMonths), UnitMonths),
		currency("overpaymentInterest", "Interest with overpayments", m.OverpaymentInterest),
		currency("interestSaved", "Interest saved", m.InterestSaved),
		quantity("monthsSaved", "Months saved", float64(m.MonthsSaved), UnitMonths),
	}
}

// Mortgage is the mortgage payment calculator.
var Mortgage Calculator = definition[MortgageForm, MortgageMetrics]{
	name:        "mortgage",
	title:       "Mortgage Payments",
	description: "Monthly payment, total interest and the effect of regular overpayments on a repayment or interest-only mortgage.",
	derive:      DeriveMortgageMetrics,
}
