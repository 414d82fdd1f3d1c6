package calculator

import (
	"math"

	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
	"github.com/iwvelando/property-finance/pkg/tax"
)

// Section24Form holds the finance cost restriction inputs. All amounts are annual.
type Section24Form struct {
	RentalIncome     string `json:"rentalIncome" label:"Annual rental income" kind:"currency"`
	Expenses         string `json:"expenses" label:"Allowable expenses excluding finance" kind:"currency"`
	MortgageInterest string `json:"mortgageInterest" label:"Annual mortgage interest" kind:"currency"`
	OtherIncome      string `json:"otherIncome" label:"Other taxable income" kind:"currency"`
}

// Section24Metrics compares tax on a rental business under the finance cost
// restriction with full interest relief and with a limited company.
type Section24Metrics struct {
	PropertyProfit    float64 `json:"propertyProfit"`
	TaxBeforeCredit   float64 `json:"taxBeforeCredit"`
	FinanceCredit     float64 `json:"financeCredit"`
	TaxDue            float64 `json:"taxDue"`
	Pre2017Tax        float64 `json:"pre2017Tax"`
	ExtraTax          float64 `json:"extraTax"`
	MarginalRate      float64 `json:"marginalRate"`
	CashflowBeforeTax float64 `json:"cashflowBeforeTax"`
	CashflowAfterTax  float64 `json:"cashflowAfterTax"`
	EffectiveTaxRate  float64 `json:"effectiveTaxRate"`
	CompanyProfit     float64 `json:"companyProfit"`
	CorporationTax    float64 `json:"corporationTax"`
	CompanyCashflow   float64 `json:"companyCashflow"`
	CompanySaving     float64 `json:"companySaving"`
}

// DeriveSection24Metrics taxes rental profit without deducting mortgage
// interest and then allows a basic-rate credit on the lowest of the interest,
// the property profit and total income above the personal allowance. The pre-2017 figure deducts the interest in full.
func DeriveSection24Metrics(form Section24Form) Section24Metrics {
	rent := parse.Amount(form.RentalIncome)
	expenses := parse.Amount(form.Expenses)
	interest := parse.Amount(form.MortgageInterest)
	other := parse.Amount(form.OtherIncome)

	var m Section24Metrics
	m.PropertyProfit = math.Max(0, rent-expenses)
	m.TaxBeforeCredit = tax.IncomeTax(other+m.PropertyProfit) - tax.IncomeTax(other)
	total := other + m.PropertyProfit
	adjustedIncome := math.Max(0, total-tax.Allowance(total))
	relievable := math.Min(interest, math.Min(m.PropertyProfit, adjustedIncome))
	m.FinanceCredit = mathutil.ApplyPercentage(relievable, tax.FinanceCostCreditRate)
	m.TaxDue = math.Max(0, m.TaxBeforeCredit-m.FinanceCredit)

	relieved := math.Max(0, m.PropertyProfit-interest)
	m.Pre2017Tax = tax.IncomeTax(other+relieved) - tax.IncomeTax(other)
	m.ExtraTax = m.TaxDue - m.Pre2017Tax
	m.MarginalRate = tax.MarginalRate(other + m.PropertyProfit)

	m.CashflowBeforeTax = rent - expenses - interest
	m.CashflowAfterTax = m.CashflowBeforeTax - m.TaxDue
	m.EffectiveTaxRate = mathutil.CalculatePercentage(m.TaxDue, m.CashflowBeforeTax)
	if m.CashflowBeforeTax <= 0 {
		m.EffectiveTaxRate = 0
	}

	m.CompanyProfit = rent - expenses - interest
	m.CorporationTax = tax.CorporationTax(m.CompanyProfit)
	m.CompanyCashflow = m.CompanyProfit - m.CorporationTax
	m.CompanySaving = m.TaxDue - m.CorporationTax
	return m
}

// Fields implements Result.
func (m Section24Metrics) Fields() []Field {
	return []Field{
		currency("propertyProfit", "Taxable property profit", m.PropertyProfit),
		currency("taxBeforeCredit", "Tax before finance credit", m.TaxBeforeCredit),
		currency("financeCredit", "Finance cost credit", m.FinanceCredit),
		currency("taxDue", "Tax due", m.TaxDue),
		currency("pre2017Tax", "Tax with full interest relief", m.Pre2017Tax),
		currency("extraTax", "Extra tax from the restriction", m.ExtraTax),
		percent("marginalRate", "Marginal income tax rate", m.MarginalRate),
		currency("cashflowBeforeTax", "Cashflow before tax", m.CashflowBeforeTax),
		currency("cashflowAfterTax", "Cashflow after tax", m.CashflowAfterTax),
		percent("effectiveTaxRate", "Tax as share of cashflow", m.EffectiveTaxRate),
		currency("companyProfit", "Company profit", m.CompanyProfit),
		currency("corporationTax", "Corporation tax", m.CorporationTax),
		currency("companyCashflow", "Company cashflow after tax", m.CompanyCashflow),
		currency("companySaving", "Saving in a company", m.CompanySaving),
	}
}

// Section24 is the mortgage interest restriction calculator.
var Section24 Calculator = definition[Section24Form, Section24Metrics]{
	name:        "section-24",
	title:       "Section 24 Tax Impact",
	description: "Income tax on rental profit under the finance cost restriction, compared with full relief and with a limited company.",
	derive:      DeriveSection24Metrics,
}
