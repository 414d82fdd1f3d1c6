package calculator

import (
	"math"

	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
)

// RentToRentForm holds the rent-to-rent inputs. Monthly figures unless stated.
type RentToRentForm struct {
	IncomeReceived string `json:"incomeReceived" label:"Monthly income from occupiers" kind:"currency"`
	Occupancy      string `json:"occupancy" label:"Occupancy" kind:"percent" default:"100"`
	RentToLandlord string `json:"rentToLandlord" label:"Monthly rent to landlord" kind:"currency"`
	MonthlyBills   string `json:"monthlyBills" label:"Monthly bills" kind:"currency"`
	MonthlyCosts   string `json:"monthlyCosts" label:"Other monthly costs" kind:"currency"`
	SetupCosts     string `json:"setupCosts" label:"Setup costs (furnishing, deposit, fees)" kind:"currency"`
	ContractYears  string `json:"contractYears" label:"Contract length (years)" default:"3"`
	IncomeGrowth   string `json:"incomeGrowth" label:"Annual income growth" kind:"percent"`
	DiscountRate   string `json:"discountRate" label:"Discount rate" kind:"percent" default:"8"`
}

// RentToRentMetrics is the value of a rent-to-rent agreement.
type RentToRentMetrics struct {
	MonthlyIncome  float64 `json:"monthlyIncome"`
	MonthlyCosts   float64 `json:"monthlyCosts"`
	MonthlyProfit  float64 `json:"monthlyProfit"`
	AnnualProfit   float64 `json:"annualProfit"`
	Margin         float64 `json:"margin"`
	ContractYears  int     `json:"contractYears"`
	ContractProfit float64 `json:"contractProfit"`
	NPV            float64 `json:"npv"`
	PaybackMonths  float64 `json:"paybackMonths"`
	ROI            float64 `json:"roi"`
}

// DeriveRentToRentMetrics values the agreement over its contract. Income
// grows each year while the landlord's rent and running costs stay fixed, and
// each year's profit is discounted at the discount rate. With no growth and
// no discounting the NPV is the contract profit.
func DeriveRentToRentMetrics(form RentToRentForm) RentToRentMetrics {
	occupancy := mathutil.Clamp(parse.PercentOr(form.Occupancy, 100), 0, constants.PercentageMultiplier)
	setup := parse.Amount(form.SetupCosts)
	growth := parse.Percent(form.IncomeGrowth)

	var m RentToRentMetrics
	m.MonthlyIncome = mathutil.ApplyPercentage(parse.Amount(form.IncomeReceived), occupancy)
	m.MonthlyCosts = parse.Amount(form.RentToLandlord) + parse.Amount(form.MonthlyBills) + parse.Amount(form.MonthlyCosts)
	m.MonthlyProfit = m.MonthlyIncome - m.MonthlyCosts
	m.AnnualProfit = m.MonthlyProfit * constants.MonthsPerYear
	m.Margin = mathutil.CalculatePercentage(m.MonthlyProfit, m.MonthlyIncome)
	m.ContractYears = mathutil.ClampInt(parse.AmountOr(form.ContractYears, 3), 0, constants.MaxContractYears)

	flows := make([]float64, m.ContractYears)
	for year := range flows {
		income := m.MonthlyIncome * math.Pow(1+growth/constants.PercentageMultiplier, float64(year))
		flows[year] = (income - m.MonthlyCosts) * constants.MonthsPerYear
		m.ContractProfit += flows[year]
	}
	m.ContractProfit -= setup
	m.NPV = mathutil.NPV(parse.PercentOr(form.DiscountRate, constants.DefaultDiscountRate), -setup, flows)

	if m.MonthlyProfit > 0 {
		m.PaybackMonths = setup / m.MonthlyProfit
	}
	m.ROI = mathutil.CalculatePercentage(m.AnnualProfit, setup)
	return m
}

// Fields implements Result.
func (m RentToRentMetrics) Fields() []Field {
	return []Field{
		currency("monthlyIncome", "Monthly income", m.MonthlyIncome),
		currency("monthlyCosts", "Monthly costs", m.MonthlyCosts),
		currency("monthlyProfit", "Monthly profit", m.MonthlyProfit),
		currency("annualProfit", "Annual profit", m.AnnualProfit),
		percent("margin", "Margin", m.Margin),
		quantity("contractYears", "Contract", float64(m.ContractYears), UnitYears),
		currency("contractProfit", "Profit over contract", m.ContractProfit),
		currency("npv", "Net present value", m.NPV),
		quantity("paybackMonths", "Payback of setup costs", m.PaybackMonths, UnitMonths),
		percent("roi", "Annual return on setup costs", m.ROI),
	}
}

// RentToRent is the rent-to-rent calculator.
var RentToRent Calculator = definition[RentToRentForm, RentToRentMetrics]{
	name:        "rent-to-rent",
	title:       "Rent-to-Rent",
	description: "Monthly profit, payback and the discounted value of a rent-to-rent agreement over its contract.",
	derive:      DeriveRentToRentMetrics,
}
