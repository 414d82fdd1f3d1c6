package calculator

import (
	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
)

// HMOForm holds the house in multiple occupation inputs.
type HMOForm struct {
	Rooms           string `json:"rooms" label:"Lettable rooms"`
	RentPerRoom     string `json:"rentPerRoom" label:"Monthly rent per room" kind:"currency"`
	Occupancy       string `json:"occupancy" label:"Occupancy" kind:"percent" default:"90"`
	MonthlyBills    string `json:"monthlyBills" label:"Monthly bills (utilities, broadband, council tax)" kind:"currency"`
	ManagementFee   string `json:"managementFee" label:"Management fee (of rent collected)" kind:"percent" default:"12"`
	Maintenance     string `json:"maintenance" label:"Annual maintenance" kind:"currency"`
	Insurance       string `json:"insurance" label:"Annual insurance" kind:"currency"`
	LicenceFee      string `json:"licenceFee" label:"HMO licence fee" kind:"currency"`
	MonthlyMortgage string `json:"monthlyMortgage" label:"Monthly mortgage payment" kind:"currency"`
	PurchasePrice   string `json:"purchasePrice" label:"Purchase price" kind:"currency"`
	CashInvested    string `json:"cashInvested" label:"Cash invested" kind:"currency"`
}

// HMOMetrics is the annual performance of an HMO.
type HMOMetrics struct {
	GrossRent          float64 `json:"grossRent"`
	EffectiveRent      float64 `json:"effectiveRent"`
	ManagementCost     float64 `json:"managementCost"`
	OperatingCosts     float64 `json:"operatingCosts"`
	NOI                float64 `json:"noi"`
	DebtService        float64 `json:"debtService"`
	AnnualCashflow     float64 `json:"annualCashflow"`
	MonthlyCashflow    float64 `json:"monthlyCashflow"`
	GrossYield         float64 `json:"grossYield"`
	NetYield           float64 `json:"netYield"`
	CashOnCash         float64 `json:"cashOnCash"`
	ProfitPerRoom      float64 `json:"profitPerRoom"`
	BreakEvenOccupancy float64 `json:"breakEvenOccupancy"`
}

// DeriveHMOMetrics works out HMO cashflow. The licence fee is spread over the
// usual licence term. Break-even occupancy is the occupancy at which rent net
// of management covers every fixed cost and the mortgage; above 100% the
// house cannot break even.
func DeriveHMOMetrics(form HMOForm) HMOMetrics {
	rooms := float64(max(0, parse.Int(form.Rooms)))
	occupancy := mathutil.Clamp(parse.PercentOr(form.Occupancy, 90), 0, constants.PercentageMultiplier)
	mgmt := parse.PercentOr(form.ManagementFee, 12)

	var m HMOMetrics
	m.GrossRent = rooms * parse.Amount(form.RentPerRoom) * constants.MonthsPerYear
	m.EffectiveRent = mathutil.ApplyPercentage(m.GrossRent, occupancy)
	m.ManagementCost = mathutil.ApplyPercentage(m.EffectiveRent, mgmt)

	fixed := parse.Amount(form.MonthlyBills)*constants.MonthsPerYear +
		parse.Amount(form.Maintenance) +
		parse.Amount(form.Insurance) +
		parse.Amount(form.LicenceFee)/constants.HMOLicenceYears
	m.OperatingCosts = fixed + m.ManagementCost
	m.NOI = m.EffectiveRent - m.OperatingCosts
	m.DebtService = parse.Amount(form.MonthlyMortgage) * constants.MonthsPerYear
	m.AnnualCashflow = m.NOI - m.DebtService
	m.MonthlyCashflow = m.AnnualCashflow / constants.MonthsPerYear

	price := parse.Amount(form.PurchasePrice)
	m.GrossYield = mathutil.CalculatePercentage(m.GrossRent, price)
	m.NetYield = mathutil.CalculatePercentage(m.NOI, price)
	m.CashOnCash = mathutil.CalculatePercentage(m.AnnualCashflow, parse.Amount(form.CashInvested))
	m.ProfitPerRoom = mathutil.SafeDivide(m.MonthlyCashflow, rooms)

	netFactor := 1 - mgmt/constants.PercentageMultiplier
	m.BreakEvenOccupancy = mathutil.CalculatePercentage(fixed+m.DebtService, m.GrossRent*netFactor)
	return m
}

// Fields implements Result.
func (m HMOMetrics) Fields() []Field {
	return []Field{
		currency("grossRent", "Gross rent at full occupancy", m.GrossRent),
		currency("effectiveRent", "Rent after voids", m.EffectiveRent),
		currency("managementCost", "Management", m.ManagementCost),
		currency("operatingCosts", "Operating costs", m.OperatingCosts),
		currency("noi", "Net operating income", m.NOI),
		currency("debtService", "Mortgage payments", m.DebtService),
		currency("annualCashflow", "Annual cashflow", m.AnnualCashflow),
		currency("monthlyCashflow", "Monthly cashflow", m.MonthlyCashflow),
		percent("grossYield", "Gross yield", m.GrossYield),
		percent("netYield", "Net yield", m.NetYield),
		percent("cashOnCash", "Cash on cash return", m.CashOnCash),
		currency("profitPerRoom", "Monthly profit per room", m.ProfitPerRoom),
		percent("breakEvenOccupancy", "Break-even occupancy", m.BreakEvenOccupancy),
	}
}

// HMO is the house in multiple occupation calculator.
var HMO Calculator = definition[HMOForm, HMOMetrics]{
	name:        "hmo",
	title:       "HMO Cashflow",
	description: "Room-by-room rent, operating costs, cashflow, yields and break-even occupancy for an HMO.",
	derive:      DeriveHMOMetrics,
}
