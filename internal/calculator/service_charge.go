package calculator

import (
	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
)

// Service charge apportionment methods.
const (
	ApportionPercentage = "percentage"
	ApportionFloorArea  = "floor-area"
	ApportionEqual      = "equal"
)

var apportionmentMethods = []string{ApportionPercentage, ApportionFloorArea, ApportionEqual}

// ServiceChargeForm holds the service charge calculator inputs.
type ServiceChargeForm struct {
	BuildingInsurance string `json:"buildingInsurance" label:"Buildings insurance" kind:"currency"`
	Cleaning          string `json:"cleaning" label:"Communal cleaning" kind:"currency"`
	Repairs           string `json:"repairs" label:"Repairs and major works" kind:"currency"`
	Utilities         string `json:"utilities" label:"Communal utilities" kind:"currency"`
	Grounds           string `json:"grounds" label:"Gardening and grounds" kind:"currency"`
	ManagementFee     string `json:"managementFee" label:"Managing agent fee" kind:"currency"`
	OtherCosts        string `json:"otherCosts" label:"Other costs" kind:"currency"`
	ReserveFund       string `json:"reserveFund" label:"Reserve fund contribution" kind:"currency"`
	Method            string `json:"method" label:"Apportionment method" kind:"choice" default:"percentage" options:"percentage|floor-area|equal"`
	UnitShare         string `json:"unitShare" label:"Lease percentage share" kind:"percent"`
	UnitFloorArea     string `json:"unitFloorArea" label:"Unit floor area (sq ft)"`
	TotalFloorArea    string `json:"totalFloorArea" label:"Building floor area (sq ft)"`
	NumberOfUnits     string `json:"numberOfUnits" label:"Number of units"`
	BenchmarkPerSqFt  string `json:"benchmarkPerSqFt" label:"Benchmark cost per sq ft" kind:"currency"`
}

// ServiceChargeMetrics is one unit's share of the building budget.
type ServiceChargeMetrics struct {
	TotalBudget         float64 `json:"totalBudget"`
	SharePercent        float64 `json:"sharePercent"`
	AnnualCharge        float64 `json:"annualCharge"`
	MonthlyCharge       float64 `json:"monthlyCharge"`
	ReserveShare        float64 `json:"reserveShare"`
	RepairsShare        float64 `json:"repairsShare"`
	CostPerSqFt         float64 `json:"costPerSqFt"`
	BenchmarkDifference float64 `json:"benchmarkDifference"`
	ManagementFeeRatio  float64 `json:"managementFeeRatio"`
	Section20Required   bool    `json:"section20Required"`
}

// DeriveServiceChargeMetrics apportions the budget to one unit and compares
// it with a per square foot benchmark.
func DeriveServiceChargeMetrics(form ServiceChargeForm) ServiceChargeMetrics {
	repairs := parse.Amount(form.Repairs)
	management := parse.Amount(form.ManagementFee)
	reserve := parse.Amount(form.ReserveFund)
	unitArea := parse.Amount(form.UnitFloorArea)

	var m ServiceChargeMetrics
	m.TotalBudget = parse.Amount(form.BuildingInsurance) + parse.Amount(form.Cleaning) + repairs +
		parse.Amount(form.Utilities) + parse.Amount(form.Grounds) + management +
		parse.Amount(form.OtherCosts) + reserve

	switch parse.Choice(form.Method, apportionmentMethods, ApportionPercentage) {
	case ApportionFloorArea:
		m.SharePercent = mathutil.CalculatePercentage(unitArea, parse.Amount(form.TotalFloorArea))
	case ApportionEqual:
		m.SharePercent = mathutil.SafeDivide(constants.PercentageMultiplier, float64(parse.Int(form.NumberOfUnits)))
	default:
		m.SharePercent = parse.Percent(form.UnitShare)
	}
	m.SharePercent = mathutil.Clamp(m.SharePercent, 0, constants.PercentageMultiplier)

	m.AnnualCharge = mathutil.ApplyPercentage(m.TotalBudget, m.SharePercent)
	m.MonthlyCharge = m.AnnualCharge / constants.MonthsPerYear
	m.ReserveShare = mathutil.ApplyPercentage(reserve, m.SharePercent)
	m.RepairsShare = mathutil.ApplyPercentage(repairs, m.SharePercent)
	m.CostPerSqFt = mathutil.SafeDivide(m.AnnualCharge, unitArea)
	if benchmark := parse.Amount(form.BenchmarkPerSqFt); benchmark > 0 && unitArea > 0 {
		m.BenchmarkDifference = m.CostPerSqFt - benchmark
	}
	m.ManagementFeeRatio = mathutil.CalculatePercentage(management, m.TotalBudget-management)
	m.Section20Required = m.RepairsShare > constants.Section20Threshold
	return m
}

// Fields implements Result.
func (m ServiceChargeMetrics) Fields() []Field {
	return []Field{
		currency("totalBudget", "Building budget", m.TotalBudget),
		percent("sharePercent", "Unit share", m.SharePercent),
		currency("annualCharge", "Annual service charge", m.AnnualCharge),
		currency("monthlyCharge", "Monthly service charge", m.MonthlyCharge),
		currency("reserveShare", "Reserve fund share", m.ReserveShare),
		currency("repairsShare", "Repairs share", m.RepairsShare),
		currency("costPerSqFt", "Cost per sq ft", m.CostPerSqFt),
		currency("benchmarkDifference", "Difference to benchmark per sq ft", m.BenchmarkDifference),
		percent("managementFeeRatio", "Management fee as share of costs", m.ManagementFeeRatio),
		flag("section20Required", "Section 20 consultation required", m.Section20Required),
	}
}

// ServiceCharge is the leasehold service charge calculator.
var ServiceCharge Calculator = definition[ServiceChargeForm, ServiceChargeMetrics]{
	name:        "service-charge",
	title:       "Service Charge",
	description: "A leaseholder's share of the building budget, reserve fund and major works, with a per square foot benchmark check.",
	derive:      DeriveServiceChargeMetrics,
}
