package calculator

import (
	"math"

	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
	"github.com/iwvelando/property-finance/pkg/tax"
)

// residualIterations bounds the land value search. Sixty halvings of any
// realistic GDV resolve well below a penny.
const residualIterations = 60

var developmentBuyers = []string{string(tax.BuyerStandard), string(tax.BuyerAdditional), string(tax.BuyerCompany)}

// DevelopmentForm holds the development appraisal inputs.
type DevelopmentForm struct {
	GDV               string `json:"gdv" label:"Gross development value" kind:"currency"`
	LandPrice         string `json:"landPrice" label:"Land price" kind:"currency"`
	BuyerType         string `json:"buyerType" label:"Land buyer" kind:"choice" default:"company" options:"standard|additional|company"`
	BuildArea         string `json:"buildArea" label:"Build area (sq ft)"`
	BuildCostPerSqFt  string `json:"buildCostPerSqFt" label:"Build cost per sq ft" kind:"currency"`
	Contingency       string `json:"contingency" label:"Contingency" kind:"percent" default:"5"`
	ProfessionalFees  string `json:"professionalFees" label:"Professional fees (of build)" kind:"percent" default:"10"`
	SalesFees         string `json:"salesFees" label:"Sales and marketing (of GDV)" kind:"percent" default:"2"`
	LoanToCost        string `json:"loanToCost" label:"Loan to cost" kind:"percent" default:"65"`
	InterestRate      string `json:"interestRate" label:"Finance rate (annual)" kind:"percent" default:"9"`
	ArrangementFee    string `json:"arrangementFee" label:"Arrangement fee" kind:"percent" default:"2"`
	BuildMonths       string `json:"buildMonths" label:"Build period (months)" default:"12"`
	SaleMonths        string `json:"saleMonths" label:"Sales period (months)" default:"6"`
	TargetProfitOnGDV string `json:"targetProfitOnGDV" label:"Target profit on GDV" kind:"percent" default:"20"`
}

// DevelopmentMetrics is a development appraisal.
type DevelopmentMetrics struct {
	GDV               float64 `json:"gdv"`
	LandPrice         float64 `json:"landPrice"`
	StampDuty         float64 `json:"stampDuty"`
	BuildCost         float64 `json:"buildCost"`
	Contingency       float64 `json:"contingency"`
	ProfessionalFees  float64 `json:"professionalFees"`
	SalesFees         float64 `json:"salesFees"`
	Loan              float64 `json:"loan"`
	FinanceCost       float64 `json:"financeCost"`
	TotalCost         float64 `json:"totalCost"`
	Profit            float64 `json:"profit"`
	ProfitOnGDV       float64 `json:"profitOnGDV"`
	ProfitOnCost      float64 `json:"profitOnCost"`
	Equity            float64 `json:"equity"`
	ReturnOnEquity    float64 `json:"returnOnEquity"`
	TargetProfitOnGDV float64 `json:"targetProfitOnGDV"`
	ResidualLandValue float64 `json:"residualLandValue"`
	MeetsTarget       bool    `json:"meetsTarget"`
}

type developmentInputs struct {
	gdv, area, costPerSqFt       float64
	contingency, fees, salesFees float64
	ltc, rate, arrangement       float64
	buildMonths, saleMonths      float64
	buyer                        tax.BuyerType
}

// appraise costs the scheme for a given land price. The loan is drawn on land
// from day one; build spend is on average half drawn during the build and
// fully drawn while the units sell.
func (in developmentInputs) appraise(land float64) DevelopmentMetrics {
	var m DevelopmentMetrics
	m.GDV = in.gdv
	m.LandPrice = land
	m.StampDuty = tax.StampDuty(land, in.buyer, false, true).Total
	m.BuildCost = in.area * in.costPerSqFt
	m.Contingency = mathutil.ApplyPercentage(m.BuildCost, in.contingency)
	m.ProfessionalFees = mathutil.ApplyPercentage(m.BuildCost+m.Contingency, in.fees)
	m.SalesFees = mathutil.ApplyPercentage(in.gdv, in.salesFees)

	build := m.BuildCost + m.Contingency + m.ProfessionalFees
	landLoan := mathutil.ApplyPercentage(land+m.StampDuty, in.ltc)
	buildLoan := mathutil.ApplyPercentage(build, in.ltc)
	m.Loan = landLoan + buildLoan

	monthly := in.rate / constants.PercentageMultiplier / constants.MonthsPerYear
	landInterest := landLoan * monthly * (in.buildMonths + in.saleMonths)
	buildInterest := buildLoan * monthly * (in.buildMonths/2 + in.saleMonths)
	m.FinanceCost = landInterest + buildInterest + mathutil.ApplyPercentage(m.Loan, in.arrangement)

	m.TotalCost = land + m.StampDuty + build + m.SalesFees + m.FinanceCost
	m.Profit = in.gdv - m.TotalCost
	m.ProfitOnGDV = mathutil.CalculatePercentage(m.Profit, in.gdv)
	m.ProfitOnCost = mathutil.CalculatePercentage(m.Profit, m.TotalCost)
	m.Equity = m.TotalCost - m.Loan - m.SalesFees
	m.ReturnOnEquity = mathutil.CalculatePercentage(m.Profit, m.Equity)
	return m
}

// residualLandValue finds the land price at which profit on GDV equals the
// target. Profit falls as the land price rises, so bisection over [0, GDV]
// converges; a scheme that misses the target on free land has no residual.
func (in developmentInputs) residualLandValue(target float64) float64 {
	if in.gdv <= 0 || in.appraise(0).ProfitOnGDV < target {
		return 0
	}
	lo, hi := 0.0, in.gdv
	for i := 0; i < residualIterations; i++ {
		mid := (lo + hi) / 2
		if in.appraise(mid).ProfitOnGDV >= target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return mathutil.Round(lo)
}

// DeriveDevelopmentMetrics appraises a development scheme at the entered land
// price and solves for the residual land value at the target margin.
func DeriveDevelopmentMetrics(form DevelopmentForm) DevelopmentMetrics {
	in := developmentInputs{
		gdv:         parse.Amount(form.GDV),
		area:        parse.Amount(form.BuildArea),
		costPerSqFt: parse.Amount(form.BuildCostPerSqFt),
		contingency: parse.PercentOr(form.Contingency, 5),
		fees:        parse.PercentOr(form.ProfessionalFees, 10),
		salesFees:   parse.PercentOr(form.SalesFees, 2),
		ltc:         parse.PercentOr(form.LoanToCost, 65),
		rate:        parse.PercentOr(form.InterestRate, 9),
		arrangement: parse.PercentOr(form.ArrangementFee, 2),
		buildMonths: math.Max(0, parse.AmountOr(form.BuildMonths, 12)),
		saleMonths:  math.Max(0, parse.AmountOr(form.SaleMonths, 6)),
		buyer:       tax.BuyerType(parse.Choice(form.BuyerType, developmentBuyers, string(tax.BuyerCompany))),
	}

	m := in.appraise(parse.Amount(form.LandPrice))
	m.TargetProfitOnGDV = parse.PercentOr(form.TargetProfitOnGDV, constants.DefaultTargetProfitOnGDV)
	m.ResidualLandValue = in.residualLandValue(m.TargetProfitOnGDV)
	m.MeetsTarget = m.GDV > 0 && m.ProfitOnGDV >= m.TargetProfitOnGDV
	return m
}

// Fields implements Result.
func (m DevelopmentMetrics) Fields() []Field {
	return []Field{
		currency("gdv", "Gross development value", m.GDV),
		currency("landPrice", "Land price", m.LandPrice),
		currency("stampDuty", "Stamp duty on land", m.StampDuty),
		currency("buildCost", "Build cost", m.BuildCost),
		currency("contingency", "Contingency", m.Contingency),
		currency("professionalFees", "Professional fees", m.ProfessionalFees),
		currency("salesFees", "Sales and marketing", m.SalesFees),
		currency("loan", "Development loan", m.Loan),
		currency("financeCost", "Finance cost", m.FinanceCost),
		currency("totalCost", "Total cost", m.TotalCost),
		currency("profit", "Profit", m.Profit),
		percent("profitOnGDV", "Profit on GDV", m.ProfitOnGDV),
		percent("profitOnCost", "Profit on cost", m.ProfitOnCost),
		currency("equity", "Equity required", m.Equity),
		percent("returnOnEquity", "Return on equity", m.ReturnOnEquity),
		currency("residualLandValue", "Residual land value at target margin", m.ResidualLandValue),
		flag("meetsTarget", "Meets target margin", m.MeetsTarget),
	}
}

// Development is the residual development appraisal calculator.
var Development Calculator = definition[DevelopmentForm, DevelopmentMetrics]{
	name:        "development",
	title:       "Development Appraisal",
	description: "Costs, finance, profit on GDV and cost, equity return and the residual land value at a target margin.",
	derive:      DeriveDevelopmentMetrics,
}
