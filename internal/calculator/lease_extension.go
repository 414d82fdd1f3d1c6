package calculator

import (
	"math"
	"strings"

	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/datetime"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
)

// Marriage value treatments.
const (
	MarriageValueStandard  = "standard"
	MarriageValueAbolished = "abolished"
)

var marriageValueRules = []string{MarriageValueStandard, MarriageValueAbolished}

// relativityPoint is one point of the indicative relativity graph: the value
// of a lease with Years unexpired as a percentage of the long-lease value.
type relativityPoint struct {
	Years float64
	Pct   float64
}

var relativityGraph = []relativityPoint{
	{0, 0},
	{5, 23.6},
	{10, 40.9},
	{15, 50.6},
	{20, 56.6},
	{25, 61.1},
	{30, 64.8},
	{35, 68.2},
	{40, 71.3},
	{45, 74.3},
	{50, 77.1},
	{55, 79.9},
	{60, 82.5},
	{65, 85.0},
	{70, 87.4},
	{75, 89.6},
	{80, 91.6},
	{85, 93.4},
	{90, 95.0},
	{95, 96.3},
	{100, 97.4},
}

// Relativity interpolates the indicative relativity for an unexpired term.
func Relativity(years float64) float64 {
	if years <= 0 {
		return 0
	}
	last := relativityGraph[len(relativityGraph)-1]
	if years >= last.Years {
		return last.Pct
	}
	for i := 1; i < len(relativityGraph); i++ {
		hi := relativityGraph[i]
		if years <= hi.Years {
			lo := relativityGraph[i-1]
			return lo.Pct + (hi.Pct-lo.Pct)*(years-lo.Years)/(hi.Years-lo.Years)
		}
	}
	return last.Pct
}

// LeaseExtensionForm holds the statutory lease extension calculator inputs.
type LeaseExtensionForm struct {
	ExtendedValue      string `json:"extendedValue" label:"Value with extended lease" kind:"currency"`
	FreeholdValue      string `json:"freeholdValue" label:"Freehold vacant possession value (blank for +1%)" kind:"currency"`
	ShortLeaseValue    string `json:"shortLeaseValue" label:"Current lease value (blank to use relativity)" kind:"currency"`
	UnexpiredYears     string `json:"unexpiredYears" label:"Unexpired term (years)"`
	LeaseEndDate       string `json:"leaseEndDate" label:"Lease end (YYYY-MM)" kind:"month" after:"valuationDate"`
	ValuationDate      string `json:"valuationDate" label:"Valuation date (YYYY-MM)" kind:"month"`
	GroundRent         string `json:"groundRent" label:"Annual ground rent" kind:"currency"`
	CapitalisationRate string `json:"capitalisationRate" label:"Capitalisation rate" kind:"percent" default:"7"`
	DefermentRate      string `json:"defermentRate" label:"Deferment rate" kind:"percent" default:"5"`
	Relativity         string `json:"relativity" label:"Relativity (blank for graph)" kind:"percent"`
	MarriageValueShare string `json:"marriageValueShare" label:"Freeholder share of marriage value" kind:"percent" default:"50"`
	MarriageValueRule  string `json:"marriageValueRule" label:"Marriage value" kind:"choice" default:"standard" options:"standard|abolished"`
	ProfessionalFees   string `json:"professionalFees" label:"Legal and valuation fees" kind:"currency"`
}

// LeaseExtensionMetrics is the premium payable for a 90-year statutory extension.
type LeaseExtensionMetrics struct {
	UnexpiredYears        float64 `json:"unexpiredYears"`
	ExtendedYears         float64 `json:"extendedYears"`
	CapitalisedGroundRent float64 `json:"capitalisedGroundRent"`
	ReversionBefore       float64 `json:"reversionBefore"`
	ReversionAfter        float64 `json:"reversionAfter"`
	Diminution            float64 `json:"diminution"`
	Relativity            float64 `json:"relativity"`
	ShortLeaseValue       float64 `json:"shortLeaseValue"`
	MarriageValue         float64 `json:"marriageValue"`
	MarriageValuePayable  bool    `json:"marriageValuePayable"`
	FreeholderShare       float64 `json:"freeholderShare"`
	Premium               float64 `json:"premium"`
	TotalCost             float64 `json:"totalCost"`
	PremiumPercentOfValue float64 `json:"premiumPercentOfValue"`
}

// unexpiredTerm prefers an explicit term and otherwise derives it from the
// lease end and valuation dates.
func unexpiredTerm(form LeaseExtensionForm) float64 {
	if strings.TrimSpace(form.UnexpiredYears) != "" {
		return math.Max(0, parse.Amount(form.UnexpiredYears))
	}
	if form.LeaseEndDate == "" || form.ValuationDate == "" {
		return 0
	}
	years, err := datetime.YearsBetween(strings.TrimSpace(form.ValuationDate), strings.TrimSpace(form.LeaseEndDate))
	if err != nil {
		return 0
	}
	return math.Max(0, years)
}

// DeriveLeaseExtensionMetrics values a statutory lease extension: the
// freeholder's loss (capitalised ground rent plus the change in the deferred
// reversion) and, for leases under 80 years, a share of the marriage value.
func DeriveLeaseExtensionMetrics(form LeaseExtensionForm) LeaseExtensionMetrics {
	extended := parse.Amount(form.ExtendedValue)
	freehold := parse.AmountOr(form.FreeholdValue, extended*constants.FreeholdUplift)
	capRate := parse.PercentOr(form.CapitalisationRate, constants.DefaultCapitalisationRate)
	defRate := parse.PercentOr(form.DefermentRate, constants.DefaultDefermentRate)

	var m LeaseExtensionMetrics
	m.UnexpiredYears = unexpiredTerm(form)
	m.ExtendedYears = m.UnexpiredYears + constants.StatutoryExtensionYears

	// The extended lease is at a peppercorn, so the freeholder loses the
	// ground rent for the remaining term.
	m.CapitalisedGroundRent = parse.Amount(form.GroundRent) * mathutil.AnnuityFactor(capRate, m.UnexpiredYears)
	m.ReversionBefore = mathutil.PresentValue(freehold, defRate, m.UnexpiredYears)
	m.ReversionAfter = mathutil.PresentValue(freehold, defRate, m.ExtendedYears)
	m.Diminution = m.CapitalisedGroundRent + m.ReversionBefore - m.ReversionAfter

	m.Relativity = parse.PercentOr(form.Relativity, Relativity(m.UnexpiredYears))
	m.ShortLeaseValue = parse.AmountOr(form.ShortLeaseValue, mathutil.ApplyPercentage(extended, m.Relativity))
	if extended > 0 {
		m.Relativity = mathutil.CalculatePercentage(m.ShortLeaseValue, extended)
	}

	rule := parse.Choice(form.MarriageValueRule, marriageValueRules, MarriageValueStandard)
	m.MarriageValuePayable = rule == MarriageValueStandard && m.UnexpiredYears < constants.MarriageValueThresholdYears
	if m.MarriageValuePayable {
		after := extended + m.ReversionAfter
		before := m.ShortLeaseValue + m.CapitalisedGroundRent + m.ReversionBefore
		m.MarriageValue = math.Max(0, after-before)
		m.FreeholderShare = mathutil.ApplyPercentage(m.MarriageValue,
			parse.PercentOr(form.MarriageValueShare, constants.DefaultMarriageValueShare))
	}

	m.Premium = m.Diminution + m.FreeholderShare
	m.TotalCost = m.Premium + parse.Amount(form.ProfessionalFees)
	m.PremiumPercentOfValue = mathutil.CalculatePercentage(m.Premium, extended)
	return m
}

// Fields implements Result.
func (m LeaseExtensionMetrics) Fields() []Field {
	return []Field{
		quantity("unexpiredYears", "Unexpired term", m.UnexpiredYears, UnitYears),
		quantity("extendedYears", "Term after extension", m.ExtendedYears, UnitYears),
		currency("capitalisedGroundRent", "Capitalised ground rent", m.CapitalisedGroundRent),
		currency("reversionBefore", "Freeholder reversion now", m.ReversionBefore),
		currency("reversionAfter", "Freeholder reversion after extension", m.ReversionAfter),
		currency("diminution", "Diminution in freeholder's interest", m.Diminution),
		percent("relativity", "Relativity", m.Relativity),
		currency("shortLeaseValue", "Current lease value", m.ShortLeaseValue),
		currency("marriageValue", "Marriage value", m.MarriageValue),
		flag("marriageValuePayable", "Marriage value payable", m.MarriageValuePayable),
		currency("freeholderShare", "Freeholder's share of marriage value", m.FreeholderShare),
		currency("premium", "Premium", m.Premium),
		currency("totalCost", "Premium plus fees", m.TotalCost),
		percent("premiumPercentOfValue", "Premium as share of value", m.PremiumPercentOfValue),
	}
}

// LeaseExtension is the statutory lease extension premium calculator.
var LeaseExtension Calculator = definition[LeaseExtensionForm, LeaseExtensionMetrics]{
	name:        "lease-extension",
	title:       "Lease Extension Premium",
	description: "Premium for a statutory 90-year lease extension on a flat using the diminution and marriage value method.",
	derive:      DeriveLeaseExtensionMetrics,
}
