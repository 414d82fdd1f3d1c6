package calculator

import (
	"math"
	"strings"

	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"github.com/iwvelando/property-finance/pkg/parse"
)

// sapBand is an EPC rating band on the SAP scale.
type sapBand struct {
	Rating   string
	Min      float64
	Midpoint float64
}

var sapBands = []sapBand{
	{"A", 92, 96},
	{"B", 81, 86},
	{"C", 69, 75},
	{"D", 55, 62},
	{"E", 39, 47},
	{"F", 21, 30},
	{"G", 1, 10},
}

// MinimumLettableRating is the lowest rating at which a private rental may be let.
const MinimumLettableRating = "E"

var epcRatings = []string{"A", "B", "C", "D", "E", "F", "G"}

// RatingForSAP returns the EPC letter for a SAP score.
func RatingForSAP(sap float64) string {
	for _, band := range sapBands {
		if sap >= band.Min {
			return band.Rating
		}
	}
	return "G"
}

// SAPForRating returns the lowest SAP score within a rating.
func SAPForRating(rating string) float64 {
	for _, band := range sapBands {
		if band.Rating == rating {
			return band.Min
		}
	}
	return 0
}

// parseSAP reads either a SAP score or an EPC letter, which maps to the
// middle of its band.
func parseSAP(s string) float64 {
	letter := strings.ToUpper(strings.TrimSpace(s))
	for _, band := range sapBands {
		if letter == band.Rating {
			return band.Midpoint
		}
	}
	return mathutil.Clamp(parse.Amount(s), 0, 100)
}

// upgradeMeasure is a typical retrofit with its installed cost, SAP
// improvement and annual bill saving.
type upgradeMeasure struct {
	Key    string
	Cost   float64
	SAP    float64
	Saving float64
}

var upgradeMeasures = []upgradeMeasure{
	{Key: "loftInsulation", Cost: 800, SAP: 4, Saving: 200},
	{Key: "cavityWallInsulation", Cost: 2500, SAP: 6, Saving: 280},
	{Key: "solidWallInsulation", Cost: 9000, SAP: 10, Saving: 450},
	{Key: "doubleGlazing", Cost: 6000, SAP: 4, Saving: 150},
	{Key: "boilerUpgrade", Cost: 3000, SAP: 8, Saving: 300},
	{Key: "heatPump", Cost: 12000, SAP: 12, Saving: 400},
	{Key: "solarPV", Cost: 6500, SAP: 10, Saving: 450},
	{Key: "ledLighting", Cost: 200, SAP: 1, Saving: 50},
}

// EPCForm holds the energy efficiency upgrade inputs. Each measure is a flag;
// the extra fields allow measures outside the standard list.
type EPCForm struct {
	CurrentRating        string `json:"currentRating" label:"Current SAP score or rating" kind:"rating"`
	TargetRating         string `json:"targetRating" label:"Target rating" kind:"choice" default:"C" options:"A|B|C|D|E|F|G"`
	LoftInsulation       string `json:"loftInsulation" label:"Loft insulation" kind:"flag"`
	CavityWallInsulation string `json:"cavityWallInsulation" label:"Cavity wall insulation" kind:"flag"`
	SolidWallInsulation  string `json:"solidWallInsulation" label:"Solid wall insulation" kind:"flag"`
	DoubleGlazing        string `json:"doubleGlazing" label:"Double glazing" kind:"flag"`
	BoilerUpgrade        string `json:"boilerUpgrade" label:"Condensing boiler" kind:"flag"`
	HeatPump             string `json:"heatPump" label:"Air source heat pump" kind:"flag"`
	SolarPV              string `json:"solarPV" label:"Solar PV" kind:"flag"`
	LEDLighting          string `json:"ledLighting" label:"LED lighting" kind:"flag"`
	OtherCost            string `json:"otherCost" label:"Other works cost" kind:"currency"`
	OtherSAP             string `json:"otherSAP" label:"Other works SAP points"`
	OtherSaving          string `json:"otherSaving" label:"Other works annual saving" kind:"currency"`
	Grants               string `json:"grants" label:"Grant funding" kind:"currency"`
	CostCap              string `json:"costCap" label:"Spending cap" kind:"currency" default:"10000"`
}

func (f EPCForm) selected() map[string]bool {
	return map[string]bool{
		"loftInsulation":       parse.Bool(f.LoftInsulation),
		"cavityWallInsulation": parse.Bool(f.CavityWallInsulation),
		"solidWallInsulation":  parse.Bool(f.SolidWallInsulation),
		"doubleGlazing":        parse.Bool(f.DoubleGlazing),
		"boilerUpgrade":        parse.Bool(f.BoilerUpgrade),
		"heatPump":             parse.Bool(f.HeatPump),
		"solarPV":              parse.Bool(f.SolarPV),
		"ledLighting":          parse.Bool(f.LEDLighting),
	}
}

// EPCMetrics is the outcome of a package of energy efficiency works.
type EPCMetrics struct {
	SAPBefore         float64 `json:"sapBefore"`
	SAPAfter          float64 `json:"sapAfter"`
	RatingBefore      string  `json:"ratingBefore"`
	RatingAfter       string  `json:"ratingAfter"`
	TargetSAP         float64 `json:"targetSAP"`
	MeetsTarget       bool    `json:"meetsTarget"`
	Measures          int     `json:"measures"`
	TotalCost         float64 `json:"totalCost"`
	Grants            float64 `json:"grants"`
	NetCost           float64 `json:"netCost"`
	CostCap           float64 `json:"costCap"`
	CostCapExemption  bool    `json:"costCapExemption"`
	AnnualSavings     float64 `json:"annualSavings"`
	PaybackYears      float64 `json:"paybackYears"`
	CurrentlyLettable bool    `json:"currentlyLettable"`
	LettableAfter     bool    `json:"lettableAfter"`
}

// DeriveEPCMetrics totals the selected measures. A landlord whose works reach
// the spending cap without meeting the target qualifies for the cost-cap
// exemption.
func DeriveEPCMetrics(form EPCForm) EPCMetrics {
	var m EPCMetrics
	m.SAPBefore = parseSAP(form.CurrentRating)
	m.RatingBefore = RatingForSAP(m.SAPBefore)
	m.TargetSAP = SAPForRating(parse.Choice(form.TargetRating, epcRatings, "C"))
	m.CostCap = parse.AmountOr(form.CostCap, constants.EPCCostCap)

	gain := 0.0
	selected := form.selected()
	for _, measure := range upgradeMeasures {
		if !selected[measure.Key] {
			continue
		}
		m.Measures++
		m.TotalCost += measure.Cost
		gain += measure.SAP
		m.AnnualSavings += measure.Saving
	}
	if other := parse.Amount(form.OtherCost); other > 0 || parse.Amount(form.OtherSAP) > 0 {
		m.Measures++
		m.TotalCost += other
		gain += parse.Amount(form.OtherSAP)
		m.AnnualSavings += parse.Amount(form.OtherSaving)
	}

	m.SAPAfter = math.Min(100, m.SAPBefore+gain)
	m.RatingAfter = RatingForSAP(m.SAPAfter)
	m.MeetsTarget = m.SAPAfter >= m.TargetSAP
	m.Grants = math.Min(parse.Amount(form.Grants), m.TotalCost)
	m.NetCost = m.TotalCost - m.Grants
	m.CostCapExemption = !m.MeetsTarget && m.NetCost >= m.CostCap
	m.PaybackYears = mathutil.SafeDivide(m.NetCost, m.AnnualSavings)

	lettable := SAPForRating(MinimumLettableRating)
	m.CurrentlyLettable = m.SAPBefore >= lettable
	m.LettableAfter = m.SAPAfter >= lettable || m.CostCapExemption
	return m
}

// Fields implements Result.
func (m EPCMetrics) Fields() []Field {
	return []Field{
		quantity("sapBefore", "SAP score now", m.SAPBefore, UnitCount),
		quantity("ratingBefore", "Rating now", m.SAPBefore, UnitRating),
		quantity("sapAfter", "SAP score after works", m.SAPAfter, UnitCount),
		quantity("ratingAfter", "Rating after works", m.SAPAfter, UnitRating),
		quantity("targetSAP", "Target SAP score", m.TargetSAP, UnitCount),
		flag("meetsTarget", "Meets target", m.MeetsTarget),
		quantity("measures", "Measures", float64(m.Measures), UnitCount),
		currency("totalCost", "Cost of works", m.TotalCost),
		currency("grants", "Grants", m.Grants),
		currency("netCost", "Net cost", m.NetCost),
		flag("costCapExemption", "Cost cap exemption", m.CostCapExemption),
		currency("annualSavings", "Annual bill savings", m.AnnualSavings),
		quantity("paybackYears", "Payback", m.PaybackYears, UnitYears),
		flag("currentlyLettable", "Lettable now", m.CurrentlyLettable),
		flag("lettableAfter", "Lettable after works", m.LettableAfter),
	}
}

// EPC is the energy performance upgrade calculator.
var EPC Calculator = definition[EPCForm, EPCMetrics]{
	name:        "epc-upgrade",
	title:       "EPC Upgrade Planner",
	description: "SAP improvement, cost, payback and lettability of a package of energy efficiency works against a target rating.",
	derive:      DeriveEPCMetrics,
}
