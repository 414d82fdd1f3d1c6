package calculator

import (
	"github.com/iwvelando/property-finance/pkg/parse"
	"github.com/iwvelando/property-finance/pkg/tax"
)

// StampDutyForm holds the stamp duty calculator inputs.
type StampDutyForm struct {
	PurchasePrice string `json:"purchasePrice" label:"Purchase price" kind:"currency"`
	BuyerType     string `json:"buyerType" label:"Buyer type" kind:"choice" default:"standard" options:"standard|first-time|additional|company"`
	NonResident   string `json:"nonResident" label:"Non-UK resident buyer" kind:"flag"`
	CompanyRelief string `json:"companyRelief" label:"Company qualifies for relief from the flat rate" kind:"flag"`
}

// StampDutyMetrics is the SDLT due on a purchase.
type StampDutyMetrics struct {
	PurchasePrice float64          `json:"purchasePrice"`
	BuyerType     string           `json:"buyerType"`
	StampDuty     float64          `json:"stampDuty"`
	EffectiveRate float64          `json:"effectiveRate"`
	SurchargeTax  float64          `json:"surchargeTax"`
	FlatRate      bool             `json:"flatRate"`
	TotalPurchase float64          `json:"totalPurchase"`
	Bands         []tax.BandCharge `json:"bands"`
}

// DeriveStampDutyMetrics computes SDLT for the form.
func DeriveStampDutyMetrics(form StampDutyForm) StampDutyMetrics {
	price := parse.Amount(form.PurchasePrice)
	buyer := parse.Choice(form.BuyerType, tax.BuyerTypes, string(tax.BuyerStandard))
	sdlt := tax.StampDuty(price, tax.BuyerType(buyer), parse.Bool(form.NonResident), parse.Bool(form.CompanyRelief))

	return StampDutyMetrics{
		PurchasePrice: price,
		BuyerType:     buyer,
		StampDuty:     sdlt.Total,
		EffectiveRate: sdlt.EffectiveRate,
		SurchargeTax:  sdlt.Surcharge,
		FlatRate:      sdlt.FlatRate,
		TotalPurchase: price + sdlt.Total,
		Bands:         sdlt.Bands,
	}
}

// Fields implements Result.
func (m StampDutyMetrics) Fields() []Field {
	return []Field{
		currency("purchasePrice", "Purchase price", m.PurchasePrice),
		currency("stampDuty", "Stamp duty", m.StampDuty),
		percent("effectiveRate", "Effective rate", m.EffectiveRate),
		currency("surchargeTax", "Of which surcharges", m.SurchargeTax),
		flag("flatRate", "Company flat rate applied", m.FlatRate),
		currency("totalPurchase", "Price plus stamp duty", m.TotalPurchase),
	}
}

// StampDuty is the stamp duty land tax calculator.
var StampDuty Calculator = definition[StampDutyForm, StampDutyMetrics]{
	name:        "stamp-duty",
	title:       "Stamp Duty Land Tax",
	description: "SDLT on a residential purchase in England, including first-time buyer relief and the additional dwelling and non-resident surcharges.",
	derive:      DeriveStampDutyMetrics,
}
