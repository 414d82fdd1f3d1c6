package calculator

import (
	"testing"

	"github.com/iwvelando/property-finance/pkg/constants"
)

func TestDeriveBridgingMetrics(t *testing.T) {
	base := BridgingForm{
		PropertyValue: "200000",
		LoanAmount:    "100000",
		MonthlyRate:   "1",
		TermMonths:    "12",
	}

	tests := []struct {
		name         string
		interestType string
		interest     float64
		netAdvance   float64
		redemption   float64
		payment      float64
	}{
		{"Rolled compounds", InterestRolled, 12682.50, 98000, 112682.50, 0},
		{"Retained is deducted up front", InterestRetained, 12000, 86000, 100000, 0},
		{"Serviced is paid monthly", InterestServiced, 12000, 98000, 100000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := base
			form.InterestType = tt.interestType
			m := DeriveBridgingMetrics(form)

			if !near(m.TotalInterest, tt.interest, 0.01) {
				t.Errorf("TotalInterest = %.2f, expected %.2f", m.TotalInterest, tt.interest)
			}
			if !near(m.NetAdvance, tt.netAdvance, 0.01) {
				t.Errorf("NetAdvance = %.2f, expected %.2f", m.NetAdvance, tt.netAdvance)
			}
			if !near(m.RedemptionAmount, tt.redemption, 0.01) {
				t.Errorf("RedemptionAmount = %.2f, expected %.2f", m.RedemptionAmount, tt.redemption)
			}
			if !near(m.MonthlyPayment, tt.payment, 0.01) {
				t.Errorf("MonthlyPayment = %.2f, expected %.2f", m.MonthlyPayment, tt.payment)
			}
			if !near(m.LTV, 50, 0.001) {
				t.Errorf("LTV = %.2f, expected 50", m.LTV)
			}
			if !near(m.TotalCost, m.TotalInterest+2000, 0.01) {
				t.Errorf("TotalCost = %.2f, expected interest plus the 2%% default fee", m.TotalCost)
			}
		})
	}
}

func TestBridgingRolledBalanceIdentity(t *testing.T) {
	// Rolled balance after n months equals P x (1+r)^n.
	m := DeriveBridgingMetrics(BridgingForm{LoanAmount: "250000", MonthlyRate: "0.85", TermMonths: "9", ExitFee: "1"})
	balance := 250000.0
	for i := 0; i < 9; i++ {
		balance *= 1.0085
	}
	if !near(m.RedemptionAmount, balance+2500, 0.01) {
		t.Errorf("RedemptionAmount = %.2f, expected %.2f", m.RedemptionAmount, balance+2500)
	}
	if m.AnnualisedCost <= 0 {
		t.Errorf("AnnualisedCost = %.2f, expected positive", m.AnnualisedCost)
	}
}

func TestDeriveICRMetrics(t *testing.T) {
	tests := []struct {
		name      string
		form      ICRForm
		icr       float64
		threshold float64
		stress    float64
		pass      bool
	}{
		{"Exactly at threshold passes", ICRForm{MonthlyRent: "1250", LoanAmount: "200000", StressRate: "6"}, 125, 125, 6, true},
		{"Just over the rate fails", ICRForm{MonthlyRent: "1250", LoanAmount: "200000", StressRate: "6.01"}, 124.79, 125, 6.01, false},
		{"Higher rate taxpayer", ICRForm{MonthlyRent: "1250", LoanAmount: "200000", StressRate: "6", TaxBand: "higher"}, 125, 145, 6, false},
		{"Company uses basic threshold", ICRForm{MonthlyRent: "1250", LoanAmount: "200000", StressRate: "6", TaxBand: "COMPANY"}, 125, 125, 6, true},
		{"Floor stress rate", ICRForm{MonthlyRent: "1000", LoanAmount: "150000", ProductRate: "3"}, 145.45, 125, 5.5, true},
		{"Product plus buffer", ICRForm{MonthlyRent: "1000", LoanAmount: "150000", ProductRate: "4.5"}, 123.08, 125, 6.5, false},
		{"No loan never passes", ICRForm{MonthlyRent: "1000"}, 0, 125, 5.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DeriveICRMetrics(tt.form)
			if !near(m.ICR, tt.icr, 0.01) {
				t.Errorf("ICR = %.4f, expected %.2f", m.ICR, tt.icr)
			}
			if m.Threshold != tt.threshold {
				t.Errorf("Threshold = %.0f, expected %.0f", m.Threshold, tt.threshold)
			}
			if m.StressRate != tt.stress {
				t.Errorf("StressRate = %.2f, expected %.2f", m.StressRate, tt.stress)
			}
			if m.Pass != tt.pass {
				t.Errorf("Pass = %v, expected %v", m.Pass, tt.pass)
			}
		})
	}
}

func TestICRZeroStressRateUsesDefault(t *testing.T) {
	for _, rate := range []string{"0", "-2", "junk"} {
		m := DeriveICRMetrics(ICRForm{MonthlyRent: "1250", LoanAmount: "200000", ProductRate: "4", StressRate: rate})
		if m.StressRate != 6 {
			t.Errorf("StressRate %q: used %.2f, expected the 6%% default", rate, m.StressRate)
		}
		if !near(m.ICR, 125, 0.0001) || !m.Pass {
			t.Errorf("StressRate %q: ICR %.2f, pass %v", rate, m.ICR, m.Pass)
		}
	}
}

func TestICRMaxLoanPassesExactly(t *testing.T) {
	m := DeriveICRMetrics(ICRForm{MonthlyRent: "1250", LoanAmount: "150000", StressRate: "6"})
	if !near(m.MaxLoan, 200000, 0.01) {
		t.Fatalf("MaxLoan = %.2f, expected 200000", m.MaxLoan)
	}
	if !near(m.Headroom, 50000, 0.01) {
		t.Errorf("Headroom = %.2f, expected 50000", m.Headroom)
	}
	if !near(m.RentRequired, 937.5, 0.01) {
		t.Errorf("RentRequired = %.2f, expected 937.50", m.RentRequired)
	}
}

func TestDeriveMortgageMetrics(t *testing.T) {
	repayment := DeriveMortgageMetrics(MortgageForm{PropertyValue: "250000", Deposit: "50000", InterestRate: "5"})
	if repayment.TermMonths != 300 {
		t.Fatalf("TermMonths = %d, expected default 300", repayment.TermMonths)
	}
	if !near(repayment.MonthlyPayment, 1169.18, 0.01) {
		t.Errorf("MonthlyPayment = %.2f, expected 1169.18", repayment.MonthlyPayment)
	}
	if !near(repayment.LTV, 80, 0.001) {
		t.Errorf("LTV = %.2f, expected 80", repayment.LTV)
	}
	if !near(repayment.TotalPaid, repayment.TotalInterest+200000, 0.05) {
		t.Errorf("TotalPaid = %.2f, expected principal plus interest %.2f", repayment.TotalPaid, repayment.TotalInterest+200000)
	}

	interestOnly := DeriveMortgageMetrics(MortgageForm{PropertyValue: "250000", Deposit: "50000", InterestRate: "5", MortgageType: "interest-only"})
	if !near(interestOnly.MonthlyPayment, 833.33, 0.01) {
		t.Errorf("interest-only MonthlyPayment = %.2f, expected 833.33", interestOnly.MonthlyPayment)
	}
	if !near(interestOnly.TotalInterest, 250000, 0.01) {
		t.Errorf("interest-only TotalInterest = %.2f, expected 250000", interestOnly.TotalInterest)
	}

	zeroRate := DeriveMortgageMetrics(MortgageForm{PropertyValue: "240000", Deposit: "0", InterestRate: "0", TermYears: "20"})
	if !near(zeroRate.MonthlyPayment, 1000, 0.001) || zeroRate.TotalInterest != 0 {
		t.Errorf("zero-rate mortgage = %.2f/month with %.2f interest", zeroRate.MonthlyPayment, zeroRate.TotalInterest)
	}
}

func TestMortgageTermCapped(t *testing.T) {
	for _, term := range []string{"1e7", "1e12", "1e306m"} {
		m := DeriveMortgageMetrics(MortgageForm{PropertyValue: "300000", Deposit: "60000", InterestRate: "5", TermYears: term})
		if term == "1e306m" {
			// Overflowing input reads as zero years.
			if m.TermMonths != 0 || m.MonthlyPayment != 0 {
				t.Errorf("TermYears %s: %d months at %.2f", term, m.TermMonths, m.MonthlyPayment)
			}
			continue
		}
		if m.TermMonths != constants.MaxLoanTermMonths {
			t.Errorf("TermYears %s: TermMonths = %d, expected %d", term, m.TermMonths, constants.MaxLoanTermMonths)
		}
		if !near(m.TotalPaid, m.TotalInterest+240000, 0.05) {
			t.Errorf("TermYears %s: TotalPaid %.2f does not reconcile", term, m.TotalPaid)
		}
	}
}

func TestMortgageOverpayments(t *testing.T) {
	m := DeriveMortgageMetrics(MortgageForm{
		PropertyValue:      "250000",
		Deposit:            "50000",
		InterestRate:       "5",
		MonthlyOverpayment: "200",
	})
	if m.MonthsSaved <= 0 || m.OverpaymentMonths >= m.TermMonths {
		t.Errorf("overpayments should shorten the term: %d months, %d saved", m.OverpaymentMonths, m.MonthsSaved)
	}
	if m.InterestSaved <= 0 {
		t.Errorf("InterestSaved = %.2f, expected positive", m.InterestSaved)
	}
	if !near(m.InterestSaved, m.TotalInterest-m.OverpaymentInterest, 0.001) {
		t.Errorf("InterestSaved does not reconcile")
	}
}

func TestDeriveBRRRMetrics(t *testing.T) {
	form := BRRRForm{
		PurchasePrice: "100000",
		RefurbCost:    "20000",
		EndValue:      "170000",
		MortgageRate:  "5",
		MonthlyRent:   "1000",
	}
	m := DeriveBRRRMetrics(form)

	checks := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"StampDuty", m.StampDuty, 5000},
		{"RefurbTotal", m.RefurbTotal, 22000},
		{"TotalProjectCost", m.TotalProjectCost, 127000},
		{"RefinanceMortgage", m.RefinanceMortgage, 127500},
		{"MoneyLeftIn", m.MoneyLeftIn, -500},
		{"MonthlyMortgage", m.MonthlyMortgage, 531.25},
		{"MonthlyCashflow", m.MonthlyCashflow, 468.75},
		{"ICR", m.ICR, 188.24},
		{"CashRecycled", m.CashRecycled, 100.39},
		{"GrossYield", m.GrossYield, 7.06},
	}
	for _, c := range checks {
		if !near(c.got, c.expected, 0.01) {
			t.Errorf("%s = %.2f, expected %.2f", c.name, c.got, c.expected)
		}
	}
	if !m.InfiniteROI {
		t.Error("all cash recycled with positive cashflow should be an infinite return")
	}
	if m.ROI != 0 {
		t.Errorf("ROI = %.2f, expected 0 when the return is infinite", m.ROI)
	}

	form.EndValue = "150000"
	m = DeriveBRRRMetrics(form)
	if m.InfiniteROI || !near(m.MoneyLeftIn, 14500, 0.01) {
		t.Errorf("MoneyLeftIn = %.2f (infinite %v), expected 14500", m.MoneyLeftIn, m.InfiniteROI)
	}
	if !near(m.ROI, m.AnnualCashflow/m.MoneyLeftIn*100, 0.0001) {
		t.Errorf("ROI = %.2f does not match cashflow over money left in", m.ROI)
	}
}
