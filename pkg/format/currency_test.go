package format

import "testing"

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Zero", 0, "£0.00"},
		{"Small", 12.5, "£12.50"},
		{"Thousands", 1234.56, "£1,234.56"},
		{"Millions", 1500000, "£1,500,000.00"},
		{"Negative", -2500.1, "-£2,500.10"},
		{"Negative rounds to zero", -0.001, "£0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.amount); got != tt.expected {
				t.Errorf("Currency(%v) = %q, expected %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestWholeCurrency(t *testing.T) {
	if got := WholeCurrency(249999.6); got != "£250,000" {
		t.Errorf("WholeCurrency() = %q, expected £250,000", got)
	}
	if got := WholeCurrency(-1200); got != "-£1,200" {
		t.Errorf("WholeCurrency() = %q, expected -£1,200", got)
	}
}

func TestNumericCurrency(t *testing.T) {
	if got := NumericCurrency(-1234.5); got != "-1,234.50" {
		t.Errorf("NumericCurrency() = %q, expected -1,234.50", got)
	}
}

func TestPercentAndNumber(t *testing.T) {
	if got := Percent(5.255); got != "5.25%" && got != "5.26%" {
		t.Errorf("Percent() = %q", got)
	}
	if got := Percent(125); got != "125.00%" {
		t.Errorf("Percent(125) = %q, expected 125.00%%", got)
	}
	if got := Number(12); got != "12" {
		t.Errorf("Number(12) = %q, expected 12", got)
	}
	if got := Number(2.5); got != "2.50" {
		t.Errorf("Number(2.5) = %q, expected 2.50", got)
	}
	if got := Number(-4000); got != "-4,000" {
		t.Errorf("Number(-4000) = %q, expected -4,000", got)
	}
}
