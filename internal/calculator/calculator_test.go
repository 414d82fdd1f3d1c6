package calculator

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func near(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestDefaultRegistry(t *testing.T) {
	registry := Default()
	expected := []string{
		"bridging-loan", "brrr", "capital-gains", "development", "epc-upgrade",
		"flip", "hmo", "icr", "lease-extension", "mortgage",
		"rent-to-rent", "rental-yield", "section-24", "service-charge", "stamp-duty",
	}

	names := registry.Names()
	if strings.Join(names, ",") != strings.Join(expected, ",") {
		t.Fatalf("Names() = %v, expected %v", names, expected)
	}
	if len(registry.All()) != len(expected) {
		t.Errorf("All() returned %d calculators, expected %d", len(registry.All()), len(expected))
	}

	for _, name := range expected {
		calc, err := registry.Get(name)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", name, err)
		}
		if calc.Name() != name || calc.Title() == "" || calc.Description() == "" {
			t.Errorf("calculator %q is missing its name, title or description", name)
		}
	}

	if _, err := registry.Get("tarot"); !errors.Is(err, ErrUnknownCalculator) {
		t.Errorf("Get(unknown) error = %v, expected ErrUnknownCalculator", err)
	}
}

func TestInputsFromFormTags(t *testing.T) {
	inputs := StampDuty.Inputs()
	if len(inputs) != 4 {
		t.Fatalf("expected 4 stamp duty inputs, got %d", len(inputs))
	}

	price := inputs[0]
	if price.Key != "purchasePrice" || price.Kind != KindCurrency || price.Label != "Purchase price" {
		t.Errorf("unexpected purchase price input: %+v", price)
	}

	buyer := inputs[1]
	if buyer.Kind != KindChoice || buyer.Default != "standard" || len(buyer.Options) != 4 {
		t.Errorf("unexpected buyer type input: %+v", buyer)
	}

	for _, calc := range Default().All() {
		for _, input := range calc.Inputs() {
			if input.Key == "" || input.Label == "" {
				t.Errorf("%s has an input without key or label: %+v", calc.Name(), input)
			}
			if input.Kind == KindChoice && len(input.Options) == 0 {
				t.Errorf("%s choice input %s has no options", calc.Name(), input.Key)
			}
		}
	}
}

func TestDeriveDecodesUntidyForms(t *testing.T) {
	result := StampDuty.Derive(map[string]string{
		"PurchasePrice": "£295,000",
		"unknownField":  "ignored",
	})
	metrics, ok := result.(StampDutyMetrics)
	if !ok {
		t.Fatalf("Derive returned %T", result)
	}
	if !near(metrics.StampDuty, 4750, 0.01) {
		t.Errorf("stamp duty = %.2f, expected 4750", metrics.StampDuty)
	}
}

// Every calculator must cope with empty, unreadable and absurdly large forms
// and only ever produce finite numbers.
func TestDeriveIsTotal(t *testing.T) {
	forms := map[string]func([]Input) map[string]string{
		"empty": func([]Input) map[string]string { return map[string]string{} },
		"garbage": func(inputs []Input) map[string]string {
			values := map[string]string{}
			for _, input := range inputs {
				values[input.Key] = "not a number"
			}
			return values
		},
		"negative": func(inputs []Input) map[string]string {
			values := map[string]string{}
			for _, input := range inputs {
				values[input.Key] = "-1"
			}
			return values
		},
		"huge": func(inputs []Input) map[string]string {
			values := map[string]string{}
			for _, input := range inputs {
				values[input.Key] = "1e12"
			}
			return values
		},
		"overflowing": func(inputs []Input) map[string]string {
			values := map[string]string{}
			for _, input := range inputs {
				values[input.Key] = "1e306m"
			}
			return values
		},
		"extreme": func(inputs []Input) map[string]string {
			values := map[string]string{}
			for _, input := range inputs {
				values[input.Key] = "1e300"
			}
			return values
		},
		"defaults": func(inputs []Input) map[string]string {
			values := map[string]string{}
			for _, input := range inputs {
				values[input.Key] = input.Default
			}
			return values
		},
	}

	for _, calc := range Default().All() {
		for name, build := range forms {
			t.Run(calc.Name()+"/"+name, func(t *testing.T) {
				result := calc.Derive(build(calc.Inputs()))
				for _, field := range result.Fields() {
					if math.IsNaN(field.Value) || math.IsInf(field.Value, 0) {
						t.Errorf("%s = %v", field.Key, field.Value)
					}
				}
				if len(Values(result)) != len(result.Fields()) {
					t.Errorf("duplicate field keys in %s", calc.Name())
				}
			})
		}
	}
}

func TestFieldDisplay(t *testing.T) {
	tests := []struct {
		field    Field
		expected string
	}{
		{Field{Value: 1234.5, Unit: UnitCurrency}, "£1,234.50"},
		{Field{Value: 5.25, Unit: UnitPercent}, "5.25%"},
		{Field{Value: 1, Unit: UnitFlag}, "yes"},
		{Field{Value: 0, Unit: UnitFlag}, "no"},
		{Field{Value: 25, Unit: UnitYears}, "25 years"},
		{Field{Value: 72, Unit: UnitRating}, "C"},
	}

	for _, tt := range tests {
		if got := tt.field.Display(); got != tt.expected {
			t.Errorf("Display(%v %s) = %q, expected %q", tt.field.Value, tt.field.Unit, got, tt.expected)
		}
	}
}

func TestAnalysisRequest(t *testing.T) {
	result := DeriveICRMetrics(ICRForm{MonthlyRent: "1250", LoanAmount: "200000", StressRate: "6"})
	req := AnalysisRequest(ICR, result)

	if req.Validate() != nil {
		t.Fatal("analysis request should carry a user prompt")
	}
	if !strings.Contains(req.SystemPrompt, "marketContext") {
		t.Error("system prompt should describe the response shape")
	}
	for _, want := range []string{"Buy-to-Let Interest Cover", "Interest cover ratio: 125.00%", "Passes stress test: yes", "£200,000.00"} {
		if !strings.Contains(req.UserPrompt, want) {
			t.Errorf("user prompt missing %q:\n%s", want, req.UserPrompt)
		}
	}
}
