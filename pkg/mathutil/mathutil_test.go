package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"Large number", 250123.456, 250123.46},
		{"Negative number", -1.236, -1.24},
		{"Zero", 0.0, 0.0},
		{"Sub-penny positive", 0.004, 0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestToleranceChecks(t *testing.T) {
	if !IsZero(0.009) || IsZero(0.02) {
		t.Errorf("IsZero tolerance not applied at one penny")
	}
	if !IsPositive(0.02) || IsPositive(0.01) {
		t.Errorf("IsPositive tolerance not applied at one penny")
	}
	if !IsNegative(-0.02) || IsNegative(-0.01) {
		t.Errorf("IsNegative tolerance not applied at one penny")
	}
	if !WithinTolerance(100, 100.5, 1) || WithinTolerance(100, 102, 1) {
		t.Errorf("WithinTolerance returned wrong result")
	}
}

func TestClampMinMax(t *testing.T) {
	tests := []struct {
		name           string
		val, lo, hi    float64
		expectedResult float64
	}{
		{"Inside range", 50, 0, 100, 50},
		{"Below range", -5, 0, 100, 0},
		{"Above range", 120, 0, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.val, tt.lo, tt.hi); got != tt.expectedResult {
				t.Errorf("Clamp(%v, %v, %v) = %v, expected %v", tt.val, tt.lo, tt.hi, got, tt.expectedResult)
			}
		})
	}

	if Min(3, 4) != 3 || Max(3, 4) != 4 {
		t.Errorf("Min/Max returned wrong values")
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		name     string
		val      float64
		expected int
	}{
		{"Inside range", 25.9, 25},
		{"Below range", -3, 0},
		{"Above range", 1e12, 480},
		{"Far above range", 1e300, 480},
		{"Infinity", math.Inf(1), 480},
		{"NaN", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampInt(tt.val, 0, 480); got != tt.expected {
				t.Errorf("ClampInt(%v, 0, 480) = %d, expected %d", tt.val, got, tt.expected)
			}
		})
	}
}

func TestSafeDivide(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{"Normal division", 10, 4, 2.5},
		{"Zero denominator", 10, 0, 0},
		{"Zero numerator", 0, 5, 0},
		{"Negative values", -9, 3, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeDivide(tt.a, tt.b); got != tt.expected {
				t.Errorf("SafeDivide(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestFinite(t *testing.T) {
	if Finite(math.NaN()) != 0 || Finite(math.Inf(1)) != 0 || Finite(math.Inf(-1)) != 0 {
		t.Errorf("Finite should zero non-finite values")
	}
	if Finite(12.5) != 12.5 {
		t.Errorf("Finite should pass finite values through")
	}
}

func TestPercentageHelpers(t *testing.T) {
	if got := CalculatePercentage(25, 200); got != 12.5 {
		t.Errorf("CalculatePercentage(25, 200) = %v, expected 12.5", got)
	}
	if got := CalculatePercentage(25, 0); got != 0 {
		t.Errorf("CalculatePercentage with zero total = %v, expected 0", got)
	}
	if got := ApplyPercentage(300000, 75); got != 225000 {
		t.Errorf("ApplyPercentage(300000, 75) = %v, expected 225000", got)
	}
}

func TestAnnuityFactor(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		years    float64
		expected float64
	}{
		{"Zero rate equals years", 0, 10, 10},
		{"Zero years", 7, 0, 0},
		{"Seven percent over ten years", 7, 10, 7.0236},
		{"Five percent over one year", 5, 1, 0.952381},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnnuityFactor(tt.rate, tt.years)
			if math.Abs(got-tt.expected) > 0.0001 {
				t.Errorf("AnnuityFactor(%v, %v) = %v, expected %v", tt.rate, tt.years, got, tt.expected)
			}
		})
	}
}

func TestPresentValue(t *testing.T) {
	got := PresentValue(1000, 5, 2)
	if math.Abs(got-907.0295) > 0.001 {
		t.Errorf("PresentValue(1000, 5, 2) = %v, expected 907.0295", got)
	}
	if PresentValue(1000, 5, 0) != 1000 {
		t.Errorf("PresentValue with zero years should return value")
	}
}

func TestNPV(t *testing.T) {
	// With a zero discount rate NPV is the plain sum of flows.
	if got := NPV(0, -1000, []float64{400, 400, 400}); got != 200 {
		t.Errorf("NPV at zero rate = %v, expected 200", got)
	}

	got := NPV(10, -100, []float64{110})
	if math.Abs(got) > 1e-9 {
		t.Errorf("NPV(10, -100, [110]) = %v, expected 0", got)
	}
}
