// Package parse converts free-form form inputs into numbers. None of its
// functions fail: anything that cannot be read as a number is zero.
package parse

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

var stripper = strings.NewReplacer("£", "", ",", "", "_", "", " ", "", "\t", "")

// Amount reads a currency or plain numeric input such as "£250,000", "1.5m" or "95k".
func Amount(s string) float64 {
	cleaned := strings.ToLower(stripper.Replace(strings.TrimSpace(s)))
	if cleaned == "" {
		return 0
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(cleaned, "k"):
		multiplier = 1e3
		cleaned = strings.TrimSuffix(cleaned, "k")
	case strings.HasSuffix(cleaned, "m"):
		multiplier = 1e6
		cleaned = strings.TrimSuffix(cleaned, "m")
	}

	value, err := cast.ToFloat64E(cleaned)
	if err != nil {
		return 0
	}
	value *= multiplier
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// Percent reads a percentage input such as "5.5%" or "5.5" and returns 5.5.
func Percent(s string) float64 {
	return Amount(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

// PercentOr reads a percentage, falling back when the input is blank.
func PercentOr(s string, fallback float64) float64 {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return Percent(s)
}

// AmountOr reads an amount, falling back when the input is blank.
func AmountOr(s string, fallback float64) float64 {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return Amount(s)
}

// maxWhole bounds Int so the float to int conversion is always defined.
const maxWhole = math.MaxInt32

// Int reads a whole number, truncating toward zero. Values beyond the int32
// range saturate.
func Int(s string) int {
	return int(math.Max(-maxWhole, math.Min(maxWhole, math.Trunc(Amount(s)))))
}

// Bool reads a checkbox-style input.
func Bool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on":
		return true
	}
	return false
}

// Choice matches s case-insensitively against allowed and returns the
// canonical allowed value, or fallback when nothing matches.
func Choice(s string, allowed []string, fallback string) string {
	trimmed := strings.TrimSpace(s)
	for _, option := range allowed {
		if strings.EqualFold(trimmed, option) {
			return option
		}
	}
	return fallback
}
