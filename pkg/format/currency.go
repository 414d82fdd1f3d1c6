// Package format renders metric values for people: pounds, percentages and
// plain quantities.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency returns a sterling string with thousands separators (e.g., "-£1,234.56").
func Currency(amount float64) string {
	formatted := formatPositive(math.Abs(amount), 2)
	if amount < 0 && formatted != "0.00" {
		return "-£" + formatted
	}
	return "£" + formatted
}

// WholeCurrency returns a sterling string rounded to whole pounds (e.g., "£250,000").
func WholeCurrency(amount float64) string {
	formatted := formatPositive(math.Abs(amount), 0)
	if amount < 0 && formatted != "0" {
		return "-£" + formatted
	}
	return "£" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	formatted := formatPositive(math.Abs(amount), 2)
	if amount < 0 && formatted != "0.00" {
		return "-" + formatted
	}
	return formatted
}

// Percent renders a percentage value with two decimals (e.g., "5.25%").
func Percent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// Number renders a plain quantity, dropping trailing zero decimals.
func Number(value float64) string {
	if value == math.Trunc(value) {
		return formatPositiveSigned(value, 0)
	}
	return formatPositiveSigned(value, 2)
}

func formatPositiveSigned(value float64, decimals int) string {
	if value < 0 {
		return "-" + formatPositive(-value, decimals)
	}
	return formatPositive(value, decimals)
}

func formatPositive(value float64, decimals int) string {
	formatted := fmt.Sprintf("%.*f", decimals, value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}
