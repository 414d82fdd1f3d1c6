// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/property-finance/pkg/datetime"
)

// ValidateMonth checks that a month input uses the YYYY-MM layout. Blank
// values are accepted since they fall back to other inputs.
func ValidateMonth(key, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if _, err := time.Parse(datetime.DateTimeLayout, value); err != nil {
		return fmt.Sprintf("Input '%s' is not a YYYY-MM month (%s) - it will be ignored", key, value)
	}
	return ""
}

// ValidateChoice checks that a choice input names one of its options.
func ValidateChoice(key, value string, options []string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, option := range options {
		if strings.EqualFold(option, value) {
			return ""
		}
	}
	return fmt.Sprintf("Input '%s' has unsupported value '%s' (expected one of %s) - the default will be used",
		key, value, strings.Join(options, ", "))
}

// ValidateMonthOrder checks that the month under key does not precede the
// month under afterKey. Missing or malformed months are left to ValidateMonth.
func ValidateMonthOrder(key, value, afterKey, afterValue string) string {
	value = strings.TrimSpace(value)
	afterValue = strings.TrimSpace(afterValue)
	if value == "" || afterValue == "" {
		return ""
	}
	before, err := datetime.DateBeforeDate(value, afterValue)
	if err != nil || !before {
		return ""
	}
	return fmt.Sprintf("Input '%s' (%s) is before '%s' (%s) - the term will be treated as expired",
		key, value, afterKey, afterValue)
}

// UnknownKeys returns the keys of inputs that match none of the known keys,
// compared case-insensitively, in sorted order.
func UnknownKeys(known []string, inputs map[string]string) []string {
	index := make(map[string]bool, len(known))
	for _, key := range known {
		index[strings.ToLower(key)] = true
	}

	var unknown []string
	for key := range inputs {
		if !index[strings.ToLower(key)] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// RequestValidator checks a calculation request against the inputs its
// calculator accepts.
type RequestValidator struct {
	Calculator string
	Known      []string
	Months     []string
	After      map[string]string
	Choices    map[string][]string
	Inputs     map[string]string
}

// ValidateAll validates the request and returns warnings. Calculators accept
// any input, so nothing here is fatal.
func (rv *RequestValidator) ValidateAll() []string {
	var warnings []string

	for _, key := range UnknownKeys(rv.Known, rv.Inputs) {
		warnings = append(warnings, fmt.Sprintf("Input '%s' is not used by calculator '%s'", key, rv.Calculator))
	}

	for _, key := range rv.Months {
		if warning := ValidateMonth(key, lookup(rv.Inputs, key)); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	orderKeys := make([]string, 0, len(rv.After))
	for key := range rv.After {
		orderKeys = append(orderKeys, key)
	}
	sort.Strings(orderKeys)
	for _, key := range orderKeys {
		afterKey := rv.After[key]
		if warning := ValidateMonthOrder(key, lookup(rv.Inputs, key), afterKey, lookup(rv.Inputs, afterKey)); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	keys := make([]string, 0, len(rv.Choices))
	for key := range rv.Choices {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if warning := ValidateChoice(key, lookup(rv.Inputs, key), rv.Choices[key]); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	return warnings
}

// lookup finds an input value by key ignoring case, as config loaders
// commonly lowercase map keys.
func lookup(inputs map[string]string, key string) string {
	if value, ok := inputs[key]; ok {
		return value
	}
	for k, value := range inputs {
		if strings.EqualFold(k, key) {
			return value
		}
	}
	return ""
}
