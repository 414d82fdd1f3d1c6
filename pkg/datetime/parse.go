// Package datetime provides month-granularity date helpers for lease terms.
package datetime

import (
	"time"

	"github.com/iwvelando/property-finance/pkg/constants"
)

const (
	// DateTimeLayout is the month format accepted for lease and valuation dates.
	DateTimeLayout = constants.DateTimeLayout
)

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate string, secondDate string) (bool, error) {
	firstDateT, err := time.Parse(DateTimeLayout, firstDate)
	if err != nil {
		return false, err
	}
	secondDateT, err := time.Parse(DateTimeLayout, secondDate)
	if err != nil {
		return false, err
	}
	return firstDateT.Before(secondDateT), nil
}

// MonthsBetween returns the number of whole months from one YYYY-MM date to
// another. The result is negative when to is before from.
func MonthsBetween(from, to string) (int, error) {
	fromT, err := time.Parse(DateTimeLayout, from)
	if err != nil {
		return 0, err
	}
	toT, err := time.Parse(DateTimeLayout, to)
	if err != nil {
		return 0, err
	}
	return (toT.Year()-fromT.Year())*constants.MonthsPerYear + int(toT.Month()) - int(fromT.Month()), nil
}

// YearsBetween is MonthsBetween expressed in fractional years.
func YearsBetween(from, to string) (float64, error) {
	months, err := MonthsBetween(from, to)
	if err != nil {
		return 0, err
	}
	return float64(months) / constants.MonthsPerYear, nil
}
