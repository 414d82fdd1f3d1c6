// Package calculator holds the property-finance calculators. Every calculator
// is a pure transform from a form of string inputs to a metrics record: the
// form is parsed leniently (unreadable values are zero), a derive function
// applies the closed-form arithmetic and the metrics describe themselves as a
// flat list of fields for rendering, prompting and persistence.
package calculator

import (
	"github.com/iwvelando/property-finance/pkg/format"
	"github.com/iwvelando/property-finance/pkg/mathutil"
)

// Unit describes how a metric value should be read.
type Unit string

const (
	UnitCurrency Unit = "currency"
	UnitPercent  Unit = "percent"
	UnitMultiple Unit = "multiple"
	UnitYears    Unit = "years"
	UnitMonths   Unit = "months"
	UnitCount    Unit = "count"
	UnitFlag     Unit = "flag"
	UnitRating   Unit = "rating"
)

// Field is one named metric value.
type Field struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Display renders the field value for people.
func (f Field) Display() string {
	switch f.Unit {
	case UnitCurrency:
		return format.Currency(f.Value)
	case UnitPercent:
		return format.Percent(f.Value)
	case UnitMultiple:
		return format.Number(f.Value) + "x"
	case UnitYears:
		return format.Number(f.Value) + " years"
	case UnitMonths:
		return format.Number(f.Value) + " months"
	case UnitFlag:
		if f.Value != 0 {
			return "yes"
		}
		return "no"
	case UnitRating:
		return RatingForSAP(f.Value)
	default:
		return format.Number(f.Value)
	}
}

// Result is the metrics record produced by a calculator.
type Result interface {
	Fields() []Field
}

// Values flattens a result into a key/value record.
func Values(r Result) map[string]float64 {
	fields := r.Fields()
	values := make(map[string]float64, len(fields))
	for _, field := range fields {
		values[field.Key] = field.Value
	}
	return values
}

// Calculator describes one calculator and derives its metrics from raw form
// values keyed by input name.
type Calculator interface {
	Name() string
	Title() string
	Description() string
	Inputs() []Input
	Derive(values map[string]string) Result
}

// Field values are always finite; an overflow reads as zero like any other
// unusable input.
func currency(key, label string, value float64) Field {
	return Field{Key: key, Label: label, Value: mathutil.Finite(value), Unit: UnitCurrency}
}

func percent(key, label string, value float64) Field {
	return Field{Key: key, Label: label, Value: mathutil.Finite(value), Unit: UnitPercent}
}

func flag(key, label string, value bool) Field {
	v := 0.0
	if value {
		v = 1
	}
	return Field{Key: key, Label: label, Value: v, Unit: UnitFlag}
}

func quantity(key, label string, value float64, unit Unit) Field {
	return Field{Key: key, Label: label, Value: mathutil.Finite(value), Unit: unit}
}
