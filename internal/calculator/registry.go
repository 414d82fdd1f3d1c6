package calculator

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownCalculator is returned when no calculator has the requested name.
var ErrUnknownCalculator = errors.New("unknown calculator")

// Registry looks calculators up by name.
type Registry struct {
	calculators map[string]Calculator
}

// NewRegistry creates a registry holding the given calculators. A later
// calculator replaces an earlier one with the same name.
func NewRegistry(calculators ...Calculator) *Registry {
	r := &Registry{calculators: make(map[string]Calculator, len(calculators))}
	for _, c := range calculators {
		r.calculators[c.Name()] = c
	}
	return r
}

// Default returns a registry with every built-in calculator.
func Default() *Registry {
	return NewRegistry(
		StampDuty,
		Bridging,
		BRRR,
		Yield,
		ICR,
		ServiceCharge,
		LeaseExtension,
		EPC,
		Development,
		Flip,
		Section24,
		CapitalGains,
		Mortgage,
		HMO,
		RentToRent,
	)
}

// Get returns the named calculator.
func (r *Registry) Get(name string) (Calculator, error) {
	c, ok := r.calculators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCalculator, name)
	}
	return c, nil
}

// Names returns the calculator names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.calculators))
	for name := range r.calculators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the calculators ordered by name.
func (r *Registry) All() []Calculator {
	names := r.Names()
	all := make([]Calculator, 0, len(names))
	for _, name := range names {
		all = append(all, r.calculators[name])
	}
	return all
}
