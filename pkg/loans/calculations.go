// Package loans provides the mortgage and bridging-finance arithmetic used by
// the calculators.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment holds the values for a given monthly payment.
type Payment struct {
	Month              int
	Payment            float64
	Principal          float64
	Interest           float64
	Overpayment        float64
	RemainingPrincipal float64
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal, deposit, annualInterestRate float64, termMonths int) float64 {
	borrowed := principal - deposit
	if termMonths <= 0 || borrowed <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		return borrowed / float64(termMonths)
	}

	periodicInterestRate := annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow(1.00+periodicInterestRate, float64(termMonths))
	discountFactor := (power - 1.00) / power
	return mathutil.Finite(borrowed * periodicInterestRate / discountFactor)
}

// CalculateInterestPayment calculates the interest portion of a monthly payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// InterestOnlyPayment is the monthly payment on an interest-only loan.
func InterestOnlyPayment(principal, annualInterestRate float64) float64 {
	return CalculateInterestPayment(principal, annualInterestRate)
}

// SimpleInterest is the interest charged on principal at a monthly rate for the
// given number of months without compounding, as used for serviced and
// retained bridging interest.
func SimpleInterest(principal, monthlyRatePct float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	return principal * monthlyRatePct / constants.PercentageMultiplier * float64(months)
}

// RolledInterestBalance is the balance owed when monthly interest is added to
// the loan and compounds until redemption.
func RolledInterestBalance(principal, monthlyRatePct float64, months int) float64 {
	if months <= 0 {
		return principal
	}
	return mathutil.Finite(principal * math.Pow(1+monthlyRatePct/constants.PercentageMultiplier, float64(months)))
}

// LoanConfig represents the parameters of an amortising loan.
type LoanConfig struct {
	Name               string
	Principal          float64
	Deposit            float64
	InterestRate       float64
	Term               int // months
	MonthlyOverpayment float64
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates the month-by-month repayment schedule for a loan,
// finishing early when overpayments clear the balance.
func (g *AmortizationScheduleGenerator) GenerateSchedule(loan LoanConfig) []Payment {
	monthlyPayment := CalculateMonthlyPayment(loan.Principal, loan.Deposit, loan.InterestRate, loan.Term)
	balance := loan.Principal - loan.Deposit
	if balance <= 0 || loan.Term <= 0 {
		return nil
	}

	schedule := make([]Payment, 0, min(loan.Term, constants.MaxLoanTermMonths))
	for month := 1; month <= loan.Term; month++ {
		var current Payment
		current.Month = month
		current.Interest = CalculateInterestPayment(balance, loan.InterestRate)
		current.Principal = monthlyPayment - current.Interest

		// Cap the overpayment so we never pay more than is owed.
		overpayment := loan.MonthlyOverpayment
		if overpayment > 0 && current.Principal+overpayment > balance {
			g.logger.Debug("capping overpayment to remaining balance",
				zap.String("op", "loans.GenerateSchedule"),
				zap.String("loan", loan.Name),
				zap.Int("month", month),
				zap.Float64("requested", overpayment),
			)
			overpayment = math.Max(0, balance-current.Principal)
		}
		current.Overpayment = overpayment

		if month == loan.Term || mathutil.Round(balance-current.Principal-overpayment) <= 0 {
			// Avoid carrying machine error into the final month.
			current.Principal = balance - overpayment
			current.RemainingPrincipal = 0
			current.Payment = current.Principal + current.Interest + overpayment
			schedule = append(schedule, current)
			g.logger.Debug(fmt.Sprintf("loan %s cleared in month %d", loan.Name, month),
				zap.String("op", "loans.GenerateSchedule"),
			)
			break
		}

		current.Payment = monthlyPayment + overpayment
		current.RemainingPrincipal = balance - current.Principal - overpayment
		balance = current.RemainingPrincipal
		schedule = append(schedule, current)
	}

	return schedule
}

// ScheduleSummary aggregates a repayment schedule.
type ScheduleSummary struct {
	Months        int
	TotalInterest float64
	TotalPaid     float64
}

// Summarize totals a schedule produced by GenerateSchedule.
func Summarize(schedule []Payment) ScheduleSummary {
	var summary ScheduleSummary
	summary.Months = len(schedule)
	for _, payment := range schedule {
		summary.TotalInterest += payment.Interest
		summary.TotalPaid += payment.Payment
	}
	return summary
}
