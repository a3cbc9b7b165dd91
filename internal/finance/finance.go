// Package finance holds the pure financial calculators: EMI for amortizing
// loans and compound projections for investment products. No state, no I/O.
package finance

import (
	"errors"
	"math"
)

// ErrInvalidLoanTerms is returned when tenure or rate would make the
// amortization formula divide by zero.
var ErrInvalidLoanTerms = errors.New("invalid loan terms")

// LoanAnnualRate returns the annual interest rate in percent for a loan type.
// Unknown types fall back to 10.0%.
func LoanAnnualRate(loanType string) float64 {
	switch loanType {
	case "personal":
		return 10.5
	case "home":
		return 8.5
	case "car":
		return 9.5
	case "education":
		return 8.0
	case "business":
		return 11.0
	default:
		return 10.0
	}
}

// InvestmentAnnualRate returns the annual return rate in percent for an
// investment type. Unknown types fall back to 8.0%.
func InvestmentAnnualRate(investmentType string) float64 {
	switch investmentType {
	case "mutual_fund":
		return 12.0
	case "fixed_deposit":
		return 6.5
	case "equity":
		return 15.0
	case "bonds":
		return 7.5
	case "gold":
		return 8.0
	default:
		return 8.0
	}
}

// EMI computes the equated monthly installment for an amortizing loan,
// rounded to 2 decimal places.
//
//	emi = P * r * (1+r)^n / ((1+r)^n - 1)   with r = annualRatePercent/1200
func EMI(principal, annualRatePercent float64, tenureMonths int) (float64, error) {
	monthlyRate := annualRatePercent / 1200
	if tenureMonths <= 0 || monthlyRate <= 0 {
		return 0, ErrInvalidLoanTerms
	}

	growth := math.Pow(1+monthlyRate, float64(tenureMonths))
	emi := principal * monthlyRate * growth / (growth - 1)
	return Round2(emi), nil
}

// InvestmentReturn computes the projected maturity value and the projected
// gain for a one-shot investment, both rounded to 2 decimal places. This is a
// point-in-time projection made at purchase, not a recurring accrual.
func InvestmentReturn(amount float64, investmentType string, durationMonths int) (projectedValue, projectedReturn float64, err error) {
	if durationMonths <= 0 {
		return 0, 0, ErrInvalidLoanTerms
	}

	monthlyRate := InvestmentAnnualRate(investmentType) / 1200
	projectedValue = Round2(amount * math.Pow(1+monthlyRate, float64(durationMonths)))
	projectedReturn = Round2(projectedValue - amount)
	return projectedValue, projectedReturn, nil
}

// Round2 rounds a currency amount to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
