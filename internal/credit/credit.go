// Package credit estimates financing for the credit simulator widget using
// flat-rate interest: interest is charged once on the full principal for the
// whole term and spread evenly over the months. It is a marketing estimate,
// not an amortization schedule.
package credit

import (
	"errors"
	"fmt"
	"math"
)

// DefaultFlatRate is the annual flat interest rate in percent.
const DefaultFlatRate = 3.5

var ErrInvalidArgument = errors.New("invalid argument")

type Result struct {
	MonthlyInstallment int64   `json:"monthlyInstallment"`
	TotalDP            int64   `json:"totalDP"`
	DPAmount           int64   `json:"dpAmount"`
	LoanPrincipal      int64   `json:"loanPrincipal"`
	InterestRate       float64 `json:"interestRate"`
	TenorMonths        int     `json:"tenorMonths"`
}

// Calculate returns the installment estimate for price with a down payment
// of dpPercentage percent over tenorMonths months at annualFlatRate percent.
// TotalDP equals DPAmount; no signing fees are added.
func Calculate(price int64, dpPercentage, tenorMonths int, annualFlatRate float64) (Result, error) {
	if tenorMonths <= 0 {
		return Result{}, fmt.Errorf("%w: tenor must be a positive number of months, got %d", ErrInvalidArgument, tenorMonths)
	}
	if price <= 0 {
		return Result{}, fmt.Errorf("%w: price must be positive, got %d", ErrInvalidArgument, price)
	}
	if dpPercentage < 0 || dpPercentage > 100 {
		return Result{}, fmt.Errorf("%w: down payment must be between 0 and 100 percent, got %d", ErrInvalidArgument, dpPercentage)
	}
	if annualFlatRate < 0 || math.IsNaN(annualFlatRate) || math.IsInf(annualFlatRate, 0) {
		return Result{}, fmt.Errorf("%w: interest rate must be a non-negative number", ErrInvalidArgument)
	}

	dp := int64(math.Round(float64(price) * float64(dpPercentage) / 100))
	principal := price - dp
	p := float64(principal)
	total := p + p*annualFlatRate/100*(float64(tenorMonths)/12)

	return Result{
		MonthlyInstallment: int64(math.Round(total / float64(tenorMonths))),
		TotalDP:            dp,
		DPAmount:           dp,
		LoanPrincipal:      principal,
		InterestRate:       annualFlatRate,
		TenorMonths:        tenorMonths,
	}, nil
}

// DPOptions are the down payment percentages offered by the simulator form.
func DPOptions() []int {
	out := make([]int, 0, 14)
	for p := 15; p <= 80; p += 5 {
		out = append(out, p)
	}
	return out
}

// TenorOptions are the loan terms, in months, offered by the form.
func TenorOptions() []int { return []int{12, 24, 36, 48, 60, 72} }
