package loan

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidLoanTerm = errors.New("invalid loan type")

// CalculateMonthlyPayment returns the fixed-rate amortized payment.
// A zero rate is not special-cased and yields NaN.
func CalculateMonthlyPayment(principal, annualRatePercent float64, termYears int) float64 {
	monthlyRate := annualRatePercent / 12 / 100
	numberOfPayments := float64(termYears * 12)
	return (principal * monthlyRate) / (1 - math.Pow(1+monthlyRate, -numberOfPayments))
}

// TermTable maps a lowercase loan type to its amortization term in years.
type TermTable map[string]int

func DefaultTerms() TermTable {
	return TermTable{
		"personal": 5,
		"car":      7,
		"home":     30,
	}
}

type TermResolver interface {
	LoanTerm(loanType string) (int, error)
}

type termResolver struct {
	terms TermTable
}

func NewTermResolver(terms TermTable) TermResolver {
	normalized := make(TermTable, len(terms))
	for k, v := range terms {
		normalized[strings.ToLower(k)] = v
	}
	return &termResolver{terms: normalized}
}

func (r *termResolver) LoanTerm(loanType string) (int, error) {
	term := r.terms[strings.ToLower(loanType)]
	if term == 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidLoanTerm, loanType)
	}
	return term, nil
}
