package loan

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     int
		want      float64
	}{
		{"Personal 5000 at 15% over 5 years", 5000, 15, 5, 118.9496},
		{"Car 20000 at 12% over 7 years", 20000, 12, 7, 353.0547},
		{"Home 250000 at 6% over 30 years", 250000, 6, 30, 1498.8763},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateMonthlyPayment(tt.principal, tt.rate, tt.years)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestCalculateMonthlyPaymentMatchesFormula(t *testing.T) {
	r := 15.0 / 12 / 100
	n := 5.0 * 12
	want := 5000 * r / (1 - math.Pow(1+r, -n))
	assert.InDelta(t, want, CalculateMonthlyPayment(5000, 15, 5), 1e-9)
}

func TestCalculateMonthlyPaymentZeroRate(t *testing.T) {
	assert.True(t, math.IsNaN(CalculateMonthlyPayment(5000, 0, 5)))
}

func TestLoanTerm(t *testing.T) {
	resolver := NewTermResolver(DefaultTerms())

	tests := []struct {
		loanType string
		want     int
	}{
		{"Personal", 5},
		{"personal", 5},
		{"CAR", 7},
		{"Home", 30},
	}
	for _, tt := range tests {
		t.Run(tt.loanType, func(t *testing.T) {
			got, err := resolver.LoanTerm(tt.loanType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Unknown type", func(t *testing.T) {
		_, err := resolver.LoanTerm("Boat")
		assert.ErrorIs(t, err, ErrInvalidLoanTerm)
		assert.EqualError(t, err, "invalid loan type: Boat")
	})

	t.Run("Zero term is invalid", func(t *testing.T) {
		r := NewTermResolver(TermTable{"Personal": 0, "Car": 7})
		_, err := r.LoanTerm("Personal")
		assert.ErrorIs(t, err, ErrInvalidLoanTerm)

		got, err := r.LoanTerm("car")
		require.NoError(t, err)
		assert.Equal(t, 7, got)
	})
}

func TestClone(t *testing.T) {
	payment := 100.0
	original := &Loan{ID: "a", Name: "n", MonthlyPayment: &payment}
	c := original.Clone()
	*c.MonthlyPayment = 200
	c.Name = "changed"

	assert.Equal(t, 100.0, *original.MonthlyPayment)
	assert.Equal(t, "n", original.Name)
	assert.Nil(t, (*Loan)(nil).Clone())
}
