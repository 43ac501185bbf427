package loan_test

import (
	"context"
	"io"
	"loan-service/internal/domain/loan"
	"loan-service/internal/infrastructure/database/memory"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() loan.LoanService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return loan.NewLoanService(
		memory.NewLoanRepository(),
		loan.NewValidator(loan.DefaultRanges(), logger),
		loan.NewTermResolver(loan.DefaultTerms()),
		nil,
		logger,
	)
}

func TestLoanLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	submitted := &loan.Loan{Name: "Test User", Amount: 5000, Type: loan.TypePersonal, Income: 50000, InterestRate: 15}

	created, err := svc.CreateLoan(ctx, submitted)
	require.NoError(t, err)
	require.True(t, created.Success)
	require.NotEmpty(t, created.Loan.ID)

	got, err := svc.GetLoanByID(ctx, created.Loan.ID)
	require.NoError(t, err)
	require.True(t, got.Success)
	assert.Equal(t, submitted.Name, got.Loan.Name)
	assert.Equal(t, submitted.Amount, got.Loan.Amount)
	assert.Equal(t, submitted.Type, got.Loan.Type)
	assert.Equal(t, submitted.Income, got.Loan.Income)
	assert.Equal(t, submitted.InterestRate, got.Loan.InterestRate)
	assert.InDelta(t, loan.CalculateMonthlyPayment(5000, 15, 5), *got.Loan.MonthlyPayment, 1e-9)

	changed := &loan.Loan{Name: "Test User", Amount: 8000, Type: loan.TypeCar, Income: 50000, InterestRate: 13}
	updated, err := svc.UpdateLoan(ctx, created.Loan.ID, changed)
	require.NoError(t, err)
	require.True(t, updated.Success)

	got, err = svc.GetLoanByID(ctx, created.Loan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), got.Loan.Amount)
	assert.Equal(t, loan.TypeCar, got.Loan.Type)
	assert.InDelta(t, loan.CalculateMonthlyPayment(8000, 13, 7), *got.Loan.MonthlyPayment, 1e-9)

	all, err := svc.GetAllLoans(ctx)
	require.NoError(t, err)
	assert.Len(t, all.Loans, 1)

	deleted, err := svc.DeleteLoan(ctx, created.Loan.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Success)

	got, err = svc.GetLoanByID(ctx, created.Loan.ID)
	require.NoError(t, err)
	assert.False(t, got.Success)
	assert.Equal(t, loan.CodeRetrieveFailed, got.Errors[0].Code)
	assert.Equal(t, "Loan not found", got.Errors[0].Message)
}

func TestMissingRecordFailures(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	updated, err := svc.UpdateLoan(ctx, "nope", &loan.Loan{Name: "X", Amount: 5000, Type: loan.TypePersonal, Income: 1, InterestRate: 15})
	require.NoError(t, err)
	assert.False(t, updated.Success)
	assert.Equal(t, loan.CodeUpdateFailed, updated.Errors[0].Code)

	deleted, err := svc.DeleteLoan(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, deleted.Success)
	assert.Equal(t, loan.CodeDeleteFailed, deleted.Errors[0].Code)
}
