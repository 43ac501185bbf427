package batch

import (
	"context"
	"errors"
	"io"
	"loan-service/internal/domain/loan"
	"loan-service/internal/infrastructure/database/memory"
	"loan-service/internal/infrastructure/monitoring"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindAll(ctx context.Context) ([]*loan.Loan, error) {
	args := m.Called(ctx)
	if loans, ok := args.Get(0).([]*loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) FindByID(ctx context.Context, id string) (*loan.Loan, error) {
	args := m.Called(ctx, id)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) Insert(ctx context.Context, l *loan.Loan) (*loan.Loan, error) {
	args := m.Called(ctx, l)
	if created, ok := args.Get(0).(*loan.Loan); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) UpdateByID(ctx context.Context, id string, l *loan.Loan) (int64, error) {
	args := m.Called(ctx, id, l)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) RemoveByID(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func seed(t *testing.T, repo loan.Repository, loans ...*loan.Loan) {
	t.Helper()
	for _, l := range loans {
		_, err := repo.Insert(context.Background(), l)
		require.NoError(t, err)
	}
}

func TestSummarize(t *testing.T) {
	repo := memory.NewLoanRepository()
	seed(t, repo,
		&loan.Loan{Name: "a", Amount: 5000, Type: loan.TypePersonal, Income: 1, InterestRate: 15},
		&loan.Loan{Name: "b", Amount: 7500, Type: loan.TypePersonal, Income: 1, InterestRate: 16},
		&loan.Loan{Name: "c", Amount: 250000, Type: loan.TypeHome, Income: 1, InterestRate: 6},
	)

	book, err := NewLoanBookJob(repo, logger).Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, book[loan.TypePersonal].Count)
	assert.True(t, decimal.NewFromInt(12500).Equal(book[loan.TypePersonal].Principal))
	assert.Equal(t, 1, book[loan.TypeHome].Count)
	assert.Equal(t, 0, book[loan.TypeCar].Count)
	assert.True(t, book[loan.TypeCar].Principal.IsZero())
}

func TestRunUpdatesGauges(t *testing.T) {
	repo := memory.NewLoanRepository()
	seed(t, repo,
		&loan.Loan{Name: "a", Amount: 10000, Type: loan.TypeCar, Income: 1, InterestRate: 12},
		&loan.Loan{Name: "b", Amount: 20000, Type: loan.TypeCar, Income: 1, InterestRate: 13},
	)

	job := NewLoanBookJob(repo, logger)
	fixed := time.Unix(1_750_000_000, 0)
	job.now = func() time.Time { return fixed }

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, float64(2), testutil.ToFloat64(monitoring.LoanBook.Loans.WithLabelValues("Car")))
	assert.Equal(t, float64(30000), testutil.ToFloat64(monitoring.LoanBook.Principal.WithLabelValues("Car")))
	assert.Equal(t, float64(0), testutil.ToFloat64(monitoring.LoanBook.Loans.WithLabelValues("Home")))
	assert.Equal(t, float64(1_750_000_000), testutil.ToFloat64(monitoring.LoanBook.LastRun))
}

func TestRunStorageFailure(t *testing.T) {
	repo := new(MockLoanRepository)
	repo.On("FindAll", mock.Anything).Return(nil, errors.New("connection refused"))

	err := NewLoanBookJob(repo, logger).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	repo.AssertExpectations(t)
}

func TestNewLoanBookJobPanics(t *testing.T) {
	assert.Panics(t, func() { NewLoanBookJob(nil, logger) })
	assert.Panics(t, func() { NewLoanBookJob(memory.NewLoanRepository(), nil) })
}
