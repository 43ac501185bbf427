package loan

import (
	"context"
	"fmt"
	"loan-service/internal/infrastructure/monitoring"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

const CodeInvalidLoanType = "INVALID_LOAN_TYPE"

type ValidationError struct {
	Message string
	Code    string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (Code: %s)", e.Message, e.Code)
}

type ValidationResult struct {
	IsValid bool
	Errors  []ValidationError
}

// Range holds inclusive bounds for one loan type.
type Range struct {
	MinAmount       float64
	MaxAmount       float64
	MinInterestRate float64
	MaxInterestRate float64
}

type RangeTable map[LoanType]Range

// DefaultRanges mirrors the shipped validation config.
func DefaultRanges() RangeTable {
	return RangeTable{
		TypePersonal: {MinAmount: 1_000, MaxAmount: 20_000, MinInterestRate: 15, MaxInterestRate: 20},
		TypeCar:      {MinAmount: 4_000, MaxAmount: 100_000, MinInterestRate: 12, MaxInterestRate: 16},
		TypeHome:     {MinAmount: 100_000, MaxAmount: 10_000_000, MinInterestRate: 5, MaxInterestRate: 7},
	}
}

type Validator interface {
	ValidateLoan(ctx context.Context, loan *Loan) ValidationResult
}

type loanValidator struct {
	ranges RangeTable
	logger *slog.Logger
}

func NewValidator(ranges RangeTable, logger *slog.Logger) Validator {
	if logger == nil {
		panic("logger cannot be nil")
	}
	table := make(RangeTable, len(ranges))
	for _, t := range LoanTypes() {
		r, ok := ranges[t]
		if !ok {
			panic(fmt.Sprintf("validation range for loan type %s is not configured", t))
		}
		table[t] = r
	}
	return &loanValidator{
		ranges: table,
		logger: logger.With("component", "LoanValidator"),
	}
}

func (v *loanValidator) ValidateLoan(ctx context.Context, loan *Loan) ValidationResult {
	var errs []ValidationError

	if loan == nil || !loan.Type.IsKnown() {
		errs = v.appendError(ctx, errs, ValidationError{Message: "Invalid loan type", Code: CodeInvalidLoanType})
		return ValidationResult{IsValid: false, Errors: errs}
	}

	r := v.ranges[loan.Type]
	label := string(loan.Type)
	prefix := "INVALID_" + strings.ToUpper(label) + "_LOAN"

	amount := float64(loan.Amount)
	if amount < r.MinAmount || amount > r.MaxAmount {
		errs = v.appendError(ctx, errs, ValidationError{
			Message: fmt.Sprintf("%s loan amount must be between $%s and $%s", label, formatBound(r.MinAmount), formatBound(r.MaxAmount)),
			Code:    prefix + "_AMOUNT",
		})
	}
	if loan.InterestRate < r.MinInterestRate || loan.InterestRate > r.MaxInterestRate {
		errs = v.appendError(ctx, errs, ValidationError{
			Message: fmt.Sprintf("%s loan interest rate must be between %s%% and %s%%", label, formatBound(r.MinInterestRate), formatBound(r.MaxInterestRate)),
			Code:    prefix + "_INTEREST_RATE",
		})
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func (v *loanValidator) appendError(ctx context.Context, errs []ValidationError, e ValidationError) []ValidationError {
	v.logger.WarnContext(ctx, "Validation Error", slog.String("message", e.Message), slog.String("code", e.Code))
	monitoring.RecordValidationFailure(e.Code)
	return append(errs, e)
}

func formatBound(f float64) string {
	return decimal.NewFromFloat(f).String()
}
