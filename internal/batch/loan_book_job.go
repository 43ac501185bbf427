package batch

import (
	"context"
	"fmt"
	"loan-service/internal/domain/loan"
	"loan-service/internal/infrastructure/monitoring"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// TypeSummary aggregates the stored loans of one type.
type TypeSummary struct {
	Count     int
	Principal decimal.Decimal
}

type LoanBookJob struct {
	loanRepo loan.Repository
	logger   *slog.Logger
	now      func() time.Time
}

func NewLoanBookJob(loanRepo loan.Repository, logger *slog.Logger) *LoanBookJob {
	if loanRepo == nil || logger == nil {
		panic("LoanBookJob dependencies cannot be nil")
	}
	return &LoanBookJob{
		loanRepo: loanRepo,
		logger:   logger.With("job", "LoanBook"),
		now:      time.Now,
	}
}

// Summarize groups every stored loan by type. Known types are always present.
func (j *LoanBookJob) Summarize(ctx context.Context) (map[loan.LoanType]TypeSummary, error) {
	loans, err := j.loanRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read loan book: %w", err)
	}

	book := make(map[loan.LoanType]TypeSummary, len(loan.LoanTypes()))
	for _, t := range loan.LoanTypes() {
		book[t] = TypeSummary{Principal: decimal.Zero}
	}
	for _, l := range loans {
		s, ok := book[l.Type]
		if !ok {
			j.logger.WarnContext(ctx, "Stored loan has unknown type", slog.String("loanID", l.ID), slog.String("type", string(l.Type)))
			s.Principal = decimal.Zero
		}
		s.Count++
		s.Principal = s.Principal.Add(decimal.NewFromInt(l.Amount))
		book[l.Type] = s
	}
	return book, nil
}

func (j *LoanBookJob) Run(ctx context.Context) error {
	startTime := j.now()
	j.logger.InfoContext(ctx, "Starting loan book snapshot job.")

	book, err := j.Summarize(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to summarize loan book, aborting job.", slog.Any("error", err))
		return err
	}

	total := 0
	for loanType, s := range book {
		principal, _ := s.Principal.Float64()
		monitoring.SetLoanBook(string(loanType), s.Count, principal)
		total += s.Count
		j.logger.DebugContext(ctx, "Loan book entry",
			slog.String("type", string(loanType)),
			slog.Int("count", s.Count),
			slog.String("principal", s.Principal.String()),
		)
	}
	monitoring.MarkLoanBookRun(startTime)

	j.logger.InfoContext(ctx, "Loan book snapshot job finished.",
		slog.Int("total_loans", total),
		slog.Duration("duration", j.now().Sub(startTime)),
	)
	return nil
}
