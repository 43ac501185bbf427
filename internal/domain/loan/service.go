package loan

import (
	"context"
	"errors"
	"fmt"
	"loan-service/internal/event"
	"loan-service/internal/infrastructure/monitoring"
	"loan-service/internal/pkg/apperrors"
	"log/slog"
	"time"
)

const (
	CodeRetrieveAllFailed = "RETRIEVE_ALL_FAILED"
	CodeRetrieveFailed    = "RETRIEVE_FAILED"
	CodeUpdateFailed      = "UPDATE_FAILED"
	CodeDeleteFailed      = "DELETE_FAILED"

	MessageNotFound = "Loan not found"
)

// Result is the envelope every loan operation answers with.
// Only the fields relevant to the operation are set.
type Result struct {
	Success bool
	Message string
	Errors  []ValidationError
	Loan    *Loan
	Loans   []*Loan
}

type LoanService interface {
	GetAllLoans(ctx context.Context) (*Result, error)
	GetLoanByID(ctx context.Context, id string) (*Result, error)
	CreateLoan(ctx context.Context, loan *Loan) (*Result, error)
	UpdateLoan(ctx context.Context, id string, loan *Loan) (*Result, error)
	DeleteLoan(ctx context.Context, id string) (*Result, error)
}

type loanServiceImpl struct {
	repo      Repository
	validator Validator
	terms     TermResolver
	publisher event.LoanEventPublisher
	logger    *slog.Logger
}

// NewLoanService wires the orchestrator. publisher may be nil when events are disabled.
func NewLoanService(repo Repository, validator Validator, terms TermResolver, publisher event.LoanEventPublisher, logger *slog.Logger) LoanService {
	if repo == nil {
		panic("loan repository cannot be nil")
	}
	if validator == nil {
		panic("loan validator cannot be nil")
	}
	if terms == nil {
		panic("term resolver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &loanServiceImpl{
		repo:      repo,
		validator: validator,
		terms:     terms,
		publisher: publisher,
		logger:    logger.With("component", "LoanService"),
	}
}

func (s *loanServiceImpl) GetAllLoans(ctx context.Context) (*Result, error) {
	loans, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to retrieve loans", slog.Any("error", err))
		monitoring.RecordLoanOperation("get_all", "failure")
		return nil, apperrors.NewAppError(CodeRetrieveAllFailed, "Failed to retrieve loans: "+err.Error(), err)
	}
	if loans == nil {
		loans = []*Loan{}
	}
	monitoring.RecordLoanOperation("get_all", "success")
	return &Result{Success: true, Loans: loans}, nil
}

func (s *loanServiceImpl) GetLoanByID(ctx context.Context, id string) (*Result, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to retrieve loan", slog.String("loanID", id), slog.Any("error", err))
		monitoring.RecordLoanOperation("get", "failure")
		return failure(err, CodeRetrieveFailed), nil
	}
	monitoring.RecordLoanOperation("get", "success")
	return &Result{Success: true, Loan: found}, nil
}

func (s *loanServiceImpl) CreateLoan(ctx context.Context, input *Loan) (*Result, error) {
	s.logger.InfoContext(ctx, "Creating new loan")

	validation := s.validator.ValidateLoan(ctx, input)
	if !validation.IsValid {
		monitoring.RecordLoanOperation("create", "invalid")
		return &Result{Success: false, Errors: validation.Errors}, nil
	}

	candidate, err := s.priced(input)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to resolve loan term", slog.Any("error", err))
		monitoring.RecordLoanOperation("create", "failure")
		return nil, err
	}
	candidate.ID = ""

	created, err := s.repo.Insert(ctx, candidate)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save loan", slog.Any("error", err))
		monitoring.RecordLoanOperation("create", "failure")
		return nil, fmt.Errorf("%w: failed to save loan: %w", apperrors.ErrInternalServer, err)
	}

	s.logger.InfoContext(ctx, "Loan created successfully", slog.String("loanID", created.ID))
	monitoring.RecordLoanOperation("create", "success")

	if s.publisher != nil {
		evt := event.LoanCreatedEvent{Timestamp: time.Now().UTC(), Payload: newLoanEventPayload(created)}
		if err := s.publisher.PublishLoanCreated(ctx, evt); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish loan created event", slog.String("loanID", created.ID), slog.Any("error", err))
		}
	}

	return &Result{Success: true, Message: "Loan created successfully", Loan: created}, nil
}

func (s *loanServiceImpl) UpdateLoan(ctx context.Context, id string, input *Loan) (*Result, error) {
	s.logger.InfoContext(ctx, "Updating loan", slog.String("loanID", id))

	validation := s.validator.ValidateLoan(ctx, input)
	if !validation.IsValid {
		monitoring.RecordLoanOperation("update", "invalid")
		return &Result{Success: false, Errors: validation.Errors}, nil
	}

	candidate, err := s.priced(input)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to resolve loan term", slog.Any("error", err))
		monitoring.RecordLoanOperation("update", "failure")
		return nil, err
	}
	candidate.ID = id

	affected, err := s.repo.UpdateByID(ctx, id, candidate)
	if err != nil || affected == 0 {
		s.logger.WarnContext(ctx, "Failed to update loan", slog.String("loanID", id), slog.Int64("affected", affected), slog.Any("error", err))
		monitoring.RecordLoanOperation("update", "failure")
		return failure(err, CodeUpdateFailed), nil
	}

	s.logger.InfoContext(ctx, "Loan updated successfully", slog.String("loanID", id))
	monitoring.RecordLoanOperation("update", "success")

	if s.publisher != nil {
		evt := event.LoanUpdatedEvent{Timestamp: time.Now().UTC(), Payload: newLoanEventPayload(candidate)}
		if err := s.publisher.PublishLoanUpdated(ctx, evt); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish loan updated event", slog.String("loanID", id), slog.Any("error", err))
		}
	}

	return &Result{Success: true, Message: "Loan updated successfully", Loan: candidate}, nil
}

func (s *loanServiceImpl) DeleteLoan(ctx context.Context, id string) (*Result, error) {
	s.logger.InfoContext(ctx, "Deleting loan", slog.String("loanID", id))

	affected, err := s.repo.RemoveByID(ctx, id)
	if err != nil || affected == 0 {
		s.logger.WarnContext(ctx, "Failed to delete loan", slog.String("loanID", id), slog.Int64("affected", affected), slog.Any("error", err))
		monitoring.RecordLoanOperation("delete", "failure")
		return failure(err, CodeDeleteFailed), nil
	}

	s.logger.InfoContext(ctx, "Loan deleted successfully", slog.String("loanID", id))
	monitoring.RecordLoanOperation("delete", "success")

	if s.publisher != nil {
		evt := event.LoanDeletedEvent{Timestamp: time.Now().UTC(), LoanID: id}
		if err := s.publisher.PublishLoanDeleted(ctx, evt); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish loan deleted event", slog.String("loanID", id), slog.Any("error", err))
		}
	}

	return &Result{Success: true, Message: "Loan deleted successfully"}, nil
}

// priced returns a copy of input with the monthly payment derived from the configured term.
func (s *loanServiceImpl) priced(input *Loan) (*Loan, error) {
	term, err := s.terms.LoanTerm(string(input.Type))
	if err != nil {
		return nil, err
	}
	candidate := input.Clone()
	payment := CalculateMonthlyPayment(float64(candidate.Amount), candidate.InterestRate, term)
	candidate.MonthlyPayment = &payment
	return candidate, nil
}

// failure builds a single-error envelope. Missing records and zero-count writes
// both read "Loan not found".
func failure(err error, code string) *Result {
	message := MessageNotFound
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		message = err.Error()
	}
	return &Result{Success: false, Errors: []ValidationError{{Message: message, Code: code}}}
}

func newLoanEventPayload(l *Loan) event.LoanEventPayload {
	return event.LoanEventPayload{
		LoanID:         l.ID,
		Name:           l.Name,
		Amount:         l.Amount,
		Type:           string(l.Type),
		Income:         l.Income,
		InterestRate:   l.InterestRate,
		MonthlyPayment: l.MonthlyPayment,
	}
}
