package postgres

import (
	"context"
	"errors"
	"fmt"
	"loan-service/internal/domain/loan"
	"loan-service/internal/infrastructure/monitoring"
	"loan-service/internal/pkg/apperrors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const storeName = "postgres"

type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		amount BIGINT NOT NULL,
		type TEXT NOT NULL,
		income BIGINT NOT NULL,
		interest_rate DOUBLE PRECISION NOT NULL,
		monthly_payment DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

const loanColumns = `id, name, amount, type, income, interest_rate, monthly_payment`

const (
	findAllLoansSQL = `SELECT ` + loanColumns + ` FROM loans ORDER BY created_at, id`
	findLoanSQL     = `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	insertLoanSQL   = `
	INSERT INTO loans (id, name, amount, type, income, interest_rate, monthly_payment, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	RETURNING ` + loanColumns
	updateLoanSQL = `
	UPDATE loans
	SET name = $1,
		amount = $2,
		type = $3,
		income = $4,
		interest_rate = $5,
		monthly_payment = $6,
		updated_at = NOW()
	WHERE id = $7`
	deleteLoanSQL = `DELETE FROM loans WHERE id = $1`
)

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository", "store", storeName)}
}

// EnsureSchema creates the loans table when it does not exist yet.
func (r *LoanRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		r.logger.ErrorContext(ctx, "Failed to ensure loans schema", "error", err)
		return apperrors.WrapDatabaseError(err, "failed to ensure loans schema")
	}
	return nil
}

func (r *LoanRepository) FindAll(ctx context.Context) (loans []*loan.Loan, err error) {
	defer r.observe("find_all", time.Now(), &err)

	rows, err := r.db.Query(ctx, findAllLoansSQL)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to query loans")
	}
	defer rows.Close()

	loans = make([]*loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "error", err)
			return nil, apperrors.WrapDatabaseError(err, "failed to scan loan row")
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan rows", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to iterate loan rows")
	}

	return loans, nil
}

func (r *LoanRepository) FindByID(ctx context.Context, id string) (found *loan.Loan, err error) {
	defer r.observe("find_by_id", time.Now(), &err)

	found, err = scanLoan(r.db.QueryRow(ctx, findLoanSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", id)
			return nil, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, id)
		}
		r.logger.ErrorContext(ctx, "Failed to get loan", "loan_id", id, "error", err)
		return nil, apperrors.WrapDatabaseError(err, fmt.Sprintf("failed to get loan %s", id))
	}
	return found, nil
}

func (r *LoanRepository) Insert(ctx context.Context, l *loan.Loan) (created *loan.Loan, err error) {
	defer r.observe("insert", time.Now(), &err)

	created, err = scanLoan(r.db.QueryRow(ctx, insertLoanSQL,
		uuid.NewString(), l.Name, l.Amount, string(l.Type), l.Income, l.InterestRate, l.MonthlyPayment,
	))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to insert loan")
	}

	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.ID)
	return created, nil
}

func (r *LoanRepository) UpdateByID(ctx context.Context, id string, l *loan.Loan) (affected int64, err error) {
	defer r.observe("update_by_id", time.Now(), &err)

	tag, err := r.db.Exec(ctx, updateLoanSQL, l.Name, l.Amount, string(l.Type), l.Income, l.InterestRate, l.MonthlyPayment, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan", "loan_id", id, "error", err)
		return 0, apperrors.WrapDatabaseError(err, fmt.Sprintf("failed to update loan %s", id))
	}
	return tag.RowsAffected(), nil
}

func (r *LoanRepository) RemoveByID(ctx context.Context, id string) (affected int64, err error) {
	defer r.observe("remove_by_id", time.Now(), &err)

	tag, err := r.db.Exec(ctx, deleteLoanSQL, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete loan", "loan_id", id, "error", err)
		return 0, apperrors.WrapDatabaseError(err, fmt.Sprintf("failed to delete loan %s", id))
	}
	return tag.RowsAffected(), nil
}

func (r *LoanRepository) observe(queryName string, start time.Time, err *error) {
	monitoring.RecordDBQuery(storeName, queryName, monitoring.QueryStatus(*err), time.Since(start))
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var (
		l        loan.Loan
		loanType string
		payment  pgtype.Float8
	)
	if err := row.Scan(&l.ID, &l.Name, &l.Amount, &loanType, &l.Income, &l.InterestRate, &payment); err != nil {
		return nil, err
	}
	l.Type = loan.LoanType(loanType)
	if payment.Valid {
		v := payment.Float64
		l.MonthlyPayment = &v
	}
	return &l, nil
}
