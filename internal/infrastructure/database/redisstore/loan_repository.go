package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"loan-service/internal/domain/loan"
	"loan-service/internal/infrastructure/monitoring"
	"loan-service/internal/pkg/apperrors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const storeName = "redis"

// loanDocument is the JSON value stored under {prefix}:loan:{id}.
type loanDocument struct {
	ID             string   `json:"_id"`
	Name           string   `json:"name"`
	Amount         int64    `json:"amount"`
	Type           string   `json:"type"`
	Income         int64    `json:"income"`
	InterestRate   float64  `json:"interestRate"`
	MonthlyPayment *float64 `json:"monthlyPayment,omitempty"`
}

// LoanRepository stores each loan as a JSON document and keeps a sorted set
// of ids scored by insertion time so FindAll returns insertion order.
type LoanRepository struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(client redis.UniversalClient, prefix string, logger *slog.Logger) *LoanRepository {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = "loans"
	}
	return &LoanRepository{
		client: client,
		prefix: prefix,
		logger: logger.With("component", "LoanRepository", "store", storeName),
	}
}

func (r *LoanRepository) loanKey(id string) string {
	return fmt.Sprintf("%s:loan:%s", r.prefix, id)
}

func (r *LoanRepository) indexKey() string {
	return r.prefix + ":loan:ids"
}

func (r *LoanRepository) FindAll(ctx context.Context) (loans []*loan.Loan, err error) {
	defer r.observe("find_all", time.Now(), &err)

	ids, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to read loan index", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to read loan index")
	}

	loans = make([]*loan.Loan, 0, len(ids))
	if len(ids) == 0 {
		return loans, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.loanKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to read loan documents", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to read loan documents")
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a document, skipped until the next removal cleans it up
			r.logger.WarnContext(ctx, "Loan document missing for indexed id", "loan_id", ids[i])
			continue
		}
		l, err := decodeLoan(raw)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to decode loan document", "loan_id", ids[i], "error", err)
			return nil, apperrors.WrapDatabaseError(err, "failed to decode loan document")
		}
		loans = append(loans, l)
	}
	return loans, nil
}

func (r *LoanRepository) FindByID(ctx context.Context, id string) (found *loan.Loan, err error) {
	defer r.observe("find_by_id", time.Now(), &err)

	raw, err := r.client.Get(ctx, r.loanKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", id)
			return nil, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, id)
		}
		r.logger.ErrorContext(ctx, "Failed to get loan", "loan_id", id, "error", err)
		return nil, apperrors.WrapDatabaseError(err, fmt.Sprintf("failed to get loan %s", id))
	}

	found, err = decodeLoan(raw)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err, fmt.Sprintf("failed to decode loan %s", id))
	}
	return found, nil
}

func (r *LoanRepository) Insert(ctx context.Context, l *loan.Loan) (created *loan.Loan, err error) {
	defer r.observe("insert", time.Now(), &err)

	created = l.Clone()
	created.ID = uuid.NewString()

	body, err := encodeLoan(created)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode loan: %w", apperrors.ErrInternalServer, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, r.loanKey(created.ID), body, 0)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(time.Now().UnixNano()), Member: created.ID})
		return nil
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to insert loan")
	}

	r.logger.InfoContext(ctx, "Loan created in Redis", "loan_id", created.ID)
	return created, nil
}

func (r *LoanRepository) UpdateByID(ctx context.Context, id string, l *loan.Loan) (affected int64, err error) {
	defer r.observe("update_by_id", time.Now(), &err)

	doc := l.Clone()
	doc.ID = id
	body, err := encodeLoan(doc)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to encode loan: %w", apperrors.ErrInternalServer, err)
	}

	updated, err := r.client.SetXX(ctx, r.loanKey(id), body, 0).Result()
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan", "loan_id", id, "error", err)
		return 0, apperrors.WrapDatabaseError(err, fmt.Sprintf("failed to update loan %s", id))
	}
	if !updated {
		return 0, nil
	}
	return 1, nil
}

func (r *LoanRepository) RemoveByID(ctx context.Context, id string) (affected int64, err error) {
	defer r.observe("remove_by_id", time.Now(), &err)

	var del *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.loanKey(id))
		pipe.ZRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete loan", "loan_id", id, "error", err)
		return 0, apperrors.WrapDatabaseError(err, fmt.Sprintf("failed to delete loan %s", id))
	}
	return del.Val(), nil
}

func (r *LoanRepository) observe(queryName string, start time.Time, err *error) {
	monitoring.RecordDBQuery(storeName, queryName, monitoring.QueryStatus(*err), time.Since(start))
}

func encodeLoan(l *loan.Loan) ([]byte, error) {
	return json.Marshal(loanDocument{
		ID:             l.ID,
		Name:           l.Name,
		Amount:         l.Amount,
		Type:           string(l.Type),
		Income:         l.Income,
		InterestRate:   l.InterestRate,
		MonthlyPayment: l.MonthlyPayment,
	})
}

func decodeLoan(raw string) (*loan.Loan, error) {
	var doc loanDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return &loan.Loan{
		ID:             doc.ID,
		Name:           doc.Name,
		Amount:         doc.Amount,
		Type:           loan.LoanType(doc.Type),
		Income:         doc.Income,
		InterestRate:   doc.InterestRate,
		MonthlyPayment: doc.MonthlyPayment,
	}, nil
}
