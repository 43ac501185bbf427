package memory

import (
	"context"
	"fmt"
	"loan-service/internal/domain/loan"
	"loan-service/internal/pkg/apperrors"
	"sync"

	"github.com/google/uuid"
)

// LoanRepository keeps loans in process memory in insertion order.
// Stored and returned values are copies.
type LoanRepository struct {
	mu    sync.RWMutex
	loans map[string]*loan.Loan
	order []string
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository() *LoanRepository {
	return &LoanRepository{loans: make(map[string]*loan.Loan)}
}

func (r *LoanRepository) FindAll(ctx context.Context) ([]*loan.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*loan.Loan, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.loans[id].Clone())
	}
	return out, nil
}

func (r *LoanRepository) FindByID(ctx context.Context, id string) (*loan.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.loans[id]
	if !ok {
		return nil, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, id)
	}
	return l.Clone(), nil
}

func (r *LoanRepository) Insert(ctx context.Context, l *loan.Loan) (*loan.Loan, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: loan cannot be nil", apperrors.ErrInvalidArgument)
	}

	stored := l.Clone()
	stored.ID = uuid.NewString()

	r.mu.Lock()
	r.loans[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	r.mu.Unlock()

	return stored.Clone(), nil
}

func (r *LoanRepository) UpdateByID(ctx context.Context, id string, l *loan.Loan) (int64, error) {
	if l == nil {
		return 0, fmt.Errorf("%w: loan cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loans[id]; !ok {
		return 0, nil
	}
	stored := l.Clone()
	stored.ID = id
	r.loans[id] = stored
	return 1, nil
}

func (r *LoanRepository) RemoveByID(ctx context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loans[id]; !ok {
		return 0, nil
	}
	delete(r.loans, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return 1, nil
}
