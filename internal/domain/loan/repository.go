package loan

import (
	"context"
)

// Repository is the key-indexed loan store.
// FindByID wraps apperrors.ErrNotFound when no record matches.
// UpdateByID and RemoveByID report the number of affected records; zero means the key did not match.
type Repository interface {
	FindAll(ctx context.Context) ([]*Loan, error)

	FindByID(ctx context.Context, id string) (*Loan, error)

	Insert(ctx context.Context, loan *Loan) (*Loan, error)

	UpdateByID(ctx context.Context, id string, loan *Loan) (int64, error)

	RemoveByID(ctx context.Context, id string) (int64, error)
}
