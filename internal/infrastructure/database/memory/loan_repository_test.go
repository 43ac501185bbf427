package memory

import (
	"context"
	"loan-service/internal/domain/loan"
	"loan-service/internal/pkg/apperrors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Insert assigns a uuid and stores a copy", func(t *testing.T) {
		repo := NewLoanRepository()
		input := &loan.Loan{ID: "ignored", Name: "Jane", Amount: 5000, Type: loan.TypePersonal}

		created, err := repo.Insert(ctx, input)
		require.NoError(t, err)
		_, err = uuid.Parse(created.ID)
		assert.NoError(t, err)
		assert.Equal(t, "ignored", input.ID)

		created.Name = "mutated"
		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane", found.Name)
	})

	t.Run("FindAll keeps insertion order", func(t *testing.T) {
		repo := NewLoanRepository()
		a, _ := repo.Insert(ctx, &loan.Loan{Name: "A"})
		b, _ := repo.Insert(ctx, &loan.Loan{Name: "B"})
		c, _ := repo.Insert(ctx, &loan.Loan{Name: "C"})

		_, err := repo.RemoveByID(ctx, b.ID)
		require.NoError(t, err)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, a.ID, all[0].ID)
		assert.Equal(t, c.ID, all[1].ID)
	})

	t.Run("FindAll on empty store", func(t *testing.T) {
		all, err := NewLoanRepository().FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("FindByID missing", func(t *testing.T) {
		_, err := NewLoanRepository().FindByID(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("UpdateByID replaces the record", func(t *testing.T) {
		repo := NewLoanRepository()
		created, _ := repo.Insert(ctx, &loan.Loan{Name: "A", Amount: 1})

		n, err := repo.UpdateByID(ctx, created.ID, &loan.Loan{Name: "B", Amount: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		found, _ := repo.FindByID(ctx, created.ID)
		assert.Equal(t, "B", found.Name)
		assert.Equal(t, created.ID, found.ID)

		n, err = repo.UpdateByID(ctx, "missing", &loan.Loan{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("RemoveByID counts", func(t *testing.T) {
		repo := NewLoanRepository()
		created, _ := repo.Insert(ctx, &loan.Loan{Name: "A"})

		n, err := repo.RemoveByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repo.RemoveByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("Nil input", func(t *testing.T) {
		repo := NewLoanRepository()
		_, err := repo.Insert(ctx, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		_, err = repo.UpdateByID(ctx, "x", nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})

	t.Run("Concurrent inserts", func(t *testing.T) {
		repo := NewLoanRepository()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = repo.Insert(ctx, &loan.Loan{Name: "x"})
			}()
		}
		wg.Wait()

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 50)
	})
}
