package library

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-portal/internal/models"
	"library-portal/internal/store/memory"
)

func seedBook(t *testing.T, st *memory.Store, id string, total, available int) {
	t.Helper()
	err := st.PutBook(context.Background(), &models.Book{
		ID:              id,
		Title:           "Testowa książka " + id,
		Author:          "Autor Testowy",
		Category:        "Testy",
		TotalCopies:     total,
		AvailableCopies: available,
	})
	require.NoError(t, err)
}

func TestLedgerTryDecrement(t *testing.T) {
	ctx := context.Background()

	t.Run("zdejmuje egzemplarz gdy dostępny", func(t *testing.T) {
		st := memory.New()
		seedBook(t, st, "b1", 2, 2)
		ledger := NewLedger(st)

		ok, err := ledger.TryDecrement(ctx, "b1")
		require.NoError(t, err)
		assert.True(t, ok)

		book, err := st.GetBook(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, 1, book.AvailableCopies)
	})

	t.Run("odmawia bez efektu ubocznego gdy wyczerpany", func(t *testing.T) {
		st := memory.New()
		seedBook(t, st, "b1", 1, 0)
		ledger := NewLedger(st)

		ok, err := ledger.TryDecrement(ctx, "b1")
		require.NoError(t, err)
		assert.False(t, ok)

		book, err := st.GetBook(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, 0, book.AvailableCopies)
	})

	t.Run("współbieżne wywołania nigdy nie schodzą poniżej zera", func(t *testing.T) {
		st := memory.New()
		seedBook(t, st, "b1", 3, 3)
		ledger := NewLedger(st)

		const callers = 20
		var wg sync.WaitGroup
		results := make(chan bool, callers)

		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := ledger.TryDecrement(ctx, "b1")
				assert.NoError(t, err)
				results <- ok
			}()
		}
		wg.Wait()
		close(results)

		succeeded := 0
		for ok := range results {
			if ok {
				succeeded++
			}
		}
		assert.Equal(t, 3, succeeded)

		book, err := st.GetBook(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, 0, book.AvailableCopies)
	})
}

func TestLedgerIncrement(t *testing.T) {
	ctx := context.Background()

	t.Run("przywraca egzemplarz", func(t *testing.T) {
		st := memory.New()
		seedBook(t, st, "b1", 2, 1)
		ledger := NewLedger(st)

		require.NoError(t, ledger.Increment(ctx, "b1"))

		book, err := st.GetBook(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, 2, book.AvailableCopies)
	})

	t.Run("przycina przywrócenie ponad TotalCopies", func(t *testing.T) {
		st := memory.New()
		seedBook(t, st, "b1", 2, 2)
		ledger := NewLedger(st)

		require.NoError(t, ledger.Increment(ctx, "b1"))

		book, err := st.GetBook(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, 2, book.AvailableCopies)
	})
}
