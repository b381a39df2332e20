package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-portal/internal/models"
	"library-portal/internal/store"
)

func TestBookRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := New()

	_, err := st.GetBook(ctx, "brak")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.PutBook(ctx, &models.Book{ID: "b1", Title: "Solaris", TotalCopies: 3, AvailableCopies: 3}))

	book, err := st.GetBook(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Solaris", book.Title)

	// Zwracany wskaźnik to kopia - mutacja nie przecieka do magazynu
	book.AvailableCopies = 0
	again, err := st.GetBook(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.AvailableCopies)
}

func TestUpdateBookIsAtomic(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.PutBook(ctx, &models.Book{ID: "b1", Title: "Solaris", TotalCopies: 100, AvailableCopies: 100}))

	// 100 współbieżnych dekrementacji schodzi dokładnie do zera
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.UpdateBook(ctx, "b1", func(b *models.Book) error {
				if b.AvailableCopies == 0 {
					return errors.New("wyczerpane")
				}
				b.AvailableCopies--
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	book, err := st.GetBook(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 0, book.AvailableCopies)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.PutBook(ctx, &models.Book{ID: "b1", AvailableCopies: 2}))

	sentinel := errors.New("odmowa")
	err := st.UpdateBook(ctx, "b1", func(b *models.Book) error {
		b.AvailableCopies = 0
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	book, err := st.GetBook(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 2, book.AvailableCopies, "nieudana aktualizacja nie może zostawić śladu")
}

func TestWatchBorrower(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.PutBorrower(ctx, models.NewBorrower("anna@example.com", 3)))

	updates := make(chan *models.Borrower, 4)
	cancel, err := st.WatchBorrower(ctx, "anna@example.com", func(b *models.Borrower) {
		updates <- b
	})
	require.NoError(t, err)

	require.NoError(t, st.UpdateBorrower(ctx, "anna@example.com", func(b *models.Borrower) error {
		b.Messages = append(b.Messages, models.Message{ID: "m1", Body: "halo"})
		return nil
	}))

	got := <-updates
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "m1", got.Messages[0].ID)

	// Po wyrejestrowaniu obserwator nie dostaje kolejnych zmian
	cancel()
	require.NoError(t, st.UpdateBorrower(ctx, "anna@example.com", func(b *models.Borrower) error {
		b.Messages = nil
		return nil
	}))
	select {
	case b := <-updates:
		t.Fatalf("obserwator dostał zmianę po wyrejestrowaniu: %+v", b)
	default:
	}
}

func TestWatchOtherBorrowerIsSilent(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.PutBorrower(ctx, models.NewBorrower("anna@example.com", 3)))

	updates := make(chan *models.Borrower, 1)
	cancel, err := st.WatchBorrower(ctx, "jan@example.com", func(b *models.Borrower) {
		updates <- b
	})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, st.UpdateBorrower(ctx, "anna@example.com", func(b *models.Borrower) error {
		return nil
	}))

	select {
	case <-updates:
		t.Fatal("obserwator dostał zmianę cudzego dokumentu")
	default:
	}
}

func TestPendingRequestsOrdering(t *testing.T) {
	ctx := context.Background()
	st := New()

	// Dopisane w odwrotnej kolejności, listowane najstarsze najpierw
	base := models.ReservationRequest{BorrowerID: "anna@example.com", BookID: "b1"}
	newer := base
	newer.ID = "r2"
	newer.RequestedAt = newer.RequestedAt.Add(1)
	older := base
	older.ID = "r1"

	require.NoError(t, st.CreateRequest(ctx, &newer))
	require.NoError(t, st.CreateRequest(ctx, &older))

	pending, err := st.ListPendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "r1", pending[0].ID)
	assert.Equal(t, "r2", pending[1].ID)

	// Rozpatrzone wnioski znikają z listy oczekujących
	require.NoError(t, st.UpdateRequest(ctx, "r1", func(r *models.ReservationRequest) error {
		r.Processed = true
		return nil
	}))
	pending, err = st.ListPendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "r2", pending[0].ID)
}

func TestNotificationInbox(t *testing.T) {
	ctx := context.Background()
	st := New()

	require.NoError(t, st.AppendNotification(ctx, &models.Notification{ID: "n1", TargetID: "anna@example.com"}))
	require.NoError(t, st.AppendNotification(ctx, &models.Notification{ID: "n2", TargetID: "anna@example.com"}))
	require.NoError(t, st.AppendNotification(ctx, &models.Notification{ID: "n3", TargetID: models.StaffInboxID}))

	inbox, err := st.ListNotifications(ctx, "anna@example.com")
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, "n1", inbox[0].ID)

	require.NoError(t, st.MarkNotificationRead(ctx, "anna@example.com", "n2"))
	inbox, _ = st.ListNotifications(ctx, "anna@example.com")
	assert.False(t, inbox[0].Read)
	assert.True(t, inbox[1].Read)

	require.NoError(t, st.DeleteNotification(ctx, "anna@example.com", "n1"))
	inbox, _ = st.ListNotifications(ctx, "anna@example.com")
	require.Len(t, inbox, 1)
	assert.Equal(t, "n2", inbox[0].ID)

	assert.ErrorIs(t, st.DeleteNotification(ctx, "anna@example.com", "n1"), store.ErrNotFound)

	// Skrzynka personelu jest osobna
	staff, err := st.ListNotifications(ctx, models.StaffInboxID)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "n3", staff[0].ID)
}
