package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-portal/internal/models"
	"library-portal/internal/store"
	"library-portal/internal/store/memory"
)

// brokenStore odmawia każdego zapisu - symuluje niedostępny magazyn
type brokenStore struct{}

func (brokenStore) AppendNotification(ctx context.Context, n *models.Notification) error {
	return errors.New("magazyn niedostępny")
}

func (brokenStore) ListNotifications(ctx context.Context, targetID string) ([]*models.Notification, error) {
	return nil, errors.New("magazyn niedostępny")
}

func (brokenStore) MarkNotificationRead(ctx context.Context, targetID, id string) error {
	return errors.New("magazyn niedostępny")
}

func (brokenStore) DeleteNotification(ctx context.Context, targetID, id string) error {
	return errors.New("magazyn niedostępny")
}

func TestNotifyAppendsToInbox(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	d := NewDispatcher(st)

	d.Notify(ctx, "anna@example.com", models.NotifyLoanValidated,
		"Wypożyczenie zatwierdzone", "Książka czeka na odbiór",
		map[string]string{"book_id": "b1"})

	inbox, err := d.Inbox(ctx, "anna@example.com")
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	n := inbox[0]
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, models.NotifyLoanValidated, n.Kind)
	assert.Equal(t, "Książka czeka na odbiór", n.Body)
	assert.Equal(t, "b1", n.Payload["book_id"])
	assert.False(t, n.Read)
}

func TestNotifySwallowsStoreFailure(t *testing.T) {
	// Powiadomienia są best-effort: porażka zapisu nie może dotrzeć
	// do wywołującego i wycofać zatwierdzonej zmiany stanu
	d := NewDispatcher(brokenStore{})

	assert.NotPanics(t, func() {
		d.Notify(context.Background(), "anna@example.com", models.NotifyReturnConfirmed,
			"Zwrot potwierdzony", "Dziękujemy", nil)
	})
}

func TestInboxLifecycle(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	d := NewDispatcher(st)

	d.Notify(ctx, models.StaffInboxID, models.NotifyReservationRequested, "Nowy wniosek", "treść", nil)
	d.Notify(ctx, models.StaffInboxID, models.NotifyReservationRequested, "Nowy wniosek", "treść", nil)

	inbox, err := d.Inbox(ctx, models.StaffInboxID)
	require.NoError(t, err)
	require.Len(t, inbox, 2)

	require.NoError(t, d.MarkRead(ctx, models.StaffInboxID, inbox[0].ID))
	inbox, err = d.Inbox(ctx, models.StaffInboxID)
	require.NoError(t, err)
	assert.True(t, inbox[0].Read)
	assert.False(t, inbox[1].Read)

	require.NoError(t, d.Delete(ctx, models.StaffInboxID, inbox[0].ID))
	inbox, err = d.Inbox(ctx, models.StaffInboxID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	assert.ErrorIs(t, d.MarkRead(ctx, models.StaffInboxID, "nieistniejące"), store.ErrNotFound)
}
