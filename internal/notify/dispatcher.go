// Package notify dostarcza powiadomienia do skrzynek czytelników
// i wspólnej skrzynki personelu.
package notify

import (
	"context"
	"log"

	"github.com/google/uuid"

	"library-portal/internal/models"
	"library-portal/internal/store"
)

// Dispatcher dopisuje powiadomienia do skrzynek adresatów.
// Dostarczanie jest best-effort: błąd zapisu nie może wycofać
// zatwierdzonej zmiany stanu, więc jest logowany i połykany.
type Dispatcher struct {
	store store.NotificationStore
}

// NewDispatcher tworzy dispatcher nad magazynem powiadomień
func NewDispatcher(store store.NotificationStore) *Dispatcher {
	return &Dispatcher{store: store}
}

// Notify dopisuje powiadomienie do skrzynki adresata.
// Nigdy nie zwraca błędu wywołującemu - utracone powiadomienie jest
// raportowane w logu, żeby operator mógł wykryć cichą utratę.
func (d *Dispatcher) Notify(ctx context.Context, targetID string, kind models.NotificationKind, title, body string, payload map[string]string) {
	n := &models.Notification{
		ID:       uuid.NewString(),
		TargetID: targetID,
		Kind:     kind,
		Title:    title,
		Body:     body,
		Payload:  payload,
	}

	if err := d.store.AppendNotification(ctx, n); err != nil {
		log.Printf("UTRATA POWIADOMIENIA: adresat=%s typ=%s: %v", targetID, kind, err)
	}
}

// Inbox zwraca powiadomienia adresata w kolejności doręczania
func (d *Dispatcher) Inbox(ctx context.Context, targetID string) ([]*models.Notification, error) {
	return d.store.ListNotifications(ctx, targetID)
}

// MarkRead oznacza powiadomienie jako przeczytane
func (d *Dispatcher) MarkRead(ctx context.Context, targetID, id string) error {
	return d.store.MarkNotificationRead(ctx, targetID, id)
}

// Delete usuwa powiadomienie ze skrzynki adresata
func (d *Dispatcher) Delete(ctx context.Context, targetID, id string) error {
	return d.store.DeleteNotification(ctx, targetID, id)
}
