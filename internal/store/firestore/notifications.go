package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"library-portal/internal/models"
	"library-portal/internal/store"
)

// AppendNotification dopisuje powiadomienie do kolekcji powiadomień
func (s *Store) AppendNotification(ctx context.Context, n *models.Notification) error {
	if n == nil {
		return fmt.Errorf("powiadomienie nie może być nil")
	}
	if n.TargetID == "" {
		return fmt.Errorf("ID adresata jest wymagane")
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	var docRef *firestore.DocumentRef
	if n.ID == "" {
		docRef = s.client.Collection(NotificationsCollection).NewDoc()
		n.ID = docRef.ID
	} else {
		docRef = s.client.Collection(NotificationsCollection).Doc(n.ID)
	}

	if _, err := docRef.Set(ctx, n); err != nil {
		return fmt.Errorf("błąd zapisywania powiadomienia: %w", err)
	}

	return nil
}

// ListNotifications pobiera powiadomienia adresata w kolejności dopisywania
func (s *Store) ListNotifications(ctx context.Context, targetID string) ([]*models.Notification, error) {
	if targetID == "" {
		return nil, fmt.Errorf("ID adresata nie może być puste")
	}

	var notifications []*models.Notification

	iter := s.client.Collection(NotificationsCollection).
		Where("target_id", "==", targetID).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji po powiadomieniach: %w", err)
		}

		var n models.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, fmt.Errorf("błąd parsowania powiadomienia: %w", err)
		}

		n.ID = doc.Ref.ID
		notifications = append(notifications, &n)
	}

	return notifications, nil
}

// MarkNotificationRead oznacza powiadomienie jako przeczytane
func (s *Store) MarkNotificationRead(ctx context.Context, targetID, id string) error {
	n, err := s.getNotification(ctx, targetID, id)
	if err != nil {
		return err
	}

	n.Read = true
	if _, err := s.client.Collection(NotificationsCollection).Doc(id).Set(ctx, n); err != nil {
		return fmt.Errorf("błąd aktualizacji powiadomienia: %w", err)
	}

	return nil
}

// DeleteNotification usuwa powiadomienie ze skrzynki adresata
func (s *Store) DeleteNotification(ctx context.Context, targetID, id string) error {
	if _, err := s.getNotification(ctx, targetID, id); err != nil {
		return err
	}

	if _, err := s.client.Collection(NotificationsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("błąd usuwania powiadomienia: %w", err)
	}

	return nil
}

// getNotification pobiera powiadomienie i weryfikuje przynależność do skrzynki
func (s *Store) getNotification(ctx context.Context, targetID, id string) (*models.Notification, error) {
	if id == "" {
		return nil, fmt.Errorf("ID powiadomienia nie może być puste")
	}

	doc, err := s.client.Collection(NotificationsCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania powiadomienia: %w", err)
	}

	var n models.Notification
	if err := doc.DataTo(&n); err != nil {
		return nil, fmt.Errorf("błąd parsowania powiadomienia: %w", err)
	}
	n.ID = doc.Ref.ID

	if n.TargetID != targetID {
		return nil, store.ErrNotFound
	}

	return &n, nil
}
