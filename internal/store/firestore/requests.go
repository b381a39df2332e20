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

// GetRequest pobiera wniosek o rezerwację po ID
func (s *Store) GetRequest(ctx context.Context, id string) (*models.ReservationRequest, error) {
	if id == "" {
		return nil, fmt.Errorf("ID wniosku nie może być puste")
	}

	doc, err := s.client.Collection(RequestsCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania wniosku: %w", err)
	}

	var req models.ReservationRequest
	if err := doc.DataTo(&req); err != nil {
		return nil, fmt.Errorf("błąd parsowania danych wniosku: %w", err)
	}

	req.ID = doc.Ref.ID
	return &req, nil
}

// CreateRequest zapisuje nowy wniosek o rezerwację
func (s *Store) CreateRequest(ctx context.Context, req *models.ReservationRequest) error {
	if req == nil {
		return fmt.Errorf("wniosek nie może być nil")
	}
	if req.BookID == "" || req.BorrowerID == "" {
		return fmt.Errorf("ID książki i czytelnika są wymagane")
	}

	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	var docRef *firestore.DocumentRef
	if req.ID == "" {
		docRef = s.client.Collection(RequestsCollection).NewDoc()
		req.ID = docRef.ID
	} else {
		docRef = s.client.Collection(RequestsCollection).Doc(req.ID)
	}

	if _, err := docRef.Set(ctx, req); err != nil {
		return fmt.Errorf("błąd zapisywania wniosku: %w", err)
	}

	return nil
}

// ListPendingRequests pobiera wnioski oczekujące na decyzję, najstarsze najpierw
func (s *Store) ListPendingRequests(ctx context.Context) ([]*models.ReservationRequest, error) {
	var requests []*models.ReservationRequest

	iter := s.client.Collection(RequestsCollection).
		Where("processed", "==", false).
		OrderBy("requested_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji po wnioskach: %w", err)
		}

		var req models.ReservationRequest
		if err := doc.DataTo(&req); err != nil {
			return nil, fmt.Errorf("błąd parsowania wniosku: %w", err)
		}

		req.ID = doc.Ref.ID
		requests = append(requests, &req)
	}

	return requests, nil
}

// UpdateRequest wykonuje fn na dokumencie wniosku w transakcji Firestore.
// Transakcja gwarantuje atomowy check-and-set flagi Processed.
func (s *Store) UpdateRequest(ctx context.Context, id string, fn func(*models.ReservationRequest) error) error {
	if id == "" {
		return fmt.Errorf("ID wniosku nie może być puste")
	}

	docRef := s.client.Collection(RequestsCollection).Doc(id)

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if status.Code(err) == codes.NotFound {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}

		var req models.ReservationRequest
		if err := doc.DataTo(&req); err != nil {
			return fmt.Errorf("błąd parsowania danych wniosku: %w", err)
		}
		req.ID = doc.Ref.ID

		if err := fn(&req); err != nil {
			return err
		}

		req.UpdatedAt = time.Now()
		return tx.Set(docRef, &req)
	})
}
