package firestore

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"library-portal/internal/models"
	"library-portal/internal/store"
)

// GetBorrower pobiera czytelnika po ID
func (s *Store) GetBorrower(ctx context.Context, id string) (*models.Borrower, error) {
	if id == "" {
		return nil, fmt.Errorf("ID czytelnika nie może być puste")
	}

	doc, err := s.client.Collection(BorrowersCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania czytelnika: %w", err)
	}

	var borrower models.Borrower
	if err := doc.DataTo(&borrower); err != nil {
		return nil, fmt.Errorf("błąd parsowania danych czytelnika: %w", err)
	}

	borrower.ID = doc.Ref.ID
	return &borrower, nil
}

// PutBorrower zapisuje czytelnika
func (s *Store) PutBorrower(ctx context.Context, borrower *models.Borrower) error {
	if borrower == nil {
		return fmt.Errorf("czytelnik nie może być nil")
	}
	if borrower.ID == "" {
		return fmt.Errorf("ID czytelnika nie może być puste")
	}

	now := time.Now()
	if borrower.CreatedAt.IsZero() {
		borrower.CreatedAt = now
	}
	borrower.UpdatedAt = now

	docRef := s.client.Collection(BorrowersCollection).Doc(borrower.ID)
	if _, err := docRef.Set(ctx, borrower); err != nil {
		return fmt.Errorf("błąd zapisywania czytelnika: %w", err)
	}

	return nil
}

// UpdateBorrower wykonuje fn na dokumencie czytelnika w transakcji Firestore.
// Transakcja serializuje współbieżne mutacje slotów i dziennika wiadomości
// tego samego czytelnika.
func (s *Store) UpdateBorrower(ctx context.Context, id string, fn func(*models.Borrower) error) error {
	if id == "" {
		return fmt.Errorf("ID czytelnika nie może być puste")
	}

	docRef := s.client.Collection(BorrowersCollection).Doc(id)

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if status.Code(err) == codes.NotFound {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}

		var borrower models.Borrower
		if err := doc.DataTo(&borrower); err != nil {
			return fmt.Errorf("błąd parsowania danych czytelnika: %w", err)
		}
		borrower.ID = doc.Ref.ID

		if err := fn(&borrower); err != nil {
			return err
		}

		borrower.UpdatedAt = time.Now()
		return tx.Set(docRef, &borrower)
	})
}

// WatchBorrower subskrybuje snapshoty dokumentu czytelnika
func (s *Store) WatchBorrower(ctx context.Context, id string, fn func(*models.Borrower)) (func(), error) {
	if id == "" {
		return nil, fmt.Errorf("ID czytelnika nie może być puste")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	iter := s.client.Collection(BorrowersCollection).Doc(id).Snapshots(watchCtx)

	go func() {
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				// Anulowanie subskrypcji albo utrata połączenia - kończymy pętlę
				if watchCtx.Err() == nil {
					log.Printf("Subskrypcja czytelnika %s przerwana: %v", id, err)
				}
				return
			}
			if !snap.Exists() {
				continue
			}

			var borrower models.Borrower
			if err := snap.DataTo(&borrower); err != nil {
				log.Printf("Błąd parsowania snapshotu czytelnika %s: %v", id, err)
				continue
			}
			borrower.ID = snap.Ref.ID
			fn(&borrower)
		}
	}()

	return cancel, nil
}
