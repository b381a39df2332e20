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

// GetBook pobiera książkę po ID
func (s *Store) GetBook(ctx context.Context, id string) (*models.Book, error) {
	if id == "" {
		return nil, fmt.Errorf("ID książki nie może być puste")
	}

	doc, err := s.client.Collection(BooksCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania książki: %w", err)
	}

	var book models.Book
	if err := doc.DataTo(&book); err != nil {
		return nil, fmt.Errorf("błąd parsowania danych książki: %w", err)
	}

	// Ustaw ID z dokumentu Firestore
	book.ID = doc.Ref.ID

	return &book, nil
}

// PutBook zapisuje książkę
func (s *Store) PutBook(ctx context.Context, book *models.Book) error {
	if book == nil {
		return fmt.Errorf("książka nie może być nil")
	}
	if book.Title == "" {
		return fmt.Errorf("tytuł książki jest wymagany")
	}

	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	// Jeśli nie ma ID, Firestore wygeneruje automatycznie
	var docRef *firestore.DocumentRef
	if book.ID == "" {
		docRef = s.client.Collection(BooksCollection).NewDoc()
		book.ID = docRef.ID
	} else {
		docRef = s.client.Collection(BooksCollection).Doc(book.ID)
	}

	if _, err := docRef.Set(ctx, book); err != nil {
		return fmt.Errorf("błąd zapisywania książki: %w", err)
	}

	return nil
}

// ListBooks pobiera listę wszystkich książek posortowaną po tytule
func (s *Store) ListBooks(ctx context.Context) ([]*models.Book, error) {
	var books []*models.Book

	iter := s.client.Collection(BooksCollection).
		OrderBy("title", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji po książkach: %w", err)
		}

		var book models.Book
		if err := doc.DataTo(&book); err != nil {
			return nil, fmt.Errorf("błąd parsowania książki: %w", err)
		}

		book.ID = doc.Ref.ID
		books = append(books, &book)
	}

	return books, nil
}

// UpdateBook wykonuje fn na dokumencie książki w transakcji Firestore
func (s *Store) UpdateBook(ctx context.Context, id string, fn func(*models.Book) error) error {
	if id == "" {
		return fmt.Errorf("ID książki nie może być puste")
	}

	docRef := s.client.Collection(BooksCollection).Doc(id)

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if status.Code(err) == codes.NotFound {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}

		var book models.Book
		if err := doc.DataTo(&book); err != nil {
			return fmt.Errorf("błąd parsowania danych książki: %w", err)
		}
		book.ID = doc.Ref.ID

		if err := fn(&book); err != nil {
			return err
		}

		book.UpdatedAt = time.Now()
		return tx.Set(docRef, &book)
	})
}
