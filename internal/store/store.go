// Package store definiuje interfejsy magazynu dokumentów portalu.
// Wszystkie mutacje współdzielonych agregatów (książka, czytelnik, wniosek)
// przechodzą przez atomowe operacje odczyt-modyfikacja-zapis, dzięki czemu
// backendy magazynu są wymienne (Firestore w produkcji, pamięć w testach).
package store

import (
	"context"
	"errors"

	"library-portal/internal/models"
)

// ErrNotFound zgłaszany gdy dokument o podanym kluczu nie istnieje
var ErrNotFound = errors.New("nie znaleziono dokumentu")

// BookStore przechowuje książki wraz z licznikami egzemplarzy
type BookStore interface {
	GetBook(ctx context.Context, id string) (*models.Book, error)
	PutBook(ctx context.Context, book *models.Book) error
	ListBooks(ctx context.Context) ([]*models.Book, error)

	// UpdateBook wykonuje fn na aktualnym stanie dokumentu i zapisuje wynik
	// atomowo względem współbieżnych wywołań na tym samym kluczu.
	// Błąd zwrócony przez fn przerywa operację bez zapisu.
	UpdateBook(ctx context.Context, id string, fn func(*models.Book) error) error
}

// BorrowerStore przechowuje czytelników (sloty rezerwacji + dziennik wiadomości)
type BorrowerStore interface {
	GetBorrower(ctx context.Context, id string) (*models.Borrower, error)
	PutBorrower(ctx context.Context, borrower *models.Borrower) error

	// UpdateBorrower serializuje mutacje per czytelnik - patrz UpdateBook
	UpdateBorrower(ctx context.Context, id string, fn func(*models.Borrower) error) error

	// WatchBorrower subskrybuje zmiany dokumentu czytelnika; fn jest wołane
	// po każdej mutacji. Zwrócona funkcja zatrzymuje subskrypcję.
	WatchBorrower(ctx context.Context, id string, fn func(*models.Borrower)) (func(), error)
}

// RequestStore przechowuje wnioski o rezerwację (kolekcja append-only, audyt)
type RequestStore interface {
	GetRequest(ctx context.Context, id string) (*models.ReservationRequest, error)
	CreateRequest(ctx context.Context, req *models.ReservationRequest) error
	ListPendingRequests(ctx context.Context) ([]*models.ReservationRequest, error)

	// UpdateRequest - atomowy check-and-set flagi Processed; patrz UpdateBook
	UpdateRequest(ctx context.Context, id string, fn func(*models.ReservationRequest) error) error
}

// NotificationStore przechowuje skrzynki powiadomień adresatów
type NotificationStore interface {
	AppendNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, targetID string) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, targetID, id string) error
	DeleteNotification(ctx context.Context, targetID, id string) error
}

// Store łączy wszystkie magazyny portalu w jeden backend
type Store interface {
	BookStore
	BorrowerStore
	RequestStore
	NotificationStore
}
