// Package firestore to produkcyjny backend magazynu dokumentów portalu,
// oparty na Cloud Firestore. Atomowe aktualizacje realizują transakcje
// Firestore, a subskrypcje zmian - snapshot listenery dokumentów.
package firestore

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

const (
	// BooksCollection to nazwa kolekcji książek w Firestore
	BooksCollection = "books"
	// BorrowersCollection to nazwa kolekcji czytelników w Firestore
	BorrowersCollection = "borrowers"
	// RequestsCollection to nazwa kolekcji wniosków o rezerwację w Firestore
	RequestsCollection = "reservation_requests"
	// NotificationsCollection to nazwa kolekcji powiadomień w Firestore
	NotificationsCollection = "notifications"
)

// Store implementuje store.Store na kliencie Firestore
type Store struct {
	app    *firebase.App
	client *firestore.Client
}

// New inicjalizuje klienta Firestore na podstawie zmiennych środowiskowych
func New(ctx context.Context) (*Store, error) {
	var app *firebase.App
	var err error

	// Sprawdź czy jest plik credentials (rozwój lokalny)
	credentialsPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credentialsPath != "" {
		// Tryb lokalny - użyj pliku
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("plik credentials nie istnieje: %s", credentialsPath)
		}
		opt := option.WithCredentialsFile(credentialsPath)
		app, err = firebase.NewApp(ctx, nil, opt)
		if err != nil {
			return nil, fmt.Errorf("błąd inicjalizacji Firebase App: %w", err)
		}
	} else {
		// Tryb produkcyjny - użyj JSON z zmiennej środowiskowej
		credentialsJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON")
		if credentialsJSON == "" {
			return nil, fmt.Errorf("brak zmiennej środowiskowej FIREBASE_CREDENTIALS_PATH lub FIREBASE_CREDENTIALS_JSON")
		}
		opt := option.WithCredentialsJSON([]byte(credentialsJSON))
		app, err = firebase.NewApp(ctx, nil, opt)
		if err != nil {
			return nil, fmt.Errorf("błąd inicjalizacji Firebase App: %w", err)
		}
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("błąd inicjalizacji Firestore: %w", err)
	}

	log.Println("Firestore zainicjalizowany pomyślnie")
	return &Store{app: app, client: client}, nil
}

// Close zamyka połączenie z Firestore
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
