// Package memory to pamięciowa implementacja magazynu dokumentów,
// używana w testach i w trybie bez skonfigurowanego Firestore.
// Atomowość aktualizacji zapewnia mutex trzymany na czas całej
// sekwencji odczyt-modyfikacja-zapis.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"library-portal/internal/models"
	"library-portal/internal/store"
)

// Store przechowuje wszystkie kolekcje portalu w pamięci procesu
type Store struct {
	mu            sync.Mutex
	books         map[string]*models.Book
	borrowers     map[string]*models.Borrower
	requests      map[string]*models.ReservationRequest
	notifications map[string][]*models.Notification // klucz: skrzynka adresata

	watchMu   sync.Mutex
	watchers  map[string]map[int]func(*models.Borrower)
	nextWatch int
}

// New tworzy pusty magazyn pamięciowy
func New() *Store {
	return &Store{
		books:         make(map[string]*models.Book),
		borrowers:     make(map[string]*models.Borrower),
		requests:      make(map[string]*models.ReservationRequest),
		notifications: make(map[string][]*models.Notification),
		watchers:      make(map[string]map[int]func(*models.Borrower)),
	}
}

// GetBook pobiera książkę po ID
func (s *Store) GetBook(ctx context.Context, id string) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneBook(book), nil
}

// PutBook zapisuje książkę
func (s *Store) PutBook(ctx context.Context, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books[book.ID] = cloneBook(book)
	return nil
}

// ListBooks zwraca wszystkie książki posortowane po tytule
func (s *Store) ListBooks(ctx context.Context) ([]*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books := make([]*models.Book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, cloneBook(b))
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

// UpdateBook wykonuje atomową aktualizację książki
func (s *Store) UpdateBook(ctx context.Context, id string, fn func(*models.Book) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return store.ErrNotFound
	}

	updated := cloneBook(book)
	if err := fn(updated); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now()
	s.books[id] = updated
	return nil
}

// GetBorrower pobiera czytelnika po ID
func (s *Store) GetBorrower(ctx context.Context, id string) (*models.Borrower, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	borrower, ok := s.borrowers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneBorrower(borrower), nil
}

// PutBorrower zapisuje czytelnika
func (s *Store) PutBorrower(ctx context.Context, borrower *models.Borrower) error {
	s.mu.Lock()
	s.borrowers[borrower.ID] = cloneBorrower(borrower)
	snapshot := cloneBorrower(borrower)
	s.mu.Unlock()

	s.notifyWatchers(snapshot)
	return nil
}

// UpdateBorrower wykonuje atomową aktualizację czytelnika
func (s *Store) UpdateBorrower(ctx context.Context, id string, fn func(*models.Borrower) error) error {
	s.mu.Lock()

	borrower, ok := s.borrowers[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}

	updated := cloneBorrower(borrower)
	if err := fn(updated); err != nil {
		s.mu.Unlock()
		return err
	}

	updated.UpdatedAt = time.Now()
	s.borrowers[id] = updated
	snapshot := cloneBorrower(updated)
	s.mu.Unlock()

	s.notifyWatchers(snapshot)
	return nil
}

// WatchBorrower subskrybuje zmiany dokumentu czytelnika
func (s *Store) WatchBorrower(ctx context.Context, id string, fn func(*models.Borrower)) (func(), error) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	if s.watchers[id] == nil {
		s.watchers[id] = make(map[int]func(*models.Borrower))
	}
	key := s.nextWatch
	s.nextWatch++
	s.watchers[id][key] = fn

	return func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		delete(s.watchers[id], key)
	}, nil
}

func (s *Store) notifyWatchers(borrower *models.Borrower) {
	s.watchMu.Lock()
	fns := make([]func(*models.Borrower), 0, len(s.watchers[borrower.ID]))
	for _, fn := range s.watchers[borrower.ID] {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()

	for _, fn := range fns {
		fn(cloneBorrower(borrower))
	}
}

// GetRequest pobiera wniosek o rezerwację po ID
func (s *Store) GetRequest(ctx context.Context, id string) (*models.ReservationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cloned := *req
	return &cloned, nil
}

// CreateRequest zapisuje nowy wniosek o rezerwację
func (s *Store) CreateRequest(ctx context.Context, req *models.ReservationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cloned := *req
	s.requests[req.ID] = &cloned
	return nil
}

// ListPendingRequests zwraca wnioski oczekujące na decyzję, najstarsze najpierw
func (s *Store) ListPendingRequests(ctx context.Context) ([]*models.ReservationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*models.ReservationRequest
	for _, req := range s.requests {
		if !req.Processed {
			cloned := *req
			pending = append(pending, &cloned)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].RequestedAt.Before(pending[j].RequestedAt) })
	return pending, nil
}

// UpdateRequest wykonuje atomową aktualizację wniosku
func (s *Store) UpdateRequest(ctx context.Context, id string, fn func(*models.ReservationRequest) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return store.ErrNotFound
	}

	updated := *req
	if err := fn(&updated); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now()
	s.requests[id] = &updated
	return nil
}

// AppendNotification dopisuje powiadomienie do skrzynki adresata
func (s *Store) AppendNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cloned := *n
	s.notifications[n.TargetID] = append(s.notifications[n.TargetID], &cloned)
	return nil
}

// ListNotifications zwraca powiadomienia adresata w kolejności dopisywania
func (s *Store) ListNotifications(ctx context.Context, targetID string) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox := s.notifications[targetID]
	result := make([]*models.Notification, 0, len(inbox))
	for _, n := range inbox {
		cloned := *n
		result = append(result, &cloned)
	}
	return result, nil
}

// MarkNotificationRead oznacza powiadomienie jako przeczytane
func (s *Store) MarkNotificationRead(ctx context.Context, targetID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications[targetID] {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return store.ErrNotFound
}

// DeleteNotification usuwa powiadomienie ze skrzynki
func (s *Store) DeleteNotification(ctx context.Context, targetID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox := s.notifications[targetID]
	for i, n := range inbox {
		if n.ID == id {
			s.notifications[targetID] = append(inbox[:i], inbox[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func cloneBook(b *models.Book) *models.Book {
	cloned := *b
	return &cloned
}

func cloneBorrower(b *models.Borrower) *models.Borrower {
	cloned := *b

	cloned.Slots = make([]models.ReservationSlot, len(b.Slots))
	copy(cloned.Slots, b.Slots)
	for i := range cloned.Slots {
		if cloned.Slots[i].Book != nil {
			snap := *cloned.Slots[i].Book
			cloned.Slots[i].Book = &snap
		}
	}

	cloned.Messages = make([]models.Message, len(b.Messages))
	copy(cloned.Messages, b.Messages)

	return &cloned
}
