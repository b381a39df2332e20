package models

import "time"

// SlotState określa stan slotu rezerwacji
type SlotState string

const (
	SlotEmpty    SlotState = "empty"    // Wolny slot
	SlotReserved SlotState = "reserved" // Rezerwacja oczekuje na decyzję personelu
	SlotBorrowed SlotState = "borrowed" // Książka wypożyczona
)

// BookSnapshot to zdenormalizowana migawka książki zapisana w momencie rezerwacji
type BookSnapshot struct {
	BookID        string `json:"book_id" firestore:"book_id"`
	Title         string `json:"title" firestore:"title"`
	Category      string `json:"category" firestore:"category"`
	CoverImageURL string `json:"cover_image_url" firestore:"cover_image_url"`
}

// ReservationSlot to pojedynczy slot rezerwacji czytelnika.
// Dozwolone przejścia stanu: empty→reserved→borrowed→empty oraz reserved→empty.
type ReservationSlot struct {
	State      SlotState     `json:"state" firestore:"state"`
	Book       *BookSnapshot `json:"book,omitempty" firestore:"book,omitempty"`
	ReservedAt time.Time     `json:"reserved_at,omitempty" firestore:"reserved_at,omitempty"`
}

// IsEmpty sprawdza czy slot jest wolny
func (s *ReservationSlot) IsEmpty() bool {
	return s.State == SlotEmpty || s.State == ""
}

// Clear zwalnia slot i usuwa odwołanie do książki
func (s *ReservationSlot) Clear() {
	s.State = SlotEmpty
	s.Book = nil
	s.ReservedAt = time.Time{}
}

// Borrower reprezentuje czytelnika portalu bibliotecznego.
// Jeden dokument czytelnika przechowuje tablicę slotów rezerwacji
// oraz pełny dziennik wiadomości jego konwersacji z personelem.
type Borrower struct {
	ID        string    `json:"id" firestore:"id"` // Stabilny klucz zewnętrzny (email)
	Email     string    `json:"email" firestore:"email"`
	FirstName string    `json:"first_name" firestore:"first_name"`
	LastName  string    `json:"last_name" firestore:"last_name"`
	IsActive  bool      `json:"is_active" firestore:"is_active"`

	// Sloty są indeksowane od 1 do len(Slots) w całym API
	Slots []ReservationSlot `json:"slots" firestore:"slots"`

	// Dziennik wiadomości: kolejność wstawiania = kolejność chronologiczna
	Messages       []Message `json:"messages" firestore:"messages"`
	LastMessageSeq int64     `json:"last_message_seq" firestore:"last_message_seq"`
	LastMessageAt  time.Time `json:"last_message_at" firestore:"last_message_at"`

	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updated_at"`
}

// NewBorrower tworzy czytelnika z k pustymi slotami rezerwacji
func NewBorrower(id string, k int) *Borrower {
	now := time.Now()
	slots := make([]ReservationSlot, k)
	for i := range slots {
		slots[i].State = SlotEmpty
	}
	return &Borrower{
		ID:        id,
		Email:     id,
		IsActive:  true,
		Slots:     slots,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Slot zwraca wskaźnik na slot o indeksie 1..len(Slots); nil gdy indeks poza zakresem
func (b *Borrower) Slot(index int) *ReservationSlot {
	if index < 1 || index > len(b.Slots) {
		return nil
	}
	return &b.Slots[index-1]
}

// FindFreeSlot zwraca indeks pierwszego wolnego slotu (rosnąco); false gdy brak
func (b *Borrower) FindFreeSlot() (int, bool) {
	for i := range b.Slots {
		if b.Slots[i].IsEmpty() {
			return i + 1, true
		}
	}
	return 0, false
}

// HoldsBook sprawdza czy czytelnik trzyma już tę książkę w którymkolwiek slocie
func (b *Borrower) HoldsBook(bookID string) bool {
	for i := range b.Slots {
		if !b.Slots[i].IsEmpty() && b.Slots[i].Book != nil && b.Slots[i].Book.BookID == bookID {
			return true
		}
	}
	return false
}

// FullName zwraca pełne imię i nazwisko czytelnika
func (b *Borrower) FullName() string {
	if b.FirstName == "" && b.LastName == "" {
		return b.Email
	}
	return b.FirstName + " " + b.LastName
}
