package library

import "errors"

// Błędy pojemności - oczekiwane, zwracane wprost do wywołującego
var (
	// ErrNoSlotAvailable - czytelnik wykorzystał wszystkie sloty rezerwacji
	ErrNoSlotAvailable = errors.New("brak wolnego slotu rezerwacji")
	// ErrNoCopyAvailable - wszystkie egzemplarze książki są wypożyczone lub zarezerwowane
	ErrNoCopyAvailable = errors.New("brak dostępnych egzemplarzy książki")
)

// Błędy stanu - sygnalizują wyścig albo zduplikowaną akcję
var (
	// ErrSlotNotEmpty - próba rezerwacji zajętego slotu
	ErrSlotNotEmpty = errors.New("slot nie jest pusty")
	// ErrInvalidTransition - niedozwolona zmiana stanu slotu
	ErrInvalidTransition = errors.New("niedozwolona zmiana stanu slotu")
	// ErrAlreadyProcessed - wniosek został już rozpatrzony przez personel
	ErrAlreadyProcessed = errors.New("wniosek został już rozpatrzony")
	// ErrDuplicateReservation - czytelnik trzyma już tę książkę w innym slocie
	ErrDuplicateReservation = errors.New("czytelnik ma już aktywną rezerwację tej książki")
)
