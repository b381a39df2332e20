package library

import (
	"context"
	"fmt"
	"time"

	"library-portal/internal/models"
	"library-portal/internal/store"
)

// Slots wykonuje operacje na tablicy slotów rezerwacji czytelnika.
// Każda mutacja przechodzi przez atomową aktualizację dokumentu czytelnika,
// więc dwa współbieżne wnioski tego samego czytelnika nie zajmą tego samego
// slotu.
type Slots struct {
	borrowers store.BorrowerStore
}

// NewSlots tworzy tablicę slotów nad magazynem czytelników
func NewSlots(borrowers store.BorrowerStore) *Slots {
	return &Slots{borrowers: borrowers}
}

// FindFreeSlot zwraca indeks pierwszego wolnego slotu czytelnika (od 1 rosnąco)
func (s *Slots) FindFreeSlot(ctx context.Context, borrowerID string) (int, error) {
	borrower, err := s.borrowers.GetBorrower(ctx, borrowerID)
	if err != nil {
		return 0, fmt.Errorf("błąd pobierania czytelnika: %w", err)
	}

	index, ok := borrower.FindFreeSlot()
	if !ok {
		return 0, ErrNoSlotAvailable
	}
	return index, nil
}

// Reserve przenosi slot empty→reserved i zapisuje migawkę książki
func (s *Slots) Reserve(ctx context.Context, borrowerID string, index int, snapshot models.BookSnapshot) error {
	return s.borrowers.UpdateBorrower(ctx, borrowerID, func(b *models.Borrower) error {
		slot := b.Slot(index)
		if slot == nil {
			return fmt.Errorf("slot %d poza zakresem 1..%d", index, len(b.Slots))
		}
		if !slot.IsEmpty() {
			return ErrSlotNotEmpty
		}

		slot.State = models.SlotReserved
		snap := snapshot
		slot.Book = &snap
		slot.ReservedAt = time.Now()
		return nil
	})
}

// ReserveFirstFree atomowo znajduje pierwszy wolny slot czytelnika
// (najniższy indeks wygrywa) i rezerwuje go. Wyszukanie i rezerwacja
// dzieją się w jednej aktualizacji, więc dwa współbieżne wnioski nie
// zajmą tego samego slotu. Zajęcie drugiego slotu tą samą książką jest
// blokowane polityką portalu.
func (s *Slots) ReserveFirstFree(ctx context.Context, borrowerID string, snapshot models.BookSnapshot) (int, error) {
	var index int

	err := s.borrowers.UpdateBorrower(ctx, borrowerID, func(b *models.Borrower) error {
		if b.HoldsBook(snapshot.BookID) {
			return ErrDuplicateReservation
		}

		idx, ok := b.FindFreeSlot()
		if !ok {
			return ErrNoSlotAvailable
		}

		slot := b.Slot(idx)
		slot.State = models.SlotReserved
		snap := snapshot
		slot.Book = &snap
		slot.ReservedAt = time.Now()

		index = idx
		return nil
	})
	if err != nil {
		return 0, err
	}

	return index, nil
}

// Promote przenosi slot reserved→borrowed
func (s *Slots) Promote(ctx context.Context, borrowerID string, index int) error {
	return s.borrowers.UpdateBorrower(ctx, borrowerID, func(b *models.Borrower) error {
		slot := b.Slot(index)
		if slot == nil {
			return fmt.Errorf("slot %d poza zakresem 1..%d", index, len(b.Slots))
		}
		if slot.State != models.SlotReserved {
			return ErrInvalidTransition
		}

		slot.State = models.SlotBorrowed
		return nil
	})
}

// Release zwalnia slot będący w stanie `from` (reserved albo borrowed)
// i zwraca migawkę książki, którą slot trzymał.
func (s *Slots) Release(ctx context.Context, borrowerID string, index int, from models.SlotState) (*models.BookSnapshot, error) {
	var released *models.BookSnapshot

	err := s.borrowers.UpdateBorrower(ctx, borrowerID, func(b *models.Borrower) error {
		slot := b.Slot(index)
		if slot == nil {
			return fmt.Errorf("slot %d poza zakresem 1..%d", index, len(b.Slots))
		}
		if slot.State != from {
			return ErrInvalidTransition
		}

		if slot.Book != nil {
			snap := *slot.Book
			released = &snap
		}
		slot.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return released, nil
}
