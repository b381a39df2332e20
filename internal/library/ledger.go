package library

import (
	"context"
	"errors"
	"fmt"
	"log"

	"library-portal/internal/models"
	"library-portal/internal/store"
)

// errLedgerExhausted przerywa transakcję TryDecrement bez zapisu
var errLedgerExhausted = errors.New("licznik egzemplarzy wyczerpany")

// Ledger prowadzi rachunek egzemplarzy per książka.
// Każda mutacja licznika przechodzi przez atomową aktualizację magazynu,
// więc dwa współbieżne wywołania na tej samej książce nigdy nie zaniżą
// ani nie zawyżą stanu.
type Ledger struct {
	books store.BookStore
}

// NewLedger tworzy rachunek egzemplarzy nad magazynem książek
func NewLedger(books store.BookStore) *Ledger {
	return &Ledger{books: books}
}

// TryDecrement zdejmuje jeden dostępny egzemplarz książki.
// Zwraca false bez efektu ubocznego, gdy nie ma dostępnych egzemplarzy.
func (l *Ledger) TryDecrement(ctx context.Context, bookID string) (bool, error) {
	err := l.books.UpdateBook(ctx, bookID, func(b *models.Book) error {
		if b.AvailableCopies <= 0 {
			return errLedgerExhausted
		}
		b.AvailableCopies--
		return nil
	})
	if errors.Is(err, errLedgerExhausted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("błąd aktualizacji licznika egzemplarzy: %w", err)
	}
	return true, nil
}

// Increment przywraca jeden egzemplarz książki.
// Przywrócenie ponad TotalCopies wskazuje na błąd logiki - licznik jest
// wtedy przycinany, a zdarzenie raportowane w logu do ręcznej rekoncyliacji.
func (l *Ledger) Increment(ctx context.Context, bookID string) error {
	err := l.books.UpdateBook(ctx, bookID, func(b *models.Book) error {
		if b.AvailableCopies >= b.TotalCopies {
			log.Printf("KOREKTA REJESTRU: książka %s ma już %d/%d dostępnych egzemplarzy - przywrócenie pominięte",
				bookID, b.AvailableCopies, b.TotalCopies)
			return nil
		}
		b.AvailableCopies++
		return nil
	})
	if err != nil {
		return fmt.Errorf("błąd przywracania egzemplarza: %w", err)
	}
	return nil
}
