package library

import (
	"context"
	"errors"
	"fmt"

	"library-portal/internal/models"
	"library-portal/internal/store"
)

// Registry zakłada konto czytelnika przy pierwszym kontakcie z portalem.
// Nowy czytelnik dostaje skonfigurowaną liczbę pustych slotów rezerwacji.
type Registry struct {
	borrowers store.BorrowerStore
	slotCount int
}

// NewRegistry tworzy rejestr czytelników; slotCount to liczba slotów K
func NewRegistry(borrowers store.BorrowerStore, slotCount int) *Registry {
	return &Registry{borrowers: borrowers, slotCount: slotCount}
}

// Ensure zwraca czytelnika o podanym ID, zakładając konto gdy nie istnieje
func (r *Registry) Ensure(ctx context.Context, borrowerID string) (*models.Borrower, error) {
	if borrowerID == "" {
		return nil, fmt.Errorf("ID czytelnika nie może być puste")
	}

	borrower, err := r.borrowers.GetBorrower(ctx, borrowerID)
	if err == nil {
		return borrower, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("błąd pobierania czytelnika: %w", err)
	}

	borrower = models.NewBorrower(borrowerID, r.slotCount)
	if err := r.borrowers.PutBorrower(ctx, borrower); err != nil {
		return nil, fmt.Errorf("błąd zakładania konta czytelnika: %w", err)
	}
	return borrower, nil
}
