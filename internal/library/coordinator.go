// Package library implementuje cykl życia rezerwacji: rachunek egzemplarzy,
// tablicę slotów czytelnika i koordynatora przeprowadzającego przejścia
// stanu slotu wraz z powiadomieniami.
//
// Maszyna stanów pojedynczego slotu:
//
//	empty --rezerwacja--> reserved --zatwierdzenie--> borrowed --zwrot--> empty
//	                      reserved --odrzucenie--> empty
package library

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"library-portal/internal/models"
	"library-portal/internal/notify"
	"library-portal/internal/store"
)

// Coordinator orkiestruje przydział slotów, decyzje personelu i zwroty.
// Sekwencja "zdejmij egzemplarz + zarezerwuj slot" jest logiczną transakcją:
// częściowa porażka uruchamia kompensujące przywrócenie egzemplarza.
type Coordinator struct {
	registry   *Registry
	ledger     *Ledger
	slots      *Slots
	books      store.BookStore
	requests   store.RequestStore
	dispatcher *notify.Dispatcher

	loanPeriodDays int
}

// NewCoordinator tworzy koordynatora rezerwacji.
// loanPeriodDays to okres wypożyczenia doliczany do daty decyzji.
func NewCoordinator(st store.Store, registry *Registry, ledger *Ledger, slots *Slots, dispatcher *notify.Dispatcher, loanPeriodDays int) *Coordinator {
	return &Coordinator{
		registry:       registry,
		ledger:         ledger,
		slots:          slots,
		books:          st,
		requests:       st,
		dispatcher:     dispatcher,
		loanPeriodDays: loanPeriodDays,
	}
}

// RequestReservation obsługuje wniosek czytelnika o rezerwację książki.
// Zwraca indeks przydzielonego slotu oraz ID wniosku oczekującego na decyzję.
func (c *Coordinator) RequestReservation(ctx context.Context, borrowerID, bookID string) (int, string, error) {
	borrower, err := c.registry.Ensure(ctx, borrowerID)
	if err != nil {
		return 0, "", err
	}

	book, err := c.books.GetBook(ctx, bookID)
	if err != nil {
		return 0, "", fmt.Errorf("błąd pobierania książki: %w", err)
	}

	// Szybka odmowa przed zdjęciem egzemplarza; rozstrzygająca weryfikacja
	// i tak odbywa się atomowo w ReserveFirstFree
	if borrower.HoldsBook(bookID) {
		return 0, "", ErrDuplicateReservation
	}
	if _, ok := borrower.FindFreeSlot(); !ok {
		return 0, "", ErrNoSlotAvailable
	}

	// Najpierw zdejmij egzemplarz, potem zajmij slot; porażka rezerwacji
	// slotu wymaga kompensującego przywrócenia egzemplarza
	ok, err := c.ledger.TryDecrement(ctx, bookID)
	if err != nil {
		return 0, "", err
	}
	if !ok {
		return 0, "", ErrNoCopyAvailable
	}

	slotIndex, err := c.slots.ReserveFirstFree(ctx, borrowerID, book.Snapshot())
	if err != nil {
		c.compensate(ctx, bookID, borrowerID, 0)
		return 0, "", err
	}

	req := &models.ReservationRequest{
		ID:           uuid.NewString(),
		BorrowerID:   borrowerID,
		BookID:       bookID,
		SlotIndex:    slotIndex,
		BookTitle:    book.Title,
		BorrowerName: borrower.FullName(),
		RequestedAt:  time.Now(),
	}
	if err := c.requests.CreateRequest(ctx, req); err != nil {
		// Bez zapisu audytowego personel nie może rozpatrzyć wniosku -
		// wycofaj slot i egzemplarz
		if _, relErr := c.slots.Release(ctx, borrowerID, slotIndex, models.SlotReserved); relErr != nil {
			log.Printf("BŁĄD WYCOFANIA SLOTU: czytelnik=%s slot=%d książka=%s: %v", borrowerID, slotIndex, bookID, relErr)
		}
		c.compensate(ctx, bookID, borrowerID, slotIndex)
		return 0, "", fmt.Errorf("błąd zapisywania wniosku o rezerwację: %w", err)
	}

	c.dispatcher.Notify(ctx, models.StaffInboxID, models.NotifyReservationRequested,
		"Nowy wniosek o rezerwację",
		fmt.Sprintf("%s prosi o książkę \"%s\"", req.BorrowerName, book.Title),
		map[string]string{
			"request_id":  req.ID,
			"borrower_id": borrowerID,
			"book_id":     bookID,
			"slot_index":  fmt.Sprintf("%d", slotIndex),
		})

	return slotIndex, req.ID, nil
}

// Approve zatwierdza wniosek o rezerwację (decyzja personelu).
// Flaga Processed jest ustawiana atomowo - powtórzone wywołanie kończy się
// ErrAlreadyProcessed bez zmiany stanu.
func (c *Coordinator) Approve(ctx context.Context, requestID, staffID string) error {
	req, err := c.claimRequest(ctx, requestID, staffID, models.DecisionApproved, "")
	if err != nil {
		return err
	}

	if err := c.slots.Promote(ctx, req.BorrowerID, req.SlotIndex); err != nil {
		// Wniosek jest już oznaczony jako rozpatrzony, a slot nie przeszedł
		// w borrowed - stan wymaga ręcznej weryfikacji
		log.Printf("USZKODZENIE STANU: zatwierdzony wniosek %s nie awansował slotu %d czytelnika %s: %v",
			requestID, req.SlotIndex, req.BorrowerID, err)
		return err
	}

	dueDate := time.Now().AddDate(0, 0, c.loanPeriodDays)
	c.dispatcher.Notify(ctx, req.BorrowerID, models.NotifyLoanValidated,
		"Wypożyczenie zatwierdzone",
		fmt.Sprintf("Książka \"%s\" czeka na Ciebie. Termin zwrotu: %s", req.BookTitle, dueDate.Format("2006-01-02")),
		map[string]string{
			"request_id": req.ID,
			"book_id":    req.BookID,
			"due_date":   dueDate.Format(time.RFC3339),
		})

	return nil
}

// Reject odrzuca wniosek o rezerwację (decyzja personelu).
// Zwalnia slot, przywraca egzemplarz i powiadamia czytelnika z podanym powodem.
func (c *Coordinator) Reject(ctx context.Context, requestID, staffID, reason string) error {
	req, err := c.claimRequest(ctx, requestID, staffID, models.DecisionRejected, reason)
	if err != nil {
		return err
	}

	if _, err := c.slots.Release(ctx, req.BorrowerID, req.SlotIndex, models.SlotReserved); err != nil {
		log.Printf("USZKODZENIE STANU: odrzucony wniosek %s nie zwolnił slotu %d czytelnika %s: %v",
			requestID, req.SlotIndex, req.BorrowerID, err)
		return err
	}

	if err := c.ledger.Increment(ctx, req.BookID); err != nil {
		// Porażka kompensacji - automatyczna ponowna próba groziłaby
		// podwójnym przywróceniem, więc tylko raportujemy kontekst
		log.Printf("BŁĄD KOMPENSACJI: książka=%s czytelnik=%s slot=%d wniosek=%s: %v",
			req.BookID, req.BorrowerID, req.SlotIndex, requestID, err)
		return err
	}

	body := fmt.Sprintf("Wniosek o książkę \"%s\" został odrzucony", req.BookTitle)
	if reason != "" {
		body += ": " + reason
	}
	c.dispatcher.Notify(ctx, req.BorrowerID, models.NotifyReservationRejected,
		"Wniosek odrzucony", body,
		map[string]string{
			"request_id": req.ID,
			"book_id":    req.BookID,
			"reason":     reason,
		})

	return nil
}

// ReturnBook obsługuje zwrot wypożyczonej książki (slot borrowed→empty)
func (c *Coordinator) ReturnBook(ctx context.Context, borrowerID string, slotIndex int) error {
	released, err := c.slots.Release(ctx, borrowerID, slotIndex, models.SlotBorrowed)
	if err != nil {
		return err
	}
	if released == nil {
		return fmt.Errorf("slot %d czytelnika %s nie trzymał odwołania do książki", slotIndex, borrowerID)
	}

	if err := c.ledger.Increment(ctx, released.BookID); err != nil {
		log.Printf("BŁĄD KOMPENSACJI: książka=%s czytelnik=%s slot=%d: %v",
			released.BookID, borrowerID, slotIndex, err)
		return err
	}

	c.dispatcher.Notify(ctx, borrowerID, models.NotifyReturnConfirmed,
		"Zwrot potwierdzony",
		fmt.Sprintf("Dziękujemy za zwrot książki \"%s\"", released.Title),
		map[string]string{"book_id": released.BookID})

	return nil
}

// claimRequest atomowo przejmuje wniosek do rozpatrzenia (check-and-set
// flagi Processed) i zwraca jego stan po oznaczeniu decyzją.
func (c *Coordinator) claimRequest(ctx context.Context, requestID, staffID string, decision models.RequestDecision, reason string) (*models.ReservationRequest, error) {
	var claimed models.ReservationRequest

	err := c.requests.UpdateRequest(ctx, requestID, func(r *models.ReservationRequest) error {
		if r.Processed {
			return ErrAlreadyProcessed
		}

		now := time.Now()
		r.Processed = true
		r.Decision = decision
		r.StaffID = staffID
		r.Reason = reason
		r.ProcessedAt = &now

		claimed = *r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &claimed, nil
}

// compensate przywraca egzemplarz po nieudanej rezerwacji slotu.
// Porażka samej kompensacji jest krytyczna: logujemy pełny kontekst,
// żeby umożliwić ręczną rekoncyliację rejestru.
func (c *Coordinator) compensate(ctx context.Context, bookID, borrowerID string, slotIndex int) {
	if err := c.ledger.Increment(ctx, bookID); err != nil {
		log.Printf("BŁĄD KOMPENSACJI: książka=%s czytelnik=%s slot=%d: %v", bookID, borrowerID, slotIndex, err)
	}
}
