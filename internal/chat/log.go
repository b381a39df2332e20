// Package chat implementuje dziennik wiadomości konwersacji czytelnika
// z personelem oraz jego projekcję do wyświetlania.
//
// Dziennik jest append-only i rozstrzygająco uporządkowany: znacznik czasu
// wiadomości nigdy nie cofa się względem poprzedniej, a remisy w obrębie
// tej samej milisekundy rozstrzyga licznik sekwencji. Dziennik w magazynie
// jest kanałem autorytatywnym; push na żywo to doręczanie best-effort,
// a konsumenci deduplikują po ID wiadomości.
package chat

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-portal/internal/assistant"
	"library-portal/internal/models"
	"library-portal/internal/store"
)

// Pusher doręcza nową wiadomość kanałem na żywo (best-effort)
type Pusher interface {
	Push(borrowerID string, msg *models.Message)
}

// Provisioner zakłada konto czytelnika przy pierwszym kontakcie
type Provisioner interface {
	Ensure(ctx context.Context, borrowerID string) (*models.Borrower, error)
}

// Service to warstwa synchronizacji wiadomości: dopisywanie do dziennika,
// rozgłaszanie do subskrybentów, push na żywo i uzgadnianie flag odczytu.
type Service struct {
	borrowers   store.BorrowerStore
	provisioner Provisioner
	pusher      Pusher

	generator assistant.Generator
	fallback  string

	mu      sync.Mutex
	subs    map[string]map[int]func(models.Message)
	nextSub int
	mirrors map[string]func()
}

// NewService tworzy warstwę wiadomości nad magazynem czytelników
func NewService(borrowers store.BorrowerStore, provisioner Provisioner) *Service {
	return &Service{
		borrowers:   borrowers,
		provisioner: provisioner,
		subs:        make(map[string]map[int]func(models.Message)),
		mirrors:     make(map[string]func()),
	}
}

// SetPusher podpina kanał doręczania na żywo
func (s *Service) SetPusher(p Pusher) {
	s.pusher = p
}

// SetAssistant podpina generator automatycznych odpowiedzi.
// fallback to statyczna odpowiedź używana gdy generator zawiedzie.
func (s *Service) SetAssistant(g assistant.Generator, fallback string) {
	s.generator = g
	s.fallback = fallback
}

// Append dopisuje wiadomość do dziennika konwersacji czytelnika.
// Znacznik czasu jest monotonicznie niemalejący, a licznik sekwencji
// gwarantuje ścisłe uporządkowanie nawet przy identycznych milisekundach.
func (s *Service) Append(ctx context.Context, borrowerID string, direction models.MessageDirection, body string, kind models.MessageKind) (*models.Message, error) {
	if body == "" {
		return nil, fmt.Errorf("treść wiadomości nie może być pusta")
	}

	if _, err := s.provisioner.Ensure(ctx, borrowerID); err != nil {
		return nil, err
	}

	var appended models.Message

	err := s.borrowers.UpdateBorrower(ctx, borrowerID, func(b *models.Borrower) error {
		now := time.Now()
		if now.Before(b.LastMessageAt) {
			now = b.LastMessageAt
		}

		b.LastMessageSeq++
		b.LastMessageAt = now

		appended = models.Message{
			ID:        uuid.NewString(),
			Direction: direction,
			Body:      body,
			Kind:      kind,
			Seq:       b.LastMessageSeq,
			SentAt:    now,
		}
		b.Messages = append(b.Messages, appended)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("błąd dopisywania wiadomości: %w", err)
	}

	s.fanOut(borrowerID, appended)

	return &appended, nil
}

// SendMessage dopisuje wiadomość pisaną ręcznie i, gdy skonfigurowano
// asystenta, odpowiada automatycznie na wiadomości czytelnika.
// Porażka generatora nie blokuje konwersacji - w jego miejsce wchodzi
// statyczna odpowiedź zapasowa.
func (s *Service) SendMessage(ctx context.Context, borrowerID string, direction models.MessageDirection, body string) (*models.Message, error) {
	msg, err := s.Append(ctx, borrowerID, direction, body, models.KindHuman)
	if err != nil {
		return nil, err
	}

	if direction == models.ToStaff && s.generator != nil {
		history, histErr := s.Messages(ctx, borrowerID)
		if histErr != nil {
			history = nil
		}

		reply, genErr := s.generator.GenerateReply(ctx, body, history)
		if genErr != nil || reply == "" {
			if genErr != nil {
				log.Printf("Generator odpowiedzi zawiódł dla czytelnika %s: %v", borrowerID, genErr)
			}
			reply = s.fallback
		}

		if reply != "" {
			if _, err := s.Append(ctx, borrowerID, models.ToBorrower, reply, models.KindAutomated); err != nil {
				log.Printf("Błąd dopisywania automatycznej odpowiedzi dla czytelnika %s: %v", borrowerID, err)
			}
		}
	}

	return msg, nil
}

// Messages zwraca pełny dziennik konwersacji w kolejności chronologicznej
func (s *Service) Messages(ctx context.Context, borrowerID string) ([]models.Message, error) {
	borrower, err := s.provisioner.Ensure(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return borrower.Messages, nil
}

// MarkRead oznacza jako przeczytane wiadomości o podanym kierunku.
// Czytelnik oznacza wiadomości personelu (to_borrower), personel -
// wiadomości czytelnika (to_staff); flagi drugiego kierunku są nietykane.
// Pusty upToID oznacza wszystkie wiadomości kierunku.
func (s *Service) MarkRead(ctx context.Context, borrowerID string, direction models.MessageDirection, upToID string) error {
	err := s.borrowers.UpdateBorrower(ctx, borrowerID, func(b *models.Borrower) error {
		for i := range b.Messages {
			if b.Messages[i].Direction != direction {
				continue
			}
			b.Messages[i].Read = true
			if upToID != "" && b.Messages[i].ID == upToID {
				break
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("błąd oznaczania wiadomości jako przeczytanych: %w", err)
	}
	return nil
}

// Subscribe rejestruje obserwatora dopisywanych wiadomości konwersacji.
// Zwrócona funkcja wyrejestrowuje obserwatora.
func (s *Service) Subscribe(borrowerID string, fn func(models.Message)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs[borrowerID] == nil {
		s.subs[borrowerID] = make(map[int]func(models.Message))
	}
	key := s.nextSub
	s.nextSub++
	s.subs[borrowerID][key] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[borrowerID], key)
	}
}

// StartMirror subskrybuje zmiany dokumentu czytelnika w magazynie i rozgłasza
// wiadomości dopisane przez inne instancje portalu. Wiadomości dopisane
// lokalnie mogą przejść oboma kanałami - konsumenci deduplikują po ID.
// Wywołanie dla już aktywnego lustra jest no-op.
func (s *Service) StartMirror(ctx context.Context, borrowerID string) error {
	s.mu.Lock()
	if _, exists := s.mirrors[borrowerID]; exists {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	borrower, err := s.provisioner.Ensure(ctx, borrowerID)
	if err != nil {
		return err
	}

	var seqMu sync.Mutex
	lastSeq := borrower.LastMessageSeq

	cancel, err := s.borrowers.WatchBorrower(ctx, borrowerID, func(b *models.Borrower) {
		seqMu.Lock()
		from := lastSeq
		if b.LastMessageSeq > lastSeq {
			lastSeq = b.LastMessageSeq
		}
		seqMu.Unlock()

		for _, msg := range b.Messages {
			if msg.Seq > from {
				s.fanOut(borrowerID, msg)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("błąd subskrypcji dziennika czytelnika: %w", err)
	}

	s.mu.Lock()
	if _, exists := s.mirrors[borrowerID]; exists {
		// Przegrany wyścig dwóch StartMirror - zostaje pierwsze lustro
		s.mu.Unlock()
		cancel()
		return nil
	}
	s.mirrors[borrowerID] = cancel
	s.mu.Unlock()

	return nil
}

// StopMirror zatrzymuje lustro dziennika czytelnika. Idempotentne.
func (s *Service) StopMirror(borrowerID string) {
	s.mu.Lock()
	cancel := s.mirrors[borrowerID]
	delete(s.mirrors, borrowerID)
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// fanOut rozgłasza dopisaną wiadomość do subskrybentów i kanału push
func (s *Service) fanOut(borrowerID string, msg models.Message) {
	s.mu.Lock()
	fns := make([]func(models.Message), 0, len(s.subs[borrowerID]))
	for _, fn := range s.subs[borrowerID] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(msg)
	}

	if s.pusher != nil {
		s.pusher.Push(borrowerID, &msg)
	}
}
