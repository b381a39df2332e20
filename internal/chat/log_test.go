package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-portal/internal/models"
	"library-portal/internal/store"
	"library-portal/internal/store/memory"
)

// testProvisioner zakłada konto czytelnika z trzema slotami przy pierwszym
// kontakcie, tak jak robi to rejestr czytelników w warstwie rezerwacji
type testProvisioner struct {
	st *memory.Store
}

func (p *testProvisioner) Ensure(ctx context.Context, borrowerID string) (*models.Borrower, error) {
	borrower, err := p.st.GetBorrower(ctx, borrowerID)
	if errors.Is(err, store.ErrNotFound) {
		borrower = models.NewBorrower(borrowerID, 3)
		if putErr := p.st.PutBorrower(ctx, borrower); putErr != nil {
			return nil, putErr
		}
		return borrower, nil
	}
	return borrower, err
}

type failingGenerator struct{}

func (failingGenerator) GenerateReply(ctx context.Context, userText string, history []models.Message) (string, error) {
	return "", errors.New("asystent niedostępny")
}

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	return NewService(st, &testProvisioner{st: st}), st
}

func TestAppend(t *testing.T) {
	ctx := context.Background()

	t.Run("sekwencja rozstrzyga kolejność w tej samej milisekundzie", func(t *testing.T) {
		svc, _ := newTestService(t)

		first, err := svc.Append(ctx, "anna@example.com", models.ToStaff, "pierwsza", models.KindHuman)
		require.NoError(t, err)
		second, err := svc.Append(ctx, "anna@example.com", models.ToStaff, "druga", models.KindHuman)
		require.NoError(t, err)

		assert.Greater(t, second.Seq, first.Seq)
		assert.False(t, second.SentAt.Before(first.SentAt))
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("znacznik czasu nigdy się nie cofa", func(t *testing.T) {
		svc, st := newTestService(t)

		// Zegar dziennika przestawiony w przyszłość symuluje dryf zegara
		// między kolejnymi zapisami
		future := time.Now().Add(time.Hour)
		borrower := models.NewBorrower("anna@example.com", 3)
		borrower.LastMessageAt = future
		borrower.LastMessageSeq = 7
		require.NoError(t, st.PutBorrower(ctx, borrower))

		msg, err := svc.Append(ctx, "anna@example.com", models.ToStaff, "po dryfie", models.KindHuman)
		require.NoError(t, err)

		assert.True(t, msg.SentAt.Equal(future))
		assert.Equal(t, int64(8), msg.Seq)
	})

	t.Run("odrzuca pustą treść", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Append(ctx, "anna@example.com", models.ToStaff, "", models.KindHuman)
		assert.Error(t, err)
	})

	t.Run("nowa wiadomość jest nieprzeczytana", func(t *testing.T) {
		svc, _ := newTestService(t)
		msg, err := svc.Append(ctx, "anna@example.com", models.ToBorrower, "dzień dobry", models.KindHuman)
		require.NoError(t, err)
		assert.False(t, msg.Read)
	})
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("asystent odpowiada na wiadomość czytelnika", func(t *testing.T) {
		svc, _ := newTestService(t)
		svc.SetAssistant(failingGenerator{}, "Dziękujemy, personel odpowie wkrótce")

		_, err := svc.SendMessage(ctx, "anna@example.com", models.ToStaff, "Czy macie Solaris?")
		require.NoError(t, err)

		messages, err := svc.Messages(ctx, "anna@example.com")
		require.NoError(t, err)
		require.Len(t, messages, 2)

		// Porażka generatora nie blokuje konwersacji - wchodzi odpowiedź zapasowa
		reply := messages[1]
		assert.Equal(t, models.ToBorrower, reply.Direction)
		assert.Equal(t, models.KindAutomated, reply.Kind)
		assert.Equal(t, "Dziękujemy, personel odpowie wkrótce", reply.Body)
	})

	t.Run("wiadomość personelu nie wywołuje asystenta", func(t *testing.T) {
		svc, _ := newTestService(t)
		svc.SetAssistant(failingGenerator{}, "odpowiedź zapasowa")

		_, err := svc.SendMessage(ctx, "anna@example.com", models.ToBorrower, "Książka czeka na odbiór")
		require.NoError(t, err)

		messages, err := svc.Messages(ctx, "anna@example.com")
		require.NoError(t, err)
		assert.Len(t, messages, 1)
	})

	t.Run("bez asystenta nie ma automatycznej odpowiedzi", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.SendMessage(ctx, "anna@example.com", models.ToStaff, "halo?")
		require.NoError(t, err)

		messages, err := svc.Messages(ctx, "anna@example.com")
		require.NoError(t, err)
		assert.Len(t, messages, 1)
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()

	t.Run("oznacza wyłącznie wskazany kierunek", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Append(ctx, "anna@example.com", models.ToStaff, "pytanie", models.KindHuman)
		require.NoError(t, err)
		_, err = svc.Append(ctx, "anna@example.com", models.ToBorrower, "odpowiedź", models.KindHuman)
		require.NoError(t, err)

		require.NoError(t, svc.MarkRead(ctx, "anna@example.com", models.ToBorrower, ""))

		messages, err := svc.Messages(ctx, "anna@example.com")
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.False(t, messages[0].Read, "flaga to_staff ma pozostać nietknięta")
		assert.True(t, messages[1].Read)
	})

	t.Run("upToID zatrzymuje oznaczanie", func(t *testing.T) {
		svc, _ := newTestService(t)

		first, err := svc.Append(ctx, "anna@example.com", models.ToBorrower, "raz", models.KindHuman)
		require.NoError(t, err)
		_, err = svc.Append(ctx, "anna@example.com", models.ToBorrower, "dwa", models.KindHuman)
		require.NoError(t, err)

		require.NoError(t, svc.MarkRead(ctx, "anna@example.com", models.ToBorrower, first.ID))

		messages, err := svc.Messages(ctx, "anna@example.com")
		require.NoError(t, err)
		assert.True(t, messages[0].Read)
		assert.False(t, messages[1].Read)
	})
}

func TestMirror(t *testing.T) {
	ctx := context.Background()

	// externalAppend symuluje wiadomość dopisaną przez inną instancję portalu:
	// trafia do magazynu z pominięciem lokalnego serwisu
	externalAppend := func(t *testing.T, st *memory.Store, borrowerID, body string) {
		t.Helper()
		err := st.UpdateBorrower(ctx, borrowerID, func(b *models.Borrower) error {
			b.LastMessageSeq++
			b.Messages = append(b.Messages, models.Message{
				ID:        "zewnętrzna-" + body,
				Direction: models.ToBorrower,
				Body:      body,
				Kind:      models.KindHuman,
				Seq:       b.LastMessageSeq,
				SentAt:    time.Now(),
			})
			return nil
		})
		require.NoError(t, err)
	}

	t.Run("rozgłasza wiadomości dopisane poza serwisem", func(t *testing.T) {
		svc, st := newTestService(t)

		received := make(chan models.Message, 2)
		cancelSub := svc.Subscribe("anna@example.com", func(m models.Message) {
			received <- m
		})
		defer cancelSub()

		require.NoError(t, svc.StartMirror(ctx, "anna@example.com"))
		defer svc.StopMirror("anna@example.com")

		externalAppend(t, st, "anna@example.com", "z-drugiej-instancji")

		select {
		case got := <-received:
			assert.Equal(t, "z-drugiej-instancji", got.Body)
		case <-time.After(time.Second):
			t.Fatal("lustro nie rozgłosiło zewnętrznej wiadomości")
		}
	})

	t.Run("pomija wiadomości sprzed startu lustra", func(t *testing.T) {
		svc, st := newTestService(t)

		_, err := svc.Append(ctx, "anna@example.com", models.ToStaff, "historyczna", models.KindHuman)
		require.NoError(t, err)

		received := make(chan models.Message, 2)
		cancelSub := svc.Subscribe("anna@example.com", func(m models.Message) {
			received <- m
		})
		defer cancelSub()

		require.NoError(t, svc.StartMirror(ctx, "anna@example.com"))
		defer svc.StopMirror("anna@example.com")

		externalAppend(t, st, "anna@example.com", "świeża")

		select {
		case got := <-received:
			assert.Equal(t, "świeża", got.Body)
		case <-time.After(time.Second):
			t.Fatal("lustro nie rozgłosiło zewnętrznej wiadomości")
		}
	})

	t.Run("zatrzymane lustro milknie", func(t *testing.T) {
		svc, st := newTestService(t)

		received := make(chan models.Message, 2)
		cancelSub := svc.Subscribe("anna@example.com", func(m models.Message) {
			received <- m
		})
		defer cancelSub()

		require.NoError(t, svc.StartMirror(ctx, "anna@example.com"))
		svc.StopMirror("anna@example.com")
		// Powtórzone zatrzymanie jest bezpieczne
		svc.StopMirror("anna@example.com")

		externalAppend(t, st, "anna@example.com", "po-zatrzymaniu")

		select {
		case got := <-received:
			t.Fatalf("zatrzymane lustro rozgłosiło wiadomość: %+v", got)
		case <-time.After(50 * time.Millisecond):
		}
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("subskrybent dostaje dopisane wiadomości", func(t *testing.T) {
		svc, _ := newTestService(t)

		received := make(chan models.Message, 1)
		cancel := svc.Subscribe("anna@example.com", func(m models.Message) {
			received <- m
		})
		defer cancel()

		sent, err := svc.Append(ctx, "anna@example.com", models.ToStaff, "halo", models.KindHuman)
		require.NoError(t, err)

		select {
		case got := <-received:
			assert.Equal(t, sent.ID, got.ID)
		case <-time.After(time.Second):
			t.Fatal("subskrybent nie dostał wiadomości")
		}
	})

	t.Run("wyrejestrowany subskrybent nie dostaje nic", func(t *testing.T) {
		svc, _ := newTestService(t)

		received := make(chan models.Message, 1)
		cancel := svc.Subscribe("anna@example.com", func(m models.Message) {
			received <- m
		})
		cancel()

		_, err := svc.Append(ctx, "anna@example.com", models.ToStaff, "halo", models.KindHuman)
		require.NoError(t, err)

		select {
		case <-received:
			t.Fatal("wyrejestrowany subskrybent dostał wiadomość")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("subskrypcje różnych czytelników są rozdzielone", func(t *testing.T) {
		svc, _ := newTestService(t)

		received := make(chan models.Message, 1)
		cancel := svc.Subscribe("anna@example.com", func(m models.Message) {
			received <- m
		})
		defer cancel()

		_, err := svc.Append(ctx, "jan@example.com", models.ToStaff, "cudza konwersacja", models.KindHuman)
		require.NoError(t, err)

		select {
		case <-received:
			t.Fatal("wiadomość trafiła do subskrybenta innej konwersacji")
		case <-time.After(50 * time.Millisecond):
		}
	})
}
