package push

import (
	"context"
	"log"
	"sync"
	"time"

	"library-portal/internal/models"
)

// ChannelState określa stan logicznego kanału push czytelnika
type ChannelState string

const (
	StateDisconnected ChannelState = "disconnected"
	StateConnecting   ChannelState = "connecting"
	StateIdentified   ChannelState = "identified"
)

// Options konfiguruje łączenie i ponowne próby kanału push
type Options struct {
	URL            string
	ConnectTimeout time.Duration
	BackoffBase    time.Duration // Opóźnienie startowe, podwajane po każdej porażce
	BackoffMax     time.Duration // Sufit opóźnienia
	MaxRetries     int           // Liczba kolejnych porażek przed poddaniem się
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 5 * time.Second
	}
	if o.BackoffBase == 0 {
		o.BackoffBase = time.Second
	}
	if o.BackoffMax == 0 {
		o.BackoffMax = 30 * time.Second
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 5
	}
	return o
}

// identifyFrame wiąże połączenie z tożsamością czytelnika.
// Żadna wiadomość nie jest doręczana kanałem przed tym uściskiem dłoni.
type identifyFrame struct {
	Type       string `json:"type"`
	BorrowerID string `json:"borrower_id"`
}

// messageFrame przenosi dopisaną wiadomość dziennika
type messageFrame struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message"`
}

// Manager utrzymuje po jednym logicznym kanale push na aktywną sesję
// czytelnika i ponawia zerwane połączenia z wykładniczym odczekaniem.
type Manager struct {
	transport Transport
	opts      Options

	mu       sync.RWMutex
	channels map[string]*channel
}

// NewManager tworzy menedżera kanałów nad podanym transportem
func NewManager(transport Transport, opts Options) *Manager {
	return &Manager{
		transport: transport,
		opts:      opts.withDefaults(),
		channels:  make(map[string]*channel),
	}
}

type channel struct {
	borrowerID string
	cancel     context.CancelFunc

	mu    sync.Mutex
	state ChannelState
	conn  Conn
}

func (ch *channel) setState(state ChannelState) {
	ch.mu.Lock()
	ch.state = state
	ch.mu.Unlock()
}

func (ch *channel) setConn(conn Conn) {
	ch.mu.Lock()
	ch.conn = conn
	ch.mu.Unlock()
}

// Connect otwiera logiczny kanał push dla sesji czytelnika.
// Wywołanie dla już otwartego kanału jest no-op.
func (m *Manager) Connect(ctx context.Context, borrowerID string) {
	m.mu.Lock()
	if _, exists := m.channels[borrowerID]; exists {
		m.mu.Unlock()
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	ch := &channel{
		borrowerID: borrowerID,
		cancel:     cancel,
		state:      StateDisconnected,
	}
	m.channels[borrowerID] = ch
	m.mu.Unlock()

	go m.run(runCtx, ch)
}

// Disconnect zamyka kanał czytelnika i natychmiast zatrzymuje dalsze próby
// łączenia. Wywołanie jest idempotentne.
func (m *Manager) Disconnect(borrowerID string) {
	m.mu.Lock()
	ch, exists := m.channels[borrowerID]
	if exists {
		delete(m.channels, borrowerID)
	}
	m.mu.Unlock()

	if !exists {
		return
	}

	ch.cancel()
	ch.mu.Lock()
	if ch.conn != nil {
		ch.conn.Close()
		ch.conn = nil
	}
	ch.state = StateDisconnected
	ch.mu.Unlock()
}

// Push doręcza dopisaną wiadomość kanałem czytelnika, jeśli jest otwarty
// i zidentyfikowany. Doręczanie jest best-effort - porażka zrywa połączenie
// i zostawia odtworzenie pętli ponownego łączenia.
func (m *Manager) Push(borrowerID string, msg *models.Message) {
	m.mu.RLock()
	ch := m.channels[borrowerID]
	m.mu.RUnlock()

	if ch == nil {
		return
	}

	ch.mu.Lock()
	conn := ch.conn
	identified := ch.state == StateIdentified
	ch.mu.Unlock()

	if !identified || conn == nil {
		return
	}

	if err := conn.Send(messageFrame{Type: "message", Message: msg}); err != nil {
		log.Printf("Błąd doręczania push do czytelnika %s: %v", borrowerID, err)
		conn.Close()
	}
}

// State zwraca bieżący stan kanału czytelnika
func (m *Manager) State(borrowerID string) ChannelState {
	m.mu.RLock()
	ch := m.channels[borrowerID]
	m.mu.RUnlock()

	if ch == nil {
		return StateDisconnected
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.state
}

// run prowadzi cykl życia kanału: łączenie, identyfikacja, odbiór do zerwania,
// ponowne łączenie z wykładniczym odczekaniem aż do wyczerpania prób.
func (m *Manager) run(ctx context.Context, ch *channel) {
	delay := m.opts.BackoffBase
	failures := 0

	for {
		if ctx.Err() != nil {
			return
		}

		ch.setState(StateConnecting)

		connCtx, cancel := context.WithTimeout(ctx, m.opts.ConnectTimeout)
		conn, err := m.transport.Connect(connCtx, m.opts.URL)
		cancel()

		if err == nil {
			err = conn.Send(identifyFrame{Type: "identify", BorrowerID: ch.borrowerID})
			if err != nil {
				conn.Close()
			}
		}

		if err == nil {
			ch.setConn(conn)
			ch.setState(StateIdentified)

			// Udane połączenie zeruje budżet ponownych prób
			delay = m.opts.BackoffBase
			failures = 0

			m.receiveLoop(ctx, ch, conn)

			ch.setConn(nil)
			ch.setState(StateDisconnected)
			continue
		}

		ch.setState(StateDisconnected)

		failures++
		if failures >= m.opts.MaxRetries {
			log.Printf("Kanał push czytelnika %s: wyczerpano %d prób łączenia - doręczanie wyłącznie przez dziennik wiadomości",
				ch.borrowerID, failures)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		delay *= 2
		if delay > m.opts.BackoffMax {
			delay = m.opts.BackoffMax
		}
	}
}

// receiveLoop czyta ramki do zerwania połączenia. Ruch przychodzący służy
// tylko utrzymaniu połączenia - autorytatywny przepływ wiadomości idzie
// przez magazyn dokumentów.
func (m *Manager) receiveLoop(ctx context.Context, ch *channel, conn Conn) {
	for {
		if _, err := conn.Receive(); err != nil {
			if ctx.Err() == nil {
				log.Printf("Kanał push czytelnika %s zerwany: %v", ch.borrowerID, err)
			}
			conn.Close()
			return
		}
	}
}
