// Package push utrzymuje kanały doręczania wiadomości na żywo - po jednym
// logicznym połączeniu na aktywną sesję czytelnika. Kanał jest best-effort:
// po wyczerpaniu prób ponownego łączenia źródłem prawdy pozostaje utrwalony
// dziennik wiadomości.
package push

import "context"

// Conn to pojedyncze otwarte połączenie transportu push
type Conn interface {
	// Send wysyła ramkę JSON; błąd oznacza zerwane połączenie
	Send(v interface{}) error
	// Receive blokuje do nadejścia ramki; błąd oznacza zamknięcie połączenia
	Receive() ([]byte, error)
	Close() error
}

// Transport nawiązuje połączenia z zewnętrzną usługą push
type Transport interface {
	Connect(ctx context.Context, url string) (Conn, error)
}
