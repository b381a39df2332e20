package models

import "time"

// MessageDirection określa kierunek wiadomości w konwersacji
type MessageDirection string

const (
	ToStaff    MessageDirection = "to_staff"    // Od czytelnika do personelu
	ToBorrower MessageDirection = "to_borrower" // Od personelu do czytelnika
)

// MessageKind rozróżnia wiadomości pisane ręcznie od automatycznych
type MessageKind string

const (
	KindHuman     MessageKind = "human"
	KindAutomated MessageKind = "automated"
)

// Message to pojedyncza wiadomość w konwersacji czytelnika z personelem.
// Niezmienna poza flagą Read, która przechodzi wyłącznie false→true
// (oznacza odczytanie przez adresata).
type Message struct {
	ID        string           `json:"id" firestore:"id"`
	Direction MessageDirection `json:"direction" firestore:"direction"`
	Body      string           `json:"body" firestore:"body"`
	Kind      MessageKind      `json:"kind" firestore:"kind"`

	// Seq rozstrzyga kolejność wiadomości o identycznym znaczniku czasu
	Seq    int64     `json:"seq" firestore:"seq"`
	SentAt time.Time `json:"sent_at" firestore:"sent_at"`
	Read   bool      `json:"read" firestore:"read"`
}
