package models

import "time"

// NotificationKind określa typ powiadomienia
type NotificationKind string

const (
	NotifyReservationRequested NotificationKind = "reservation_requested" // Do personelu: nowy wniosek
	NotifyLoanValidated        NotificationKind = "loan_validated"        // Do czytelnika: wypożyczenie zatwierdzone
	NotifyReservationRejected  NotificationKind = "reservation_rejected"  // Do czytelnika: wniosek odrzucony
	NotifyReturnConfirmed      NotificationKind = "return_confirmed"      // Do czytelnika: zwrot potwierdzony
)

// StaffInboxID to identyfikator wspólnej skrzynki powiadomień personelu
const StaffInboxID = "staff"

// Notification to niezmienny zapis powiadomienia w skrzynce adresata.
// W obrębie jednej skrzynki kolejność dopisywania = kolejność doręczania.
type Notification struct {
	ID       string            `json:"id" firestore:"id"`
	TargetID string            `json:"target_id" firestore:"target_id"`
	Kind     NotificationKind  `json:"kind" firestore:"kind"`
	Title    string            `json:"title" firestore:"title"`
	Body     string            `json:"body" firestore:"body"`
	Payload  map[string]string `json:"payload,omitempty" firestore:"payload,omitempty"`
	Read     bool              `json:"read" firestore:"read"`

	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
}
