package models

import "time"

// RequestDecision określa decyzję personelu w sprawie wniosku
type RequestDecision string

const (
	DecisionApproved RequestDecision = "approved" // Wypożyczenie zatwierdzone
	DecisionRejected RequestDecision = "rejected" // Wniosek odrzucony
)

// ReservationRequest to niezmienny zapis wniosku o rezerwację.
// Tworzony przez koordynatora rezerwacji, modyfikowany dokładnie raz
// (flaga Processed false→true) przy decyzji personelu, nigdy nie usuwany.
type ReservationRequest struct {
	ID          string `json:"id" firestore:"id"`
	BorrowerID  string `json:"borrower_id" firestore:"borrower_id"`
	BookID      string `json:"book_id" firestore:"book_id"`
	SlotIndex   int    `json:"slot_index" firestore:"slot_index"`
	BookTitle   string `json:"book_title" firestore:"book_title"`     // Denormalizacja dla łatwiejszego wyświetlania
	BorrowerName string `json:"borrower_name" firestore:"borrower_name"` // Denormalizacja dla łatwiejszego wyświetlania

	RequestedAt time.Time `json:"requested_at" firestore:"requested_at"`

	Processed   bool            `json:"processed" firestore:"processed"`
	Decision    RequestDecision `json:"decision,omitempty" firestore:"decision,omitempty"`
	StaffID     string          `json:"staff_id,omitempty" firestore:"staff_id,omitempty"`
	Reason      string          `json:"reason,omitempty" firestore:"reason,omitempty"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty" firestore:"processed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updated_at"`
}

// IsPending sprawdza czy wniosek oczekuje na decyzję
func (r *ReservationRequest) IsPending() bool {
	return !r.Processed
}
