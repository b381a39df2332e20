package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"library-portal/internal/library"
	"library-portal/internal/middleware"
	"library-portal/internal/store"
)

// ReservationsHandler wystawia powierzchnię rezerwacji portalu
type ReservationsHandler struct {
	coordinator *library.Coordinator
	requests    store.RequestStore
}

// NewReservationsHandler tworzy handler rezerwacji
func NewReservationsHandler(coordinator *library.Coordinator, requests store.RequestStore) *ReservationsHandler {
	return &ReservationsHandler{coordinator: coordinator, requests: requests}
}

// PendingRequests zwraca wnioski oczekujące na decyzję (GET /staff/requests)
func (h *ReservationsHandler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	pending, err := h.requests.ListPendingRequests(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": pending})
}

// RequestReservation obsługuje wniosek o rezerwację (POST /reservations)
func (h *ReservationsHandler) RequestReservation(w http.ResponseWriter, r *http.Request) {
	borrowerID := middleware.BorrowerFromContext(r.Context())

	var body struct {
		BookID string `json:"book_id"`
	}
	if err := decodeJSON(r, &body); err != nil || body.BookID == "" {
		writeError(w, http.StatusBadRequest, "wymagane pole book_id")
		return
	}

	slotIndex, requestID, err := h.coordinator.RequestReservation(r.Context(), borrowerID, body.BookID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"slot_index": slotIndex,
		"request_id": requestID,
	})
}

// Approve zatwierdza wniosek (POST /staff/requests/{id}/approve)
func (h *ReservationsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")
	staffID := r.Header.Get(middleware.StaffHeader)
	if staffID == "" {
		writeError(w, http.StatusUnauthorized, "brak tożsamości personelu")
		return
	}

	if err := h.coordinator.Approve(r.Context(), requestID, staffID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// Reject odrzuca wniosek (POST /staff/requests/{id}/reject)
func (h *ReservationsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")
	staffID := r.Header.Get(middleware.StaffHeader)
	if staffID == "" {
		writeError(w, http.StatusUnauthorized, "brak tożsamości personelu")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "nieprawidłowe ciało żądania")
		return
	}

	if err := h.coordinator.Reject(r.Context(), requestID, staffID, body.Reason); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// ReturnBook obsługuje zwrot książki (POST /slots/{index}/return)
func (h *ReservationsHandler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	borrowerID := middleware.BorrowerFromContext(r.Context())

	slotIndex, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || slotIndex < 1 {
		writeError(w, http.StatusBadRequest, "nieprawidłowy indeks slotu")
		return
	}

	if err := h.coordinator.ReturnBook(r.Context(), borrowerID, slotIndex); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "returned"})
}
