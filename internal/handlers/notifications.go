package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"library-portal/internal/middleware"
	"library-portal/internal/models"
	"library-portal/internal/notify"
)

// NotificationsHandler wystawia skrzynki powiadomień czytelników i personelu
type NotificationsHandler struct {
	dispatcher *notify.Dispatcher
}

// NewNotificationsHandler tworzy handler powiadomień
func NewNotificationsHandler(dispatcher *notify.Dispatcher) *NotificationsHandler {
	return &NotificationsHandler{dispatcher: dispatcher}
}

// List zwraca skrzynkę czytelnika (GET /notifications)
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, middleware.BorrowerFromContext(r.Context()))
}

// MarkRead oznacza powiadomienie jako przeczytane (POST /notifications/{id}/read)
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.markRead(w, r, middleware.BorrowerFromContext(r.Context()))
}

// Delete usuwa powiadomienie ze skrzynki (DELETE /notifications/{id})
func (h *NotificationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, middleware.BorrowerFromContext(r.Context()))
}

// StaffList zwraca wspólną skrzynkę personelu (GET /staff/notifications)
func (h *NotificationsHandler) StaffList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.StaffInboxID)
}

// StaffMarkRead oznacza powiadomienie personelu jako przeczytane
func (h *NotificationsHandler) StaffMarkRead(w http.ResponseWriter, r *http.Request) {
	h.markRead(w, r, models.StaffInboxID)
}

// StaffDelete usuwa powiadomienie ze skrzynki personelu
func (h *NotificationsHandler) StaffDelete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, models.StaffInboxID)
}

func (h *NotificationsHandler) list(w http.ResponseWriter, r *http.Request, targetID string) {
	notifications, err := h.dispatcher.Inbox(r.Context(), targetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

func (h *NotificationsHandler) markRead(w http.ResponseWriter, r *http.Request, targetID string) {
	if err := h.dispatcher.MarkRead(r.Context(), targetID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *NotificationsHandler) delete(w http.ResponseWriter, r *http.Request, targetID string) {
	if err := h.dispatcher.Delete(r.Context(), targetID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
