package handlers

import (
	"context"
	"net/http"
	"time"

	"library-portal/internal/chat"
	"library-portal/internal/middleware"
	"library-portal/internal/models"
	"library-portal/internal/push"
)

// ChatHandler wystawia powierzchnię wiadomości portalu
type ChatHandler struct {
	service *chat.Service
	manager *push.Manager
}

// NewChatHandler tworzy handler konwersacji
func NewChatHandler(service *chat.Service, manager *push.Manager) *ChatHandler {
	return &ChatHandler{service: service, manager: manager}
}

// SendMessage dopisuje wiadomość do konwersacji (POST /chat/messages)
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	borrowerID := middleware.BorrowerFromContext(r.Context())

	var body struct {
		Body      string                  `json:"body"`
		Direction models.MessageDirection `json:"direction"`
	}
	if err := decodeJSON(r, &body); err != nil || body.Body == "" {
		writeError(w, http.StatusBadRequest, "wymagane pole body")
		return
	}

	// Czytelnik pisze do personelu, o ile nie wskazano inaczej (panel personelu)
	direction := body.Direction
	if direction == "" {
		direction = models.ToStaff
	}
	if direction != models.ToStaff && direction != models.ToBorrower {
		writeError(w, http.StatusBadRequest, "nieprawidłowy kierunek wiadomości")
		return
	}

	msg, err := h.service.SendMessage(r.Context(), borrowerID, direction, body.Body)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// Conversation zwraca projekcję konwersacji z separatorami dat (GET /chat)
func (h *ChatHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	borrowerID := middleware.BorrowerFromContext(r.Context())

	messages, err := h.service.Messages(r.Context(), borrowerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Kalendarz odbiorcy: strefa z parametru tz, domyślnie lokalna serwera
	loc := time.Local
	if tz := r.URL.Query().Get("tz"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, "nieznana strefa czasowa")
			return
		}
		loc = parsed
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": chat.BuildConversationView(messages, loc),
	})
}

// MarkRead oznacza wiadomości jako przeczytane (POST /chat/read)
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	borrowerID := middleware.BorrowerFromContext(r.Context())

	var body struct {
		Direction models.MessageDirection `json:"direction"`
		UpToID    string                  `json:"up_to_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "nieprawidłowe ciało żądania")
		return
	}
	if body.Direction != models.ToStaff && body.Direction != models.ToBorrower {
		writeError(w, http.StatusBadRequest, "nieprawidłowy kierunek wiadomości")
		return
	}

	if err := h.service.MarkRead(r.Context(), borrowerID, body.Direction, body.UpToID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// OpenSession otwiera kanał push sesji czytelnika (POST /chat/session)
func (h *ChatHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	borrowerID := middleware.BorrowerFromContext(r.Context())

	if h.manager == nil {
		writeError(w, http.StatusServiceUnavailable, "kanał push nie jest skonfigurowany")
		return
	}

	// Sesja żyje dłużej niż żądanie - kontekst żądania by ją zerwał
	sessionCtx := context.WithoutCancel(r.Context())

	// Lustro magazynu łapie wiadomości dopisane przez inne instancje portalu
	if err := h.service.StartMirror(sessionCtx, borrowerID); err != nil {
		writeDomainError(w, err)
		return
	}

	h.manager.Connect(sessionCtx, borrowerID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "connecting"})
}

// CloseSession zamyka kanał push sesji czytelnika (DELETE /chat/session)
func (h *ChatHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	borrowerID := middleware.BorrowerFromContext(r.Context())

	h.service.StopMirror(borrowerID)
	if h.manager != nil {
		h.manager.Disconnect(borrowerID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}
