package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"library-portal/internal/library"
	"library-portal/internal/store"
)

// writeJSON serializuje odpowiedź handlera
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Błąd serializacji odpowiedzi: %v", err)
	}
}

// writeError zwraca błąd w jednolitym formacie JSON
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON parsuje ciało żądania do v
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeDomainError mapuje błędy domenowe na kody HTTP.
// Błędy pojemności i stanu wracają do wywołującego wprost (409),
// nieznane błędy są logowane i ukrywane za 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrNoSlotAvailable),
		errors.Is(err, library.ErrNoCopyAvailable),
		errors.Is(err, library.ErrDuplicateReservation),
		errors.Is(err, library.ErrSlotNotEmpty),
		errors.Is(err, library.ErrInvalidTransition),
		errors.Is(err, library.ErrAlreadyProcessed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "nie znaleziono zasobu")
	default:
		log.Printf("Błąd wewnętrzny: %v", err)
		writeError(w, http.StatusInternalServerError, "błąd wewnętrzny serwera")
	}
}
