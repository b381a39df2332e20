// Package middleware dostarcza tożsamość wywołującego do handlerów.
// Uwierzytelnianie jest zewnętrznym współpracownikiem - portal ufa
// nagłówkom ustawianym przez warstwę przed nim.
package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	borrowerContextKey contextKey = "borrower_id"

	// BorrowerHeader niesie tożsamość czytelnika (stabilny klucz zewnętrzny)
	BorrowerHeader = "X-Borrower-ID"
	// StaffHeader niesie tożsamość członka personelu
	StaffHeader = "X-Staff-ID"
)

// Identity dodaje tożsamość czytelnika z nagłówka do kontekstu żądania
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(BorrowerHeader); id != "" {
			ctx := context.WithValue(r.Context(), borrowerContextKey, id)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireBorrower odrzuca żądania bez tożsamości czytelnika
func RequireBorrower(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if BorrowerFromContext(r.Context()) == "" {
			http.Error(w, "Brak tożsamości czytelnika", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BorrowerFromContext zwraca tożsamość czytelnika z kontekstu żądania
func BorrowerFromContext(ctx context.Context) string {
	id, _ := ctx.Value(borrowerContextKey).(string)
	return id
}
