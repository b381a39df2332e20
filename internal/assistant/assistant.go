// Package assistant definiuje zewnętrznego współpracownika generującego
// automatyczne odpowiedzi w konwersacji. Generator jest czarną skrzynką
// bez gwarancji dostępności - wywołujący musi mieć statyczną odpowiedź
// zapasową.
package assistant

import (
	"context"

	"library-portal/internal/models"
)

// Generator produkuje odpowiedź na wiadomość czytelnika
type Generator interface {
	GenerateReply(ctx context.Context, userText string, history []models.Message) (string, error)
}

// Static zawsze zwraca tę samą odpowiedź - używany jako generator zapasowy
// oraz w trybie bez skonfigurowanego zewnętrznego asystenta
type Static struct {
	Reply string
}

// GenerateReply zwraca skonfigurowaną odpowiedź statyczną
func (s Static) GenerateReply(ctx context.Context, userText string, history []models.Message) (string, error) {
	return s.Reply, nil
}
