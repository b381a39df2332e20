package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"library-portal/internal/models"
	"library-portal/internal/store"
)

// CatalogHandler wystawia publiczny katalog książek
type CatalogHandler struct {
	books store.BookStore
}

// NewCatalogHandler tworzy handler katalogu
func NewCatalogHandler(books store.BookStore) *CatalogHandler {
	return &CatalogHandler{books: books}
}

// ListBooks zwraca katalog z opcjonalnym filtrowaniem (GET /books)
func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.ListBooks(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")
	availableOnly := r.URL.Query().Get("available") == "true"

	// Filtrowanie po stronie aplikacji (Firestore ma ograniczone możliwości wyszukiwania)
	var results []*models.Book
	searchLower := strings.ToLower(search)
	for _, book := range books {
		if search != "" &&
			!strings.Contains(strings.ToLower(book.Title), searchLower) &&
			!strings.Contains(strings.ToLower(book.Author), searchLower) &&
			!strings.Contains(strings.ToLower(book.ISBN), searchLower) {
			continue
		}
		if category != "" && book.Category != category {
			continue
		}
		if availableOnly && !book.IsAvailable() {
			continue
		}
		results = append(results, book)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"books": results})
}

// ShowBook zwraca szczegóły książki (GET /books/{id})
func (h *CatalogHandler) ShowBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		writeError(w, http.StatusBadRequest, "brak ID książki")
		return
	}

	book, err := h.books.GetBook(r.Context(), bookID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}
