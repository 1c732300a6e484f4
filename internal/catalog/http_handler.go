package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookscape/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Get handles GET /v1/books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "book id is required", nil)
		return
	}

	book, err := h.svc.Get(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found in catalog", nil)
		return
	case errors.Is(err, ErrUnavailable):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Catalog store unavailable", nil)
		return
	case err != nil:
		httpx.InternalError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, book, nil)
}
