package ingest

import (
	"errors"
	"net/http"

	"bookscape/internal/catalog"
	"bookscape/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Search handles POST /v1/search: fetch, filter and store books for a query.
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(body); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid search request", details)
		return
	}

	res, err := h.svc.Run(r.Context(), body.Request())
	switch {
	case errors.Is(err, ErrEmptyQuery):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Please enter a search term", nil)
		return
	case errors.Is(err, catalog.ErrUnavailable):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Catalog store unavailable", nil)
		return
	case err != nil:
		httpx.InternalError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, res, nil)
}
