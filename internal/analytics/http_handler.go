package analytics

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"bookscape/internal/catalog"
	"bookscape/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Routes mounts the analytics and genre endpoints under the caller's prefix.
func (h *HTTPHandler) Routes(r chi.Router) {
	r.Get("/analytics/top-rated", h.TopRated)
	r.Get("/analytics/publication-years", h.PublicationYears)
	r.Get("/analytics/prices", h.PriceDistribution)
	r.Get("/analytics/trending", h.Trending)
	r.Get("/analytics/genres", h.TopGenres)
	r.Get("/analytics/authors", h.TopAuthors)
	r.Get("/genres", h.Genres)
	r.Get("/genres/{genre}/books", h.GenreBooks)
}

func (h *HTTPHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.TopRated(r.Context())
	respond(w, r, books, err)
}

func (h *HTTPHandler) PublicationYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.svc.PublicationYears(r.Context())
	respond(w, r, years, err)
}

func (h *HTTPHandler) PriceDistribution(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.PriceDistribution(r.Context())
	respond(w, r, books, err)
}

func (h *HTTPHandler) Trending(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	books, err := h.svc.Trending(r.Context(), period)
	respond(w, r, books, err)
}

func (h *HTTPHandler) TopGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.svc.TopGenres(r.Context())
	respond(w, r, genres, err)
}

func (h *HTTPHandler) TopAuthors(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	authors, err := h.svc.TopAuthors(r.Context(), period)
	respond(w, r, authors, err)
}

func (h *HTTPHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.svc.Genres(r.Context())
	respond(w, r, genres, err)
}

func (h *HTTPHandler) GenreBooks(w http.ResponseWriter, r *http.Request) {
	genre, err := url.PathUnescape(chi.URLParam(r, "genre"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid genre", nil)
		return
	}
	summary, err := h.svc.GenreBooks(r.Context(), genre)
	if errors.Is(err, ErrEmptyGenre) {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "genre is required", nil)
		return
	}
	respond(w, r, summary, err)
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (Period, bool) {
	period, err := ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid period", []httpx.ErrorDetail{
			{Field: "period", Message: "period must be one of all, last_year, last_5_years"},
		})
		return "", false
	}
	return period, true
}

func respond(w http.ResponseWriter, r *http.Request, data any, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnavailable):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Catalog store unavailable", nil)
	case err != nil:
		httpx.InternalError(w, r, err)
	default:
		httpx.JSONSuccess(w, r, data, nil)
	}
}
