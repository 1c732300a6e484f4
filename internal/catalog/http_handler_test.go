package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Get(ctx context.Context, id string) (Row, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Row), args.Error(1)
}

func serveGet(h *HTTPHandler, id string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/v1/books/{id}", h.Get)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/books/"+id, nil))
	return w
}

func TestHTTPHandler_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("Get", mock.Anything, "zyTCAlFPjgYC").Return(Row{ID: "zyTCAlFPjgYC", Title: "The Google Story"}, nil)

		w := serveGet(NewHTTPHandler(NewService(repo)), "zyTCAlFPjgYC")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"The Google Story"`)
		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("Get", mock.Anything, "nope").Return(Row{}, ErrNotFound)

		w := serveGet(NewHTTPHandler(NewService(repo)), "nope")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("store error", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("Get", mock.Anything, "x").Return(Row{}, errors.New("db error"))

		w := serveGet(NewHTTPHandler(NewService(repo)), "x")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("store unavailable", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("Get", mock.Anything, "x").Return(Row{}, ErrUnavailable)

		w := serveGet(NewHTTPHandler(NewService(repo)), "x")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
