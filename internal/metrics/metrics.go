package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search client metrics.
var (
	SearchPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookscape",
			Name:      "search_pages_total",
			Help:      "Search service pages requested, by outcome",
		},
		[]string{"status"}, // "ok" / "empty" / "error"
	)

	SearchItemsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookscape",
			Name:      "search_items_total",
			Help:      "Raw volumes received from the search service",
		},
	)
)

// Catalog store metrics.
var (
	UpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookscape",
			Name:      "catalog_upserts_total",
			Help:      "Catalog upserts, by outcome",
		},
		[]string{"status"},
	)

	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookscape",
			Name:      "catalog_queries_total",
			Help:      "Pass-through catalog queries, by outcome",
		},
		[]string{"status"},
	)

	Reconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookscape",
			Name:      "catalog_reconnects_total",
			Help:      "Times the catalog store re-established its connection",
		},
	)
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookscape",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"method", "path", "status"},
	)
)

// Outcome returns the status label for an error result.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Middleware records request duration labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		httpRequestDuration.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
