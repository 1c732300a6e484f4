package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookscape/internal/analytics"
	"bookscape/internal/catalog"
	"bookscape/internal/config"
	"bookscape/internal/httpx"
	"bookscape/internal/ingest"
	"bookscape/internal/logging"
	"bookscape/internal/metrics"
	"bookscape/internal/platform/googlebooks"
)

const (
	maxSearchBody  = 1 << 16
	searchRPS      = 1
	searchBurst    = 3
	maxSearchLimit = 100
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.BooksAPIKey == "" {
		logging.Fatal().Msg("missing required environment variable: GOOGLE_BOOKS_API_KEY")
	}

	ctx := context.Background()
	store, err := catalog.NewPostgresStore(ctx, cfg.DatabaseDSN, cfg.DatabaseTimeout)
	if err != nil {
		logging.Fatal().Err(err).Str("dsn", config.RedactDSN(cfg.DatabaseDSN)).Msg("cannot connect to database")
	}
	defer func() { _ = store.Close(context.Background()) }()

	if err := store.EnsureSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("cannot prepare catalog schema")
	}
	logging.Info().Str("dsn", config.RedactDSN(cfg.DatabaseDSN)).Msg("database connection OK")

	client := googlebooks.NewClient(cfg.BooksAPIKey, googlebooks.WithPageDelay(cfg.PageDelay))

	router := newRouter(routerDeps{
		books:       catalog.NewHTTPHandler(catalog.NewService(store)),
		search:      ingest.NewHTTPHandler(ingest.NewService(client, store, ingest.Config{MaxResultsLimit: maxSearchLimit})),
		analytics:   analytics.NewHTTPHandler(analytics.NewService(store)),
		ready:       store,
		corsOrigins: cfg.CORSOrigins,
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Minute, // a 100-result search pauses between pages
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", cfg.Addr).Msg("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

type routerDeps struct {
	books       *catalog.HTTPHandler
	search      *ingest.HTTPHandler
	analytics   *analytics.HTTPHandler
	ready       pinger
	corsOrigins []string
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware)
	r.Use(httpx.RecoveryMiddleware)
	r.Use(httpx.SecurityHeadersMiddleware)
	r.Use(httpx.CORSMiddleware(d.corsOrigins))
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := d.ready.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	searchLimiter := httpx.NewRateLimitMiddleware(searchRPS, searchBurst)

	r.Route("/v1", func(r chi.Router) {
		r.With(searchLimiter.Middleware, httpx.RequestSizeLimitMiddleware(maxSearchBody)).
			Post("/search", d.search.Search)
		r.Get("/books/{id}", d.books.Get)
		d.analytics.Routes(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})
	return r
}
