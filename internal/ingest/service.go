package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookscape/internal/catalog"
	"bookscape/internal/logging"
	"bookscape/internal/platform/googlebooks"
)

type SearchClient interface {
	Search(ctx context.Context, query string, maxResults int) []googlebooks.Volume
}

type Store interface {
	Upsert(ctx context.Context, v googlebooks.Volume, searchKey string) (catalog.Row, error)
}

type Config struct {
	// MaxResultsLimit caps Request.MaxResults. Zero means no cap.
	MaxResultsLimit int
}

type Service struct {
	client SearchClient
	store  Store
	cfg    Config
	now    func() time.Time
}

func NewService(client SearchClient, store Store, cfg Config) *Service {
	return &Service{
		client: client,
		store:  store,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Run searches for req.Query, keeps the volumes that pass req.Filter and
// upserts them one at a time. A failed upsert is recorded and skipped, except
// when the store is unreachable: then the run stops and the partial result is
// returned with the error.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	maxResults := req.MaxResults
	if s.cfg.MaxResultsLimit > 0 && maxResults > s.cfg.MaxResultsLimit {
		maxResults = s.cfg.MaxResultsLimit
	}

	res := &Result{
		ID:         uuid.NewString(),
		Query:      query,
		MaxResults: maxResults,
		StartedAt:  s.now(),
		Books:      []catalog.Row{},
	}
	log := logging.Ctx(ctx).With().Str("run_id", res.ID).Str("query", query).Logger()

	volumes := s.client.Search(ctx, query, maxResults)
	res.Fetched = len(volumes)

	for _, v := range volumes {
		if !req.Filter.Match(v) {
			continue
		}
		res.Matched++

		row, err := s.store.Upsert(ctx, v, query)
		if err != nil {
			if errors.Is(err, catalog.ErrUnavailable) {
				res.FinishedAt = s.now()
				log.Error().Err(err).Int("stored", res.Stored).Msg("catalog store unavailable, aborting run")
				return res, err
			}
			log.Warn().Err(err).Str("book_id", v.ID).Msg("skipping book")
			res.Failures = append(res.Failures, Failure{ID: v.ID, Error: err.Error()})
			continue
		}
		res.Books = append(res.Books, row)
		res.Stored++
	}

	res.FinishedAt = s.now()
	log.Info().
		Int("fetched", res.Fetched).
		Int("matched", res.Matched).
		Int("stored", res.Stored).
		Int("failed", len(res.Failures)).
		Dur("took", res.FinishedAt.Sub(res.StartedAt)).
		Msg("ingest run finished")
	return res, nil
}
