package ingest

import (
	"errors"
	"time"

	"bookscape/internal/catalog"
	"bookscape/internal/platform/googlebooks"
)

var ErrEmptyQuery = errors.New("search query is empty")

// Filter holds the optional predicates a volume must pass before it is stored.
// Zero values disable a predicate.
type Filter struct {
	MinRating float64 `json:"min_rating"`
	MinPages  int     `json:"min_pages"`
	EbookOnly bool    `json:"ebook_only"`
	FreeOnly  bool    `json:"free_only"`
}

// Match reports whether v passes every enabled predicate. A missing rating or
// page count counts as zero. EbookOnly uses the same flag that is stored, so
// sale info wins over volume info.
func (f Filter) Match(v googlebooks.Volume) bool {
	if f.MinRating > 0 && deref(v.VolumeInfo.AverageRating) < f.MinRating {
		return false
	}
	if f.MinPages > 0 && deref(v.VolumeInfo.PageCount) < f.MinPages {
		return false
	}
	if f.EbookOnly && !v.Ebook() {
		return false
	}
	if f.FreeOnly && v.Saleability() != "FREE" {
		return false
	}
	return true
}

// DefaultMaxResults is used when a search request does not set max_results.
const DefaultMaxResults = 40

// SearchRequest is the external form of a pipeline run, shared by the HTTP
// body and the CLI flags.
type SearchRequest struct {
	Query      string  `json:"query" validate:"required"`
	MaxResults *int    `json:"max_results" validate:"omitempty,min=1,max=100"`
	MinRating  float64 `json:"min_rating" validate:"gte=0,lte=5"`
	MinPages   int     `json:"min_pages" validate:"gte=0"`
	EbookOnly  bool    `json:"ebook_only"`
	FreeOnly   bool    `json:"free_only"`
}

// Request converts a validated SearchRequest, applying DefaultMaxResults.
func (sr SearchRequest) Request() Request {
	maxResults := DefaultMaxResults
	if sr.MaxResults != nil {
		maxResults = *sr.MaxResults
	}
	return Request{
		Query:      sr.Query,
		MaxResults: maxResults,
		Filter: Filter{
			MinRating: sr.MinRating,
			MinPages:  sr.MinPages,
			EbookOnly: sr.EbookOnly,
			FreeOnly:  sr.FreeOnly,
		},
	}
}

type Request struct {
	Query      string
	MaxResults int
	Filter     Filter
}

// Failure is one volume whose upsert failed; the rest of the run continued.
type Failure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Result summarizes one search/filter/upsert cycle.
type Result struct {
	ID         string        `json:"id"`
	Query      string        `json:"query"`
	MaxResults int           `json:"max_results"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Fetched    int           `json:"fetched"`
	Matched    int           `json:"matched"`
	Stored     int           `json:"stored"`
	Books      []catalog.Row `json:"books"`
	Failures   []Failure     `json:"failures,omitempty"`
}

func deref[T int | float64](p *T) T {
	if p == nil {
		return 0
	}
	return *p
}
