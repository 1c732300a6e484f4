package catalog

import (
	"errors"
	"time"
)

var (
	// ErrUnavailable marks failures to reach the store at all. No further
	// catalog operation can succeed until the connection is re-established.
	ErrUnavailable = errors.New("catalog store unavailable")
	ErrNotFound    = errors.New("book not found")
	ErrMissingID   = errors.New("book has no identifier")
)

// Row is the flat, persisted shape of a book. Nil pointers are stored as NULL.
type Row struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Authors        []string  `json:"authors"`
	Publisher      string    `json:"publisher,omitempty"`
	PublishedDate  string    `json:"published_date,omitempty"`
	Year           *string   `json:"year,omitempty"`
	Description    string    `json:"description,omitempty"`
	ISBN           *string   `json:"isbn,omitempty"`
	PageCount      *int      `json:"page_count,omitempty"`
	Categories     []string  `json:"categories"`
	AverageRating  *float64  `json:"average_rating,omitempty"`
	RatingsCount   *int      `json:"ratings_count,omitempty"`
	MaturityRating string    `json:"maturity_rating,omitempty"`
	Language       string    `json:"language,omitempty"`
	IsEbook        bool      `json:"is_ebook"`
	Saleability    string    `json:"saleability,omitempty"`
	ListPrice      *float64  `json:"list_price,omitempty"`
	RetailPrice    *float64  `json:"retail_price,omitempty"`
	SearchKey      string    `json:"search_key"`
	UpdatedAt      time.Time `json:"updated_at"`
}
