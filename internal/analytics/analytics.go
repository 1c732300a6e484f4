package analytics

import (
	"errors"
	"fmt"
)

var ErrUnknownPeriod = errors.New("unknown period")

// Period bounds trending and author queries by publication year.
type Period string

const (
	PeriodAll        Period = "all"
	PeriodLastYear   Period = "last_year"
	PeriodLast5Years Period = "last_5_years"
)

// ParsePeriod maps a query parameter to a Period. An empty string means all time.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodLastYear, PeriodLast5Years:
		return Period(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

// years is how far back the period reaches; zero means unbounded.
func (p Period) years() int {
	switch p {
	case PeriodLastYear:
		return 1
	case PeriodLast5Years:
		return 5
	default:
		return 0
	}
}

type Book struct {
	ID            string   `json:"id,omitempty"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Year          *string  `json:"year,omitempty"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	RatingsCount  *int64   `json:"ratings_count,omitempty"`
	PageCount     *int64   `json:"page_count,omitempty"`
	ListPrice     *float64 `json:"list_price,omitempty"`
	RetailPrice   *float64 `json:"retail_price,omitempty"`
	IsEbook       bool     `json:"is_ebook"`
}

type YearCount struct {
	Year  string `json:"year"`
	Count int64  `json:"count"`
}

// GenreCount groups books sharing the same category list.
type GenreCount struct {
	Categories    []string `json:"categories"`
	Count         int64    `json:"count"`
	AverageRating *float64 `json:"average_rating,omitempty"`
}

// AuthorStat groups books sharing the same author list.
type AuthorStat struct {
	Authors       []string `json:"authors"`
	BookCount     int64    `json:"book_count"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	TotalRatings  int64    `json:"total_ratings"`
}

type GenreSummary struct {
	Genre         string  `json:"genre"`
	Total         int     `json:"total"`
	AverageRating float64 `json:"average_rating"`
	AveragePages  float64 `json:"average_pages"`
	EbookCount    int     `json:"ebook_count"`
	Books         []Book  `json:"books"`
}
