package analytics

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var ErrEmptyGenre = errors.New("genre is empty")

// Querier runs read-only SQL against the catalog and returns rows keyed by column.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) ([]map[string]any, error)
}

type Service struct {
	q   Querier
	now func() time.Time
}

func NewService(q Querier) *Service {
	return &Service{q: q, now: time.Now}
}

const topRatedSQL = `
	SELECT book_id, book_title, book_authors, average_rating, ratings_count
	FROM books
	WHERE ratings_count > 100
	ORDER BY average_rating DESC NULLS LAST
	LIMIT 10`

// TopRated returns the highest rated books that have more than 100 ratings.
func (s *Service) TopRated(ctx context.Context) ([]Book, error) {
	rows, err := s.q.Query(ctx, topRatedSQL)
	if err != nil {
		return nil, fmt.Errorf("top rated: %w", err)
	}
	return booksFromRows(rows), nil
}

const publicationYearsSQL = `
	SELECT year, COUNT(*) AS book_count
	FROM books
	WHERE year IS NOT NULL AND year <> ''
	GROUP BY year
	ORDER BY year DESC`

func (s *Service) PublicationYears(ctx context.Context) ([]YearCount, error) {
	rows, err := s.q.Query(ctx, publicationYearsSQL)
	if err != nil {
		return nil, fmt.Errorf("publication years: %w", err)
	}
	out := make([]YearCount, 0, len(rows))
	for _, m := range rows {
		n, _ := asInt64(m["book_count"])
		out = append(out, YearCount{Year: asString(m["year"]), Count: n})
	}
	return out, nil
}

const priceDistributionSQL = `
	SELECT book_id, book_title, retail_price, list_price, is_ebook
	FROM books
	WHERE retail_price > 0
	ORDER BY retail_price DESC
	LIMIT 100`

// PriceDistribution returns the 100 most expensive priced books.
func (s *Service) PriceDistribution(ctx context.Context) ([]Book, error) {
	rows, err := s.q.Query(ctx, priceDistributionSQL)
	if err != nil {
		return nil, fmt.Errorf("price distribution: %w", err)
	}
	return booksFromRows(rows), nil
}

// yearSinceSQL keeps rows whose year is a number of at most four digits at or
// after $1. Anything else never matches a bounded period, so the int cast
// cannot overflow.
const yearSinceSQL = ` AND CASE WHEN year ~ '^[0-9]{1,4}$' THEN year::int >= $1 ELSE FALSE END`

// periodFilter returns the extra WHERE clause and its argument for p.
func (s *Service) periodFilter(p Period) (string, []any) {
	n := p.years()
	if n == 0 {
		return "", nil
	}
	return yearSinceSQL, []any{s.now().Year() - n}
}

const trendingSQL = `
	SELECT book_id, book_title, book_authors, categories, year, average_rating, ratings_count
	FROM books
	WHERE ratings_count > 1000%s
	ORDER BY ratings_count DESC
	LIMIT 10`

// Trending returns the most rated books published within the period.
func (s *Service) Trending(ctx context.Context, p Period) ([]Book, error) {
	if _, err := ParsePeriod(string(p)); err != nil {
		return nil, err
	}
	clause, args := s.periodFilter(p)
	rows, err := s.q.Query(ctx, fmt.Sprintf(trendingSQL, clause), args...)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	return booksFromRows(rows), nil
}

const topGenresSQL = `
	SELECT categories, COUNT(*) AS book_count, AVG(average_rating) AS avg_rating
	FROM books
	WHERE cardinality(categories) > 0
	GROUP BY categories
	ORDER BY book_count DESC
	LIMIT 10`

func (s *Service) TopGenres(ctx context.Context) ([]GenreCount, error) {
	rows, err := s.q.Query(ctx, topGenresSQL)
	if err != nil {
		return nil, fmt.Errorf("top genres: %w", err)
	}
	out := make([]GenreCount, 0, len(rows))
	for _, m := range rows {
		n, _ := asInt64(m["book_count"])
		out = append(out, GenreCount{
			Categories:    asStrings(m["categories"]),
			Count:         n,
			AverageRating: asFloat64Ptr(m["avg_rating"]),
		})
	}
	return out, nil
}

const topAuthorsSQL = `
	SELECT book_authors, COUNT(*) AS book_count, AVG(average_rating) AS avg_rating,
	       COALESCE(SUM(ratings_count), 0) AS total_ratings
	FROM books
	WHERE cardinality(book_authors) > 0%s
	GROUP BY book_authors
	ORDER BY total_ratings DESC
	LIMIT 10`

// TopAuthors ranks author lists by the ratings their books collected.
func (s *Service) TopAuthors(ctx context.Context, p Period) ([]AuthorStat, error) {
	if _, err := ParsePeriod(string(p)); err != nil {
		return nil, err
	}
	clause, args := s.periodFilter(p)
	rows, err := s.q.Query(ctx, fmt.Sprintf(topAuthorsSQL, clause), args...)
	if err != nil {
		return nil, fmt.Errorf("top authors: %w", err)
	}
	out := make([]AuthorStat, 0, len(rows))
	for _, m := range rows {
		books, _ := asInt64(m["book_count"])
		total, _ := asInt64(m["total_ratings"])
		out = append(out, AuthorStat{
			Authors:       asStrings(m["book_authors"]),
			BookCount:     books,
			AverageRating: asFloat64Ptr(m["avg_rating"]),
			TotalRatings:  total,
		})
	}
	return out, nil
}

const genresSQL = `
	SELECT DISTINCT categories
	FROM books
	WHERE cardinality(categories) > 0`

// Genres returns every category name found in the catalog, sorted.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	rows, err := s.q.Query(ctx, genresSQL)
	if err != nil {
		return nil, fmt.Errorf("genres: %w", err)
	}
	seen := make(map[string]struct{})
	for _, m := range rows {
		for _, g := range asStrings(m["categories"]) {
			seen[g] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	slices.Sort(out)
	return out, nil
}

const genreBooksSQL = `
	SELECT book_id, book_title, book_authors, average_rating, ratings_count, page_count,
	       year, retail_price, is_ebook
	FROM books
	WHERE $1 = ANY(categories) AND average_rating > 0
	ORDER BY average_rating DESC, ratings_count DESC NULLS LAST
	LIMIT 50`

// GenreBooks returns up to 50 rated books in genre with summary figures over them.
func (s *Service) GenreBooks(ctx context.Context, genre string) (*GenreSummary, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, ErrEmptyGenre
	}
	rows, err := s.q.Query(ctx, genreBooksSQL, genre)
	if err != nil {
		return nil, fmt.Errorf("genre books: %w", err)
	}

	summary := &GenreSummary{Genre: genre, Books: booksFromRows(rows)}
	summary.Total = len(summary.Books)

	var ratingSum, pageSum float64
	var rated, paged int
	for _, b := range summary.Books {
		if b.AverageRating != nil {
			ratingSum += *b.AverageRating
			rated++
		}
		if b.PageCount != nil {
			pageSum += float64(*b.PageCount)
			paged++
		}
		if b.IsEbook {
			summary.EbookCount++
		}
	}
	if rated > 0 {
		summary.AverageRating = ratingSum / float64(rated)
	}
	if paged > 0 {
		summary.AveragePages = pageSum / float64(paged)
	}
	return summary, nil
}
