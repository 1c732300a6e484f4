package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"bookscape/internal/logging"
	"bookscape/internal/metrics"
	"bookscape/internal/platform/googlebooks"
)

// PostgresStore keeps one connection to Postgres. Operations are serialized
// through it; the connection is re-established only after it is found closed.
type PostgresStore struct {
	dsn     string
	timeout time.Duration

	mu   sync.Mutex
	conn *pgx.Conn
}

// NewPostgresStore connects to dsn. A failure wraps ErrUnavailable.
func NewPostgresStore(ctx context.Context, dsn string, timeout time.Duration) (*PostgresStore, error) {
	s := &PostgresStore{dsn: dsn, timeout: timeout}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.connect(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// connect must be called with mu held.
func (s *PostgresStore) connect(ctx context.Context) error {
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	conn, err := pgx.Connect(cctx, s.dsn)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("catalog store connect failed")
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	s.conn = conn
	return nil
}

// Reconnect drops the current connection, if any, and dials again.
func (s *PostgresStore) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnect(ctx)
}

func (s *PostgresStore) reconnect(ctx context.Context) error {
	if s.conn != nil && !s.conn.IsClosed() {
		_ = s.conn.Close(ctx)
	}
	s.conn = nil
	metrics.Reconnects.Inc()
	return s.connect(ctx)
}

// withConn hands fn the live connection, reconnecting first if it was lost.
// Errors that leave the connection closed are reported as ErrUnavailable.
func (s *PostgresStore) withConn(ctx context.Context, fn func(ctx context.Context, conn *pgx.Conn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.conn.IsClosed() {
		logging.Ctx(ctx).Warn().Msg("catalog store connection lost, reconnecting")
		if err := s.reconnect(ctx); err != nil {
			return err
		}
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := fn(cctx, s.conn)
	if err != nil && s.conn.IsClosed() {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.withConn(ctx, func(ctx context.Context, conn *pgx.Conn) error {
		return conn.Ping(ctx)
	})
}

func (s *PostgresStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close(ctx)
	s.conn = nil
	return err
}

// EnsureSchema creates the books table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return s.withConn(ctx, func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, schemaSQL); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		return nil
	})
}

// Upsert normalizes v and writes it, returning the row that was stored.
func (s *PostgresStore) Upsert(ctx context.Context, v googlebooks.Volume, searchKey string) (Row, error) {
	row := Normalize(v, searchKey)
	return row, s.UpsertRow(ctx, row)
}

const upsertSQL = `
	INSERT INTO books (book_id, book_title, book_authors, publisher, published_date, year, description,
	                   isbn, page_count, categories, average_rating, ratings_count, maturity_rating,
	                   language, is_ebook, saleability, list_price, retail_price, search_key, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, now())
	ON CONFLICT (book_id) DO UPDATE SET
		book_title = EXCLUDED.book_title,
		book_authors = EXCLUDED.book_authors,
		publisher = EXCLUDED.publisher,
		published_date = EXCLUDED.published_date,
		year = EXCLUDED.year,
		description = EXCLUDED.description,
		isbn = EXCLUDED.isbn,
		page_count = EXCLUDED.page_count,
		categories = EXCLUDED.categories,
		average_rating = EXCLUDED.average_rating,
		ratings_count = EXCLUDED.ratings_count,
		maturity_rating = EXCLUDED.maturity_rating,
		language = EXCLUDED.language,
		is_ebook = EXCLUDED.is_ebook,
		saleability = EXCLUDED.saleability,
		list_price = EXCLUDED.list_price,
		retail_price = EXCLUDED.retail_price,
		search_key = EXCLUDED.search_key,
		updated_at = now()`

// UpsertRow inserts row or overwrites every column of the existing row with
// the same id, in one statement.
func (s *PostgresStore) UpsertRow(ctx context.Context, row Row) (err error) {
	defer func() { metrics.UpsertsTotal.WithLabelValues(metrics.Outcome(err)).Inc() }()

	if row.ID == "" {
		return ErrMissingID
	}

	err = s.withConn(ctx, func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, upsertSQL,
			row.ID, nullable(row.Title), orEmpty(row.Authors), nullable(row.Publisher),
			nullable(row.PublishedDate), row.Year, nullable(row.Description), row.ISBN, row.PageCount,
			orEmpty(row.Categories), row.AverageRating, row.RatingsCount, nullable(row.MaturityRating),
			nullable(row.Language), row.IsEbook, nullable(row.Saleability), row.ListPrice, row.RetailPrice,
			nullable(row.SearchKey),
		)
		return err
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("book_id", row.ID).Msg("upsert book failed")
		return fmt.Errorf("upsert book %s: %w", row.ID, err)
	}
	return nil
}

// Query runs caller-supplied SQL with bound args and returns each row keyed by
// column name, in the order the database returned them.
func (s *PostgresStore) Query(ctx context.Context, sql string, args ...any) (out []map[string]any, err error) {
	defer func() { metrics.QueriesTotal.WithLabelValues(metrics.Outcome(err)).Inc() }()

	err = s.withConn(ctx, func(ctx context.Context, conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToMap)
		return err
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("catalog query failed")
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out, nil
}

const selectRowSQL = `
	SELECT book_id, COALESCE(book_title, ''), book_authors, COALESCE(publisher, ''), COALESCE(published_date, ''),
	       year, COALESCE(description, ''), isbn, page_count, categories, average_rating, ratings_count,
	       COALESCE(maturity_rating, ''), COALESCE(language, ''), is_ebook, COALESCE(saleability, ''),
	       list_price, retail_price, COALESCE(search_key, ''), updated_at
	FROM books
	WHERE book_id = $1`

// Get returns the stored row for id.
func (s *PostgresStore) Get(ctx context.Context, id string) (Row, error) {
	var r Row
	err := s.withConn(ctx, func(ctx context.Context, conn *pgx.Conn) error {
		return conn.QueryRow(ctx, selectRowSQL, id).Scan(
			&r.ID, &r.Title, &r.Authors, &r.Publisher, &r.PublishedDate,
			&r.Year, &r.Description, &r.ISBN, &r.PageCount, &r.Categories, &r.AverageRating, &r.RatingsCount,
			&r.MaturityRating, &r.Language, &r.IsEbook, &r.Saleability,
			&r.ListPrice, &r.RetailPrice, &r.SearchKey, &r.UpdatedAt,
		)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Row{}, ErrNotFound
		}
		return Row{}, err
	}
	return r, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.withConn(ctx, func(ctx context.Context, conn *pgx.Conn) error {
		return conn.QueryRow(ctx, "SELECT COUNT(*) FROM books").Scan(&n)
	})
	return n, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
