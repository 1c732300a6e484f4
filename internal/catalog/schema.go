package catalog

const schemaSQL = `
CREATE TABLE IF NOT EXISTS books (
	book_id         TEXT PRIMARY KEY,
	book_title      TEXT,
	book_authors    TEXT[] NOT NULL DEFAULT '{}',
	publisher       TEXT,
	published_date  TEXT,
	year            TEXT,
	description     TEXT,
	isbn            TEXT,
	page_count      INTEGER,
	categories      TEXT[] NOT NULL DEFAULT '{}',
	average_rating  DOUBLE PRECISION,
	ratings_count   INTEGER,
	maturity_rating TEXT,
	language        TEXT,
	is_ebook        BOOLEAN NOT NULL DEFAULT FALSE,
	saleability     TEXT,
	list_price      DOUBLE PRECISION,
	retail_price    DOUBLE PRECISION,
	search_key      TEXT,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS books_year_idx ON books (year);
CREATE INDEX IF NOT EXISTS books_ratings_count_idx ON books (ratings_count);
CREATE INDEX IF NOT EXISTS books_categories_idx ON books USING GIN (categories);`
