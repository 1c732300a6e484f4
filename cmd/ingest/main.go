package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"bookscape/internal/catalog"
	"bookscape/internal/config"
	"bookscape/internal/httpx"
	"bookscape/internal/ingest"
	"bookscape/internal/logging"
	"bookscape/internal/platform/googlebooks"
)

func main() {
	var (
		query      = flag.String("q", "", "Search query, e.g. 'intitle:dune' or 'subject:history'")
		maxResults = flag.Int("n", 40, "Maximum number of results to fetch (1-100)")
		minRating  = flag.Float64("min-rating", 0, "Only store books rated at least this (0-5)")
		minPages   = flag.Int("min-pages", 0, "Only store books with at least this many pages")
		ebookOnly  = flag.Bool("ebook-only", false, "Only store books available as eBooks")
		freeOnly   = flag.Bool("free-only", false, "Only store free books")
	)
	flag.Parse()

	sr := ingest.SearchRequest{
		Query:      strings.TrimSpace(*query),
		MaxResults: maxResults,
		MinRating:  *minRating,
		MinPages:   *minPages,
		EbookOnly:  *ebookOnly,
		FreeOnly:   *freeOnly,
	}
	if err := validateFlags(sr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.BooksAPIKey == "" {
		logging.Fatal().Msg("missing required environment variable: GOOGLE_BOOKS_API_KEY")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := catalog.NewPostgresStore(ctx, cfg.DatabaseDSN, cfg.DatabaseTimeout)
	if err != nil {
		logging.Fatal().Err(err).Str("dsn", config.RedactDSN(cfg.DatabaseDSN)).Msg("cannot connect to database")
	}
	defer func() { _ = store.Close(context.Background()) }()

	if err := store.EnsureSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("cannot prepare catalog schema")
	}

	client := googlebooks.NewClient(cfg.BooksAPIKey, googlebooks.WithPageDelay(cfg.PageDelay))
	svc := ingest.NewService(client, store, ingest.Config{MaxResultsLimit: 100})

	res, err := svc.Run(ctx, sr.Request())
	if res != nil {
		printResult(os.Stdout, res)
	}
	if err != nil {
		if errors.Is(err, catalog.ErrUnavailable) {
			logging.Error().Err(err).Msg("catalog store unavailable")
			os.Exit(1)
		}
		logging.Fatal().Err(err).Msg("ingest run failed")
	}
	if res.Stored == 0 {
		fmt.Fprintln(os.Stdout, "No books found. Try a different search.")
	}
}

// flagNames maps request fields back to the flags that set them.
var flagNames = map[string]string{
	"query":       "-q",
	"max_results": "-n",
	"min_rating":  "-min-rating",
	"min_pages":   "-min-pages",
}

func validateFlags(sr ingest.SearchRequest) error {
	details := httpx.ValidateStruct(sr)
	if len(details) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(details))
	for _, d := range details {
		msgs = append(msgs, fmt.Sprintf("%s: %s", flagNames[d.Field], d.Message))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func printResult(w io.Writer, res *ingest.Result) {
	fmt.Fprintf(w, "Run %s: fetched %d, matched %d, stored %d\n", res.ID, res.Fetched, res.Matched, res.Stored)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHORS\tYEAR\tRATING")
	for _, b := range res.Books {
		year, rating := "-", "-"
		if b.Year != nil {
			year = *b.Year
		}
		if b.AverageRating != nil {
			rating = fmt.Sprintf("%.1f", *b.AverageRating)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Title, strings.Join(b.Authors, ", "), year, rating)
	}
	_ = tw.Flush()

	for _, f := range res.Failures {
		fmt.Fprintf(w, "failed %s: %s\n", f.ID, f.Error)
	}
}
