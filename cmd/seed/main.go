package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"

	"bookscape/internal/catalog"
	"bookscape/internal/config"
	"bookscape/internal/logging"
	"bookscape/internal/platform/googlebooks"
)

const seedSearchKey = "seed"

func main() {
	var (
		count = flag.Int("count", 500, "Number of synthetic books to upsert")
		seed  = flag.Uint64("seed", 1, "Random seed; the same seed produces the same books")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()
	store, err := catalog.NewPostgresStore(ctx, cfg.DatabaseDSN, cfg.DatabaseTimeout)
	if err != nil {
		logging.Fatal().Err(err).Str("dsn", config.RedactDSN(cfg.DatabaseDSN)).Msg("cannot connect to database")
	}
	defer func() { _ = store.Close(context.Background()) }()

	if err := store.EnsureSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("cannot prepare catalog schema")
	}

	logging.Info().Int("count", *count).Msg("generating books")
	volumes := generateVolumes(*count, rand.New(rand.NewPCG(*seed, *seed)))

	failed := 0
	for i, v := range volumes {
		if _, err := store.Upsert(ctx, v, seedSearchKey); err != nil {
			failed++
			continue
		}
		if (i+1)%100 == 0 {
			logging.Info().Msgf("upserted %d/%d books", i+1, len(volumes))
		}
	}

	total, err := store.Count(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("cannot count books")
	}
	logging.Info().Int("failed", failed).Int("total", total).Msg("seed finished")
}

var (
	genres     = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}
	languages  = []string{"en", "es", "fr", "de", "it", "pt", "zh", "ja"}
	publishers = []string{"Penguin", "HarperCollins", "Oxford", "Cambridge", "MIT Press", "Springer", "Wiley", "Elsevier"}
	words      = []string{"Journey", "Mystery", "Adventure", "Discovery", "Secret", "Legend", "Chronicle", "Tale", "Quest", "Saga"}
	surnames   = []string{"Herbert", "Austen", "Le Guin", "Tolstoy", "Morrison", "Borges", "Achebe", "Woolf"}
)

// generateVolumes builds n search-shaped records with a realistic spread of
// missing fields so the catalog exercises its NULL handling.
func generateVolumes(n int, r *rand.Rand) []googlebooks.Volume {
	out := make([]googlebooks.Volume, 0, n)
	for i := range n {
		year := 1950 + r.IntN(75)
		v := googlebooks.Volume{
			ID: fmt.Sprintf("seed-%06d", i+1),
			VolumeInfo: googlebooks.VolumeInfo{
				Title:         fmt.Sprintf("The %s of %s", pick(r, words), pick(r, words)),
				Authors:       []string{fmt.Sprintf("%c. %s", 'A'+rune(r.IntN(26)), pick(r, surnames))},
				Publisher:     pick(r, publishers),
				PublishedDate: fmt.Sprintf("%d-%02d-%02d", year, 1+r.IntN(12), 1+r.IntN(28)),
				Description:   fmt.Sprintf("A book about %s.", pick(r, words)),
				IndustryIdentifiers: []googlebooks.IndustryIdentifier{
					{Type: "ISBN_13", Identifier: fmt.Sprintf("978%010d", i+1)},
				},
				Categories:     []string{pick(r, genres)},
				MaturityRating: "NOT_MATURE",
				Language:       pick(r, languages),
			},
		}
		if r.IntN(10) > 0 {
			pages := 100 + r.IntN(800)
			v.VolumeInfo.PageCount = &pages
		}
		if r.IntN(4) > 0 {
			rating := float64(2+r.IntN(7)) / 2
			count := r.IntN(5000)
			v.VolumeInfo.AverageRating = &rating
			v.VolumeInfo.RatingsCount = &count
		}

		ebook := r.IntN(2) == 0
		sale := &googlebooks.SaleInfo{Country: "US", IsEbook: &ebook, Saleability: "NOT_FOR_SALE"}
		switch r.IntN(3) {
		case 0:
			sale.Saleability = "FREE"
		case 1:
			list := float64(500+r.IntN(4000)) / 100
			retail := list * 0.8
			sale.Saleability = "FOR_SALE"
			sale.ListPrice = &googlebooks.Price{Amount: &list, CurrencyCode: "USD"}
			sale.RetailPrice = &googlebooks.Price{Amount: &retail, CurrencyCode: "USD"}
		}
		v.SaleInfo = sale

		out = append(out, v)
	}
	return out
}

func pick(r *rand.Rand, from []string) string {
	return from[r.IntN(len(from))]
}
