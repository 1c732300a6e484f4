package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookscape/internal/platform/googlebooks"
)

func ptr[T any](v T) *T { return &v }

func TestDeriveYear(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *string
	}{
		{"year only", "1997", ptr("1997")},
		{"year and month", "1965-08", ptr("1965")},
		{"full date", "2001-03-15", ptr("2001")},
		{"absent", "", nil},
		{"leading dash", "-03", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveYear(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		v := googlebooks.Volume{
			ID: "B1gV0lum3",
			VolumeInfo: googlebooks.VolumeInfo{
				Title:         "Dune",
				Authors:       []string{"Frank Herbert"},
				Publisher:     "Chilton Books",
				PublishedDate: "1965-08-01",
				Description:   "Spice.",
				IndustryIdentifiers: []googlebooks.IndustryIdentifier{
					{Type: "ISBN_10", Identifier: "0441013597"},
					{Type: "ISBN_13", Identifier: "9780441013593"},
				},
				PageCount:      ptr(412),
				Categories:     []string{"Fiction", "Science Fiction"},
				AverageRating:  ptr(4.5),
				RatingsCount:   ptr(1200),
				MaturityRating: "NOT_MATURE",
				Language:       "en",
				IsEbook:        ptr(false),
			},
			SaleInfo: &googlebooks.SaleInfo{
				Saleability: "FOR_SALE",
				IsEbook:     ptr(true),
				ListPrice:   &googlebooks.Price{Amount: ptr(9.99), CurrencyCode: "USD"},
				RetailPrice: &googlebooks.Price{Amount: ptr(7.49), CurrencyCode: "USD"},
			},
		}

		row := Normalize(v, "dune")

		assert.Equal(t, Row{
			ID:             "B1gV0lum3",
			Title:          "Dune",
			Authors:        []string{"Frank Herbert"},
			Publisher:      "Chilton Books",
			PublishedDate:  "1965-08-01",
			Year:           ptr("1965"),
			Description:    "Spice.",
			ISBN:           ptr("0441013597"),
			PageCount:      ptr(412),
			Categories:     []string{"Fiction", "Science Fiction"},
			AverageRating:  ptr(4.5),
			RatingsCount:   ptr(1200),
			MaturityRating: "NOT_MATURE",
			Language:       "en",
			IsEbook:        true,
			Saleability:    "FOR_SALE",
			ListPrice:      ptr(9.99),
			RetailPrice:    ptr(7.49),
			SearchKey:      "dune",
		}, row)
	})

	t.Run("sparse record gets defaults", func(t *testing.T) {
		row := Normalize(googlebooks.Volume{ID: "x", VolumeInfo: googlebooks.VolumeInfo{Title: "Untitled"}}, "q")

		require.NotNil(t, row.Authors)
		require.NotNil(t, row.Categories)
		assert.Empty(t, row.Authors)
		assert.Empty(t, row.Categories)
		assert.Nil(t, row.Year)
		assert.Nil(t, row.ISBN)
		assert.Nil(t, row.PageCount)
		assert.Nil(t, row.AverageRating)
		assert.Nil(t, row.RatingsCount)
		assert.Nil(t, row.ListPrice)
		assert.Nil(t, row.RetailPrice)
		assert.False(t, row.IsEbook)
		assert.Empty(t, row.Saleability)
		assert.Equal(t, "q", row.SearchKey)
	})

	t.Run("sale info without prices", func(t *testing.T) {
		row := Normalize(googlebooks.Volume{ID: "x", SaleInfo: &googlebooks.SaleInfo{Saleability: "NOT_FOR_SALE"}}, "q")

		assert.Equal(t, "NOT_FOR_SALE", row.Saleability)
		assert.Nil(t, row.ListPrice)
		assert.Nil(t, row.RetailPrice)
	})

	t.Run("volume info eBook flag used without sale info", func(t *testing.T) {
		row := Normalize(googlebooks.Volume{ID: "x", VolumeInfo: googlebooks.VolumeInfo{IsEbook: ptr(true)}}, "q")
		assert.True(t, row.IsEbook)
	})

	t.Run("empty first identifier", func(t *testing.T) {
		row := Normalize(googlebooks.Volume{ID: "x", VolumeInfo: googlebooks.VolumeInfo{
			IndustryIdentifiers: []googlebooks.IndustryIdentifier{{Type: "OTHER"}},
		}}, "q")
		assert.Nil(t, row.ISBN)
	})
}
