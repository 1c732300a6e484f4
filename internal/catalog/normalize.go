package catalog

import (
	"strings"

	"bookscape/internal/platform/googlebooks"
)

// Normalize flattens a raw volume into a Row. Missing optional fields become
// empty lists, false, or nil; it never fails.
func Normalize(v googlebooks.Volume, searchKey string) Row {
	info := v.VolumeInfo
	row := Row{
		ID:             v.ID,
		Title:          info.Title,
		Authors:        orEmpty(info.Authors),
		Publisher:      info.Publisher,
		PublishedDate:  info.PublishedDate,
		Year:           DeriveYear(info.PublishedDate),
		Description:    info.Description,
		ISBN:           firstIdentifier(info.IndustryIdentifiers),
		PageCount:      info.PageCount,
		Categories:     orEmpty(info.Categories),
		AverageRating:  info.AverageRating,
		RatingsCount:   info.RatingsCount,
		MaturityRating: info.MaturityRating,
		Language:       info.Language,
		IsEbook:        v.Ebook(),
		SearchKey:      searchKey,
	}

	if s := v.SaleInfo; s != nil {
		row.Saleability = s.Saleability
		row.ListPrice = amount(s.ListPrice)
		row.RetailPrice = amount(s.RetailPrice)
	}
	return row
}

// DeriveYear returns the part of a published date before the first '-', so
// "1997", "1997-04" and "1997-04-12" all give "1997". Empty input gives nil.
func DeriveYear(publishedDate string) *string {
	year, _, _ := strings.Cut(publishedDate, "-")
	if year == "" {
		return nil
	}
	return &year
}

func firstIdentifier(ids []googlebooks.IndustryIdentifier) *string {
	if len(ids) == 0 || ids[0].Identifier == "" {
		return nil
	}
	id := ids[0].Identifier
	return &id
}

func amount(p *googlebooks.Price) *float64 {
	if p == nil {
		return nil
	}
	return p.Amount
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
