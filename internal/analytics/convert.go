package analytics

import "fmt"

// Rows come back from the catalog store keyed by column name with driver
// types: int32 or int64 for integers, float64 for doubles, []any for arrays.

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func asStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := asString(v)
	return &s
}

func asStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if e != nil {
				out = append(out, asString(e))
			}
		}
		return out
	default:
		return nil
	}
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}

func asInt64Ptr(v any) *int64 {
	n, ok := asInt64(v)
	if !ok {
		return nil
	}
	return &n
}

func asFloat64Ptr(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	default:
		n, ok := asInt64(v)
		if !ok {
			return nil
		}
		f = float64(n)
	}
	return &f
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func bookFromRow(m map[string]any) Book {
	return Book{
		ID:            asString(m["book_id"]),
		Title:         asString(m["book_title"]),
		Authors:       asStrings(m["book_authors"]),
		Categories:    asStrings(m["categories"]),
		Year:          asStringPtr(m["year"]),
		AverageRating: asFloat64Ptr(m["average_rating"]),
		RatingsCount:  asInt64Ptr(m["ratings_count"]),
		PageCount:     asInt64Ptr(m["page_count"]),
		ListPrice:     asFloat64Ptr(m["list_price"]),
		RetailPrice:   asFloat64Ptr(m["retail_price"]),
		IsEbook:       asBool(m["is_ebook"]),
	}
}

func booksFromRows(rows []map[string]any) []Book {
	out := make([]Book, 0, len(rows))
	for _, m := range rows {
		out = append(out, bookFromRow(m))
	}
	return out
}
