package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"bookscape/internal/catalog"
	"bookscape/internal/ingest"
)

func TestValidateFlags(t *testing.T) {
	n := func(v int) *int { return &v }

	assert.NoError(t, validateFlags(ingest.SearchRequest{Query: "dune", MaxResults: n(40), MinRating: 4.5, MinPages: 100}))
	assert.ErrorContains(t, validateFlags(ingest.SearchRequest{MaxResults: n(40)}), "-q: query is required")
	assert.ErrorContains(t, validateFlags(ingest.SearchRequest{Query: "dune", MaxResults: n(0)}), "-n: max_results must be at least 1")
	assert.ErrorContains(t, validateFlags(ingest.SearchRequest{Query: "dune", MaxResults: n(101)}), "-n: max_results must be at most 100")
	assert.ErrorContains(t, validateFlags(ingest.SearchRequest{Query: "dune", MinRating: 5.5}), "-min-rating")
	assert.ErrorContains(t, validateFlags(ingest.SearchRequest{Query: "dune", MinPages: -1}), "-min-pages")
}

func TestPrintResult(t *testing.T) {
	year, rating := "1965", 4.5
	res := &ingest.Result{
		ID:      "run-1",
		Fetched: 3,
		Matched: 2,
		Stored:  1,
		Books: []catalog.Row{
			{ID: "b1", Title: "Dune", Authors: []string{"Frank Herbert"}, Year: &year, AverageRating: &rating},
		},
		Failures: []ingest.Failure{{ID: "b2", Error: "boom"}},
	}

	var buf bytes.Buffer
	printResult(&buf, res)

	out := buf.String()
	assert.Contains(t, out, "Run run-1: fetched 3, matched 2, stored 1")
	assert.Contains(t, out, "Frank Herbert")
	assert.Contains(t, out, "1965")
	assert.Contains(t, out, "4.5")
	assert.Contains(t, out, "failed b2: boom")
}
