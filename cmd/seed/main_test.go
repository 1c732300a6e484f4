package main

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookscape/internal/catalog"
)

func TestGenerateVolumes(t *testing.T) {
	a := generateVolumes(50, rand.New(rand.NewPCG(7, 7)))
	b := generateVolumes(50, rand.New(rand.NewPCG(7, 7)))

	require.Len(t, a, 50)
	assert.Equal(t, a, b, "same seed must produce the same books")

	ids := make(map[string]bool)
	for _, v := range a {
		assert.False(t, ids[v.ID], "duplicate id %s", v.ID)
		ids[v.ID] = true

		row := catalog.Normalize(v, seedSearchKey)
		require.NotNil(t, row.Year)
		assert.Len(t, *row.Year, 4)
		require.NotNil(t, row.ISBN)
		if row.Saleability == "FOR_SALE" {
			assert.NotNil(t, row.RetailPrice)
		} else {
			assert.Nil(t, row.RetailPrice)
		}
	}
}
