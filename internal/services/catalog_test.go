package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionsAreContiguous(t *testing.T) {
	// National-dex ranges must not overlap and must cover 1..898 without gaps
	next := 1
	for _, key := range []string{"kanto", "johto", "hoenn", "sinnoh", "unova", "kalos", "alola", "galar"} {
		r, ok := Regions[key]
		require.True(t, ok, "missing region %s", key)
		assert.Equal(t, next, r.Offset, "region %s starts at wrong dex number", key)
		next = r.Offset + r.Limit
	}
	assert.Equal(t, 899, next)
}

func TestIsValidRegion(t *testing.T) {
	assert.True(t, IsValidRegion("kanto"))
	assert.True(t, IsValidRegion("Kanto"))
	assert.True(t, IsValidRegion("GALAR"))
	assert.False(t, IsValidRegion("orre"))
	assert.False(t, IsValidRegion(""))
}

func TestAllRegionsSorted(t *testing.T) {
	regions := AllRegions()
	require.Len(t, regions, len(Regions))
	for i := 1; i < len(regions); i++ {
		assert.Less(t, regions[i-1], regions[i])
	}
}

func TestInferRegion(t *testing.T) {
	assert.Equal(t, "kanto", InferRegion(1))
	assert.Equal(t, "kanto", InferRegion(151))
	assert.Equal(t, "johto", InferRegion(152))
	assert.Equal(t, "hoenn", InferRegion(252))
	assert.Equal(t, "galar", InferRegion(898))
	assert.Equal(t, "", InferRegion(0))
	assert.Equal(t, "", InferRegion(899))
}

func TestPokemonByRegion(t *testing.T) {
	kanto, err := PokemonByRegion("Kanto")
	require.NoError(t, err)
	require.Len(t, kanto, 151)
	assert.Equal(t, 1, kanto[0].PokemonID)
	assert.Equal(t, 151, kanto[150].PokemonID)
	assert.Equal(t, "kanto", kanto[0].Region)
	assert.Contains(t, kanto[0].Sprite, "/1.png")
	assert.Contains(t, kanto[0].SpriteShiny, "/shiny/1.png")

	_, err = PokemonByRegion("orre")
	assert.Error(t, err)
}
