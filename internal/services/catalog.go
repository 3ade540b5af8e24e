package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/models"
)

// Region covers a contiguous range of national-dex numbers.
type Region struct {
	Offset int
	Limit  int
	Name   string
}

// Regions maps lowercase region keys to their national-dex ranges.
var Regions = map[string]Region{
	"kanto":  {Offset: 1, Limit: 151, Name: "Kanto"},
	"johto":  {Offset: 152, Limit: 100, Name: "Johto"},
	"hoenn":  {Offset: 252, Limit: 135, Name: "Hoenn"},
	"sinnoh": {Offset: 387, Limit: 107, Name: "Sinnoh"},
	"unova":  {Offset: 494, Limit: 156, Name: "Unova"},
	"kalos":  {Offset: 650, Limit: 72, Name: "Kalos"},
	"alola":  {Offset: 722, Limit: 88, Name: "Alola"},
	"galar":  {Offset: 810, Limit: 89, Name: "Galar"},
}

const spriteBaseURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon"

const pokeAPIBaseURL = "https://pokeapi.co/api/v2/pokemon"

// pokeAPIClient has the short timeout used for all outbound metadata calls.
var pokeAPIClient = &http.Client{Timeout: 4 * time.Second}

// IsValidRegion reports whether region names a known dex range (case-insensitive).
func IsValidRegion(region string) bool {
	_, ok := Regions[strings.ToLower(region)]
	return ok
}

// AllRegions returns the region keys in a stable order.
func AllRegions() []string {
	keys := make([]string, 0, len(Regions))
	for k := range Regions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InferRegion maps a national-dex number to its region key, or "" if unknown.
func InferRegion(pokemonID int) string {
	for key, r := range Regions {
		if pokemonID >= r.Offset && pokemonID < r.Offset+r.Limit {
			return key
		}
	}
	return ""
}

// SpriteURL returns the default sprite URL for a dex number.
func SpriteURL(pokemonID int) string {
	return fmt.Sprintf("%s/%d.png", spriteBaseURL, pokemonID)
}

// ShinySpriteURL returns the shiny sprite URL for a dex number.
func ShinySpriteURL(pokemonID int) string {
	return fmt.Sprintf("%s/shiny/%d.png", spriteBaseURL, pokemonID)
}

// PokemonByRegion builds the full catalog slice for a region, sorted by dex
// number. Names are placeholders until enriched from PokeAPI.
func PokemonByRegion(region string) ([]models.CatalogPokemon, error) {
	key := strings.ToLower(region)
	regionData, ok := Regions[key]
	if !ok {
		return nil, fmt.Errorf("invalid region: %s", region)
	}

	pokemon := make([]models.CatalogPokemon, 0, regionData.Limit)
	for i := 0; i < regionData.Limit; i++ {
		dexNumber := regionData.Offset + i
		pokemon = append(pokemon, models.CatalogPokemon{
			PokemonID:   dexNumber,
			Name:        fmt.Sprintf("pokemon-%d", dexNumber),
			Sprite:      SpriteURL(dexNumber),
			SpriteShiny: ShinySpriteURL(dexNumber),
			Region:      key,
		})
	}
	return pokemon, nil
}

// pokeAPIResponse is the subset of the PokeAPI pokemon payload we read.
type pokeAPIResponse struct {
	Name  string `json:"name"`
	Types []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		FrontShiny   string `json:"front_shiny"`
	} `json:"sprites"`
}

// PokemonMeta returns catalog metadata for one species, served from the Redis
// cache when possible. On PokeAPI failure it falls back to synthesized values
// so search never hard-fails on the metadata dependency.
func PokemonMeta(ctx context.Context, pokemonID int) models.CatalogPokemon {
	cacheKey := CacheKey("pokemeta", fmt.Sprintf("%d", pokemonID))

	var cached models.CatalogPokemon
	if found, err := Cache.Get(cacheKey, &cached); err == nil && found {
		return cached
	}

	meta := models.CatalogPokemon{
		PokemonID:   pokemonID,
		Name:        fmt.Sprintf("pokemon-%d", pokemonID),
		Sprite:      SpriteURL(pokemonID),
		SpriteShiny: ShinySpriteURL(pokemonID),
		Region:      InferRegion(pokemonID),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%d", pokeAPIBaseURL, pokemonID), nil)
	if err != nil {
		return meta
	}
	resp, err := pokeAPIClient.Do(req)
	if err != nil {
		return meta
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var data pokeAPIResponse
		if err := json.NewDecoder(resp.Body).Decode(&data); err == nil {
			if data.Name != "" {
				meta.Name = data.Name
			}
			for _, t := range data.Types {
				meta.Types = append(meta.Types, t.Type.Name)
			}
			if data.Sprites.FrontDefault != "" {
				meta.Sprite = data.Sprites.FrontDefault
			}
			if data.Sprites.FrontShiny != "" {
				meta.SpriteShiny = data.Sprites.FrontShiny
			}
		}
	}

	// Cache even the fallback so a flaky PokeAPI doesn't get hammered
	Cache.Set(cacheKey, meta)
	return meta
}
