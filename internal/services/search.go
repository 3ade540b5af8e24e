package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lpielikys/pokedextracker-backend/internal/database"
	"github.com/lpielikys/pokedextracker-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// MaxSearchItems caps both the candidate universe and topK
	MaxSearchItems = 300
	// DefaultTopK is the result count when the caller doesn't ask for one
	DefaultTopK = 20
)

// Per-term match weights. A term scores the best match it achieves.
const (
	scoreNamePrefix    = 10
	scoreNameSubstring = 5
	scoreAnyField      = 1
)

// SearchFilters are the hard include/exclude predicates. Nil pointer fields
// mean "no filter".
type SearchFilters struct {
	Region        string
	Caught        *bool
	Shiny         *bool
	HasScreenshot bool
}

// SearchCandidate joins catalog metadata with the caller's collection state.
// Species the caller doesn't own appear with Caught=false (synthesized for
// scoring, never persisted).
type SearchCandidate struct {
	models.CatalogPokemon
	Caught     bool
	Shiny      bool
	Notes      string
	Screenshot string
}

// SearchResult is one ranked candidate.
type SearchResult struct {
	SearchCandidate
	Similarity float64
}

// ClampTopK normalizes the requested result count.
func ClampTopK(topK int) int {
	if topK <= 0 {
		return DefaultTopK
	}
	if topK > MaxSearchItems {
		return MaxSearchItems
	}
	return topK
}

// CatalogUniverse reads the cached catalog from the pokedex collection.
func CatalogUniverse(ctx context.Context) ([]models.CatalogPokemon, error) {
	coll := database.DB.Collection("pokedex")
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetLimit(MaxSearchItems).SetSort(bson.M{"pokemonId": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []models.CatalogPokemon
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// BuildCandidates overlays the user's entries onto the catalog universe.
func BuildCandidates(catalog []models.CatalogPokemon, entries []models.DexEntry) []SearchCandidate {
	byID := make(map[int]models.DexEntry, len(entries))
	for _, e := range entries {
		byID[e.PokemonID] = e
	}

	candidates := make([]SearchCandidate, 0, len(catalog))
	for _, base := range catalog {
		c := SearchCandidate{CatalogPokemon: base}
		if c.Region == "" {
			c.Region = InferRegion(c.PokemonID)
		}
		if entry, ok := byID[base.PokemonID]; ok {
			c.Caught = true
			c.Shiny = entry.Shiny
			c.Notes = entry.Notes
			c.Screenshot = entry.Screenshot
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// ApplyFilters keeps only candidates passing every configured predicate.
func ApplyFilters(candidates []SearchCandidate, filters SearchFilters) []SearchCandidate {
	region := strings.ToLower(strings.TrimSpace(filters.Region))
	out := make([]SearchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if region != "" && strings.ToLower(c.Region) != region {
			continue
		}
		if filters.Caught != nil && c.Caught != *filters.Caught {
			continue
		}
		if filters.Shiny != nil && c.Shiny != *filters.Shiny {
			continue
		}
		if filters.HasScreenshot && c.Screenshot == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// candidateText builds the searchable text blob for one candidate.
func candidateText(c SearchCandidate) string {
	parts := []string{fmt.Sprintf("Name: %s", c.Name)}
	if len(c.Types) > 0 {
		parts = append(parts, fmt.Sprintf("Types: %s", strings.Join(c.Types, ", ")))
	}
	if c.Notes != "" {
		parts = append(parts, fmt.Sprintf("Notes: %s", c.Notes))
	}
	if c.Caught {
		parts = append(parts, "Status: caught")
	} else {
		parts = append(parts, "Status: not caught")
	}
	if c.Shiny {
		parts = append(parts, "Shiny")
	}
	if c.Region != "" {
		parts = append(parts, fmt.Sprintf("Region: %s", c.Region))
	}
	return strings.Join(parts, ". ")
}

// scoreCandidate sums the best per-term match: name prefix beats name
// substring beats any-field substring.
func scoreCandidate(c SearchCandidate, terms []string) float64 {
	name := strings.ToLower(c.Name)
	blob := strings.ToLower(candidateText(c))

	score := 0.0
	for _, term := range terms {
		switch {
		case strings.HasPrefix(name, term):
			score += scoreNamePrefix
		case strings.Contains(name, term):
			score += scoreNameSubstring
		case strings.Contains(blob, term):
			score += scoreAnyField
		}
	}
	return score
}

// RankLocal scores and ranks candidates for a free-text query. An empty
// query returns all candidates (score 0); otherwise zero-score candidates
// are dropped. Ties break on ascending pokemonId so results are stable.
func RankLocal(candidates []SearchCandidate, query string, topK int) []SearchResult {
	topK = ClampTopK(topK)
	terms := strings.Fields(strings.ToLower(query))

	results := make([]SearchResult, 0, len(candidates))
	for _, c := range candidates {
		score := 0.0
		if len(terms) > 0 {
			score = scoreCandidate(c, terms)
			if score == 0 {
				continue
			}
		}
		results = append(results, SearchResult{SearchCandidate: c, Similarity: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].PokemonID < results[j].PokemonID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
