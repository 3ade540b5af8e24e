package handlers

import (
	"context"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/models"
	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

// parseBoolParam reads an optional boolean query parameter. Unrecognized
// values are treated as absent, matching no filter.
func parseBoolParam(value string) *bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	default:
		return nil
	}
}

// Search ranks the caller's collection (joined with the catalog) against a
// free-text query. With ai=true and a configured index, the query is
// delegated to the managed search service and the caller's own state is
// overlaid on the hits; on upstream failure the local path answers instead.
func Search(w http.ResponseWriter, r *http.Request) {
	principal := requirePrincipal(w, r)
	if principal == nil {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	filters := services.SearchFilters{
		Region: r.URL.Query().Get("region"),
		Caught: parseBoolParam(r.URL.Query().Get("caught")),
		Shiny:  parseBoolParam(r.URL.Query().Get("shiny")),
	}
	if v := parseBoolParam(r.URL.Query().Get("hasScreenshot")); v != nil && *v {
		filters.HasScreenshot = true
	}

	topK := services.DefaultTopK
	if v, err := strconv.Atoi(r.URL.Query().Get("topK")); err == nil {
		topK = v
	}
	topK = services.ClampTopK(topK)

	wantAI := false
	if v := parseBoolParam(r.URL.Query().Get("ai")); v != nil {
		wantAI = *v
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	entries, err := services.ListByUser(ctx, principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query user collection: "+err.Error())
		return
	}

	if wantAI && searchIndexSvc != nil {
		if results, ok := delegatedSearch(ctx, query, filters, topK, entries); ok {
			respondSearch(w, query, true, results)
			return
		}
		// Fall through to the local path when the index is unavailable
	}

	catalog, err := services.CatalogUniverse(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query catalog: "+err.Error())
		return
	}

	candidates := services.ApplyFilters(services.BuildCandidates(catalog, entries), filters)
	respondSearch(w, query, false, services.RankLocal(candidates, query, topK))
}

// delegatedSearch runs the managed-index path: the index holds species
// metadata only, so the caller's caught/shiny/notes overlay and the hard
// filter predicates are re-applied locally afterwards.
func delegatedSearch(ctx context.Context, query string, filters services.SearchFilters, topK int, entries []models.DexEntry) ([]services.SearchResult, bool) {
	docs, scores, err := searchIndexSvc.Query(ctx, query, filters, topK)
	if err != nil {
		log.Printf("Search index failed, falling back to local search: %v", err)
		return nil, false
	}

	candidates := services.ApplyFilters(services.BuildCandidates(docs, entries), filters)
	results := make([]services.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, services.SearchResult{
			SearchCandidate: c,
			Similarity:      scores[c.PokemonID],
		})
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return results, true
}

func respondSearch(w http.ResponseWriter, query string, usedAI bool, results []services.SearchResult) {
	items := make([]map[string]interface{}, 0, len(results))
	for _, res := range results {
		item := map[string]interface{}{
			"pokemonId":   res.PokemonID,
			"name":        res.Name,
			"types":       res.Types,
			"region":      res.Region,
			"sprite":      res.Sprite,
			"spriteShiny": res.SpriteShiny,
			"caught":      res.Caught,
			"shiny":       res.Shiny,
			"notes":       res.Notes,
			"similarity":  math.Round(res.Similarity*10000) / 10000,
		}
		if res.Screenshot != "" {
			item["screenshot"] = res.Screenshot
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"count":   len(items),
		"usedAI":  usedAI,
		"results": items,
	})
}
