package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/models"
)

const searchAPIVersion = "2023-11-01"

// SearchIndexService queries a managed full-text search index holding
// species metadata. Per-user caught/shiny/notes state is overlaid by the
// caller after the index responds.
type SearchIndexService struct {
	endpoint  string
	apiKey    string
	indexName string
	client    *http.Client
}

func NewSearchIndexService(endpoint, apiKey, indexName string) *SearchIndexService {
	if indexName == "" {
		indexName = "userdex"
	}
	return &SearchIndexService{
		endpoint:  strings.TrimRight(endpoint, "/"),
		apiKey:    apiKey,
		indexName: indexName,
		client:    &http.Client{Timeout: 4 * time.Second},
	}
}

// escapeFilterValue doubles single quotes per the index filter syntax.
func escapeFilterValue(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// buildFilterExpression translates the hard predicates into the index's
// filter-expression syntax.
func buildFilterExpression(filters SearchFilters) string {
	var clauses []string
	if region := strings.ToLower(strings.TrimSpace(filters.Region)); region != "" {
		clauses = append(clauses, fmt.Sprintf("region eq '%s'", escapeFilterValue(region)))
	}
	if filters.Caught != nil {
		clauses = append(clauses, fmt.Sprintf("caught eq %t", *filters.Caught))
	}
	if filters.Shiny != nil {
		clauses = append(clauses, fmt.Sprintf("shiny eq %t", *filters.Shiny))
	}
	return strings.Join(clauses, " and ")
}

type searchIndexRequest struct {
	Search     string `json:"search"`
	Filter     string `json:"filter,omitempty"`
	Top        int    `json:"top"`
	QueryType  string `json:"queryType"`
	SearchMode string `json:"searchMode"`
	Select     string `json:"select"`
}

type searchIndexDoc struct {
	PokemonID   int      `json:"pokemonId"`
	Name        string   `json:"name"`
	Types       []string `json:"types"`
	Region      string   `json:"region"`
	Sprite      string   `json:"sprite"`
	SpriteShiny string   `json:"spriteShiny"`
	Score       float64  `json:"@search.score"`
}

type searchIndexResponse struct {
	Value []searchIndexDoc `json:"value"`
}

// Query runs a contains-wildcard full-text query against the index and maps
// the hits back to catalog metadata plus relevance scores.
func (s *SearchIndexService) Query(ctx context.Context, query string, filters SearchFilters, topK int) ([]models.CatalogPokemon, map[int]float64, error) {
	searchQuery := "*"
	queryType := "simple"
	if q := strings.TrimSpace(query); q != "" && q != "*" {
		searchQuery = "*" + q + "*"
		queryType = "full"
	}

	body := searchIndexRequest{
		Search:     searchQuery,
		Filter:     buildFilterExpression(filters),
		Top:        ClampTopK(topK),
		QueryType:  queryType,
		SearchMode: "all",
		Select:     "pokemonId,name,types,region,sprite,spriteShiny",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}

	url := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", s.endpoint, s.indexName, searchAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, nil, fmt.Errorf("search index query failed: %s - %s", resp.Status, string(text))
	}

	var data searchIndexResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, nil, err
	}

	docs := make([]models.CatalogPokemon, 0, len(data.Value))
	scores := make(map[int]float64, len(data.Value))
	for _, doc := range data.Value {
		meta := models.CatalogPokemon{
			PokemonID:   doc.PokemonID,
			Name:        doc.Name,
			Types:       doc.Types,
			Region:      doc.Region,
			Sprite:      doc.Sprite,
			SpriteShiny: doc.SpriteShiny,
		}
		if meta.Name == "" {
			meta.Name = fmt.Sprintf("pokemon-%d", doc.PokemonID)
		}
		if meta.Region == "" {
			meta.Region = InferRegion(doc.PokemonID)
		}
		if meta.Sprite == "" {
			meta.Sprite = SpriteURL(doc.PokemonID)
		}
		if meta.SpriteShiny == "" {
			meta.SpriteShiny = ShinySpriteURL(doc.PokemonID)
		}
		docs = append(docs, meta)
		scores[doc.PokemonID] = doc.Score
	}
	return docs, scores, nil
}
