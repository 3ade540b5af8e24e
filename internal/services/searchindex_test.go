package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilterExpression(t *testing.T) {
	assert.Empty(t, buildFilterExpression(SearchFilters{}))

	assert.Equal(t, "region eq 'kanto'", buildFilterExpression(SearchFilters{Region: " Kanto "}))
	assert.Equal(t, "caught eq true", buildFilterExpression(SearchFilters{Caught: boolPtr(true)}))
	assert.Equal(t, "shiny eq false", buildFilterExpression(SearchFilters{Shiny: boolPtr(false)}))
	assert.Equal(t,
		"region eq 'johto' and caught eq true and shiny eq true",
		buildFilterExpression(SearchFilters{Region: "johto", Caught: boolPtr(true), Shiny: boolPtr(true)}),
	)
}

func TestSearchIndexQuery(t *testing.T) {
	var gotBody searchIndexRequest
	var gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/indexes/pokedex-index/docs/search", r.URL.Path)
		require.Equal(t, searchAPIVersion, r.URL.Query().Get("api-version"))
		gotAPIKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": []map[string]interface{}{
				{"pokemonId": 25, "name": "pikachu", "types": []string{"electric"}, "region": "kanto", "@search.score": 2.5},
				{"pokemonId": 26, "@search.score": 1.0},
			},
		})
	}))
	defer server.Close()

	svc := NewSearchIndexService(server.URL, "secret-key", "pokedex-index")

	docs, scores, err := svc.Query(context.Background(), "pika", SearchFilters{Region: "kanto", Caught: boolPtr(true)}, 10)
	require.NoError(t, err)

	assert.Equal(t, "secret-key", gotAPIKey)
	assert.Equal(t, "*pika*", gotBody.Search)
	assert.Equal(t, "full", gotBody.QueryType)
	assert.Equal(t, "all", gotBody.SearchMode)
	assert.Equal(t, "region eq 'kanto' and caught eq true", gotBody.Filter)
	assert.Equal(t, 10, gotBody.Top)

	require.Len(t, docs, 2)
	assert.Equal(t, "pikachu", docs[0].Name)
	assert.Equal(t, 2.5, scores[25])

	// Missing metadata is synthesized so hits stay renderable
	assert.Equal(t, "pokemon-26", docs[1].Name)
	assert.Equal(t, "kanto", docs[1].Region)
	assert.Contains(t, docs[1].Sprite, "/26.png")
	assert.Equal(t, 1.0, scores[26])
}

func TestSearchIndexQuery_EmptyQueryMatchesAll(t *testing.T) {
	var gotBody searchIndexRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{"value": []interface{}{}})
	}))
	defer server.Close()

	svc := NewSearchIndexService(server.URL, "key", "")

	_, _, err := svc.Query(context.Background(), "  ", SearchFilters{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "*", gotBody.Search)
	assert.Equal(t, "simple", gotBody.QueryType)
	assert.Equal(t, DefaultTopK, gotBody.Top)
}

func TestSearchIndexQuery_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index not found", http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewSearchIndexService(server.URL, "key", "missing")

	_, _, err := svc.Query(context.Background(), "pika", SearchFilters{}, 5)
	assert.Error(t, err)
}
