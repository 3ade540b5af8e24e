package dexclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer serves GET /api/userdex for whichever user the principal header
// names, from a per-user entry map.
func fakeServer(t *testing.T, entries map[string][]ServerEntry) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encoded := r.Header.Get(PrincipalHeader)
		if encoded == "" {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		var principal struct {
			UserID string `json:"userId"`
		}
		require.NoError(t, json.Unmarshal(decoded, &principal))

		pokemon := entries[principal.UserID]
		if pokemon == nil {
			pokemon = []ServerEntry{}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"userId":  principal.UserID,
			"count":   len(pokemon),
			"pokemon": pokemon,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func principalFor(userID string) string {
	payload, _ := json.Marshal(map[string]string{"userId": userID})
	return base64.StdEncoding.EncodeToString(payload)
}

func newTestSyncer(t *testing.T, baseURL string) (*Syncer, *Cache) {
	cache := NewCache(filepath.Join(t.TempDir(), "dexcache.json"))
	client := NewClient(baseURL)
	return NewSyncer(client, cache), cache
}

func TestSyncNow_PopulatesCacheFromServer(t *testing.T) {
	server := fakeServer(t, map[string][]ServerEntry{
		"u1": {
			{PokemonID: 25, Caught: true, Shiny: true, Notes: "Victory Road"},
			{PokemonID: 4, Caught: true},
		},
	})
	syncer, cache := newTestSyncer(t, server.URL)
	syncer.client.SetPrincipal(principalFor("u1"))

	require.NoError(t, syncer.SyncNow(context.Background()))

	userID, entries := cache.Load()
	assert.Equal(t, "u1", userID)
	require.Len(t, entries, 2)
	assert.True(t, entries[25].Shiny)
	assert.Equal(t, "Victory Road", entries[25].Notes)
}

func TestSyncNow_PreservesLocalOnlyKeys(t *testing.T) {
	server := fakeServer(t, map[string][]ServerEntry{
		"u1": {{PokemonID: 1, Caught: true, Notes: "a-updated"}},
	})
	syncer, cache := newTestSyncer(t, server.URL)
	syncer.client.SetPrincipal(principalFor("u1"))

	require.NoError(t, cache.Save("u1", map[int]CacheEntry{
		1: {Caught: true, Notes: "a"},
		2: {Caught: true, Notes: "b"},
	}))

	require.NoError(t, syncer.SyncNow(context.Background()))

	_, entries := cache.Load()
	require.Len(t, entries, 2)
	assert.Equal(t, "a-updated", entries[1].Notes)
	assert.Equal(t, "b", entries[2].Notes)
}

func TestSyncNow_IdentityChangeClearsLocalState(t *testing.T) {
	server := fakeServer(t, map[string][]ServerEntry{
		"u1": {{PokemonID: 1, Caught: true, Notes: "u1 secret"}},
		"u2": {{PokemonID: 2, Caught: true, Notes: "u2 entry"}},
	})
	syncer, cache := newTestSyncer(t, server.URL)

	syncer.client.SetPrincipal(principalFor("u1"))
	require.NoError(t, syncer.SyncNow(context.Background()))

	syncer.SignIn(principalFor("u2"))

	// Cache is empty immediately after the identity change
	userID, entries := cache.Load()
	assert.Empty(t, userID)
	assert.Empty(t, entries)

	require.NoError(t, syncer.SyncNow(context.Background()))

	userID, entries = cache.Load()
	assert.Equal(t, "u2", userID)
	require.Len(t, entries, 1)
	assert.Equal(t, "u2 entry", entries[2].Notes)
	// Nothing of u1 is observable
	_, leaked := entries[1]
	assert.False(t, leaked)
}

func TestSyncNow_StaleCacheUserIsDropped(t *testing.T) {
	server := fakeServer(t, map[string][]ServerEntry{
		"u2": {{PokemonID: 2, Caught: true}},
	})
	syncer, cache := newTestSyncer(t, server.URL)
	syncer.client.SetPrincipal(principalFor("u2"))

	// Cache left over from another identity, not cleared by SignIn
	require.NoError(t, cache.Save("u1", map[int]CacheEntry{1: {Caught: true, Notes: "u1 secret"}}))

	require.NoError(t, syncer.SyncNow(context.Background()))

	userID, entries := cache.Load()
	assert.Equal(t, "u2", userID)
	require.Len(t, entries, 1)
	_, leaked := entries[1]
	assert.False(t, leaked)
}

func TestSyncNow_FetchFailureLeavesCacheUntouched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	syncer, cache := newTestSyncer(t, server.URL)
	syncer.client.SetPrincipal(principalFor("u1"))

	require.NoError(t, cache.Save("u1", map[int]CacheEntry{1: {Caught: true, Notes: "offline"}}))

	assert.Error(t, syncer.SyncNow(context.Background()))

	userID, entries := cache.Load()
	assert.Equal(t, "u1", userID)
	require.Len(t, entries, 1)
	assert.Equal(t, "offline", entries[1].Notes)
}

func TestSignOut_WipesCache(t *testing.T) {
	server := fakeServer(t, map[string][]ServerEntry{
		"u1": {{PokemonID: 1, Caught: true}},
	})
	syncer, cache := newTestSyncer(t, server.URL)
	syncer.client.SetPrincipal(principalFor("u1"))
	require.NoError(t, syncer.SyncNow(context.Background()))

	syncer.SignOut()

	_, entries := cache.Load()
	assert.Empty(t, entries)
	assert.Error(t, syncer.SyncNow(context.Background()), "signed-out syncer must not fetch")
}

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "nested", "dexcache.json"))

	// Missing file loads empty
	userID, entries := cache.Load()
	assert.Empty(t, userID)
	assert.Empty(t, entries)

	require.NoError(t, cache.Save("u1", map[int]CacheEntry{25: {Caught: true, Shiny: true}}))
	userID, entries = cache.Load()
	assert.Equal(t, "u1", userID)
	assert.True(t, entries[25].Shiny)

	require.NoError(t, cache.Clear())
	require.NoError(t, cache.Clear(), "clearing an already-empty cache succeeds")
	_, entries = cache.Load()
	assert.Empty(t, entries)
}
