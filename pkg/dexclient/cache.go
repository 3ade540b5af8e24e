// Package dexclient is the offline-first companion client for the tracker
// API. It keeps a file-backed local cache of the user's collection, merges
// server state into it (server wins per key), and never lets cached entries
// leak across identities.
package dexclient

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// CacheEntry is one locally cached collection entry.
type CacheEntry struct {
	Caught          bool      `json:"caught"`
	Shiny           bool      `json:"shiny"`
	Notes           string    `json:"notes"`
	Screenshot      string    `json:"screenshot,omitempty"`
	ScreenshotShiny string    `json:"screenshotShiny,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

type cacheState struct {
	UserID  string             `json:"userId"`
	Entries map[int]CacheEntry `json:"entries"`
}

// Cache persists the local collection snapshot as a single JSON file.
type Cache struct {
	path string
}

func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Load reads the cached snapshot. A missing or corrupt file yields an empty
// cache rather than an error: the next merge rebuilds it from the server.
func (c *Cache) Load() (string, map[int]CacheEntry) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return "", map[int]CacheEntry{}
	}

	var state cacheState
	if err := json.Unmarshal(data, &state); err != nil || state.Entries == nil {
		return state.UserID, map[int]CacheEntry{}
	}
	return state.UserID, state.Entries
}

// Save writes the snapshot atomically via a temp file rename.
func (c *Cache) Save(userID string, entries map[int]CacheEntry) error {
	if entries == nil {
		entries = map[int]CacheEntry{}
	}
	data, err := json.MarshalIndent(cacheState{UserID: userID, Entries: entries}, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// Clear removes the snapshot entirely. Used on identity change so no entry
// from the previous user is ever observable.
func (c *Cache) Clear() error {
	err := os.Remove(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
