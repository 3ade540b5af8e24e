package dexclient

import "time"

// ServerEntry is one collection entry as returned by GET /api/userdex.
type ServerEntry struct {
	PokemonID       int        `json:"pokemonId"`
	Caught          bool       `json:"caught"`
	Shiny           bool       `json:"shiny"`
	Notes           string     `json:"notes"`
	Screenshot      string     `json:"screenshot,omitempty"`
	ScreenshotShiny string     `json:"screenshotShiny,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// Merge overlays server entries onto the local cache. Server state overwrites
// matching keys in full; local-only keys survive untouched. The entry
// timestamp comes from the server's updatedAt when present, else now.
//
// This is a last-write-wins overlay with no conflict detection. The server
// never deletes an entry except on the client's own DELETE, so overwriting
// per key cannot lose state the client does not already know about.
func Merge(local map[int]CacheEntry, server []ServerEntry, now time.Time) map[int]CacheEntry {
	merged := make(map[int]CacheEntry, len(local)+len(server))
	for id, entry := range local {
		merged[id] = entry
	}

	for _, e := range server {
		ts := now
		if e.UpdatedAt != nil && !e.UpdatedAt.IsZero() {
			ts = *e.UpdatedAt
		}
		merged[e.PokemonID] = CacheEntry{
			Caught:          e.Caught,
			Shiny:           e.Shiny,
			Notes:           e.Notes,
			Screenshot:      e.Screenshot,
			ScreenshotShiny: e.ScreenshotShiny,
			Timestamp:       ts,
		}
	}
	return merged
}
