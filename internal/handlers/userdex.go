package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

type upsertDexRequest struct {
	PokemonID       int    `json:"pokemonId"`
	Caught          *bool  `json:"caught"`
	Shiny           bool   `json:"shiny"`
	Notes           string `json:"notes"`
	Screenshot      string `json:"screenshot"`
	ScreenshotShiny string `json:"screenshotShiny"`
}

type deleteDexRequest struct {
	PokemonID int `json:"pokemonId"`
}

// GetUserdex returns the caller's complete collection, unordered.
func GetUserdex(w http.ResponseWriter, r *http.Request) {
	principal := requirePrincipal(w, r)
	if principal == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	entries, err := services.ListByUser(ctx, principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch collection: "+err.Error())
		return
	}

	pokemon := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		item := map[string]interface{}{
			"pokemonId": e.PokemonID,
			"caught":    e.Caught,
			"shiny":     e.Shiny,
			"notes":     e.Notes,
			"updatedAt": e.UpdatedAt,
		}
		if e.Screenshot != "" {
			item["screenshot"] = e.Screenshot
		}
		if e.ScreenshotShiny != "" {
			item["screenshotShiny"] = e.ScreenshotShiny
		}
		pokemon = append(pokemon, item)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"userId":  principal.UserID,
		"count":   len(pokemon),
		"pokemon": pokemon,
	})
}

// UpsertUserdex toggles caught status for one species. A write with
// caught=false deletes the entry (or no-ops when absent); anything else
// creates or updates it with caught=true.
func UpsertUserdex(w http.ResponseWriter, r *http.Request) {
	principal := requirePrincipal(w, r)
	if principal == nil {
		return
	}

	var req upsertDexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PokemonID <= 0 {
		writeError(w, http.StatusBadRequest, "Missing required parameter: pokemonId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	action, err := services.UpsertCaught(ctx, principal.UserID, req.PokemonID, req.Caught, services.EntryUpdate{
		Shiny:           req.Shiny,
		Notes:           req.Notes,
		Screenshot:      req.Screenshot,
		ScreenshotShiny: req.ScreenshotShiny,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update collection: "+err.Error())
		return
	}

	if action == services.ActionNone {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "No action needed",
			"action":  services.ActionNone,
		})
		return
	}

	services.EmitEvent(principal.UserID, services.EventDexUpdated,
		fmt.Sprintf("userdex/%s/%d", principal.UserID, req.PokemonID),
		map[string]interface{}{
			"pokemonId": req.PokemonID,
			"action":    action,
			"caught":    action != services.ActionUncaught,
		})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   fmt.Sprintf("Pokémon %s successfully", action),
		"action":    action,
		"pokemonId": req.PokemonID,
	})
}

// DeleteUserdex removes one entry. Idempotent: deleting an absent entry is
// still a 200.
func DeleteUserdex(w http.ResponseWriter, r *http.Request) {
	principal := requirePrincipal(w, r)
	if principal == nil {
		return
	}

	var req deleteDexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PokemonID <= 0 {
		writeError(w, http.StatusBadRequest, "Missing required parameter: pokemonId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	action, err := services.RemoveCaught(ctx, principal.UserID, req.PokemonID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete entry: "+err.Error())
		return
	}

	if action == services.ActionUncaught {
		services.EmitEvent(principal.UserID, services.EventDexUpdated,
			fmt.Sprintf("userdex/%s/%d", principal.UserID, req.PokemonID),
			map[string]interface{}{
				"pokemonId": req.PokemonID,
				"action":    services.ActionUncaught,
				"caught":    false,
			})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"action":    action,
		"pokemonId": req.PokemonID,
	})
}
