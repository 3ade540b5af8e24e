package handlers

import (
	"net/http"

	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

// GetPokedex returns the static catalog for one region, sorted by dex number.
func GetPokedex(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	if region == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":            "Missing required parameter: region",
			"availableRegions": services.AllRegions(),
		})
		return
	}

	if !services.IsValidRegion(region) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":            "Invalid region: " + region,
			"availableRegions": services.AllRegions(),
		})
		return
	}

	pokemonList, err := services.PokemonByRegion(region)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build catalog: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"region":  region,
		"count":   len(pokemonList),
		"pokemon": pokemonList,
	})
}
