package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

// EnableShare issues (or reuses) the caller's share token and stamps it onto
// every entry they own.
func EnableShare(w http.ResponseWriter, r *http.Request) {
	principal := requirePrincipal(w, r)
	if principal == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	token, err := services.EnableSharing(ctx, principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to enable sharing: "+err.Error())
		return
	}

	services.EmitEvent(principal.UserID, services.EventShareChanged,
		"share/"+principal.UserID,
		map[string]interface{}{"enabled": true})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"shareId": token,
	})
}

// DisableShare clears the caller's share token from all entries.
func DisableShare(w http.ResponseWriter, r *http.Request) {
	principal := requirePrincipal(w, r)
	if principal == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := services.DisableSharing(ctx, principal.UserID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to disable sharing: "+err.Error())
		return
	}

	services.EmitEvent(principal.UserID, services.EventShareChanged,
		"share/"+principal.UserID,
		map[string]interface{}{"enabled": false})

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// GetSharedView returns a read-only snapshot of the collection behind a share
// token. No authentication required; the token is the credential.
func GetSharedView(w http.ResponseWriter, r *http.Request) {
	shareID := chi.URLParam(r, "shareId")
	if shareID == "" {
		writeError(w, http.StatusBadRequest, "Missing share token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	entries, err := services.SharedView(ctx, shareID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch shared collection: "+err.Error())
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusNotFound, "Shared collection not found")
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
			item["screenshot"] = sharedScreenshotURL(e.Screenshot)
		}
		if e.ScreenshotShiny != "" {
			item["screenshotShiny"] = sharedScreenshotURL(e.ScreenshotShiny)
		}
		pokemon = append(pokemon, item)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"shareId": shareID,
		"count":   len(pokemon),
		"pokemon": pokemon,
	})
}

// sharedScreenshotURL converts a stored screenshot reference into something
// safe to hand to an anonymous viewer. Plain URLs pass through; bare blob
// names get a signed delivery URL.
func sharedScreenshotURL(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if blobService == nil {
		return ref
	}
	signed, err := blobService.SignedURL(ref)
	if err != nil {
		log.Printf("Failed to sign screenshot URL: %v", err)
		return ref
	}
	return signed
}
