package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

type adminMediaRequest struct {
	Action    string `json:"action"`
	UserID    string `json:"userId"`
	PokemonID int    `json:"pokemonId"`
}

// AdminMedia multiplexes media moderation actions: listMedia and
// deleteScreenshot.
func AdminMedia(w http.ResponseWriter, r *http.Request) {
	principal := requireAdmin(w, r)
	if principal == nil {
		return
	}

	var req adminMediaRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Action == "" {
		req.Action = r.URL.Query().Get("action")
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "Missing action")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	switch req.Action {
	case "listMedia":
		media, err := services.ListAllMedia(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list media: "+err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"media":   media,
			"count":   len(media),
		})

	case "deleteScreenshot":
		if req.UserID == "" || req.PokemonID <= 0 {
			writeError(w, http.StatusBadRequest, "Missing required parameters: userId and pokemonId")
			return
		}

		ref, err := services.UnsetScreenshot(ctx, req.UserID, req.PokemonID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete screenshot: "+err.Error())
			return
		}
		if ref == "" {
			writeError(w, http.StatusNotFound, "Media not found")
			return
		}

		// Bare blob names can be deleted from storage too; full URLs only
		// lose their document reference
		if blobService != nil && !strings.HasPrefix(ref, "http") {
			if _, err := blobService.Delete(ctx, ref); err != nil {
				log.Printf("Failed to delete moderated blob %s: %v", ref, err)
			}
		}

		auditAdminAction(ctx, principal.UserID, "deleteScreenshot", req.UserID,
			fmt.Sprintf("pokemonId=%d", req.PokemonID))

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"message":   "Media deleted successfully",
			"userId":    req.UserID,
			"pokemonId": req.PokemonID,
		})

	default:
		writeError(w, http.StatusBadRequest, "Invalid action or missing parameters")
	}
}
