package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

// Max decoded screenshot size: 10MB
const maxMediaBytes = 10 << 20

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

type uploadMediaRequest struct {
	PokemonID   int    `json:"pokemonId"`
	File        string `json:"file"` // base64, optionally with a data-URL prefix
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

// UploadMedia stores a screenshot blob for a species the caller has already
// caught. The resulting URL is what the client then writes into the entry's
// screenshot slot via PUT /api/userdex.
func UploadMedia(w http.ResponseWriter, r *http.Request) {
	principal := requirePrincipal(w, r)
	if principal == nil {
		return
	}

	if blobService == nil {
		writeError(w, http.StatusInternalServerError, "Media storage is not configured")
		return
	}

	var req uploadMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PokemonID <= 0 || req.File == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters: pokemonId and file")
		return
	}

	data, err := base64.StdEncoding.DecodeString(dataURLPrefix.ReplaceAllString(req.File, ""))
	if err != nil {
		writeError(w, http.StatusBadRequest, "File must be base64 encoded")
		return
	}
	if len(data) == 0 || len(data) > maxMediaBytes {
		writeError(w, http.StatusBadRequest, "File is empty or exceeds the 10MB limit")
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/png"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	blobName := services.NewBlobName(principal.UserID, req.PokemonID, req.FileName)
	url, err := blobService.Upload(ctx, blobName, data, contentType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload file: "+err.Error())
		return
	}

	// The species must already be marked caught by the caller. Checked after
	// the upload so a failed check can roll the blob back, leaving no orphan.
	entry, err := services.GetOne(ctx, principal.UserID, req.PokemonID)
	if err != nil || entry == nil {
		if _, delErr := blobService.Delete(ctx, blobName); delErr != nil {
			log.Printf("Failed to roll back blob %s: %v", blobName, delErr)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to verify collection entry: "+err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "Pokémon must be marked caught before uploading a screenshot")
		return
	}

	services.EmitEvent(principal.UserID, services.EventMediaUploaded,
		fmt.Sprintf("media/%s/%d", principal.UserID, req.PokemonID),
		map[string]interface{}{
			"pokemonId":   req.PokemonID,
			"blobName":    blobName,
			"fileSize":    len(data),
			"contentType": contentType,
		})

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"message":   "File uploaded successfully",
		"url":       url,
		"blobName":  blobName,
		"pokemonId": req.PokemonID,
	})
}

// DeleteMedia removes a screenshot blob. Only the blob's owner may delete it:
// blob names are prefixed by the owning user's id.
func DeleteMedia(w http.ResponseWriter, r *http.Request) {
	principal := requirePrincipal(w, r)
	if principal == nil {
		return
	}

	if blobService == nil {
		writeError(w, http.StatusInternalServerError, "Media storage is not configured")
		return
	}

	blobName := r.URL.Query().Get("blobName")
	if blobName == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameter: blobName")
		return
	}

	if !services.OwnsBlob(principal.UserID, blobName) {
		writeError(w, http.StatusForbidden, "Cannot delete media owned by another user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	found, err := blobService.Delete(ctx, blobName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete file: "+err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Media not found")
		return
	}

	services.EmitEvent(principal.UserID, services.EventMediaDeleted,
		"media/"+blobName,
		map[string]interface{}{"blobName": blobName})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Media deleted successfully",
		"blobName": blobName,
	})
}
