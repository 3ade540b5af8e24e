package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lpielikys/pokedextracker-backend/internal/config"
	"github.com/lpielikys/pokedextracker-backend/internal/models"
	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

// Package-wide service handles, wired once at startup.
var (
	blobService    *services.BlobService
	searchIndexSvc *services.SearchIndexService
	directorySvc   *services.DirectoryService
)

// InitServices wires the external collaborators the handlers depend on.
// Blob and search services stay nil when not configured; handlers degrade
// per endpoint (uploads unavailable, local search only).
func InitServices(cfg *config.Config) error {
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		svc, err := services.NewBlobService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.MediaFolder)
		if err != nil {
			return err
		}
		blobService = svc
	}

	if cfg.SearchConfigured() {
		searchIndexSvc = services.NewSearchIndexService(cfg.SearchEndpoint, cfg.SearchAPIKey, cfg.SearchIndex)
	}

	directorySvc = services.NewDirectoryService(
		cfg.DirectoryEndpoint,
		cfg.DirectoryTenant,
		cfg.DirectoryClientID,
		cfg.DirectorySecret,
		cfg.DirectoryAppID,
		cfg.AdminRoleName,
	)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}

// requirePrincipal returns the authenticated principal or writes a 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) *models.Principal {
	principal := services.GetClientPrincipal(r)
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil
	}
	return principal
}

// requireAdmin returns the principal only when it resolves to an admin role.
// Resolution failures fail closed as 403.
func requireAdmin(w http.ResponseWriter, r *http.Request) *models.Principal {
	principal := services.GetClientPrincipal(r)
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil
	}
	isAdmin, _ := directorySvc.ResolveIsAdmin(r.Context(), principal)
	if !isAdmin {
		writeError(w, http.StatusForbidden, "Admin access required")
		return nil
	}
	return principal
}
