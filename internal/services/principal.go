package services

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"github.com/lpielikys/pokedextracker-backend/internal/models"
)

// PrincipalHeader carries the base64-encoded principal JSON injected by the
// hosting platform after authentication.
const PrincipalHeader = "X-Ms-Client-Principal"

// GetClientPrincipal decodes the authenticated principal from the request.
// Returns nil when the header is missing or malformed; the caller decides
// whether that is a 401.
func GetClientPrincipal(r *http.Request) *models.Principal {
	header := r.Header.Get(PrincipalHeader)
	if header == "" {
		return nil
	}

	decoded, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		log.Printf("Failed to decode client principal: %v", err)
		return nil
	}

	var principal models.Principal
	if err := json.Unmarshal(decoded, &principal); err != nil {
		log.Printf("Failed to parse client principal: %v", err)
		return nil
	}

	if principal.UserID == "" {
		return nil
	}
	return &principal
}
