package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/models"
	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

type adminUserRequest struct {
	Action string `json:"action"`
	UserID string `json:"userId"`
}

// auditAdminAction records an admin mutation; failure to log never fails the
// action itself.
func auditAdminAction(ctx context.Context, adminID, action, targetID, details string) {
	err := services.AddAuditLog(ctx, models.AuditLog{
		AdminID:  adminID,
		Action:   action,
		TargetID: targetID,
		Details:  details,
	})
	if err != nil {
		log.Printf("Failed to record audit log for %s: %v", action, err)
	}
}

// AdminUsers multiplexes directory user-management actions for the admin
// dashboard: listUsers, promoteAdmin, demoteAdmin, blockUser, unblockUser.
func AdminUsers(w http.ResponseWriter, r *http.Request) {
	principal := requireAdmin(w, r)
	if principal == nil {
		return
	}

	var req adminUserRequest
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
	case "listUsers":
		users, err := directorySvc.ListUsers(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch users: "+err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"users": users,
			"count": len(users),
		})

	case "promoteAdmin", "demoteAdmin", "blockUser", "unblockUser":
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, "Missing required parameter: userId")
			return
		}

		var err error
		switch req.Action {
		case "promoteAdmin":
			err = directorySvc.PromoteAdmin(ctx, req.UserID)
		case "demoteAdmin":
			err = directorySvc.DemoteAdmin(ctx, req.UserID)
		case "blockUser":
			err = directorySvc.BlockUser(ctx, req.UserID)
		default:
			err = directorySvc.UnblockUser(ctx, req.UserID)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to "+req.Action+": "+err.Error())
			return
		}

		auditAdminAction(ctx, principal.UserID, req.Action, req.UserID, "")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"action":  req.Action,
			"userId":  req.UserID,
		})

	default:
		writeError(w, http.StatusBadRequest, "Invalid action or missing parameters")
	}
}
