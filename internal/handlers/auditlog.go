package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/models"
	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

type auditLogRequest struct {
	Action string `json:"action"`
	Log    struct {
		Action   string `json:"action"`
		TargetID string `json:"targetId"`
		Details  string `json:"details"`
	} `json:"log"`
}

// AuditLog serves the admin audit trail: getLogs returns the latest 100
// actions, addLog records one.
func AuditLog(w http.ResponseWriter, r *http.Request) {
	principal := requireAdmin(w, r)
	if principal == nil {
		return
	}

	var req auditLogRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Action == "" {
		req.Action = r.URL.Query().Get("action")
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	switch req.Action {
	case "getLogs":
		logs, err := services.GetAuditLogs(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch audit logs: "+err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})

	case "addLog":
		if req.Log.Action == "" {
			writeError(w, http.StatusBadRequest, "Missing required parameter: log")
			return
		}
		err := services.AddAuditLog(ctx, models.AuditLog{
			AdminID:  principal.UserID,
			Action:   req.Log.Action,
			TargetID: req.Log.TargetID,
			Details:  req.Log.Details,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to record audit log: "+err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		writeError(w, http.StatusBadRequest, "Invalid action or missing parameters")
	}
}
