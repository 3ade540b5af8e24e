package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/database"
	"github.com/lpielikys/pokedextracker-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type createCommentRequest struct {
	PokemonID int    `json:"pokemonId"`
	Comment   string `json:"comment"`
}

// CreateComment saves a comment on one species for the authenticated user.
func CreateComment(w http.ResponseWriter, r *http.Request) {
	principal := requirePrincipal(w, r)
	if principal == nil {
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PokemonID <= 0 || strings.TrimSpace(req.Comment) == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters: pokemonId and comment")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	comment := models.Comment{
		UserID:    principal.UserID,
		PokemonID: req.PokemonID,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := database.DB.Collection("comments").InsertOne(ctx, comment)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save comment: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"message":   "Comment saved successfully",
		"commentId": result.InsertedID,
		"pokemonId": req.PokemonID,
	})
}

// GetComments returns the caller's comments, optionally filtered by species.
func GetComments(w http.ResponseWriter, r *http.Request) {
	principal := requirePrincipal(w, r)
	if principal == nil {
		return
	}

	filter := bson.M{"userId": principal.UserID}
	if v, err := strconv.Atoi(r.URL.Query().Get("pokemonId")); err == nil && v > 0 {
		filter["pokemonId"] = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("comments").Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(100))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch comments: "+err.Error())
		return
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to decode comments: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(comments),
		"comments": comments,
	})
}
