package services

import (
	"context"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/database"
	"github.com/lpielikys/pokedextracker-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MediaItem is the moderation projection of one stored screenshot.
type MediaItem struct {
	UserID       string    `json:"userId"`
	PokemonID    int       `json:"pokemonId"`
	URL          string    `json:"url"`
	LastModified time.Time `json:"lastModified"`
	ContentType  string    `json:"contentType"`
}

// ListAllMedia returns every screenshot reference across all users, for the
// admin moderation view.
func ListAllMedia(ctx context.Context) ([]MediaItem, error) {
	coll := database.DB.Collection(userdexColl)
	cursor, err := coll.Find(ctx,
		bson.M{"screenshot": bson.M{"$exists": true, "$ne": ""}},
		options.Find().SetProjection(bson.M{"userId": 1, "pokemonId": 1, "screenshot": 1, "updatedAt": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.DexEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	media := make([]MediaItem, 0, len(entries))
	for _, e := range entries {
		media = append(media, MediaItem{
			UserID:       e.UserID,
			PokemonID:    e.PokemonID,
			URL:          e.Screenshot,
			LastModified: e.UpdatedAt,
			ContentType:  "image",
		})
	}
	return media, nil
}

// UnsetScreenshot clears the screenshot field on one entry and returns the
// previous reference so the caller can delete the blob. Returns "" when no
// entry or screenshot existed.
func UnsetScreenshot(ctx context.Context, userID string, pokemonID int) (string, error) {
	coll := database.DB.Collection(userdexColl)
	filter := bson.M{"userId": userID, "pokemonId": pokemonID}

	var existing models.DexEntry
	if err := coll.FindOne(ctx, filter).Decode(&existing); err != nil {
		return "", nil
	}
	if existing.Screenshot == "" {
		return "", nil
	}

	_, err := coll.UpdateOne(ctx, filter, bson.M{
		"$unset": bson.M{"screenshot": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return "", err
	}
	return existing.Screenshot, nil
}
