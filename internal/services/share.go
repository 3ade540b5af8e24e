package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/lpielikys/pokedextracker-backend/internal/database"
	"github.com/lpielikys/pokedextracker-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// EnableSharing stamps a share token onto every entry the user owns. The
// token is stable: enabling twice reuses the existing one, rotation only
// happens after an explicit disable.
func EnableSharing(ctx context.Context, userID string) (string, error) {
	token := currentShareID(ctx, userID)
	if token == "" {
		token = uuid.New().String()
	}

	coll := database.DB.Collection(userdexColl)
	_, err := coll.UpdateMany(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"shareId": token}},
	)
	if err != nil {
		return "", err
	}
	return token, nil
}

// DisableSharing clears the share token from all of the user's entries.
func DisableSharing(ctx context.Context, userID string) error {
	coll := database.DB.Collection(userdexColl)
	_, err := coll.UpdateMany(ctx,
		bson.M{"userId": userID},
		bson.M{"$unset": bson.M{"shareId": ""}},
	)
	return err
}

// SharedView returns all entries carrying the share token. An empty slice
// means the token is unknown or sharing was disabled.
func SharedView(ctx context.Context, shareID string) ([]models.DexEntry, error) {
	if shareID == "" {
		return nil, nil
	}

	coll := database.DB.Collection(userdexColl)
	cursor, err := coll.Find(ctx, bson.M{"shareId": shareID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.DexEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
