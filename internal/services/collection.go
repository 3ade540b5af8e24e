package services

import (
	"context"
	"errors"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/database"
	"github.com/lpielikys/pokedextracker-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Actions returned by collection store mutations.
const (
	ActionCaught   = "caught"
	ActionUpdated  = "updated"
	ActionUncaught = "uncaught"
	ActionNone     = "none"
)

var userdexColl = "userdex"

// InitCollectionStore sets the collection name for per-user caught entries.
func InitCollectionStore(collectionName string) {
	if collectionName != "" {
		userdexColl = collectionName
	}
}

// UserdexCollection returns the configured userdex collection name.
func UserdexCollection() string {
	return userdexColl
}

// EntryUpdate carries the mutable fields of a caught entry.
type EntryUpdate struct {
	Shiny           bool
	Notes           string
	Screenshot      string
	ScreenshotShiny string
}

// ResolveDexAction decides what a write must do, given whether an entry
// already exists and the requested caught flag (nil means "not specified",
// which is treated as catching/updating).
//
// The storage model never holds caught=false rows: uncatching an existing
// entry deletes it, and uncatching a missing entry is a no-op.
func ResolveDexAction(exists bool, caught *bool) string {
	if caught != nil && !*caught {
		if exists {
			return ActionUncaught
		}
		return ActionNone
	}
	if exists {
		return ActionUpdated
	}
	return ActionCaught
}

// UpsertCaught creates or updates the entry for (userID, pokemonID) per the
// caught-flag rules, always scoped to the owning user. Returns the action taken.
func UpsertCaught(ctx context.Context, userID string, pokemonID int, caught *bool, upd EntryUpdate) (string, error) {
	coll := database.DB.Collection(userdexColl)
	filter := bson.M{"userId": userID, "pokemonId": pokemonID}

	var existing models.DexEntry
	err := coll.FindOne(ctx, filter).Decode(&existing)
	exists := err == nil
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	action := ResolveDexAction(exists, caught)
	now := time.Now().UTC()

	switch action {
	case ActionNone:
		return ActionNone, nil

	case ActionUncaught:
		if _, err := coll.DeleteOne(ctx, filter); err != nil {
			return "", err
		}
		return ActionUncaught, nil

	case ActionUpdated:
		set := bson.M{
			"caught":    true,
			"shiny":     upd.Shiny,
			"notes":     upd.Notes,
			"updatedAt": now,
		}
		if upd.Screenshot != "" {
			set["screenshot"] = upd.Screenshot
		}
		if upd.ScreenshotShiny != "" {
			set["screenshotShiny"] = upd.ScreenshotShiny
		}
		if _, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set}); err != nil {
			return "", err
		}
		return ActionUpdated, nil

	default: // ActionCaught
		entry := models.DexEntry{
			UserID:          userID,
			PokemonID:       pokemonID,
			Caught:          true,
			Shiny:           upd.Shiny,
			Notes:           upd.Notes,
			Screenshot:      upd.Screenshot,
			ScreenshotShiny: upd.ScreenshotShiny,
			ShareID:         currentShareID(ctx, userID),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if _, err := coll.InsertOne(ctx, entry); err != nil {
			return "", err
		}
		return ActionCaught, nil
	}
}

// RemoveCaught deletes the entry if present. Absence is not an error.
func RemoveCaught(ctx context.Context, userID string, pokemonID int) (string, error) {
	coll := database.DB.Collection(userdexColl)
	result, err := coll.DeleteOne(ctx, bson.M{"userId": userID, "pokemonId": pokemonID})
	if err != nil {
		return "", err
	}
	if result.DeletedCount == 0 {
		return ActionNone, nil
	}
	return ActionUncaught, nil
}

// ListByUser returns all caught entries for a user, unordered.
func ListByUser(ctx context.Context, userID string) ([]models.DexEntry, error) {
	coll := database.DB.Collection(userdexColl)
	cursor, err := coll.Find(ctx, bson.M{"userId": userID})
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

// GetOne returns a single entry, or (nil, nil) when not found.
func GetOne(ctx context.Context, userID string, pokemonID int) (*models.DexEntry, error) {
	coll := database.DB.Collection(userdexColl)
	var entry models.DexEntry
	err := coll.FindOne(ctx, bson.M{"userId": userID, "pokemonId": pokemonID}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// currentShareID returns the user's active share token, if any, so entries
// caught after sharing was enabled still appear in the shared view.
func currentShareID(ctx context.Context, userID string) string {
	coll := database.DB.Collection(userdexColl)
	var entry models.DexEntry
	err := coll.FindOne(ctx, bson.M{"userId": userID, "shareId": bson.M{"$exists": true, "$ne": ""}}).Decode(&entry)
	if err != nil {
		return ""
	}
	return entry.ShareID
}
