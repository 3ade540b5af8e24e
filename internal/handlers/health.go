package handlers

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/database"
)

type healthCheck struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Health reports the state of the document store, blob store and cache, plus
// whether the relevant configuration is present. 503 when a required
// dependency (Mongo or blob store) is down.
func Health(w http.ResponseWriter, r *http.Request) {
	startedAt := time.Now().UTC()

	// Each dependency gets its own short deadline so one hung service can't
	// stall the whole probe
	checks := map[string]healthCheck{
		"mongo": checkMongo(r.Context()),
		"blob":  checkBlob(r.Context()),
		"redis": checkRedis(r.Context()),
	}

	env := map[string]bool{
		"MONGODB_URI":           os.Getenv("MONGODB_URI") != "" || os.Getenv("MONGO_URI") != "",
		"REDIS_URI":             os.Getenv("REDIS_URI") != "",
		"CLOUDINARY_CLOUD_NAME": os.Getenv("CLOUDINARY_CLOUD_NAME") != "",
		"SEARCH_ENDPOINT":       os.Getenv("SEARCH_ENDPOINT") != "",
		"DIRECTORY_CLIENT_ID":   os.Getenv("DIRECTORY_CLIENT_ID") != "",
	}

	status := http.StatusOK
	if !checks["mongo"].OK || !checks["blob"].OK {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]interface{}{
		"startedAt": startedAt,
		"env":       env,
		"checks":    checks,
	})
}

func checkMongo(parent context.Context) healthCheck {
	ctx, cancel := context.WithTimeout(parent, 4*time.Second)
	defer cancel()

	names, err := database.DB.ListCollectionNames(ctx, map[string]interface{}{})
	if err != nil {
		return healthCheck{OK: false, Message: err.Error()}
	}
	return healthCheck{OK: true, Message: "Connected. Collections: " + strings.Join(names, ", ")}
}

func checkBlob(parent context.Context) healthCheck {
	if blobService == nil {
		return healthCheck{OK: false, Message: "Blob storage is not configured"}
	}

	ctx, cancel := context.WithTimeout(parent, 4*time.Second)
	defer cancel()

	if err := blobService.Ping(ctx); err != nil {
		return healthCheck{OK: false, Message: err.Error()}
	}
	return healthCheck{OK: true, Message: "Blob storage is ready"}
}

func checkRedis(parent context.Context) healthCheck {
	ctx, cancel := context.WithTimeout(parent, 4*time.Second)
	defer cancel()

	if err := database.RedisClient.Ping(ctx).Err(); err != nil {
		return healthCheck{OK: false, Message: err.Error()}
	}
	return healthCheck{OK: true, Message: "Connected"}
}
