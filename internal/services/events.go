package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/database"
)

// DexEvent is the payload published over Redis Pub/Sub when a user's
// collection changes, so other devices of the same user can refresh between
// merge polls.
type DexEvent struct {
	Type      string                 `json:"type"`
	Subject   string                 `json:"subject"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Event types emitted by the collection and media handlers.
const (
	EventDexUpdated    = "userdex.updated"
	EventMediaUploaded = "media.uploaded"
	EventMediaDeleted  = "media.deleted"
	EventShareChanged  = "share.changed"
)

// DexEventChannel is the per-user Pub/Sub channel name.
func DexEventChannel(userID string) string {
	return "dexevents:" + userID
}

// EmitEvent publishes a collection event for one user. Emission is strictly
// best-effort: failures are logged and never propagated, an unreachable
// broker must not fail the mutation that triggered the event.
func EmitEvent(userID, eventType, subject string, data map[string]interface{}) {
	event := DexEvent{
		Type:      eventType,
		Subject:   subject,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal event %s: %v", eventType, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := database.RedisClient.Publish(ctx, DexEventChannel(userID), payload).Err(); err != nil {
		log.Printf("Failed to emit event %s: %v", eventType, err)
	}
}
