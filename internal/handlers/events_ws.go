package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lpielikys/pokedextracker-backend/internal/database"
	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

var eventsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already
		return true
	},
}

// EventsWebSocket streams the caller's collection-update events in real time.
// Each connection subscribes to the user's Redis Pub/Sub channel and forwards
// every published event; other devices of the same user see mutations without
// waiting for the next merge poll.
func EventsWebSocket(w http.ResponseWriter, r *http.Request) {
	principal := services.GetClientPrincipal(r)
	if principal == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := eventsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	pubsub := database.RedisClient.Subscribe(ctx, services.DexEventChannel(principal.UserID))
	defer pubsub.Close()

	// Reader: drain client frames so pings/close are processed
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event services.DexEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Dropping malformed event payload: %v", err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
