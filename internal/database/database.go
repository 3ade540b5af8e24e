package database

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var DB *mongo.Database

func Connect(mongoURI, dbName string) error {
	// Use longer timeout for managed (Cosmos/Atlas) connections
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	// Ping the database with a separate context
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return err
	}

	Client = client

	// Prefer the database name embedded in the URI, fall back to the configured one
	if uriName := dbNameFromURI(mongoURI); uriName != "" {
		dbName = uriName
	}
	if dbName == "" {
		dbName = "pokedextracker"
	}
	DB = client.Database(dbName)

	log.Println("✅ Connected to MongoDB")
	return nil
}

func dbNameFromURI(mongoURI string) string {
	parts := strings.Split(mongoURI, "/")
	if len(parts) <= 3 {
		return ""
	}
	return strings.Split(parts[len(parts)-1], "?")[0]
}

func Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Disconnect(ctx)
}
