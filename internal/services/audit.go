package services

import (
	"context"
	"time"

	"github.com/lpielikys/pokedextracker-backend/internal/database"
	"github.com/lpielikys/pokedextracker-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const auditLogColl = "auditlog"

// AddAuditLog records one admin action. The timestamp is always set server-side.
func AddAuditLog(ctx context.Context, entry models.AuditLog) error {
	entry.Timestamp = time.Now().UTC()
	_, err := database.DB.Collection(auditLogColl).InsertOne(ctx, entry)
	return err
}

// GetAuditLogs returns the latest 100 admin actions, newest first.
func GetAuditLogs(ctx context.Context) ([]models.AuditLog, error) {
	cursor, err := database.DB.Collection(auditLogColl).Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"timestamp": -1}).SetLimit(100))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []models.AuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
