package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog records one admin action for the dashboard's audit trail.
type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AdminID   string             `bson:"adminId" json:"adminId"`
	Action    string             `bson:"action" json:"action"`
	TargetID  string             `bson:"targetId,omitempty" json:"targetId,omitempty"`
	Details   string             `bson:"details,omitempty" json:"details,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
