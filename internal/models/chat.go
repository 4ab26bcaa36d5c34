package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ChatSession tracks one dream-chat conversation. Pre-signup sessions are
// keyed by an anonymous id only; UserID is filled in after migration.
type ChatSession struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	AnonID    string        `bson:"anonId" json:"anonId"`
	UserID    string        `bson:"userId,omitempty" json:"userId,omitempty"`
	Migrated  bool          `bson:"migrated" json:"migrated"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

type ChatMessage struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	AnonID    string        `bson:"anonId" json:"anonId"`
	Role      string        `bson:"role" json:"role"`
	Content   string        `bson:"content" json:"content"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}
