package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Session mirrors Better-Auth's `session` collection. Tokens are opaque
// strings issued by the provider; this service only validates them.
type Session struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string        `bson:"userId" json:"userId"`
	Token     string        `bson:"token" json:"token"`
	ExpiresAt time.Time     `bson:"expiresAt" json:"expiresAt"`
	IPAddress string        `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent string        `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
