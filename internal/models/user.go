package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User mirrors the documents Better-Auth writes into the `user` collection.
// AuthID is the provider-issued string id; older documents only carry _id.
type User struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthID        string        `bson:"id,omitempty" json:"authId,omitempty"`
	Name          string        `bson:"name" json:"name"`
	Email         string        `bson:"email" json:"email"`
	Role          string        `bson:"role" json:"role"`
	EmailVerified bool          `bson:"emailVerified" json:"emailVerified"`
	Image         string        `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
