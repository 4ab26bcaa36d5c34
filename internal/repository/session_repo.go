package repository

import (
	"context"
	"time"

	"edulens-backend/internal/database"
	"edulens-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type SessionRepo struct {
	collection *mongo.Collection
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{
		collection: database.GetCollection("session"),
	}
}

func (r *SessionRepo) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID})
}

// LastSeenByUser returns the most recent session update time for the user,
// or nil when the user has no sessions.
func (r *SessionRepo) LastSeenByUser(ctx context.Context, userID string) (*time.Time, error) {
	var session models.Session
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session.UpdatedAt, nil
}

// EnsureIndexes creates necessary indexes for the session collection
func (r *SessionRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index — auto-delete expired sessions
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
