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

type ProfileRepo struct {
	collection *mongo.Collection
}

func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{
		collection: database.GetCollection("user_profiles"),
	}
}

func (r *ProfileRepo) FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepo) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	return count > 0, err
}

func (r *ProfileRepo) Upsert(ctx context.Context, profile *models.UserProfile) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"reality_context": profile.RealityContext,
			"goals":           profile.Goals,
			"target_programs": profile.TargetPrograms,
			"stage_progress":  profile.StageProgress,
			"updated_at":      now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": profile.UserID},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// EnsureIndexes creates necessary indexes for the user_profiles collection
func (r *ProfileRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
