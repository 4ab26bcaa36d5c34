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

type SmartProfileRepo struct {
	collection *mongo.Collection
}

func NewSmartProfileRepo() *SmartProfileRepo {
	return &SmartProfileRepo{
		collection: database.GetCollection("smart_profiles"),
	}
}

func (r *SmartProfileRepo) FindByUserID(ctx context.Context, userID string) (*models.SmartProfile, error) {
	var profile models.SmartProfile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *SmartProfileRepo) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	return count > 0, err
}

func (r *SmartProfileRepo) Upsert(ctx context.Context, profile *models.SmartProfile) error {
	now := time.Now()
	set := bson.M{"updated_at": now}
	if len(profile.DreamCountries) > 0 {
		set["dream_countries"] = profile.DreamCountries
	}
	if profile.DegreeType != "" {
		set["degree_type"] = profile.DegreeType
	}
	if profile.FieldOfStudy != "" {
		set["field_of_study"] = profile.FieldOfStudy
	}
	if profile.Budget != "" {
		set["budget"] = profile.Budget
	}
	if profile.TargetIntake != nil {
		set["target_intake"] = profile.TargetIntake
	}
	if profile.FutureAmbitions != "" {
		set["future_ambitions"] = profile.FutureAmbitions
	}
	if profile.MigratedFrom != "" {
		set["migrated_from"] = profile.MigratedFrom
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": profile.UserID},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// EnsureIndexes creates necessary indexes for the smart_profiles collection
func (r *SmartProfileRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
