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

type RoadmapRepo struct {
	collection *mongo.Collection
}

func NewRoadmapRepo() *RoadmapRepo {
	return &RoadmapRepo{
		collection: database.GetCollection("roadmap_plans"),
	}
}

func (r *RoadmapRepo) FindByUserID(ctx context.Context, userID string) (*models.RoadmapPlan, error) {
	var plan models.RoadmapPlan
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&plan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *RoadmapRepo) Upsert(ctx context.Context, plan *models.RoadmapPlan) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"scenarios": plan.Scenarios,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": plan.UserID},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// ReplaceScenarios writes back the scenario slice after a task mutation.
func (r *RoadmapRepo) ReplaceScenarios(ctx context.Context, userID string, scenarios []models.RoadmapScenario) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"scenarios": scenarios, "updatedAt": time.Now()}},
	)
	return err
}

// EnsureIndexes creates necessary indexes for the roadmap_plans collection
func (r *RoadmapRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
