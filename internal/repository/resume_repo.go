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

type ResumeRepo struct {
	collection *mongo.Collection
}

func NewResumeRepo() *ResumeRepo {
	return &ResumeRepo{
		collection: database.GetCollection("resumes"),
	}
}

func (r *ResumeRepo) FindByUserID(ctx context.Context, userID string) (*models.Resume, error) {
	var resume models.Resume
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&resume)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &resume, nil
}

// Upsert replaces the user's resume document, preserving the cached AI score
// and creation time of an existing document.
func (r *ResumeRepo) Upsert(ctx context.Context, resume *models.Resume) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"personalInfo":   resume.PersonalInfo,
			"experience":     resume.Experience,
			"education":      resume.Education,
			"skills":         resume.Skills,
			"projects":       resume.Projects,
			"certifications": resume.Certifications,
			"design":         resume.Design,
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": resume.UserID},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (r *ResumeRepo) SaveScore(ctx context.Context, userID string, score *models.AIScore) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"aiScore": score}},
	)
	return err
}

func (r *ResumeRepo) Delete(ctx context.Context, userID string) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates necessary indexes for the resumes collection
func (r *ResumeRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
