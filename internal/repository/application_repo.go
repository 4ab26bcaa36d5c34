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

type ApplicationRepo struct {
	collection *mongo.Collection
}

func NewApplicationRepo() *ApplicationRepo {
	return &ApplicationRepo{
		collection: database.GetCollection("applications"),
	}
}

func (r *ApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = models.AppStatusDraft
	}
	if len(app.StatusHistory) == 0 {
		app.StatusHistory = []models.StatusChange{{Status: app.Status, ChangedAt: now}}
	}
	result, err := r.collection.InsertOne(ctx, app)
	if err != nil {
		return err
	}
	app.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// ListByUser returns the user's applications, optionally filtered by status,
// newest first.
func (r *ApplicationRepo) ListByUser(ctx context.Context, userID, status string) ([]models.Application, error) {
	filter := bson.M{"userId": userID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	apps := []models.Application{}
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// FindByID is owner-scoped: a foreign id simply misses.
func (r *ApplicationRepo) FindByID(ctx context.Context, userID string, id bson.ObjectID) (*models.Application, error) {
	var app models.Application
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&app)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

// UpdateStatus sets the new status and appends it to the status history.
func (r *ApplicationRepo) UpdateStatus(ctx context.Context, userID string, id bson.ObjectID, change models.StatusChange) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{
			"$set":  bson.M{"status": change.Status, "updatedAt": change.ChangedAt},
			"$push": bson.M{"statusHistory": change},
		},
	)
	return err
}

func (r *ApplicationRepo) UpdateFields(ctx context.Context, userID string, id bson.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": fields},
	)
	return err
}

func (r *ApplicationRepo) Delete(ctx context.Context, userID string, id bson.ObjectID) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates necessary indexes for the applications collection
func (r *ApplicationRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
