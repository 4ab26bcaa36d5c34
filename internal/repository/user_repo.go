package repository

import (
	"context"
	"regexp"
	"time"

	"edulens-backend/internal/database"
	"edulens-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UserRepo struct {
	collection *mongo.Collection
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		// Better-Auth names the collection in the singular
		collection: database.GetCollection("user"),
	}
}

// ListUsersQuery carries the admin list parameters after defaulting.
type ListUsersQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

var listSortFields = map[string]bool{
	"name":      true,
	"email":     true,
	"role":      true,
	"createdAt": true,
}

// Filter builds the Mongo filter for a list query. Search is a
// case-insensitive regex over name and email.
func (q ListUsersQuery) Filter() bson.M {
	if q.Search == "" {
		return bson.M{}
	}
	pattern := regexp.QuoteMeta(q.Search)
	return bson.M{"$or": bson.A{
		bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
		bson.M{"email": bson.M{"$regex": pattern, "$options": "i"}},
	}}
}

func (q ListUsersQuery) Sort() bson.D {
	field := q.SortBy
	if !listSortFields[field] {
		field = "createdAt"
	}
	order := -1
	if q.SortOrder == "asc" {
		order = 1
	}
	return bson.D{{Key: field, Value: order}}
}

func (r *UserRepo) List(ctx context.Context, q ListUsersQuery) ([]models.User, int64, error) {
	filter := q.Filter()

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(q.Sort()).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// FindByAnyID looks the user up by the provider-issued `id` field first,
// then falls back to `_id` when the value parses as an ObjectID. Both key
// shapes exist in the collection.
func (r *UserRepo) FindByAnyID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&user)
	if err == nil {
		return &user, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	oid, oidErr := bson.ObjectIDFromHex(id)
	if oidErr != nil {
		return nil, nil
	}
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	return err
}

func (r *UserRepo) Delete(ctx context.Context, id bson.ObjectID) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates necessary indexes for the user collection
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
