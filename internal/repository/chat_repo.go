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

type ChatRepo struct {
	sessions *mongo.Collection
	messages *mongo.Collection
}

func NewChatRepo() *ChatRepo {
	return &ChatRepo{
		sessions: database.GetCollection("chat_sessions"),
		messages: database.GetCollection("chat_messages"),
	}
}

// TouchSession upserts the session document for an anon id and bumps its
// updated time.
func (r *ChatRepo) TouchSession(ctx context.Context, anonID string) error {
	now := time.Now()
	_, err := r.sessions.UpdateOne(ctx,
		bson.M{"anonId": anonID},
		bson.M{
			"$set":         bson.M{"updatedAt": now},
			"$setOnInsert": bson.M{"createdAt": now, "migrated": false},
		},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (r *ChatRepo) FindSession(ctx context.Context, anonID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.sessions.FindOne(ctx, bson.M{"anonId": anonID}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// MarkMigrated ties the session to a signed-up user after profile migration.
func (r *ChatRepo) MarkMigrated(ctx context.Context, anonID, userID string) error {
	_, err := r.sessions.UpdateOne(ctx,
		bson.M{"anonId": anonID},
		bson.M{"$set": bson.M{"migrated": true, "userId": userID, "updatedAt": time.Now()}},
	)
	return err
}

func (r *ChatRepo) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	msg.CreatedAt = time.Now()
	result, err := r.messages.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	msg.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *ChatRepo) MessagesByAnonID(ctx context.Context, anonID string) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.messages.Find(ctx, bson.M{"anonId": anonID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	msgs := []models.ChatMessage{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// EnsureIndexes creates necessary indexes for the chat collections
func (r *ChatRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "anonId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = r.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "anonId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return err
}
