package repository

import (
	"context"
	"fmt"

	"edulens-backend/internal/database"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CascadeTarget is one collection purge in the user-deletion fan-out.
type CascadeTarget struct {
	Collection string
	Filter     bson.M
}

// CascadeResult maps collection name to deleted document count.
type CascadeResult map[string]int64

// camelKeyCollections store the owner under `userId`; the two legacy profile
// collections use `user_id`. Both sets are matched against the id as a raw
// string and, when it parses, as an ObjectID — older records stored either.
var camelKeyCollections = []string{
	"session",
	"roadmap_plans",
	"documents",
	"chat_sessions",
	"chat_messages",
	"journey_conversations",
	"account",
	"verification",
}

var underscoreKeyCollections = []string{
	"user_profiles",
	"smart_profiles",
}

func ownerFilter(key, userID string) bson.M {
	values := bson.A{bson.M{key: userID}}
	if oid, err := bson.ObjectIDFromHex(userID); err == nil {
		values = append(values, bson.M{key: oid})
	}
	return bson.M{"$or": values}
}

// UserCascadeTargets lists every collection purged when a user is deleted,
// with the dual-key filters described above. The `user` document itself is
// deleted separately, last.
func UserCascadeTargets(userID string) []CascadeTarget {
	targets := make([]CascadeTarget, 0, len(underscoreKeyCollections)+len(camelKeyCollections))
	for _, name := range underscoreKeyCollections {
		targets = append(targets, CascadeTarget{Collection: name, Filter: ownerFilter("user_id", userID)})
	}
	for _, name := range camelKeyCollections {
		targets = append(targets, CascadeTarget{Collection: name, Filter: ownerFilter("userId", userID)})
	}
	return targets
}

// DeleteUserData purges the user's records collection by collection. There is
// no transaction around the fan-out: on error the returned result still holds
// the counts of collections already purged, so the caller can log progress.
func DeleteUserData(ctx context.Context, userID string) (CascadeResult, error) {
	result := CascadeResult{}
	for _, target := range UserCascadeTargets(userID) {
		res, err := database.GetCollection(target.Collection).DeleteMany(ctx, target.Filter)
		if err != nil {
			return result, fmt.Errorf("cascade delete on %s: %w", target.Collection, err)
		}
		result[target.Collection] = res.DeletedCount
	}
	return result, nil
}

func (c CascadeResult) Total() int64 {
	var n int64
	for _, v := range c {
		n += v
	}
	return n
}
