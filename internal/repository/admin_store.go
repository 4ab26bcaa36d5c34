package repository

import (
	"context"
	"log"
	"time"

	"edulens-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserOverview is one row of the admin user list: the user document plus the
// per-collaborator decorations the dashboard shows.
type UserOverview struct {
	models.User
	HasProfile      bool       `json:"hasProfile"`
	HasSmartProfile bool       `json:"hasSmartProfile"`
	SessionCount    int64      `json:"sessionCount"`
	LastSeenAt      *time.Time `json:"lastSeenAt,omitempty"`
}

// AdminStore bundles the collections the admin panel touches.
type AdminStore struct {
	users    *UserRepo
	profiles *ProfileRepo
	smarts   *SmartProfileRepo
	sessions *SessionRepo
}

func NewAdminStore(users *UserRepo, profiles *ProfileRepo, smarts *SmartProfileRepo, sessions *SessionRepo) *AdminStore {
	return &AdminStore{users: users, profiles: profiles, smarts: smarts, sessions: sessions}
}

func (s *AdminStore) ListUsers(ctx context.Context, q ListUsersQuery) ([]models.User, int64, error) {
	return s.users.List(ctx, q)
}

func (s *AdminStore) FindUserByAnyID(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByAnyID(ctx, id)
}

func (s *AdminStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.FindByEmail(ctx, email)
}

func (s *AdminStore) UpdateUserFields(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	return s.users.UpdateFields(ctx, id, fields)
}

// DecorateUser runs the per-user collaborator lookups. Decoration failures
// are logged and tolerated so one bad collection cannot blank the whole list.
func (s *AdminStore) DecorateUser(ctx context.Context, user models.User) UserOverview {
	row := UserOverview{User: user}
	ownerID := user.AuthID
	if ownerID == "" {
		ownerID = user.ID.Hex()
	}

	if has, err := s.profiles.ExistsForUser(ctx, ownerID); err != nil {
		log.Printf("Error checking profile for user %s: %v", ownerID, err)
	} else {
		row.HasProfile = has
	}
	if has, err := s.smarts.ExistsForUser(ctx, ownerID); err != nil {
		log.Printf("Error checking smart profile for user %s: %v", ownerID, err)
	} else {
		row.HasSmartProfile = has
	}
	if count, err := s.sessions.CountByUser(ctx, ownerID); err != nil {
		log.Printf("Error counting sessions for user %s: %v", ownerID, err)
	} else {
		row.SessionCount = count
	}
	if last, err := s.sessions.LastSeenByUser(ctx, ownerID); err != nil {
		log.Printf("Error finding last session for user %s: %v", ownerID, err)
	} else {
		row.LastSeenAt = last
	}
	return row
}

// DeleteUser fans out the cascade and then removes the user document itself.
func (s *AdminStore) DeleteUser(ctx context.Context, user *models.User) (CascadeResult, error) {
	ownerID := user.AuthID
	if ownerID == "" {
		ownerID = user.ID.Hex()
	}
	result, err := DeleteUserData(ctx, ownerID)
	if err != nil {
		return result, err
	}
	deleted, err := s.users.Delete(ctx, user.ID)
	if err != nil {
		return result, err
	}
	result["user"] = deleted
	return result, nil
}
