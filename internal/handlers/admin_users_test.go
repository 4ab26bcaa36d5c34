package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"edulens-backend/internal/mailer"
	"edulens-backend/internal/middleware"
	"edulens-backend/internal/models"
	"edulens-backend/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type fakeAdminStore struct {
	users   map[string]*models.User // keyed by AuthID
	updated map[string]bson.M       // keyed by hex ObjectID
	deleted []string
}

func newFakeAdminStore(users ...*models.User) *fakeAdminStore {
	s := &fakeAdminStore{users: map[string]*models.User{}, updated: map[string]bson.M{}}
	for _, u := range users {
		s.users[u.AuthID] = u
	}
	return s
}

func (s *fakeAdminStore) ListUsers(ctx context.Context, q repository.ListUsersQuery) ([]models.User, int64, error) {
	out := []models.User{}
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (s *fakeAdminStore) FindUserByAnyID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	for _, u := range s.users {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeAdminStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeAdminStore) UpdateUserFields(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	s.updated[id.Hex()] = fields
	return nil
}

func (s *fakeAdminStore) DecorateUser(ctx context.Context, user models.User) repository.UserOverview {
	return repository.UserOverview{User: user, SessionCount: 1}
}

func (s *fakeAdminStore) DeleteUser(ctx context.Context, user *models.User) (repository.CascadeResult, error) {
	s.deleted = append(s.deleted, user.AuthID)
	return repository.CascadeResult{"session": 2, "user_profiles": 1, "user": 1}, nil
}

func adminTestUser(authID, email, role string) *models.User {
	return &models.User{
		ID:        bson.NewObjectID(),
		AuthID:    authID,
		Name:      authID,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}
}

func adminRouter(store *fakeAdminStore) chi.Router {
	h := NewAdminUsersHandler(store, &mailer.LogMailer{})
	r := chi.NewRouter()
	r.Get("/api/admin/users", h.List)
	r.Get("/api/admin/users/{userId}", h.Get)
	r.Put("/api/admin/users/{userId}", h.Update)
	r.Delete("/api/admin/users/{userId}", h.Delete)
	return r
}

func doAs(t *testing.T, router chi.Router, actorID, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(middleware.WithUserID(req.Context(), actorID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAdminListUsers(t *testing.T) {
	store := newFakeAdminStore(
		adminTestUser("admin-1", "admin@edulens.io", models.RoleAdmin),
		adminTestUser("user-1", "one@example.com", models.RoleUser),
	)
	rec := doAs(t, adminRouter(store), "admin-1", http.MethodGet, "/api/admin/users?page=1&limit=10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Users      []repository.UserOverview `json:"users"`
		Total      int64                     `json:"total"`
		TotalPages int64                     `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Users, 2)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, int64(1), resp.TotalPages)
}

func TestAdminCannotDemoteSelf(t *testing.T) {
	admin := adminTestUser("admin-1", "admin@edulens.io", models.RoleAdmin)
	store := newFakeAdminStore(admin)

	rec := doAs(t, adminRouter(store), "admin-1", http.MethodPut,
		"/api/admin/users/admin-1", map[string]string{"role": "user"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.updated, "no write may happen after the guard fires")
}

func TestAdminCanPromoteOtherUser(t *testing.T) {
	admin := adminTestUser("admin-1", "admin@edulens.io", models.RoleAdmin)
	target := adminTestUser("user-1", "one@example.com", models.RoleUser)
	store := newFakeAdminStore(admin, target)

	rec := doAs(t, adminRouter(store), "admin-1", http.MethodPut,
		"/api/admin/users/user-1", map[string]string{"role": "admin"})

	require.Equal(t, http.StatusOK, rec.Code)
	fields := store.updated[target.ID.Hex()]
	assert.Equal(t, "admin", fields["role"])
}

func TestAdminDuplicateEmailRejectedBeforeWrite(t *testing.T) {
	admin := adminTestUser("admin-1", "admin@edulens.io", models.RoleAdmin)
	target := adminTestUser("user-1", "one@example.com", models.RoleUser)
	other := adminTestUser("user-2", "two@example.com", models.RoleUser)
	store := newFakeAdminStore(admin, target, other)

	rec := doAs(t, adminRouter(store), "admin-1", http.MethodPut,
		"/api/admin/users/user-1", map[string]string{"email": "two@example.com"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.updated)
}

func TestAdminUpdateRejectsInvalidRole(t *testing.T) {
	admin := adminTestUser("admin-1", "admin@edulens.io", models.RoleAdmin)
	target := adminTestUser("user-1", "one@example.com", models.RoleUser)
	store := newFakeAdminStore(admin, target)

	rec := doAs(t, adminRouter(store), "admin-1", http.MethodPut,
		"/api/admin/users/user-1", map[string]string{"role": "superuser"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	admin := adminTestUser("admin-1", "admin@edulens.io", models.RoleAdmin)
	store := newFakeAdminStore(admin)

	rec := doAs(t, adminRouter(store), "admin-1", http.MethodDelete,
		"/api/admin/users/admin-1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.deleted)
}

func TestAdminDeleteCascades(t *testing.T) {
	admin := adminTestUser("admin-1", "admin@edulens.io", models.RoleAdmin)
	target := adminTestUser("user-1", "one@example.com", models.RoleUser)
	store := newFakeAdminStore(admin, target)

	rec := doAs(t, adminRouter(store), "admin-1", http.MethodDelete,
		"/api/admin/users/user-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"user-1"}, store.deleted)

	var resp struct {
		Deleted map[string]int64 `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Deleted["session"])
}

func TestAdminUserNotFound(t *testing.T) {
	store := newFakeAdminStore(adminTestUser("admin-1", "admin@edulens.io", models.RoleAdmin))
	rec := doAs(t, adminRouter(store), "admin-1", http.MethodGet, "/api/admin/users/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
