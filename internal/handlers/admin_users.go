package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"edulens-backend/internal/mailer"
	"edulens-backend/internal/middleware"
	"edulens-backend/internal/models"
	"edulens-backend/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// AdminUserStore is what the admin panel needs from persistence. Implemented
// by repository.AdminStore; faked in tests.
type AdminUserStore interface {
	ListUsers(ctx context.Context, q repository.ListUsersQuery) ([]models.User, int64, error)
	FindUserByAnyID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserFields(ctx context.Context, id bson.ObjectID, fields bson.M) error
	DecorateUser(ctx context.Context, user models.User) repository.UserOverview
	DeleteUser(ctx context.Context, user *models.User) (repository.CascadeResult, error)
}

type AdminUsersHandler struct {
	store  AdminUserStore
	mailer mailer.Mailer
}

func NewAdminUsersHandler(store AdminUserStore, m mailer.Mailer) *AdminUsersHandler {
	return &AdminUsersHandler{store: store, mailer: m}
}

// --- GET /api/admin/users ---

func (h *AdminUsersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := repository.ListUsersQuery{
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 10),
		Search:    r.URL.Query().Get("search"),
		SortBy:    r.URL.Query().Get("sortBy"),
		SortOrder: r.URL.Query().Get("sortOrder"),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 10
	}

	users, total, err := h.store.ListUsers(r.Context(), q)
	if err != nil {
		log.Printf("Error listing users: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Decorate row by row; the dashboard wants collaborator flags per user
	rows := make([]repository.UserOverview, 0, len(users))
	for _, u := range users {
		rows = append(rows, h.store.DecorateUser(r.Context(), u))
	}

	totalPages := (total + int64(q.Limit) - 1) / int64(q.Limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users":      rows,
		"total":      total,
		"page":       q.Page,
		"limit":      q.Limit,
		"totalPages": totalPages,
	})
}

// --- GET /api/admin/users/{userId} ---

func (h *AdminUsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadTarget(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.store.DecorateUser(r.Context(), *user))
}

// --- PUT /api/admin/users/{userId} ---

type updateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role" validate:"omitempty,oneof=user admin"`
}

func (h *AdminUsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadTarget(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// An admin cannot demote their own account
	if req.Role != nil && *req.Role != models.RoleAdmin && h.isSelf(r, user) {
		writeError(w, http.StatusBadRequest, "you cannot demote your own account")
		return
	}

	fields := bson.M{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		existing, err := h.store.FindUserByEmail(r.Context(), *req.Email)
		if err != nil {
			log.Printf("Error checking email uniqueness: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if existing != nil && existing.ID != user.ID {
			writeError(w, http.StatusBadRequest, "email is already in use")
			return
		}
		fields["email"] = *req.Email
	}
	roleChanged := req.Role != nil && *req.Role != user.Role
	if roleChanged {
		fields["role"] = *req.Role
	}

	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.store.UpdateUserFields(r.Context(), user.ID, fields); err != nil {
		log.Printf("Error updating user %s: %v", user.ID.Hex(), err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	if roleChanged {
		// Best-effort notification, never blocks the response
		to, name, role := user.Email, user.Name, *req.Role
		go func() {
			if err := h.mailer.Send(context.Background(), to, "Your EduLens account was updated", mailer.RoleChangedHTML(name, role)); err != nil {
				log.Printf("Error sending role-change email: %v", err)
			}
		}()
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user updated"})
}

// --- DELETE /api/admin/users/{userId} ---

func (h *AdminUsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadTarget(w, r)
	if !ok {
		return
	}

	if h.isSelf(r, user) {
		writeError(w, http.StatusBadRequest, "you cannot delete your own account")
		return
	}

	result, err := h.store.DeleteUser(r.Context(), user)
	if err != nil {
		// Partial progress: result holds what was already purged
		log.Printf("Error in delete cascade for user %s (purged so far: %v): %v", user.ID.Hex(), result, err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "user deleted",
		"deleted": result,
	})
}

// loadTarget resolves the {userId} path parameter, writing 404 when the user
// does not exist.
func (h *AdminUsersHandler) loadTarget(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	userID := chi.URLParam(r, "userId")
	user, err := h.store.FindUserByAnyID(r.Context(), userID)
	if err != nil {
		log.Printf("Error finding user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	return user, true
}

// isSelf compares the target against the acting admin; sessions may carry
// either the provider id or the hex ObjectID.
func (h *AdminUsersHandler) isSelf(r *http.Request, target *models.User) bool {
	actor := middleware.GetUserID(r.Context())
	return actor != "" && (actor == target.AuthID || actor == target.ID.Hex())
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
