package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"edulens-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	ctxUserID contextKey = "userID"
	ctxEmail  contextKey = "email"
	ctxRole   contextKey = "role"
)

// Claims is the JWT payload this service accepts.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SessionStore looks up Better-Auth session tokens.
type SessionStore interface {
	FindByToken(ctx context.Context, token string) (*models.Session, error)
}

// UserStore resolves users by either id shape stored in the collection.
type UserStore interface {
	FindByAnyID(ctx context.Context, id string) (*models.User, error)
}

// Auth accepts a bearer token that is either an HS256 JWT signed with
// jwtSecret or a Better-Auth session token present in the session collection.
// On success the user id (and, for JWTs, email/role claims) is stored in the
// request context.
func Auth(jwtSecret string, sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "missing authorization token")
				return
			}

			if claims, err := parseJWT(token, jwtSecret); err == nil {
				ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
				ctx = context.WithValue(ctx, ctxEmail, claims.Email)
				ctx = context.WithValue(ctx, ctxRole, claims.Role)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// Not a JWT of ours — try it as a session token
			session, err := sessions.FindByToken(r.Context(), token)
			if err != nil {
				log.Printf("Error looking up session token: %v", err)
				http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
				return
			}
			if session == nil || session.IsExpired() {
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin re-derives the admin flag from the database on every request,
// loading the user by its provider id with an ObjectID fallback.
func RequireAdmin(users UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == "" {
				unauthorized(w, "unauthorized")
				return
			}

			user, err := users.FindByAnyID(r.Context(), userID)
			if err != nil {
				log.Printf("Error loading user for admin check: %v", err)
				http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
				return
			}
			if user == nil {
				unauthorized(w, "unauthorized")
				return
			}
			if !user.IsAdmin() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"admin access required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}

func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func GetEmail(ctx context.Context) string {
	if v, ok := ctx.Value(ctxEmail).(string); ok {
		return v
	}
	return ""
}

func GetRole(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithUserID is a test helper for seeding the context the way Auth does.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}
