package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"edulens-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeSessions struct {
	byToken map[string]*models.Session
}

func (f *fakeSessions) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	return f.byToken[token], nil
}

type fakeUsers struct {
	byID map[string]*models.User
}

func (f *fakeUsers) FindByAnyID(ctx context.Context, id string) (*models.User, error) {
	return f.byID[id], nil
}

func signTestJWT(t *testing.T, userID, role string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func echoUserID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetUserID(r.Context())))
	})
}

func TestAuthAcceptsValidJWT(t *testing.T) {
	handler := Auth(testSecret, &fakeSessions{})(echoUserID())

	req := httptest.NewRequest(http.MethodGet, "/api/resume", nil)
	req.Header.Set("Authorization", "Bearer "+signTestJWT(t, "u1", "user", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestAuthRejectsExpiredJWTAndUnknownToken(t *testing.T) {
	handler := Auth(testSecret, &fakeSessions{byToken: map[string]*models.Session{}})(echoUserID())

	req := httptest.NewRequest(http.MethodGet, "/api/resume", nil)
	req.Header.Set("Authorization", "Bearer "+signTestJWT(t, "u1", "user", time.Now().Add(-time.Hour)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMissingToken(t *testing.T) {
	handler := Auth(testSecret, &fakeSessions{})(echoUserID())

	req := httptest.NewRequest(http.MethodGet, "/api/resume", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthAcceptsSessionToken(t *testing.T) {
	sessions := &fakeSessions{byToken: map[string]*models.Session{
		"sess-abc": {UserID: "u2", Token: "sess-abc", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	handler := Auth(testSecret, sessions)(echoUserID())

	req := httptest.NewRequest(http.MethodGet, "/api/resume", nil)
	req.Header.Set("Authorization", "Bearer sess-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u2", rec.Body.String())
}

func TestAuthRejectsExpiredSession(t *testing.T) {
	sessions := &fakeSessions{byToken: map[string]*models.Session{
		"sess-old": {UserID: "u2", Token: "sess-old", ExpiresAt: time.Now().Add(-time.Hour)},
	}}
	handler := Auth(testSecret, sessions)(echoUserID())

	req := httptest.NewRequest(http.MethodGet, "/api/resume", nil)
	req.Header.Set("Authorization", "Bearer sess-old")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	users := &fakeUsers{byID: map[string]*models.User{
		"admin-1": {AuthID: "admin-1", Role: models.RoleAdmin},
		"user-1":  {AuthID: "user-1", Role: models.RoleUser},
	}}
	handler := RequireAdmin(users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req = req.WithContext(WithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("admin-1"))
	assert.Equal(t, http.StatusForbidden, do("user-1"))
	assert.Equal(t, http.StatusUnauthorized, do(""))

	// Unknown user resolves to unauthorized, not a crash
	assert.Equal(t, http.StatusUnauthorized, do("ghost"))
}
