package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edulens-backend/internal/importer"
	"edulens-backend/internal/middleware"
	"edulens-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type fakeAppStore struct {
	apps       map[string]*models.Application
	statusLog  []models.StatusChange
	failCreate bool
}

func newFakeAppStore() *fakeAppStore {
	return &fakeAppStore{apps: map[string]*models.Application{}}
}

func (s *fakeAppStore) Create(ctx context.Context, app *models.Application) error {
	if s.failCreate {
		return errInsertFailed
	}
	app.ID = bson.NewObjectID()
	s.apps[app.ID.Hex()] = app
	return nil
}

func (s *fakeAppStore) ListByUser(ctx context.Context, userID, status string) ([]models.Application, error) {
	out := []models.Application{}
	for _, a := range s.apps {
		if a.UserID != userID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *fakeAppStore) FindByID(ctx context.Context, userID string, id bson.ObjectID) (*models.Application, error) {
	a, ok := s.apps[id.Hex()]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	return a, nil
}

func (s *fakeAppStore) UpdateStatus(ctx context.Context, userID string, id bson.ObjectID, change models.StatusChange) error {
	s.statusLog = append(s.statusLog, change)
	if a, ok := s.apps[id.Hex()]; ok {
		a.Status = change.Status
		a.StatusHistory = append(a.StatusHistory, change)
	}
	return nil
}

func (s *fakeAppStore) UpdateFields(ctx context.Context, userID string, id bson.ObjectID, fields bson.M) error {
	return nil
}

func (s *fakeAppStore) Delete(ctx context.Context, userID string, id bson.ObjectID) (int64, error) {
	if _, ok := s.apps[id.Hex()]; !ok {
		return 0, nil
	}
	delete(s.apps, id.Hex())
	return 1, nil
}

var errInsertFailed = errors.New("insert failed")

func appsRouter(store *fakeAppStore) chi.Router {
	h := NewApplicationsHandler(store)
	r := chi.NewRouter()
	r.Get("/api/applications", h.List)
	r.Post("/api/applications", h.Create)
	r.Post("/api/applications/import", h.Import)
	r.Get("/api/applications/{applicationId}", h.Get)
	r.Put("/api/applications/{applicationId}", h.Update)
	r.Delete("/api/applications/{applicationId}", h.Delete)
	return r
}

func TestCreateApplicationValidates(t *testing.T) {
	store := newFakeAppStore()
	router := appsRouter(store)

	rec := doAs(t, router, "u1", http.MethodPost, "/api/applications",
		map[string]string{"programName": "CS"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "universityName is required")

	rec = doAs(t, router, "u1", http.MethodPost, "/api/applications",
		map[string]string{"universityName": "MIT", "programName": "CS", "status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "status must be in the enum")

	rec = doAs(t, router, "u1", http.MethodPost, "/api/applications",
		map[string]string{"universityName": "MIT", "programName": "CS"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, models.AppStatusDraft, created.Status, "status defaults to draft")
}

func TestApplicationsAreOwnerScoped(t *testing.T) {
	store := newFakeAppStore()
	router := appsRouter(store)

	rec := doAs(t, router, "u1", http.MethodPost, "/api/applications",
		map[string]string{"universityName": "MIT", "programName": "CS"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// A foreign id misses rather than leaking
	rec = doAs(t, router, "u2", http.MethodGet, "/api/applications/"+created.ID.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doAs(t, router, "u1", http.MethodGet, "/api/applications/"+created.ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateApplicationStatusAppendsHistory(t *testing.T) {
	store := newFakeAppStore()
	router := appsRouter(store)

	rec := doAs(t, router, "u1", http.MethodPost, "/api/applications",
		map[string]string{"universityName": "MIT", "programName": "CS"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doAs(t, router, "u1", http.MethodPut, "/api/applications/"+created.ID.Hex(),
		map[string]string{"status": "submitted", "note": "sent via portal"})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, store.statusLog, 1)
	assert.Equal(t, models.AppStatusSubmitted, store.statusLog[0].Status)
	assert.Equal(t, "sent via portal", store.statusLog[0].Note)
}

func TestImportJSONRowsPartialSuccess(t *testing.T) {
	store := newFakeAppStore()
	router := appsRouter(store)

	body := map[string]interface{}{
		"rows": []importer.Row{
			{UniversityName: "MIT", ProgramName: "CS"},
			{UniversityName: "Oxford", ProgramName: "Law"},
			{UniversityName: "ETH", ProgramName: "Physics"},
			{ProgramName: "History"}, // missing universityName
		},
	}
	rec := doAs(t, router, "u1", http.MethodPost, "/api/applications/import", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Successful int                 `json:"successful"`
		Failed     int                 `json:"failed"`
		Errors     []importer.RowError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Successful)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 4, resp.Errors[0].Row)
	assert.Contains(t, resp.Errors[0].Message, "universityName")
	assert.Len(t, store.apps, 3)
}

func TestImportCSVBody(t *testing.T) {
	store := newFakeAppStore()
	router := appsRouter(store)

	csvBody := strings.Join([]string{
		"University,Program,Status",
		"MIT,CS,accepted",
		"Oxford,Law,in review",
		"ETH,Physics,submitted",
		",History,draft",
	}, "\n")

	req := httptest.NewRequest(http.MethodPost, "/api/applications/import", bytes.NewReader([]byte(csvBody)))
	req.Header.Set("Content-Type", "text/csv")
	req = req.WithContext(middleware.WithUserID(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Successful int                 `json:"successful"`
		Failed     int                 `json:"failed"`
		Errors     []importer.RowError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Successful)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 4, resp.Errors[0].Row)
}

func TestImportEmpty(t *testing.T) {
	store := newFakeAppStore()
	rec := doAs(t, appsRouter(store), "u1", http.MethodPost, "/api/applications/import",
		map[string]interface{}{"rows": []importer.Row{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportNeverAbortsBatch(t *testing.T) {
	store := newFakeAppStore()
	store.failCreate = true
	router := appsRouter(store)

	body := map[string]interface{}{
		"rows": []importer.Row{
			{UniversityName: "MIT", ProgramName: "CS"},
			{UniversityName: "Oxford", ProgramName: "Law"},
		},
	}
	rec := doAs(t, router, "u1", http.MethodPost, "/api/applications/import", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Successful int                 `json:"successful"`
		Failed     int                 `json:"failed"`
		Errors     []importer.RowError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Successful)
	assert.Equal(t, 2, resp.Failed)
}
