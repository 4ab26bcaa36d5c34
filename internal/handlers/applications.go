package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"edulens-backend/internal/importer"
	"edulens-backend/internal/middleware"
	"edulens-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ApplicationStore is the persistence surface of the application tracker.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	ListByUser(ctx context.Context, userID, status string) ([]models.Application, error)
	FindByID(ctx context.Context, userID string, id bson.ObjectID) (*models.Application, error)
	UpdateStatus(ctx context.Context, userID string, id bson.ObjectID, change models.StatusChange) error
	UpdateFields(ctx context.Context, userID string, id bson.ObjectID, fields bson.M) error
	Delete(ctx context.Context, userID string, id bson.ObjectID) (int64, error)
}

type ApplicationsHandler struct {
	apps ApplicationStore
	now  func() time.Time
}

func NewApplicationsHandler(apps ApplicationStore) *ApplicationsHandler {
	return &ApplicationsHandler{apps: apps, now: time.Now}
}

// --- GET /api/applications ---

func (h *ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	status := r.URL.Query().Get("status")
	if status != "" && !models.IsValidApplicationStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	apps, err := h.apps.ListByUser(r.Context(), userID, status)
	if err != nil {
		log.Printf("Error listing applications for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

// --- POST /api/applications ---

type createApplicationRequest struct {
	UniversityName string         `json:"universityName" validate:"required"`
	ProgramName    string         `json:"programName" validate:"required"`
	Country        string         `json:"country"`
	DegreeType     string         `json:"degreeType"`
	Status         string         `json:"status" validate:"omitempty,oneof=draft submitted under_review interview_scheduled accepted rejected waitlisted"`
	Deadline       *time.Time     `json:"deadline"`
	Term           *models.Intake `json:"term"`
	Notes          string         `json:"notes"`
}

func (h *ApplicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req createApplicationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := req.Status
	if status == "" {
		status = models.AppStatusDraft
	}
	app := &models.Application{
		UserID:         userID,
		UniversityName: req.UniversityName,
		ProgramName:    req.ProgramName,
		Country:        req.Country,
		DegreeType:     req.DegreeType,
		Status:         status,
		StatusHistory:  []models.StatusChange{{Status: status, ChangedAt: h.now()}},
		Deadline:       req.Deadline,
		Term:           req.Term,
		Notes:          req.Notes,
	}
	if err := h.apps.Create(r.Context(), app); err != nil {
		log.Printf("Error creating application for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to create application")
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// --- GET /api/applications/{applicationId} ---

func (h *ApplicationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, ok := h.loadOwn(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// --- PUT /api/applications/{applicationId} ---

type updateApplicationRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=draft submitted under_review interview_scheduled accepted rejected waitlisted"`
	Note   string  `json:"note"`
	Notes  *string `json:"notes"`
}

func (h *ApplicationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	app, ok := h.loadOwn(w, r)
	if !ok {
		return
	}

	var req updateApplicationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Status != nil && *req.Status != app.Status {
		change := models.StatusChange{Status: *req.Status, ChangedAt: h.now(), Note: req.Note}
		if err := h.apps.UpdateStatus(r.Context(), userID, app.ID, change); err != nil {
			log.Printf("Error updating application status %s: %v", app.ID.Hex(), err)
			writeError(w, http.StatusInternalServerError, "failed to update application")
			return
		}
	}
	if req.Notes != nil {
		if err := h.apps.UpdateFields(r.Context(), userID, app.ID, bson.M{"notes": *req.Notes}); err != nil {
			log.Printf("Error updating application notes %s: %v", app.ID.Hex(), err)
			writeError(w, http.StatusInternalServerError, "failed to update application")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "application updated"})
}

// --- DELETE /api/applications/{applicationId} ---

func (h *ApplicationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	app, ok := h.loadOwn(w, r)
	if !ok {
		return
	}
	if _, err := h.apps.Delete(r.Context(), userID, app.ID); err != nil {
		log.Printf("Error deleting application %s: %v", app.ID.Hex(), err)
		writeError(w, http.StatusInternalServerError, "failed to delete application")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "application deleted"})
}

// --- POST /api/applications/import ---

type importRequest struct {
	Rows []importer.Row `json:"rows"`
}

// Import accepts either a JSON rows array or a text/csv body. Rows are
// inserted one at a time; a failing row is reported and skipped, never
// aborting the batch.
func (h *ApplicationsHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var rows []importer.Row
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		parsed, err := importer.RowsFromCSV(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid CSV body")
			return
		}
		rows = parsed
	} else {
		var req importRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		rows = req.Rows
	}
	if len(rows) == 0 {
		writeError(w, http.StatusBadRequest, "no rows to import")
		return
	}

	batchID := uuid.New().String()
	now := h.now()
	successful := 0
	rowErrors := []importer.RowError{}

	for i, row := range rows {
		app, err := importer.Normalize(row, userID, batchID, now)
		if err != nil {
			rowErrors = append(rowErrors, importer.RowError{Row: i + 1, Message: err.Error()})
			continue
		}
		if err := h.apps.Create(r.Context(), app); err != nil {
			log.Printf("Error inserting imported application (row %d): %v", i+1, err)
			rowErrors = append(rowErrors, importer.RowError{Row: i + 1, Message: "failed to insert record"})
			continue
		}
		successful++
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"importBatchId": batchID,
		"successful":    successful,
		"failed":        len(rowErrors),
		"errors":        rowErrors,
	})
}

func (h *ApplicationsHandler) loadOwn(w http.ResponseWriter, r *http.Request) (*models.Application, bool) {
	userID := middleware.GetUserID(r.Context())
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "applicationId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid application id")
		return nil, false
	}

	app, err := h.apps.FindByID(r.Context(), userID, id)
	if err != nil {
		log.Printf("Error finding application: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if app == nil {
		writeError(w, http.StatusNotFound, "application not found")
		return nil, false
	}
	return app, true
}
