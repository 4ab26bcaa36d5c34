package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"edulens-backend/internal/middleware"
	"edulens-backend/internal/models"

	"github.com/go-chi/chi/v5"
)

type RoadmapStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.RoadmapPlan, error)
	Upsert(ctx context.Context, plan *models.RoadmapPlan) error
	ReplaceScenarios(ctx context.Context, userID string, scenarios []models.RoadmapScenario) error
}

type RoadmapHandler struct {
	roadmaps RoadmapStore
	now      func() time.Time
}

func NewRoadmapHandler(roadmaps RoadmapStore) *RoadmapHandler {
	return &RoadmapHandler{roadmaps: roadmaps, now: time.Now}
}

// --- GET /api/roadmap ---

func (h *RoadmapHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.loadOwn(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// --- PUT /api/roadmap ---

type putRoadmapRequest struct {
	Scenarios []models.RoadmapScenario `json:"scenarios"`
}

var scenarioKinds = map[string]bool{
	models.ScenarioDream:   true,
	models.ScenarioReality: true,
	models.ScenarioFuture:  true,
}

func (h *RoadmapHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req putRoadmapRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Scenarios) == 0 {
		writeError(w, http.StatusBadRequest, "scenarios are required")
		return
	}
	for _, s := range req.Scenarios {
		if !scenarioKinds[s.Kind] {
			writeError(w, http.StatusBadRequest, "scenario kind must be dream, reality, or future")
			return
		}
	}

	scenarios := req.Scenarios
	for i := range scenarios {
		scenarios[i].Completion = models.ScenarioCompletion(scenarios[i])
	}

	plan := &models.RoadmapPlan{UserID: userID, Scenarios: scenarios}
	if err := h.roadmaps.Upsert(r.Context(), plan); err != nil {
		log.Printf("Error saving roadmap for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to save roadmap")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "roadmap saved"})
}

// --- PATCH /api/roadmap/tasks/{taskId} ---

type patchTaskRequest struct {
	Status string `json:"status" validate:"required,oneof=not_started in_progress completed skipped"`
}

func (h *RoadmapHandler) PatchTask(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	taskID := chi.URLParam(r, "taskId")

	var req patchTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, ok := h.loadOwn(w, r)
	if !ok {
		return
	}

	found := false
	for si := range plan.Scenarios {
		for mi := range plan.Scenarios[si].Milestones {
			tasks := plan.Scenarios[si].Milestones[mi].Tasks
			for ti := range tasks {
				if tasks[ti].ID != taskID {
					continue
				}
				found = true
				if !models.CanTransitionTask(tasks[ti].Status, req.Status) {
					writeError(w, http.StatusBadRequest, "illegal task status transition")
					return
				}
				tasks[ti].Status = req.Status
				tasks[ti].UpdatedAt = h.now()
			}
		}
		plan.Scenarios[si].Completion = models.ScenarioCompletion(plan.Scenarios[si])
	}
	if !found {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if err := h.roadmaps.ReplaceScenarios(r.Context(), userID, plan.Scenarios); err != nil {
		log.Printf("Error updating roadmap task %s: %v", taskID, err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task updated"})
}

func (h *RoadmapHandler) loadOwn(w http.ResponseWriter, r *http.Request) (*models.RoadmapPlan, bool) {
	userID := middleware.GetUserID(r.Context())
	plan, err := h.roadmaps.FindByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("Error loading roadmap for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "roadmap not found")
		return nil, false
	}
	return plan, true
}
