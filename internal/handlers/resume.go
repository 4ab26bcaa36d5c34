package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"edulens-backend/internal/ats"
	"edulens-backend/internal/middleware"
	"edulens-backend/internal/models"
)

// ResumeStore is the persistence surface of the resume builder.
type ResumeStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.Resume, error)
	Upsert(ctx context.Context, resume *models.Resume) error
	SaveScore(ctx context.Context, userID string, score *models.AIScore) error
	Delete(ctx context.Context, userID string) (int64, error)
}

type ResumeHandler struct {
	resumes ResumeStore
	now     func() time.Time
}

func NewResumeHandler(resumes ResumeStore) *ResumeHandler {
	return &ResumeHandler{resumes: resumes, now: time.Now}
}

// --- GET /api/resume ---

func (h *ResumeHandler) Get(w http.ResponseWriter, r *http.Request) {
	resume, ok := h.loadOwn(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resume)
}

// --- PUT /api/resume ---

type putResumeRequest struct {
	PersonalInfo   models.ResumePersonalInfo    `json:"personalInfo" validate:"required"`
	Experience     []models.ResumeExperience    `json:"experience"`
	Education      []models.ResumeEducation     `json:"education"`
	Skills         []string                     `json:"skills"`
	Projects       []models.ResumeProject       `json:"projects"`
	Certifications []models.ResumeCertification `json:"certifications"`
	Design         models.ResumeDesign          `json:"design"`
}

func (h *ResumeHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req putResumeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PersonalInfo.FullName == "" {
		writeError(w, http.StatusBadRequest, "personalInfo.fullName is required")
		return
	}

	resume := &models.Resume{
		UserID:         userID,
		PersonalInfo:   req.PersonalInfo,
		Experience:     req.Experience,
		Education:      req.Education,
		Skills:         req.Skills,
		Projects:       req.Projects,
		Certifications: req.Certifications,
		Design:         req.Design,
	}
	if err := h.resumes.Upsert(r.Context(), resume); err != nil {
		log.Printf("Error saving resume for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to save resume")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "resume saved"})
}

// --- DELETE /api/resume ---

func (h *ResumeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	deleted, err := h.resumes.Delete(r.Context(), userID)
	if err != nil {
		log.Printf("Error deleting resume for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to delete resume")
		return
	}
	if deleted == 0 {
		writeError(w, http.StatusNotFound, "resume not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "resume deleted"})
}

// --- POST /api/resume/analyze ---

func (h *ResumeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	resume, ok := h.loadOwn(w, r)
	if !ok {
		return
	}

	now := h.now()
	hash := ats.ContentHash(resume)
	if ats.Fresh(resume.AIScore, hash, now) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"cached": true,
			"score":  resume.AIScore,
		})
		return
	}

	score := ats.Analyze(resume, now)
	if err := h.resumes.SaveScore(r.Context(), resume.UserID, score); err != nil {
		log.Printf("Error caching resume score for user %s: %v", resume.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to save analysis")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cached": false,
		"score":  score,
	})
}

// --- POST /api/resume/optimize ---

func (h *ResumeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	resume, ok := h.loadOwn(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": ats.Optimize(resume),
	})
}

func (h *ResumeHandler) loadOwn(w http.ResponseWriter, r *http.Request) (*models.Resume, bool) {
	userID := middleware.GetUserID(r.Context())
	resume, err := h.resumes.FindByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("Error loading resume for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if resume == nil {
		writeError(w, http.StatusNotFound, "resume not found")
		return nil, false
	}
	return resume, true
}
