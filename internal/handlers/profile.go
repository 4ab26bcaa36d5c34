package handlers

import (
	"context"
	"log"
	"net/http"

	"edulens-backend/internal/middleware"
	"edulens-backend/internal/models"
	"edulens-backend/internal/prefill"
)

// ProfileStore covers both profile collections and the chat sessions needed
// for migration.
type ProfileStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	Upsert(ctx context.Context, profile *models.UserProfile) error
}

type SmartProfileStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.SmartProfile, error)
	Upsert(ctx context.Context, profile *models.SmartProfile) error
}

type MigrationChatStore interface {
	FindSession(ctx context.Context, anonID string) (*models.ChatSession, error)
	MessagesByAnonID(ctx context.Context, anonID string) ([]models.ChatMessage, error)
	MarkMigrated(ctx context.Context, anonID, userID string) error
}

type ProfileHandler struct {
	profiles ProfileStore
	smarts   SmartProfileStore
	chats    MigrationChatStore
}

func NewProfileHandler(profiles ProfileStore, smarts SmartProfileStore, chats MigrationChatStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, smarts: smarts, chats: chats}
}

// --- GET /api/profile ---

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.profiles.FindByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("Error loading profile for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	smart, err := h.smarts.FindByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("Error loading smart profile for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if profile == nil && smart == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":      profile,
		"smartProfile": smart,
	})
}

// --- PUT /api/profile ---

type putProfileRequest struct {
	RealityContext string                 `json:"realityContext"`
	Goals          []string               `json:"goals"`
	TargetPrograms []models.TargetProgram `json:"targetPrograms"`
	StageProgress  map[string]bool        `json:"stageProgress"`
}

func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req putProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile := &models.UserProfile{
		UserID:         userID,
		RealityContext: req.RealityContext,
		Goals:          req.Goals,
		TargetPrograms: req.TargetPrograms,
		StageProgress:  req.StageProgress,
	}
	if err := h.profiles.Upsert(r.Context(), profile); err != nil {
		log.Printf("Error saving profile for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "profile saved"})
}

// --- POST /api/profile/migrate ---

type migrateRequest struct {
	AnonID          string `json:"anonId"`
	FutureAmbitions string `json:"futureAmbitions"`
}

// Migrate builds a SmartProfile from a pre-signup dream-chat transcript.
// Only high and medium confidence extractions are copied over.
func (h *ProfileHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req migrateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AnonID == "" {
		writeError(w, http.StatusBadRequest, "anonId is required")
		return
	}

	session, err := h.chats.FindSession(r.Context(), req.AnonID)
	if err != nil {
		log.Printf("Error loading chat session %s: %v", req.AnonID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "chat session not found")
		return
	}
	if session.Migrated {
		writeError(w, http.StatusBadRequest, "chat session was already migrated")
		return
	}

	stored, err := h.chats.MessagesByAnonID(r.Context(), req.AnonID)
	if err != nil {
		log.Printf("Error loading transcript for %s: %v", req.AnonID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	messages := make([]prefill.Message, 0, len(stored))
	for _, m := range stored {
		messages = append(messages, prefill.Message{Role: m.Role, Content: m.Content})
	}

	data := prefill.Extract(messages).Prefill()
	smart := &models.SmartProfile{
		UserID:          userID,
		DreamCountries:  data.DreamCountries,
		DegreeType:      data.DegreeType,
		FieldOfStudy:    data.FieldOfStudy,
		Budget:          data.Budget,
		TargetIntake:    data.TargetIntake,
		FutureAmbitions: req.FutureAmbitions,
		MigratedFrom:    req.AnonID,
	}
	if err := h.smarts.Upsert(r.Context(), smart); err != nil {
		log.Printf("Error saving smart profile for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to save smart profile")
		return
	}
	if err := h.chats.MarkMigrated(r.Context(), req.AnonID, userID); err != nil {
		log.Printf("Error marking session %s migrated: %v", req.AnonID, err)
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "smart profile created",
		"smartProfile": smart,
	})
}
