package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"edulens-backend/internal/aiclient"
	"edulens-backend/internal/models"
	"edulens-backend/internal/prefill"

	"github.com/google/uuid"
)

// ChatStore persists dream-chat transcripts.
type ChatStore interface {
	TouchSession(ctx context.Context, anonID string) error
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
	MessagesByAnonID(ctx context.Context, anonID string) ([]models.ChatMessage, error)
}

type DreamHandler struct {
	ai    aiclient.Client
	chats ChatStore
}

func NewDreamHandler(ai aiclient.Client, chats ChatStore) *DreamHandler {
	return &DreamHandler{ai: ai, chats: chats}
}

// --- POST /api/dream/message ---

type dreamMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// Message proxies one chat turn to the AI service and persists the
// transcript. The upstream response body is passed through verbatim.
func (h *DreamHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req dreamMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	anonID := AnonID(r)
	if err := h.chats.TouchSession(r.Context(), anonID); err != nil {
		log.Printf("Error touching chat session %s: %v", anonID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := h.chats.AppendMessage(r.Context(), &models.ChatMessage{
		AnonID: anonID, Role: "user", Content: req.Message,
	}); err != nil {
		log.Printf("Error persisting chat message: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	payload, _ := json.Marshal(req)
	body, status, err := h.ai.SendDreamMessage(r.Context(), anonID, payload)
	if err != nil {
		log.Printf("Error calling AI service: %v", err)
		writeError(w, http.StatusInternalServerError, "dream service unavailable")
		return
	}

	// Store the assistant turn when the upstream reply carries one
	var upstream struct {
		Reply string `json:"reply"`
	}
	if json.Unmarshal(body, &upstream) == nil && upstream.Reply != "" {
		if err := h.chats.AppendMessage(r.Context(), &models.ChatMessage{
			AnonID: anonID, Role: "assistant", Content: upstream.Reply,
		}); err != nil {
			log.Printf("Error persisting assistant message: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Anon-Id", anonID)
	w.WriteHeader(status)
	w.Write(body)
}

// --- POST /api/dream/prefill ---

type prefillRequest struct {
	Messages []prefill.Message `json:"messages"`
}

// Prefill classifies a transcript into signup prefill fields. When no
// messages are posted the stored transcript for the anon id is used.
func (h *DreamHandler) Prefill(w http.ResponseWriter, r *http.Request) {
	var req prefillRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	messages := req.Messages
	if len(messages) == 0 {
		stored, err := h.chats.MessagesByAnonID(r.Context(), AnonID(r))
		if err != nil {
			log.Printf("Error loading stored transcript: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		for _, m := range stored {
			messages = append(messages, prefill.Message{Role: m.Role, Content: m.Content})
		}
	}
	if len(messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}

	extraction := prefill.Extract(messages)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prefill":    extraction.Prefill(),
		"extraction": extraction,
	})
}

// AnonID reads the anonymous chat identity from the request, generating one
// when the client has none yet.
func AnonID(r *http.Request) string {
	if id := r.Header.Get("X-Anon-Id"); id != "" {
		return id
	}
	return uuid.New().String()
}
