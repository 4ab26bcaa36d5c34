package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"edulens-backend/internal/aiclient"
	"edulens-backend/internal/models"
	"edulens-backend/internal/prefill"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatStore struct {
	messages map[string][]models.ChatMessage
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{messages: map[string][]models.ChatMessage{}}
}

func (s *fakeChatStore) TouchSession(ctx context.Context, anonID string) error { return nil }

func (s *fakeChatStore) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	s.messages[msg.AnonID] = append(s.messages[msg.AnonID], *msg)
	return nil
}

func (s *fakeChatStore) MessagesByAnonID(ctx context.Context, anonID string) ([]models.ChatMessage, error) {
	return s.messages[anonID], nil
}

func dreamRouter(chats ChatStore, ai aiclient.Client) chi.Router {
	h := NewDreamHandler(ai, chats)
	r := chi.NewRouter()
	r.Post("/api/dream/message", h.Message)
	r.Post("/api/dream/prefill", h.Prefill)
	return r
}

func postJSON(t *testing.T, router chi.Router, path, anonID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	if anonID != "" {
		req.Header.Set("X-Anon-Id", anonID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestDreamMessagePassesUpstreamBodyThrough(t *testing.T) {
	chats := newFakeChatStore()
	mock := aiclient.NewMock()
	router := dreamRouter(chats, mock)

	rec := postJSON(t, router, "/api/dream/message", "anon-1",
		map[string]string{"message": "I want to study in Canada"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(mock.Reply), rec.Body.String())
	assert.Equal(t, "anon-1", rec.Header().Get("X-Anon-Id"))

	// Both turns land in the transcript
	stored := chats.messages["anon-1"]
	require.Len(t, stored, 2)
	assert.Equal(t, "user", stored[0].Role)
	assert.Equal(t, "assistant", stored[1].Role)
}

func TestDreamMessageGeneratesAnonID(t *testing.T) {
	router := dreamRouter(newFakeChatStore(), aiclient.NewMock())
	rec := postJSON(t, router, "/api/dream/message", "",
		map[string]string{"message": "hello"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Anon-Id"))
}

func TestDreamMessageRequiresMessage(t *testing.T) {
	router := dreamRouter(newFakeChatStore(), aiclient.NewMock())
	rec := postJSON(t, router, "/api/dream/message", "anon-1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrefillFromPostedMessages(t *testing.T) {
	router := dreamRouter(newFakeChatStore(), aiclient.NewMock())

	rec := postJSON(t, router, "/api/dream/prefill", "", map[string]interface{}{
		"messages": []prefill.Message{
			{Role: "user", Content: "I want to study in the US for Fall 2026 on a scholarship"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Prefill prefill.Data `json:"prefill"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"USA"}, resp.Prefill.DreamCountries)
	require.NotNil(t, resp.Prefill.TargetIntake)
	assert.Equal(t, 2026, resp.Prefill.TargetIntake.Year)
	assert.Equal(t, prefill.BudgetUnder20k, resp.Prefill.Budget)
}

func TestPrefillFallsBackToStoredTranscript(t *testing.T) {
	chats := newFakeChatStore()
	chats.messages["anon-2"] = []models.ChatMessage{
		{AnonID: "anon-2", Role: "user", Content: "dreaming about a master's in Germany"},
	}
	router := dreamRouter(chats, aiclient.NewMock())

	rec := postJSON(t, router, "/api/dream/prefill", "anon-2", map[string]interface{}{})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Prefill prefill.Data `json:"prefill"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Germany"}, resp.Prefill.DreamCountries)
	assert.Equal(t, "master", resp.Prefill.DegreeType)
}

func TestPrefillNoMessages(t *testing.T) {
	router := dreamRouter(newFakeChatStore(), aiclient.NewMock())
	rec := postJSON(t, router, "/api/dream/prefill", "anon-3", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
