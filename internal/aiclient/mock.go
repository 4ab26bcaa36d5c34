package aiclient

import (
	"context"
	"log"
	"net/http"
)

// Mock implements Client by echoing a canned reply. Used when AI_SERVICE_URL
// is unset so the dream-chat flow stays exercisable in development.
type Mock struct {
	Reply []byte
}

func NewMock() *Mock {
	return &Mock{Reply: []byte(`{"reply":"Tell me more about where you want to study!"}`)}
}

func (m *Mock) SendDreamMessage(ctx context.Context, anonID string, payload []byte) ([]byte, int, error) {
	log.Printf("🤖 [MockAI] anon=%s message=%s", anonID, string(payload))
	return m.Reply, http.StatusOK, nil
}
