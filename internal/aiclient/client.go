package aiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client defines the interface for the upstream dream-chat AI service.
// This abstraction allows swapping the mock with the real service without refactoring.
type Client interface {
	SendDreamMessage(ctx context.Context, anonID string, payload []byte) ([]byte, int, error)
}

// HTTPClient forwards dream-chat messages to ${AI_SERVICE_URL} and passes
// the upstream response body through verbatim.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) SendDreamMessage(ctx context.Context, anonID string, payload []byte) ([]byte, int, error) {
	url := c.baseURL + "/api/v1/dream/message"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-anon-id", anonID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("ai service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
