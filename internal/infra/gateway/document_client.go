package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"student_request_triage/internal/domain/submission"

	"github.com/google/uuid"
)

const defaultClientTimeout = 30 * time.Second

// WebhookDocumentClient implements submission.DocumentGateway against the
// document-generation webhook. The request body carries the protocol counters
// as JSON numbers plus student_name; a success response must contain
// document_id.
type WebhookDocumentClient struct {
	url        string
	httpClient *http.Client
}

func NewWebhookDocumentClient(url string) *WebhookDocumentClient {
	return &WebhookDocumentClient{
		url:        url,
		httpClient: &http.Client{Timeout: defaultClientTimeout},
	}
}

func (c *WebhookDocumentClient) GenerateDocument(ctx context.Context, req submission.DocumentRequest) (string, error) {
	body, err := postJSON(ctx, c.httpClient, c.url, req)
	if err != nil {
		return "", err
	}

	var payload struct {
		DocumentID string `json:"document_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to decode document-generation response: %w", err)
	}
	return payload.DocumentID, nil
}

// postJSON posts a JSON body and returns the raw response body on a 2xx
// status. Non-success statuses are decoded as {"error": "..."} and surfaced as
// an error carrying that message.
func postJSON(ctx context.Context, client *http.Client, url string, body any) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook call failed: %w", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(buf.Bytes(), &payload); err == nil && payload.Error != "" {
			return nil, fmt.Errorf("%s", payload.Error)
		}
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return buf.Bytes(), nil
}
