package gateway

import (
	"context"
	"net/http"

	"student_request_triage/internal/domain/submission"
)

// WebhookEmailClient implements submission.EmailGateway against the
// email-dispatch webhook. Any success status counts as delivered; the response
// body is ignored.
type WebhookEmailClient struct {
	url        string
	httpClient *http.Client
}

func NewWebhookEmailClient(url string) *WebhookEmailClient {
	return &WebhookEmailClient{
		url:        url,
		httpClient: &http.Client{Timeout: defaultClientTimeout},
	}
}

func (c *WebhookEmailClient) SendEmail(ctx context.Context, req submission.EmailRequest) error {
	_, err := postJSON(ctx, c.httpClient, c.url, req)
	return err
}
