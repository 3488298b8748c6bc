package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"student_request_triage/internal/domain/protocol"
	"student_request_triage/internal/domain/submission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocumentRequest() submission.DocumentRequest {
	return submission.DocumentRequest{
		Form: protocol.Form{
			ProtocolNumber:       2,
			QuestionNumber:       10,
			ActualMemberNumber:   8,
			ExpectedMemberNumber: 12,
			VotesFor:             8,
			VotesAgainst:         0,
			VotesAbstained:       1,
			AgendaQuestion:       "Chair election",
			MeetingProgress:      "The director presented the agenda.",
			MeetingSolution:      "Appoint the chair.",
		},
		StudentName: "Ivanova A.",
	}
}

func TestWebhookDocumentClient(t *testing.T) {
	t.Run("success returns the document id", func(t *testing.T) {
		var got map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(map[string]string{"document_id": "DOC-123"})
		}))
		defer server.Close()

		client := NewWebhookDocumentClient(server.URL)
		id, err := client.GenerateDocument(context.Background(), sampleDocumentRequest())
		require.NoError(t, err)
		assert.Equal(t, "DOC-123", id)

		// Counters go over the wire as JSON numbers, texts and the student
		// name ride alongside them in a flat object.
		assert.Equal(t, float64(2), got["protocol_number"])
		assert.Equal(t, float64(0), got["votes_against"])
		assert.Equal(t, "Chair election", got["agenda_question"])
		assert.Equal(t, "Ivanova A.", got["student_name"])
	})

	t.Run("failure surfaces the error message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "timeout"})
		}))
		defer server.Close()

		client := NewWebhookDocumentClient(server.URL)
		_, err := client.GenerateDocument(context.Background(), sampleDocumentRequest())
		require.Error(t, err)
		assert.Equal(t, "timeout", err.Error())
	})

	t.Run("failure without a body reports the status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewWebhookDocumentClient(server.URL)
		_, err := client.GenerateDocument(context.Background(), sampleDocumentRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("success without a document id returns empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer server.Close()

		client := NewWebhookDocumentClient(server.URL)
		id, err := client.GenerateDocument(context.Background(), sampleDocumentRequest())
		require.NoError(t, err)
		assert.Empty(t, id)
	})
}

func TestWebhookEmailClient(t *testing.T) {
	t.Run("success with any 2xx status, body ignored", func(t *testing.T) {
		var got submission.EmailRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		client := NewWebhookEmailClient(server.URL)
		err := client.SendEmail(context.Background(), submission.EmailRequest{
			StudentName:     "Ivanova A.",
			StudentEmail:    "ivanova@example.kz",
			StudentQuestion: "Q1",
			DocumentID:      "DOC-123",
			RequestNumber:   "R-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "DOC-123", got.DocumentID)
		assert.Equal(t, "R-1", got.RequestNumber)
		assert.Equal(t, "ivanova@example.kz", got.StudentEmail)
	})

	t.Run("failure surfaces the error message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "mail delivery failed"})
		}))
		defer server.Close()

		client := NewWebhookEmailClient(server.URL)
		err := client.SendEmail(context.Background(), submission.EmailRequest{DocumentID: "DOC-123"})
		require.Error(t, err)
		assert.Equal(t, "mail delivery failed", err.Error())
	})
}
