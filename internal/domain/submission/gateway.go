package submission

import (
	"context"

	"student_request_triage/internal/domain/protocol"
)

// DocumentRequest is the wire body sent to the document-generation service:
// the validated protocol counters and texts plus the student's name.
type DocumentRequest struct {
	protocol.Form
	StudentName string `json:"student_name"`
}

// EmailRequest is the wire body sent to the email-dispatch service.
type EmailRequest struct {
	StudentName     string `json:"student_name"`
	StudentEmail    string `json:"student_email"`
	StudentQuestion string `json:"student_question"`
	DocumentID      string `json:"document_id"`
	RequestNumber   string `json:"request_number"`
}

// DocumentGateway generates a formal protocol document from a validated form
// and returns its opaque identifier. Failures carry a human-readable message.
type DocumentGateway interface {
	GenerateDocument(ctx context.Context, req DocumentRequest) (string, error)
}

// EmailGateway dispatches the notification email referencing a generated
// document. Only success or failure is observable; the response body is not.
type EmailGateway interface {
	SendEmail(ctx context.Context, req EmailRequest) error
}
