package submission

// Stage names one of the two ordered phases of the submission pipeline.
type Stage string

const (
	StageDocument Stage = "document"
	StageEmail    Stage = "email"
)

// Status is the tagged state of one request's submission pipeline.
type Status string

const (
	StatusIdle          Status = "IDLE"
	StatusSubmitting    Status = "SUBMITTING"
	StatusDocumentReady Status = "DOCUMENT_READY"
	StatusEmailSending  Status = "EMAIL_SENDING"
	StatusEmailSent     Status = "EMAIL_SENT"
	StatusFailed        Status = "FAILED"
)

// State is the submission state of a single request, keyed by its RequestID.
// DocumentID is set while a generated document exists for this lifecycle;
// FailedStage and Message are set only while Status is StatusFailed. A failed
// email stage retains DocumentID so dispatch can be retried without
// regenerating the document.
type State struct {
	Status      Status `json:"status"`
	DocumentID  string `json:"document_id,omitempty"`
	FailedStage Stage  `json:"failed_stage,omitempty"`
	Message     string `json:"message,omitempty"`
}

// InFlight reports whether a gateway call is currently outstanding for this
// state. The submit and send controls are disabled while it holds.
func (s State) InFlight() bool {
	return s.Status == StatusSubmitting || s.Status == StatusEmailSending
}
