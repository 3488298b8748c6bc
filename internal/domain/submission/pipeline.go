package submission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"student_request_triage/internal/domain/protocol"
	"student_request_triage/internal/domain/request"

	"github.com/sirupsen/logrus"
)

// Pipeline-level errors. Validation failures are returned as
// protocol.FieldErrors and carry per-field messages instead.
var (
	ErrSubmissionInFlight = fmt.Errorf("a gateway call is already in flight for this request")
	ErrSubmitNotAllowed   = fmt.Errorf("protocol submission is not allowed in the current state")
	ErrDocumentNotReady   = fmt.Errorf("no generated document is available for this request")
)

// Pipeline drives the two-phase submission sequence (document generation, then
// email dispatch) for each request. States are keyed by RequestID and created
// lazily on first interaction. Gateway calls run on the caller's goroutine with
// the pipeline unlocked, so independent requests proceed concurrently while a
// single request never has more than one call outstanding.
//
// ResetAll bumps an epoch counter; completions dispatched under an older epoch
// are discarded, so a response arriving after the filters were re-applied never
// touches a state it no longer owns.
type Pipeline struct {
	docGateway   DocumentGateway
	emailGateway EmailGateway
	sentDisplay  time.Duration
	logger       *logrus.Entry

	mu     sync.Mutex
	states map[string]*State
	epoch  uint64
}

// NewPipeline builds a pipeline over the two gateways. sentDisplay is how long
// the EmailSent state remains visible before resetting to Idle.
func NewPipeline(docGateway DocumentGateway, emailGateway EmailGateway, sentDisplay time.Duration, logger *logrus.Entry) *Pipeline {
	return &Pipeline{
		docGateway:   docGateway,
		emailGateway: emailGateway,
		sentDisplay:  sentDisplay,
		logger:       logger,
		states:       make(map[string]*State),
	}
}

// State returns a copy of the submission state for requestID. Requests without
// prior interaction are Idle.
func (p *Pipeline) State(requestID string) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.states[requestID]; ok {
		return *st
	}
	return State{Status: StatusIdle}
}

// ResetAll discards every submission state and invalidates in-flight
// completions. Called when the filters are re-applied: the cards the states
// belonged to are no longer on screen.
func (p *Pipeline) ResetAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = make(map[string]*State)
	p.epoch++
}

// Submit validates the form and, if it passes, drives the document-generation
// stage for rec. Allowed from Idle and from a failed document stage (retry).
// Validation failures return protocol.FieldErrors without any state change and
// without touching the network.
func (p *Pipeline) Submit(ctx context.Context, rec request.Record, in protocol.Input) (State, error) {
	form, fieldErrs := protocol.Validate(in)
	if fieldErrs != nil {
		return p.State(rec.RequestID), fieldErrs
	}

	p.mu.Lock()
	st := p.ensureLocked(rec.RequestID)
	if st.InFlight() {
		defer p.mu.Unlock()
		return *st, ErrSubmissionInFlight
	}
	if st.Status != StatusIdle && !(st.Status == StatusFailed && st.FailedStage == StageDocument) {
		defer p.mu.Unlock()
		return *st, ErrSubmitNotAllowed
	}
	*st = State{Status: StatusSubmitting}
	epoch := p.epoch
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{"request_id": rec.RequestID, "stage": StageDocument}).
		Info("Submitting protocol to document-generation gateway")

	documentID, err := p.docGateway.GenerateDocument(ctx, DocumentRequest{Form: form, StudentName: rec.FullName})

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.epoch != epoch {
		p.logger.WithField("request_id", rec.RequestID).
			Warn("Discarding stale document-generation result: filters were re-applied")
		return State{Status: StatusIdle}, nil
	}
	st = p.ensureLocked(rec.RequestID)
	switch {
	case err != nil:
		*st = State{Status: StatusFailed, FailedStage: StageDocument, Message: err.Error()}
		p.logger.WithFields(logrus.Fields{"request_id": rec.RequestID, "stage": StageDocument}).
			WithError(err).Error("Document generation failed")
	case documentID == "":
		*st = State{Status: StatusFailed, FailedStage: StageDocument, Message: "gateway returned no document id"}
		p.logger.WithField("request_id", rec.RequestID).Error("Document generation returned no document id")
	default:
		*st = State{Status: StatusDocumentReady, DocumentID: documentID}
		p.logger.WithFields(logrus.Fields{"request_id": rec.RequestID, "document_id": documentID}).
			Info("Document generated")
	}
	return *st, nil
}

// SendEmail drives the email-dispatch stage for rec. Allowed from
// DocumentReady and from a failed email stage, both of which hold a document
// id; unreachable without a prior successful Submit in the same lifecycle.
func (p *Pipeline) SendEmail(ctx context.Context, rec request.Record) (State, error) {
	p.mu.Lock()
	st := p.ensureLocked(rec.RequestID)
	if st.InFlight() {
		defer p.mu.Unlock()
		return *st, ErrSubmissionInFlight
	}
	ready := st.Status == StatusDocumentReady ||
		(st.Status == StatusFailed && st.FailedStage == StageEmail && st.DocumentID != "")
	if !ready || st.DocumentID == "" {
		defer p.mu.Unlock()
		return *st, ErrDocumentNotReady
	}
	documentID := st.DocumentID
	*st = State{Status: StatusEmailSending, DocumentID: documentID}
	epoch := p.epoch
	p.mu.Unlock()

	contacts := request.ParseContacts(rec.Contacts)
	p.logger.WithFields(logrus.Fields{"request_id": rec.RequestID, "stage": StageEmail, "document_id": documentID}).
		Info("Dispatching notification email")

	err := p.emailGateway.SendEmail(ctx, EmailRequest{
		StudentName:     rec.FullName,
		StudentEmail:    contacts.Email,
		StudentQuestion: rec.Question,
		DocumentID:      documentID,
		RequestNumber:   rec.RequestID,
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.epoch != epoch {
		p.logger.WithField("request_id", rec.RequestID).
			Warn("Discarding stale email-dispatch result: filters were re-applied")
		return State{Status: StatusIdle}, nil
	}
	st = p.ensureLocked(rec.RequestID)
	if err != nil {
		*st = State{Status: StatusFailed, FailedStage: StageEmail, Message: err.Error(), DocumentID: documentID}
		p.logger.WithFields(logrus.Fields{"request_id": rec.RequestID, "stage": StageEmail}).
			WithError(err).Error("Email dispatch failed")
		return *st, nil
	}

	*st = State{Status: StatusEmailSent}
	p.logger.WithField("request_id", rec.RequestID).Info("Notification email sent")
	p.scheduleIdleResetLocked(rec.RequestID, epoch)
	return *st, nil
}

// scheduleIdleResetLocked arms the EmailSent display timer. The reset only
// fires if neither the epoch nor the state moved on in the meantime.
func (p *Pipeline) scheduleIdleResetLocked(requestID string, epoch uint64) {
	time.AfterFunc(p.sentDisplay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.epoch != epoch {
			return
		}
		if st, ok := p.states[requestID]; ok && st.Status == StatusEmailSent {
			*st = State{Status: StatusIdle}
		}
	})
}

func (p *Pipeline) ensureLocked(requestID string) *State {
	st, ok := p.states[requestID]
	if !ok {
		st = &State{Status: StatusIdle}
		p.states[requestID] = st
	}
	return st
}
