package app

import (
	"context"
	"fmt"
	"sync"

	"student_request_triage/internal/domain/protocol"
	"student_request_triage/internal/domain/request"
	"student_request_triage/internal/domain/submission"
	domainTelegram "student_request_triage/internal/domain/telegram"
	"student_request_triage/internal/domain/triage"

	"github.com/sirupsen/logrus"
)

// Application-level errors surfaced to the transport layer.
var (
	ErrRequestNotFound    = fmt.Errorf("request not found in the current load")
	ErrRequestNotExpanded = fmt.Errorf("request detail view is not open")
)

// RequestView is one filtered request prepared for display: the raw record
// plus its parsed contacts, formatted date and current submission state.
type RequestView struct {
	RequestID  string           `json:"request_id"`
	FullName   string           `json:"full_name"`
	Phone      string           `json:"phone,omitempty"`
	Email      string           `json:"email,omitempty"`
	Question   string           `json:"question"`
	Status     request.Status   `json:"status"`
	Category   string           `json:"category"`
	Date       string           `json:"date"`
	IsExpanded bool             `json:"is_expanded"`
	Submission submission.State `json:"submission"`
}

// Snapshot is the full triage view returned to the reviewer frontend.
type Snapshot struct {
	StudentOptions  []string      `json:"student_options"`
	QuestionOptions []string      `json:"question_options"`
	PendingStudent  string        `json:"pending_student"`
	PendingQuestion string        `json:"pending_question"`
	AppliedStudent  string        `json:"applied_student"`
	AppliedQuestion string        `json:"applied_question"`
	CanExpand       bool          `json:"can_expand"`
	Requests        []RequestView `json:"requests"`
}

// TriageService owns the shared triage state: the cached request list, the
// cascading filter selection and the expansion controller. All mutations go
// through its mutex because HTTP handlers run on arbitrary goroutines; the
// domain types themselves stay lock-free. Gateway calls are delegated to the
// pipeline with the service lock released, so one slow webhook never blocks
// filtering or other requests.
type TriageService struct {
	repo      request.Repository
	pipeline  *submission.Pipeline
	notifier  domainTelegram.Client // nil disables ops notifications
	opsChatID int64
	logger    *logrus.Entry

	mu        sync.Mutex
	records   []request.Record
	selection triage.Selection
	expansion triage.Expansion
}

func NewTriageService(
	repo request.Repository,
	pipeline *submission.Pipeline,
	notifier domainTelegram.Client,
	opsChatID int64,
	logger *logrus.Entry,
) *TriageService {
	return &TriageService{
		repo:      repo,
		pipeline:  pipeline,
		notifier:  notifier,
		opsChatID: opsChatID,
		logger:    logger,
	}
}

// Refresh reloads the request list from the source-of-record.
func (s *TriageService) Refresh(ctx context.Context) error {
	records, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh request list: %w", err)
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	s.logger.WithField("count", len(records)).Info("Request list refreshed")
	return nil
}

// SetStudent updates the pending student filter and resets the pending
// question, since the question scope depends on the student.
func (s *TriageService) SetStudent(student string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.SetStudent(student)
}

// SetQuestion updates the pending question filter. No-op without a pending
// student.
func (s *TriageService) SetQuestion(question string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.SetQuestion(question)
}

// ApplyFilters promotes the pending selection to applied, collapses any open
// detail view and discards all submission states: the cards they belonged to
// are no longer on screen, and late gateway responses for them must not apply.
func (s *TriageService) ApplyFilters() {
	s.mu.Lock()
	s.selection.Apply()
	s.expansion.Collapse()
	student, question := s.selection.AppliedStudent, s.selection.AppliedQuestion
	s.mu.Unlock()
	s.pipeline.ResetAll()
	s.logger.WithFields(logrus.Fields{
		"student":  student,
		"question": question,
	}).Info("Filters applied")
}

// ResetFilters clears both pending and applied selections and collapses the
// detail view.
func (s *TriageService) ResetFilters() {
	s.mu.Lock()
	s.selection.Reset()
	s.expansion.Collapse()
	s.mu.Unlock()
	s.pipeline.ResetAll()
	s.logger.Info("Filters reset")
}

// ToggleExpand opens or closes the detail view for requestID. Only the sole
// survivor of the applied filters can be toggled.
func (s *TriageService) ToggleExpand(requestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expansion.Toggle(requestID, s.filteredLocked())
}

// SubmitProtocol validates the form for the expanded request and drives the
// document-generation stage. Validation failures come back as
// protocol.FieldErrors and never reach the gateway.
func (s *TriageService) SubmitProtocol(ctx context.Context, requestID string, in protocol.Input) (submission.State, error) {
	rec, err := s.expandedRecord(requestID)
	if err != nil {
		return submission.State{}, err
	}
	st, err := s.pipeline.Submit(ctx, *rec, in)
	if err == nil && st.Status == submission.StatusFailed {
		s.notifyOps(fmt.Sprintf("Document generation failed for request %s: %s", requestID, st.Message))
	}
	return st, err
}

// SendEmail drives the email-dispatch stage for the expanded request. On
// success the record is marked SENT in the source-of-record and the cached
// list is refreshed so the updated status shows on next load.
func (s *TriageService) SendEmail(ctx context.Context, requestID string) (submission.State, error) {
	rec, err := s.expandedRecord(requestID)
	if err != nil {
		return submission.State{}, err
	}
	st, err := s.pipeline.SendEmail(ctx, *rec)
	if err != nil {
		return st, err
	}
	switch st.Status {
	case submission.StatusEmailSent:
		if updErr := s.repo.UpdateStatus(ctx, requestID, request.StatusSent); updErr != nil {
			s.logger.WithField("request_id", requestID).WithError(updErr).
				Error("Failed to mark request as sent in source-of-record")
		}
		if refErr := s.Refresh(ctx); refErr != nil {
			s.logger.WithError(refErr).Error("Failed to refresh request list after email dispatch")
		}
		s.notifyOps(fmt.Sprintf("Protocol email dispatched for request %s (%s)", requestID, rec.FullName))
	case submission.StatusFailed:
		s.notifyOps(fmt.Sprintf("Email dispatch failed for request %s: %s", requestID, st.Message))
	}
	return st, nil
}

// RequestState returns the submission state for requestID.
func (s *TriageService) RequestState(requestID string) submission.State {
	return s.pipeline.State(requestID)
}

// Snapshot assembles the full triage view for the frontend.
func (s *TriageService) Snapshot() Snapshot {
	s.mu.Lock()
	records := s.records
	sel := s.selection
	expandedID := s.expansion.ExpandedID()
	filtered := s.filteredLocked()
	s.mu.Unlock()

	snap := Snapshot{
		StudentOptions:  triage.StudentOptions(records),
		QuestionOptions: triage.QuestionOptions(records, sel.PendingStudent),
		PendingStudent:  sel.PendingStudent,
		PendingQuestion: sel.PendingQuestion,
		AppliedStudent:  sel.AppliedStudent,
		AppliedQuestion: sel.AppliedQuestion,
		CanExpand:       triage.CanExpand(filtered),
		Requests:        make([]RequestView, 0, len(filtered)),
	}
	for _, rec := range filtered {
		contacts := request.ParseContacts(rec.Contacts)
		snap.Requests = append(snap.Requests, RequestView{
			RequestID:  rec.RequestID,
			FullName:   rec.FullName,
			Phone:      contacts.Phone,
			Email:      contacts.Email,
			Question:   rec.Question,
			Status:     rec.Status,
			Category:   rec.Category,
			Date:       request.FormatDate(rec.Date),
			IsExpanded: rec.RequestID == expandedID,
			Submission: s.pipeline.State(rec.RequestID),
		})
	}
	return snap
}

// expandedRecord resolves requestID against the open detail view. Submission
// actions are only reachable from the expanded card.
func (s *TriageService) expandedRecord(requestID string) (*request.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expansion.ExpandedID() != requestID {
		return nil, ErrRequestNotExpanded
	}
	for i := range s.records {
		if s.records[i].RequestID == requestID {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, ErrRequestNotFound
}

func (s *TriageService) filteredLocked() []request.Record {
	return triage.Filtered(s.records, s.selection.AppliedStudent, s.selection.AppliedQuestion)
}

func (s *TriageService) notifyOps(text string) {
	if s.notifier == nil || s.opsChatID == 0 {
		return
	}
	if err := s.notifier.Notify(s.opsChatID, text); err != nil {
		s.logger.WithError(err).Warn("Failed to send ops notification")
	}
}
