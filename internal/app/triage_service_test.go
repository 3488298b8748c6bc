package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"student_request_triage/internal/domain/protocol"
	"student_request_triage/internal/domain/request"
	"student_request_triage/internal/domain/submission"
	domainTelegram "student_request_triage/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu      sync.Mutex
	records []request.Record
}

func (r *memoryRepo) List(_ context.Context) ([]request.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]request.Record, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *memoryRepo) GetByRequestID(_ context.Context, requestID string) (*request.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].RequestID == requestID {
			rec := r.records[i]
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("student request not found")
}

func (r *memoryRepo) UpdateStatus(_ context.Context, requestID string, status request.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].RequestID == requestID {
			r.records[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("student request not found")
}

type stubDocGateway struct {
	mu    sync.Mutex
	calls int
	id    string
	err   error
}

func (g *stubDocGateway) GenerateDocument(_ context.Context, _ submission.DocumentRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.id, g.err
}

type stubEmailGateway struct {
	mu      sync.Mutex
	calls   int
	lastReq submission.EmailRequest
	err     error
}

func (g *stubEmailGateway) SendEmail(_ context.Context, req submission.EmailRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastReq = req
	return g.err
}

type stubNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *stubNotifier) Notify(_ int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func seedRecords() []request.Record {
	return []request.Record{
		{RequestID: "R-1", FullName: "Ivanova A.", Question: "Q1", Contacts: "+7 701 123 45 67; ivanova@example.kz", Status: request.StatusNew, Category: "Other", Date: "07.03.2026, 14:05:09"},
		{RequestID: "R-2", FullName: "Ivanova A.", Question: "Q2", Status: request.StatusNew},
		{RequestID: "R-3", FullName: "Petrov B.", Question: "Q3", Status: request.StatusNew},
	}
}

func validInput() protocol.Input {
	return protocol.Input{
		ProtocolNumber:       "2",
		QuestionNumber:       "10",
		ActualMemberNumber:   "8",
		ExpectedMemberNumber: "12",
		VotesFor:             "8",
		VotesAgainst:         "0",
		VotesAbstained:       "1",
		AgendaQuestion:       "Chair election for the quality committee",
		MeetingProgress:      "The director presented the agenda to the committee members.",
		MeetingSolution:      "Appoint the committee chair and the technical secretary.",
	}
}

func newTestService(t *testing.T, doc *stubDocGateway, email *stubEmailGateway, notifier *stubNotifier) (*TriageService, *memoryRepo) {
	t.Helper()
	repo := &memoryRepo{records: seedRecords()}
	pipeline := submission.NewPipeline(doc, email, 20*time.Millisecond, testLogger())
	var client domainTelegram.Client
	if notifier != nil {
		client = notifier
	}
	svc := NewTriageService(repo, pipeline, client, 7, testLogger())
	require.NoError(t, svc.Refresh(context.Background()))
	return svc, repo
}

// narrowToR1 drives the filters so that R-1 is the sole visible record and
// opens its detail view.
func narrowToR1(t *testing.T, svc *TriageService) {
	t.Helper()
	svc.SetStudent("Ivanova A.")
	svc.SetQuestion("Q1")
	svc.ApplyFilters()
	require.True(t, svc.ToggleExpand("R-1"))
}

func TestCascadingFiltersNarrowToSingleRequest(t *testing.T) {
	svc, _ := newTestService(t, &stubDocGateway{}, &stubEmailGateway{}, nil)

	svc.SetStudent("Ivanova A.")
	snap := svc.Snapshot()
	assert.Equal(t, []string{"Ivanova A.", "Petrov B."}, snap.StudentOptions)
	assert.Equal(t, []string{"Q1", "Q2"}, snap.QuestionOptions)
	assert.Empty(t, snap.Requests, "nothing is visible before filters are applied")

	svc.SetQuestion("Q1")
	svc.ApplyFilters()

	snap = svc.Snapshot()
	require.Len(t, snap.Requests, 1)
	assert.True(t, snap.CanExpand)
	assert.Equal(t, "R-1", snap.Requests[0].RequestID)
	assert.Equal(t, "ivanova@example.kz", snap.Requests[0].Email)
	assert.Equal(t, "+7 701 123 45 67", snap.Requests[0].Phone)
	assert.Equal(t, "Mar 7, 2026", snap.Requests[0].Date)
}

func TestApplyFiltersCollapsesExpansion(t *testing.T) {
	svc, _ := newTestService(t, &stubDocGateway{}, &stubEmailGateway{}, nil)
	narrowToR1(t, svc)

	snap := svc.Snapshot()
	require.Len(t, snap.Requests, 1)
	assert.True(t, snap.Requests[0].IsExpanded)

	svc.ApplyFilters()
	snap = svc.Snapshot()
	require.Len(t, snap.Requests, 1)
	assert.False(t, snap.Requests[0].IsExpanded)
}

func TestToggleExpandRequiresSingletonFilteredSet(t *testing.T) {
	svc, _ := newTestService(t, &stubDocGateway{}, &stubEmailGateway{}, nil)

	// No filters applied: nothing is visible, nothing can expand.
	assert.False(t, svc.ToggleExpand("R-1"))

	svc.SetStudent("Ivanova A.")
	svc.SetQuestion("Q1")
	svc.ApplyFilters()
	assert.False(t, svc.ToggleExpand("R-2"), "only the sole survivor can be toggled")
	assert.True(t, svc.ToggleExpand("R-1"))
}

func TestSubmitProtocolRequiresOpenDetailView(t *testing.T) {
	doc := &stubDocGateway{id: "DOC-123"}
	svc, _ := newTestService(t, doc, &stubEmailGateway{}, nil)

	_, err := svc.SubmitProtocol(context.Background(), "R-1", validInput())
	assert.ErrorIs(t, err, ErrRequestNotExpanded)
	assert.Zero(t, doc.calls)
}

func TestSubmitProtocolValidationBlocksGatewayCall(t *testing.T) {
	doc := &stubDocGateway{id: "DOC-123"}
	svc, _ := newTestService(t, doc, &stubEmailGateway{}, nil)
	narrowToR1(t, svc)

	in := validInput()
	in.VotesFor = "-1"
	_, err := svc.SubmitProtocol(context.Background(), "R-1", in)

	var fieldErrs protocol.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "must be positive", fieldErrs["votes_for"])
	assert.Zero(t, doc.calls)
}

func TestFullSubmissionFlowMarksRecordSent(t *testing.T) {
	doc := &stubDocGateway{id: "DOC-123"}
	email := &stubEmailGateway{}
	notifier := &stubNotifier{}
	svc, repo := newTestService(t, doc, email, notifier)
	narrowToR1(t, svc)

	st, err := svc.SubmitProtocol(context.Background(), "R-1", validInput())
	require.NoError(t, err)
	assert.Equal(t, submission.StatusDocumentReady, st.Status)
	assert.Equal(t, "DOC-123", st.DocumentID)

	st, err = svc.SendEmail(context.Background(), "R-1")
	require.NoError(t, err)
	assert.Equal(t, submission.StatusEmailSent, st.Status)
	assert.Equal(t, "DOC-123", email.lastReq.DocumentID)
	assert.Equal(t, "R-1", email.lastReq.RequestNumber)

	// The source-of-record was updated and the cache refreshed.
	rec, err := repo.GetByRequestID(context.Background(), "R-1")
	require.NoError(t, err)
	assert.Equal(t, request.StatusSent, rec.Status)

	snap := svc.Snapshot()
	require.Len(t, snap.Requests, 1)
	assert.Equal(t, request.StatusSent, snap.Requests[0].Status)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "R-1")

	// The EmailSent state returns to Idle after the display interval.
	assert.Eventually(t, func() bool {
		return svc.RequestState("R-1").Status == submission.StatusIdle
	}, time.Second, 5*time.Millisecond)
}

func TestSendEmailWithoutDocumentIsRejected(t *testing.T) {
	email := &stubEmailGateway{}
	svc, _ := newTestService(t, &stubDocGateway{id: "DOC-123"}, email, nil)
	narrowToR1(t, svc)

	_, err := svc.SendEmail(context.Background(), "R-1")
	assert.ErrorIs(t, err, submission.ErrDocumentNotReady)
	assert.Zero(t, email.calls)
}

func TestDocumentFailureIsReportedAndRetryable(t *testing.T) {
	doc := &stubDocGateway{err: fmt.Errorf("timeout")}
	notifier := &stubNotifier{}
	svc, _ := newTestService(t, doc, &stubEmailGateway{}, notifier)
	narrowToR1(t, svc)

	st, err := svc.SubmitProtocol(context.Background(), "R-1", validInput())
	require.NoError(t, err)
	assert.Equal(t, submission.StatusFailed, st.Status)
	assert.Equal(t, submission.StageDocument, st.FailedStage)
	assert.Equal(t, "timeout", st.Message)

	notifier.mu.Lock()
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "timeout")
	notifier.mu.Unlock()

	doc.mu.Lock()
	doc.err = nil
	doc.id = "DOC-456"
	doc.mu.Unlock()

	st, err = svc.SubmitProtocol(context.Background(), "R-1", validInput())
	require.NoError(t, err)
	assert.Equal(t, submission.StatusDocumentReady, st.Status)
	assert.Equal(t, "DOC-456", st.DocumentID)
	assert.Equal(t, 2, doc.calls)
}

func TestResetFiltersClearsEverything(t *testing.T) {
	svc, _ := newTestService(t, &stubDocGateway{id: "DOC-123"}, &stubEmailGateway{}, nil)
	narrowToR1(t, svc)

	svc.ResetFilters()
	snap := svc.Snapshot()
	assert.Empty(t, snap.Requests)
	assert.Empty(t, snap.AppliedStudent)
	assert.Empty(t, snap.PendingStudent)
	assert.False(t, snap.CanExpand)
}

func TestApplyFiltersDiscardsSubmissionStates(t *testing.T) {
	doc := &stubDocGateway{id: "DOC-123"}
	svc, _ := newTestService(t, doc, &stubEmailGateway{}, nil)
	narrowToR1(t, svc)

	_, err := svc.SubmitProtocol(context.Background(), "R-1", validInput())
	require.NoError(t, err)
	require.Equal(t, submission.StatusDocumentReady, svc.RequestState("R-1").Status)

	svc.ApplyFilters()
	assert.Equal(t, submission.StatusIdle, svc.RequestState("R-1").Status)
}
