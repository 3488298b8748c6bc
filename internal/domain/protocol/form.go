package protocol

// Input is the raw meeting-protocol form as submitted by the reviewer. Counter
// fields arrive as strings so validation can distinguish empty, non-numeric and
// non-integer input.
type Input struct {
	ProtocolNumber       string `json:"protocol_number"`
	QuestionNumber       string `json:"question_number"`
	ActualMemberNumber   string `json:"actual_member_number"`
	ExpectedMemberNumber string `json:"expected_member_number"`
	VotesFor             string `json:"votes_for"`
	VotesAgainst         string `json:"votes_against"`
	VotesAbstained       string `json:"votes_abstained"`
	AgendaQuestion       string `json:"agenda_question"`
	MeetingProgress      string `json:"meeting_progress"`
	MeetingSolution      string `json:"meeting_solution"`
}

// Form is a validated meeting protocol, produced by Validate. It is discarded
// on successful email dispatch or when the detail view is collapsed.
type Form struct {
	ProtocolNumber       int    `json:"protocol_number"`
	QuestionNumber       int    `json:"question_number"`
	ActualMemberNumber   int    `json:"actual_member_number"`
	ExpectedMemberNumber int    `json:"expected_member_number"`
	VotesFor             int    `json:"votes_for"`
	VotesAgainst         int    `json:"votes_against"`
	VotesAbstained       int    `json:"votes_abstained"`
	AgendaQuestion       string `json:"agenda_question"`
	MeetingProgress      string `json:"meeting_progress"`
	MeetingSolution      string `json:"meeting_solution"`
}
