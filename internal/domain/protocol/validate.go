package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Validation error messages, one per rule.
const (
	msgEnterNumber = "enter a number"
	msgWholeNumber = "must be a whole number"
	msgPositive    = "must be positive"
	msgEmptyField  = "field cannot be empty"
)

// Minimum lengths for the free-text fields.
const (
	minAgendaQuestionLen  = 3
	minMeetingProgressLen = 5
	minMeetingSolutionLen = 5
)

// FieldErrors maps a form field name to its validation message. It is returned
// to the caller as-is so each control can render its own error.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for name := range fe {
		fields = append(fields, name)
	}
	return fmt.Sprintf("validation failed for %d field(s): %s", len(fe), strings.Join(fields, ", "))
}

// Validate checks every field of the raw input and, when all rules pass,
// returns the typed form. On failure it returns a non-empty FieldErrors and a
// zero form; no partial submission is possible.
//
// Counter policy: the three vote counts permit zero (a unanimous vote has zero
// against and zero abstained), all remaining counters must be strictly
// positive.
func Validate(in Input) (Form, FieldErrors) {
	errs := make(FieldErrors)
	var form Form

	form.ProtocolNumber = validateCounter("protocol_number", in.ProtocolNumber, false, errs)
	form.QuestionNumber = validateCounter("question_number", in.QuestionNumber, false, errs)
	form.ActualMemberNumber = validateCounter("actual_member_number", in.ActualMemberNumber, false, errs)
	form.ExpectedMemberNumber = validateCounter("expected_member_number", in.ExpectedMemberNumber, false, errs)
	form.VotesFor = validateCounter("votes_for", in.VotesFor, true, errs)
	form.VotesAgainst = validateCounter("votes_against", in.VotesAgainst, true, errs)
	form.VotesAbstained = validateCounter("votes_abstained", in.VotesAbstained, true, errs)

	form.AgendaQuestion = validateText("agenda_question", in.AgendaQuestion, minAgendaQuestionLen, errs)
	form.MeetingProgress = validateText("meeting_progress", in.MeetingProgress, minMeetingProgressLen, errs)
	form.MeetingSolution = validateText("meeting_solution", in.MeetingSolution, minMeetingSolutionLen, errs)

	if len(errs) > 0 {
		return Form{}, errs
	}
	return form, nil
}

// validateCounter parses one numeric field. allowZero selects the vote-count
// policy (>= 0) over the default strictly-positive one.
func validateCounter(name, raw string, allowZero bool, errs FieldErrors) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		errs[name] = msgEnterNumber
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		if _, ferr := strconv.ParseFloat(raw, 64); ferr == nil {
			errs[name] = msgWholeNumber
		} else {
			errs[name] = msgEnterNumber
		}
		return 0
	}
	if value < 0 || (value == 0 && !allowZero) {
		errs[name] = msgPositive
		return 0
	}
	return value
}

func validateText(name, raw string, minLen int, errs FieldErrors) string {
	if raw == "" {
		errs[name] = msgEmptyField
		return ""
	}
	if len([]rune(raw)) < minLen {
		errs[name] = fmt.Sprintf("must contain at least %d characters", minLen)
		return ""
	}
	return raw
}
