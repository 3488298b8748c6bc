package triage

import (
	"sort"

	"student_request_triage/internal/domain/request"
)

// All is the sentinel filter value meaning "no narrowing".
const All = "all"

// Selection carries the cascading student/question filter state. Pending values
// track what the reviewer has picked in the controls; applied values govern the
// visible result set and only change on Apply.
type Selection struct {
	PendingStudent  string
	PendingQuestion string
	AppliedStudent  string
	AppliedQuestion string
}

// SetStudent updates the pending student. Changing the student invalidates the
// question scope, so the pending question is reset to unset.
func (s *Selection) SetStudent(student string) {
	s.PendingStudent = student
	s.PendingQuestion = ""
}

// SetQuestion updates the pending question. It is a no-op while no concrete
// student has been picked: questions are scoped to a student, so a question may
// never be applied under an unset or All student.
func (s *Selection) SetQuestion(question string) {
	if s.PendingStudent == "" || s.PendingStudent == All {
		return
	}
	s.PendingQuestion = question
}

// Apply copies the pending selection into the applied selection. Applying twice
// with unchanged pending state yields an identical applied state.
func (s *Selection) Apply() {
	s.AppliedStudent = s.PendingStudent
	s.AppliedQuestion = s.PendingQuestion
}

// Reset clears both pending and applied selections to unset.
func (s *Selection) Reset() {
	*s = Selection{}
}

// StudentOptions returns the distinct non-empty student names across all
// records, lexicographically sorted.
func StudentOptions(records []request.Record) []string {
	seen := make(map[string]struct{})
	options := make([]string, 0)
	for _, r := range records {
		if r.FullName == "" {
			continue
		}
		if _, ok := seen[r.FullName]; ok {
			continue
		}
		seen[r.FullName] = struct{}{}
		options = append(options, r.FullName)
	}
	sort.Strings(options)
	return options
}

// QuestionOptions returns the distinct non-empty questions among records of the
// given student, in first-seen order. When student is unset or All the result
// is empty: the question filter has no scope without a concrete student.
func QuestionOptions(records []request.Record, student string) []string {
	if student == "" || student == All {
		return nil
	}
	seen := make(map[string]struct{})
	options := make([]string, 0)
	for _, r := range records {
		if r.FullName != student || r.Question == "" {
			continue
		}
		if _, ok := seen[r.Question]; ok {
			continue
		}
		seen[r.Question] = struct{}{}
		options = append(options, r.Question)
	}
	return options
}

// Filtered returns the records matching both applied values exactly. An unset
// or All value on either side yields an empty set: the result view only shows
// anything once the filter pair narrows to concrete values.
func Filtered(records []request.Record, student, question string) []request.Record {
	if student == "" || student == All || question == "" || question == All {
		return nil
	}
	matched := make([]request.Record, 0)
	for _, r := range records {
		if r.FullName == student && r.Question == question {
			matched = append(matched, r)
		}
	}
	return matched
}
