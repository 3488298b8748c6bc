package triage

import "student_request_triage/internal/domain/request"

// Expansion enforces the single-expansion invariant: at most one request's
// detail view may be open, and only while the applied filters identify exactly
// one record.
type Expansion struct {
	expandedID string
}

// CanExpand reports whether expansion is allowed for the given filtered set.
func CanExpand(filtered []request.Record) bool {
	return len(filtered) == 1
}

// Toggle flips the expansion for requestID between open and closed. It is a
// no-op unless the filtered set holds exactly one record and requestID matches
// it. Returns whether the toggle took effect.
func (e *Expansion) Toggle(requestID string, filtered []request.Record) bool {
	if !CanExpand(filtered) || filtered[0].RequestID != requestID {
		return false
	}
	if e.expandedID == requestID {
		e.expandedID = ""
	} else {
		e.expandedID = requestID
	}
	return true
}

// Collapse closes any open detail view. Called on every successful filter
// apply: a change of filters invalidates the open card.
func (e *Expansion) Collapse() {
	e.expandedID = ""
}

// ExpandedID returns the currently expanded request ID, or "" when none.
func (e *Expansion) ExpandedID() string {
	return e.expandedID
}
