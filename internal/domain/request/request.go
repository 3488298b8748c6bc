package request

import (
	"strings"
	"time"
)

// Status of a request in the source-of-record.
type Status string

const (
	StatusNew  Status = "NEW"
	StatusSent Status = "SENT"
)

// Record is one student inquiry as loaded from the source-of-record.
// Records are immutable; RequestID uniquely identifies a record within one load.
type Record struct {
	FullName  string
	RequestID string
	Contacts  string // raw "phone; email" segment list
	Question  string
	Status    Status
	Category  string
	Date      string // source format "DD.MM.YYYY, HH:MM:SS"
}

// Contacts holds the phone/email segments extracted from a raw contacts string.
// Either field may be empty.
type Contacts struct {
	Phone string
	Email string
}

// ParseContacts splits a raw contacts string on ';', trims each part and
// classifies it: parts containing '@' are emails, everything else is a phone.
// When several parts fall into the same class the last one wins.
func ParseContacts(raw string) Contacts {
	var c Contacts
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "@") {
			c.Email = part
		} else {
			c.Phone = part
		}
	}
	return c
}

// sourceDateLayout is the timestamp format used by the source-of-record.
const sourceDateLayout = "02.01.2006, 15:04:05"

// FormatDate renders a source timestamp as a short human-readable date,
// e.g. "Jan 2, 2026". Malformed input renders as the empty string.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := time.Parse(sourceDateLayout, raw)
	if err != nil {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
