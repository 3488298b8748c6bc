package database

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates the tables the service needs.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Student requests mirrored from the intake form
CREATE TABLE IF NOT EXISTS student_requests (
    id SERIAL PRIMARY KEY,
    request_id TEXT NOT NULL UNIQUE,
    full_name TEXT NOT NULL DEFAULT '',
    contacts TEXT NOT NULL DEFAULT '',
    question TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'NEW' CHECK (status IN ('NEW', 'SENT')),
    category TEXT NOT NULL DEFAULT '',
    request_date TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_student_requests_full_name ON student_requests(full_name);
CREATE INDEX IF NOT EXISTS idx_student_requests_status ON student_requests(status);
`
