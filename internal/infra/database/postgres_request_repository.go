package database

import (
	"context"
	"database/sql"
	"fmt"

	"student_request_triage/internal/domain/request"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrRequestNotFound = fmt.Errorf("student request not found")

// PostgresRequestRepository reads and updates student requests in the
// 'student_requests' table, the service's source-of-record.
type PostgresRequestRepository struct {
	db *sql.DB
}

func NewPostgresRequestRepository(db *sql.DB) *PostgresRequestRepository {
	return &PostgresRequestRepository{db: db}
}

// List returns the full current request list, newest first. RequestID is
// unique within one load (enforced by the table's unique constraint).
func (r *PostgresRequestRepository) List(ctx context.Context) ([]request.Record, error) {
	query := `SELECT request_id, full_name, contacts, question, status, category, request_date
               FROM student_requests ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing student requests: %w", err)
	}
	defer rows.Close()

	records := make([]request.Record, 0)
	for rows.Next() {
		var rec request.Record
		if err := rows.Scan(&rec.RequestID, &rec.FullName, &rec.Contacts, &rec.Question, &rec.Status, &rec.Category, &rec.Date); err != nil {
			return nil, fmt.Errorf("error scanning student request: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student requests: %w", err)
	}
	return records, nil
}

func (r *PostgresRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*request.Record, error) {
	query := `SELECT request_id, full_name, contacts, question, status, category, request_date
               FROM student_requests WHERE request_id = $1`
	rec := &request.Record{}
	err := r.db.QueryRowContext(ctx, query, requestID).Scan(&rec.RequestID, &rec.FullName, &rec.Contacts, &rec.Question, &rec.Status, &rec.Category, &rec.Date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("error getting student request by request ID: %w", err)
	}
	return rec, nil
}

func (r *PostgresRequestRepository) UpdateStatus(ctx context.Context, requestID string, status request.Status) error {
	query := `UPDATE student_requests SET status = $1, updated_at = NOW() WHERE request_id = $2`

	result, err := r.db.ExecContext(ctx, query, status, requestID)
	if err != nil {
		return fmt.Errorf("error updating student request status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking affected rows for status update: %w", err)
	}
	if affected == 0 {
		return ErrRequestNotFound
	}
	return nil
}
