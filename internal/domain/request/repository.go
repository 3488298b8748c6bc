package request

import "context"

// Repository defines the read-mostly operations the triage core needs from the
// source-of-record. The list is treated as refreshable: callers re-List after a
// dispatch completes so updated statuses are reflected on next load.
type Repository interface {
	List(ctx context.Context) ([]Record, error)
	GetByRequestID(ctx context.Context, requestID string) (*Record, error)
	UpdateStatus(ctx context.Context, requestID string, status Status) error
}
