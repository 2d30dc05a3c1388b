package auditlog

import (
	"context"
	"time"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for the audit trail.
type Store interface {
	// CreateAuditLog persists a new audit entry.
	CreateAuditLog(ctx context.Context, e *Entry) error

	// GetAuditLog retrieves an audit entry by ID.
	GetAuditLog(ctx context.Context, logID id.AuditLogID) (*Entry, error)

	// ListAuditLogs returns audit entries matching the filter, newest first.
	ListAuditLogs(ctx context.Context, filter *QueryFilter) ([]*Entry, error)

	// CountAuditLogs returns the number of entries matching the filter.
	CountAuditLogs(ctx context.Context, filter *QueryFilter) (int64, error)

	// PurgeAuditLogs removes audit entries older than the given time.
	PurgeAuditLogs(ctx context.Context, before time.Time) (int64, error)
}
