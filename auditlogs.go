package steward

import (
	"context"
	"time"

	"github.com/xraph/steward/auditlog"
	"github.com/xraph/steward/id"
)

// GetAuditLog retrieves a single audit entry by ID.
func (e *Engine) GetAuditLog(ctx context.Context, logID id.AuditLogID) (*auditlog.Entry, error) {
	entry, err := e.store.GetAuditLog(ctx, logID)
	if err != nil {
		return nil, e.storeErr(ctx, "get audit log", err)
	}
	return entry, nil
}

// ListAuditLogs returns audit entries matching the filter, newest first.
func (e *Engine) ListAuditLogs(ctx context.Context, filter *auditlog.QueryFilter) ([]*auditlog.Entry, error) {
	if filter == nil {
		filter = &auditlog.QueryFilter{}
	}
	entries, err := e.store.ListAuditLogs(ctx, filter)
	if err != nil {
		return nil, e.storeErr(ctx, "list audit logs", err)
	}
	return entries, nil
}

// CountAuditLogs returns the number of entries matching the filter.
func (e *Engine) CountAuditLogs(ctx context.Context, filter *auditlog.QueryFilter) (int64, error) {
	if filter == nil {
		filter = &auditlog.QueryFilter{}
	}
	n, err := e.store.CountAuditLogs(ctx, filter)
	if err != nil {
		return 0, e.storeErr(ctx, "count audit logs", err)
	}
	return n, nil
}

// PurgeAuditLogs removes entries older than the given time and returns how
// many were removed. This is the one operation that physically erases rows.
func (e *Engine) PurgeAuditLogs(ctx context.Context, before time.Time) (int64, error) {
	n, err := e.store.PurgeAuditLogs(ctx, before)
	if err != nil {
		return 0, e.storeErr(ctx, "purge audit logs", err)
	}
	return n, nil
}
