package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/steward/auditlog"
)

func (a *API) registerAuditLogRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("audit"))

	return g.GET("/audit-logs", a.listAuditLogs,
		forge.WithSummary("Query audit logs"),
		forge.WithDescription("Queries the audit trail with optional filters."),
		forge.WithOperationID("listAuditLogs"),
		forge.WithRequestSchema(ListAuditLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Audit log entries", []*auditlog.Entry{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listAuditLogs(ctx forge.Context, req *ListAuditLogsRequest) ([]*auditlog.Entry, error) {
	filter := &auditlog.QueryFilter{
		ActorID:    req.ActorID,
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Limit:      defaultLimit(req.Limit),
		Offset:     req.Offset,
	}
	if req.After != "" {
		ts, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid after: %v", err))
		}
		filter.After = &ts
	}
	if req.Before != "" {
		ts, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid before: %v", err))
		}
		filter.Before = &ts
	}

	entries, err := a.eng.ListAuditLogs(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return entries, ctx.JSON(http.StatusOK, entries)
}
