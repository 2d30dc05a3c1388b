package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/id"
)

func (a *API) registerAssignmentRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("assignments"))

	if err := g.POST("/assignments", a.assignRole,
		forge.WithSummary("Assign role"),
		forge.WithDescription("Grants a role to an identity. Re-assigning an effective role is a no-op."),
		forge.WithOperationID("assignRole"),
		forge.WithRequestSchema(AssignRoleRequest{}),
		forge.WithCreatedResponse(&assignment.Assignment{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/assignments/revoke", a.revokeRole,
		forge.WithSummary("Revoke role"),
		forge.WithDescription("Revokes a role from an identity. Revoking an absent grant is not an error."),
		forge.WithOperationID("revokeRole"),
		forge.WithRequestSchema(RevokeRoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Revoked assignment", &assignment.Assignment{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/assignments/extend", a.extendAssignment,
		forge.WithSummary("Extend assignment"),
		forge.WithDescription("Pushes an assignment's expiry out by a number of days."),
		forge.WithOperationID("extendAssignment"),
		forge.WithRequestSchema(ExtendAssignmentRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Extended assignment", &assignment.Assignment{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/assignments/:assignmentId", a.getAssignment,
		forge.WithSummary("Get assignment"),
		forge.WithOperationID("getAssignment"),
		forge.WithResponseSchema(http.StatusOK, "Assignment details", &assignment.Assignment{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/assignments", a.listAssignments,
		forge.WithSummary("List assignments"),
		forge.WithOperationID("listAssignments"),
		forge.WithRequestSchema(ListAssignmentsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Assignment list", []*assignment.Assignment{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/identities/:userId/roles", a.revokeAllRoles,
		forge.WithSummary("Revoke all roles"),
		forge.WithDescription("Revokes every effective assignment held by an identity."),
		forge.WithOperationID("revokeAllRoles"),
		forge.WithResponseSchema(http.StatusOK, "Revocation count", &RevokeAllResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/roles/:roleId/identities", a.getIdentitiesWithRole,
		forge.WithSummary("List role holders"),
		forge.WithDescription("Returns the identities that currently hold a role."),
		forge.WithOperationID("getIdentitiesWithRole"),
		forge.WithResponseSchema(http.StatusOK, "Identity IDs", []string{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) assignRole(ctx forge.Context, req *AssignRoleRequest) (*assignment.Assignment, error) {
	userID, err := id.ParseAccountID(req.UserID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user_id: %v", err))
	}
	roleID, err := id.ParseRoleID(req.RoleID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role_id: %v", err))
	}

	in := &steward.AssignRoleInput{
		UserID:     userID,
		RoleID:     roleID,
		AssignedBy: forge.UserIDFromContext(ctx.Context()),
		Reason:     req.Reason,
	}
	if req.ExpiresAt != "" {
		expiry, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid expires_at: %v", err))
		}
		in.ExpiresAt = &expiry
	}

	asgn, err := a.eng.AssignRole(ctx.Context(), in)
	if err != nil {
		return nil, mapError(err)
	}

	return asgn, ctx.JSON(http.StatusCreated, asgn)
}

func (a *API) revokeRole(ctx forge.Context, req *RevokeRoleRequest) (*assignment.Assignment, error) {
	userID, err := id.ParseAccountID(req.UserID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user_id: %v", err))
	}
	roleID, err := id.ParseRoleID(req.RoleID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role_id: %v", err))
	}

	asgn, err := a.eng.RevokeRole(ctx.Context(), &steward.RevokeRoleInput{
		UserID:    userID,
		RoleID:    roleID,
		RevokedBy: forge.UserIDFromContext(ctx.Context()),
	})
	if err != nil {
		return nil, mapError(err)
	}

	return asgn, ctx.JSON(http.StatusOK, asgn)
}

func (a *API) extendAssignment(ctx forge.Context, req *ExtendAssignmentRequest) (*assignment.Assignment, error) {
	userID, err := id.ParseAccountID(req.UserID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user_id: %v", err))
	}
	roleID, err := id.ParseRoleID(req.RoleID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role_id: %v", err))
	}

	asgn, err := a.eng.ExtendAssignment(ctx.Context(), userID, roleID, req.Days)
	if err != nil {
		return nil, mapError(err)
	}

	return asgn, ctx.JSON(http.StatusOK, asgn)
}

func (a *API) getAssignment(ctx forge.Context, _ *GetAssignmentRequest) (*assignment.Assignment, error) {
	assignID, err := id.ParseAssignmentID(ctx.Param("assignmentId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid assignment ID: %v", err))
	}

	asgn, err := a.eng.GetAssignment(ctx.Context(), assignID)
	if err != nil {
		return nil, mapError(err)
	}

	return asgn, ctx.JSON(http.StatusOK, asgn)
}

func (a *API) listAssignments(ctx forge.Context, req *ListAssignmentsRequest) ([]*assignment.Assignment, error) {
	filter := &assignment.ListFilter{
		IncludeDeleted: req.IncludeDeleted,
		Limit:          defaultLimit(req.Limit),
		Offset:         req.Offset,
	}
	if req.UserID != "" {
		userID, err := id.ParseAccountID(req.UserID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid user_id: %v", err))
		}
		filter.UserID = &userID
	}
	if req.RoleID != "" {
		roleID, err := id.ParseRoleID(req.RoleID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid role_id: %v", err))
		}
		filter.RoleID = &roleID
	}

	assignments, err := a.eng.ListAssignments(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return assignments, ctx.JSON(http.StatusOK, assignments)
}

func (a *API) revokeAllRoles(ctx forge.Context, _ *struct{}) (*RevokeAllResponse, error) {
	userID, err := id.ParseAccountID(ctx.Param("userId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user ID: %v", err))
	}

	n, err := a.eng.RevokeAllRoles(ctx.Context(), userID, forge.UserIDFromContext(ctx.Context()))
	if err != nil {
		return nil, mapError(err)
	}

	resp := &RevokeAllResponse{Revoked: n}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) getIdentitiesWithRole(ctx forge.Context, _ *GetRoleRequest) ([]string, error) {
	roleID, err := id.ParseRoleID(ctx.Param("roleId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role ID: %v", err))
	}

	ids, err := a.eng.GetIdentitiesWithRole(ctx.Context(), roleID)
	if err != nil {
		return nil, mapError(err)
	}

	out := make([]string, len(ids))
	for i, userID := range ids {
		out[i] = userID.String()
	}
	return out, ctx.JSON(http.StatusOK, out)
}
