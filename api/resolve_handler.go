package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
)

func (a *API) registerResolveRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("resolution"))

	if err := g.GET("/identities/:userId/roles", a.getEffectiveRoles,
		forge.WithSummary("Get effective roles"),
		forge.WithDescription("Resolves the full capability graph for an identity."),
		forge.WithOperationID("getEffectiveRoles"),
		forge.WithResponseSchema(http.StatusOK, "Effective roles", []*steward.EffectiveRole{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/identities/:userId/permissions", a.getEffectivePermissions,
		forge.WithSummary("Get effective permissions"),
		forge.WithDescription("Returns the deduplicated union of the identity's granted permissions."),
		forge.WithOperationID("getEffectivePermissions"),
		forge.WithResponseSchema(http.StatusOK, "Effective permissions", []*permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/check/permission", a.checkPermission,
		forge.WithSummary("Check permission"),
		forge.WithDescription("Reports whether an identity holds a permission identifier."),
		forge.WithOperationID("checkPermission"),
		forge.WithRequestSchema(CheckPermissionRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", &CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/check/role", a.checkRole,
		forge.WithSummary("Check role"),
		forge.WithDescription("Reports whether an identity holds a role."),
		forge.WithOperationID("checkRole"),
		forge.WithRequestSchema(CheckRoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", &CheckResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) getEffectiveRoles(ctx forge.Context, _ *ResolveIdentityRequest) ([]*steward.EffectiveRole, error) {
	userID, err := id.ParseAccountID(ctx.Param("userId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user ID: %v", err))
	}

	roles, err := a.eng.GetEffectiveRoles(ctx.Context(), userID)
	if err != nil {
		return nil, mapError(err)
	}

	return roles, ctx.JSON(http.StatusOK, roles)
}

func (a *API) getEffectivePermissions(ctx forge.Context, _ *ResolveIdentityRequest) ([]*permission.Permission, error) {
	userID, err := id.ParseAccountID(ctx.Param("userId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user ID: %v", err))
	}

	perms, err := a.eng.EffectivePermissions(ctx.Context(), userID)
	if err != nil {
		return nil, mapError(err)
	}

	return perms, ctx.JSON(http.StatusOK, perms)
}

func (a *API) checkPermission(ctx forge.Context, req *CheckPermissionRequest) (*CheckResponse, error) {
	userID, err := id.ParseAccountID(req.UserID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user_id: %v", err))
	}
	if req.Permission == "" {
		return nil, forge.BadRequest("permission is required")
	}

	held, err := a.eng.HasPermission(ctx.Context(), userID, req.Permission)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &CheckResponse{Allowed: held}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) checkRole(ctx forge.Context, req *CheckRoleRequest) (*CheckResponse, error) {
	userID, err := id.ParseAccountID(req.UserID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user_id: %v", err))
	}
	roleID, err := id.ParseRoleID(req.RoleID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role_id: %v", err))
	}

	held, err := a.eng.HasRole(ctx.Context(), userID, roleID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &CheckResponse{Allowed: held}
	return resp, ctx.JSON(http.StatusOK, resp)
}
