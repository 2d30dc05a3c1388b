package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/policy"
)

func (a *API) registerPolicyRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("policies"))

	if err := g.POST("/policies", a.createPolicy,
		forge.WithSummary("Create policy"),
		forge.WithDescription("Creates a policy bundling a set of permissions."),
		forge.WithOperationID("createPolicy"),
		forge.WithRequestSchema(CreatePolicyRequest{}),
		forge.WithCreatedResponse(&policy.Policy{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/policies/:policyId", a.getPolicy,
		forge.WithSummary("Get policy"),
		forge.WithOperationID("getPolicy"),
		forge.WithResponseSchema(http.StatusOK, "Policy details", &policy.Policy{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/policies/:policyId/permissions", a.getPolicyPermissions,
		forge.WithSummary("Get policy permissions"),
		forge.WithDescription("Returns the live permissions bundled by a policy."),
		forge.WithOperationID("getPolicyPermissions"),
		forge.WithResponseSchema(http.StatusOK, "Bundled permissions", []*permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/policies/:policyId", a.updatePolicy,
		forge.WithSummary("Update policy"),
		forge.WithOperationID("updatePolicy"),
		forge.WithRequestSchema(UpdatePolicyRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated policy", &policy.Policy{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/policies/:policyId", a.deletePolicy,
		forge.WithSummary("Delete policy"),
		forge.WithOperationID("deletePolicy"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/policies/:policyId/restore", a.restorePolicy,
		forge.WithSummary("Restore policy"),
		forge.WithOperationID("restorePolicy"),
		forge.WithResponseSchema(http.StatusOK, "Restored policy", &policy.Policy{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/policies", a.listPolicies,
		forge.WithSummary("List policies"),
		forge.WithOperationID("listPolicies"),
		forge.WithRequestSchema(ListPoliciesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Policy list", []*policy.Policy{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/policies/:policyId/permissions", a.attachPermissionToPolicy,
		forge.WithSummary("Attach permission to policy"),
		forge.WithOperationID("attachPermissionToPolicy"),
		forge.WithRequestSchema(AttachPermissionRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated policy", &policy.Policy{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/policies/:policyId/permissions/:permissionId", a.detachPermissionFromPolicy,
		forge.WithSummary("Detach permission from policy"),
		forge.WithOperationID("detachPermissionFromPolicy"),
		forge.WithResponseSchema(http.StatusOK, "Updated policy", &policy.Policy{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createPolicy(ctx forge.Context, req *CreatePolicyRequest) (*policy.Policy, error) {
	pol, err := a.eng.CreatePolicy(ctx.Context(), &steward.CreatePolicyInput{
		Identifier:  req.Identifier,
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		Priority:    req.Priority,
		Category:    policy.Category(req.Category),
		IsSystem:    req.IsSystem,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return pol, ctx.JSON(http.StatusCreated, pol)
}

func (a *API) getPolicy(ctx forge.Context, _ *GetPolicyRequest) (*policy.Policy, error) {
	polID, err := id.ParsePolicyID(ctx.Param("policyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
	}

	pol, err := a.eng.GetPolicy(ctx.Context(), polID)
	if err != nil {
		return nil, mapError(err)
	}

	return pol, ctx.JSON(http.StatusOK, pol)
}

func (a *API) getPolicyPermissions(ctx forge.Context, _ *GetPolicyRequest) ([]*permission.Permission, error) {
	polID, err := id.ParsePolicyID(ctx.Param("policyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
	}

	perms, err := a.eng.GetPolicyPermissions(ctx.Context(), polID)
	if err != nil {
		return nil, mapError(err)
	}

	return perms, ctx.JSON(http.StatusOK, perms)
}

func (a *API) updatePolicy(ctx forge.Context, req *UpdatePolicyRequest) (*policy.Policy, error) {
	polID, err := id.ParsePolicyID(ctx.Param("policyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
	}

	in := &steward.UpdatePolicyInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		Priority:    req.Priority,
		IsActive:    req.IsActive,
	}
	if req.Category != nil {
		cat := policy.Category(*req.Category)
		in.Category = &cat
	}

	pol, err := a.eng.UpdatePolicy(ctx.Context(), polID, in)
	if err != nil {
		return nil, mapError(err)
	}

	return pol, ctx.JSON(http.StatusOK, pol)
}

func (a *API) deletePolicy(ctx forge.Context, _ *GetPolicyRequest) (*struct{}, error) {
	polID, err := id.ParsePolicyID(ctx.Param("policyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
	}

	if err := a.eng.DeletePolicy(ctx.Context(), polID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) restorePolicy(ctx forge.Context, _ *GetPolicyRequest) (*policy.Policy, error) {
	polID, err := id.ParsePolicyID(ctx.Param("policyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
	}

	pol, err := a.eng.RestorePolicy(ctx.Context(), polID)
	if err != nil {
		return nil, mapError(err)
	}

	return pol, ctx.JSON(http.StatusOK, pol)
}

func (a *API) listPolicies(ctx forge.Context, req *ListPoliciesRequest) ([]*policy.Policy, error) {
	filter := &policy.ListFilter{
		Category:       policy.Category(req.Category),
		Search:         req.Search,
		IncludeDeleted: req.IncludeDeleted,
		Limit:          defaultLimit(req.Limit),
		Offset:         req.Offset,
	}

	policies, err := a.eng.ListPolicies(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return policies, ctx.JSON(http.StatusOK, policies)
}

func (a *API) attachPermissionToPolicy(ctx forge.Context, req *AttachPermissionRequest) (*policy.Policy, error) {
	polID, err := id.ParsePolicyID(ctx.Param("policyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
	}
	if req.Permission == "" {
		return nil, forge.BadRequest("permission is required")
	}

	pol, err := a.eng.AddPermissionToPolicy(ctx.Context(), polID, req.Permission)
	if err != nil {
		return nil, mapError(err)
	}

	return pol, ctx.JSON(http.StatusOK, pol)
}

func (a *API) detachPermissionFromPolicy(ctx forge.Context, _ *struct{}) (*policy.Policy, error) {
	polID, err := id.ParsePolicyID(ctx.Param("policyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
	}
	permID, err := id.ParsePermissionID(ctx.Param("permissionId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid permission ID: %v", err))
	}

	pol, err := a.eng.RemovePermissionFromPolicy(ctx.Context(), polID, permID)
	if err != nil {
		return nil, mapError(err)
	}

	return pol, ctx.JSON(http.StatusOK, pol)
}
