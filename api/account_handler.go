package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/account"
	"github.com/xraph/steward/id"
)

func (a *API) registerAccountRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("accounts"))

	if err := g.POST("/accounts", a.createAccount,
		forge.WithSummary("Create account"),
		forge.WithDescription("Creates an administrative account and provisions its login identity."),
		forge.WithOperationID("createAccount"),
		forge.WithRequestSchema(CreateAccountRequest{}),
		forge.WithCreatedResponse(&account.Account{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/accounts/:accountId", a.getAccount,
		forge.WithSummary("Get account"),
		forge.WithDescription("Returns details of a specific account."),
		forge.WithOperationID("getAccount"),
		forge.WithResponseSchema(http.StatusOK, "Account details", &account.Account{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/accounts/:accountId", a.updateAccount,
		forge.WithSummary("Update account"),
		forge.WithDescription("Updates account fields and optionally replaces the account's role."),
		forge.WithOperationID("updateAccount"),
		forge.WithRequestSchema(UpdateAccountRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated account", &account.Account{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/accounts/:accountId", a.deleteAccount,
		forge.WithSummary("Delete account"),
		forge.WithDescription("Soft-deletes an account and revokes its role assignments."),
		forge.WithOperationID("deleteAccount"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/accounts", a.listAccounts,
		forge.WithSummary("List accounts"),
		forge.WithDescription("Lists accounts with optional filters."),
		forge.WithOperationID("listAccounts"),
		forge.WithRequestSchema(ListAccountsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Account list", []*account.Account{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/accounts/:accountId/suspend", a.suspendAccount,
		forge.WithSummary("Suspend account"),
		forge.WithDescription("Suspends an active account."),
		forge.WithOperationID("suspendAccount"),
		forge.WithResponseSchema(http.StatusOK, "Suspended account", &account.Account{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/accounts/:accountId/reactivate", a.reactivateAccount,
		forge.WithSummary("Reactivate account"),
		forge.WithDescription("Reactivates a suspended account."),
		forge.WithOperationID("reactivateAccount"),
		forge.WithResponseSchema(http.StatusOK, "Reactivated account", &account.Account{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/accounts/:accountId/restore", a.restoreAccount,
		forge.WithSummary("Restore account"),
		forge.WithDescription("Restores a soft-deleted account."),
		forge.WithOperationID("restoreAccount"),
		forge.WithResponseSchema(http.StatusOK, "Restored account", &account.Account{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/password-resets", a.sendPasswordReset,
		forge.WithSummary("Send password reset"),
		forge.WithDescription("Dispatches a password reset through the identity provisioner."),
		forge.WithOperationID("sendPasswordReset"),
		forge.WithRequestSchema(PasswordResetRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) createAccount(ctx forge.Context, req *CreateAccountRequest) (*account.Account, error) {
	actor, err := a.actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	in := &steward.CreateAccountInput{
		Email: req.Email,
		Name:  req.Name,
		Type:  account.Type(req.Type),
	}
	if req.RoleID != "" {
		roleID, err := id.ParseRoleID(req.RoleID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid role_id: %v", err))
		}
		in.Role = &roleID
	}

	acct, err := a.eng.CreateAccount(ctx.Context(), actor, in)
	if err != nil {
		return nil, mapError(err)
	}

	return acct, ctx.JSON(http.StatusCreated, acct)
}

func (a *API) getAccount(ctx forge.Context, _ *GetAccountRequest) (*account.Account, error) {
	acctID, err := id.ParseAccountID(ctx.Param("accountId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid account ID: %v", err))
	}

	acct, err := a.eng.GetAccount(ctx.Context(), acctID)
	if err != nil {
		return nil, mapError(err)
	}

	return acct, ctx.JSON(http.StatusOK, acct)
}

func (a *API) updateAccount(ctx forge.Context, req *UpdateAccountRequest) (*account.Account, error) {
	actor, err := a.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	acctID, err := id.ParseAccountID(ctx.Param("accountId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid account ID: %v", err))
	}

	in := &steward.UpdateAccountInput{}
	if req.Email != "" {
		in.Email = &req.Email
	}
	if req.Name != "" {
		in.Name = &req.Name
	}
	if req.RoleID != nil {
		roleID := id.Nil
		if *req.RoleID != "" {
			roleID, err = id.ParseRoleID(*req.RoleID)
			if err != nil {
				return nil, forge.BadRequest(fmt.Sprintf("invalid role_id: %v", err))
			}
		}
		in.Role = &roleID
	}

	acct, err := a.eng.UpdateAccount(ctx.Context(), actor, acctID, in)
	if err != nil {
		return nil, mapError(err)
	}

	return acct, ctx.JSON(http.StatusOK, acct)
}

func (a *API) deleteAccount(ctx forge.Context, _ *GetAccountRequest) (*struct{}, error) {
	actor, err := a.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	acctID, err := id.ParseAccountID(ctx.Param("accountId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid account ID: %v", err))
	}

	if err := a.eng.DeleteAccount(ctx.Context(), actor, acctID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listAccounts(ctx forge.Context, req *ListAccountsRequest) ([]*account.Account, error) {
	filter := &account.ListFilter{
		Type:           account.Type(req.Type),
		Status:         account.Status(req.Status),
		Search:         req.Search,
		IncludeDeleted: req.IncludeDeleted,
		Limit:          defaultLimit(req.Limit),
		Offset:         req.Offset,
	}

	accounts, err := a.eng.ListAccounts(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return accounts, ctx.JSON(http.StatusOK, accounts)
}

func (a *API) suspendAccount(ctx forge.Context, _ *GetAccountRequest) (*account.Account, error) {
	return a.lifecycle(ctx, a.eng.SuspendAccount)
}

func (a *API) reactivateAccount(ctx forge.Context, _ *GetAccountRequest) (*account.Account, error) {
	return a.lifecycle(ctx, a.eng.ReactivateAccount)
}

func (a *API) restoreAccount(ctx forge.Context, _ *GetAccountRequest) (*account.Account, error) {
	return a.lifecycle(ctx, a.eng.RestoreAccount)
}

// lifecycle factors the shared actor/target plumbing of the state
// transition endpoints.
func (a *API) lifecycle(
	ctx forge.Context,
	op func(ctx context.Context, actor steward.Actor, target id.AccountID) (*account.Account, error),
) (*account.Account, error) {
	actor, err := a.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	acctID, err := id.ParseAccountID(ctx.Param("accountId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid account ID: %v", err))
	}

	acct, err := op(ctx.Context(), actor, acctID)
	if err != nil {
		return nil, mapError(err)
	}

	return acct, ctx.JSON(http.StatusOK, acct)
}

func (a *API) sendPasswordReset(ctx forge.Context, req *PasswordResetRequest) (*struct{}, error) {
	if req.Email == "" {
		return nil, forge.BadRequest("email is required")
	}

	if err := a.eng.SendPasswordReset(ctx.Context(), req.Email); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}
