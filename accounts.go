package steward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xraph/steward/account"
	"github.com/xraph/steward/auditlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/provision"
	"github.com/xraph/steward/store"
)

// CreateAccountInput is the input to CreateAccount. When Role is nil the
// default role, if one exists, is assigned instead.
type CreateAccountInput struct {
	Email string       `json:"email"`
	Name  string       `json:"name,omitempty"`
	Type  account.Type `json:"type,omitempty"`
	Role  *id.RoleID   `json:"role,omitempty"`
}

// UpdateAccountInput is the input to UpdateAccount. Nil fields are left
// unchanged. A non-nil Role replaces the account's assignments wholesale:
// every current assignment is revoked, then the one given role is
// assigned. Pointing Role at id.Nil revokes everything and assigns
// nothing.
type UpdateAccountInput struct {
	Email *string    `json:"email,omitempty"`
	Name  *string    `json:"name,omitempty"`
	Role  *id.RoleID `json:"role,omitempty"`
}

// CreateAccount creates an administrator account.
//
// Email uniqueness among live accounts is checked first, then the external
// identity is provisioned, and only then is the local row persisted. The
// initial role assignment is best-effort: its failure is logged and never
// rolls back the account.
func (e *Engine) CreateAccount(ctx context.Context, actor Actor, in *CreateAccountInput) (*account.Account, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrBadRequest)
	}
	typ := in.Type
	if typ == "" {
		typ = account.TypeAdmin
	}
	if !account.ValidType(typ) {
		return nil, fmt.Errorf("%w: invalid account type %q", ErrBadRequest, in.Type)
	}

	if _, err := e.store.GetAccountByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: account %q already exists", ErrConflict, email)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, e.internalErr(ctx, "create account", err)
	}

	var externalSubjectID string
	if e.provisioner != nil {
		pctx, cancel := context.WithTimeout(ctx, e.config.ProvisionTimeout)
		ident, err := e.provisioner.CreateIdentity(pctx, email)
		cancel()
		if err != nil {
			return nil, e.provisionErr(ctx, "create account", err)
		}
		externalSubjectID = ident.ExternalSubjectID
	}

	now := time.Now().UTC()
	a := &account.Account{
		ID:                id.NewAccountID(),
		Email:             email,
		Name:              in.Name,
		ExternalSubjectID: externalSubjectID,
		Type:              typ,
		Status:            account.StatusActive,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := e.store.CreateAccount(ctx, a); err != nil {
		return nil, e.storeErr(ctx, "create account", err)
	}

	e.assignInitialRole(ctx, actor, a, in.Role)

	if e.plugins != nil {
		e.plugins.EmitAccountCreated(ctx, a)
	}
	e.audit(ctx, &auditlog.Entry{
		ActorID:    actor.ID.String(),
		Action:     auditlog.ActionAccountCreated,
		TargetType: "account",
		TargetID:   a.ID.String(),
		Detail:     email,
	})
	return a, nil
}

// assignInitialRole assigns the requested role, or the default role when
// none was requested. Failures are logged, never surfaced.
func (e *Engine) assignInitialRole(ctx context.Context, actor Actor, a *account.Account, roleID *id.RoleID) {
	target := roleID
	if target == nil {
		def, err := e.store.GetDefaultRole(ctx)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				e.logger.ErrorContext(ctx, "steward: default role lookup failed",
					slog.String("account_id", a.ID.String()),
					slog.Any("error", err),
				)
			}
			return
		}
		target = &def.ID
	}
	if target.IsNil() {
		return
	}

	if _, err := e.AssignRole(ctx, &AssignRoleInput{
		UserID:     a.ID,
		RoleID:     *target,
		AssignedBy: actor.ID.String(),
	}); err != nil {
		e.logger.ErrorContext(ctx, "steward: initial role assignment failed",
			slog.String("account_id", a.ID.String()),
			slog.String("role_id", target.String()),
			slog.Any("error", err),
		)
	}
}

// GetAccount retrieves an account by ID.
func (e *Engine) GetAccount(ctx context.Context, acctID id.AccountID) (*account.Account, error) {
	a, err := e.store.GetAccount(ctx, acctID)
	if err != nil {
		return nil, e.storeErr(ctx, "get account", err)
	}
	return a, nil
}

// GetAccountByEmail retrieves a live account by email.
func (e *Engine) GetAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	a, err := e.store.GetAccountByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, e.storeErr(ctx, "get account by email", err)
	}
	return a, nil
}

// ListAccounts returns accounts matching the filter.
func (e *Engine) ListAccounts(ctx context.Context, filter *account.ListFilter) ([]*account.Account, error) {
	if filter == nil {
		filter = &account.ListFilter{}
	}
	accounts, err := e.store.ListAccounts(ctx, filter)
	if err != nil {
		return nil, e.storeErr(ctx, "list accounts", err)
	}
	return accounts, nil
}

// CountAccounts returns the number of accounts matching the filter.
func (e *Engine) CountAccounts(ctx context.Context, filter *account.ListFilter) (int64, error) {
	if filter == nil {
		filter = &account.ListFilter{}
	}
	n, err := e.store.CountAccounts(ctx, filter)
	if err != nil {
		return 0, e.storeErr(ctx, "count accounts", err)
	}
	return n, nil
}

// UpdateAccount applies a partial field update. No state-machine guard
// applies here; only suspend and reactivate enforce actor rules.
func (e *Engine) UpdateAccount(ctx context.Context, actor Actor, acctID id.AccountID, in *UpdateAccountInput) (*account.Account, error) {
	a, err := e.store.GetAccount(ctx, acctID)
	if err != nil {
		return nil, e.storeErr(ctx, "update account", err)
	}
	if a.Deleted() {
		return nil, fmt.Errorf("update account: %w", ErrNotFound)
	}

	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: a valid email is required", ErrBadRequest)
		}
		if email != a.Email {
			if existing, err := e.store.GetAccountByEmail(ctx, email); err == nil && existing.ID.String() != a.ID.String() {
				return nil, fmt.Errorf("%w: account %q already exists", ErrConflict, email)
			} else if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, e.internalErr(ctx, "update account", err)
			}
			a.Email = email
		}
	}
	if in.Name != nil {
		a.Name = *in.Name
	}
	a.UpdatedAt = time.Now().UTC()

	if err := e.store.UpdateAccount(ctx, a); err != nil {
		if errors.Is(err, store.ErrStaleVersion) {
			return nil, fmt.Errorf("update account: %w", ErrConflict)
		}
		return nil, e.storeErr(ctx, "update account", err)
	}

	if in.Role != nil {
		e.replaceRoles(ctx, actor, a.ID, *in.Role)
	}

	if e.plugins != nil {
		e.plugins.EmitAccountUpdated(ctx, a)
	}
	e.audit(ctx, &auditlog.Entry{
		ActorID:    actor.ID.String(),
		Action:     auditlog.ActionAccountUpdated,
		TargetType: "account",
		TargetID:   a.ID.String(),
	})
	return a, nil
}

// replaceRoles revokes every assignment for the account, then assigns the
// one given role. A nil role ID stops after the revoke. Failures are
// logged, never surfaced: the field update already committed.
func (e *Engine) replaceRoles(ctx context.Context, actor Actor, acctID id.AccountID, roleID id.RoleID) {
	if _, err := e.RevokeAllRoles(ctx, acctID, actor.ID.String()); err != nil {
		e.logger.ErrorContext(ctx, "steward: role replacement revoke failed",
			slog.String("account_id", acctID.String()),
			slog.Any("error", err),
		)
		return
	}
	if roleID.IsNil() {
		return
	}
	if _, err := e.AssignRole(ctx, &AssignRoleInput{
		UserID:     acctID,
		RoleID:     roleID,
		AssignedBy: actor.ID.String(),
	}); err != nil {
		e.logger.ErrorContext(ctx, "steward: role replacement assign failed",
			slog.String("account_id", acctID.String()),
			slog.String("role_id", roleID.String()),
			slog.Any("error", err),
		)
	}
}

// SuspendAccount transitions the target to suspended. Guard order:
// self-suspension, target existence, target already suspended, and an
// admin actor may never suspend a super_admin.
func (e *Engine) SuspendAccount(ctx context.Context, actor Actor, targetID id.AccountID) (*account.Account, error) {
	return e.transition(ctx, actor, targetID, account.StatusSuspended)
}

// ReactivateAccount transitions the target back to active, with the same
// guard shape as SuspendAccount inverted.
func (e *Engine) ReactivateAccount(ctx context.Context, actor Actor, targetID id.AccountID) (*account.Account, error) {
	return e.transition(ctx, actor, targetID, account.StatusActive)
}

// transition runs the suspend/reactivate state machine. A write that loses
// the optimistic-version race re-reads the target and re-runs the guards,
// so exactly one of two concurrent transitions wins and the loser observes
// the winner's state.
func (e *Engine) transition(ctx context.Context, actor Actor, targetID id.AccountID, next account.Status) (*account.Account, error) {
	if actor.ID.String() == targetID.String() {
		return nil, fmt.Errorf("%w: cannot change own account status", ErrForbidden)
	}

	var target *account.Account
	for attempt := 0; attempt < e.config.LifecycleRetries; attempt++ {
		var err error
		target, err = e.store.GetAccount(ctx, targetID)
		if err != nil {
			return nil, e.storeErr(ctx, "transition account", err)
		}
		if target.Deleted() {
			return nil, fmt.Errorf("transition account: %w", ErrNotFound)
		}
		if target.Status == next {
			return nil, fmt.Errorf("%w: account is already %s", ErrBadRequest, next)
		}
		if !actor.IsSuperAdmin() && target.Type == account.TypeSuperAdmin {
			return nil, fmt.Errorf("%w: insufficient permissions", ErrForbidden)
		}

		target.Status = next
		target.UpdatedAt = time.Now().UTC()
		err = e.store.UpdateAccount(ctx, target)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrStaleVersion) {
			if attempt == e.config.LifecycleRetries-1 {
				return nil, fmt.Errorf("transition account: %w", ErrConflict)
			}
			continue
		}
		return nil, e.storeErr(ctx, "transition account", err)
	}

	action := auditlog.ActionAccountSuspended
	if next == account.StatusActive {
		action = auditlog.ActionAccountReactivated
	}
	if e.plugins != nil {
		if next == account.StatusSuspended {
			e.plugins.EmitAccountSuspended(ctx, target)
		} else {
			e.plugins.EmitAccountReactivated(ctx, target)
		}
	}
	e.audit(ctx, &auditlog.Entry{
		ActorID:    actor.ID.String(),
		Action:     action,
		TargetType: "account",
		TargetID:   target.ID.String(),
	})
	return target, nil
}

// DeleteAccount soft-deletes the target and cascade-revokes its role
// assignments. The same actor guards as suspension apply. Deleting an
// already-deleted account is a no-op.
func (e *Engine) DeleteAccount(ctx context.Context, actor Actor, targetID id.AccountID) error {
	if actor.ID.String() == targetID.String() {
		return fmt.Errorf("%w: cannot delete own account", ErrForbidden)
	}

	target, err := e.store.GetAccount(ctx, targetID)
	if err != nil {
		return e.storeErr(ctx, "delete account", err)
	}
	if target.Deleted() {
		return nil
	}
	if !actor.IsSuperAdmin() && target.Type == account.TypeSuperAdmin {
		return fmt.Errorf("%w: insufficient permissions", ErrForbidden)
	}

	now := time.Now().UTC()
	target.DeletedAt = &now
	target.UpdatedAt = now
	if err := e.store.UpdateAccount(ctx, target); err != nil {
		if errors.Is(err, store.ErrStaleVersion) {
			return fmt.Errorf("delete account: %w", ErrConflict)
		}
		return e.storeErr(ctx, "delete account", err)
	}

	if _, err := e.RevokeAllRoles(ctx, targetID, actor.ID.String()); err != nil {
		e.logger.ErrorContext(ctx, "steward: cascade revoke failed",
			slog.String("account_id", targetID.String()),
			slog.Any("error", err),
		)
	}

	if e.plugins != nil {
		e.plugins.EmitAccountDeleted(ctx, targetID)
	}
	e.audit(ctx, &auditlog.Entry{
		ActorID:    actor.ID.String(),
		Action:     auditlog.ActionAccountDeleted,
		TargetType: "account",
		TargetID:   targetID.String(),
	})
	return nil
}

// RestoreAccount clears the soft-delete marker. Fails with ErrConflict if
// a live account has since claimed the same email.
func (e *Engine) RestoreAccount(ctx context.Context, actor Actor, targetID id.AccountID) (*account.Account, error) {
	target, err := e.store.GetAccount(ctx, targetID)
	if err != nil {
		return nil, e.storeErr(ctx, "restore account", err)
	}
	if !target.Deleted() {
		return target, nil
	}

	if existing, err := e.store.GetAccountByEmail(ctx, target.Email); err == nil && existing.ID.String() != target.ID.String() {
		return nil, fmt.Errorf("%w: account %q already exists", ErrConflict, target.Email)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, e.internalErr(ctx, "restore account", err)
	}

	target.DeletedAt = nil
	target.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateAccount(ctx, target); err != nil {
		if errors.Is(err, store.ErrStaleVersion) {
			return nil, fmt.Errorf("restore account: %w", ErrConflict)
		}
		return nil, e.storeErr(ctx, "restore account", err)
	}

	e.audit(ctx, &auditlog.Entry{
		ActorID:    actor.ID.String(),
		Action:     auditlog.ActionAccountRestored,
		TargetType: "account",
		TargetID:   target.ID.String(),
	})
	return target, nil
}

// SendPasswordReset asks the provisioning collaborator to dispatch a
// password-reset link to the account's email.
func (e *Engine) SendPasswordReset(ctx context.Context, email string) error {
	if e.provisioner == nil {
		return fmt.Errorf("%w: no provisioner configured", ErrServiceUnavailable)
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := e.store.GetAccountByEmail(ctx, email); err != nil {
		return e.storeErr(ctx, "send password reset", err)
	}

	pctx, cancel := context.WithTimeout(ctx, e.config.ProvisionTimeout)
	defer cancel()
	if err := e.provisioner.SendPasswordReset(pctx, email); err != nil {
		return e.provisionErr(ctx, "send password reset", err)
	}
	return nil
}

// provisionErr translates a collaborator failure into the caller-facing
// taxonomy. Unreachability and timeouts surface as ErrServiceUnavailable;
// HTTP statuses map onto the matching taxonomy entry; anything else keeps
// the collaborator's message under ErrInternal.
func (e *Engine) provisionErr(ctx context.Context, op string, err error) error {
	if errors.Is(err, provision.ErrUnreachable) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrServiceUnavailable)
	}

	var apiErr *provision.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case 409:
			return fmt.Errorf("%w: %s", ErrConflict, apiErr.Message)
		case 400:
			return fmt.Errorf("%w: %s", ErrBadRequest, apiErr.Message)
		case 404:
			return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
		}
		e.logger.ErrorContext(ctx, "steward: provisioning failed",
			slog.String("op", op),
			slog.Int("status", apiErr.Status),
			slog.String("message", apiErr.Message),
		)
		if apiErr.Message != "" {
			return fmt.Errorf("%w: %s", ErrInternal, apiErr.Message)
		}
		return fmt.Errorf("%w: %s failed", ErrInternal, op)
	}

	return e.internalErr(ctx, op, err)
}
