// Package plugin defines the plugin system for Steward.
// Plugins are notified of lifecycle events (account suspended, role
// assigned, policy updated, etc.) and can react — logging, metrics,
// syncing to downstream systems, etc.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/steward/account"
	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/role"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Account lifecycle hooks
// ──────────────────────────────────────────────────

// AccountCreated is called after an administrative account is created.
type AccountCreated interface {
	OnAccountCreated(ctx context.Context, a *account.Account) error
}

// AccountUpdated is called after an administrative account is updated.
type AccountUpdated interface {
	OnAccountUpdated(ctx context.Context, a *account.Account) error
}

// AccountSuspended is called after an administrative account is suspended.
type AccountSuspended interface {
	OnAccountSuspended(ctx context.Context, a *account.Account) error
}

// AccountReactivated is called after a suspended account is reactivated.
type AccountReactivated interface {
	OnAccountReactivated(ctx context.Context, a *account.Account) error
}

// AccountDeleted is called after an administrative account is soft-deleted.
type AccountDeleted interface {
	OnAccountDeleted(ctx context.Context, accountID id.AccountID) error
}

// ──────────────────────────────────────────────────
// Role lifecycle hooks
// ──────────────────────────────────────────────────

// RoleCreated is called after a role is created.
type RoleCreated interface {
	OnRoleCreated(ctx context.Context, r *role.Role) error
}

// RoleUpdated is called after a role is updated.
type RoleUpdated interface {
	OnRoleUpdated(ctx context.Context, r *role.Role) error
}

// RoleDeleted is called after a role is deleted.
type RoleDeleted interface {
	OnRoleDeleted(ctx context.Context, roleID id.RoleID) error
}

// ──────────────────────────────────────────────────
// Permission lifecycle hooks
// ──────────────────────────────────────────────────

// PermissionCreated is called after a permission is created.
type PermissionCreated interface {
	OnPermissionCreated(ctx context.Context, p *permission.Permission) error
}

// PermissionDeleted is called after a permission is deleted.
type PermissionDeleted interface {
	OnPermissionDeleted(ctx context.Context, permID id.PermissionID) error
}

// ──────────────────────────────────────────────────
// Policy lifecycle hooks
// ──────────────────────────────────────────────────

// PolicyCreated is called after a policy is created.
type PolicyCreated interface {
	OnPolicyCreated(ctx context.Context, p *policy.Policy) error
}

// PolicyUpdated is called after a policy is updated.
type PolicyUpdated interface {
	OnPolicyUpdated(ctx context.Context, p *policy.Policy) error
}

// PolicyDeleted is called after a policy is deleted.
type PolicyDeleted interface {
	OnPolicyDeleted(ctx context.Context, polID id.PolicyID) error
}

// ──────────────────────────────────────────────────
// Assignment lifecycle hooks
// ──────────────────────────────────────────────────

// RoleAssigned is called after a role is assigned to an account.
type RoleAssigned interface {
	OnRoleAssigned(ctx context.Context, a *assignment.Assignment) error
}

// RoleRevoked is called after a role assignment is revoked.
type RoleRevoked interface {
	OnRoleRevoked(ctx context.Context, a *assignment.Assignment) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
