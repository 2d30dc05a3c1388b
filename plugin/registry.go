package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/steward/account"
	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/role"
)

// Named entry types pair a hook with the plugin name for logging.

type accountCreatedEntry struct {
	name string
	hook AccountCreated
}
type accountUpdatedEntry struct {
	name string
	hook AccountUpdated
}
type accountSuspendedEntry struct {
	name string
	hook AccountSuspended
}
type accountReactivatedEntry struct {
	name string
	hook AccountReactivated
}
type accountDeletedEntry struct {
	name string
	hook AccountDeleted
}
type roleCreatedEntry struct {
	name string
	hook RoleCreated
}
type roleUpdatedEntry struct {
	name string
	hook RoleUpdated
}
type roleDeletedEntry struct {
	name string
	hook RoleDeleted
}
type permissionCreatedEntry struct {
	name string
	hook PermissionCreated
}
type permissionDeletedEntry struct {
	name string
	hook PermissionDeleted
}
type policyCreatedEntry struct {
	name string
	hook PolicyCreated
}
type policyUpdatedEntry struct {
	name string
	hook PolicyUpdated
}
type policyDeletedEntry struct {
	name string
	hook PolicyDeleted
}
type roleAssignedEntry struct {
	name string
	hook RoleAssigned
}
type roleRevokedEntry struct {
	name string
	hook RoleRevoked
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	accountCreated     []accountCreatedEntry
	accountUpdated     []accountUpdatedEntry
	accountSuspended   []accountSuspendedEntry
	accountReactivated []accountReactivatedEntry
	accountDeleted     []accountDeletedEntry
	roleCreated        []roleCreatedEntry
	roleUpdated        []roleUpdatedEntry
	roleDeleted        []roleDeletedEntry
	permissionCreated  []permissionCreatedEntry
	permissionDeleted  []permissionDeletedEntry
	policyCreated      []policyCreatedEntry
	policyUpdated      []policyUpdatedEntry
	policyDeleted      []policyDeletedEntry
	roleAssigned       []roleAssignedEntry
	roleRevoked        []roleRevokedEntry
	shutdown           []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(AccountCreated); ok {
		r.accountCreated = append(r.accountCreated, accountCreatedEntry{name, h})
	}
	if h, ok := p.(AccountUpdated); ok {
		r.accountUpdated = append(r.accountUpdated, accountUpdatedEntry{name, h})
	}
	if h, ok := p.(AccountSuspended); ok {
		r.accountSuspended = append(r.accountSuspended, accountSuspendedEntry{name, h})
	}
	if h, ok := p.(AccountReactivated); ok {
		r.accountReactivated = append(r.accountReactivated, accountReactivatedEntry{name, h})
	}
	if h, ok := p.(AccountDeleted); ok {
		r.accountDeleted = append(r.accountDeleted, accountDeletedEntry{name, h})
	}
	if h, ok := p.(RoleCreated); ok {
		r.roleCreated = append(r.roleCreated, roleCreatedEntry{name, h})
	}
	if h, ok := p.(RoleUpdated); ok {
		r.roleUpdated = append(r.roleUpdated, roleUpdatedEntry{name, h})
	}
	if h, ok := p.(RoleDeleted); ok {
		r.roleDeleted = append(r.roleDeleted, roleDeletedEntry{name, h})
	}
	if h, ok := p.(PermissionCreated); ok {
		r.permissionCreated = append(r.permissionCreated, permissionCreatedEntry{name, h})
	}
	if h, ok := p.(PermissionDeleted); ok {
		r.permissionDeleted = append(r.permissionDeleted, permissionDeletedEntry{name, h})
	}
	if h, ok := p.(PolicyCreated); ok {
		r.policyCreated = append(r.policyCreated, policyCreatedEntry{name, h})
	}
	if h, ok := p.(PolicyUpdated); ok {
		r.policyUpdated = append(r.policyUpdated, policyUpdatedEntry{name, h})
	}
	if h, ok := p.(PolicyDeleted); ok {
		r.policyDeleted = append(r.policyDeleted, policyDeletedEntry{name, h})
	}
	if h, ok := p.(RoleAssigned); ok {
		r.roleAssigned = append(r.roleAssigned, roleAssignedEntry{name, h})
	}
	if h, ok := p.(RoleRevoked); ok {
		r.roleRevoked = append(r.roleRevoked, roleRevokedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Account event emitters
// ──────────────────────────────────────────────────

// EmitAccountCreated notifies all plugins that implement AccountCreated.
func (r *Registry) EmitAccountCreated(ctx context.Context, a *account.Account) {
	for _, e := range r.accountCreated {
		if err := e.hook.OnAccountCreated(ctx, a); err != nil {
			r.logHookError("OnAccountCreated", e.name, err)
		}
	}
}

// EmitAccountUpdated notifies all plugins that implement AccountUpdated.
func (r *Registry) EmitAccountUpdated(ctx context.Context, a *account.Account) {
	for _, e := range r.accountUpdated {
		if err := e.hook.OnAccountUpdated(ctx, a); err != nil {
			r.logHookError("OnAccountUpdated", e.name, err)
		}
	}
}

// EmitAccountSuspended notifies all plugins that implement AccountSuspended.
func (r *Registry) EmitAccountSuspended(ctx context.Context, a *account.Account) {
	for _, e := range r.accountSuspended {
		if err := e.hook.OnAccountSuspended(ctx, a); err != nil {
			r.logHookError("OnAccountSuspended", e.name, err)
		}
	}
}

// EmitAccountReactivated notifies all plugins that implement AccountReactivated.
func (r *Registry) EmitAccountReactivated(ctx context.Context, a *account.Account) {
	for _, e := range r.accountReactivated {
		if err := e.hook.OnAccountReactivated(ctx, a); err != nil {
			r.logHookError("OnAccountReactivated", e.name, err)
		}
	}
}

// EmitAccountDeleted notifies all plugins that implement AccountDeleted.
func (r *Registry) EmitAccountDeleted(ctx context.Context, accountID id.AccountID) {
	for _, e := range r.accountDeleted {
		if err := e.hook.OnAccountDeleted(ctx, accountID); err != nil {
			r.logHookError("OnAccountDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Role event emitters
// ──────────────────────────────────────────────────

// EmitRoleCreated notifies all plugins that implement RoleCreated.
func (r *Registry) EmitRoleCreated(ctx context.Context, rl *role.Role) {
	for _, e := range r.roleCreated {
		if err := e.hook.OnRoleCreated(ctx, rl); err != nil {
			r.logHookError("OnRoleCreated", e.name, err)
		}
	}
}

// EmitRoleUpdated notifies all plugins that implement RoleUpdated.
func (r *Registry) EmitRoleUpdated(ctx context.Context, rl *role.Role) {
	for _, e := range r.roleUpdated {
		if err := e.hook.OnRoleUpdated(ctx, rl); err != nil {
			r.logHookError("OnRoleUpdated", e.name, err)
		}
	}
}

// EmitRoleDeleted notifies all plugins that implement RoleDeleted.
func (r *Registry) EmitRoleDeleted(ctx context.Context, roleID id.RoleID) {
	for _, e := range r.roleDeleted {
		if err := e.hook.OnRoleDeleted(ctx, roleID); err != nil {
			r.logHookError("OnRoleDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Permission event emitters
// ──────────────────────────────────────────────────

// EmitPermissionCreated notifies all plugins that implement PermissionCreated.
func (r *Registry) EmitPermissionCreated(ctx context.Context, p *permission.Permission) {
	for _, e := range r.permissionCreated {
		if err := e.hook.OnPermissionCreated(ctx, p); err != nil {
			r.logHookError("OnPermissionCreated", e.name, err)
		}
	}
}

// EmitPermissionDeleted notifies all plugins that implement PermissionDeleted.
func (r *Registry) EmitPermissionDeleted(ctx context.Context, permID id.PermissionID) {
	for _, e := range r.permissionDeleted {
		if err := e.hook.OnPermissionDeleted(ctx, permID); err != nil {
			r.logHookError("OnPermissionDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Policy event emitters
// ──────────────────────────────────────────────────

// EmitPolicyCreated notifies all plugins that implement PolicyCreated.
func (r *Registry) EmitPolicyCreated(ctx context.Context, p *policy.Policy) {
	for _, e := range r.policyCreated {
		if err := e.hook.OnPolicyCreated(ctx, p); err != nil {
			r.logHookError("OnPolicyCreated", e.name, err)
		}
	}
}

// EmitPolicyUpdated notifies all plugins that implement PolicyUpdated.
func (r *Registry) EmitPolicyUpdated(ctx context.Context, p *policy.Policy) {
	for _, e := range r.policyUpdated {
		if err := e.hook.OnPolicyUpdated(ctx, p); err != nil {
			r.logHookError("OnPolicyUpdated", e.name, err)
		}
	}
}

// EmitPolicyDeleted notifies all plugins that implement PolicyDeleted.
func (r *Registry) EmitPolicyDeleted(ctx context.Context, polID id.PolicyID) {
	for _, e := range r.policyDeleted {
		if err := e.hook.OnPolicyDeleted(ctx, polID); err != nil {
			r.logHookError("OnPolicyDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Assignment event emitters
// ──────────────────────────────────────────────────

// EmitRoleAssigned notifies all plugins that implement RoleAssigned.
func (r *Registry) EmitRoleAssigned(ctx context.Context, a *assignment.Assignment) {
	for _, e := range r.roleAssigned {
		if err := e.hook.OnRoleAssigned(ctx, a); err != nil {
			r.logHookError("OnRoleAssigned", e.name, err)
		}
	}
}

// EmitRoleRevoked notifies all plugins that implement RoleRevoked.
func (r *Registry) EmitRoleRevoked(ctx context.Context, a *assignment.Assignment) {
	for _, e := range r.roleRevoked {
		if err := e.hook.OnRoleRevoked(ctx, a); err != nil {
			r.logHookError("OnRoleRevoked", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
