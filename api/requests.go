package api

// ──────────────────────────────────────────────────
// Account requests
// ──────────────────────────────────────────────────

// CreateAccountRequest is the body for creating an administrative account.
type CreateAccountRequest struct {
	Email  string `json:"email" description:"Login email address"`
	Name   string `json:"name,omitempty" description:"Display name"`
	Type   string `json:"type,omitempty" description:"Account type (admin or super_admin)"`
	RoleID string `json:"role_id,omitempty" description:"Initial role ID (falls back to the default role)"`
}

// UpdateAccountRequest is the body for updating an account.
type UpdateAccountRequest struct {
	Email  string  `json:"email,omitempty" description:"Login email address"`
	Name   string  `json:"name,omitempty" description:"Display name"`
	RoleID *string `json:"role_id,omitempty" description:"Replacement role ID (empty string revokes all roles)"`
}

// GetAccountRequest is the path parameter for getting an account.
type GetAccountRequest struct {
	AccountID string `path:"accountId" description:"Account ID"`
}

// ListAccountsRequest holds query parameters for listing accounts.
type ListAccountsRequest struct {
	Type           string `query:"type" description:"Filter by account type"`
	Status         string `query:"status" description:"Filter by lifecycle status"`
	Search         string `query:"search" description:"Search by email or name"`
	IncludeDeleted bool   `query:"include_deleted" description:"Include soft-deleted accounts"`
	Limit          int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset         int    `query:"offset" description:"Results to skip"`
}

// PasswordResetRequest is the body for dispatching a password reset.
type PasswordResetRequest struct {
	Email string `json:"email" description:"Account email address"`
}

// ──────────────────────────────────────────────────
// Permission requests
// ──────────────────────────────────────────────────

// CreatePermissionRequest is the body for creating a permission.
type CreatePermissionRequest struct {
	Resource    string `json:"resource" description:"Protected resource (e.g. user)"`
	Action      string `json:"action" description:"Capability verb (create, read, update, delete, manage)"`
	Name        string `json:"name,omitempty" description:"Display name (defaults to the identifier)"`
	Description string `json:"description,omitempty" description:"Human-readable description"`
}

// UpdatePermissionRequest is the body for updating a permission.
// Resource and action are immutable; the identifier never changes.
type UpdatePermissionRequest struct {
	Name        *string `json:"name,omitempty" description:"Display name"`
	Description *string `json:"description,omitempty" description:"Description"`
	IsActive    *bool   `json:"is_active,omitempty" description:"Active flag"`
}

// GetPermissionRequest is the path parameter for getting a permission.
type GetPermissionRequest struct {
	PermissionID string `path:"permissionId" description:"Permission ID"`
}

// ListPermissionsRequest holds query parameters.
type ListPermissionsRequest struct {
	Resource       string `query:"resource" description:"Filter by resource"`
	Action         string `query:"action" description:"Filter by action"`
	Search         string `query:"search" description:"Search by name"`
	IncludeDeleted bool   `query:"include_deleted" description:"Include soft-deleted permissions"`
	Limit          int    `query:"limit" description:"Maximum results"`
	Offset         int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Policy requests
// ──────────────────────────────────────────────────

// CreatePolicyRequest is the body for creating a policy.
type CreatePolicyRequest struct {
	Identifier  string   `json:"identifier" description:"Unique policy identifier"`
	Name        string   `json:"name" description:"Policy name"`
	Description string   `json:"description,omitempty" description:"Human-readable description"`
	Permissions []string `json:"permissions,omitempty" description:"Permission IDs or identifiers to bundle"`
	Priority    int      `json:"priority,omitempty" description:"Ordering weight (0-100)"`
	Category    string   `json:"category,omitempty" description:"Policy category (user, admin, moderator, custom)"`
	IsSystem    bool     `json:"is_system,omitempty" description:"System policy flag"`
}

// UpdatePolicyRequest is the body for updating a policy.
type UpdatePolicyRequest struct {
	Name        *string   `json:"name,omitempty" description:"Policy name"`
	Description *string   `json:"description,omitempty" description:"Description"`
	Permissions *[]string `json:"permissions,omitempty" description:"Replacement permission set"`
	Priority    *int      `json:"priority,omitempty" description:"Ordering weight"`
	Category    *string   `json:"category,omitempty" description:"Policy category"`
	IsActive    *bool     `json:"is_active,omitempty" description:"Active flag"`
}

// GetPolicyRequest is the path parameter for getting a policy.
type GetPolicyRequest struct {
	PolicyID string `path:"policyId" description:"Policy ID"`
}

// ListPoliciesRequest holds query parameters.
type ListPoliciesRequest struct {
	Category       string `query:"category" description:"Filter by category"`
	Search         string `query:"search" description:"Search by name"`
	IncludeDeleted bool   `query:"include_deleted" description:"Include soft-deleted policies"`
	Limit          int    `query:"limit" description:"Maximum results"`
	Offset         int    `query:"offset" description:"Results to skip"`
}

// AttachPermissionRequest is the body for attaching a permission to a policy.
type AttachPermissionRequest struct {
	Permission string `json:"permission" description:"Permission ID or identifier"`
}

// ──────────────────────────────────────────────────
// Role requests
// ──────────────────────────────────────────────────

// CreateRoleRequest is the body for creating a role.
type CreateRoleRequest struct {
	Identifier  string   `json:"identifier" description:"Unique role identifier"`
	Name        string   `json:"name" description:"Role name"`
	Description string   `json:"description,omitempty" description:"Human-readable description"`
	Policies    []string `json:"policies,omitempty" description:"Policy IDs or identifiers to attach"`
	Level       int      `json:"level,omitempty" description:"Privilege level (0-100)"`
	IsSystem    bool     `json:"is_system,omitempty" description:"System role flag"`
	IsDefault   bool     `json:"is_default,omitempty" description:"Default role flag"`
}

// UpdateRoleRequest is the body for updating a role.
type UpdateRoleRequest struct {
	Name        *string   `json:"name,omitempty" description:"Role name"`
	Description *string   `json:"description,omitempty" description:"Description"`
	Policies    *[]string `json:"policies,omitempty" description:"Replacement policy set"`
	Level       *int      `json:"level,omitempty" description:"Privilege level"`
	IsActive    *bool     `json:"is_active,omitempty" description:"Active flag"`
}

// GetRoleRequest is the path parameter for getting a role.
type GetRoleRequest struct {
	RoleID string `path:"roleId" description:"Role ID"`
}

// ListRolesRequest holds query parameters for listing roles.
type ListRolesRequest struct {
	Search         string `query:"search" description:"Search by name"`
	IncludeDeleted bool   `query:"include_deleted" description:"Include soft-deleted roles"`
	Limit          int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset         int    `query:"offset" description:"Results to skip"`
}

// AttachPolicyRequest is the body for attaching a policy to a role.
type AttachPolicyRequest struct {
	Policy string `json:"policy" description:"Policy ID or identifier"`
}

// ──────────────────────────────────────────────────
// Assignment requests
// ──────────────────────────────────────────────────

// AssignRoleRequest is the body for assigning a role to an identity.
type AssignRoleRequest struct {
	UserID    string `json:"user_id" description:"Identity to grant the role to"`
	RoleID    string `json:"role_id" description:"Role ID to assign"`
	ExpiresAt string `json:"expires_at,omitempty" description:"Expiration time (RFC3339)"`
	Reason    string `json:"reason,omitempty" description:"Grant reason"`
}

// RevokeRoleRequest is the body for revoking a role from an identity.
type RevokeRoleRequest struct {
	UserID string `json:"user_id" description:"Identity to revoke the role from"`
	RoleID string `json:"role_id" description:"Role ID to revoke"`
}

// ExtendAssignmentRequest is the body for extending an assignment's expiry.
type ExtendAssignmentRequest struct {
	UserID string `json:"user_id" description:"Identity holding the role"`
	RoleID string `json:"role_id" description:"Assigned role ID"`
	Days   int    `json:"days" description:"Days to extend by"`
}

// GetAssignmentRequest is the path parameter for getting an assignment.
type GetAssignmentRequest struct {
	AssignmentID string `path:"assignmentId" description:"Assignment ID"`
}

// ListAssignmentsRequest holds query parameters.
type ListAssignmentsRequest struct {
	UserID         string `query:"user_id" description:"Filter by identity"`
	RoleID         string `query:"role_id" description:"Filter by role ID"`
	IncludeDeleted bool   `query:"include_deleted" description:"Include revoked assignments"`
	Limit          int    `query:"limit" description:"Maximum results"`
	Offset         int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Resolution requests
// ──────────────────────────────────────────────────

// ResolveIdentityRequest is the path parameter for capability resolution.
type ResolveIdentityRequest struct {
	UserID string `path:"userId" description:"Identity to resolve"`
}

// CheckPermissionRequest is the body for a permission check.
type CheckPermissionRequest struct {
	UserID     string `json:"user_id" description:"Identity to check"`
	Permission string `json:"permission" description:"Permission identifier (resource:action)"`
}

// CheckRoleRequest is the body for a role gate check.
type CheckRoleRequest struct {
	UserID string `json:"user_id" description:"Identity to check"`
	RoleID string `json:"role_id" description:"Role ID to check"`
}

// ──────────────────────────────────────────────────
// Audit log requests
// ──────────────────────────────────────────────────

// ListAuditLogsRequest holds query parameters for querying the audit trail.
type ListAuditLogsRequest struct {
	ActorID    string `query:"actor_id" description:"Filter by acting identity"`
	Action     string `query:"action" description:"Filter by action"`
	TargetType string `query:"target_type" description:"Filter by target type"`
	TargetID   string `query:"target_id" description:"Filter by target ID"`
	After      string `query:"after" description:"After timestamp (RFC3339)"`
	Before     string `query:"before" description:"Before timestamp (RFC3339)"`
	Limit      int    `query:"limit" description:"Maximum results"`
	Offset     int    `query:"offset" description:"Results to skip"`
}
