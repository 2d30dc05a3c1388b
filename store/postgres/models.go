package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/steward/account"
	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/auditlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/role"
)

// ──────────────────────────────────────────────────
// Account model
// ──────────────────────────────────────────────────

type accountModel struct {
	grove.BaseModel   `grove:"table:steward_accounts"`
	ID                string     `grove:"id,pk"`
	Email             string     `grove:"email,notnull"`
	Name              string     `grove:"name"`
	ExternalSubjectID string     `grove:"external_subject_id"`
	Type              string     `grove:"type,notnull"`
	Status            string     `grove:"status,notnull"`
	Version           int        `grove:"version,notnull"`
	DeletedAt         *time.Time `grove:"deleted_at"`
	CreatedAt         time.Time  `grove:"created_at,notnull"`
	UpdatedAt         time.Time  `grove:"updated_at,notnull"`
}

func accountToModel(a *account.Account) *accountModel {
	return &accountModel{
		ID:                a.ID.String(),
		Email:             a.Email,
		Name:              a.Name,
		ExternalSubjectID: a.ExternalSubjectID,
		Type:              string(a.Type),
		Status:            string(a.Status),
		Version:           a.Version,
		DeletedAt:         a.DeletedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func accountFromModel(m *accountModel) *account.Account {
	aid, _ := id.ParseAccountID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &account.Account{
		ID:                aid,
		Email:             m.Email,
		Name:              m.Name,
		ExternalSubjectID: m.ExternalSubjectID,
		Type:              account.Type(m.Type),
		Status:            account.Status(m.Status),
		Version:           m.Version,
		DeletedAt:         m.DeletedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Permission model
// ──────────────────────────────────────────────────

type permissionModel struct {
	grove.BaseModel `grove:"table:steward_permissions"`
	ID              string     `grove:"id,pk"`
	Identifier      string     `grove:"identifier,notnull"`
	Resource        string     `grove:"resource,notnull"`
	Action          string     `grove:"action,notnull"`
	Name            string     `grove:"name,notnull"`
	Description     string     `grove:"description"`
	IsActive        bool       `grove:"is_active,notnull"`
	DeletedAt       *time.Time `grove:"deleted_at"`
	CreatedAt       time.Time  `grove:"created_at,notnull"`
	UpdatedAt       time.Time  `grove:"updated_at,notnull"`
}

func permissionToModel(p *permission.Permission) *permissionModel {
	return &permissionModel{
		ID:          p.ID.String(),
		Identifier:  p.Identifier,
		Resource:    p.Resource,
		Action:      string(p.Action),
		Name:        p.Name,
		Description: p.Description,
		IsActive:    p.IsActive,
		DeletedAt:   p.DeletedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func permissionFromModel(m *permissionModel) *permission.Permission {
	pid, _ := id.ParsePermissionID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &permission.Permission{
		ID:          pid,
		Identifier:  m.Identifier,
		Resource:    m.Resource,
		Action:      permission.Action(m.Action),
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		DeletedAt:   m.DeletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Policy model
// ──────────────────────────────────────────────────

type policyModel struct {
	grove.BaseModel `grove:"table:steward_policies"`
	ID              string     `grove:"id,pk"`
	Identifier      string     `grove:"identifier,notnull"`
	Name            string     `grove:"name,notnull"`
	Description     string     `grove:"description"`
	Priority        int        `grove:"priority,notnull"`
	Category        string     `grove:"category,notnull"`
	IsActive        bool       `grove:"is_active,notnull"`
	IsSystem        bool       `grove:"is_system,notnull"`
	DeletedAt       *time.Time `grove:"deleted_at"`
	CreatedAt       time.Time  `grove:"created_at,notnull"`
	UpdatedAt       time.Time  `grove:"updated_at,notnull"`
}

func policyToModel(p *policy.Policy) *policyModel {
	return &policyModel{
		ID:          p.ID.String(),
		Identifier:  p.Identifier,
		Name:        p.Name,
		Description: p.Description,
		Priority:    p.Priority,
		Category:    string(p.Category),
		IsActive:    p.IsActive,
		IsSystem:    p.IsSystem,
		DeletedAt:   p.DeletedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// policyFromModel converts the row; PermissionIDs are hydrated from the
// junction table by the caller.
func policyFromModel(m *policyModel) *policy.Policy {
	pid, _ := id.ParsePolicyID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &policy.Policy{
		ID:          pid,
		Identifier:  m.Identifier,
		Name:        m.Name,
		Description: m.Description,
		Priority:    m.Priority,
		Category:    policy.Category(m.Category),
		IsActive:    m.IsActive,
		IsSystem:    m.IsSystem,
		DeletedAt:   m.DeletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Policy-Permission junction model
// ──────────────────────────────────────────────────

type policyPermissionModel struct {
	grove.BaseModel `grove:"table:steward_policy_permissions"`
	PolicyID        string `grove:"policy_id,pk"`
	PermissionID    string `grove:"permission_id,pk"`
}

// ──────────────────────────────────────────────────
// Role model
// ──────────────────────────────────────────────────

type roleModel struct {
	grove.BaseModel `grove:"table:steward_roles"`
	ID              string     `grove:"id,pk"`
	Identifier      string     `grove:"identifier,notnull"`
	Name            string     `grove:"name,notnull"`
	Description     string     `grove:"description"`
	Level           int        `grove:"level,notnull"`
	IsActive        bool       `grove:"is_active,notnull"`
	IsSystem        bool       `grove:"is_system,notnull"`
	IsDefault       bool       `grove:"is_default,notnull"`
	DeletedAt       *time.Time `grove:"deleted_at"`
	CreatedAt       time.Time  `grove:"created_at,notnull"`
	UpdatedAt       time.Time  `grove:"updated_at,notnull"`
}

func roleToModel(r *role.Role) *roleModel {
	return &roleModel{
		ID:          r.ID.String(),
		Identifier:  r.Identifier,
		Name:        r.Name,
		Description: r.Description,
		Level:       r.Level,
		IsActive:    r.IsActive,
		IsSystem:    r.IsSystem,
		IsDefault:   r.IsDefault,
		DeletedAt:   r.DeletedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// roleFromModel converts the row; PolicyIDs are hydrated from the junction
// table by the caller.
func roleFromModel(m *roleModel) *role.Role {
	rid, _ := id.ParseRoleID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &role.Role{
		ID:          rid,
		Identifier:  m.Identifier,
		Name:        m.Name,
		Description: m.Description,
		Level:       m.Level,
		IsActive:    m.IsActive,
		IsSystem:    m.IsSystem,
		IsDefault:   m.IsDefault,
		DeletedAt:   m.DeletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Role-Policy junction model
// ──────────────────────────────────────────────────

type rolePolicyModel struct {
	grove.BaseModel `grove:"table:steward_role_policies"`
	RoleID          string `grove:"role_id,pk"`
	PolicyID        string `grove:"policy_id,pk"`
}

// ──────────────────────────────────────────────────
// Assignment model
// ──────────────────────────────────────────────────

type assignmentModel struct {
	grove.BaseModel `grove:"table:steward_assignments"`
	ID              string     `grove:"id,pk"`
	UserID          string     `grove:"user_id,notnull"`
	RoleID          string     `grove:"role_id,notnull"`
	IsActive        bool       `grove:"is_active,notnull"`
	AssignedBy      string     `grove:"assigned_by"`
	AssignedAt      time.Time  `grove:"assigned_at,notnull"`
	ExpiresAt       *time.Time `grove:"expires_at"`
	Reason          string     `grove:"reason"`
	RevokedBy       string     `grove:"revoked_by"`
	RevokedAt       *time.Time `grove:"revoked_at"`
	DeletedAt       *time.Time `grove:"deleted_at"`
	CreatedAt       time.Time  `grove:"created_at,notnull"`
}

func assignmentToModel(a *assignment.Assignment) *assignmentModel {
	return &assignmentModel{
		ID:         a.ID.String(),
		UserID:     a.UserID.String(),
		RoleID:     a.RoleID.String(),
		IsActive:   a.IsActive,
		AssignedBy: a.AssignedBy,
		AssignedAt: a.AssignedAt,
		ExpiresAt:  a.ExpiresAt,
		Reason:     a.Reason,
		RevokedBy:  a.RevokedBy,
		RevokedAt:  a.RevokedAt,
		DeletedAt:  a.DeletedAt,
		CreatedAt:  a.CreatedAt,
	}
}

func assignmentFromModel(m *assignmentModel) *assignment.Assignment {
	asgID, _ := id.ParseAssignmentID(m.ID) //nolint:errcheck // stored IDs are always valid
	uid, _ := id.ParseAccountID(m.UserID)  //nolint:errcheck // stored IDs are always valid
	rid, _ := id.ParseRoleID(m.RoleID)     //nolint:errcheck // stored IDs are always valid
	return &assignment.Assignment{
		ID:         asgID,
		UserID:     uid,
		RoleID:     rid,
		IsActive:   m.IsActive,
		AssignedBy: m.AssignedBy,
		AssignedAt: m.AssignedAt,
		ExpiresAt:  m.ExpiresAt,
		Reason:     m.Reason,
		RevokedBy:  m.RevokedBy,
		RevokedAt:  m.RevokedAt,
		DeletedAt:  m.DeletedAt,
		CreatedAt:  m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Audit log model
// ──────────────────────────────────────────────────

type auditLogModel struct {
	grove.BaseModel `grove:"table:steward_audit_logs"`
	ID              string         `grove:"id,pk"`
	ActorID         string         `grove:"actor_id"`
	Action          string         `grove:"action,notnull"`
	TargetType      string         `grove:"target_type,notnull"`
	TargetID        string         `grove:"target_id,notnull"`
	Detail          string         `grove:"detail"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
}

func auditLogToModel(e *auditlog.Entry) *auditLogModel {
	return &auditLogModel{
		ID:         e.ID.String(),
		ActorID:    e.ActorID,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Detail:     e.Detail,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	}
}

func auditLogFromModel(m *auditLogModel) *auditlog.Entry {
	logID, _ := id.ParseAuditLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &auditlog.Entry{
		ID:         logID,
		ActorID:    m.ActorID,
		Action:     m.Action,
		TargetType: m.TargetType,
		TargetID:   m.TargetID,
		Detail:     m.Detail,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
	}
}
