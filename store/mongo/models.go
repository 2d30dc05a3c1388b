package mongo

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
	ID                string     `grove:"id,pk"               bson:"_id"`
	Email             string     `grove:"email"               bson:"email"`
	Name              string     `grove:"name"                bson:"name"`
	ExternalSubjectID string     `grove:"external_subject_id" bson:"external_subject_id"`
	Type              string     `grove:"type"                bson:"type"`
	Status            string     `grove:"status"              bson:"status"`
	Version           int        `grove:"version"             bson:"version"`
	DeletedAt         *time.Time `grove:"deleted_at"          bson:"deleted_at,omitempty"`
	CreatedAt         time.Time  `grove:"created_at"          bson:"created_at"`
	UpdatedAt         time.Time  `grove:"updated_at"          bson:"updated_at"`
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
	ID              string     `grove:"id,pk"       bson:"_id"`
	Identifier      string     `grove:"identifier"  bson:"identifier"`
	Resource        string     `grove:"resource"    bson:"resource"`
	Action          string     `grove:"action"      bson:"action"`
	Name            string     `grove:"name"        bson:"name"`
	Description     string     `grove:"description" bson:"description"`
	IsActive        bool       `grove:"is_active"   bson:"is_active"`
	DeletedAt       *time.Time `grove:"deleted_at"  bson:"deleted_at,omitempty"`
	CreatedAt       time.Time  `grove:"created_at"  bson:"created_at"`
	UpdatedAt       time.Time  `grove:"updated_at"  bson:"updated_at"`
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
	ID              string     `grove:"id,pk"          bson:"_id"`
	Identifier      string     `grove:"identifier"     bson:"identifier"`
	Name            string     `grove:"name"           bson:"name"`
	Description     string     `grove:"description"    bson:"description"`
	PermissionIDs   []string   `grove:"permission_ids" bson:"permission_ids"`
	Priority        int        `grove:"priority"       bson:"priority"`
	Category        string     `grove:"category"       bson:"category"`
	IsActive        bool       `grove:"is_active"      bson:"is_active"`
	IsSystem        bool       `grove:"is_system"      bson:"is_system"`
	DeletedAt       *time.Time `grove:"deleted_at"     bson:"deleted_at,omitempty"`
	CreatedAt       time.Time  `grove:"created_at"     bson:"created_at"`
	UpdatedAt       time.Time  `grove:"updated_at"     bson:"updated_at"`
}

func policyToModel(p *policy.Policy) *policyModel {
	permIDs := make([]string, len(p.PermissionIDs))
	for i, pid := range p.PermissionIDs {
		permIDs[i] = pid.String()
	}
	return &policyModel{
		ID:            p.ID.String(),
		Identifier:    p.Identifier,
		Name:          p.Name,
		Description:   p.Description,
		PermissionIDs: permIDs,
		Priority:      p.Priority,
		Category:      string(p.Category),
		IsActive:      p.IsActive,
		IsSystem:      p.IsSystem,
		DeletedAt:     p.DeletedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func policyFromModel(m *policyModel) *policy.Policy {
	pid, _ := id.ParsePolicyID(m.ID) //nolint:errcheck // stored IDs are always valid
	permIDs := make([]id.PermissionID, 0, len(m.PermissionIDs))
	for _, raw := range m.PermissionIDs {
		permID, err := id.ParsePermissionID(raw)
		if err == nil {
			permIDs = append(permIDs, permID)
		}
	}
	return &policy.Policy{
		ID:            pid,
		Identifier:    m.Identifier,
		Name:          m.Name,
		Description:   m.Description,
		PermissionIDs: permIDs,
		Priority:      m.Priority,
		Category:      policy.Category(m.Category),
		IsActive:      m.IsActive,
		IsSystem:      m.IsSystem,
		DeletedAt:     m.DeletedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Role model
// ──────────────────────────────────────────────────

type roleModel struct {
	grove.BaseModel `grove:"table:steward_roles"`
	ID              string     `grove:"id,pk"       bson:"_id"`
	Identifier      string     `grove:"identifier"  bson:"identifier"`
	Name            string     `grove:"name"        bson:"name"`
	Description     string     `grove:"description" bson:"description"`
	PolicyIDs       []string   `grove:"policy_ids"  bson:"policy_ids"`
	Level           int        `grove:"level"       bson:"level"`
	IsActive        bool       `grove:"is_active"   bson:"is_active"`
	IsSystem        bool       `grove:"is_system"   bson:"is_system"`
	IsDefault       bool       `grove:"is_default"  bson:"is_default"`
	DeletedAt       *time.Time `grove:"deleted_at"  bson:"deleted_at,omitempty"`
	CreatedAt       time.Time  `grove:"created_at"  bson:"created_at"`
	UpdatedAt       time.Time  `grove:"updated_at"  bson:"updated_at"`
}

func roleToModel(r *role.Role) *roleModel {
	polIDs := make([]string, len(r.PolicyIDs))
	for i, pid := range r.PolicyIDs {
		polIDs[i] = pid.String()
	}
	return &roleModel{
		ID:          r.ID.String(),
		Identifier:  r.Identifier,
		Name:        r.Name,
		Description: r.Description,
		PolicyIDs:   polIDs,
		Level:       r.Level,
		IsActive:    r.IsActive,
		IsSystem:    r.IsSystem,
		IsDefault:   r.IsDefault,
		DeletedAt:   r.DeletedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func roleFromModel(m *roleModel) *role.Role {
	rid, _ := id.ParseRoleID(m.ID) //nolint:errcheck // stored IDs are always valid
	polIDs := make([]id.PolicyID, 0, len(m.PolicyIDs))
	for _, raw := range m.PolicyIDs {
		polID, err := id.ParsePolicyID(raw)
		if err == nil {
			polIDs = append(polIDs, polID)
		}
	}
	return &role.Role{
		ID:          rid,
		Identifier:  m.Identifier,
		Name:        m.Name,
		Description: m.Description,
		PolicyIDs:   polIDs,
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
// Assignment model
// ──────────────────────────────────────────────────

// assignmentModel carries a Live marker alongside DeletedAt: the partial
// unique index on (user_id, role_id) filters on it, since a partial filter
// expression cannot express "deleted_at is missing or null".
type assignmentModel struct {
	grove.BaseModel `grove:"table:steward_assignments"`
	ID              string     `grove:"id,pk"       bson:"_id"`
	UserID          string     `grove:"user_id"     bson:"user_id"`
	RoleID          string     `grove:"role_id"     bson:"role_id"`
	IsActive        bool       `grove:"is_active"   bson:"is_active"`
	AssignedBy      string     `grove:"assigned_by" bson:"assigned_by"`
	AssignedAt      time.Time  `grove:"assigned_at" bson:"assigned_at"`
	ExpiresAt       *time.Time `grove:"expires_at"  bson:"expires_at,omitempty"`
	Reason          string     `grove:"reason"      bson:"reason"`
	RevokedBy       string     `grove:"revoked_by"  bson:"revoked_by"`
	RevokedAt       *time.Time `grove:"revoked_at"  bson:"revoked_at,omitempty"`
	DeletedAt       *time.Time `grove:"deleted_at"  bson:"deleted_at,omitempty"`
	Live            bool       `grove:"live"        bson:"live"`
	CreatedAt       time.Time  `grove:"created_at"  bson:"created_at"`
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
		Live:       a.DeletedAt == nil,
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
	ID              string         `grove:"id,pk"       bson:"_id"`
	ActorID         string         `grove:"actor_id"    bson:"actor_id"`
	Action          string         `grove:"action"      bson:"action"`
	TargetType      string         `grove:"target_type" bson:"target_type"`
	TargetID        string         `grove:"target_id"   bson:"target_id"`
	Detail          string         `grove:"detail"      bson:"detail"`
	Metadata        map[string]any `grove:"metadata"    bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"  bson:"created_at"`
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
