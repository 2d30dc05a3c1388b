// Package auditlog defines the audit trail Entry entity. Entries are
// append-only records of lifecycle and authorization-graph mutations,
// written best-effort off the caller's path.
package auditlog

import (
	"time"

	"github.com/xraph/steward/id"
)

// Actions recorded by the lifecycle controller and assignment operations.
const (
	ActionAccountCreated     = "account.created"
	ActionAccountUpdated     = "account.updated"
	ActionAccountSuspended   = "account.suspended"
	ActionAccountReactivated = "account.reactivated"
	ActionAccountDeleted     = "account.deleted"
	ActionAccountRestored    = "account.restored"
	ActionRoleAssigned       = "role.assigned"
	ActionRoleRevoked        = "role.revoked"
)

// Entry is a single audit trail record.
type Entry struct {
	ID         id.AuditLogID  `json:"id" db:"id"`
	ActorID    string         `json:"actor_id,omitempty" db:"actor_id"`
	Action     string         `json:"action" db:"action"`
	TargetType string         `json:"target_type" db:"target_type"`
	TargetID   string         `json:"target_id" db:"target_id"`
	Detail     string         `json:"detail,omitempty" db:"detail"`
	Metadata   map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying the audit trail.
type QueryFilter struct {
	ActorID    string     `json:"actor_id,omitempty"`
	Action     string     `json:"action,omitempty"`
	TargetType string     `json:"target_type,omitempty"`
	TargetID   string     `json:"target_id,omitempty"`
	After      *time.Time `json:"after,omitempty"`
	Before     *time.Time `json:"before,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}
