// Package assignment defines the Assignment entity: a time-bounded binding
// of an identity to a role.
package assignment

import (
	"time"

	"github.com/xraph/steward/id"
)

// Assignment binds a role to an identity. For a given (UserID, RoleID) pair
// at most one assignment may be live (DeletedAt == nil) at any time; a
// soft-deleted row may coexist with a later restored live row.
type Assignment struct {
	ID         id.AssignmentID `json:"id" db:"id"`
	UserID     id.AccountID    `json:"user_id" db:"user_id"`
	RoleID     id.RoleID       `json:"role_id" db:"role_id"`
	IsActive   bool            `json:"is_active" db:"is_active"`
	AssignedBy string          `json:"assigned_by,omitempty" db:"assigned_by"`
	AssignedAt time.Time       `json:"assigned_at" db:"assigned_at"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty" db:"expires_at"`
	Reason     string          `json:"reason,omitempty" db:"reason"`
	RevokedBy  string          `json:"revoked_by,omitempty" db:"revoked_by"`
	RevokedAt  *time.Time      `json:"revoked_at,omitempty" db:"revoked_at"`
	DeletedAt  *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// EffectiveAt reports whether the assignment grants its role at the given
// instant: active, not soft-deleted, and not expired.
func (a *Assignment) EffectiveAt(now time.Time) bool {
	if !a.IsActive || a.DeletedAt != nil {
		return false
	}
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// ListFilter contains filters for listing assignments. Soft-deleted rows are
// excluded unless IncludeDeleted is set.
type ListFilter struct {
	UserID         *id.AccountID `json:"user_id,omitempty"`
	RoleID         *id.RoleID    `json:"role_id,omitempty"`
	IncludeDeleted bool          `json:"include_deleted,omitempty"`
	Limit          int           `json:"limit,omitempty"`
	Offset         int           `json:"offset,omitempty"`
}
