// Package role defines the Role entity: a named bundle of policies
// assignable to identities.
package role

import (
	"time"

	"github.com/xraph/steward/id"
)

// Role bundles policies one level above the policy/permission pair.
// A role flagged IsSystem or IsDefault can never be soft-deleted, and at
// most one live role carries IsDefault at any time.
type Role struct {
	ID          id.RoleID     `json:"id" db:"id"`
	Identifier  string        `json:"identifier" db:"identifier"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description,omitempty" db:"description"`
	PolicyIDs   []id.PolicyID `json:"policy_ids" db:"-"`
	Level       int           `json:"level" db:"level"`
	IsActive    bool          `json:"is_active" db:"is_active"`
	IsSystem    bool          `json:"is_system" db:"is_system"`
	IsDefault   bool          `json:"is_default" db:"is_default"`
	DeletedAt   *time.Time    `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// Deleted reports whether the role is soft-deleted.
func (r *Role) Deleted() bool { return r.DeletedAt != nil }

// HasPolicy reports whether the role already references polID.
func (r *Role) HasPolicy(polID id.PolicyID) bool {
	for _, pid := range r.PolicyIDs {
		if pid.String() == polID.String() {
			return true
		}
	}
	return false
}

// ListFilter contains filters for listing roles. Soft-deleted rows are
// excluded unless IncludeDeleted is set. Results are ordered by level
// descending.
type ListFilter struct {
	IsSystem       *bool  `json:"is_system,omitempty"`
	IsDefault      *bool  `json:"is_default,omitempty"`
	Search         string `json:"search,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}
