// Package policy defines the Policy entity: a named, reusable bundle of
// permissions referenced by ID.
package policy

import (
	"time"

	"github.com/xraph/steward/id"
)

// Category groups policies by audience.
type Category string

const (
	CategoryUser      Category = "user"
	CategoryAdmin     Category = "admin"
	CategoryModerator Category = "moderator"
	CategoryCustom    Category = "custom"
)

// ValidCategory reports whether c is a known policy category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryUser, CategoryAdmin, CategoryModerator, CategoryCustom:
		return true
	}
	return false
}

// Policy bundles permissions under a unique identifier. A policy flagged
// IsSystem can never be soft-deleted.
type Policy struct {
	ID            id.PolicyID       `json:"id" db:"id"`
	Identifier    string            `json:"identifier" db:"identifier"`
	Name          string            `json:"name" db:"name"`
	Description   string            `json:"description,omitempty" db:"description"`
	PermissionIDs []id.PermissionID `json:"permission_ids" db:"-"`
	Priority      int               `json:"priority" db:"priority"`
	Category      Category          `json:"category" db:"category"`
	IsActive      bool              `json:"is_active" db:"is_active"`
	IsSystem      bool              `json:"is_system" db:"is_system"`
	DeletedAt     *time.Time        `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// Deleted reports whether the policy is soft-deleted.
func (p *Policy) Deleted() bool { return p.DeletedAt != nil }

// HasPermission reports whether the policy already references permID.
func (p *Policy) HasPermission(permID id.PermissionID) bool {
	for _, pid := range p.PermissionIDs {
		if pid.String() == permID.String() {
			return true
		}
	}
	return false
}

// ListFilter contains filters for listing policies. Soft-deleted rows are
// excluded unless IncludeDeleted is set. Results are ordered by priority
// descending.
type ListFilter struct {
	Category       Category `json:"category,omitempty"`
	IsSystem       *bool    `json:"is_system,omitempty"`
	Search         string   `json:"search,omitempty"`
	IncludeDeleted bool     `json:"include_deleted,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Offset         int      `json:"offset,omitempty"`
}
