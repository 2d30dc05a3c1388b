// Package permission defines the Permission entity and its store interface.
// A Permission is the atomic capability of the authorization graph: a single
// action allowed on a resource, keyed by the "resource:action" identifier.
package permission

import (
	"time"

	"github.com/xraph/steward/id"
)

// Action is one of the fixed capability verbs a permission can grant.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
	ActionManage Action = "manage"
)

// ValidAction reports whether a is one of the known capability verbs.
func ValidAction(a Action) bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionList, ActionManage:
		return true
	}
	return false
}

// Permission represents a specific action allowed on a resource.
// Identifier is unique among live permissions and immutable once derived;
// when not supplied at creation it is derived as "resource:action".
type Permission struct {
	ID          id.PermissionID `json:"id" db:"id"`
	Identifier  string          `json:"identifier" db:"identifier"`
	Resource    string          `json:"resource" db:"resource"`
	Action      Action          `json:"action" db:"action"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description,omitempty" db:"description"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Deleted reports whether the permission is soft-deleted.
func (p *Permission) Deleted() bool { return p.DeletedAt != nil }

// ListFilter contains filters for listing permissions. Soft-deleted rows are
// excluded unless IncludeDeleted is set. Results are ordered by resource,
// then action.
type ListFilter struct {
	Resource       string `json:"resource,omitempty"`
	Action         Action `json:"action,omitempty"`
	Search         string `json:"search,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}
