package role

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for roles. The policy membership set
// is persisted with the role: UpdateRole replaces it wholesale.
type Store interface {
	// CreateRole persists a new role with its policy references.
	CreateRole(ctx context.Context, r *Role) error

	// GetRole retrieves a role by ID, soft-deleted included.
	GetRole(ctx context.Context, roleID id.RoleID) (*Role, error)

	// GetRoleByIdentifier retrieves a live role by its unique identifier.
	GetRoleByIdentifier(ctx context.Context, identifier string) (*Role, error)

	// GetDefaultRole returns the live, active role flagged IsDefault.
	GetDefaultRole(ctx context.Context) (*Role, error)

	// UpdateRole persists changes to a role, including a total replacement
	// of its policy references.
	UpdateRole(ctx context.Context, r *Role) error

	// ListRoles returns roles matching the filter, ordered by level
	// descending.
	ListRoles(ctx context.Context, filter *ListFilter) ([]*Role, error)

	// ListRolesByIDs returns the live roles among the given IDs.
	ListRolesByIDs(ctx context.Context, roleIDs []id.RoleID) ([]*Role, error)

	// CountRoles returns the number of roles matching the filter.
	CountRoles(ctx context.Context, filter *ListFilter) (int64, error)
}
