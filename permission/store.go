package permission

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for permissions. Soft deletes and
// restores go through UpdatePermission; nothing is physically erased.
type Store interface {
	// CreatePermission persists a new permission.
	CreatePermission(ctx context.Context, p *Permission) error

	// GetPermission retrieves a permission by ID, soft-deleted included.
	GetPermission(ctx context.Context, permID id.PermissionID) (*Permission, error)

	// GetPermissionByIdentifier retrieves a live (non-deleted) permission by
	// its unique identifier.
	GetPermissionByIdentifier(ctx context.Context, identifier string) (*Permission, error)

	// UpdatePermission persists changes to a permission.
	UpdatePermission(ctx context.Context, p *Permission) error

	// ListPermissions returns permissions matching the filter, ordered by
	// resource then action.
	ListPermissions(ctx context.Context, filter *ListFilter) ([]*Permission, error)

	// ListPermissionsByIDs returns the live permissions among the given IDs.
	ListPermissionsByIDs(ctx context.Context, permIDs []id.PermissionID) ([]*Permission, error)

	// CountPermissions returns the number of permissions matching the filter.
	CountPermissions(ctx context.Context, filter *ListFilter) (int64, error)
}
