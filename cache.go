package steward

import (
	"context"

	"github.com/xraph/steward/id"
)

// Cache provides optional caching for the HasRole authorization gate.
// Full capability resolution (GetEffectiveRoles) is never cached.
type Cache interface {
	// Get returns a cached gate result, if available.
	Get(ctx context.Context, userID id.AccountID, roleID id.RoleID) (held, ok bool)

	// Set stores a gate result.
	Set(ctx context.Context, userID id.AccountID, roleID id.RoleID, held bool)

	// InvalidateUser removes all cached results for an identity. Called on
	// every assignment mutation touching that identity.
	InvalidateUser(ctx context.Context, userID id.AccountID)
}
