package policy

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for policies. The permission
// membership set is persisted with the policy: UpdatePolicy replaces it
// wholesale.
type Store interface {
	// CreatePolicy persists a new policy with its permission references.
	CreatePolicy(ctx context.Context, p *Policy) error

	// GetPolicy retrieves a policy by ID, soft-deleted included.
	GetPolicy(ctx context.Context, polID id.PolicyID) (*Policy, error)

	// GetPolicyByIdentifier retrieves a live policy by its unique identifier.
	GetPolicyByIdentifier(ctx context.Context, identifier string) (*Policy, error)

	// UpdatePolicy persists changes to a policy, including a total
	// replacement of its permission references.
	UpdatePolicy(ctx context.Context, p *Policy) error

	// ListPolicies returns policies matching the filter, ordered by priority
	// descending.
	ListPolicies(ctx context.Context, filter *ListFilter) ([]*Policy, error)

	// ListPoliciesByIDs returns the live policies among the given IDs.
	ListPoliciesByIDs(ctx context.Context, polIDs []id.PolicyID) ([]*Policy, error)

	// CountPolicies returns the number of policies matching the filter.
	CountPolicies(ctx context.Context, filter *ListFilter) (int64, error)
}
