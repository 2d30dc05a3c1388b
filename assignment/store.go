package assignment

import (
	"context"
	"time"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for role assignments.
//
// Backends must enforce the live-pair uniqueness invariant: CreateAssignment
// and any UpdateAssignment that clears DeletedAt fail when another live row
// for the same (UserID, RoleID) pair exists. The assign path upstream is
// check-then-act, so this constraint is what makes it safe under concurrency.
type Store interface {
	// CreateAssignment persists a new assignment.
	CreateAssignment(ctx context.Context, a *Assignment) error

	// GetAssignment retrieves an assignment by ID, soft-deleted included.
	GetAssignment(ctx context.Context, assID id.AssignmentID) (*Assignment, error)

	// GetLiveAssignment returns the single non-soft-deleted assignment for
	// the (userID, roleID) pair, regardless of activity or expiry.
	GetLiveAssignment(ctx context.Context, userID id.AccountID, roleID id.RoleID) (*Assignment, error)

	// GetDeletedAssignment returns the most recently soft-deleted assignment
	// for the (userID, roleID) pair, if any.
	GetDeletedAssignment(ctx context.Context, userID id.AccountID, roleID id.RoleID) (*Assignment, error)

	// UpdateAssignment persists changes to an assignment.
	UpdateAssignment(ctx context.Context, a *Assignment) error

	// ListAssignments returns assignments matching the filter.
	ListAssignments(ctx context.Context, filter *ListFilter) ([]*Assignment, error)

	// ListEffectiveAssignments returns every assignment for userID that is
	// active, live, and unexpired at the given instant.
	ListEffectiveAssignments(ctx context.Context, userID id.AccountID, now time.Time) ([]*Assignment, error)

	// ListEffectiveAssignmentsByRole is the inverse query: every effective
	// assignment of the given role at the given instant.
	ListEffectiveAssignmentsByRole(ctx context.Context, roleID id.RoleID, now time.Time) ([]*Assignment, error)

	// CountAssignments returns the number of assignments matching the filter.
	CountAssignments(ctx context.Context, filter *ListFilter) (int64, error)
}
