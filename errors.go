package steward

import "errors"

// Error taxonomy. Known taxonomy errors raised inside a component propagate
// unchanged to its caller; anything unclassified is caught at the component
// boundary, logged with full context, and re-raised as ErrInternal with a
// generic message.
var (
	// ErrNotFound is returned when an entity cannot be found.
	ErrNotFound = errors.New("steward: not found")

	// ErrConflict is returned when a uniqueness rule is violated, such as a
	// duplicate permission identifier or account email.
	ErrConflict = errors.New("steward: conflict")

	// ErrBadRequest is returned for validation and precondition failures.
	ErrBadRequest = errors.New("steward: bad request")

	// ErrForbidden is returned when an actor/target guard rule blocks a
	// lifecycle operation.
	ErrForbidden = errors.New("steward: forbidden")

	// ErrServiceUnavailable is returned when the provisioning collaborator
	// is unreachable or times out.
	ErrServiceUnavailable = errors.New("steward: service unavailable")

	// ErrInvariantViolation is returned when an operation would break
	// system/default entity protection, such as soft-deleting a system
	// policy or role.
	ErrInvariantViolation = errors.New("steward: invariant violation")

	// ErrInternal is returned for unexpected, unclassified failures. The
	// underlying cause is logged, never carried to the caller.
	ErrInternal = errors.New("steward: internal error")
)
