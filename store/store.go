// Package store defines the aggregate persistence interface. Each subsystem
// (account, permission, policy, role, assignment, auditlog) defines its own
// store interface; the composite Store composes them all.
// Backends: Postgres, SQLite, MongoDB, and Memory.
package store

import (
	"context"
	"errors"

	"github.com/xraph/steward/account"
	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/auditlog"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/role"
)

// Sentinel errors shared by all backends. The engine translates these into
// its caller-facing taxonomy at the component boundary.
var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrConflict is returned when a uniqueness constraint is violated:
	// a duplicate live identifier/email, or a second live assignment for
	// the same (user, role) pair.
	ErrConflict = errors.New("store: conflict")

	// ErrStaleVersion is returned by UpdateAccount when the row was
	// modified since it was read.
	ErrStaleVersion = errors.New("store: stale version")
)

// Store is the aggregate persistence interface. A single backend implements
// every subsystem store.
type Store interface {
	account.Store
	permission.Store
	policy.Store
	role.Store
	assignment.Store
	auditlog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
