// Package account defines the AdminAccount entity and its store interface.
// Account status is owned exclusively by the lifecycle controller in the
// root package; the authorization graph shares only the account's ID.
package account

import (
	"time"

	"github.com/xraph/steward/id"
)

// Type distinguishes ordinary administrators from super administrators.
// An admin may never suspend or reactivate a super_admin.
type Type string

const (
	TypeAdmin      Type = "admin"
	TypeSuperAdmin Type = "super_admin"
)

// ValidType reports whether t is a known account type.
func ValidType(t Type) bool {
	return t == TypeAdmin || t == TypeSuperAdmin
}

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s Status) bool {
	return s == StatusActive || s == StatusInactive || s == StatusSuspended
}

// Account is an administrator account. Email is unique among live accounts.
// Version supports optimistic concurrency: UpdateAccount compares it and
// fails with store.ErrStaleVersion when another writer got there first, so
// exactly one of two racing lifecycle transitions wins.
type Account struct {
	ID                id.AccountID `json:"id" db:"id"`
	Email             string       `json:"email" db:"email"`
	Name              string       `json:"name,omitempty" db:"name"`
	ExternalSubjectID string       `json:"external_subject_id,omitempty" db:"external_subject_id"`
	Type              Type         `json:"type" db:"type"`
	Status            Status       `json:"status" db:"status"`
	Version           int          `json:"version" db:"version"`
	DeletedAt         *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
}

// Deleted reports whether the account is soft-deleted.
func (a *Account) Deleted() bool { return a.DeletedAt != nil }

// ListFilter contains filters for listing accounts. Soft-deleted rows are
// excluded unless IncludeDeleted is set.
type ListFilter struct {
	Type           Type   `json:"type,omitempty"`
	Status         Status `json:"status,omitempty"`
	Search         string `json:"search,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}
