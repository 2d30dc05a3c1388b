package account

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for admin accounts.
type Store interface {
	// CreateAccount persists a new account. Fails with store.ErrConflict when
	// a live account with the same email exists.
	CreateAccount(ctx context.Context, a *Account) error

	// GetAccount retrieves an account by ID, soft-deleted included.
	GetAccount(ctx context.Context, acctID id.AccountID) (*Account, error)

	// GetAccountByEmail retrieves a live account by email.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)

	// UpdateAccount persists changes to an account. The account's Version is
	// compared against the stored row and incremented on success; a mismatch
	// fails with store.ErrStaleVersion.
	UpdateAccount(ctx context.Context, a *Account) error

	// ListAccounts returns accounts matching the filter, ordered by creation
	// time.
	ListAccounts(ctx context.Context, filter *ListFilter) ([]*Account, error)

	// CountAccounts returns the number of accounts matching the filter.
	CountAccounts(ctx context.Context, filter *ListFilter) (int64, error)
}
