package domain

import "context"

// AccountStore defines the interface for account persistence operations
type AccountStore interface {
	// GetByNumber retrieves an account by its account number
	GetByNumber(ctx context.Context, accountNumber string) (*Account, error)

	// Create creates a new account
	// Returns ErrDuplicateAccount if the account number already exists
	Create(ctx context.Context, account *Account) error

	// List retrieves all accounts ordered by creation time
	List(ctx context.Context) ([]*Account, error)

	// Update applies fn to the account under an exclusive lock scoped to
	// that account number and persists the resulting status. fn may change
	// Status only; Balance is mutated exclusively through LedgerLog.Append.
	Update(ctx context.Context, accountNumber string, fn func(*Account) error) (*Account, error)
}

// LedgerLog defines the interface for the append-only transaction log
type LedgerLog interface {
	// Append assigns the next transaction id and commits the transaction:
	// its balance deltas are applied to the participating accounts and the
	// record is appended, all atomically. Either everything is durable when
	// Append returns, or nothing is. Participant accounts are locked in
	// ascending account-number order for the duration of the commit.
	Append(ctx context.Context, tx *Transaction) (*Transaction, error)

	// ListFor retrieves every transaction involving the account, ordered
	// by id ascending
	ListFor(ctx context.Context, accountNumber string) ([]*Transaction, error)

	// ReplayBalance recomputes the account balance by folding all matching
	// transactions. It is a consistency oracle for audits and tests, not
	// the live balance path.
	ReplayBalance(ctx context.Context, accountNumber string) (int64, error)
}
