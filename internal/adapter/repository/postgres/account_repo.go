package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/pesovault/ledger-backend/internal/domain"
)

// uniqueViolation is the postgres error code for unique constraint violations
const uniqueViolation = "23505"

// accountRepository implements domain.AccountStore
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) domain.AccountStore {
	return &accountRepository{db: db}
}

// GetByNumber retrieves an account by its account number
func (r *accountRepository) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `
		SELECT account_number, owner_id, balance, status, created_at
		FROM accounts
		WHERE account_number = $1
	`

	var account domain.Account
	err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&account.AccountNumber,
		&account.OwnerID,
		&account.Balance,
		&account.Status,
		&account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.NewStorageError("get account", err)
	}

	return &account, nil
}

// Create inserts a new account
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (account_number, owner_id, balance, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.AccountNumber,
		account.OwnerID,
		account.Balance,
		string(account.Status),
		account.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateAccount
		}
		return domain.NewStorageError("create account", err)
	}

	return nil
}

// List retrieves all accounts ordered by creation time
func (r *accountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	query := `
		SELECT account_number, owner_id, balance, status, created_at
		FROM accounts
		ORDER BY created_at, account_number
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.NewStorageError("list accounts", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.AccountNumber,
			&account.OwnerID,
			&account.Balance,
			&account.Status,
			&account.CreatedAt,
		); err != nil {
			return nil, domain.NewStorageError("scan account", err)
		}
		accounts = append(accounts, &account)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list accounts", err)
	}

	return accounts, nil
}

// Update applies fn to the account under a row lock and persists the
// resulting status. The balance column is owned by the ledger and is
// never written here.
func (r *accountRepository) Update(ctx context.Context, accountNumber string, fn func(*domain.Account) error) (*domain.Account, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewStorageError("begin update", err)
	}
	defer dbTx.Rollback()

	query := `
		SELECT account_number, owner_id, balance, status, created_at
		FROM accounts
		WHERE account_number = $1
		FOR UPDATE
	`

	var account domain.Account
	err = dbTx.QueryRowContext(ctx, query, accountNumber).Scan(
		&account.AccountNumber,
		&account.OwnerID,
		&account.Balance,
		&account.Status,
		&account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.NewStorageError("lock account", err)
	}

	if err := fn(&account); err != nil {
		return nil, err
	}

	updateQuery := `UPDATE accounts SET status = $1 WHERE account_number = $2`
	if _, err := dbTx.ExecContext(ctx, updateQuery, string(account.Status), accountNumber); err != nil {
		return nil, domain.NewStorageError("update account", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, domain.NewStorageError("commit update", err)
	}

	return &account, nil
}
