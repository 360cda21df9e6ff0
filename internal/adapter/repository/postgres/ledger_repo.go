package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pesovault/ledger-backend/internal/domain"
)

// ledgerRepository implements domain.LedgerLog
type ledgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *DB) domain.LedgerLog {
	return &ledgerRepository{db: db}
}

// Append commits the transaction's balance deltas and its log row in one
// database transaction. Rows are locked with SELECT ... FOR UPDATE in
// ascending account-number order, so concurrent commits touching the
// same accounts serialize without deadlocking.
func (r *ledgerRepository) Append(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewStorageError("begin append", err)
	}
	defer dbTx.Rollback()

	lockQuery := `
		SELECT balance, status
		FROM accounts
		WHERE account_number = $1
		FOR UPDATE
	`

	// Deltas come back sorted by account number, which fixes the lock order.
	for _, delta := range tx.Deltas() {
		var balance int64
		var status domain.Status
		err := dbTx.QueryRowContext(ctx, lockQuery, delta.AccountNumber).Scan(&balance, &status)
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, domain.NewStorageError("lock account", err)
		}

		if !status.CanApply(tx.Kind) {
			return nil, domain.ErrAccountNotActive
		}
		if balance+delta.Amount < 0 {
			return nil, domain.ErrInsufficientFunds
		}

		updateQuery := `UPDATE accounts SET balance = balance + $1 WHERE account_number = $2`
		if _, err := dbTx.ExecContext(ctx, updateQuery, delta.Amount, delta.AccountNumber); err != nil {
			return nil, domain.NewStorageError("apply delta", err)
		}
	}

	committed := *tx
	if committed.Timestamp.IsZero() {
		committed.Timestamp = time.Now()
	}

	insertQuery := `
		INSERT INTO transactions (kind, from_account, to_account, amount, created_at, actor)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6)
		RETURNING id
	`

	err = dbTx.QueryRowContext(ctx, insertQuery,
		string(committed.Kind),
		committed.FromAccount,
		committed.ToAccount,
		committed.Amount,
		committed.Timestamp,
		committed.Actor,
	).Scan(&committed.ID)
	if err != nil {
		return nil, domain.NewStorageError("insert transaction", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, domain.NewStorageError("commit append", err)
	}

	return &committed, nil
}

// ListFor retrieves every transaction touching the account, ordered by id
func (r *ledgerRepository) ListFor(ctx context.Context, accountNumber string) ([]*domain.Transaction, error) {
	if err := r.ensureAccount(ctx, accountNumber); err != nil {
		return nil, err
	}

	query := `
		SELECT id, kind, COALESCE(from_account, ''), COALESCE(to_account, ''), amount, created_at, actor
		FROM transactions
		WHERE from_account = $1 OR to_account = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, accountNumber)
	if err != nil {
		return nil, domain.NewStorageError("list transactions", err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(
			&tx.ID,
			&tx.Kind,
			&tx.FromAccount,
			&tx.ToAccount,
			&tx.Amount,
			&tx.Timestamp,
			&tx.Actor,
		); err != nil {
			return nil, domain.NewStorageError("scan transaction", err)
		}
		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list transactions", err)
	}

	return transactions, nil
}

// ReplayBalance folds the account's transaction history into a balance
func (r *ledgerRepository) ReplayBalance(ctx context.Context, accountNumber string) (int64, error) {
	if err := r.ensureAccount(ctx, accountNumber); err != nil {
		return 0, err
	}

	query := `
		SELECT COALESCE(SUM(CASE WHEN to_account = $1 THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE from_account = $1 OR to_account = $1
	`

	var balance int64
	if err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(&balance); err != nil {
		return 0, domain.NewStorageError("replay balance", err)
	}

	return balance, nil
}

func (r *ledgerRepository) ensureAccount(ctx context.Context, accountNumber string) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`
	if err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(&exists); err != nil {
		return domain.NewStorageError("check account", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}
