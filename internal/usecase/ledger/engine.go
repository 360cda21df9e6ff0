package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pesovault/ledger-backend/internal/domain"
)

// Engine applies balance-affecting operations to accounts. It consults the
// activation policy, builds the Transaction and hands it to the LedgerLog,
// which commits the balance mutation and the log append as one atomic
// unit. The engine itself never touches a balance outside that commit.
type Engine struct {
	Accounts domain.AccountStore
	Log      domain.LedgerLog
}

// NewEngine creates a new Engine instance
func NewEngine(accounts domain.AccountStore, log domain.LedgerLog) *Engine {
	return &Engine{
		Accounts: accounts,
		Log:      log,
	}
}

// Deposit credits amount (minor units) to the account.
// Logic:
//  1. Reject non-positive amounts
//  2. Deny if the account's status forbids deposits (deactivated)
//  3. Commit a deposit Transaction atomically with the balance increase
func (e *Engine) Deposit(ctx context.Context, accountNumber string, amount int64, actor uuid.UUID) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	account, err := e.Accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if !account.Status.CanApply(domain.KindDeposit) {
		return nil, domain.ErrAccountNotActive
	}

	tx := &domain.Transaction{
		Kind:      domain.KindDeposit,
		ToAccount: accountNumber,
		Amount:    amount,
		Timestamp: time.Now(),
		Actor:     actor,
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	return e.Log.Append(ctx, tx)
}

// Transfer moves amount (minor units) between two accounts. Both accounts
// are locked in ascending account-number order for the duration of the
// commit, and a single Transaction referencing both is appended.
func (e *Engine) Transfer(ctx context.Context, fromAccount, toAccount string, amount int64, actor uuid.UUID) (*domain.Transaction, error) {
	if fromAccount == toAccount {
		return nil, domain.ErrSameAccount
	}

	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	from, err := e.Accounts.GetByNumber(ctx, fromAccount)
	if err != nil {
		return nil, err
	}

	to, err := e.Accounts.GetByNumber(ctx, toAccount)
	if err != nil {
		return nil, err
	}

	if !from.Status.CanApply(domain.KindTransfer) || !to.Status.CanApply(domain.KindTransfer) {
		return nil, domain.ErrAccountNotActive
	}

	// Pre-check; the authoritative check runs under the account lock
	// inside Append.
	if from.Balance < amount {
		return nil, domain.ErrInsufficientFunds
	}

	tx := &domain.Transaction{
		Kind:        domain.KindTransfer,
		FromAccount: fromAccount,
		ToAccount:   toAccount,
		Amount:      amount,
		Timestamp:   time.Now(),
		Actor:       actor,
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	return e.Log.Append(ctx, tx)
}

// Adjust records a signed correction on the account: a positive delta
// credits it, a negative delta debits it. The stored Transaction carries
// the absolute amount with the direction expressed through its account
// references.
func (e *Engine) Adjust(ctx context.Context, accountNumber string, delta int64, actor uuid.UUID) (*domain.Transaction, error) {
	if delta == 0 {
		return nil, domain.ErrInvalidAmount
	}

	account, err := e.Accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if !account.Status.CanApply(domain.KindAdjustment) {
		return nil, domain.ErrAccountNotActive
	}

	tx := &domain.Transaction{
		Kind:      domain.KindAdjustment,
		Timestamp: time.Now(),
		Actor:     actor,
	}
	if delta > 0 {
		tx.ToAccount = accountNumber
		tx.Amount = delta
	} else {
		tx.FromAccount = accountNumber
		tx.Amount = -delta
		if account.Balance < tx.Amount {
			return nil, domain.ErrInsufficientFunds
		}
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	return e.Log.Append(ctx, tx)
}
