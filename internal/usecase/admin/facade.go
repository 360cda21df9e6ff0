package admin

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pesovault/ledger-backend/internal/domain"
	"github.com/pesovault/ledger-backend/internal/usecase/activation"
	"github.com/pesovault/ledger-backend/internal/usecase/ledger"
)

const (
	accountNumberDigits = 10
	createRetries       = 5
)

// Facade bundles the admin-facing operations behind one type. It checks
// the shape of incoming identifiers and delegates; all business rules
// live in the engine and the activation service.
type Facade struct {
	Accounts   domain.AccountStore
	Ledger     *ledger.Engine
	Activation *activation.Service
	Log        domain.LedgerLog

	validate *validator.Validate
}

// NewFacade creates a new Facade instance
func NewFacade(accounts domain.AccountStore, eng *ledger.Engine, act *activation.Service, log domain.LedgerLog) *Facade {
	return &Facade{
		Accounts:   accounts,
		Ledger:     eng,
		Activation: act,
		Log:        log,
		validate:   validator.New(),
	}
}

func (f *Facade) checkAccountNumber(accountNumber string) error {
	if err := f.validate.Var(accountNumber, "required,len=10,numeric"); err != nil {
		return fmt.Errorf("invalid account number %q: %w", accountNumber, err)
	}
	return nil
}

// ListAccounts returns all accounts ordered by creation time.
func (f *Facade) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return f.Accounts.List(ctx)
}

// CreateAccount opens a pending account for the owner with a freshly
// generated account number, retrying on the rare collision.
func (f *Facade) CreateAccount(ctx context.Context, ownerID uuid.UUID) (*domain.Account, error) {
	if ownerID == uuid.Nil {
		return nil, errors.New("owner id is required")
	}

	for i := 0; i < createRetries; i++ {
		number, err := generateAccountNumber()
		if err != nil {
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}

		account := &domain.Account{
			AccountNumber: number,
			OwnerID:       ownerID,
			Balance:       0,
			Status:        domain.StatusPending,
			CreatedAt:     time.Now(),
		}

		err = f.Accounts.Create(ctx, account)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, domain.ErrDuplicateAccount) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to create account after %d attempts: %w", createRetries, domain.ErrDuplicateAccount)
}

// Deposit credits amount (minor units) to the account on behalf of actor.
func (f *Facade) Deposit(ctx context.Context, accountNumber string, amount int64, actor uuid.UUID) (*domain.Transaction, error) {
	if err := f.checkAccountNumber(accountNumber); err != nil {
		return nil, err
	}
	return f.Ledger.Deposit(ctx, accountNumber, amount, actor)
}

// Transfer moves amount (minor units) between two accounts on behalf of actor.
func (f *Facade) Transfer(ctx context.Context, fromAccount, toAccount string, amount int64, actor uuid.UUID) (*domain.Transaction, error) {
	if err := f.checkAccountNumber(fromAccount); err != nil {
		return nil, err
	}
	if err := f.checkAccountNumber(toAccount); err != nil {
		return nil, err
	}
	return f.Ledger.Transfer(ctx, fromAccount, toAccount, amount, actor)
}

// Activate enables the account for balance-affecting operations.
func (f *Facade) Activate(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if err := f.checkAccountNumber(accountNumber); err != nil {
		return nil, err
	}
	return f.Activation.Activate(ctx, accountNumber)
}

// Deactivate suspends the account. Its balance and history remain.
func (f *Facade) Deactivate(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if err := f.checkAccountNumber(accountNumber); err != nil {
		return nil, err
	}
	return f.Activation.Deactivate(ctx, accountNumber)
}

// TransactionSummary returns the account's transactions in commit order.
func (f *Facade) TransactionSummary(ctx context.Context, accountNumber string) ([]*domain.Transaction, error) {
	if err := f.checkAccountNumber(accountNumber); err != nil {
		return nil, err
	}
	return f.Log.ListFor(ctx, accountNumber)
}

func generateAccountNumber() (string, error) {
	max := big.NewInt(0).Exp(big.NewInt(10), big.NewInt(accountNumberDigits), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", accountNumberDigits, n), nil
}
