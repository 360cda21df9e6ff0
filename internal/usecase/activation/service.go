package activation

import (
	"context"

	"github.com/pesovault/ledger-backend/internal/domain"
)

// Service drives account status transitions. Transitions run inside the
// store's per-account update so a concurrent attempt cannot observe a
// half-applied status.
type Service struct {
	Accounts domain.AccountStore
}

// NewService creates a new Service instance
func NewService(accounts domain.AccountStore) *Service {
	return &Service{Accounts: accounts}
}

// Activate moves the account to the active status.
// Logic:
//  1. Load the account under its update lock
//  2. Verify the current status permits activation (pending or deactivated)
//  3. Persist the new status
func (s *Service) Activate(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return s.transition(ctx, accountNumber, domain.StatusActive)
}

// Deactivate moves the account to the deactivated status. Only active
// accounts can be deactivated; the balance is left untouched.
func (s *Service) Deactivate(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return s.transition(ctx, accountNumber, domain.StatusDeactivated)
}

func (s *Service) transition(ctx context.Context, accountNumber string, next domain.Status) (*domain.Account, error) {
	return s.Accounts.Update(ctx, accountNumber, func(account *domain.Account) error {
		if !account.Status.CanTransitionTo(next) {
			return domain.ErrInvalidTransition
		}
		account.Status = next
		return nil
	})
}
