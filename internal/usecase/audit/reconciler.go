package audit

import (
	"context"
	"fmt"

	"github.com/pesovault/ledger-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Drift reports a mismatch between an account's live balance and the
// balance replayed from its transaction history.
type Drift struct {
	AccountNumber string
	Live          int64
	Replayed      int64
}

// Difference returns the drift in display units, live minus replayed.
func (d Drift) Difference() decimal.Decimal {
	return domain.AmountToDecimal(d.Live - d.Replayed)
}

// Reconciler checks every account's stored balance against the ledger.
type Reconciler struct {
	Accounts domain.AccountStore
	Log      domain.LedgerLog
}

// NewReconciler creates a new Reconciler instance
func NewReconciler(accounts domain.AccountStore, log domain.LedgerLog) *Reconciler {
	return &Reconciler{Accounts: accounts, Log: log}
}

// Reconcile replays the ledger for every account and returns the accounts
// whose live balance disagrees with the replayed one. An empty slice
// means the store and the log are consistent.
func (r *Reconciler) Reconcile(ctx context.Context) ([]Drift, error) {
	accounts, err := r.Accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	var drifts []Drift
	for _, account := range accounts {
		replayed, err := r.Log.ReplayBalance(ctx, account.AccountNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to replay account %s: %w", account.AccountNumber, err)
		}
		if replayed != account.Balance {
			drifts = append(drifts, Drift{
				AccountNumber: account.AccountNumber,
				Live:          account.Balance,
				Replayed:      replayed,
			})
		}
	}
	return drifts, nil
}
