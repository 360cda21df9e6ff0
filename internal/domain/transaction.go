package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Kind represents the type of ledger transaction
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindTransfer   Kind = "transfer"
	KindAdjustment Kind = "adjustment"
)

// SystemActor is the fixed identity recorded on transactions authorized by
// the system itself rather than an administrator.
var SystemActor = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Transaction represents an immutable ledger entry recording a
// balance-affecting event. The ID is assigned by the LedgerLog at append
// time and is strictly increasing; a Transaction is never mutated or
// removed once committed.
type Transaction struct {
	ID          int64
	Kind        Kind
	FromAccount string // empty for deposits and credit adjustments
	ToAccount   string // empty for debit adjustments
	Amount      int64  // positive, minor units
	Timestamp   time.Time
	Actor       uuid.UUID
}

// BalanceDelta is a signed balance effect on a single account, derived
// from a Transaction and applied atomically with its append.
type BalanceDelta struct {
	AccountNumber string
	Amount        int64
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}

	if t.Actor == uuid.Nil {
		return errors.New("transaction must record an actor")
	}

	switch t.Kind {
	case KindDeposit:
		if t.FromAccount != "" {
			return errors.New("deposit must not reference a source account")
		}
		if t.ToAccount == "" {
			return errors.New("deposit must reference a destination account")
		}
	case KindTransfer:
		if t.FromAccount == "" || t.ToAccount == "" {
			return errors.New("transfer must reference both accounts")
		}
		if t.FromAccount == t.ToAccount {
			return ErrSameAccount
		}
	case KindAdjustment:
		if (t.FromAccount == "") == (t.ToAccount == "") {
			return errors.New("adjustment must reference exactly one account")
		}
	default:
		return errors.New("transaction kind must be deposit, transfer or adjustment")
	}

	return nil
}

// Deltas returns the balance effects of the transaction, ordered by
// ascending account number. Implementations acquire account locks in this
// order, which prevents deadlock cycles between overlapping commits.
func (t *Transaction) Deltas() []BalanceDelta {
	deltas := make([]BalanceDelta, 0, 2)
	if t.FromAccount != "" {
		deltas = append(deltas, BalanceDelta{AccountNumber: t.FromAccount, Amount: -t.Amount})
	}
	if t.ToAccount != "" {
		deltas = append(deltas, BalanceDelta{AccountNumber: t.ToAccount, Amount: t.Amount})
	}

	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].AccountNumber < deltas[j].AccountNumber
	})

	return deltas
}

// EffectOn returns the signed effect of the transaction on the given
// account, or zero if the account does not participate. Folding EffectOn
// over a full ledger reconstructs an account's balance.
func (t *Transaction) EffectOn(accountNumber string) int64 {
	switch accountNumber {
	case "":
		return 0
	case t.ToAccount:
		return t.Amount
	case t.FromAccount:
		return -t.Amount
	default:
		return 0
	}
}
