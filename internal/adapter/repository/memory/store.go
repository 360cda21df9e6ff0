package memory

import (
	"context"
	"sync"

	"github.com/pesovault/ledger-backend/internal/domain"
)

// Store is an in-memory implementation of both AccountStore and LedgerLog,
// backed by maps and a slice-based log. Commits take per-account mutexes
// in ascending account-number order, matching the locking discipline of
// the postgres adapter, so the two are interchangeable under concurrency.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	order    []string
	log      []*domain.Transaction
	nextID   int64

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewStore creates a new Store instance
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *Store) lockFor(accountNumber string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	l, ok := s.locks[accountNumber]
	if !ok {
		l = &sync.Mutex{}
		s.locks[accountNumber] = l
	}
	return l
}

func clone(account *domain.Account) *domain.Account {
	c := *account
	return &c
}

// GetByNumber returns a copy of the account identified by accountNumber.
func (s *Store) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountNumber]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(account), nil
}

// Create stores a new account, rejecting duplicate account numbers.
func (s *Store) Create(ctx context.Context, account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.AccountNumber]; ok {
		return domain.ErrDuplicateAccount
	}
	s.accounts[account.AccountNumber] = clone(account)
	s.order = append(s.order, account.AccountNumber)
	return nil
}

// List returns copies of all accounts in creation order.
func (s *Store) List(ctx context.Context) ([]*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Account, 0, len(s.order))
	for _, number := range s.order {
		out = append(out, clone(s.accounts[number]))
	}
	return out, nil
}

// Update applies fn to the account under its per-account lock and persists
// the resulting status. Balance changes are the ledger's job and are
// discarded here.
func (s *Store) Update(ctx context.Context, accountNumber string, fn func(*domain.Account) error) (*domain.Account, error) {
	l := s.lockFor(accountNumber)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	current, ok := s.accounts[accountNumber]
	if !ok {
		s.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	working := clone(current)
	s.mu.Unlock()

	if err := fn(working); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.accounts[accountNumber]
	stored.Status = working.Status
	return clone(stored), nil
}

// Append commits the transaction: every balance delta and the log entry
// land together or not at all. Account locks are taken in ascending
// account-number order to keep concurrent commits deadlock-free.
func (s *Store) Append(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	deltas := tx.Deltas()
	for _, d := range deltas {
		l := s.lockFor(d.AccountNumber)
		l.Lock()
		defer l.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range deltas {
		account, ok := s.accounts[d.AccountNumber]
		if !ok {
			return nil, domain.ErrNotFound
		}
		if !account.Status.CanApply(tx.Kind) {
			return nil, domain.ErrAccountNotActive
		}
		if account.Balance+d.Amount < 0 {
			return nil, domain.ErrInsufficientFunds
		}
	}

	for _, d := range deltas {
		s.accounts[d.AccountNumber].Balance += d.Amount
	}

	s.nextID++
	committed := *tx
	committed.ID = s.nextID
	s.log = append(s.log, &committed)

	result := committed
	return &result, nil
}

// ListFor returns copies of every transaction touching the account,
// ordered by ascending transaction id.
func (s *Store) ListFor(ctx context.Context, accountNumber string) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountNumber]; !ok {
		return nil, domain.ErrNotFound
	}

	var out []*domain.Transaction
	for _, tx := range s.log {
		if tx.FromAccount == accountNumber || tx.ToAccount == accountNumber {
			c := *tx
			out = append(out, &c)
		}
	}
	return out, nil
}

// ReplayBalance folds the account's transaction history into a balance,
// independent of the stored balance field.
func (s *Store) ReplayBalance(ctx context.Context, accountNumber string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountNumber]; !ok {
		return 0, domain.ErrNotFound
	}

	var balance int64
	for _, tx := range s.log {
		balance += tx.EffectOn(accountNumber)
	}
	return balance, nil
}
