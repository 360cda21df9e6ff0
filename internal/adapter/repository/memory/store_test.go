package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pesovault/ledger-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActiveAccount(number string, balance int64) *domain.Account {
	return &domain.Account{
		AccountNumber: number,
		OwnerID:       uuid.New(),
		Balance:       balance,
		Status:        domain.StatusActive,
		CreatedAt:     time.Now(),
	}
}

// seed creates the accounts with a zero balance and funds them through
// the ledger, so replayed balances stay consistent with live ones.
func seed(t *testing.T, store *Store, accounts ...*domain.Account) {
	t.Helper()
	for _, a := range accounts {
		balance := a.Balance
		a.Balance = 0
		require.NoError(t, store.Create(context.Background(), a))
		if balance > 0 {
			_, err := store.Append(context.Background(), &domain.Transaction{
				Kind:      domain.KindDeposit,
				ToAccount: a.AccountNumber,
				Amount:    balance,
				Timestamp: time.Now(),
				Actor:     domain.SystemActor,
			})
			require.NoError(t, err)
		}
	}
}

func TestCreate_Duplicate(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newActiveAccount("1000000001", 0)))
	err := store.Create(ctx, newActiveAccount("1000000001", 0))

	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)
}

func TestList_CreationOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, number := range []string{"3000000000", "1000000000", "2000000000"} {
		require.NoError(t, store.Create(ctx, newActiveAccount(number, 0)))
	}

	accounts, err := store.List(ctx)

	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "3000000000", accounts[0].AccountNumber)
	assert.Equal(t, "1000000000", accounts[1].AccountNumber)
	assert.Equal(t, "2000000000", accounts[2].AccountNumber)
}

func TestGetByNumber_ReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newActiveAccount("1000000001", 0)))

	got, err := store.GetByNumber(ctx, "1000000001")
	require.NoError(t, err)

	got.Balance = 999999

	again, err := store.GetByNumber(ctx, "1000000001")
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.Balance, "mutating a returned account must not leak into the store")
}

func TestUpdate_PersistsStatusOnly(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	account := newActiveAccount("1000000001", 0)
	seed(t, store, account)

	updated, err := store.Update(ctx, "1000000001", func(a *domain.Account) error {
		a.Status = domain.StatusDeactivated
		a.Balance = 777 // must be ignored
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeactivated, updated.Status)
	assert.Equal(t, int64(0), updated.Balance, "balance changes only flow through the ledger")
}

func TestAppend_Transfer(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seed(t, store,
		newActiveAccount("1000000001", 10000),
		newActiveAccount("1000000002", 0),
	)

	tx, err := store.Append(ctx, &domain.Transaction{
		Kind:        domain.KindTransfer,
		FromAccount: "1000000001",
		ToAccount:   "1000000002",
		Amount:      3000,
		Timestamp:   time.Now(),
		Actor:       uuid.New(),
	})

	require.NoError(t, err)
	assert.Greater(t, tx.ID, int64(0))

	from, _ := store.GetByNumber(ctx, "1000000001")
	to, _ := store.GetByNumber(ctx, "1000000002")
	assert.Equal(t, int64(7000), from.Balance)
	assert.Equal(t, int64(3000), to.Balance)
}

func TestAppend_InsufficientFundsLeavesNoTrace(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seed(t, store,
		newActiveAccount("1000000001", 1000),
		newActiveAccount("1000000002", 0),
	)

	_, err := store.Append(ctx, &domain.Transaction{
		Kind:        domain.KindTransfer,
		FromAccount: "1000000001",
		ToAccount:   "1000000002",
		Amount:      3000,
		Timestamp:   time.Now(),
		Actor:       uuid.New(),
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	from, _ := store.GetByNumber(ctx, "1000000001")
	to, _ := store.GetByNumber(ctx, "1000000002")
	assert.Equal(t, int64(1000), from.Balance)
	assert.Equal(t, int64(0), to.Balance)

	txs, err := store.ListFor(ctx, "1000000001")
	require.NoError(t, err)
	assert.Len(t, txs, 1, "only the seed deposit should be logged")
}

func TestAppend_DeactivatedAccount(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	account := newActiveAccount("1000000001", 5000)
	seed(t, store, account)

	_, err := store.Update(ctx, "1000000001", func(a *domain.Account) error {
		a.Status = domain.StatusDeactivated
		return nil
	})
	require.NoError(t, err)

	_, err = store.Append(ctx, &domain.Transaction{
		Kind:      domain.KindDeposit,
		ToAccount: "1000000001",
		Amount:    100,
		Timestamp: time.Now(),
		Actor:     domain.SystemActor,
	})

	assert.ErrorIs(t, err, domain.ErrAccountNotActive)

	got, _ := store.GetByNumber(ctx, "1000000001")
	assert.Equal(t, int64(5000), got.Balance)
}

func TestAppend_UnknownAccount(t *testing.T) {
	store := NewStore()

	_, err := store.Append(context.Background(), &domain.Transaction{
		Kind:      domain.KindDeposit,
		ToAccount: "9999999999",
		Amount:    100,
		Timestamp: time.Now(),
		Actor:     domain.SystemActor,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAppend_ConcurrentDeposits(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seed(t, store, newActiveAccount("1000000001", 0))

	const n = 100
	const amount = int64(50)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Append(ctx, &domain.Transaction{
				Kind:      domain.KindDeposit,
				ToAccount: "1000000001",
				Amount:    amount,
				Timestamp: time.Now(),
				Actor:     domain.SystemActor,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	account, err := store.GetByNumber(ctx, "1000000001")
	require.NoError(t, err)
	assert.Equal(t, int64(n)*amount, account.Balance)

	txs, err := store.ListFor(ctx, "1000000001")
	require.NoError(t, err)
	assert.Len(t, txs, n)

	// Transaction ids are unique and strictly increasing in log order.
	seen := make(map[int64]bool, n)
	var last int64
	for _, tx := range txs {
		assert.False(t, seen[tx.ID])
		seen[tx.ID] = true
		assert.Greater(t, tx.ID, last)
		last = tx.ID
	}
}

func TestAppend_ConcurrentOpposingTransfers(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seed(t, store,
		newActiveAccount("1000000001", 10000),
		newActiveAccount("1000000002", 10000),
	)

	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := store.Append(ctx, &domain.Transaction{
				Kind:        domain.KindTransfer,
				FromAccount: "1000000001",
				ToAccount:   "1000000002",
				Amount:      10,
				Timestamp:   time.Now(),
				Actor:       domain.SystemActor,
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := store.Append(ctx, &domain.Transaction{
				Kind:        domain.KindTransfer,
				FromAccount: "1000000002",
				ToAccount:   "1000000001",
				Amount:      10,
				Timestamp:   time.Now(),
				Actor:       domain.SystemActor,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	a, _ := store.GetByNumber(ctx, "1000000001")
	b, _ := store.GetByNumber(ctx, "1000000002")
	assert.Equal(t, int64(10000), a.Balance)
	assert.Equal(t, int64(10000), b.Balance)
	assert.Equal(t, int64(20000), a.Balance+b.Balance, "transfers conserve total funds")
}

func TestReplayBalance_MatchesLiveBalance(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seed(t, store,
		newActiveAccount("1000000001", 10000),
		newActiveAccount("1000000002", 0),
	)

	_, err := store.Append(ctx, &domain.Transaction{
		Kind:        domain.KindTransfer,
		FromAccount: "1000000001",
		ToAccount:   "1000000002",
		Amount:      2500,
		Timestamp:   time.Now(),
		Actor:       uuid.New(),
	})
	require.NoError(t, err)

	for _, number := range []string{"1000000001", "1000000002"} {
		account, err := store.GetByNumber(ctx, number)
		require.NoError(t, err)

		replayed, err := store.ReplayBalance(ctx, number)
		require.NoError(t, err)
		assert.Equal(t, account.Balance, replayed, "replayed balance must match live balance for %s", number)
	}
}

func TestReplayBalance_UnknownAccount(t *testing.T) {
	store := NewStore()

	_, err := store.ReplayBalance(context.Background(), "9999999999")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
