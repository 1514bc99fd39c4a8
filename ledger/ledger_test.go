package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbit/reward-engine/ledger"
	"github.com/orbit/reward-engine/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestLedger() *ledger.WalletLedger {
	return ledger.NewWalletLedger(store.NewMemory())
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func creditReq(ambassador, currency, task, value string) ledger.CreditRequest {
	return ledger.CreditRequest{
		AmbassadorID: ledger.AmbassadorID(ambassador),
		CurrencyID:   ledger.CurrencyID(currency),
		TaskID:       ledger.TaskID(task),
		Value:        dec(value),
	}
}

// =============================================================================
// LAZY WALLET CREATION
// =============================================================================

func TestCredit_FirstCredit_CreatesWallet(t *testing.T) {
	// GIVEN: An ambassador with no wallet for the currency
	// WHEN: A coin reward of 3.50 is credited
	// THEN: A wallet exists with balance 3.50 and exactly one entry of 3.50

	wl := newTestLedger()
	ctx := context.Background()

	entry, err := wl.Credit(ctx, creditReq("amb-1", "gems", "task-1", "3.50"))
	require.NoError(t, err)
	assert.True(t, entry.Value.Equal(dec("3.50")))

	balance, err := wl.Balance(ctx, "amb-1", "gems")
	require.NoError(t, err)
	assert.True(t, balance.Value.Equal(dec("3.50")), "balance should be 3.50, got %s", balance.Value)

	entries, err := wl.Entries(ctx, entry.WalletID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Value.Equal(dec("3.50")))
}

func TestBalance_MissingWallet_ReadsZero(t *testing.T) {
	// GIVEN: No wallet exists
	// WHEN: Reading the balance
	// THEN: Zero, and still no wallet is created

	wl := newTestLedger()
	ctx := context.Background()

	balance, err := wl.Balance(ctx, "amb-none", "gems")
	require.NoError(t, err)
	assert.True(t, balance.Value.IsZero())

	wallets, err := wl.Wallets(ctx, "amb-none")
	require.NoError(t, err)
	assert.Empty(t, wallets, "reading a balance must not create a wallet")
}

// =============================================================================
// ROUND-TRIP INVARIANT
// =============================================================================

func TestCredit_RoundTrip_BalanceEqualsEntrySum(t *testing.T) {
	// GIVEN: A sequence of credits with awkward decimal values
	// WHEN: All are applied to one wallet
	// THEN: Balance equals the exact decimal sum of all entries

	wl := newTestLedger()
	ctx := context.Background()

	values := []string{"0.1", "0.2", "3.50", "10", "0.007", "99.999"}
	expected := decimal.Zero
	var walletID ledger.WalletID
	for i, v := range values {
		entry, err := wl.Credit(ctx, creditReq("amb-1", "gems", fmt.Sprintf("task-%d", i), v))
		require.NoError(t, err)
		expected = expected.Add(dec(v))
		walletID = entry.WalletID
	}

	balance, err := wl.Balance(ctx, "amb-1", "gems")
	require.NoError(t, err)
	assert.True(t, balance.Value.Equal(expected), "want %s, got %s", expected, balance.Value)

	entries, err := wl.Entries(ctx, walletID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Value)
	}
	assert.True(t, sum.Equal(balance.Value))

	assert.NoError(t, wl.Reconcile(ctx, walletID))
}

func TestCredit_Monotonic_NeverDecreases(t *testing.T) {
	// GIVEN: A wallet receiving credits
	// WHEN: Observing the balance after each credit
	// THEN: It never decreases (no debit exists in this engine)

	wl := newTestLedger()
	ctx := context.Background()

	prev := decimal.Zero
	for i := 0; i < 10; i++ {
		_, err := wl.Credit(ctx, creditReq("amb-1", "gems", fmt.Sprintf("t-%d", i), "1.25"))
		require.NoError(t, err)

		balance, err := wl.Balance(ctx, "amb-1", "gems")
		require.NoError(t, err)
		assert.False(t, balance.Value.LessThan(prev))
		prev = balance.Value
	}
}

func TestCredit_NegativeValue_Rejected(t *testing.T) {
	wl := newTestLedger()

	_, err := wl.Credit(context.Background(), creditReq("amb-1", "gems", "task-1", "-5"))
	assert.ErrorIs(t, err, ledger.ErrNegativeCredit)
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestCredit_ConcurrentSameWallet_NoLostUpdates(t *testing.T) {
	// GIVEN: N concurrent completions crediting the same (ambassador, currency)
	// WHEN: All credits of value v are applied
	// THEN: Final balance is exactly N*v with N entries appended

	wl := newTestLedger()
	ctx := context.Background()

	const n = 50
	v := dec("2.5")

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// A hot wallet can exhaust the bounded retry; callers re-submit.
			var err error
			for {
				_, err = wl.Credit(ctx, creditReq("amb-1", "gems", fmt.Sprintf("task-%d", i), "2.5"))
				if err == nil || !ledger.IsRetryable(err) {
					break
				}
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	balance, err := wl.Balance(ctx, "amb-1", "gems")
	require.NoError(t, err)
	want := v.Mul(decimal.NewFromInt(n))
	assert.True(t, balance.Value.Equal(want), "want %s, got %s", want, balance.Value)

	wallets, err := wl.Wallets(ctx, "amb-1")
	require.NoError(t, err)
	require.Len(t, wallets, 1, "concurrent creations must converge on one wallet")

	entries, err := wl.Entries(ctx, wallets[0].ID)
	require.NoError(t, err)
	assert.Len(t, entries, n)
}

// =============================================================================
// CONFLICT RETRY
// =============================================================================

// conflictStore wraps the memory store and forces the first k ApplyCredit
// calls to lose the version race.
type conflictStore struct {
	ledger.Store
	mu        sync.Mutex
	remaining int
}

func (c *conflictStore) ApplyCredit(ctx context.Context, walletID ledger.WalletID, expectedVersion int64, entry ledger.Entry) error {
	c.mu.Lock()
	if c.remaining > 0 {
		c.remaining--
		c.mu.Unlock()
		return ledger.ErrWriteConflict
	}
	c.mu.Unlock()
	return c.Store.ApplyCredit(ctx, walletID, expectedVersion, entry)
}

func TestCredit_TransientConflict_RetriedWithSameAmount(t *testing.T) {
	// GIVEN: A store that loses the CAS race twice before succeeding
	// WHEN: Crediting 7.25
	// THEN: The credit lands once, for exactly 7.25

	cs := &conflictStore{Store: store.NewMemory(), remaining: 2}
	wl := ledger.NewWalletLedger(cs)
	ctx := context.Background()

	entry, err := wl.Credit(ctx, creditReq("amb-1", "gems", "task-1", "7.25"))
	require.NoError(t, err)
	assert.True(t, entry.Value.Equal(dec("7.25")))

	balance, err := wl.Balance(ctx, "amb-1", "gems")
	require.NoError(t, err)
	assert.True(t, balance.Value.Equal(dec("7.25")))
}

func TestCredit_PersistentConflict_BoundedFailure(t *testing.T) {
	// GIVEN: A store that always reports a write conflict
	// WHEN: Crediting
	// THEN: The loop gives up with RetriesExhaustedError, still retryable

	cs := &conflictStore{Store: store.NewMemory(), remaining: 1 << 30}
	wl := ledger.NewWalletLedger(cs)

	_, err := wl.Credit(context.Background(), creditReq("amb-1", "gems", "task-1", "1"))
	require.Error(t, err)

	var exhausted *ledger.RetriesExhaustedError
	assert.ErrorAs(t, err, &exhausted)
	assert.ErrorIs(t, err, ledger.ErrWriteConflict)
	assert.True(t, ledger.IsRetryable(err))
}

// =============================================================================
// IDEMPOTENCY KEYS
// =============================================================================

func TestCredit_DuplicateIdempotencyKey_Rejected(t *testing.T) {
	// GIVEN: A credit applied with an idempotency key
	// WHEN: The same key is replayed
	// THEN: The replay fails and the balance is unchanged

	wl := newTestLedger()
	ctx := context.Background()

	req := creditReq("amb-1", "gems", "task-1", "4")
	req.IdempotencyKey = "completion-task-1-amb-1"

	_, err := wl.Credit(ctx, req)
	require.NoError(t, err)

	_, err = wl.Credit(ctx, req)
	assert.ErrorIs(t, err, ledger.ErrDuplicateIdempotencyKey)

	balance, err := wl.Balance(ctx, "amb-1", "gems")
	require.NoError(t, err)
	assert.True(t, balance.Value.Equal(dec("4")))
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// lossyStore hides the newest entry from listings, simulating a store
// whose history no longer accounts for the balance.
type lossyStore struct {
	ledger.Store
	dropNewest bool
}

func (s *lossyStore) Entries(ctx context.Context, walletID ledger.WalletID) ([]ledger.Entry, error) {
	entries, err := s.Store.Entries(ctx, walletID)
	if err != nil || !s.dropNewest || len(entries) == 0 {
		return entries, err
	}
	return entries[:len(entries)-1], nil
}

func TestReconcile_HealthyWallet_InSync(t *testing.T) {
	wl := newTestLedger()
	ctx := context.Background()

	entry, err := wl.Credit(ctx, creditReq("amb-1", "gems", "task-1", "5"))
	require.NoError(t, err)
	assert.NoError(t, wl.Reconcile(ctx, entry.WalletID))
}

func TestReconcile_DriftingBalance_Detected(t *testing.T) {
	// GIVEN: A wallet whose entry history no longer sums to its balance
	// WHEN: Reconciling
	// THEN: DriftError naming both figures

	ls := &lossyStore{Store: store.NewMemory()}
	wl := ledger.NewWalletLedger(ls)
	ctx := context.Background()

	_, err := wl.Credit(ctx, creditReq("amb-1", "gems", "task-1", "5"))
	require.NoError(t, err)
	entry, err := wl.Credit(ctx, creditReq("amb-1", "gems", "task-2", "2"))
	require.NoError(t, err)

	ls.dropNewest = true
	err = wl.Reconcile(ctx, entry.WalletID)
	require.Error(t, err)

	var drift *ledger.DriftError
	require.ErrorAs(t, err, &drift)
	assert.ErrorIs(t, err, ledger.ErrLedgerDrift)
	assert.Equal(t, "7", drift.Balance)
	assert.Equal(t, "5", drift.EntriesSum)
}
