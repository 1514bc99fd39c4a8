/*
ledger.go - Credit path with lazy wallet creation and bounded CAS retry

PURPOSE:
  WalletLedger is the only component that mutates persisted monetary
  state. It owns the credit invariants:

CRITICAL INVARIANTS:
  1. APPEND-ONLY: Entries are never updated or deleted
  2. ATOMIC: Balance increment and entry append happen together or not at all
  3. CREDIT-ONLY: No debit exists; balances are monotonically non-decreasing
  4. RECONCILABLE: Sum of a wallet's entries always equals its balance

CONCURRENCY:
  Concurrent credits to the same (ambassador, currency) pair are serialized
  through the wallet version: Credit reads the wallet, computes nothing
  stateful, and asks the store to apply the increment conditional on the
  version it read. A conflict means another credit landed first; the loop
  re-reads and retries with the SAME amount, up to maxCreditRetries.

WHY BOUNDED RETRY?
  A conflict is transient contention, not an error in the credit itself.
  Retrying with the same computed amount preserves exactness. The bound
  keeps a pathologically hot wallet from wedging a request forever; hitting
  it fails only this one credit.

EXAMPLE FLOW:
  1. Task completed, coin reward of 3.50
  2. Credit ensures wallet (amb-1, gems) exists -> balance 0, version 0
  3. ApplyCredit(wallet, v0, entry{3.50}) -> balance 3.50, version 1
  4. Concurrent credit with v0 -> ErrWriteConflict -> re-read, apply at v1

SEE ALSO:
  - store.go: ApplyCredit atomicity contract
  - errors.go: ErrWriteConflict, RetriesExhaustedError
*/
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxCreditRetries bounds the compare-and-set loop in Credit.
const maxCreditRetries = 5

// =============================================================================
// WALLET LEDGER
// =============================================================================

// WalletLedger applies credits to wallets through a Store.
type WalletLedger struct {
	store Store

	// now is swappable for deterministic tests.
	now func() time.Time
}

func NewWalletLedger(store Store) *WalletLedger {
	return &WalletLedger{store: store, now: time.Now}
}

// Credit applies one credit to the (ambassador, currency) wallet, creating
// the wallet lazily with a zero balance on first use.
//
// On success the returned Entry.Value is the exact amount that was added to
// the wallet balance in the same atomic operation. Once an entry is written
// it is final; there is no undo.
func (l *WalletLedger) Credit(ctx context.Context, req CreditRequest) (Entry, error) {
	if req.Value.IsNegative() {
		return Entry{}, ErrNegativeCredit
	}

	entry := Entry{
		ID:             EntryID(uuid.NewString()),
		TaskID:         req.TaskID,
		Value:          req.Value,
		Points:         req.Points,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      l.now().UTC(),
	}

	for attempt := 0; attempt < maxCreditRetries; attempt++ {
		wallet, err := l.store.EnsureWallet(ctx, req.AmbassadorID, req.CurrencyID)
		if err != nil {
			return Entry{}, err
		}

		entry.WalletID = wallet.ID
		err = l.store.ApplyCredit(ctx, wallet.ID, wallet.Version, entry)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, ErrWriteConflict) {
			return Entry{}, err
		}
		// Lost the race: re-read the wallet and retry the same amount.
	}

	return Entry{}, &RetriesExhaustedError{
		AmbassadorID: req.AmbassadorID,
		CurrencyID:   req.CurrencyID,
		Attempts:     maxCreditRetries,
	}
}

// Balance returns the current balance for (ambassador, currency).
// A missing wallet reads as zero; asking for a balance never creates one.
func (l *WalletLedger) Balance(ctx context.Context, ambassadorID AmbassadorID, currencyID CurrencyID) (Amount, error) {
	wallet, err := l.store.FindWallet(ctx, ambassadorID, currencyID)
	if errors.Is(err, ErrWalletNotFound) {
		return Amount{Value: decimal.Zero, Currency: currencyID}, nil
	}
	if err != nil {
		return Amount{}, err
	}
	return wallet.Amount(), nil
}

// Entries returns the full credit history for a wallet, chronologically.
func (l *WalletLedger) Entries(ctx context.Context, walletID WalletID) ([]Entry, error) {
	return l.store.Entries(ctx, walletID)
}

// Wallets returns all wallets held by an ambassador.
func (l *WalletLedger) Wallets(ctx context.Context, ambassadorID AmbassadorID) ([]Wallet, error) {
	return l.store.WalletsOf(ctx, ambassadorID)
}

// Reconcile verifies that the wallet balance equals the exact decimal sum of
// every entry ever appended to it. A mismatch means something outside this
// engine touched the tables; it is returned as a DriftError, never repaired.
func (l *WalletLedger) Reconcile(ctx context.Context, walletID WalletID) error {
	wallet, err := l.store.GetWallet(ctx, walletID)
	if err != nil {
		return err
	}
	entries, err := l.store.Entries(ctx, walletID)
	if err != nil {
		return err
	}

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Value)
	}
	if !sum.Equal(wallet.Balance) {
		return &DriftError{
			WalletID:   walletID,
			Balance:    wallet.Balance.String(),
			EntriesSum: sum.String(),
		}
	}
	return nil
}
