// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orbit/reward-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	wallets     map[walletKey]*ledger.Wallet
	byID        map[ledger.WalletID]*ledger.Wallet
	entries     map[ledger.WalletID][]ledger.Entry
	idempotency map[string]bool
}

type walletKey struct {
	AmbassadorID ledger.AmbassadorID
	CurrencyID   ledger.CurrencyID
}

func NewMemory() *Memory {
	return &Memory{
		wallets:     make(map[walletKey]*ledger.Wallet),
		byID:        make(map[ledger.WalletID]*ledger.Wallet),
		entries:     make(map[ledger.WalletID][]ledger.Entry),
		idempotency: make(map[string]bool),
	}
}

// EnsureWallet creates the wallet with a zero balance if absent.
// Idempotent: concurrent callers observe the same single wallet.
func (m *Memory) EnsureWallet(_ context.Context, ambassadorID ledger.AmbassadorID, currencyID ledger.CurrencyID) (ledger.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := walletKey{AmbassadorID: ambassadorID, CurrencyID: currencyID}
	if w, ok := m.wallets[k]; ok {
		return *w, nil
	}

	now := time.Now().UTC()
	w := &ledger.Wallet{
		ID:           ledger.WalletID(uuid.NewString()),
		AmbassadorID: ambassadorID,
		CurrencyID:   currencyID,
		Balance:      decimal.Zero,
		Version:      0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.wallets[k] = w
	m.byID[w.ID] = w
	return *w, nil
}

func (m *Memory) FindWallet(_ context.Context, ambassadorID ledger.AmbassadorID, currencyID ledger.CurrencyID) (ledger.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := walletKey{AmbassadorID: ambassadorID, CurrencyID: currencyID}
	w, ok := m.wallets[k]
	if !ok {
		return ledger.Wallet{}, ledger.ErrWalletNotFound
	}
	return *w, nil
}

func (m *Memory) GetWallet(_ context.Context, id ledger.WalletID) (ledger.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.byID[id]
	if !ok {
		return ledger.Wallet{}, ledger.ErrWalletNotFound
	}
	return *w, nil
}

// ApplyCredit applies balance += entry.Value and appends the entry as one
// unit, conditional on the wallet version. The single mutex section is what
// makes the pair atomic here; SQLite uses a transaction for the same effect.
func (m *Memory) ApplyCredit(_ context.Context, walletID ledger.WalletID, expectedVersion int64, entry ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.byID[walletID]
	if !ok {
		return ledger.ErrWalletNotFound
	}
	if entry.IdempotencyKey != "" && m.idempotency[entry.IdempotencyKey] {
		return ledger.ErrDuplicateIdempotencyKey
	}
	if w.Version != expectedVersion {
		return ledger.ErrWriteConflict
	}

	w.Balance = w.Balance.Add(entry.Value)
	w.Version++
	w.UpdatedAt = time.Now().UTC()
	m.entries[walletID] = append(m.entries[walletID], entry)
	if entry.IdempotencyKey != "" {
		m.idempotency[entry.IdempotencyKey] = true
	}
	return nil
}

func (m *Memory) Entries(_ context.Context, walletID ledger.WalletID) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Entry, len(m.entries[walletID]))
	copy(result, m.entries[walletID])
	return result, nil
}

func (m *Memory) WalletsOf(_ context.Context, ambassadorID ledger.AmbassadorID) ([]ledger.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Wallet
	for k, w := range m.wallets {
		if k.AmbassadorID == ambassadorID {
			result = append(result, *w)
		}
	}
	return result, nil
}

// Compile-time check that Memory implements ledger.Store.
var _ ledger.Store = (*Memory)(nil)
