/*
store.go - Persistence interface for wallets and ledger entries

PURPOSE:
  Defines the interface between the ledger logic and the database.
  Different implementations can use SQLite or in-memory storage.

APPEND-ONLY CONTRACT:
  Entries are append-only:
  - ApplyCredit(): The ONLY write that touches entries
  - NO update or delete methods exist for entries
  Wallets are mutated only through ApplyCredit's versioned update.

ATOMICITY:
  ApplyCredit must apply the balance increment AND the entry append as
  one atomic unit, conditional on the wallet version the caller read.
  If the version moved, the store returns ErrWriteConflict and writes
  nothing. This is what makes concurrent credits to the same wallet
  lose-update-free.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - ledger/store/memory.go: In-memory for testing

SEE ALSO:
  - ledger.go: Higher-level credit path using Store
*/
package ledger

import "context"

// =============================================================================
// STORE - Wallet and entry persistence
// =============================================================================

// Store handles persistence of wallets and entries.
// IMPORTANT: Entries are APPEND-ONLY. No update, no delete. Ever.
type Store interface {
	// EnsureWallet returns the wallet for (ambassador, currency), creating it
	// with a zero balance if absent. Creation is an idempotent upsert: two
	// concurrent calls observe the same single wallet.
	EnsureWallet(ctx context.Context, ambassadorID AmbassadorID, currencyID CurrencyID) (Wallet, error)

	// FindWallet returns the wallet for (ambassador, currency).
	// Returns ErrWalletNotFound if it doesn't exist.
	FindWallet(ctx context.Context, ambassadorID AmbassadorID, currencyID CurrencyID) (Wallet, error)

	// GetWallet returns a wallet by id. Returns ErrWalletNotFound if absent.
	GetWallet(ctx context.Context, id WalletID) (Wallet, error)

	// ApplyCredit atomically sets balance += entry.Value and appends entry,
	// conditional on the wallet still being at expectedVersion.
	// Returns ErrWriteConflict if the version moved (nothing written).
	// Returns ErrDuplicateIdempotencyKey if entry.IdempotencyKey exists.
	ApplyCredit(ctx context.Context, walletID WalletID, expectedVersion int64, entry Entry) error

	// Entries returns all entries for a wallet, ordered by creation time.
	// Read-only.
	Entries(ctx context.Context, walletID WalletID) ([]Entry, error)

	// WalletsOf returns all wallets belonging to an ambassador.
	WalletsOf(ctx context.Context, ambassadorID AmbassadorID) ([]Wallet, error)
}
