/*
Package ledger provides the wallet ledger engine.

PURPOSE:
  This package contains the types and algorithms for crediting ambassador
  wallets. Each wallet holds the balance for one (ambassador, currency)
  pair, and every credit is recorded as an immutable ledger entry. Balance
  and history can always be reconciled against each other.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity denominated in a currency
  - Wallet: Per-(ambassador, currency) balance, versioned for concurrency
  - Entry: An immutable ledger record of one credit event
  - Ambassador/Currency/Task IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Immutability: Entries are never modified or deleted
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Credit-only: No debit operation exists in this engine
  4. Reconcilable: Sum of entries always equals the wallet balance

SEE ALSO:
  - ledger.go: Credit path with compare-and-set retry
  - store.go: Persistence interface
  - errors.go: Error taxonomy
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity denominated in a currency
// =============================================================================

type Amount struct {
	Value    decimal.Decimal
	Currency CurrencyID
}

func NewAmount(value decimal.Decimal, currency CurrencyID) Amount {
	return Amount{Value: value, Currency: currency}
}

func NewAmountFromString(value string, currency CurrencyID) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d, Currency: currency}, nil
}

func (a Amount) Zero() Amount         { return Amount{Value: decimal.Zero, Currency: a.Currency} }
func (a Amount) Add(b Amount) Amount  { return Amount{Value: a.Value.Add(b.Value), Currency: a.Currency} }
func (a Amount) Mul(s decimal.Decimal) Amount {
	return Amount{Value: a.Value.Mul(s), Currency: a.Currency}
}
func (a Amount) IsZero() bool     { return a.Value.IsZero() }
func (a Amount) IsNegative() bool { return a.Value.IsNegative() }
func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Value.Equal(b.Value)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AmbassadorID string
type CurrencyID string
type TaskID string
type WalletID string
type EntryID string

// =============================================================================
// WALLET - Balance for one (ambassador, currency) pair
// =============================================================================

// Wallet holds the current balance of one ambassador in one currency.
// Wallets are created lazily on first credit, with a zero balance.
//
// Version is the optimistic-concurrency token: every successful credit
// increments it, and a credit submitted against a stale version fails
// with ErrWriteConflict.
type Wallet struct {
	ID           WalletID
	AmbassadorID AmbassadorID
	CurrencyID   CurrencyID
	Balance      decimal.Decimal
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (w Wallet) Amount() Amount {
	return Amount{Value: w.Balance, Currency: w.CurrencyID}
}

// =============================================================================
// ENTRY - Immutable record of one credit event
// =============================================================================

// Entry records one credit applied to a wallet.
//
// INVARIANTS:
//   - Append-only: never updated or deleted
//   - Entry.Value is the exact amount added to the wallet balance in the
//     same atomic operation that wrote the entry
type Entry struct {
	ID       EntryID
	WalletID WalletID
	TaskID   TaskID

	// Value is the credited amount, in the wallet's currency.
	Value decimal.Decimal

	// Points is an opaque rating annotation supplied by the caller.
	// The ledger stores it verbatim and never interprets it.
	Points string

	// IdempotencyKey, when non-empty, rejects replays of the same credit.
	IdempotencyKey string

	CreatedAt time.Time
}

// =============================================================================
// CREDIT REQUEST - Input to WalletLedger.Credit
// =============================================================================

type CreditRequest struct {
	AmbassadorID AmbassadorID
	CurrencyID   CurrencyID
	TaskID       TaskID
	Value        decimal.Decimal
	Points       string

	// Optional. Empty means no replay protection at the ledger level.
	IdempotencyKey string
}
