/*
errors.go - Centralized error types for the wallet ledger

PURPOSE:
  All ledger error types in one place for consistency and discoverability.
  Callers should match with errors.Is / errors.As, never string comparison.

ERROR CATEGORIES:
  1. Conflict errors - Optimistic-concurrency and idempotency collisions
  2. Not-found errors - Missing wallets
  3. Integrity errors - Ledger/balance drift detected by reconciliation

USAGE:
  if errors.Is(err, ledger.ErrWriteConflict) {
      // safe to retry with the same amount
  }

SEE ALSO:
  - ledger.go: Uses these errors in the credit retry loop
  - store.go: Store implementations return the sentinels
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrWriteConflict is returned when a credit loses an optimistic-concurrency
	// race on a wallet. The credit did not apply; retrying with the same amount
	// is safe and expected.
	ErrWriteConflict = errors.New("wallet write conflict")

	// ErrDuplicateIdempotencyKey is returned when an entry with the same
	// idempotency key already exists. Expected behavior for replays.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrWalletNotFound is returned when a referenced wallet doesn't exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrNegativeCredit is returned when a credit request carries a negative
	// value. No debit operation exists in this engine.
	ErrNegativeCredit = errors.New("credit value must not be negative")

	// ErrLedgerDrift is returned when reconciliation finds the wallet balance
	// diverging from the sum of its entries.
	ErrLedgerDrift = errors.New("ledger drift detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RetriesExhaustedError is returned when a credit keeps losing the
// compare-and-set race beyond the bounded retry budget.
type RetriesExhaustedError struct {
	AmbassadorID AmbassadorID
	CurrencyID   CurrencyID
	Attempts     int
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("credit to wallet (%s, %s) failed after %d attempts",
		e.AmbassadorID, e.CurrencyID, e.Attempts)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return ErrWriteConflict
}

// DriftError reports a balance that no longer matches the entry history.
type DriftError struct {
	WalletID   WalletID
	Balance    string
	EntriesSum string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("wallet %s: balance %s != entries sum %s",
		e.WalletID, e.Balance, e.EntriesSum)
}

func (e *DriftError) Unwrap() error {
	return ErrLedgerDrift
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrWriteConflict)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateIdempotencyKey) ||
		errors.Is(err, ErrNegativeCredit)
}

// IsNotFound returns true if the error indicates a missing wallet.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWalletNotFound)
}
