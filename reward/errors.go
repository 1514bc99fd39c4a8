/*
errors.go - Error taxonomy for reward distribution

ERROR CATEGORIES:
  1. ConfigurationError - Bad or missing configuration (coefficient entry,
     coin spec, unparseable value). Fatal to the single operation, not retried.
  2. UnsupportedKindError - A spec names a kind with no registered strategy.
     Reported per-spec; sibling specs still run.
  3. GrantError - Best-effort external grant failed. Non-fatal, never rolled
     back against the ledger, eligible for out-of-band retry.

SEE ALSO:
  - ledger/errors.go: ErrWriteConflict and friends surface through coin
    applications unchanged
*/
package reward

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedKind is the sentinel under every UnsupportedKindError.
	ErrUnsupportedKind = errors.New("unsupported reward kind")

	// ErrGrantFailed is the sentinel under every GrantError.
	ErrGrantFailed = errors.New("external grant failed")

	// ErrMisconfigured is the sentinel under every ConfigurationError.
	ErrMisconfigured = errors.New("reward configuration error")
)

// ConfigurationError reports missing or invalid reward configuration.
// It never silently defaults: a level with no coefficient entry is an
// error, not a multiplier of 1.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("reward configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrMisconfigured }

// UnsupportedKindError reports a spec whose kind has no registered strategy.
type UnsupportedKindError struct {
	Kind Kind
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported reward kind %q", e.Kind)
}

func (e *UnsupportedKindError) Unwrap() error { return ErrUnsupportedKind }

// GrantError reports a failed best-effort external grant.
type GrantError struct {
	RoleID  string
	GuildID string
	Cause   error
}

func (e *GrantError) Error() string {
	return fmt.Sprintf("grant of role %s in guild %s failed: %v", e.RoleID, e.GuildID, e.Cause)
}

func (e *GrantError) Unwrap() error { return ErrGrantFailed }
