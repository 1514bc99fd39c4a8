/*
coefficient.go - Level multiplier table

PURPOSE:
  Maps an ambassador's level to the multiplier applied to coin rewards.
  The table is supplied by configuration and passed explicitly into the
  components that need it (calculator, coin strategy) - never read from
  ambient global state - so tests can use arbitrary tables.

LOOKUP CONTRACT:
  Coefficient(level) fails with a ConfigurationError when the level has no
  entry. It never silently defaults to 1: a missing entry means the deploy
  is misconfigured, and paying 1x instead of surfacing that would hide it.

DEFAULT LEVEL POLICY:
  When an estimation has no level bound configured, the HIGHEST configured
  level is used. This is deliberate conservative budgeting - the projection
  shows the most expensive outcome, giving authors headroom rather than a
  lowball figure.

CONCURRENCY:
  Immutable after construction; safe for concurrent reads without
  synchronization.
*/
package reward

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COEFFICIENT TABLE
// =============================================================================

type CoefficientTable struct {
	byLevel map[int]decimal.Decimal
	levels  []int // ascending
}

// NewCoefficientTable builds a table from level -> decimal-string entries.
// Rejects empty tables, non-positive levels, and negative multipliers.
func NewCoefficientTable(entries map[int]string) (*CoefficientTable, error) {
	if len(entries) == 0 {
		return nil, &ConfigurationError{Reason: "coefficient table is empty"}
	}

	t := &CoefficientTable{byLevel: make(map[int]decimal.Decimal, len(entries))}
	for level, raw := range entries {
		if level <= 0 {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("invalid level %d", level)}
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("level %d: bad coefficient %q", level, raw)}
		}
		if d.IsNegative() {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("level %d: negative coefficient %s", level, raw)}
		}
		t.byLevel[level] = d
		t.levels = append(t.levels, level)
	}
	sort.Ints(t.levels)
	return t, nil
}

// MustCoefficientTable is NewCoefficientTable that panics on error.
// For tests and static configuration only.
func MustCoefficientTable(entries map[int]string) *CoefficientTable {
	t, err := NewCoefficientTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Coefficient returns the multiplier for a level.
// A missing entry is a ConfigurationError, never a default of 1.
func (t *CoefficientTable) Coefficient(level int) (decimal.Decimal, error) {
	d, ok := t.byLevel[level]
	if !ok {
		return decimal.Decimal{}, &ConfigurationError{
			Reason: fmt.Sprintf("no coefficient configured for level %d", level),
		}
	}
	return d, nil
}

// HighestLevel returns the largest configured level. This is the default
// used when an estimation carries no level bound (conservative budgeting).
func (t *CoefficientTable) HighestLevel() int {
	return t.levels[len(t.levels)-1]
}

// Levels returns the configured levels in ascending order.
func (t *CoefficientTable) Levels() []int {
	out := make([]int, len(t.levels))
	copy(out, t.levels)
	return out
}
