/*
Package reward provides reward distribution for completed tasks.

PURPOSE:
  When an ambassador completes a task, every reward attached to that task
  must be applied exactly once. Rewards are heterogeneous: fungible coin
  credits land in the wallet ledger, while external role grants call out
  to a chat platform. One kind failing must never block the others.

KEY CONCEPTS IN THIS FILE (types.go):
  - Task: Read-only input describing the completed unit of work
  - Spec: One reward attached to a task (kind + raw value)
  - Ambassador: The recipient, with a level indexing the coefficient table
  - Applied: Per-spec outcome of a dispatch

DESIGN PRINCIPLES:
  1. Dispatch by kind through an explicit registry, not a type hierarchy
  2. Partial failure: each spec's outcome is independent and reported
  3. Task and Ambassador are read-only here; only the ledger mutates state

SEE ALSO:
  - strategy.go: Registry and dispatcher
  - coin.go: Fungible coin credits
  - role.go: External role grants
  - coefficient.go: Level multiplier table
*/
package reward

import (
	"github.com/orbit/reward-engine/ledger"
)

// =============================================================================
// REWARD KINDS
// =============================================================================

// Kind identifies which strategy fulfils a reward spec.
type Kind string

const (
	KindCoin         Kind = "coin"
	KindExternalRole Kind = "external_role"
)

// =============================================================================
// TASK - Read-only input owned by the surrounding system
// =============================================================================

type ProjectID string

// Task describes a published task at completion time. The engine treats it
// as immutable; editing a published task is the surrounding system's concern.
type Task struct {
	ID        ledger.TaskID
	ProjectID ProjectID

	// LevelCoefficient controls whether coin amounts are scaled by the
	// ambassador's level multiplier.
	LevelCoefficient bool

	// Rewards are applied in this order by the dispatcher.
	Rewards []Spec
}

// Spec is one reward attached to a task.
type Spec struct {
	Kind Kind

	// Value is the raw reward value: a decimal string for coin rewards,
	// an opaque role identifier for external role grants.
	Value string

	// CurrencyID is set for coin rewards only.
	CurrencyID ledger.CurrencyID
}

// CoinSpec returns the first coin-kind spec, which is the basis for
// estimation and the unit amount of a task.
func (t Task) CoinSpec() (Spec, bool) {
	return FirstCoinSpec(t.Rewards)
}

// FirstCoinSpec scans specs in order for the first coin reward.
func FirstCoinSpec(specs []Spec) (Spec, bool) {
	for _, s := range specs {
		if s.Kind == KindCoin {
			return s, true
		}
	}
	return Spec{}, false
}

// =============================================================================
// AMBASSADOR - Read-only recipient
// =============================================================================

type Ambassador struct {
	ID ledger.AmbassadorID

	// Level indexes into the coefficient table. Read-only to this engine.
	Level int
}

// =============================================================================
// APPLIED - Per-spec dispatch outcome
// =============================================================================

// Applied records the outcome of applying one reward spec.
type Applied struct {
	Kind Kind
	OK   bool

	// Err carries the machine-readable failure reason when OK is false.
	Err error

	// Entry is set for successful coin applications.
	Entry *ledger.Entry

	// Attempted is meaningful for external role grants: false means the
	// grant was skipped because a required account link is missing, which
	// is a normal business state, not a failure (OK is still true).
	Attempted bool
}
