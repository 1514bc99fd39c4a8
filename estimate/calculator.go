/*
Package estimate computes projected coin cost for a draft task.

PURPOSE:
  Shows task authors a budget range BEFORE any assignment happens. The
  projection is read-only: it never creates wallets, entries, or any
  persisted record, and identical input always yields identical output.

BRANCHES (mutually exclusive, in priority order):
  1. Explicit assignee list + level scaling on:
       Total = sum over assignees of unit * coefficient(level(assignee))
  2. No list, scaling on, minLevel != maxLevel:
       Min = unit * n * coefficient(minLevel)
       Max = unit * n * coefficient(maxLevel)
     A range, because actual assignee levels aren't known yet.
  3. No list, scaling on, minLevel == maxLevel (including both absent):
       Total = unit * n * coefficient(level)
     An absent level defaults to the HIGHEST configured level. This is
     deliberate conservative budgeting: the author sees the most expensive
     outcome and gets headroom, not a lowball figure.
  4. Scaling off:
       Total = unit * n

  unit = value of the first coin-kind spec (no coin spec -> ConfigurationError)
  n    = Participants, or len(AssigneeIDs) when Participants is nil

PRECISION:
  All arithmetic is exact decimal. Convert to float only at the display
  boundary, never inside the computation.

SEE ALSO:
  - reward/coefficient.go: Lookup contract and default-level policy
*/
package estimate

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/orbit/reward-engine/ledger"
	"github.com/orbit/reward-engine/reward"
)

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// Input is the draft task configuration at authoring time.
type Input struct {
	MinLevel         *int
	MaxLevel         *int
	AssigneeIDs      []ledger.AmbassadorID
	Participants     *int
	LevelCoefficient bool
	Rewards          []reward.Spec
}

// Projection is the computed cost. Exactly one of {Min,Max} or Total is
// meaningful per branch; the unused fields are zero.
type Projection struct {
	Min   decimal.Decimal
	Max   decimal.Decimal
	Total decimal.Decimal
}

// =============================================================================
// CALCULATOR
// =============================================================================

type Calculator struct {
	Coefficients *reward.CoefficientTable
	Ambassadors  reward.AmbassadorLookup
}

func NewCalculator(coefficients *reward.CoefficientTable, ambassadors reward.AmbassadorLookup) *Calculator {
	return &Calculator{Coefficients: coefficients, Ambassadors: ambassadors}
}

// Estimate computes the cost projection for a draft task.
func (c *Calculator) Estimate(ctx context.Context, in Input) (Projection, error) {
	coinSpec, ok := reward.FirstCoinSpec(in.Rewards)
	if !ok {
		return Projection{}, &reward.ConfigurationError{Reason: "task has no coin reward spec"}
	}
	unit, err := decimal.NewFromString(coinSpec.Value)
	if err != nil {
		return Projection{}, &reward.ConfigurationError{
			Reason: "coin reward value " + coinSpec.Value + " is not a decimal",
		}
	}

	zero := Projection{Min: decimal.Zero, Max: decimal.Zero, Total: decimal.Zero}

	// Branch 1: explicit assignees, scaled per actual level.
	if in.LevelCoefficient && len(in.AssigneeIDs) > 0 {
		total := decimal.Zero
		for _, id := range in.AssigneeIDs {
			level, err := c.Ambassadors.LevelOf(ctx, id)
			if err != nil {
				return Projection{}, err
			}
			coeff, err := c.Coefficients.Coefficient(level)
			if err != nil {
				return Projection{}, err
			}
			total = total.Add(unit.Mul(coeff))
		}
		zero.Total = total
		return zero, nil
	}

	n := decimal.NewFromInt(int64(c.participantCount(in)))

	// Branch 4: no level scaling at all.
	if !in.LevelCoefficient {
		zero.Total = unit.Mul(n)
		return zero, nil
	}

	minLevel, maxLevel := c.levelBounds(in)

	// Branch 2: a genuine range.
	if minLevel != maxLevel {
		minCoeff, err := c.Coefficients.Coefficient(minLevel)
		if err != nil {
			return Projection{}, err
		}
		maxCoeff, err := c.Coefficients.Coefficient(maxLevel)
		if err != nil {
			return Projection{}, err
		}
		zero.Min = unit.Mul(n).Mul(minCoeff)
		zero.Max = unit.Mul(n).Mul(maxCoeff)
		return zero, nil
	}

	// Branch 3: single known (or defaulted) level.
	coeff, err := c.Coefficients.Coefficient(minLevel)
	if err != nil {
		return Projection{}, err
	}
	zero.Total = unit.Mul(n).Mul(coeff)
	return zero, nil
}

// participantCount resolves n: explicit Participants wins, otherwise the
// explicit-list length (possibly zero).
func (c *Calculator) participantCount(in Input) int {
	if in.Participants != nil {
		return *in.Participants
	}
	return len(in.AssigneeIDs)
}

// levelBounds resolves the min/max level bounds, each defaulting to the
// highest configured level when absent (conservative budgeting policy).
func (c *Calculator) levelBounds(in Input) (int, int) {
	highest := c.Coefficients.HighestLevel()
	minLevel, maxLevel := highest, highest
	if in.MinLevel != nil {
		minLevel = *in.MinLevel
	}
	if in.MaxLevel != nil {
		maxLevel = *in.MaxLevel
	}
	return minLevel, maxLevel
}
