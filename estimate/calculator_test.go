package estimate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/orbit/reward-engine/estimate"
	"github.com/orbit/reward-engine/ledger"
	"github.com/orbit/reward-engine/reward"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func testTable() *reward.CoefficientTable {
	return reward.MustCoefficientTable(map[int]string{
		1: "1.0",
		2: "1.5",
		3: "2.0",
	})
}

func newCalculator(levels map[ledger.AmbassadorID]int) *estimate.Calculator {
	lookup := reward.NewStaticLookup()
	for id, level := range levels {
		lookup.SetLevel(id, level)
	}
	return estimate.NewCalculator(testTable(), lookup)
}

func coinRewards(value string) []reward.Spec {
	return []reward.Spec{{Kind: reward.KindCoin, Value: value, CurrencyID: "gems"}}
}

func intPtr(n int) *int { return &n }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertProjection(t *testing.T, got estimate.Projection, min, max, total string) {
	t.Helper()
	if !got.Min.Equal(dec(min)) {
		t.Errorf("min: expected %s, got %v", min, got.Min)
	}
	if !got.Max.Equal(dec(max)) {
		t.Errorf("max: expected %s, got %v", max, got.Max)
	}
	if !got.Total.Equal(dec(total)) {
		t.Errorf("total: expected %s, got %v", total, got.Total)
	}
}

// =============================================================================
// BRANCH TESTS
// =============================================================================

func TestEstimate_CoefficientDisabled_FlatTotal(t *testing.T) {
	// GIVEN: unit=10, level_coefficient=false, 5 participants
	// WHEN: Estimating
	// THEN: {min:0, max:0, total:50}

	calc := newCalculator(nil)

	p, err := calc.Estimate(context.Background(), estimate.Input{
		Participants:     intPtr(5),
		LevelCoefficient: false,
		Rewards:          coinRewards("10"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertProjection(t, p, "0", "0", "50")
}

func TestEstimate_LevelRange_MinMax(t *testing.T) {
	// GIVEN: unit=10, scaling on, minLevel=1, maxLevel=3, 2 participants
	// WHEN: Estimating
	// THEN: {min:20, max:40, total:0} - a range, levels unknown until assignment

	calc := newCalculator(nil)

	p, err := calc.Estimate(context.Background(), estimate.Input{
		MinLevel:         intPtr(1),
		MaxLevel:         intPtr(3),
		Participants:     intPtr(2),
		LevelCoefficient: true,
		Rewards:          coinRewards("10"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertProjection(t, p, "20", "40", "0")
}

func TestEstimate_SingleLevel_Total(t *testing.T) {
	// GIVEN: unit=10, scaling on, minLevel=maxLevel=2, 4 participants
	// WHEN: Estimating
	// THEN: {min:0, max:0, total:60}  (10 * 4 * 1.5)

	calc := newCalculator(nil)

	p, err := calc.Estimate(context.Background(), estimate.Input{
		MinLevel:         intPtr(2),
		MaxLevel:         intPtr(2),
		Participants:     intPtr(4),
		LevelCoefficient: true,
		Rewards:          coinRewards("10"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertProjection(t, p, "0", "0", "60")
}

func TestEstimate_ExplicitAssignees_SumOfScaledUnits(t *testing.T) {
	// GIVEN: unit=5, scaling on, explicit assignees at levels 1, 2, 3
	// WHEN: Estimating
	// THEN: total = 5*1.0 + 5*1.5 + 5*2.0 = 22.5

	calc := newCalculator(map[ledger.AmbassadorID]int{
		"amb-1": 1,
		"amb-2": 2,
		"amb-3": 3,
	})

	p, err := calc.Estimate(context.Background(), estimate.Input{
		AssigneeIDs:      []ledger.AmbassadorID{"amb-1", "amb-2", "amb-3"},
		LevelCoefficient: true,
		Rewards:          coinRewards("5"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertProjection(t, p, "0", "0", "22.5")
}

// =============================================================================
// DEFAULT POLICIES
// =============================================================================

func TestEstimate_NoLevelBounds_DefaultsToHighestLevel(t *testing.T) {
	// GIVEN: No min/max level configured, scaling on
	// WHEN: Estimating for 2 participants with unit 10
	// THEN: The highest configured level (3, coefficient 2.0) is assumed:
	//       total = 10 * 2 * 2.0 = 40. Conservative headroom, by policy.

	calc := newCalculator(nil)

	p, err := calc.Estimate(context.Background(), estimate.Input{
		Participants:     intPtr(2),
		LevelCoefficient: true,
		Rewards:          coinRewards("10"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertProjection(t, p, "0", "0", "40")
}

func TestEstimate_ParticipantsDefaultToAssigneeListLength(t *testing.T) {
	// GIVEN: No participant count; two explicit assignees; scaling OFF so
	//        the list only supplies the count
	// WHEN: Estimating with unit 10
	// THEN: total = 10 * 2

	calc := newCalculator(nil)

	p, err := calc.Estimate(context.Background(), estimate.Input{
		AssigneeIDs:      []ledger.AmbassadorID{"amb-1", "amb-2"},
		LevelCoefficient: false,
		Rewards:          coinRewards("10"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertProjection(t, p, "0", "0", "20")
}

func TestEstimate_ExplicitAssigneesWinOverRange(t *testing.T) {
	// Branch priority: an explicit list with scaling on ignores level bounds.
	calc := newCalculator(map[ledger.AmbassadorID]int{"amb-1": 1})

	p, err := calc.Estimate(context.Background(), estimate.Input{
		MinLevel:         intPtr(1),
		MaxLevel:         intPtr(3),
		AssigneeIDs:      []ledger.AmbassadorID{"amb-1"},
		LevelCoefficient: true,
		Rewards:          coinRewards("10"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertProjection(t, p, "0", "0", "10")
}

// =============================================================================
// ERRORS AND PURITY
// =============================================================================

func TestEstimate_NoCoinSpec_ConfigurationError(t *testing.T) {
	calc := newCalculator(nil)

	_, err := calc.Estimate(context.Background(), estimate.Input{
		Participants:     intPtr(3),
		LevelCoefficient: false,
		Rewards:          []reward.Spec{{Kind: reward.KindExternalRole, Value: "role-1"}},
	})
	if err == nil {
		t.Fatal("expected an error when no coin spec exists")
	}
	if !errors.Is(err, reward.ErrMisconfigured) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestEstimate_MissingCoefficientForBound_Fails(t *testing.T) {
	calc := newCalculator(nil)

	_, err := calc.Estimate(context.Background(), estimate.Input{
		MinLevel:         intPtr(1),
		MaxLevel:         intPtr(9),
		Participants:     intPtr(1),
		LevelCoefficient: true,
		Rewards:          coinRewards("10"),
	})
	if !errors.Is(err, reward.ErrMisconfigured) {
		t.Errorf("expected configuration error for level 9, got %v", err)
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	// Same input twice yields identical output; no state is touched.
	calc := newCalculator(nil)
	in := estimate.Input{
		MinLevel:         intPtr(1),
		MaxLevel:         intPtr(3),
		Participants:     intPtr(2),
		LevelCoefficient: true,
		Rewards:          coinRewards("10"),
	}

	first, err := calc.Estimate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := calc.Estimate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Min.Equal(second.Min) || !first.Max.Equal(second.Max) || !first.Total.Equal(second.Total) {
		t.Errorf("projections differ: %+v vs %+v", first, second)
	}
}

func TestEstimate_ExactDecimals_NoFloatDrift(t *testing.T) {
	// 0.1 * 3 must be exactly 0.3, not 0.30000000000000004.
	calc := newCalculator(nil)

	p, err := calc.Estimate(context.Background(), estimate.Input{
		Participants:     intPtr(3),
		LevelCoefficient: false,
		Rewards:          coinRewards("0.1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Total.String() != "0.3" {
		t.Errorf("expected exactly 0.3, got %s", p.Total.String())
	}
}
