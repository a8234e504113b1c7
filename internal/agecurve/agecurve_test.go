package agecurve

import (
	"math"
	"testing"

	"github.com/yourusername/fightprob/internal/persistence"
)

func syntheticModel(t *testing.T, division string) *Model {
	t.Helper()
	model, err := FitSynthetic(division)
	if err != nil {
		t.Fatalf("FitSynthetic(%s) failed: %v", division, err)
	}
	return model
}

func TestEffectBoundsAllDivisions(t *testing.T) {
	for division := range DivisionAnchors {
		model := syntheticModel(t, division)
		for age := 20.0; age <= 42.0; age += 0.5 {
			effect := model.Effect(age)
			if effect < -MaxEffect || effect > MaxEffect {
				t.Fatalf("%s effect(%v) = %v outside [-0.5, 0.5]", division, age, effect)
			}
		}
	}
}

func TestEffectAtAnchorIsZero(t *testing.T) {
	model := syntheticModel(t, "LW")
	if got := model.Effect(Anchor("LW")); math.Abs(got) > 1e-12 {
		t.Fatalf("effect at the anchor age should be zero, got %v", got)
	}
}

func TestEffectDeclinesAwayFromAnchor(t *testing.T) {
	model := syntheticModel(t, "WW")
	anchor := Anchor("WW")
	near := model.Effect(anchor + 1)
	far := model.Effect(anchor + 9)
	if far >= near {
		t.Fatalf("effect should decline away from the anchor: near=%v far=%v", near, far)
	}
	if model.Effect(22) >= model.Effect(anchor) {
		t.Fatalf("young ages should sit below the peak")
	}
}

func TestEffectSmoothness(t *testing.T) {
	model := syntheticModel(t, "MW")
	prev := model.Effect(20)
	for age := 21.0; age <= 42.0; age++ {
		cur := model.Effect(age)
		if math.Abs(cur-prev) > 0.15 {
			t.Fatalf("effect jumps by %v between ages %v and %v", math.Abs(cur-prev), age-1, age)
		}
		prev = cur
	}
}

func TestEffectClipsExtrapolation(t *testing.T) {
	model := syntheticModel(t, "HW")
	if got, want := model.Effect(55), model.Effect(42); got != want {
		t.Fatalf("extrapolation above the knot range should clip: %v vs %v", got, want)
	}
	if got, want := model.Effect(15), model.Effect(20); got != want {
		t.Fatalf("extrapolation below the knot range should clip: %v vs %v", got, want)
	}
}

func TestHeavierDivisionsAnchorOlder(t *testing.T) {
	if Anchor("HW") <= Anchor("FLW") {
		t.Fatalf("heavyweight anchor should exceed flyweight anchor")
	}
	if Anchor("unknown") != DefaultAnchor {
		t.Fatalf("unmapped divisions should use the default anchor")
	}
}

func TestFitFromBucketedHistory(t *testing.T) {
	ages := make([]float64, 0, 400)
	won := make([]bool, 0, 400)
	for i := 0; i < 400; i++ {
		age := 20 + float64(i%23)
		ages = append(ages, age)
		// Older fighters lose more often in this synthetic sample.
		won = append(won, i%23 < 12)
	}
	buckets, err := BucketOutcomes(ages, won)
	if err != nil {
		t.Fatalf("BucketOutcomes failed: %v", err)
	}
	if len(buckets) == 0 {
		t.Fatalf("expected populated buckets")
	}

	model, err := Fit("LW", buckets)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if model.Effect(25) < model.Effect(41) {
		t.Fatalf("fitted curve should reflect declining win rate with age")
	}
}

func TestBucketOutcomesLengthMismatch(t *testing.T) {
	if _, err := BucketOutcomes([]float64{30}, nil); err == nil {
		t.Fatalf("expected error on mismatched lengths")
	}
}

func TestRegistryFitPersistLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := persistence.NewFileStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	registry := NewRegistry(store, nil, nil)
	fitted, err := registry.GetOrFit("BW")
	if err != nil {
		t.Fatalf("GetOrFit failed: %v", err)
	}
	if !store.Exists("age_curves/BW") {
		t.Fatalf("fitted model should be persisted per division")
	}

	// A fresh registry over the same store loads the artifact instead of refitting.
	reloaded := NewRegistry(store, nil, nil)
	loaded, err := reloaded.GetOrFit("BW")
	if err != nil {
		t.Fatalf("GetOrFit on fresh registry failed: %v", err)
	}
	if math.Abs(loaded.BaselineProbability-fitted.BaselineProbability) > 1e-12 {
		t.Fatalf("loaded baseline %v differs from fitted %v", loaded.BaselineProbability, fitted.BaselineProbability)
	}

	registry.Clear()
	if _, err := registry.GetOrFit("BW"); err != nil {
		t.Fatalf("GetOrFit after Clear failed: %v", err)
	}
}

func TestRegistryUsesHistoryProvider(t *testing.T) {
	store, err := persistence.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	calls := 0
	provider := HistoryProviderFunc(func(division string) ([]Bucket, error) {
		calls++
		return []Bucket{
			{Age: 24, Wins: 30, Total: 50},
			{Age: 30, Wins: 35, Total: 50},
			{Age: 38, Wins: 15, Total: 50},
		}, nil
	})

	registry := NewRegistry(store, provider, nil)
	if _, err := registry.GetOrFit("MW"); err != nil {
		t.Fatalf("GetOrFit failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("history provider should be consulted exactly once, got %d", calls)
	}

	// Cached: no further provider calls.
	if _, err := registry.GetOrFit("MW"); err != nil {
		t.Fatalf("cached GetOrFit failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("cached lookup should not refit, provider called %d times", calls)
	}
}
