package game

import (
	"math/rand"
	"testing"
)

func TestFeasibleTargetsDefaultCatalog(t *testing.T) {
	rules := DefaultRules()
	targets := FeasibleTargets(rules)

	if len(targets) == 0 {
		t.Fatal("default catalog should have feasible targets")
	}

	// Seven smallest balls (1..7) sum to 28, the whole catalog to 78. Every
	// integer between is reachable by swapping one ball at a time.
	if targets[0] != 28 {
		t.Errorf("smallest target should be 28, got %d", targets[0])
	}
	if targets[len(targets)-1] != 78 {
		t.Errorf("largest target should be the catalog sum 78, got %d", targets[len(targets)-1])
	}
	if len(targets) != 51 {
		t.Errorf("expected 51 distinct targets (28..78), got %d", len(targets))
	}

	for i := 1; i < len(targets); i++ {
		if targets[i] <= targets[i-1] {
			t.Fatalf("targets not sorted/deduped at index %d: %d then %d", i, targets[i-1], targets[i])
		}
	}
}

func TestFeasibleTargetsRespectsMinCount(t *testing.T) {
	rules := DefaultRules()
	rules.MinPocketCount = 12

	targets := FeasibleTargets(rules)
	if len(targets) != 1 || targets[0] != 78 {
		t.Errorf("only the full catalog qualifies at min count 12, got %v", targets)
	}
}

func TestPickTargetFallsBackToCatalogSum(t *testing.T) {
	// Three balls can never make a seven-ball subset, so the whole-catalog
	// sum must come back and the game stays winnable.
	rules := DefaultRules()
	rules.Catalog = []CatalogBall{{Value: 5}, {Value: 6}, {Value: 7}}

	rng := rand.New(rand.NewSource(1))
	if got := PickTarget(rules, rng); got != 18 {
		t.Errorf("expected fallback target 18, got %d", got)
	}
}

func TestPickTargetAlwaysFeasible(t *testing.T) {
	rules := DefaultRules()
	feasible := make(map[int]bool)
	for _, s := range FeasibleTargets(rules) {
		feasible[s] = true
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		target := PickTarget(rules, rng)
		if !feasible[target] {
			t.Fatalf("picked infeasible target %d", target)
		}
	}
}

func TestFeasibleTargetsEmptyCatalog(t *testing.T) {
	rules := DefaultRules()
	rules.Catalog = nil
	if targets := FeasibleTargets(rules); targets != nil {
		t.Errorf("empty catalog should produce no targets, got %v", targets)
	}
}
