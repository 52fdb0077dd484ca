package game

import (
	"math/bits"
	"math/rand"
	"sort"
)

// FeasibleTargets enumerates every subset of the catalog with at least
// MinPocketCount balls and returns the distinct achievable sums, sorted.
// The catalog is small (12 by default) so the 2^n sweep is cheap and avoids
// any cleverness around which sums are reachable.
func FeasibleTargets(rules Rules) []int {
	values := rules.CatalogValues()
	n := len(values)
	if n == 0 || n > 30 {
		return nil
	}

	sums := make(map[int]bool)
	for mask := uint32(1); mask < uint32(1)<<n; mask++ {
		if bits.OnesCount32(mask) < rules.MinPocketCount {
			continue
		}
		total := 0
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				total += values[i]
			}
		}
		sums[total] = true
	}

	targets := make([]int, 0, len(sums))
	for s := range sums {
		targets = append(targets, s)
	}
	sort.Ints(targets)
	return targets
}

// PickTarget draws a uniform random target from the feasible sums. When no
// subset of the required size exists the whole-catalog sum is the target, so
// every session starts winnable.
func PickTarget(rules Rules, rng *rand.Rand) int {
	targets := FeasibleTargets(rules)
	if len(targets) == 0 {
		return rules.CatalogSum()
	}
	return targets[rng.Intn(len(targets))]
}
