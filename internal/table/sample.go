package table

import (
	"math"

	"github.com/nb2rs/dtx/internal/dice"
)

// chanceEpsilon extends the chance roll range just past 100.
const chanceEpsilon = 1e-9

type weightGroup struct {
	weight  float64
	members []int
}

// groupByWeight groups candidate positions sharing an identical weight,
// in order of first appearance.
func groupByWeight(weights []float64) []weightGroup {
	groups := make([]weightGroup, 0, len(weights))
	index := make(map[float64]int, len(weights))
	for i, w := range weights {
		if g, ok := index[w]; ok {
			groups[g].members = append(groups[g].members, i)
			continue
		}
		index[w] = len(groups)
		groups = append(groups, weightGroup{weight: w, members: []int{i}})
	}
	return groups
}

// pickWeighted selects a position in weights.
//
// It draws r in [0, sum(weights)) and walks the positions in table order,
// subtracting weight*modifier until the remainder is <= 0. If rounding
// exhausts the walk, the last position with positive weight is used.
//
// With a modifier of 1 identical weights are walked as one group of weight
// w*members that re-samples uniformly among its members. Any other modifier
// makes the outcome depend on position, so grouping is skipped.
//
// Precondition: len(weights) >= 1.
// Postcondition: 0 <= result < len(weights).
func pickWeighted(src dice.Source, weights []float64, modifier float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := src.Float64() * total

	if modifier != 1 {
		chosen := len(weights) - 1
		for i, w := range weights {
			if w <= 0 {
				continue
			}
			chosen = i
			r -= w * modifier
			if r <= 0 {
				break
			}
		}
		return chosen
	}

	groups := groupByWeight(weights)
	chosen := -1
	for gi, g := range groups {
		if g.weight <= 0 {
			continue
		}
		chosen = gi
		r -= g.weight * float64(len(g.members))
		if r <= 0 {
			break
		}
	}
	if chosen < 0 {
		chosen = len(groups) - 1
	}
	members := groups[chosen].members
	if len(members) == 1 {
		return members[0]
	}
	return members[src.Intn(len(members))]
}

// passesChance reports whether an independent chance roll succeeds.
// Chances of 100 or more always pass; chances of 0 or less never do.
func passesChance(src dice.Source, chance, modifier float64) bool {
	if chance >= 100 {
		return true
	}
	if chance <= 0 || math.IsNaN(chance) {
		return false
	}
	roll := src.Float64() * (100 + chanceEpsilon)
	return roll*modifier <= chance
}
