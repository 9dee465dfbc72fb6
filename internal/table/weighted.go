package table

import (
	"fmt"

	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
)

// WeightedEntry pairs a rollable with its relative weight.
type WeightedEntry[T, R any] struct {
	Rollable rollable.Rollable[T, R]
	Weight   float64
}

// Weighted picks one includable entry with probability proportional to its
// weight scaled by the table's roll modifier.
type Weighted[T, R any] struct {
	base[T, R]
	entries []WeightedEntry[T, R]
}

// NewWeighted builds a weighted table.
//
// Precondition: entries is non-empty; every weight is finite and >= 0.
// Postcondition: Returns a table or a construction error naming the offending entry.
func NewWeighted[T, R any](cfg Config[T, R], entries []WeightedEntry[T, R]) (*Weighted[T, R], error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("table %q: %w", cfg.ID, ErrNoEntries)
	}
	for i, e := range entries {
		if e.Rollable == nil {
			return nil, fmt.Errorf("table %q: entry[%d]: %w", cfg.ID, i, ErrNilRollable)
		}
		if !validWeight(e.Weight) {
			return nil, fmt.Errorf("table %q: entry[%d]: %w, got %v", cfg.ID, i, ErrInvalidWeight, e.Weight)
		}
	}
	return &Weighted[T, R]{
		base:    newBase(cfg, VariantWeighted),
		entries: append([]WeightedEntry[T, R](nil), entries...),
	}, nil
}

// Len returns the number of entries.
func (t *Weighted[T, R]) Len() int { return len(t.entries) }

// TotalWeight returns the sum of all entry weights, ignoring include predicates.
func (t *Weighted[T, R]) TotalWeight() float64 {
	total := 0.0
	for _, e := range t.entries {
		total += e.Weight
	}
	return total
}

// Roll implements rollable.Rollable.
func (t *Weighted[T, R]) Roll(target T, args rollable.Args) result.Result[R] {
	return t.run(target, args, t.selectResult)
}

func (t *Weighted[T, R]) selectResult(target T, args rollable.Args) result.Result[R] {
	cands := includable(target, len(t.entries), func(i int) rollable.Rollable[T, R] { return t.entries[i].Rollable })
	switch len(cands) {
	case 0:
		return result.Empty[R]()
	case 1:
		t.logPick(cands[0])
		return t.entries[cands[0]].Rollable.Roll(target, args)
	}
	weights := make([]float64, len(cands))
	for k, i := range cands {
		weights[k] = t.entries[i].Weight
	}
	i := cands[pickWeighted(t.src, weights, t.modifier(target))]
	t.logPick(i)
	return t.entries[i].Rollable.Roll(target, args)
}
