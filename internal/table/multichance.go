package table

import (
	"fmt"
	"math"

	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
)

// ChanceEntry pairs a rollable with its independent inclusion chance in percent.
type ChanceEntry[T, R any] struct {
	Rollable rollable.Rollable[T, R]
	Chance   float64
}

// MultiChance evaluates every includable entry independently and merges the
// results of all entries whose chance roll succeeds.
type MultiChance[T, R any] struct {
	base[T, R]
	entries []ChanceEntry[T, R]
}

// NewMultiChance builds a multi-chance table.
//
// Precondition: entries is non-empty; every chance is within [0, 100].
func NewMultiChance[T, R any](cfg Config[T, R], entries []ChanceEntry[T, R]) (*MultiChance[T, R], error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("table %q: %w", cfg.ID, ErrNoEntries)
	}
	for i, e := range entries {
		if e.Rollable == nil {
			return nil, fmt.Errorf("table %q: entry[%d]: %w", cfg.ID, i, ErrNilRollable)
		}
		if !validChance(e.Chance) {
			return nil, fmt.Errorf("table %q: entry[%d]: %w, got %v", cfg.ID, i, ErrInvalidChance, e.Chance)
		}
	}
	return &MultiChance[T, R]{
		base:    newBase(cfg, VariantMultiChance),
		entries: append([]ChanceEntry[T, R](nil), entries...),
	}, nil
}

// Len returns the number of entries.
func (t *MultiChance[T, R]) Len() int { return len(t.entries) }

// Roll implements rollable.Rollable.
func (t *MultiChance[T, R]) Roll(target T, args rollable.Args) result.Result[R] {
	return t.run(target, args, t.selectResult)
}

func (t *MultiChance[T, R]) selectResult(target T, args rollable.Args) result.Result[R] {
	cands := includable(target, len(t.entries), func(i int) rollable.Rollable[T, R] { return t.entries[i].Rollable })
	if len(cands) == 0 {
		return result.Empty[R]()
	}
	mod := t.modifier(target)
	hits := make([]int, 0, len(cands))
	for _, i := range cands {
		if passesChance(t.src, t.entries[i].Chance, mod) {
			hits = append(hits, i)
		}
	}
	rolled := make([]result.Result[R], 0, len(hits))
	for _, i := range hits {
		t.logPick(i)
		rolled = append(rolled, t.entries[i].Rollable.Roll(target, args))
	}
	return result.Merge(rolled...)
}

func validChance(c float64) bool {
	return !math.IsNaN(c) && c >= 0 && c <= 100
}
