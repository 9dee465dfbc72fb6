package table

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
)

// DrawEntry is an entry that can be drawn a finite number of times.
type DrawEntry[T, R any] struct {
	Rollable rollable.Rollable[T, R]
	// Draws is the initial number of draws.
	Draws int32
	// OnExhausted fires when this entry's remaining draws reach zero. Optional.
	OnExhausted func(target T)
}

// Exhaustive draws entries without replacement until every entry is spent.
//
// The uniform form picks evenly among entries with draws left; the weighted
// form picks proportionally to each entry's remaining draws, which models a
// deck that thins as it is dealt. An exhausted table takes the veto path and
// yields Empty until Reset.
type Exhaustive[T, R any] struct {
	base[T, R]
	entries     []DrawEntry[T, R]
	remaining   []int32
	left        int64
	weighted    bool
	onExhausted func(target T)
}

// NewExhaustive builds a uniform exhaustive table. onExhausted fires when the
// last draw of the table is taken; it may be nil.
//
// Precondition: entries is non-empty and every Draws >= 1.
func NewExhaustive[T, R any](cfg Config[T, R], entries []DrawEntry[T, R], onExhausted func(T)) (*Exhaustive[T, R], error) {
	return newExhaustive(cfg, entries, onExhausted, false)
}

// NewWeightedExhaustive builds an exhaustive table weighted by remaining draws.
//
// Precondition: entries is non-empty and every Draws >= 1.
func NewWeightedExhaustive[T, R any](cfg Config[T, R], entries []DrawEntry[T, R], onExhausted func(T)) (*Exhaustive[T, R], error) {
	return newExhaustive(cfg, entries, onExhausted, true)
}

func newExhaustive[T, R any](cfg Config[T, R], entries []DrawEntry[T, R], onExhausted func(T), weighted bool) (*Exhaustive[T, R], error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("table %q: %w", cfg.ID, ErrNoEntries)
	}
	for i, e := range entries {
		if e.Rollable == nil {
			return nil, fmt.Errorf("table %q: entry[%d]: %w", cfg.ID, i, ErrNilRollable)
		}
		if e.Draws < 1 {
			return nil, fmt.Errorf("table %q: entry[%d]: %w, got %d", cfg.ID, i, ErrInvalidDraws, e.Draws)
		}
	}
	variant := VariantExhaustive
	if weighted {
		variant = VariantWeightedExhaustive
	}
	t := &Exhaustive[T, R]{
		base:        newBase(cfg, variant),
		entries:     append([]DrawEntry[T, R](nil), entries...),
		remaining:   make([]int32, len(entries)),
		weighted:    weighted,
		onExhausted: onExhausted,
	}
	t.hooks = t.hooks.WithVeto(func(T) bool { return t.Exhausted() })
	t.Reset()
	return t, nil
}

// Len returns the number of entries.
func (t *Exhaustive[T, R]) Len() int { return len(t.entries) }

// Remaining returns the draws left for entry i.
//
// Precondition: 0 <= i < Len().
func (t *Exhaustive[T, R]) Remaining(i int) int32 { return t.remaining[i] }

// RemainingTotal returns the draws left across the table.
func (t *Exhaustive[T, R]) RemainingTotal() int64 { return t.left }

// Exhausted reports whether every entry is spent.
func (t *Exhaustive[T, R]) Exhausted() bool { return t.left == 0 }

// Reset restores every entry to its initial draw count.
//
// Postcondition: Remaining(i) == entries[i].Draws for all i; Exhausted() is false.
func (t *Exhaustive[T, R]) Reset() {
	t.left = 0
	for i, e := range t.entries {
		t.remaining[i] = e.Draws
		t.left += int64(e.Draws)
	}
}

// Roll implements rollable.Rollable.
func (t *Exhaustive[T, R]) Roll(target T, args rollable.Args) result.Result[R] {
	return t.run(target, args, t.selectResult)
}

func (t *Exhaustive[T, R]) selectResult(target T, args rollable.Args) result.Result[R] {
	cands := make([]int, 0, len(t.entries))
	for i, e := range t.entries {
		if t.remaining[i] > 0 && e.Rollable.IncludeInRoll(target) {
			cands = append(cands, i)
		}
	}
	if len(cands) == 0 {
		return result.Empty[R]()
	}

	i := cands[0]
	if len(cands) > 1 {
		if t.weighted {
			weights := make([]float64, len(cands))
			for k, c := range cands {
				weights[k] = float64(t.remaining[c])
			}
			i = cands[pickWeighted(t.src, weights, 1)]
		} else {
			i = cands[t.src.Intn(len(cands))]
		}
	}
	t.logPick(i)

	t.remaining[i]--
	t.left--
	out := t.entries[i].Rollable.Roll(target, args)

	if t.remaining[i] == 0 {
		t.logger.Debug("table entry exhausted", zap.String("table", t.id), zap.Int("entry", i))
		if cb := t.entries[i].OnExhausted; cb != nil {
			cb(target)
		}
	}
	if t.left == 0 {
		t.logger.Debug("table exhausted", zap.String("table", t.id))
		if t.onExhausted != nil {
			t.onExhausted(target)
		}
	}
	return out
}
