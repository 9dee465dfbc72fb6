package table

import (
	"fmt"

	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
)

// Sequential rolls its entries round-robin.
//
// Invariant: 0 <= Cursor() < Len().
type Sequential[T, R any] struct {
	base[T, R]
	entries []rollable.Rollable[T, R]
	cursor  int
	active  bool
	onWrap  func(target T)
}

// NewSequential builds a round-robin table. onWrap fires once each time the
// cursor wraps back to the first entry; it may be nil.
//
// Precondition: entries is non-empty.
func NewSequential[T, R any](cfg Config[T, R], entries []rollable.Rollable[T, R], onWrap func(T)) (*Sequential[T, R], error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("table %q: %w", cfg.ID, ErrNoEntries)
	}
	for i, e := range entries {
		if e == nil {
			return nil, fmt.Errorf("table %q: entry[%d]: %w", cfg.ID, i, ErrNilRollable)
		}
	}
	return &Sequential[T, R]{
		base:    newBase(cfg, VariantSequential),
		entries: append([]rollable.Rollable[T, R](nil), entries...),
		active:  true,
		onWrap:  onWrap,
	}, nil
}

// Len returns the number of entries.
func (t *Sequential[T, R]) Len() int { return len(t.entries) }

// Cursor returns the position of the entry the next roll will use.
func (t *Sequential[T, R]) Cursor() int { return t.cursor }

// Active reports whether rolls advance the sequence.
func (t *Sequential[T, R]) Active() bool { return t.active }

// SetActive enables or disables the table. An inactive table yields Empty
// without advancing the cursor.
func (t *Sequential[T, R]) SetActive(active bool) { t.active = active }

// Reset moves the cursor back to the first entry without firing onWrap.
func (t *Sequential[T, R]) Reset() { t.cursor = 0 }

// Roll implements rollable.Rollable.
func (t *Sequential[T, R]) Roll(target T, args rollable.Args) result.Result[R] {
	if !t.active {
		return result.Empty[R]()
	}
	return t.run(target, args, t.selectResult)
}

func (t *Sequential[T, R]) selectResult(target T, args rollable.Args) result.Result[R] {
	i := t.cursor
	t.logPick(i)
	out := t.entries[i].Roll(target, args)
	t.cursor++
	if t.cursor == len(t.entries) {
		t.cursor = 0
		if t.onWrap != nil {
			t.onWrap(target)
		}
	}
	return out
}
