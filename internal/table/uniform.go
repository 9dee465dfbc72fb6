package table

import (
	"fmt"

	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
)

// Uniform picks one includable entry with equal probability.
type Uniform[T, R any] struct {
	base[T, R]
	entries []rollable.Rollable[T, R]
}

// NewUniform builds a uniform table over entries.
//
// Precondition: entries is non-empty and holds no nil rollable.
// Postcondition: Returns a table or a construction error.
func NewUniform[T, R any](cfg Config[T, R], entries []rollable.Rollable[T, R]) (*Uniform[T, R], error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("table %q: %w", cfg.ID, ErrNoEntries)
	}
	for i, e := range entries {
		if e == nil {
			return nil, fmt.Errorf("table %q: entry[%d]: %w", cfg.ID, i, ErrNilRollable)
		}
	}
	return &Uniform[T, R]{
		base:    newBase(cfg, VariantUniform),
		entries: append([]rollable.Rollable[T, R](nil), entries...),
	}, nil
}

// Len returns the number of entries.
func (t *Uniform[T, R]) Len() int { return len(t.entries) }

// Roll implements rollable.Rollable.
func (t *Uniform[T, R]) Roll(target T, args rollable.Args) result.Result[R] {
	return t.run(target, args, t.selectResult)
}

func (t *Uniform[T, R]) selectResult(target T, args rollable.Args) result.Result[R] {
	cands := includable(target, len(t.entries), func(i int) rollable.Rollable[T, R] { return t.entries[i] })
	switch len(cands) {
	case 0:
		return result.Empty[R]()
	case 1:
		t.logPick(cands[0])
		return t.entries[cands[0]].Roll(target, args)
	}
	i := cands[t.src.Intn(len(cands))]
	t.logPick(i)
	return t.entries[i].Roll(target, args)
}
