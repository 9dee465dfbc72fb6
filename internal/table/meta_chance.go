package table

import (
	"go.uber.org/zap"

	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
)

// MetaMultiChance is a multi-chance table whose chances are meta entry
// magnitudes bounded within [0, 100].
type MetaMultiChance[T, R any] struct {
	base[T, R]
	metaSet[T, R]
}

// NewMetaMultiChance builds a self-adjusting multi-chance table.
//
// Precondition: specs is non-empty with unique non-empty ids; bounds satisfy
// 0 <= Min <= Max <= 100.
func NewMetaMultiChance[T, R any](cfg Config[T, R], specs []MetaSpec[T, R]) (*MetaMultiChance[T, R], error) {
	set, err := newMetaSet(cfg.ID, specs, 0, 100)
	if err != nil {
		return nil, err
	}
	return &MetaMultiChance[T, R]{
		base:    newBase(cfg, VariantMetaMultiChance),
		metaSet: set,
	}, nil
}

// Roll implements rollable.Rollable.
func (t *MetaMultiChance[T, R]) Roll(target T, args rollable.Args) result.Result[R] {
	return t.run(target, args, t.selectResult)
}

func (t *MetaMultiChance[T, R]) selectResult(target T, args rollable.Args) result.Result[R] {
	cands := t.candidates(target)
	if len(cands) == 0 {
		return result.Empty[R]()
	}
	mod := t.modifier(target)
	hits := make([]*MetaEntry[T, R], 0, len(cands))
	for _, i := range cands {
		if passesChance(t.src, t.entries[i].magnitude, mod) {
			t.logPick(i)
			hits = append(hits, t.entries[i])
		}
	}
	rolled := make([]result.Result[R], 0, len(hits))
	for _, e := range hits {
		out, state := e.roll(target, args)
		if state == rollable.StateCompleted {
			if n := t.broadcast(e, target); n > 0 {
				t.logger.Debug("meta filters applied",
					zap.String("table", t.id),
					zap.String("entry", e.id),
					zap.Int("mutations", n),
				)
			}
		}
		rolled = append(rolled, out)
	}
	return result.Merge(rolled...)
}
