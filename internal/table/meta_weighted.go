package table

import (
	"cmp"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
)

// MetaWeighted is a weighted table whose weights are meta entry magnitudes.
// Rolling an entry applies its filters, so one outcome can raise or lower the
// odds of others within their configured bands.
type MetaWeighted[T, R any] struct {
	base[T, R]
	metaSet[T, R]
	sorted []*MetaEntry[T, R]
}

// NewMetaWeighted builds a self-adjusting weighted table.
//
// Precondition: specs is non-empty with unique non-empty ids; bounds satisfy
// 0 <= Min <= Max.
func NewMetaWeighted[T, R any](cfg Config[T, R], specs []MetaSpec[T, R]) (*MetaWeighted[T, R], error) {
	set, err := newMetaSet(cfg.ID, specs, 0, math.Inf(1))
	if err != nil {
		return nil, err
	}
	return &MetaWeighted[T, R]{
		base:    newBase(cfg, VariantMetaWeighted),
		metaSet: set,
		sorted:  slices.Clone(set.entries),
	}, nil
}

// Sorted returns the entries ordered by descending magnitude. The order is
// re-established lazily, only when a magnitude change has made it stale.
func (t *MetaWeighted[T, R]) Sorted() []*MetaEntry[T, R] {
	if !slices.IsSortedFunc(t.sorted, byMagnitudeDesc[T, R]) {
		slices.SortStableFunc(t.sorted, byMagnitudeDesc[T, R])
	}
	return slices.Clone(t.sorted)
}

func byMagnitudeDesc[T, R any](a, b *MetaEntry[T, R]) int {
	return cmp.Compare(b.magnitude, a.magnitude)
}

// Roll implements rollable.Rollable.
func (t *MetaWeighted[T, R]) Roll(target T, args rollable.Args) result.Result[R] {
	return t.run(target, args, t.selectResult)
}

func (t *MetaWeighted[T, R]) selectResult(target T, args rollable.Args) result.Result[R] {
	cands := t.candidates(target)
	if len(cands) == 0 {
		return result.Empty[R]()
	}
	i := cands[0]
	if len(cands) > 1 {
		weights := make([]float64, len(cands))
		for k, c := range cands {
			weights[k] = t.entries[c].magnitude
		}
		i = cands[pickWeighted(t.src, weights, t.modifier(target))]
	}
	t.logPick(i)

	chosen := t.entries[i]
	out, state := chosen.roll(target, args)
	if state == rollable.StateCompleted {
		if n := t.broadcast(chosen, target); n > 0 {
			t.logger.Debug("meta filters applied",
				zap.String("table", t.id),
				zap.String("entry", chosen.id),
				zap.Int("mutations", n),
			)
		}
	}
	return out
}
