package table

import (
	"fmt"
	"math"
	"slices"

	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
)

// Filter is a rule owned by a meta entry. After its owner is rolled and not
// vetoed, Mutate is applied to every includable entry of the same table whose
// ID satisfies Match.
type Filter[T, R any] struct {
	Match  func(id string) bool
	Mutate func(e *MetaEntry[T, R])
}

// MatchID matches any of ids.
func MatchID(ids ...string) func(string) bool {
	return func(id string) bool { return slices.Contains(ids, id) }
}

// MatchAll matches every entry.
func MatchAll() func(string) bool {
	return func(string) bool { return true }
}

// AdjustBy adds delta to the magnitude of the mutated entry.
func AdjustBy[T, R any](delta float64) func(*MetaEntry[T, R]) {
	return func(e *MetaEntry[T, R]) { e.Adjust(delta) }
}

// SetTo assigns v to the magnitude of the mutated entry.
func SetTo[T, R any](v float64) func(*MetaEntry[T, R]) {
	return func(e *MetaEntry[T, R]) { e.SetMagnitude(v) }
}

// ResetToInitial restores the mutated entry's construction-time magnitude.
func ResetToInitial[T, R any]() func(*MetaEntry[T, R]) {
	return func(e *MetaEntry[T, R]) { e.SetMagnitude(e.initial) }
}

// Boost returns a filter adding delta to the entries named by ids.
func Boost[T, R any](delta float64, ids ...string) Filter[T, R] {
	return Filter[T, R]{Match: MatchID(ids...), Mutate: AdjustBy[T, R](delta)}
}

// MetaSpec is the construction data of one meta entry.
//
// A zero Max selects the variant's upper bound: +Inf for weights and 100 for
// chances. Min defaults to 0.
type MetaSpec[T, R any] struct {
	ID        string
	Rollable  rollable.Rollable[T, R]
	Magnitude float64
	Min       float64
	Max       float64
	Filters   []Filter[T, R]
	Hooks     rollable.Hooks[T, R]
}

// MetaEntry is a table entry with a mutable, bounded magnitude.
//
// Invariant: Min() <= Magnitude() <= Max().
// The parent table is referenced by id only; resolve it through a Registry.
type MetaEntry[T, R any] struct {
	id        string
	parent    string
	rollable  rollable.Rollable[T, R]
	hooks     rollable.Hooks[T, R]
	filters   []Filter[T, R]
	magnitude float64
	initial   float64
	min, max  float64
}

// ID returns the entry identifier.
func (e *MetaEntry[T, R]) ID() string { return e.id }

// ParentID returns the identifier of the owning table.
func (e *MetaEntry[T, R]) ParentID() string { return e.parent }

// Parent resolves the owning table through reg.
func (e *MetaEntry[T, R]) Parent(reg *Registry[T, R]) (MetaTable[T, R], bool) {
	return reg.Lookup(e.parent)
}

// Magnitude returns the current weight or chance.
func (e *MetaEntry[T, R]) Magnitude() float64 { return e.magnitude }

// Initial returns the construction-time magnitude after clamping.
func (e *MetaEntry[T, R]) Initial() float64 { return e.initial }

// Min returns the lower magnitude bound.
func (e *MetaEntry[T, R]) Min() float64 { return e.min }

// Max returns the upper magnitude bound.
func (e *MetaEntry[T, R]) Max() float64 { return e.max }

// SetMagnitude assigns v clamped to [Min, Max]. NaN is ignored.
func (e *MetaEntry[T, R]) SetMagnitude(v float64) {
	if math.IsNaN(v) {
		return
	}
	e.magnitude = min(max(v, e.min), e.max)
}

// Adjust adds delta to the magnitude, clamped to [Min, Max].
func (e *MetaEntry[T, R]) Adjust(delta float64) {
	e.SetMagnitude(e.magnitude + delta)
}

// IncludeInRoll implements rollable.Rollable.
func (e *MetaEntry[T, R]) IncludeInRoll(target T) bool {
	return e.hooks.Includes(target) && e.rollable.IncludeInRoll(target)
}

// Roll implements rollable.Rollable. Rolling an entry directly does not apply
// its filters; only its table does.
func (e *MetaEntry[T, R]) Roll(target T, args rollable.Args) result.Result[R] {
	out, _ := e.roll(target, args)
	return out
}

func (e *MetaEntry[T, R]) roll(target T, args rollable.Args) (result.Result[R], rollable.State) {
	return e.hooks.Run(target, args, e.rollable.Roll)
}

// metaSet is the entry collection shared by the meta table variants.
type metaSet[T, R any] struct {
	entries []*MetaEntry[T, R]
	index   map[string]int
}

// newMetaSet validates specs and builds entries owned by tableID. Magnitudes
// and bounds must lie within [lo, hi].
func newMetaSet[T, R any](tableID string, specs []MetaSpec[T, R], lo, hi float64) (metaSet[T, R], error) {
	if len(specs) == 0 {
		return metaSet[T, R]{}, fmt.Errorf("table %q: %w", tableID, ErrNoEntries)
	}
	set := metaSet[T, R]{
		entries: make([]*MetaEntry[T, R], 0, len(specs)),
		index:   make(map[string]int, len(specs)),
	}
	for i, s := range specs {
		if s.Rollable == nil {
			return metaSet[T, R]{}, fmt.Errorf("table %q: entry[%d]: %w", tableID, i, ErrNilRollable)
		}
		if s.ID == "" {
			return metaSet[T, R]{}, fmt.Errorf("table %q: entry[%d]: id must not be empty", tableID, i)
		}
		if _, dup := set.index[s.ID]; dup {
			return metaSet[T, R]{}, fmt.Errorf("table %q: entry[%d]: %w %q", tableID, i, ErrDuplicateID, s.ID)
		}
		bmin, bmax := s.Min, s.Max
		if bmax == 0 {
			bmax = hi
		}
		if math.IsNaN(bmin) || math.IsNaN(bmax) || bmin > bmax || bmin < lo || bmax > hi {
			return metaSet[T, R]{}, fmt.Errorf("table %q: entry[%d] %q: %w [%v, %v]", tableID, i, s.ID, ErrInvalidBounds, bmin, bmax)
		}
		if math.IsNaN(s.Magnitude) {
			return metaSet[T, R]{}, fmt.Errorf("table %q: entry[%d] %q: magnitude is NaN: %w", tableID, i, s.ID, ErrInvalidWeight)
		}
		for k, f := range s.Filters {
			if f.Match == nil || f.Mutate == nil {
				return metaSet[T, R]{}, fmt.Errorf("table %q: entry[%d] %q: filter[%d]: %w", tableID, i, s.ID, k, ErrInvalidFilter)
			}
		}
		e := &MetaEntry[T, R]{
			id:       s.ID,
			parent:   tableID,
			rollable: s.Rollable,
			hooks:    s.Hooks,
			filters:  append([]Filter[T, R](nil), s.Filters...),
			min:      bmin,
			max:      bmax,
		}
		e.SetMagnitude(s.Magnitude)
		e.initial = e.magnitude
		set.index[s.ID] = len(set.entries)
		set.entries = append(set.entries, e)
	}
	return set, nil
}

// Entries returns the entries in construction order.
func (s *metaSet[T, R]) Entries() []*MetaEntry[T, R] {
	return slices.Clone(s.entries)
}

// Entry returns the entry named id.
func (s *metaSet[T, R]) Entry(id string) (*MetaEntry[T, R], bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.entries[i], true
}

// Reset restores every magnitude to its initial value.
func (s *metaSet[T, R]) Reset() {
	for _, e := range s.entries {
		e.magnitude = e.initial
	}
}

func (s *metaSet[T, R]) candidates(target T) []int {
	return includable(target, len(s.entries), func(i int) rollable.Rollable[T, R] { return s.entries[i] })
}

// broadcast applies the filters of rolled to every includable entry they match,
// the rolled entry included.
func (s *metaSet[T, R]) broadcast(rolled *MetaEntry[T, R], target T) int {
	if len(rolled.filters) == 0 {
		return 0
	}
	applied := 0
	for _, sib := range s.entries {
		if !sib.IncludeInRoll(target) {
			continue
		}
		for _, f := range rolled.filters {
			if f.Match(sib.id) {
				f.Mutate(sib)
				applied++
			}
		}
	}
	return applied
}
