// Package sparse provides a fixed-extent two-dimensional container that stores
// only cells differing from a configured default value.
//
// The layout is compressed sparse row: rowStart[r]..rowStart[r+1] indexes the
// sorted column run of row r in cols, with the matching values alongside.
package sparse

import (
	"errors"
	"fmt"
	"iter"
	"sort"
)

// ErrOutOfBounds is returned by a Strict store for coordinates outside its extent.
var ErrOutOfBounds = errors.New("sparse: coordinates out of bounds")

// Mode selects how out-of-bounds coordinates are handled.
type Mode uint8

const (
	// Clamp reads the default value and ignores writes outside the extent.
	Clamp Mode = iota
	// Strict reports ErrOutOfBounds outside the extent.
	Strict
)

// Cell is one stored, non-default cell.
type Cell[V any] struct {
	Row   int
	Col   int
	Value V
}

// Store is a rows x cols grid with default-value semantics.
//
// Invariant: no stored value equals the default.
// Invariant: len(rowStart) == rows+1 and rowStart is non-decreasing.
// Store is not safe for concurrent use.
type Store[V any] struct {
	rows, cols int
	def        V
	mode       Mode
	eq         func(a, b V) bool

	rowStart []int
	colIdx   []int
	values   []V
}

// New returns an empty store comparing values with ==.
//
// Precondition: rows >= 1 and cols >= 1.
// Postcondition: Returns a store where every cell reads def, or an error.
func New[V comparable](rows, cols int, def V, mode Mode) (*Store[V], error) {
	return NewFunc(rows, cols, def, mode, func(a, b V) bool { return a == b })
}

// NewFunc returns an empty store comparing values with eq.
//
// Precondition: rows >= 1, cols >= 1, eq non-nil.
func NewFunc[V any](rows, cols int, def V, mode Mode, eq func(a, b V) bool) (*Store[V], error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("sparse: extent must be at least 1x1, got %dx%d", rows, cols)
	}
	if eq == nil {
		return nil, errors.New("sparse: equality function must not be nil")
	}
	return &Store[V]{
		rows:     rows,
		cols:     cols,
		def:      def,
		mode:     mode,
		eq:       eq,
		rowStart: make([]int, rows+1),
	}, nil
}

// Rows returns the row extent.
func (s *Store[V]) Rows() int { return s.rows }

// Cols returns the column extent.
func (s *Store[V]) Cols() int { return s.cols }

// Default returns the default value.
func (s *Store[V]) Default() V { return s.def }

// Mode returns the bounds handling mode.
func (s *Store[V]) Mode() Mode { return s.mode }

// Len returns the number of stored non-default cells.
func (s *Store[V]) Len() int { return len(s.values) }

func (s *Store[V]) inBounds(r, c int) bool {
	return r >= 0 && r < s.rows && c >= 0 && c < s.cols
}

func (s *Store[V]) boundsErr(r, c int) error {
	if s.mode == Strict {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, r, c, s.rows, s.cols)
	}
	return nil
}

// find returns the position of column c within row r's run and whether it is stored.
func (s *Store[V]) find(r, c int) (int, bool) {
	lo, hi := s.rowStart[r], s.rowStart[r+1]
	i := lo + sort.SearchInts(s.colIdx[lo:hi], c)
	return i, i < hi && s.colIdx[i] == c
}

// Get returns the value at (r, c), or the default if the cell is not stored.
//
// Postcondition: a Clamp store never returns an error.
func (s *Store[V]) Get(r, c int) (V, error) {
	if !s.inBounds(r, c) {
		return s.def, s.boundsErr(r, c)
	}
	if i, ok := s.find(r, c); ok {
		return s.values[i], nil
	}
	return s.def, nil
}

// Set stores v at (r, c). Storing the default removes the cell.
//
// Postcondition: Get(r, c) == v for in-bounds coordinates.
func (s *Store[V]) Set(r, c int, v V) error {
	if !s.inBounds(r, c) {
		return s.boundsErr(r, c)
	}
	i, ok := s.find(r, c)
	switch {
	case s.eq(v, s.def):
		if !ok {
			return nil
		}
		s.colIdx = append(s.colIdx[:i], s.colIdx[i+1:]...)
		s.values = append(s.values[:i], s.values[i+1:]...)
		s.shift(r, -1)
	case ok:
		s.values[i] = v
	default:
		s.colIdx = insertAt(s.colIdx, i, c)
		s.values = insertAt(s.values, i, v)
		s.shift(r, 1)
	}
	return nil
}

// shift moves the start offset of every row after r by delta.
func (s *Store[V]) shift(r, delta int) {
	for k := r + 1; k <= s.rows; k++ {
		s.rowStart[k] += delta
	}
}

func insertAt[E any](xs []E, i int, v E) []E {
	var zero E
	xs = append(xs, zero)
	copy(xs[i+1:], xs[i:])
	xs[i] = v
	return xs
}

// All yields every stored cell in row-major order. The sequence is finite and
// may be ranged over any number of times.
func (s *Store[V]) All() iter.Seq[Cell[V]] {
	return func(yield func(Cell[V]) bool) {
		row := 0
		for i := range s.values {
			for i >= s.rowStart[row+1] {
				row++
			}
			if !yield(Cell[V]{Row: row, Col: s.colIdx[i], Value: s.values[i]}) {
				return
			}
		}
	}
}
