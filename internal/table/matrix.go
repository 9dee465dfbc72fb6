package table

import (
	"fmt"

	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
	"github.com/nb2rs/dtx/internal/sparse"
)

// MatrixCell places a rollable at a grid coordinate.
type MatrixCell[T, R any] struct {
	Row      int
	Col      int
	Rollable rollable.Rollable[T, R]
}

// Matrix draws a uniformly random cell of a rows x cols grid and rolls
// whatever occupies it. Unassigned cells yield Empty, so the share of cells a
// rollable occupies acts as its weight.
type Matrix[T, R any] struct {
	base[T, R]
	// cells[0] is the empty default; the store holds indices into cells.
	cells []rollable.Rollable[T, R]
	grid  *sparse.Store[int]
}

// NewMatrix builds a matrix table.
//
// Precondition: rows >= 1, cols >= 1; every cell lies inside the extent and
// no coordinate is assigned twice.
func NewMatrix[T, R any](cfg Config[T, R], rows, cols int, cells []MatrixCell[T, R]) (*Matrix[T, R], error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("table %q: %w, got %dx%d", cfg.ID, ErrInvalidExtent, rows, cols)
	}
	grid, err := sparse.New(rows, cols, 0, sparse.Clamp)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", cfg.ID, err)
	}
	t := &Matrix[T, R]{
		base:  newBase(cfg, VariantMatrix),
		cells: []rollable.Rollable[T, R]{rollable.Nothing[T, R]()},
		grid:  grid,
	}
	for i, c := range cells {
		if c.Rollable == nil {
			return nil, fmt.Errorf("table %q: cell[%d]: %w", cfg.ID, i, ErrNilRollable)
		}
		if c.Row < 0 || c.Row >= rows || c.Col < 0 || c.Col >= cols {
			return nil, fmt.Errorf("table %q: cell[%d] (%d,%d): %w", cfg.ID, i, c.Row, c.Col, ErrCellOutOfRange)
		}
		if idx, _ := grid.Get(c.Row, c.Col); idx != 0 {
			return nil, fmt.Errorf("table %q: cell[%d] (%d,%d): %w", cfg.ID, i, c.Row, c.Col, ErrDuplicateCell)
		}
		t.cells = append(t.cells, c.Rollable)
		if err := grid.Set(c.Row, c.Col, len(t.cells)-1); err != nil {
			return nil, fmt.Errorf("table %q: cell[%d]: %w", cfg.ID, i, err)
		}
	}
	return t, nil
}

// Rows returns the row extent.
func (t *Matrix[T, R]) Rows() int { return t.grid.Rows() }

// Cols returns the column extent.
func (t *Matrix[T, R]) Cols() int { return t.grid.Cols() }

// Occupied returns the number of assigned cells.
func (t *Matrix[T, R]) Occupied() int { return t.grid.Len() }

// Cell returns the rollable at (r, c). Unassigned or out-of-range cells
// return the empty rollable.
func (t *Matrix[T, R]) Cell(r, c int) rollable.Rollable[T, R] {
	idx, _ := t.grid.Get(r, c)
	return t.cells[idx]
}

// Roll implements rollable.Rollable.
func (t *Matrix[T, R]) Roll(target T, args rollable.Args) result.Result[R] {
	return t.run(target, args, t.selectResult)
}

func (t *Matrix[T, R]) selectResult(target T, args rollable.Args) result.Result[R] {
	r := t.src.Intn(t.grid.Rows())
	c := t.src.Intn(t.grid.Cols())
	idx, _ := t.grid.Get(r, c)
	if idx == 0 {
		return result.Empty[R]()
	}
	cell := t.cells[idx]
	if !cell.IncludeInRoll(target) {
		return result.Empty[R]()
	}
	t.logPick(idx - 1)
	return cell.Roll(target, args)
}
