package rollable

import (
	"errors"

	"github.com/nb2rs/dtx/internal/result"
)

// ErrNoResult is returned when a leaf is built with neither a literal payload
// nor a result selector.
var ErrNoResult = errors.New("rollable: leaf is missing both a literal result and a result-selector")

// Leaf is a terminal rollable producing its payload through a selector.
type Leaf[T, R any] struct {
	hooks Hooks[T, R]
	sel   SelectFunc[T, R]
}

// NewLeaf builds a leaf whose payload is computed per roll by sel.
//
// Postcondition: returns ErrNoResult when sel is nil.
func NewLeaf[T, R any](hooks Hooks[T, R], sel SelectFunc[T, R]) (*Leaf[T, R], error) {
	if sel == nil {
		return nil, ErrNoResult
	}
	return &Leaf[T, R]{hooks: hooks, sel: sel}, nil
}

// Literal builds a leaf that always selects One(v).
func Literal[T, R any](v R, hooks Hooks[T, R]) *Leaf[T, R] {
	return &Leaf[T, R]{
		hooks: hooks,
		sel:   func(T, Args) result.Result[R] { return result.One(v) },
	}
}

// IncludeInRoll implements Rollable.
func (l *Leaf[T, R]) IncludeInRoll(target T) bool {
	return l.hooks.Includes(target)
}

// Roll implements Rollable.
func (l *Leaf[T, R]) Roll(target T, args Args) result.Result[R] {
	out, _ := l.hooks.Run(target, args, l.sel)
	return out
}

// Hooks returns the lifecycle callbacks of l.
func (l *Leaf[T, R]) Hooks() Hooks[T, R] {
	return l.hooks
}

// Func adapts a plain function into an always-includable Rollable.
type Func[T, R any] func(target T, args Args) result.Result[R]

// IncludeInRoll implements Rollable.
func (f Func[T, R]) IncludeInRoll(T) bool { return true }

// Roll implements Rollable.
func (f Func[T, R]) Roll(target T, args Args) result.Result[R] { return f(target, args) }

type nothing[T, R any] struct{}

func (nothing[T, R]) IncludeInRoll(T) bool { return true }

func (nothing[T, R]) Roll(T, Args) result.Result[R] { return result.Empty[R]() }

// Nothing returns a rollable that always yields Empty.
func Nothing[T, R any]() Rollable[T, R] {
	return nothing[T, R]{}
}
