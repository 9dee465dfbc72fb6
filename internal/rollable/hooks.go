// Package rollable defines the per-entry roll lifecycle shared by every table
// and leaf outcome.
package rollable

import "github.com/nb2rs/dtx/internal/result"

// Rollable is anything that can produce a Result for a target.
type Rollable[T, R any] interface {
	// IncludeInRoll reports whether this rollable is a candidate for sampling
	// by its container. It is evaluated before the container samples.
	IncludeInRoll(target T) bool
	// Roll runs the full hook pipeline and returns the transformed result.
	Roll(target T, args Args) result.Result[R]
}

// SelectFunc produces the raw result of a roll.
type SelectFunc[T, R any] func(target T, args Args) result.Result[R]

// State is the terminal state of one pass through Hooks.Run.
type State uint8

const (
	// StateVetoed means the veto predicate fired; select and transform did not run.
	StateVetoed State = iota + 1
	// StateCompleted means the roll was selected, transformed and completed.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateVetoed:
		return "vetoed"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Hooks is the set of lifecycle callbacks of one rollable. Nil fields take
// their defaults: include everything, veto nothing, Empty on veto, identity
// transform, no completion side effect.
type Hooks[T, R any] struct {
	Include     func(target T) bool
	Veto        func(target T) bool
	OnVetoed    func(target T) result.Result[R]
	Transform   func(target T, r result.Result[R]) result.Result[R]
	OnCompleted func(target T, r result.Result[R])
}

// WithInclude returns a copy of h whose include predicate also requires f.
func (h Hooks[T, R]) WithInclude(f func(T) bool) Hooks[T, R] {
	prev := h.Include
	if prev == nil {
		h.Include = f
		return h
	}
	h.Include = func(t T) bool { return prev(t) && f(t) }
	return h
}

// WithVeto returns a copy of h that vetoes when either the existing predicate or f fires.
func (h Hooks[T, R]) WithVeto(f func(T) bool) Hooks[T, R] {
	prev := h.Veto
	if prev == nil {
		h.Veto = f
		return h
	}
	h.Veto = func(t T) bool { return prev(t) || f(t) }
	return h
}

// WithOnVetoed returns a copy of h producing f's result on veto.
func (h Hooks[T, R]) WithOnVetoed(f func(T) result.Result[R]) Hooks[T, R] {
	h.OnVetoed = f
	return h
}

// WithTransform returns a copy of h that applies f after any existing transform.
func (h Hooks[T, R]) WithTransform(f func(T, result.Result[R]) result.Result[R]) Hooks[T, R] {
	prev := h.Transform
	if prev == nil {
		h.Transform = f
		return h
	}
	h.Transform = func(t T, r result.Result[R]) result.Result[R] { return f(t, prev(t, r)) }
	return h
}

// WithOnCompleted returns a copy of h that runs f after any existing completion callback.
func (h Hooks[T, R]) WithOnCompleted(f func(T, result.Result[R])) Hooks[T, R] {
	prev := h.OnCompleted
	if prev == nil {
		h.OnCompleted = f
		return h
	}
	h.OnCompleted = func(t T, r result.Result[R]) {
		prev(t, r)
		f(t, r)
	}
	return h
}

// Includes evaluates the include predicate.
func (h Hooks[T, R]) Includes(target T) bool {
	return h.Include == nil || h.Include(target)
}

// Vetoes evaluates the veto predicate.
func (h Hooks[T, R]) Vetoes(target T) bool {
	return h.Veto != nil && h.Veto(target)
}

// Run drives one roll through the lifecycle:
// Start -> (Vetoed | Selecting) -> Selected -> Transformed -> Completed.
//
// Precondition: sel must be non-nil.
// Postcondition: on StateVetoed neither sel nor Transform nor OnCompleted ran.
func (h Hooks[T, R]) Run(target T, args Args, sel SelectFunc[T, R]) (result.Result[R], State) {
	if h.Vetoes(target) {
		if h.OnVetoed == nil {
			return result.Empty[R](), StateVetoed
		}
		return h.OnVetoed(target), StateVetoed
	}
	out := sel(target, args)
	if h.Transform != nil {
		out = h.Transform(target, out)
	}
	if h.OnCompleted != nil {
		h.OnCompleted(target, out)
	}
	return out, StateCompleted
}
