// Package result defines the outcome of a roll and the laws for combining outcomes.
package result

import "fmt"

// Kind tags the shape of a Result.
type Kind uint8

const (
	// KindEmpty is a roll that produced nothing.
	KindEmpty Kind = iota
	// KindOne is a roll that produced exactly one payload.
	KindOne
	// KindMany is a roll that produced a sequence of payloads.
	KindMany
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindOne:
		return "one"
	case KindMany:
		return "many"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Result is the tagged union Empty | One(R) | Many([]R).
//
// Invariant: a normalized Many holds at least two payloads.
// The zero value is Empty.
type Result[R any] struct {
	kind  Kind
	one   R
	items []R
}

// Empty returns the empty result.
func Empty[R any]() Result[R] {
	return Result[R]{}
}

// One returns a result holding the single payload v.
func One[R any](v R) Result[R] {
	return Result[R]{kind: KindOne, one: v}
}

// Many returns a raw Many result over a copy of vs. The result is not
// normalized; call Normalize to collapse zero or one payloads.
func Many[R any](vs ...R) Result[R] {
	items := make([]R, len(vs))
	copy(items, vs)
	return Result[R]{kind: KindMany, items: items}
}

// Kind reports the shape of r.
func (r Result[R]) Kind() Kind {
	return r.kind
}

// IsEmpty reports whether r carries no payload at all.
func (r Result[R]) IsEmpty() bool {
	return r.Len() == 0
}

// Len returns the number of payloads carried by r.
func (r Result[R]) Len() int {
	switch r.kind {
	case KindOne:
		return 1
	case KindMany:
		return len(r.items)
	default:
		return 0
	}
}

// Value returns the payload of a One result.
//
// Postcondition: ok is true iff r.Kind() == KindOne.
func (r Result[R]) Value() (v R, ok bool) {
	if r.kind != KindOne {
		return v, false
	}
	return r.one, true
}

// Values returns every payload of r in order as a fresh slice. Empty yields nil.
func (r Result[R]) Values() []R {
	switch r.kind {
	case KindOne:
		return []R{r.one}
	case KindMany:
		out := make([]R, len(r.items))
		copy(out, r.items)
		return out
	default:
		return nil
	}
}

// Normalize collapses a Many of zero payloads to Empty and a Many of one
// payload to One. Empty and One are returned unchanged.
//
// Postcondition: Normalize is idempotent.
func (r Result[R]) Normalize() Result[R] {
	if r.kind != KindMany {
		return r
	}
	switch len(r.items) {
	case 0:
		return Empty[R]()
	case 1:
		return One(r.items[0])
	default:
		return r
	}
}

// Map applies f to every payload while preserving the shape of r.
func (r Result[R]) Map(f func(R) R) Result[R] {
	switch r.kind {
	case KindOne:
		return One(f(r.one))
	case KindMany:
		out := make([]R, len(r.items))
		for i, v := range r.items {
			out[i] = f(v)
		}
		return Result[R]{kind: KindMany, items: out}
	default:
		return r
	}
}

// String renders r for logs, e.g. "one(sword)" or "many([a b])".
func (r Result[R]) String() string {
	switch r.kind {
	case KindOne:
		return fmt.Sprintf("one(%v)", r.one)
	case KindMany:
		return fmt.Sprintf("many(%v)", r.items)
	default:
		return "empty"
	}
}

// Merge combines rs into a single normalized result.
//
// Empty inputs are dropped. If every remaining input is One the result is a
// Many of their payloads; if every remaining input is Many the result is their
// concatenation. In the mixed case all Many payloads come first, followed by
// all One payloads, each group in input order.
//
// Postcondition: Merge() == Empty; Merge(Empty, One(a)) == One(a).
func Merge[R any](rs ...Result[R]) Result[R] {
	var many, ones []R
	for _, r := range rs {
		switch r.kind {
		case KindOne:
			ones = append(ones, r.one)
		case KindMany:
			many = append(many, r.items...)
		}
	}
	return Many(append(many, ones...)...).Normalize()
}
