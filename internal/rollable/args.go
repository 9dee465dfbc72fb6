package rollable

import "maps"

// Args is an immutable key/value lookup passed through every roll.
//
// The zero value is an empty, usable Args.
type Args struct {
	values map[string]any
}

// NewArgs returns Args holding a copy of values.
func NewArgs(values map[string]any) Args {
	return Args{values: maps.Clone(values)}
}

// With returns a copy of a with key bound to value.
func (a Args) With(key string, value any) Args {
	next := make(map[string]any, len(a.values)+1)
	maps.Copy(next, a.values)
	next[key] = value
	return Args{values: next}
}

// Has reports whether key is bound.
func (a Args) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Len returns the number of bound keys.
func (a Args) Len() int {
	return len(a.values)
}

// Get returns the value bound to key when present and of type V, else def.
func Get[V any](a Args, key string, def V) V {
	raw, ok := a.values[key]
	if !ok {
		return def
	}
	v, ok := raw.(V)
	if !ok {
		return def
	}
	return v
}
