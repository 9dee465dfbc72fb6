package table

import (
	"fmt"
	"maps"
	"slices"

	"github.com/nb2rs/dtx/internal/rollable"
)

// MetaTable is the common surface of the meta table variants.
type MetaTable[T, R any] interface {
	rollable.Rollable[T, R]
	ID() string
	Variant() string
	Entries() []*MetaEntry[T, R]
	Entry(id string) (*MetaEntry[T, R], bool)
	Reset()
}

// Registry resolves meta tables by id. Entries refer to their parent table
// through it instead of holding the table itself.
type Registry[T, R any] struct {
	tables map[string]MetaTable[T, R]
}

// NewRegistry returns an empty Registry.
func NewRegistry[T, R any]() *Registry[T, R] {
	return &Registry[T, R]{tables: make(map[string]MetaTable[T, R])}
}

// Register adds t under t.ID().
//
// Postcondition: Lookup(t.ID()) returns t; returns an error if the id is empty
// or already registered.
func (r *Registry[T, R]) Register(t MetaTable[T, R]) error {
	id := t.ID()
	if id == "" {
		return fmt.Errorf("table: Registry.Register: table id must not be empty")
	}
	if _, exists := r.tables[id]; exists {
		return fmt.Errorf("table: Registry.Register: table %q already registered", id)
	}
	r.tables[id] = t
	return nil
}

// Lookup returns the table registered under id.
func (r *Registry[T, R]) Lookup(id string) (MetaTable[T, R], bool) {
	t, ok := r.tables[id]
	return t, ok
}

// IDs returns the registered ids in lexical order.
func (r *Registry[T, R]) IDs() []string {
	return slices.Sorted(maps.Keys(r.tables))
}

// Len returns the number of registered tables.
func (r *Registry[T, R]) Len() int { return len(r.tables) }

// ResetAll restores every magnitude of every registered table.
func (r *Registry[T, R]) ResetAll() {
	for _, t := range r.tables {
		t.Reset()
	}
}
