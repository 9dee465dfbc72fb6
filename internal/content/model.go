// Package content loads drop table definitions from YAML and builds them into
// live tables rolled against a player Context and producing Drop payloads.
package content

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/nb2rs/dtx/internal/rollable"
	"github.com/nb2rs/dtx/internal/scripting"
)

// Context is the roll target: the player or event a drop is rolled for.
type Context struct {
	Level int
	Luck  float64
	Tags  []string
}

// HasTag reports whether tag is among c.Tags.
func (c Context) HasTag(tag string) bool {
	return slices.Contains(c.Tags, tag)
}

// Fields converts c into the table argument passed to Lua policies.
func (c Context) Fields() scripting.Fields {
	return scripting.Fields{
		"level": c.Level,
		"luck":  c.Luck,
		"tags":  slices.Clone(c.Tags),
	}
}

// Drop is one rolled item stack.
type Drop struct {
	ItemID     string
	InstanceID uuid.UUID
	Quantity   int
}

// String renders the drop as "item x<quantity>".
func (d Drop) String() string {
	return fmt.Sprintf("%s x%d", d.ItemID, d.Quantity)
}

// Table is a built drop table.
type Table = rollable.Rollable[Context, Drop]

// Kind constants for Definition.Kind.
const (
	KindUniform            = "uniform"
	KindWeighted           = "weighted"
	KindMultiChance        = "multi_chance"
	KindExhaustive         = "exhaustive"
	KindWeightedExhaustive = "weighted_exhaustive"
	KindSequential         = "sequential"
	KindMatrix             = "matrix"
	KindMetaWeighted       = "meta_weighted"
	KindMetaMultiChance    = "meta_multi_chance"
)

// validKinds is the set of valid Definition kinds.
var validKinds = map[string]bool{
	KindUniform:            true,
	KindWeighted:           true,
	KindMultiChance:        true,
	KindExhaustive:         true,
	KindWeightedExhaustive: true,
	KindSequential:         true,
	KindMatrix:             true,
	KindMetaWeighted:       true,
	KindMetaMultiChance:    true,
}

func isMeta(kind string) bool {
	return kind == KindMetaWeighted || kind == KindMetaMultiChance
}
