package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
	"github.com/nb2rs/dtx/internal/table"
)

func TestTables_Nest(t *testing.T) {
	gems, err := table.NewMultiChance(cfg("gems", 30), []table.ChanceEntry[player, string]{
		{Rollable: lit("ruby"), Chance: 100},
		{Rollable: lit("opal"), Chance: 100},
	})
	require.NoError(t, err)
	outer, err := table.NewWeighted(cfg("chest", 31), []table.WeightedEntry[player, string]{
		{Rollable: gems, Weight: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, result.Many("ruby", "opal"), outer.Roll(player{}, rollable.Args{}))
}

func TestTables_NestedTableIncludePredicate(t *testing.T) {
	inner := cfg("inner", 32)
	inner.Hooks = inner.Hooks.WithInclude(func(p player) bool { return p.Level >= 20 })
	elite, err := table.NewUniform(inner, []roll{lit("elite")})
	require.NoError(t, err)

	outer, err := table.NewWeighted(cfg("outer", 33), []table.WeightedEntry[player, string]{
		{Rollable: elite, Weight: 100},
		{Rollable: lit("basic"), Weight: 1},
	})
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		assert.Equal(t, one("basic"), outer.Roll(player{Level: 1}, rollable.Args{}))
	}
}

func TestTables_HookPipeline(t *testing.T) {
	var completed []result.Result[string]
	c := cfg("hooked", 34)
	c.Hooks = c.Hooks.
		WithVeto(func(p player) bool { return p.Level == 0 }).
		WithTransform(func(_ player, r result.Result[string]) result.Result[string] {
			return r.Map(func(s string) string { return "shiny " + s })
		}).
		WithOnCompleted(func(_ player, r result.Result[string]) { completed = append(completed, r) })

	u, err := table.NewUniform(c, []roll{lit("coin")})
	require.NoError(t, err)

	assert.True(t, u.Roll(player{}, rollable.Args{}).IsEmpty())
	assert.Empty(t, completed)

	assert.Equal(t, one("shiny coin"), u.Roll(player{Level: 1}, rollable.Args{}))
	require.Len(t, completed, 1)
	assert.Equal(t, one("shiny coin"), completed[0])
}

func TestTables_ArgsReachLeaves(t *testing.T) {
	leaf, err := rollable.NewLeaf(rollable.Hooks[player, string]{}, func(_ player, args rollable.Args) result.Result[string] {
		return result.One(rollable.Get(args, "item", "nothing"))
	})
	require.NoError(t, err)
	u, err := table.NewUniform(cfg("args", 35), []roll{leaf})
	require.NoError(t, err)
	assert.Equal(t, one("lamp"), u.Roll(player{}, rollable.NewArgs(map[string]any{"item": "lamp"})))
}

func TestTables_DefaultsAndLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	u, err := table.NewUniform(table.Config[player, string]{ID: "logged", Logger: zap.New(core)}, []roll{lit("x")})
	require.NoError(t, err)

	assert.Equal(t, one("x"), u.Roll(player{}, rollable.Args{}))
	entries := logs.FilterMessage("table roll").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "logged", entries[0].ContextMap()["table"])
	assert.Equal(t, "completed", entries[0].ContextMap()["state"])
}

func TestTables_BadModifierFallsBackToOne(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c := cfg("nan", 36)
	c.Logger = zap.New(core)
	c.RollModifier = func(float64) float64 { return -3 }
	w, err := table.NewWeighted(c, []table.WeightedEntry[player, string]{
		{Rollable: lit("a"), Weight: 1},
		{Rollable: lit("b"), Weight: 1 + 1e-9},
	})
	require.NoError(t, err)
	assert.False(t, w.Roll(player{}, rollable.Args{}).IsEmpty())
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, 2.0, table.DefaultRollModifier(100))
}
