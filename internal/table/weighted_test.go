package table_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
	"github.com/nb2rs/dtx/internal/table"
)

func TestWeighted_Distribution(t *testing.T) {
	w, err := table.NewWeighted(cfg("odds", 1), []table.WeightedEntry[player, string]{
		{Rollable: lit("a"), Weight: 1},
		{Rollable: lit("b"), Weight: 3},
	})
	require.NoError(t, err)

	const n = 100_000
	counts := tally(w, player{}, n)
	assert.InDelta(t, 0.75, float64(counts["b"])/n, 0.01)
	assert.Equal(t, n, counts["a"]+counts["b"], "a weighted table with candidates never yields Empty")
}

func TestWeighted_EqualWeightsGroupedWithoutBias(t *testing.T) {
	w, err := table.NewWeighted(cfg("grouped", 2), []table.WeightedEntry[player, string]{
		{Rollable: lit("a"), Weight: 1},
		{Rollable: lit("b"), Weight: 2},
		{Rollable: lit("c"), Weight: 1},
	})
	require.NoError(t, err)

	const n = 100_000
	counts := tally(w, player{}, n)
	assert.InDelta(t, 0.25, float64(counts["a"])/n, 0.01)
	assert.InDelta(t, 0.50, float64(counts["b"])/n, 0.01)
	assert.InDelta(t, 0.25, float64(counts["c"])/n, 0.01)
}

func TestWeighted_ModifierScansInTableOrder(t *testing.T) {
	c := cfg("order", 7)
	c.DropRate = func(player) float64 { return 100 }
	w, err := table.NewWeighted(c, []table.WeightedEntry[player, string]{
		{Rollable: lit("a"), Weight: 1},
		{Rollable: lit("b"), Weight: 5},
		{Rollable: lit("c"), Weight: 1},
	})
	require.NoError(t, err)

	// r in [0, 7) against running totals 2, 12: c is never reached.
	const n = 100_000
	counts := tally(w, player{}, n)
	assert.Zero(t, counts["c"])
	assert.InDelta(t, 2.0/7, float64(counts["a"])/n, 0.01)
	assert.InDelta(t, 5.0/7, float64(counts["b"])/n, 0.01)
}

func TestWeighted_SingleCandidateBypassesRandom(t *testing.T) {
	c := cfg("single", 0)
	c.Source = noRandom{}
	w, err := table.NewWeighted(c, []table.WeightedEntry[player, string]{
		{Rollable: litWhen("low", func(p player) bool { return p.Level < 10 }), Weight: 5},
		{Rollable: litWhen("high", func(p player) bool { return p.Level >= 10 }), Weight: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, one("low"), w.Roll(player{Level: 1}, rollable.Args{}))
	assert.Equal(t, one("high"), w.Roll(player{Level: 12}, rollable.Args{}))
}

func TestWeighted_NoCandidatesIsEmpty(t *testing.T) {
	w, err := table.NewWeighted(cfg("none", 0), []table.WeightedEntry[player, string]{
		{Rollable: litWhen("x", func(player) bool { return false }), Weight: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, result.Empty[string](), w.Roll(player{}, rollable.Args{}))
}

func TestWeighted_ZeroWeightNeverPicked(t *testing.T) {
	w, err := table.NewWeighted(cfg("zero", 3), []table.WeightedEntry[player, string]{
		{Rollable: lit("never"), Weight: 0},
		{Rollable: lit("always"), Weight: 2},
	})
	require.NoError(t, err)
	counts := tally(w, player{}, 1000)
	assert.Equal(t, 0, counts["never"])
	assert.Equal(t, 1000, counts["always"])
}

func TestWeighted_FallbackPicksLastWhenModifierStarves(t *testing.T) {
	c := cfg("starved", 4)
	c.RollModifier = func(float64) float64 { return 0 }
	w, err := table.NewWeighted(c, []table.WeightedEntry[player, string]{
		{Rollable: lit("first"), Weight: 1},
		{Rollable: lit("last"), Weight: 3},
	})
	require.NoError(t, err)
	counts := tally(w, player{}, 500)
	assert.Equal(t, 500, counts["last"])
}

func TestWeighted_DropRateFavoursEarlierEntries(t *testing.T) {
	c := cfg("lucky", 5)
	c.DropRate = func(p player) float64 { return p.Luck }
	w, err := table.NewWeighted(c, []table.WeightedEntry[player, string]{
		{Rollable: lit("rare"), Weight: 1},
		{Rollable: lit("common"), Weight: 3},
	})
	require.NoError(t, err)

	const n = 50_000
	base := tally(w, player{}, n)
	boosted := tally(w, player{Luck: 100}, n)
	assert.InDelta(t, 0.25, float64(base["rare"])/n, 0.01)
	// Luck 100 doubles every effective weight while the draw range stays at 4.
	assert.InDelta(t, 0.5, float64(boosted["rare"])/n, 0.01)
}

func TestNewWeighted_ConstructionErrors(t *testing.T) {
	_, err := table.NewWeighted(cfg("empty", 0), nil)
	assert.ErrorIs(t, err, table.ErrNoEntries)

	_, err = table.NewWeighted(cfg("neg", 0), []table.WeightedEntry[player, string]{{Rollable: lit("a"), Weight: -1}})
	assert.ErrorIs(t, err, table.ErrInvalidWeight)

	_, err = table.NewWeighted(cfg("nan", 0), []table.WeightedEntry[player, string]{{Rollable: lit("a"), Weight: math.NaN()}})
	assert.ErrorIs(t, err, table.ErrInvalidWeight)

	_, err = table.NewWeighted(cfg("nil", 0), []table.WeightedEntry[player, string]{{Weight: 1}})
	assert.ErrorIs(t, err, table.ErrNilRollable)
	assert.Contains(t, err.Error(), `"nil"`)
}

func TestWeighted_TotalWeightAndLen(t *testing.T) {
	w, err := table.NewWeighted(cfg("sum", 0), []table.WeightedEntry[player, string]{
		{Rollable: lit("a"), Weight: 1.5},
		{Rollable: lit("b"), Weight: 2.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, w.TotalWeight())
	assert.Equal(t, 2, w.Len())
	assert.Equal(t, table.VariantWeighted, w.Variant())
	assert.Equal(t, "sum", w.ID())
}

func TestUniform_Distribution(t *testing.T) {
	u, err := table.NewUniform(cfg("even", 6), []roll{lit("a"), lit("b"), lit("c"), lit("d")})
	require.NoError(t, err)
	const n = 40_000
	counts := tally(u, player{}, n)
	for _, k := range []string{"a", "b", "c", "d"} {
		assert.InDelta(t, 0.25, float64(counts[k])/n, 0.01, k)
	}
}

func TestUniform_FiltersCandidates(t *testing.T) {
	c := cfg("filtered", 0)
	c.Source = noRandom{}
	u, err := table.NewUniform(c, []roll{
		litWhen("a", func(player) bool { return false }),
		lit("b"),
	})
	require.NoError(t, err)
	assert.Equal(t, one("b"), u.Roll(player{}, rollable.Args{}))
	assert.Equal(t, 2, u.Len())

	_, err = table.NewUniform(cfg("empty", 0), nil)
	assert.ErrorIs(t, err, table.ErrNoEntries)
	_, err = table.NewUniform(cfg("nil", 0), []roll{nil})
	assert.ErrorIs(t, err, table.ErrNilRollable)
}
