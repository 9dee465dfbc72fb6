package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nb2rs/dtx/internal/rollable"
	"github.com/nb2rs/dtx/internal/table"
)

func TestSequential_RoundRobinAndWrap(t *testing.T) {
	wraps := 0
	c := cfg("cycle", 0)
	c.Source = noRandom{}
	seq, err := table.NewSequential(c, []roll{lit("A"), lit("B")}, func(player) { wraps++ })
	require.NoError(t, err)

	want := []string{"A", "B", "A", "B", "A", "B"}
	for i, w := range want {
		assert.Equal(t, one(w), seq.Roll(player{}, rollable.Args{}))
		assert.Equal(t, (i+1)/2, wraps, "wrap must fire once per full cycle")
	}
}

func TestSequential_InactiveDoesNotAdvance(t *testing.T) {
	wraps := 0
	seq, err := table.NewSequential(cfg("paused", 0), []roll{lit("A"), lit("B")}, func(player) { wraps++ })
	require.NoError(t, err)

	assert.Equal(t, one("A"), seq.Roll(player{}, rollable.Args{}))
	seq.SetActive(false)
	assert.False(t, seq.Active())
	assert.True(t, seq.Roll(player{}, rollable.Args{}).IsEmpty())
	assert.Equal(t, 1, seq.Cursor())

	seq.SetActive(true)
	assert.Equal(t, one("B"), seq.Roll(player{}, rollable.Args{}))
	assert.Equal(t, 0, seq.Cursor())
	assert.Equal(t, 1, wraps)
}

func TestSequential_Reset(t *testing.T) {
	seq, err := table.NewSequential(cfg("reset", 0), []roll{lit("A"), lit("B"), lit("C")}, nil)
	require.NoError(t, err)
	seq.Roll(player{}, rollable.Args{})
	seq.Roll(player{}, rollable.Args{})
	seq.Reset()
	assert.Equal(t, one("A"), seq.Roll(player{}, rollable.Args{}))
	assert.Equal(t, 3, seq.Len())

	_, err = table.NewSequential(cfg("empty", 0), nil, nil)
	assert.ErrorIs(t, err, table.ErrNoEntries)
}
