package table_test

import (
	"github.com/nb2rs/dtx/internal/dice"
	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
	"github.com/nb2rs/dtx/internal/table"
)

type player struct {
	Level int
	Luck  float64
}

type roll = rollable.Rollable[player, string]

func lit(v string) roll {
	return rollable.Literal(v, rollable.Hooks[player, string]{})
}

func litWhen(v string, include func(player) bool) roll {
	return rollable.Literal(v, rollable.Hooks[player, string]{Include: include})
}

func cfg(id string, seed uint64) table.Config[player, string] {
	return table.Config[player, string]{ID: id, Source: dice.NewSeededSource(seed)}
}

// noRandom fails loudly if a table consults the random source.
type noRandom struct{}

func (noRandom) Intn(int) int     { panic("random source must not be used") }
func (noRandom) Float64() float64 { panic("random source must not be used") }

func tally(t rollable.Rollable[player, string], p player, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		r := t.Roll(p, rollable.Args{})
		if r.IsEmpty() {
			counts[""]++
			continue
		}
		for _, v := range r.Values() {
			counts[v]++
		}
	}
	return counts
}

func one(v string) result.Result[string] { return result.One(v) }
