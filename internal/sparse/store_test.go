package sparse_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/nb2rs/dtx/internal/sparse"
)

func collect[V any](s *sparse.Store[V]) []sparse.Cell[V] {
	return slices.Collect(s.All())
}

func TestStore_SetGetRemove(t *testing.T) {
	s, err := sparse.New(3, 3, "", sparse.Clamp)
	require.NoError(t, err)

	require.NoError(t, s.Set(0, 0, "x"))
	v, err := s.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	v, err = s.Get(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	assert.Equal(t, []sparse.Cell[string]{{Row: 0, Col: 0, Value: "x"}}, collect(s))

	require.NoError(t, s.Set(0, 0, ""))
	assert.Empty(t, collect(s))
	assert.Equal(t, 0, s.Len())
}

func TestStore_OverwriteInPlace(t *testing.T) {
	s, err := sparse.New(2, 4, 0, sparse.Strict)
	require.NoError(t, err)
	require.NoError(t, s.Set(1, 2, 5))
	require.NoError(t, s.Set(1, 2, 7))
	assert.Equal(t, 1, s.Len())
	v, err := s.Get(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestStore_RowMajorOrder(t *testing.T) {
	s, err := sparse.New(3, 3, 0, sparse.Clamp)
	require.NoError(t, err)
	require.NoError(t, s.Set(2, 0, 6))
	require.NoError(t, s.Set(0, 2, 2))
	require.NoError(t, s.Set(1, 1, 4))
	require.NoError(t, s.Set(0, 1, 1))

	want := []sparse.Cell[int]{
		{Row: 0, Col: 1, Value: 1},
		{Row: 0, Col: 2, Value: 2},
		{Row: 1, Col: 1, Value: 4},
		{Row: 2, Col: 0, Value: 6},
	}
	assert.Equal(t, want, collect(s))
	assert.Equal(t, want, collect(s), "All must be restartable")
}

func TestStore_AllStopsEarly(t *testing.T) {
	s, err := sparse.New(2, 2, 0, sparse.Clamp)
	require.NoError(t, err)
	require.NoError(t, s.Set(0, 0, 1))
	require.NoError(t, s.Set(1, 1, 2))
	n := 0
	for range s.All() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestStore_ClampMode(t *testing.T) {
	s, err := sparse.New(2, 2, "def", sparse.Clamp)
	require.NoError(t, err)
	v, err := s.Get(5, -1)
	require.NoError(t, err)
	assert.Equal(t, "def", v)
	require.NoError(t, s.Set(9, 9, "x"))
	assert.Equal(t, 0, s.Len())
}

func TestStore_StrictMode(t *testing.T) {
	s, err := sparse.New(2, 2, "def", sparse.Strict)
	require.NoError(t, err)
	_, err = s.Get(2, 0)
	assert.ErrorIs(t, err, sparse.ErrOutOfBounds)
	assert.ErrorIs(t, s.Set(0, 2, "x"), sparse.ErrOutOfBounds)
}

func TestNew_RejectsEmptyExtent(t *testing.T) {
	_, err := sparse.New(0, 3, 0, sparse.Clamp)
	assert.Error(t, err)
	_, err = sparse.NewFunc[int](1, 1, 0, sparse.Clamp, nil)
	assert.Error(t, err)
}

// TestProperty_Store_MatchesDenseModel drives random writes against both the
// store and a dense grid and checks every cell and the stored-cell listing agree.
func TestProperty_Store_MatchesDenseModel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rows := rapid.IntRange(1, 6).Draw(rt, "rows")
		cols := rapid.IntRange(1, 6).Draw(rt, "cols")
		s, err := sparse.New(rows, cols, 0, sparse.Strict)
		require.NoError(rt, err)

		dense := make([][]int, rows)
		for r := range dense {
			dense[r] = make([]int, cols)
		}

		ops := rapid.IntRange(0, 40).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			r := rapid.IntRange(0, rows-1).Draw(rt, "r")
			c := rapid.IntRange(0, cols-1).Draw(rt, "c")
			v := rapid.IntRange(0, 3).Draw(rt, "v")
			require.NoError(rt, s.Set(r, c, v))
			dense[r][c] = v
		}

		var want []sparse.Cell[int]
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				got, err := s.Get(r, c)
				require.NoError(rt, err)
				assert.Equal(rt, dense[r][c], got)
				if dense[r][c] != 0 {
					want = append(want, sparse.Cell[int]{Row: r, Col: c, Value: dense[r][c]})
				}
			}
		}
		assert.Equal(rt, want, collect(s))
		assert.Equal(rt, len(want), s.Len())
	})
}
