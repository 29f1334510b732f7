package algo

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneToTen() []float64 {
	return []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
}

func TestSeriesToSupervised(t *testing.T) {
	t.Run("one to ten with two lags", func(t *testing.T) {
		rows, err := SeriesToSupervised(oneToTen(), 2, 1, true)
		require.NoError(t, err)
		require.Len(t, rows, 8)
		assert.Equal(t, []float64{1, 2, 3}, rows[0])
		assert.Equal(t, []float64{8, 9, 10}, rows[7])
	})

	t.Run("multiple outputs", func(t *testing.T) {
		rows, err := SeriesToSupervised(oneToTen(), 3, 2, true)
		require.NoError(t, err)
		require.Len(t, rows, 6)
		assert.Equal(t, []float64{1, 2, 3, 4, 5}, rows[0])
		assert.Equal(t, []float64{6, 7, 8, 9, 10}, rows[5])
	})

	t.Run("keep NaN rows", func(t *testing.T) {
		rows, err := SeriesToSupervised([]float64{1, 2, 3}, 1, 1, false)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.True(t, math.IsNaN(rows[0][0]))
		assert.Equal(t, 1.0, rows[0][1])
		assert.Equal(t, []float64{2, 3}, rows[2])
	})

	t.Run("series shorter than window", func(t *testing.T) {
		rows, err := SeriesToSupervised([]float64{1, 2}, 4, 1, true)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("invalid window", func(t *testing.T) {
		_, err := SeriesToSupervised(oneToTen(), 0, 1, true)
		assert.ErrorIs(t, err, ErrInvalidWindow)
		_, err = SeriesToSupervised(oneToTen(), 1, 0, true)
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}

func TestSplitXY(t *testing.T) {
	X, y := SplitXY([][]float64{{1, 2, 3}, {2, 3, 4}})
	assert.Equal(t, [][]float64{{1, 2}, {2, 3}}, X)
	assert.Equal(t, []float64{3, 4}, y)
}

func TestSeriesToSupervisedProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.MaxSize = 60

	properties := gopter.NewProperties(parameters)

	properties.Property("row count is L-nIn-nOut+1", prop.ForAll(
		func(series []float64, nIn, nOut int) bool {
			rows, err := SeriesToSupervised(series, nIn, nOut, true)
			if err != nil {
				return false
			}
			return len(rows) == max(len(series)-nIn-nOut+1, 0)
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
		gen.IntRange(1, 6),
		gen.IntRange(1, 3),
	))

	properties.Property("last lag precedes the target", prop.ForAll(
		func(series []float64, nIn int) bool {
			rows, err := SeriesToSupervised(series, nIn, 1, true)
			if err != nil {
				return false
			}
			for k, row := range rows {
				if row[nIn-1] != series[k+nIn-1] || row[nIn] != series[k+nIn] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
		gen.IntRange(1, 6),
	))

	properties.Property("transform is deterministic", prop.ForAll(
		func(series []float64, nIn int) bool {
			a, errA := SeriesToSupervised(series, nIn, 1, true)
			b, errB := SeriesToSupervised(series, nIn, 1, true)
			if errA != nil || errB != nil || len(a) != len(b) {
				return false
			}
			for i := range a {
				for j := range a[i] {
					if a[i][j] != b[i][j] {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// FuzzSeriesToSupervised checks row shape for arbitrary window sizes.
func FuzzSeriesToSupervised(f *testing.F) {
	f.Add(10, 2, 1, true)
	f.Add(0, 1, 1, false)
	f.Add(5, 7, 2, true)
	f.Add(3, -1, 1, true)

	f.Fuzz(func(t *testing.T, length, nIn, nOut int, dropNaN bool) {
		if length < 0 || length > 500 || nIn > 50 || nOut > 50 {
			return
		}
		series := make([]float64, length)
		for i := range series {
			series[i] = float64(i)
		}
		rows, err := SeriesToSupervised(series, nIn, nOut, dropNaN)
		if nIn < 1 || nOut < 1 {
			if err == nil {
				t.Fatalf("expected error for nIn=%d nOut=%d", nIn, nOut)
			}
			return
		}
		if err != nil {
			t.Fatal(err)
		}
		for _, row := range rows {
			if len(row) != nIn+nOut {
				t.Fatalf("row width %d, want %d", len(row), nIn+nOut)
			}
		}
		if !dropNaN && len(rows) != length {
			t.Fatalf("got %d rows, want %d", len(rows), length)
		}
	})
}
