package splitter

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	sserrors "github.com/tamirms/samplesort/errors"
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(sum[:8]), binary.LittleEndian.Uint64(sum[8:])))
}

func randomKeys(rng *rand.Rand, n int) []int64 {
	keys := make([]int64, n)
	for i := range keys {
		keys[i] = rng.Int64()
	}
	return keys
}

func TestSelectReturnsSortedSplitters(t *testing.T) {
	rng := newTestRNG(t)
	input := randomKeys(rng, 10000)

	for _, tc := range []struct {
		name            string
		sample, buckets int
	}{
		{"exact", 7, 8},
		{"oversampled", 100, 8},
		{"twoBuckets", 1, 2},
		{"manyBuckets", 255, 256},
	} {
		t.Run(tc.name, func(t *testing.T) {
			spl, err := Select(rng, input, tc.sample, tc.buckets, 0)
			require.NoError(t, err)
			require.Len(t, spl, tc.buckets-1)
			require.True(t, slices.IsSorted(spl))
			for _, s := range spl {
				require.Contains(t, input, s)
			}
		})
	}
}

func TestSelectSingleBucket(t *testing.T) {
	spl, err := Select(newTestRNG(t), []int{3, 1, 2}, 0, 1, 0)
	require.NoError(t, err)
	require.Empty(t, spl)
}

func TestSelectExactSampleIsTheSplitterSet(t *testing.T) {
	// Sampling every position of a permutation yields every key.
	input := []int{50, 10, 40, 20, 30}
	spl, err := Select(newTestRNG(t), input, 5, 6, 0)
	require.NoError(t, err)
	require.Equal(t, []int{10, 20, 30, 40, 50}, spl)
}

func TestSelectErrors(t *testing.T) {
	rng := newTestRNG(t)
	input := []int{1, 2, 3, 4}

	_, err := Select(rng, input, 1, 0, 0)
	require.ErrorIs(t, err, sserrors.ErrInvalidBuckets)
	require.ErrorIs(t, err, sserrors.ErrConfiguration)

	_, err = Select(rng, input, 2, 4, 0)
	require.ErrorIs(t, err, sserrors.ErrInvalidSampleSize)

	_, err = Select(rng, input, 5, 4, 0)
	require.ErrorIs(t, err, sserrors.ErrSampleTooLarge)
}

// TestDrawAttemptCap verifies the bounded retry: drawing every position of
// a large input with a tiny budget fails with a configuration error.
func TestDrawAttemptCap(t *testing.T) {
	input := make([]int, 1000)
	_, err := Draw(newTestRNG(t), input, 1000, 1000)
	require.ErrorIs(t, err, sserrors.ErrSampleNotConverged)
	require.ErrorIs(t, err, sserrors.ErrConfiguration)
}

func TestDrawDistinctPositions(t *testing.T) {
	// Keys equal their positions, so distinct keys mean distinct positions.
	input := make([]int, 200)
	for i := range input {
		input[i] = i
	}
	sample, err := Draw(newTestRNG(t), input, 200, 0)
	require.NoError(t, err)
	slices.Sort(sample)
	require.Equal(t, input, sample)
}

func TestDrawDeterministicForSeed(t *testing.T) {
	input := randomKeys(newTestRNG(t), 500)
	a, err := Draw(rand.New(rand.NewPCG(1, 2)), input, 50, 0)
	require.NoError(t, err)
	b, err := Draw(rand.New(rand.NewPCG(1, 2)), input, 50, 0)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestQuantiles(t *testing.T) {
	sorted := make([]int, 100)
	for i := range sorted {
		sorted[i] = i
	}
	require.Equal(t, []int{25, 50, 75}, Quantiles(sorted, 4))
	require.Equal(t, []int{50}, Quantiles(sorted, 2))
	require.Len(t, Quantiles(sorted, 100), 99)
}

func TestHasDistinct(t *testing.T) {
	require.True(t, HasDistinct([]int{}, 0))
	require.False(t, HasDistinct([]int{}, 1))
	require.True(t, HasDistinct([]int{4}, 1))
	require.True(t, HasDistinct([]int{1, 1, 2, 2, 3}, 3))
	require.False(t, HasDistinct([]int{1, 1, 2, 2, 2}, 3))
	require.False(t, HasDistinct([]int{1, 2}, 3))
}

func TestCountDistinct(t *testing.T) {
	tests := []struct {
		input []int
		limit int
		want  int
	}{
		{nil, 5, 0},
		{[]int{3, 3, 3}, 0, 0},
		{[]int{3, 3, 3}, 1, 1},
		{[]int{3, 3, 3}, 5, 1},
		{[]int{0, 1, 0, 1, 1}, 8, 2},
		{[]int{5, 4, 3, 2, 1}, 3, 3},
		{[]int{5, 4, 3, 2, 1}, 5, 5},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, CountDistinct(tt.input, tt.limit), "%v limit %d", tt.input, tt.limit)
	}
}

func TestDefaultMaxAttempts(t *testing.T) {
	require.Equal(t, minAttempts, DefaultMaxAttempts(1))
	require.Equal(t, attemptsPerSample*1000, DefaultMaxAttempts(1000))
}
