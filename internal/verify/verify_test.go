package verify

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstUnsorted(t *testing.T) {
	tests := []struct {
		keys []int64
		want int
	}{
		{nil, -1},
		{[]int64{1}, -1},
		{[]int64{1, 1, 2, 3}, -1},
		{[]int64{2, 1}, 1},
		{[]int64{1, 2, 3, 2, 1}, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FirstUnsorted(tt.keys), "%v", tt.keys)
	}
}

func TestFingerprintOrderIndependent(t *testing.T) {
	a := []int64{5, 3, 8, 1, 9, 2, 3}
	b := slices.Clone(a)
	slices.Sort(b)
	assert.Equal(t, Of(a), Of(b))
}

func TestFingerprintDetectsChanges(t *testing.T) {
	base := Of([]int64{1, 2, 3, 3})

	assert.NotEqual(t, base, Of([]int64{1, 2, 3}), "dropped duplicate")
	assert.NotEqual(t, base, Of([]int64{1, 2, 2, 3}), "swapped duplicate")
	assert.NotEqual(t, base, Of([]int64{1, 2, 3, 4}), "replaced key")
	// An extra pair of equal keys cancels in the xor but not in the sum.
	assert.NotEqual(t, Of([]int64{1, 2}), Of([]int64{1, 1, 1, 2}))
}

func TestCheck(t *testing.T) {
	in := []int64{4, 2, 2, 9}
	fp := Of(in)

	require.NoError(t, Check(fp, []int64{2, 2, 4, 9}))
	require.ErrorContains(t, Check(fp, []int64{2, 4, 2, 9}), "output[2]")
	require.ErrorContains(t, Check(fp, []int64{2, 4, 9}), "permutation")
}
