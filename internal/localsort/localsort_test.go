package localsort

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(sum[:8]), binary.LittleEndian.Uint64(sum[8:])))
}

// inputShapes returns named inputs covering the quicksort pathologies.
func inputShapes(rng *rand.Rand, n int) map[string][]int64 {
	random := make([]int64, n)
	for i := range random {
		random[i] = rng.Int64N(1 << 40)
	}
	sorted := slices.Clone(random)
	slices.Sort(sorted)
	reversed := slices.Clone(sorted)
	slices.Reverse(reversed)
	equal := make([]int64, n)
	for i := range equal {
		equal[i] = 7
	}
	fewUnique := make([]int64, n)
	for i := range fewUnique {
		fewUnique[i] = rng.Int64N(4)
	}
	organ := make([]int64, n)
	for i := range organ {
		organ[i] = int64(min(i, n-i))
	}
	return map[string][]int64{
		"random":    random,
		"sorted":    sorted,
		"reversed":  reversed,
		"equal":     equal,
		"fewUnique": fewUnique,
		"organPipe": organ,
	}
}

func TestRangeSorters(t *testing.T) {
	sorters := map[string]RangeSorter[int64]{
		"quicksort": Quicksort[int64]{},
		"introsort": Introsort[int64]{},
		"stdlib":    Stdlib[int64]{},
		"func":      Func[int64](slices.Sort[[]int64]),
	}

	for _, n := range []int{0, 1, 2, 3, insertionThreshold, insertionThreshold + 1, 257, 3000} {
		for shape, input := range inputShapes(newTestRNG(t), n) {
			want := slices.Clone(input)
			slices.Sort(want)
			for name, s := range sorters {
				t.Run(fmt.Sprintf("%s/%s/n=%d", name, shape, n), func(t *testing.T) {
					got := slices.Clone(input)
					s.SortRange(got)
					require.Equal(t, want, got)
				})
			}
		}
	}
}

// TestSortRangeTouchesOnlyItsRange verifies a sub-slice sort leaves the
// surrounding elements untouched.
func TestSortRangeTouchesOnlyItsRange(t *testing.T) {
	data := []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	Quicksort[int]{}.SortRange(data[3:7])
	require.Equal(t, []int{9, 8, 7, 3, 4, 5, 6, 2, 1, 0}, data)

	data = []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	Introsort[int]{}.SortRange(data[3:7])
	require.Equal(t, []int{9, 8, 7, 3, 4, 5, 6, 2, 1, 0}, data)
}

func TestPartitionLast(t *testing.T) {
	data := []int{5, 3, 8, 1, 9, 2, 4}
	p := partitionLast(data)
	require.Equal(t, 4, data[p])
	for i := 0; i < p; i++ {
		require.LessOrEqual(t, data[i], 4)
	}
	for i := p + 1; i < len(data); i++ {
		require.Greater(t, data[i], 4)
	}
}

func TestStrings(t *testing.T) {
	words := []string{"pear", "apple", "fig", "banana", "apple", "cherry"}
	want := slices.Clone(words)
	slices.Sort(want)

	got := slices.Clone(words)
	Quicksort[string]{}.SortRange(got)
	require.Equal(t, want, got)

	got = slices.Clone(words)
	Introsort[string]{}.SortRange(got)
	require.Equal(t, want, got)
}

func TestHeapsort(t *testing.T) {
	rng := newTestRNG(t)
	data := make([]int32, 1000)
	for i := range data {
		data[i] = rng.Int32()
	}
	heapsort(data)
	require.True(t, slices.IsSorted(data))
}

func BenchmarkRangeSorters(b *testing.B) {
	rng := newTestRNG(b)
	input := make([]int64, 1<<16)
	for i := range input {
		input[i] = rng.Int64()
	}
	sorters := map[string]RangeSorter[int64]{
		"quicksort": Quicksort[int64]{},
		"introsort": Introsort[int64]{},
		"stdlib":    Stdlib[int64]{},
	}
	work := make([]int64, len(input))
	for name, s := range sorters {
		b.Run(name, func(b *testing.B) {
			for b.Loop() {
				copy(work, input)
				s.SortRange(work)
			}
		})
	}
}
