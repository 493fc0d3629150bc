package bits

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// TestFastRangeMonotonicity verifies that for a fixed n,
// x1 < x2 implies FastRange(x1,n) <= FastRange(x2,n).
func TestFastRangeMonotonicity(t *testing.T) {
	rng := newTestRNG(t)
	const iterations = 10000

	for i := 0; i < iterations; i++ {
		n := rng.IntN(math.MaxInt32) + 1
		x1 := rng.Uint64()
		x2 := rng.Uint64()
		if x1 > x2 {
			x1, x2 = x2, x1
		}
		require.LessOrEqual(t, FastRange(x1, n), FastRange(x2, n), "iter %d: n=%d", i, n)
	}
}

// TestFastRangeRange verifies that the result is always in [0, n).
func TestFastRangeRange(t *testing.T) {
	rng := newTestRNG(t)
	const iterations = 10000

	for i := 0; i < iterations; i++ {
		n := rng.IntN(1<<40) + 1
		got := FastRange(rng.Uint64(), n)
		require.GreaterOrEqual(t, got, 0)
		require.Less(t, got, n, "iter %d", i)
	}
}

func TestFastRangeEdgeCases(t *testing.T) {
	for _, x := range []uint64{0, 1, math.MaxUint64, 0xDEADBEEF} {
		require.Equal(t, 0, FastRange(x, 0), "n=0")
		require.Equal(t, 0, FastRange(x, -3), "negative n")
		require.Equal(t, 0, FastRange(x, 1), "n=1")
	}

	// x=0 always maps to 0, x=MaxUint64 maps to n-1.
	for n := 2; n <= 100; n++ {
		require.Equal(t, 0, FastRange(0, n))
		require.Equal(t, n-1, FastRange(math.MaxUint64, n))
	}
}

// TestFastRangeUniformity checks that every slot of a small range is hit
// with roughly equal frequency.
func TestFastRangeUniformity(t *testing.T) {
	rng := newTestRNG(t)
	const n = 16
	const draws = 160000
	var hist [n]int
	for range draws {
		hist[FastRange(rng.Uint64(), n)]++
	}
	for i, c := range hist {
		require.InDelta(t, draws/n, c, 0.1*draws/n, "slot %d", i)
	}
}
