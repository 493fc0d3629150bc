// Package bits provides low-level bit manipulation primitives.
package bits

import "math/bits"

// FastRange maps a 64-bit random value uniformly to [0, n).
// Uses the "fastrange" technique: multiply and take high bits.
// This avoids the modulo bias of rand % n, which skews toward low
// indices when n does not divide 2^64.
func FastRange(x uint64, n int) int {
	if n <= 0 {
		return 0
	}
	hi, _ := bits.Mul64(x, uint64(n))
	return int(hi)
}
