// Package verify checks sort results: ordering, and that the output is a
// permutation of the input.
package verify

import (
	"cmp"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// FirstUnsorted returns the first index i with keys[i] < keys[i-1], or -1 if
// keys is in non-decreasing order.
func FirstUnsorted[K cmp.Ordered](keys []K) int {
	for i := 1; i < len(keys); i++ {
		if cmp.Less(keys[i], keys[i-1]) {
			return i
		}
	}
	return -1
}

// Fingerprint is an order-independent digest of a multiset of int64 keys.
// Two slices that are permutations of each other have equal fingerprints.
type Fingerprint struct {
	Count int
	Sum   uint64 // wrapping sum of per-key xxhash digests
	Xor   uint64 // xor of per-key digests, rotated by one
}

// Of computes the fingerprint of keys.
func Of(keys []int64) Fingerprint {
	var (
		fp  = Fingerprint{Count: len(keys)}
		buf [8]byte
	)
	for _, k := range keys {
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		h := xxhash.Sum64(buf[:])
		fp.Sum += h
		fp.Xor ^= h<<1 | h>>63
	}
	return fp
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("n=%d sum=%016x xor=%016x", f.Count, f.Sum, f.Xor)
}

// Check reports an error unless output is sorted and has the fingerprint
// of the input it was produced from.
func Check(input Fingerprint, output []int64) error {
	if i := FirstUnsorted(output); i >= 0 {
		return fmt.Errorf("verify: output[%d]=%d < output[%d]=%d", i, output[i], i-1, output[i-1])
	}
	if got := Of(output); got != input {
		return fmt.Errorf("verify: output is not a permutation of input: want %v, got %v", input, got)
	}
	return nil
}
