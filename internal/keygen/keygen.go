// Package keygen generates deterministic int64 key sets for tests and
// benchmarks.
package keygen

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/spaolacci/murmur3"
)

// fewUniqueValues is the value range of the FewUnique distribution.
const fewUniqueValues = 16

// Distribution names a key distribution.
type Distribution uint8

const (
	// Uniform draws keys uniformly over the full int64 range.
	Uniform Distribution = iota
	// Hashed is the murmur3 hash of each key's index.
	Hashed
	// Sorted is 0, 1, ..., n-1.
	Sorted
	// Reversed is n-1, n-2, ..., 0.
	Reversed
	// FewUnique draws keys from a small range, so most keys repeat.
	FewUnique
)

var names = [...]string{
	Uniform:   "uniform",
	Hashed:    "hashed",
	Sorted:    "sorted",
	Reversed:  "reversed",
	FewUnique: "fewunique",
}

func (d Distribution) String() string {
	if int(d) < len(names) {
		return names[d]
	}
	return "unknown"
}

// Parse returns the distribution named by String.
func Parse(name string) (Distribution, error) {
	for d, n := range names {
		if n == name {
			return Distribution(d), nil
		}
	}
	return 0, fmt.Errorf("keygen: unknown distribution %q", name)
}

// Generate returns n keys of distribution d. The same seed always yields
// the same keys.
func Generate(d Distribution, n int, seed uint64) ([]int64, error) {
	keys := make([]int64, n)
	rng := rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))

	switch d {
	case Uniform:
		for i := range keys {
			keys[i] = int64(rng.Uint64())
		}
	case Hashed:
		var buf [8]byte
		for i := range keys {
			binary.LittleEndian.PutUint64(buf[:], uint64(i))
			keys[i] = int64(murmur3.Sum64WithSeed(buf[:], uint32(seed)))
		}
	case Sorted:
		for i := range keys {
			keys[i] = int64(i)
		}
	case Reversed:
		for i := range keys {
			keys[i] = int64(n - 1 - i)
		}
	case FewUnique:
		for i := range keys {
			keys[i] = rng.Int64N(fewUniqueValues)
		}
	default:
		return nil, fmt.Errorf("keygen: unknown distribution %d", d)
	}
	return keys, nil
}
