// Package splitter selects the boundary keys that divide the key space into
// buckets.
//
// Selection draws a random sample of distinct input positions, sorts the
// sampled keys and keeps bucketCount-1 of them. With a sample of exactly
// bucketCount-1 keys every sampled key is a splitter; a larger sample
// (oversampling) keeps evenly spaced quantiles, which balances buckets far
// better on the same input.
package splitter

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	sserrors "github.com/tamirms/samplesort/errors"
	intbits "github.com/tamirms/samplesort/internal/bits"
)

const (
	// attemptsPerSample bounds rejection sampling relative to the sample size.
	attemptsPerSample = 64

	// minAttempts is the floor of DefaultMaxAttempts, so tiny samples drawn
	// from tiny inputs still have room for the coupon-collector tail.
	minAttempts = 4096
)

// DefaultMaxAttempts returns the draw budget used when the caller does not
// configure one.
func DefaultMaxAttempts(sampleSize int) int {
	return max(attemptsPerSample*sampleSize, minAttempts)
}

// Select returns bucketCount-1 splitters in non-decreasing order.
//
// sampleSize distinct positions are drawn from input by rejection sampling:
// draw a position, discard it if already chosen, until sampleSize positions
// are held. Each draw counts against maxAttempts; when a sample approaches
// len(input) the expected number of draws grows like n·ln(n), and exhausting
// the budget returns ErrSampleNotConverged instead of looping forever.
//
// bucketCount == 1 needs no splitters and returns an empty slice without
// consuming randomness.
func Select[K cmp.Ordered](rng *rand.Rand, input []K, sampleSize, bucketCount, maxAttempts int) ([]K, error) {
	if bucketCount < 1 {
		return nil, sserrors.ErrInvalidBuckets
	}
	need := bucketCount - 1
	if need == 0 {
		return []K{}, nil
	}
	if sampleSize < need {
		return nil, fmt.Errorf("%w: sample %d < %d splitters", sserrors.ErrInvalidSampleSize, sampleSize, need)
	}
	if sampleSize > len(input) {
		return nil, fmt.Errorf("%w: sample %d > input %d", sserrors.ErrSampleTooLarge, sampleSize, len(input))
	}

	sample, err := Draw(rng, input, sampleSize, maxAttempts)
	if err != nil {
		return nil, err
	}
	slices.Sort(sample)

	if sampleSize == need {
		return sample, nil
	}
	return Quantiles(sample, bucketCount), nil
}

// Draw returns the keys at n distinct random positions of input, in draw
// order.
func Draw[K cmp.Ordered](rng *rand.Rand, input []K, n, maxAttempts int) ([]K, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts(n)
	}

	chosen := make(map[int]struct{}, n)
	sample := make([]K, 0, n)
	for attempts := 0; len(sample) < n; attempts++ {
		if attempts >= maxAttempts {
			return nil, fmt.Errorf("%w: %d of %d distinct positions after %d draws from %d keys",
				sserrors.ErrSampleNotConverged, len(sample), n, attempts, len(input))
		}
		idx := intbits.FastRange(rng.Uint64(), len(input))
		if _, dup := chosen[idx]; dup {
			continue
		}
		chosen[idx] = struct{}{}
		sample = append(sample, input[idx])
	}
	return sample, nil
}

// Quantiles picks bucketCount-1 evenly spaced keys from a sorted sample.
// Splitter j is the (j+1)/bucketCount quantile of the sample, so the
// extreme buckets get the same expected share as the interior ones.
func Quantiles[K cmp.Ordered](sorted []K, bucketCount int) []K {
	s := len(sorted)
	out := make([]K, bucketCount-1)
	for j := range out {
		out[j] = sorted[(j+1)*s/bucketCount]
	}
	return out
}

// HasDistinct reports whether input holds at least n distinct values.
// It stops scanning as soon as n values have been seen.
func HasDistinct[K cmp.Ordered](input []K, n int) bool {
	if n <= 0 {
		return true
	}
	if len(input) < n {
		return false
	}
	return CountDistinct(input, n) >= n
}

// CountDistinct returns the number of distinct values in input, capped at
// limit. It stops scanning once limit values have been seen.
func CountDistinct[K cmp.Ordered](input []K, limit int) int {
	if limit <= 0 || len(input) == 0 {
		return 0
	}
	if limit == 1 {
		return 1
	}
	seen := make(map[K]struct{}, min(limit, len(input)))
	for _, k := range input {
		seen[k] = struct{}{}
		if len(seen) >= limit {
			return limit
		}
	}
	return len(seen)
}
