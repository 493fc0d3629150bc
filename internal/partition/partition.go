// Package partition implements the concurrent partition phase of the sort:
// classifying every input key into a splitter-defined bucket and laying the
// buckets out, in splitter order, in the output buffer.
//
// Two strategies implement the same Engine contract:
//
//   - Deferred: each worker counts its keys per bucket into a private row of
//     a count Grid and remembers every key's bucket. After the barrier the
//     grid is read-only; each worker derives its own write offsets from it
//     and copies its keys out. Writes never overlap, so no locking is needed.
//   - LockFree: each worker pushes its keys onto shared per-bucket stacks
//     with compare-and-swap and bumps an atomic per-bucket counter. After the
//     barrier the counters give the layout and buckets are drained.
//
// # Bucket convention
//
// With splitters s[0] <= s[1] <= ... <= s[B-2], a key k belongs to
//
//	bucket 0     if k <= s[0]
//	bucket i     if s[i-1] < k <= s[i]
//	bucket B-1   if k > s[B-2]
//
// Every interval is half-open on the left and closed on the right, the
// same convention for the interior and the edges.
package partition

import (
	"cmp"
	"context"
	"slices"
)

// contextCheckInterval is how many keys a worker processes between context
// checks.
const contextCheckInterval = 10000

// Engine is one partition strategy prepared for a single sort.
//
// RunWorker is called exactly once for every worker id in [0, Workers())
// from distinct goroutines. Each call classifies its range, waits at the
// barrier, then writes its share of the output. BucketSizes and Output are
// valid once every RunWorker call has returned nil.
type Engine interface {
	Workers() int
	Buckets() int
	RunWorker(ctx context.Context, w int) error
	BucketSizes() []int
}

// Hooks observes worker progress. The zero value observes nothing.
type Hooks struct {
	// BeforeBarrier runs on worker w after classification, immediately
	// before it arrives at the barrier.
	BeforeBarrier func(w int)
}

func (h Hooks) beforeBarrier(w int) {
	if h.BeforeBarrier != nil {
		h.BeforeBarrier(w)
	}
}

// Range returns the contiguous input range [start, end) assigned to worker
// w of workers over n keys. Every worker gets n/workers keys and the last
// worker also absorbs the remainder.
func Range(w, n, workers int) (start, end int) {
	size := n / workers
	start = w * size
	end = start + size
	if w == workers-1 {
		end = n
	}
	return start, end
}

// Classify returns the bucket of key under splitters (see the package
// comment for the convention). splitters must be sorted.
func Classify[K cmp.Ordered](splitters []K, key K) int {
	// BinarySearch returns the first index i with splitters[i] >= key,
	// which is exactly the first interval whose upper bound admits key.
	i, _ := slices.BinarySearch(splitters, key)
	return i
}

// BucketStarts converts bucket sizes into each bucket's first output index.
func BucketStarts(sizes []int) []int {
	starts := make([]int, len(sizes))
	sum := 0
	for b, s := range sizes {
		starts[b] = sum
		sum += s
	}
	return starts
}

// contextChecker polls a context once every contextCheckInterval calls.
type contextChecker struct {
	ctx     context.Context
	counter int
}

func (c *contextChecker) check() error {
	c.counter++
	if c.counter < contextCheckInterval {
		return nil
	}
	c.counter = 0
	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return nil
	}
}
