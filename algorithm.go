package samplesort

import (
	"cmp"
	"fmt"

	sserrors "github.com/tamirms/samplesort/errors"
	"github.com/tamirms/samplesort/internal/localsort"
	"github.com/tamirms/samplesort/internal/partition"
)

// Strategy identifies the partition strategy.
type Strategy uint8

const (
	// StrategyDeferredOffset counts keys per (worker, bucket) privately and
	// computes every write offset from the counts after the barrier.
	StrategyDeferredOffset Strategy = 0

	// StrategyLockFree pushes keys onto shared per-bucket stacks with
	// compare-and-swap and lays buckets out from atomic counters.
	StrategyLockFree Strategy = 1
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyDeferredOffset:
		return "deferred-offset"
	case StrategyLockFree:
		return "lock-free"
	default:
		return "unknown"
	}
}

// ParseStrategy returns the strategy named by String.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "deferred-offset", "deferred":
		return StrategyDeferredOffset, nil
	case "lock-free", "lockfree":
		return StrategyLockFree, nil
	default:
		return 0, fmt.Errorf("%w: %q", sserrors.ErrInvalidStrategy, name)
	}
}

// LocalAlgorithm identifies the sequential sort applied to each bucket.
type LocalAlgorithm uint8

const (
	// LocalQuicksort is recursive partition-exchange with the last element
	// as pivot. O(n²) on already sorted buckets.
	LocalQuicksort LocalAlgorithm = 0

	// LocalIntrosort is median-of-three quicksort with insertion sort for
	// small ranges and a heapsort fallback. Worst case O(n log n).
	LocalIntrosort LocalAlgorithm = 1

	// LocalStdlib is slices.Sort.
	LocalStdlib LocalAlgorithm = 2
)

// String returns the algorithm name.
func (a LocalAlgorithm) String() string {
	switch a {
	case LocalQuicksort:
		return "quicksort"
	case LocalIntrosort:
		return "introsort"
	case LocalStdlib:
		return "stdlib"
	default:
		return "unknown"
	}
}

// ParseLocalAlgorithm returns the algorithm named by String.
func ParseLocalAlgorithm(name string) (LocalAlgorithm, error) {
	switch name {
	case "quicksort":
		return LocalQuicksort, nil
	case "introsort":
		return LocalIntrosort, nil
	case "stdlib":
		return LocalStdlib, nil
	default:
		return 0, fmt.Errorf("%w: %q", sserrors.ErrInvalidLocalSort, name)
	}
}

// RangeSorter is the local sort capability: sort data in place, ascending.
//
// One RangeSorter is called concurrently on the disjoint bucket ranges of
// the output, so it must be safe for concurrent use and must not retain
// data after SortRange returns.
type RangeSorter[K cmp.Ordered] = localsort.RangeSorter[K]

// RangeSorterFunc adapts an ordinary function to RangeSorter.
type RangeSorterFunc[K cmp.Ordered] = localsort.Func[K]

// newRangeSorter creates the local sorter for algo.
func newRangeSorter[K cmp.Ordered](algo LocalAlgorithm) (RangeSorter[K], error) {
	switch algo {
	case LocalQuicksort:
		return localsort.Quicksort[K]{}, nil
	case LocalIntrosort:
		return localsort.Introsort[K]{}, nil
	case LocalStdlib:
		return localsort.Stdlib[K]{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", sserrors.ErrInvalidLocalSort, algo)
	}
}

// newEngine creates the partition engine for strategy.
func newEngine[K cmp.Ordered](strategy Strategy, input, output, splitters []K, workers int,
	pool *partition.SlabPool[K], hooks partition.Hooks) (partition.Engine, error) {
	switch strategy {
	case StrategyDeferredOffset:
		d := partition.NewDeferred(input, output, splitters, workers)
		d.Hooks = hooks
		return d, nil
	case StrategyLockFree:
		l := partition.NewLockFree(input, output, splitters, workers, pool)
		l.Hooks = hooks
		return l, nil
	default:
		return nil, fmt.Errorf("%w: %d", sserrors.ErrInvalidStrategy, strategy)
	}
}
