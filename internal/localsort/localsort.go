// Package localsort provides the sequential sorters applied to each bucket
// once the partition phase has isolated it.
//
// All sorters implement RangeSorter, the capability "sort this mutable range
// in place, ascending". The partition engine only depends on that contract,
// so a caller needing a bounded worst case swaps Quicksort for Introsort
// without touching anything else.
package localsort

import (
	"cmp"
	"math/bits"
	"slices"
)

// insertionThreshold: ranges this size or smaller are insertion sorted by
// Introsort.
const insertionThreshold = 24

// RangeSorter sorts a contiguous range in place, ascending.
//
// Implementations must not retain data after SortRange returns. A single
// RangeSorter is called concurrently on disjoint ranges, so implementations
// must be safe for concurrent use.
type RangeSorter[K cmp.Ordered] interface {
	SortRange(data []K)
}

// Func adapts an ordinary function to RangeSorter.
type Func[K cmp.Ordered] func(data []K)

// SortRange calls f(data).
func (f Func[K]) SortRange(data []K) {
	f(data)
}

// Quicksort is a partition-exchange sort with the last element as pivot
// (Lomuto partitioning). Average O(n log n); O(n²) on already sorted or
// pivot-adversarial input.
//
// Recursion goes into the smaller side and loops on the larger, so stack
// depth stays O(log n) even when the comparison count degrades.
type Quicksort[K cmp.Ordered] struct{}

// SortRange implements RangeSorter.
func (Quicksort[K]) SortRange(data []K) {
	quicksort(data)
}

func quicksort[K cmp.Ordered](data []K) {
	for len(data) > 1 {
		p := partitionLast(data)
		left, right := data[:p], data[p+1:]
		if len(left) < len(right) {
			quicksort(left)
			data = right
		} else {
			quicksort(right)
			data = left
		}
	}
}

// partitionLast moves every element <= data[len-1] before it and returns
// the pivot's final index.
func partitionLast[K cmp.Ordered](data []K) int {
	hi := len(data) - 1
	pivot := data[hi]
	i := 0
	for j := 0; j < hi; j++ {
		if data[j] <= pivot {
			data[i], data[j] = data[j], data[i]
			i++
		}
	}
	data[i], data[hi] = data[hi], data[i]
	return i
}

// Introsort is quicksort with median-of-three pivots, insertion sort for
// small ranges and a heapsort fallback once recursion exceeds 2*log2(n).
// Worst case O(n log n).
type Introsort[K cmp.Ordered] struct{}

// SortRange implements RangeSorter.
func (Introsort[K]) SortRange(data []K) {
	if len(data) <= 1 {
		return
	}
	introsort(data, 2*bits.Len(uint(len(data))))
}

func introsort[K cmp.Ordered](data []K, depthLimit int) {
	for len(data) > insertionThreshold {
		if depthLimit == 0 {
			heapsort(data)
			return
		}
		depthLimit--

		medianOfThreeToEnd(data)
		p := partitionLast(data)
		left, right := data[:p], data[p+1:]
		if len(left) < len(right) {
			introsort(left, depthLimit)
			data = right
		} else {
			introsort(right, depthLimit)
			data = left
		}
	}
	insertionSort(data)
}

// medianOfThreeToEnd places the median of the first, middle and last
// elements at the end, where partitionLast expects its pivot.
func medianOfThreeToEnd[K cmp.Ordered](data []K) {
	lo, mid, hi := 0, len(data)/2, len(data)-1
	if data[mid] < data[lo] {
		data[mid], data[lo] = data[lo], data[mid]
	}
	if data[hi] < data[lo] {
		data[hi], data[lo] = data[lo], data[hi]
	}
	// data[lo] is now the minimum; the median is min(data[mid], data[hi]).
	if data[mid] < data[hi] {
		data[mid], data[hi] = data[hi], data[mid]
	}
}

func insertionSort[K cmp.Ordered](data []K) {
	for i := 1; i < len(data); i++ {
		key := data[i]
		j := i - 1
		for j >= 0 && data[j] > key {
			data[j+1] = data[j]
			j--
		}
		data[j+1] = key
	}
}

func heapsort[K cmp.Ordered](data []K) {
	n := len(data)
	for i := n/2 - 1; i >= 0; i-- {
		siftDown(data, i, n)
	}
	for i := n - 1; i > 0; i-- {
		data[0], data[i] = data[i], data[0]
		siftDown(data, 0, i)
	}
}

func siftDown[K cmp.Ordered](data []K, i, n int) {
	for {
		largest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && data[left] > data[largest] {
			largest = left
		}
		if right < n && data[right] > data[largest] {
			largest = right
		}
		if largest == i {
			return
		}
		data[i], data[largest] = data[largest], data[i]
		i = largest
	}
}

// Stdlib delegates to slices.Sort (pattern-defeating quicksort).
type Stdlib[K cmp.Ordered] struct{}

// SortRange implements RangeSorter.
func (Stdlib[K]) SortRange(data []K) {
	slices.Sort(data)
}
