// Package samplesort implements a parallel sample sort (bucket partition
// sort) for slices of ordered keys.
//
// A sort runs in three phases:
//
//  1. Splitter selection: sample distinct input positions, sort the sample,
//     and keep buckets-1 of the sampled keys as bucket boundaries.
//  2. Partition: one goroutine per worker classifies its contiguous share of
//     the input into buckets and, after a barrier, writes its keys to their
//     final bucket region of the output.
//  3. Local sort: one goroutine per bucket sorts its region in place.
//
// Concatenating the sorted buckets in splitter order yields the sorted
// output. Two partition strategies are available (see Strategy): a
// deferred-offset strategy that derives disjoint write positions from a
// per-worker count table, and a lock-free strategy that pushes keys onto
// shared per-bucket stacks.
//
// # Basic Usage
//
//	s, err := samplesort.New[int64](
//	    samplesort.WithStrategy(samplesort.StrategyLockFree),
//	    samplesort.WithExponent(4), // 8 workers, 8 buckets
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := s.Sort(ctx, keys)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.BucketSizes, res.Elapsed)
//
// Or, for a one-off in-place sort:
//
//	err := samplesort.Sort(ctx, keys, samplesort.WithWorkers(4))
//
// # Package Structure
//
//   - Public API: sorter.go (New, Sort, SortInPlace), wave.go (worker waves)
//   - Configuration: options.go (Option, With* functions)
//   - Strategy dispatch: algorithm.go (Strategy, LocalAlgorithm, factories)
//   - Errors: errors/ (all exported sentinels)
//   - Phases: internal/splitter, internal/partition, internal/barrier,
//     internal/localsort
//   - Key files: keyfile/ (text and checksummed binary key files)
//   - Tools: cmd/mapsort (sort a key file), cmd/bench (strategy timings)
package samplesort
