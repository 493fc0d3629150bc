// Bench times the parallel sample sort against a sequential sort of the
// same keys.
//
// Usage:
//
//	go run ./cmd/bench -keys 10000000 -exponent 4
//	go run ./cmd/bench -keys 1000000 -dist fewunique -workers 8 -buckets 32
//
// Flags:
//
//	-keys      Number of keys to sort (default: 10,000,000)
//	-dist      Key distribution: uniform, hashed, sorted, reversed, fewunique (default: uniform)
//	-exponent  Use 2^(i-1) workers and buckets; 0 uses -workers/-buckets (default: 0)
//	-workers   Number of partition workers (default: GOMAXPROCS)
//	-buckets   Number of buckets, 0 for one per worker (default: 0)
//	-local     Local sort: quicksort, introsort or stdlib (default: introsort)
//	-seed      Seed for key generation and splitter sampling (default: 1)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/metrics"
	"runtime/pprof"
	"slices"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/tamirms/samplesort"
	"github.com/tamirms/samplesort/internal/keygen"
	"github.com/tamirms/samplesort/internal/localsort"
	"github.com/tamirms/samplesort/internal/verify"
)

// getMaxRSS returns the maximum resident set size in bytes.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// MaxRss is in bytes on macOS and in kilobytes on Linux.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

// peakHeap samples live heap bytes until stop is called and returns the
// largest value seen.
func peakHeap() (stop func() uint64) {
	var peak atomic.Uint64
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		samples := []metrics.Sample{{Name: "/memory/classes/heap/objects:bytes"}}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				metrics.Read(samples)
				heapBytes := samples[0].Value.Uint64()
				for {
					old := peak.Load()
					if heapBytes <= old || peak.CompareAndSwap(old, heapBytes) {
						break
					}
				}
			}
		}
	}()
	return func() uint64 {
		close(done)
		<-finished
		return peak.Load()
	}
}

type run struct {
	name      string
	elapsed   time.Duration
	partition time.Duration
	localSort time.Duration
	peakHeap  uint64
	buckets   []int
}

func main() {
	keysFlag := flag.Int("keys", 10_000_000, "number of keys")
	distFlag := flag.String("dist", "uniform", "key distribution: uniform, hashed, sorted, reversed, fewunique")
	exponentFlag := flag.Int("exponent", 0, "use 2^(i-1) workers and buckets (0 = use -workers/-buckets)")
	workersFlag := flag.Int("workers", runtime.GOMAXPROCS(0), "number of partition workers")
	bucketsFlag := flag.Int("buckets", 0, "number of buckets (0 = one per worker)")
	localFlag := flag.String("local", "introsort", "local sort: quicksort, introsort or stdlib")
	seedFlag := flag.Uint64("seed", 1, "seed for key generation and splitter sampling")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (parallel sorts only)")
	flag.Parse()

	dist, err := keygen.Parse(*distFlag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	local, err := samplesort.ParseLocalAlgorithm(*localFlag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	fmt.Printf("Generating %d %s keys...\n", *keysFlag, dist)
	input, err := keygen.Generate(dist, *keysFlag, *seedFlag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	want := verify.Of(input)

	opts := []samplesort.Option{
		samplesort.WithLocalAlgorithm(local),
		samplesort.WithSeed(*seedFlag),
	}
	if *exponentFlag > 0 {
		opts = append(opts, samplesort.WithExponent(*exponentFlag))
	} else {
		opts = append(opts, samplesort.WithWorkers(*workersFlag))
		if *bucketsFlag > 0 {
			opts = append(opts, samplesort.WithBuckets(*bucketsFlag))
		}
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
	}

	var runs []run
	var workers, buckets int
	for _, strategy := range []samplesort.Strategy{samplesort.StrategyDeferredOffset, samplesort.StrategyLockFree} {
		fmt.Printf("Sorting (%s)...\n", strategy)
		s, err := samplesort.New[int64](append(slices.Clone(opts), samplesort.WithStrategy(strategy))...)
		if err != nil {
			fmt.Printf("New failed: %v\n", err)
			os.Exit(1)
		}

		runtime.GC()
		stop := peakHeap()
		res, err := s.Sort(context.Background(), input)
		peak := stop()
		if err != nil {
			fmt.Printf("Sort failed: %v\n", err)
			os.Exit(1)
		}
		if err := verify.Check(want, res.Output); err != nil {
			fmt.Printf("%s: %v\n", strategy, err)
			os.Exit(1)
		}
		workers, buckets = res.Workers, res.Buckets
		runs = append(runs, run{
			name:      strategy.String(),
			elapsed:   res.Elapsed,
			partition: res.PartitionTime,
			localSort: res.LocalSortTime,
			peakHeap:  peak,
			buckets:   res.BucketSizes,
		})
	}

	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}

	fmt.Printf("Sorting (sequential %s)...\n", local)
	seq := slices.Clone(input)
	runtime.GC()
	stop := peakHeap()
	seqStart := time.Now()
	sequentialSorter(local).SortRange(seq)
	seqDuration := time.Since(seqStart)
	runs = append(runs, run{name: "sequential", elapsed: seqDuration, localSort: seqDuration, peakHeap: stop()})
	if err := verify.Check(want, seq); err != nil {
		fmt.Printf("sequential: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n")
	fmt.Printf("╔═════════════════╦══════════╦══════════╦══════════╦══════════╦══════════╗\n")
	fmt.Printf("║ Keys: %-10d║ W=%-6d ║ B=%-6d ║ %-8s ║ %-8s ║          ║\n", len(input), workers, buckets, dist, local)
	fmt.Printf("╠═════════════════╬══════════╬══════════╬══════════╬══════════╬══════════╣\n")
	fmt.Printf("║ Run             ║ Total s  ║ Part. s  ║ Local s  ║ M keys/s ║ Heap MB  ║\n")
	fmt.Printf("╠═════════════════╬══════════╬══════════╬══════════╬══════════╬══════════╣\n")
	for _, r := range runs {
		fmt.Printf("║ %-16s║ %8.3f ║ %8.3f ║ %8.3f ║ %8.2f ║ %8.1f ║\n",
			r.name, r.elapsed.Seconds(), r.partition.Seconds(), r.localSort.Seconds(),
			float64(len(input))/r.elapsed.Seconds()/1_000_000, float64(r.peakHeap)/1_000_000)
	}
	fmt.Printf("╚═════════════════╩══════════╩══════════╩══════════╩══════════╩══════════╝\n")

	for _, r := range runs[:len(runs)-1] {
		smallest, largest := slices.Min(r.buckets), slices.Max(r.buckets)
		fmt.Printf("%s: speedup %.2fx over sequential, bucket sizes min %d max %d\n",
			r.name, seqDuration.Seconds()/r.elapsed.Seconds(), smallest, largest)
	}
	fmt.Printf("Peak RSS: %.1f MB\n", float64(getMaxRSS())/1_000_000)
}

func sequentialSorter(algo samplesort.LocalAlgorithm) localsort.RangeSorter[int64] {
	switch algo {
	case samplesort.LocalQuicksort:
		return localsort.Quicksort[int64]{}
	case samplesort.LocalStdlib:
		return localsort.Stdlib[int64]{}
	default:
		return localsort.Introsort[int64]{}
	}
}
