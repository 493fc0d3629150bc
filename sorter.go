package samplesort

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	sserrors "github.com/tamirms/samplesort/errors"
	"github.com/tamirms/samplesort/internal/partition"
	"github.com/tamirms/samplesort/internal/splitter"
)

// Sorter sorts slices of K by sample partitioning.
//
// Usage:
//
//	s, err := samplesort.New[int64](samplesort.WithWorkers(8), samplesort.WithBuckets(8))
//	if err != nil { return err }
//	res, err := s.Sort(ctx, keys)
//	if err != nil { return err }
//	persist(res.Output)
//
// A Sorter holds configuration only; all partition state is created per
// call, so Sort may be called concurrently.
type Sorter[K cmp.Ordered] struct {
	cfg    *config
	local  RangeSorter[K]
	logger *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	slabs *partition.SlabPool[K]

	// hooks is injected by tests to fail workers at chosen points.
	hooks partition.Hooks
}

// Result describes one completed sort.
type Result[K cmp.Ordered] struct {
	// Output holds the sorted keys. It is owned by the caller.
	Output []K

	// Splitters are the bucket boundaries used, in order.
	Splitters []K

	// BucketSizes[b] is the number of keys in bucket b. Bucket b occupies
	// Output[sum(BucketSizes[:b]) : sum(BucketSizes[:b+1])].
	BucketSizes []int

	Strategy Strategy
	Workers  int
	Buckets  int

	// PartitionTime covers classification and writeback, LocalSortTime the
	// per-bucket sorts, Elapsed the whole call including splitter selection.
	PartitionTime time.Duration
	LocalSortTime time.Duration
	Elapsed       time.Duration
}

// New creates a Sorter using the built-in local sort selected by
// WithLocalAlgorithm.
//
// Configuration that does not depend on the input (non-positive counts, an
// out-of-range exponent, unknown enums) is rejected here. Limits that depend
// on the input size are checked by Sort.
func New[K cmp.Ordered](opts ...Option) (*Sorter[K], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	local, err := newRangeSorter[K](cfg.localAlgorithm)
	if err != nil {
		return nil, err
	}
	return newSorter(cfg, local)
}

// NewWithRangeSorter creates a Sorter that sorts each bucket with rs.
func NewWithRangeSorter[K cmp.Ordered](rs RangeSorter[K], opts ...Option) (*Sorter[K], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if rs == nil {
		return nil, fmt.Errorf("%w: nil range sorter", sserrors.ErrInvalidLocalSort)
	}
	return newSorter(cfg, rs)
}

func newSorter[K cmp.Ordered](cfg *config, local RangeSorter[K]) (*Sorter[K], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rng := cfg.rng
	if rng == nil {
		rng = newSeededRand(rand.Uint64())
	}
	return &Sorter[K]{
		cfg:    cfg,
		local:  local,
		logger: cfg.logger,
		rng:    rng,
		slabs:  partition.NewSlabPool[K](),
	}, nil
}

// validate checks input-independent configuration and applies the exponent.
func (c *config) validate() error {
	if c.strategy != StrategyDeferredOffset && c.strategy != StrategyLockFree {
		return fmt.Errorf("%w: %d", sserrors.ErrInvalidStrategy, c.strategy)
	}
	if c.exponentSet {
		if c.exponent < 1 || c.exponent > maxExponent {
			return fmt.Errorf("%w: got %d", sserrors.ErrInvalidExponent, c.exponent)
		}
		c.workers = 1 << (c.exponent - 1)
		c.buckets = c.workers
		c.workersSet, c.bucketsSet = true, true
	}
	if c.workers <= 0 {
		return fmt.Errorf("%w: got %d", sserrors.ErrInvalidWorkers, c.workers)
	}
	if c.bucketsSet && c.buckets <= 0 {
		return fmt.Errorf("%w: got %d", sserrors.ErrInvalidBuckets, c.buckets)
	}
	if !c.bucketsSet {
		c.buckets = c.workers
	}
	if c.sampleSizeSet && c.sampleSize < c.buckets-1 {
		return fmt.Errorf("%w: sample %d < %d splitters", sserrors.ErrInvalidSampleSize, c.sampleSize, c.buckets-1)
	}
	return nil
}

// plan is the configuration resolved against one input.
type plan struct {
	workers    int
	buckets    int
	sampleSize int
}

func (s *Sorter[K]) resolve(input []K) (plan, error) {
	n := len(input)
	p := plan{workers: s.cfg.workers, buckets: s.cfg.buckets}

	// Requested counts are checked against the input; defaults shrink to fit.
	if p.workers > n {
		if s.cfg.workersSet {
			return plan{}, fmt.Errorf("%w: %d workers for %d keys", sserrors.ErrTooManyWorkers, p.workers, n)
		}
		p.workers = n
	}
	if !s.cfg.bucketsSet {
		p.buckets = p.workers
		if distinct := splitter.CountDistinct(input, p.buckets-1); distinct < p.buckets-1 {
			p.buckets = distinct + 1
		}
	}
	if !splitter.HasDistinct(input, p.buckets-1) {
		return plan{}, fmt.Errorf("%w: need %d distinct keys for %d buckets",
			sserrors.ErrInsufficientDistinct, p.buckets-1, p.buckets)
	}

	switch {
	case s.cfg.sampleSizeSet:
		p.sampleSize = s.cfg.sampleSize
		if p.sampleSize > n {
			return plan{}, fmt.Errorf("%w: sample %d > input %d", sserrors.ErrSampleTooLarge, p.sampleSize, n)
		}
		if !splitter.HasDistinct(input, p.sampleSize) {
			return plan{}, fmt.Errorf("%w: sample %d exceeds the distinct keys of the input",
				sserrors.ErrInsufficientDistinct, p.sampleSize)
		}
	case s.cfg.strategy == StrategyLockFree:
		p.sampleSize = max(p.buckets-1, min(defaultOversample, n))
	default:
		p.sampleSize = p.buckets - 1
	}
	return p, nil
}

// Sort sorts a copy of input. input is only read, and may be shared with
// other readers for the duration of the call.
//
// The call runs two fork-join waves: one goroutine per worker partitions
// the input into buckets, then one goroutine per bucket sorts it. There is
// no cancellation point inside a local sort; ctx is honored between keys
// of the partition wave and at the barrier.
func (s *Sorter[K]) Sort(ctx context.Context, input []K) (*Result[K], error) {
	start := time.Now()
	res := &Result[K]{Strategy: s.cfg.strategy}

	// Nothing to partition: no splitters, no goroutines.
	if len(input) <= 1 {
		res.Output = make([]K, len(input))
		copy(res.Output, input)
		res.Splitters = []K{}
		res.BucketSizes = []int{len(input)}
		res.Workers, res.Buckets = 1, 1
		res.Elapsed = time.Since(start)
		return res, nil
	}

	p, err := s.resolve(input)
	if err != nil {
		return nil, err
	}
	res.Workers, res.Buckets = p.workers, p.buckets

	splitters, err := s.selectSplitters(input, p)
	if err != nil {
		return nil, err
	}
	res.Splitters = splitters
	s.logger.Debug("splitters selected",
		zap.Stringer("strategy", s.cfg.strategy),
		zap.Int("keys", len(input)),
		zap.Int("workers", p.workers),
		zap.Int("buckets", p.buckets),
		zap.Int("sample", p.sampleSize))

	partitionStart := time.Now()
	output := make([]K, len(input))
	sizes, err := s.partition(ctx, input, output, splitters, p.workers)
	if err != nil {
		s.logger.Warn("partition failed", zap.Error(err))
		return nil, err
	}
	res.BucketSizes = sizes
	res.PartitionTime = time.Since(partitionStart)

	localStart := time.Now()
	if err := s.sortBuckets(ctx, output, sizes); err != nil {
		s.logger.Warn("local sort failed", zap.Error(err))
		return nil, err
	}
	res.LocalSortTime = time.Since(localStart)
	res.Output = output
	res.Elapsed = time.Since(start)

	s.logger.Debug("sort complete",
		zap.Ints("bucketSizes", sizes),
		zap.Duration("partition", res.PartitionTime),
		zap.Duration("localSort", res.LocalSortTime),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// SortInPlace sorts data in place. Result.Output aliases data.
func (s *Sorter[K]) SortInPlace(ctx context.Context, data []K) (*Result[K], error) {
	res, err := s.Sort(ctx, data)
	if err != nil {
		return nil, err
	}
	copy(data, res.Output)
	res.Output = data
	return res, nil
}

// Sort sorts data in place with a one-off Sorter.
func Sort[K cmp.Ordered](ctx context.Context, data []K, opts ...Option) error {
	s, err := New[K](opts...)
	if err != nil {
		return err
	}
	_, err = s.SortInPlace(ctx, data)
	return err
}

func (s *Sorter[K]) selectSplitters(input []K, p plan) ([]K, error) {
	maxAttempts := s.cfg.maxSampleAttempts
	if maxAttempts <= 0 {
		maxAttempts = splitter.DefaultMaxAttempts(p.sampleSize)
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return splitter.Select(s.rng, input, p.sampleSize, p.buckets, maxAttempts)
}

// partition runs the partition wave and returns the bucket sizes. On return
// output holds every bucket contiguously, in splitter order.
func (s *Sorter[K]) partition(ctx context.Context, input, output, splitters []K, workers int) ([]int, error) {
	engine, err := newEngine(s.cfg.strategy, input, output, splitters, workers, s.slabs, s.hooks)
	if err != nil {
		return nil, err
	}
	err = s.runWave(ctx, "partition", engine.Workers(), engine.RunWorker)
	// A stalled wave may still have workers touching their slabs; leave
	// those to the garbage collector.
	if lf, ok := engine.(*partition.LockFree[K]); ok && !errors.Is(err, sserrors.ErrWorkerStalled) {
		defer lf.Release()
	}
	if err != nil {
		return nil, err
	}
	return engine.BucketSizes(), nil
}

// sortBuckets runs the local sort wave: one task per non-empty bucket over
// its range.
func (s *Sorter[K]) sortBuckets(ctx context.Context, output []K, sizes []int) error {
	starts := partition.BucketStarts(sizes)
	ranges := make([][]K, 0, len(sizes))
	for b, size := range sizes {
		if size > 0 {
			ranges = append(ranges, output[starts[b]:starts[b]+size])
		}
	}
	return s.runWave(ctx, "local sort", len(ranges), func(_ context.Context, i int) error {
		s.local.SortRange(ranges[i])
		return nil
	})
}
