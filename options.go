package samplesort

import (
	"math/rand/v2"
	"runtime"
	"time"

	"go.uber.org/zap"
)

const (
	// defaultOversample is the lock-free strategy's default sample size.
	// Splitters are quantiles of the sorted sample, so more samples give
	// better balanced buckets.
	defaultOversample = 100

	// maxExponent keeps 1<<(exponent-1) workers within reason.
	maxExponent = 24

	// seedMixer decorrelates the two PCG words derived from one seed.
	seedMixer = 0x9E3779B97F4A7C15
)

// Option is a functional option for configuring a Sorter.
type Option func(*config)

type config struct {
	strategy       Strategy
	localAlgorithm LocalAlgorithm

	workers    int
	buckets    int
	sampleSize int
	exponent   int

	// Set flags distinguish an explicit zero (invalid) from "use default".
	workersSet    bool
	bucketsSet    bool
	sampleSizeSet bool
	exponentSet   bool

	maxSampleAttempts int
	rng               *rand.Rand
	stallTimeout      time.Duration
	logger            *zap.Logger
}

func defaultConfig() *config {
	return &config{
		strategy:       StrategyDeferredOffset,
		localAlgorithm: LocalQuicksort,
		workers:        runtime.GOMAXPROCS(0),
		logger:         zap.NewNop(),
	}
}

// WithStrategy selects the partition strategy. Default StrategyDeferredOffset.
func WithStrategy(s Strategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}

// WithWorkers sets the number of partition workers (the subset count).
// Default GOMAXPROCS. Must be positive and at most the input size.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
		c.workersSet = true
	}
}

// WithBuckets sets the number of buckets (the interval count).
// Default: equal to the worker count.
func WithBuckets(n int) Option {
	return func(c *config) {
		c.buckets = n
		c.bucketsSet = true
	}
}

// WithExponent derives the worker and bucket counts from a single exponent
// i: 2^(i-1) workers, 2^(i-1) buckets and therefore 2^(i-1)-1 splitters.
// It overrides WithWorkers and WithBuckets.
func WithExponent(i int) Option {
	return func(c *config) {
		c.exponent = i
		c.exponentSet = true
	}
}

// WithSampleSize sets how many distinct input positions are sampled to
// choose splitters. It must be at least buckets-1. Defaults: buckets-1 for
// the deferred-offset strategy (every sampled key is a splitter) and 100,
// clamped to the input size, for the lock-free strategy.
func WithSampleSize(n int) Option {
	return func(c *config) {
		c.sampleSize = n
		c.sampleSizeSet = true
	}
}

// WithSeed makes splitter sampling reproducible.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.rng = newSeededRand(seed)
	}
}

// WithRand sets the randomness source for splitter sampling. The Sorter
// serializes its own use of r; r must not be used elsewhere concurrently.
func WithRand(r *rand.Rand) Option {
	return func(c *config) {
		c.rng = r
	}
}

// WithMaxSampleAttempts bounds the rejection-sampling draws per sort.
// Default max(64*sampleSize, 4096).
func WithMaxSampleAttempts(n int) Option {
	return func(c *config) {
		c.maxSampleAttempts = n
	}
}

// WithLocalAlgorithm selects the per-bucket sort. Default LocalQuicksort.
// Ignored by NewWithRangeSorter.
func WithLocalAlgorithm(a LocalAlgorithm) Option {
	return func(c *config) {
		c.localAlgorithm = a
	}
}

// WithStallTimeout bounds how long the orchestrator waits for each worker
// wave to finish. A wave that does not finish in time is cancelled and the
// sort fails with ErrWorkerStalled. Zero (the default) waits indefinitely.
func WithStallTimeout(d time.Duration) Option {
	return func(c *config) {
		c.stallTimeout = d
	}
}

// WithLogger sets the logger for phase timings and failures.
// Default zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l == nil {
			l = zap.NewNop()
		}
		c.logger = l
	}
}

func newSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedMixer))
}
