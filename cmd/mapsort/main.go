// Mapsort sorts the int64 keys of a key file with the parallel sample sort
// and writes the sorted keys to another file.
//
// Usage:
//
//	go run ./cmd/mapsort -in keys.txt
//	go run ./cmd/mapsort -in keys.bin -out sorted.bin -strategy lock-free -exponent 4
//	go run ./cmd/mapsort -config mapsort.toml -verify
//
// Files ending in .bin use the binary key format; anything else is read and
// written as whitespace-separated text. The default output file is
// MapsortOutput.txt for the deferred-offset strategy and ParallelQSort.txt
// for the lock-free strategy.
//
// A -config file is TOML with the flag names as keys:
//
//	in = "keys.txt"
//	strategy = "lock-free"
//	exponent = 4
//	stall = "30s"
//
// Flags given on the command line override the file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/tamirms/samplesort"
	sserrors "github.com/tamirms/samplesort/errors"
	"github.com/tamirms/samplesort/internal/verify"
	"github.com/tamirms/samplesort/keyfile"
)

var defaultOutput = map[samplesort.Strategy]string{
	samplesort.StrategyDeferredOffset: "MapsortOutput.txt",
	samplesort.StrategyLockFree:       "ParallelQSort.txt",
}

type options struct {
	in       string
	out      string
	strategy string
	workers  int
	buckets  int
	exponent int
	local    string
	seed     uint64
	stall    time.Duration
	config   string
	verify   bool
	verbose  bool
}

func newFlagSet(o *options) *flag.FlagSet {
	fs := flag.NewFlagSet("mapsort", flag.ContinueOnError)
	fs.StringVar(&o.in, "in", "", "input key file (required)")
	fs.StringVar(&o.out, "out", "", "output key file (default depends on -strategy)")
	fs.StringVar(&o.strategy, "strategy", "deferred-offset", "partition strategy: deferred-offset or lock-free")
	fs.IntVar(&o.workers, "workers", 0, "number of partition workers (0 = GOMAXPROCS)")
	fs.IntVar(&o.buckets, "buckets", 0, "number of buckets (0 = one per worker)")
	fs.IntVar(&o.exponent, "exponent", 0, "use 2^(i-1) workers and buckets (overrides -workers and -buckets)")
	fs.StringVar(&o.local, "local", "quicksort", "local sort: quicksort, introsort or stdlib")
	fs.Uint64Var(&o.seed, "seed", 0, "splitter sampling seed (0 = random)")
	fs.DurationVar(&o.stall, "stall", 0, "fail if a worker wave takes longer than this (0 = wait forever)")
	fs.StringVar(&o.config, "config", "", "TOML file with default flag values")
	fs.BoolVar(&o.verify, "verify", false, "check that the output is a sorted permutation of the input")
	fs.BoolVar(&o.verbose, "verbose", false, "development logging at debug level")
	return fs
}

// parseArgs parses args, filling flags that were not given from the
// -config file if there is one.
func parseArgs(args []string) (*options, error) {
	o := &options{}
	fs := newFlagSet(o)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.config == "" {
		return o, nil
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	var file map[string]any
	if _, err := toml.DecodeFile(o.config, &file); err != nil {
		return nil, fmt.Errorf("read config %s: %w", o.config, err)
	}
	for name, value := range file {
		if name == "config" || fs.Lookup(name) == nil {
			return nil, fmt.Errorf("config %s: unknown key %q", o.config, name)
		}
		if explicit[name] {
			continue
		}
		if err := fs.Set(name, fmt.Sprint(value)); err != nil {
			return nil, fmt.Errorf("config %s: key %q: %w", o.config, name, err)
		}
	}
	return o, nil
}

func (o *options) sortOptions(logger *zap.Logger) ([]samplesort.Option, samplesort.Strategy, error) {
	strategy, err := samplesort.ParseStrategy(o.strategy)
	if err != nil {
		return nil, 0, err
	}
	local, err := samplesort.ParseLocalAlgorithm(o.local)
	if err != nil {
		return nil, 0, err
	}

	opts := []samplesort.Option{
		samplesort.WithStrategy(strategy),
		samplesort.WithLocalAlgorithm(local),
		samplesort.WithStallTimeout(o.stall),
		samplesort.WithLogger(logger),
	}
	if o.exponent != 0 {
		opts = append(opts, samplesort.WithExponent(o.exponent))
	}
	if o.workers != 0 {
		opts = append(opts, samplesort.WithWorkers(o.workers))
	}
	if o.buckets != 0 {
		opts = append(opts, samplesort.WithBuckets(o.buckets))
	}
	if o.seed != 0 {
		opts = append(opts, samplesort.WithSeed(o.seed))
	}
	return opts, strategy, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	o, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if o.in == "" {
		fmt.Fprintln(os.Stderr, "mapsort: -in is required")
		os.Exit(2)
	}

	logger, err := newLogger(o.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), o, logger); err != nil {
		logger.Error("mapsort failed", zap.Error(err))
		code := 1
		if errors.Is(err, sserrors.ErrConfiguration) {
			code = 2
		}
		_ = logger.Sync()
		os.Exit(code)
	}
}

func run(ctx context.Context, o *options, logger *zap.Logger) error {
	opts, strategy, err := o.sortOptions(logger)
	if err != nil {
		return err
	}
	if o.out == "" {
		o.out = defaultOutput[strategy]
	}

	readStart := time.Now()
	keys, err := keyfile.Read(o.in)
	if err != nil {
		return fmt.Errorf("read %s: %w", o.in, err)
	}
	logger.Info("keys loaded",
		zap.String("path", o.in),
		zap.Int("keys", len(keys)),
		zap.Duration("took", time.Since(readStart)))

	s, err := samplesort.New[int64](opts...)
	if err != nil {
		return err
	}
	res, err := s.Sort(ctx, keys)
	if err != nil {
		return err
	}
	fmt.Printf("Time Taken: %v\n", res.Elapsed)
	logger.Info("sorted",
		zap.Stringer("strategy", res.Strategy),
		zap.Int("workers", res.Workers),
		zap.Int("buckets", res.Buckets),
		zap.Duration("partition", res.PartitionTime),
		zap.Duration("localSort", res.LocalSortTime),
		zap.Duration("elapsed", res.Elapsed))

	if o.verify {
		if err := verify.Check(verify.Of(keys), res.Output); err != nil {
			return err
		}
		logger.Info("output verified")
	}

	if err := keyfile.Write(o.out, res.Output); err != nil {
		return fmt.Errorf("write %s: %w", o.out, err)
	}
	logger.Info("keys written", zap.String("path", o.out))
	return nil
}
