// Package errors defines all exported error sentinels for the samplesort library.
//
// This is the single source of truth for error values. The top-level
// samplesort package, the keyfile package and the internal packages all
// import from here, so errors.Is checks work across package boundaries.
//
// Every sort failure wraps exactly one of the two category sentinels,
// ErrConfiguration or ErrSynchronization, so callers can classify a failure
// without enumerating the specific sentinels.
package errors

import (
	"errors"
	"fmt"
)

// Categories
var (
	// ErrConfiguration is reported before any worker is spawned.
	ErrConfiguration = errors.New("samplesort: invalid configuration")

	// ErrSynchronization is reported when a worker wave fails to complete.
	ErrSynchronization = errors.New("samplesort: synchronization failure")
)

// Configuration errors
var (
	ErrInvalidWorkers       = fmt.Errorf("%w: worker count must be positive", ErrConfiguration)
	ErrInvalidBuckets       = fmt.Errorf("%w: bucket count must be positive", ErrConfiguration)
	ErrInvalidExponent      = fmt.Errorf("%w: exponent must be in [1, 24]", ErrConfiguration)
	ErrInvalidSampleSize    = fmt.Errorf("%w: sample size must cover bucket count - 1 splitters", ErrConfiguration)
	ErrInvalidStrategy      = fmt.Errorf("%w: unknown partition strategy", ErrConfiguration)
	ErrInvalidLocalSort     = fmt.Errorf("%w: unknown local sort algorithm", ErrConfiguration)
	ErrTooManyWorkers       = fmt.Errorf("%w: worker count exceeds input size", ErrConfiguration)
	ErrSampleTooLarge       = fmt.Errorf("%w: sample size exceeds input size", ErrConfiguration)
	ErrInsufficientDistinct = fmt.Errorf("%w: input has fewer distinct values than splitters", ErrConfiguration)
	ErrSampleNotConverged   = fmt.Errorf("%w: splitter sampling did not converge", ErrConfiguration)
)

// Synchronization errors
var (
	ErrBarrierBroken = fmt.Errorf("%w: barrier broken before all workers arrived", ErrSynchronization)
	ErrWorkerPanic   = fmt.Errorf("%w: worker panicked", ErrSynchronization)
	ErrWorkerStalled = fmt.Errorf("%w: worker wave did not complete within stall timeout", ErrSynchronization)
)

// Key file errors
var (
	ErrInvalidMagic   = errors.New("samplesort: invalid key file magic number")
	ErrInvalidVersion = errors.New("samplesort: unsupported key file version")
	ErrTruncatedFile  = errors.New("samplesort: key file is truncated")
	ErrChecksumFailed = errors.New("samplesort: key file checksum verification failed")
	ErrMalformedKey   = errors.New("samplesort: malformed key in text input")
)
