package partition

import (
	"cmp"
	"context"

	"github.com/tamirms/samplesort/internal/barrier"
)

// Deferred is the deferred-offset strategy. Output positions are not known
// while keys are classified; they are computed from the count grid after
// the barrier, when every worker's counts are final.
type Deferred[K cmp.Ordered] struct {
	input     []K
	output    []K
	splitters []K
	counts    *Grid
	barrier   *barrier.Barrier

	// Hooks is read by RunWorker; set it before the first call.
	Hooks Hooks
}

// NewDeferred prepares a deferred-offset partition of input into output
// (len(output) == len(input)) over len(splitters)+1 buckets.
func NewDeferred[K cmp.Ordered](input, output, splitters []K, workers int) *Deferred[K] {
	return &Deferred[K]{
		input:     input,
		output:    output,
		splitters: splitters,
		counts:    NewGrid(workers, len(splitters)+1),
		barrier:   barrier.New(workers),
	}
}

// Workers implements Engine.
func (d *Deferred[K]) Workers() int { return d.counts.Workers() }

// Buckets implements Engine.
func (d *Deferred[K]) Buckets() int { return d.counts.Buckets() }

// Counts returns the count grid. It is complete once every worker has
// returned.
func (d *Deferred[K]) Counts() *Grid { return d.counts }

// BucketSizes implements Engine.
func (d *Deferred[K]) BucketSizes() []int { return d.counts.BucketTotals() }

// RunWorker implements Engine.
//
// Keys of one worker keep their input order within each bucket: the
// writeback scans the worker's range front to back and appends to the
// worker's slice of every bucket.
func (d *Deferred[K]) RunWorker(ctx context.Context, w int) error {
	start, end := Range(w, len(d.input), d.counts.Workers())
	cc := contextChecker{ctx: ctx}

	// A worker that leaves early, by error or panic, must not strand the
	// others at the barrier.
	arrived := false
	defer func() {
		if !arrived {
			d.barrier.Break()
		}
	}()

	// Classification: row w of the grid and the scratch slice are private
	// to this worker.
	row := d.counts.Row(w)
	scratch := make([]int32, end-start)
	for i, k := range d.input[start:end] {
		if err := cc.check(); err != nil {
			return err
		}
		b := Classify(d.splitters, k)
		scratch[i] = int32(b)
		row[b]++
	}

	d.Hooks.beforeBarrier(w)
	arrived = true
	if err := d.barrier.Wait(ctx); err != nil {
		return err
	}

	// Writeback: every row is final and read-only from here on. The
	// [offset(w,b), offset(w,b)+count(w,b)) ranges tile the output, so
	// these writes are disjoint from every other worker's.
	next := d.counts.PlacementRow(w)
	for i, b := range scratch {
		if err := cc.check(); err != nil {
			return err
		}
		d.output[next[b]] = d.input[start+i]
		next[b]++
	}
	return nil
}
