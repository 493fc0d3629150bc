package partition

import (
	"cmp"
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tamirms/samplesort/internal/barrier"
)

// node is one key linked into a bucket stack. Nodes live in a worker's
// arena slab, never on their own.
type node[K cmp.Ordered] struct {
	key  K
	next *node[K]
}

// Bucket is a shared, concurrently appendable multiset of keys: a Treiber
// stack plus an element counter.
//
// Push may be called from any number of goroutines at once. Drain must only
// be called once pushes have stopped.
type Bucket[K cmp.Ordered] struct {
	head atomic.Pointer[node[K]]
	size atomic.Int64
}

// push links n onto the bucket. A failed compare-and-swap changes nothing
// and retries against the new head.
func (b *Bucket[K]) push(n *node[K]) {
	for {
		old := b.head.Load()
		n.next = old
		if b.head.CompareAndSwap(old, n) {
			b.size.Add(1)
			return
		}
	}
}

// Len returns the number of keys pushed so far.
func (b *Bucket[K]) Len() int {
	return int(b.size.Load())
}

// Drain detaches every node, copies its key into dst in pop order (most
// recent push first) and unlinks it. Returns the number of keys copied.
// dst must have room for Len() keys.
func (b *Bucket[K]) Drain(dst []K) int {
	n := b.head.Swap(nil)
	i := 0
	for n != nil {
		dst[i] = n.key
		i++
		next := n.next
		n.next = nil
		n = next
	}
	return i
}

// SlabPool recycles arena slabs across sorts. It is safe for concurrent use.
type SlabPool[K cmp.Ordered] struct {
	pool sync.Pool
}

// NewSlabPool creates an empty pool.
func NewSlabPool[K cmp.Ordered]() *SlabPool[K] {
	return &SlabPool[K]{}
}

func (p *SlabPool[K]) get(n int) []node[K] {
	if v := p.pool.Get(); v != nil {
		slab := *(v.(*[]node[K]))
		if cap(slab) >= n {
			return slab[:n]
		}
	}
	return make([]node[K], n)
}

func (p *SlabPool[K]) put(slab []node[K]) {
	clear(slab)
	slab = slab[:0]
	p.pool.Put(&slab)
}

// arena owns every node one worker pushes. A worker knows its range size
// before classifying, so one slab holds them all.
type arena[K cmp.Ordered] struct {
	slab []node[K]
	used int
}

func (a *arena[K]) alloc(key K) *node[K] {
	n := &a.slab[a.used]
	a.used++
	n.key = key
	return n
}

// LockFree is the lock-free bucket strategy.
//
// Keys pushed into one bucket by different workers interleave in arbitrary
// order; the order inside a bucket is fixed later by the local sort.
type LockFree[K cmp.Ordered] struct {
	input     []K
	output    []K
	splitters []K
	workers   int
	buckets   []Bucket[K]
	arenas    []arena[K]
	pool      *SlabPool[K]
	barrier   *barrier.Barrier

	// Hooks is read by RunWorker; set it before the first call.
	Hooks Hooks
}

// NewLockFree prepares a lock-free partition of input into output
// (len(output) == len(input)) over len(splitters)+1 buckets. Node slabs come
// from pool and go back to it on Release.
func NewLockFree[K cmp.Ordered](input, output, splitters []K, workers int, pool *SlabPool[K]) *LockFree[K] {
	if pool == nil {
		pool = NewSlabPool[K]()
	}
	return &LockFree[K]{
		input:     input,
		output:    output,
		splitters: splitters,
		workers:   workers,
		buckets:   make([]Bucket[K], len(splitters)+1),
		arenas:    make([]arena[K], workers),
		pool:      pool,
		barrier:   barrier.New(workers),
	}
}

// Workers implements Engine.
func (l *LockFree[K]) Workers() int { return l.workers }

// Buckets implements Engine.
func (l *LockFree[K]) Buckets() int { return len(l.buckets) }

// BucketSizes implements Engine.
func (l *LockFree[K]) BucketSizes() []int {
	sizes := make([]int, len(l.buckets))
	for b := range l.buckets {
		sizes[b] = l.buckets[b].Len()
	}
	return sizes
}

// RunWorker implements Engine.
//
// After the barrier the bucket counters are final. Worker w drains buckets
// w, w+W, w+2W, ... into their ranges of the output; with as many workers
// as buckets that is exactly one bucket per worker.
func (l *LockFree[K]) RunWorker(ctx context.Context, w int) error {
	start, end := Range(w, len(l.input), l.workers)
	cc := contextChecker{ctx: ctx}

	arrived := false
	defer func() {
		if !arrived {
			l.barrier.Break()
		}
	}()

	a := &l.arenas[w]
	a.slab = l.pool.get(end - start)
	for _, k := range l.input[start:end] {
		if err := cc.check(); err != nil {
			return err
		}
		l.buckets[Classify(l.splitters, k)].push(a.alloc(k))
	}

	l.Hooks.beforeBarrier(w)
	arrived = true
	if err := l.barrier.Wait(ctx); err != nil {
		return err
	}

	starts := BucketStarts(l.BucketSizes())
	for b := w; b < len(l.buckets); b += l.workers {
		if err := ctx.Err(); err != nil {
			return err
		}
		want := l.buckets[b].Len()
		if got := l.buckets[b].Drain(l.output[starts[b] : starts[b]+want]); got != want {
			return fmt.Errorf("partition: bucket %d drained %d keys, counter says %d", b, got, want)
		}
	}
	return nil
}

// Release returns every worker's node slab to the pool. Call it once all
// RunWorker calls have returned; every bucket is empty by then, so no node
// is reachable from the buckets.
func (l *LockFree[K]) Release() {
	for w := range l.arenas {
		a := &l.arenas[w]
		if a.slab != nil {
			l.pool.put(a.slab)
		}
		a.slab = nil
		a.used = 0
	}
	for b := range l.buckets {
		l.buckets[b].head.Store(nil)
	}
}
