// Package barrier provides a reusable cyclic barrier for a fixed number of
// goroutines.
//
// A barrier separates two phases of a worker wave: no participant returns
// from Wait until every participant has called Wait for the same generation.
// If a participant gives up (its context is done) or Break is called, the
// barrier is broken for good: every blocked and every future waiter gets
// ErrBarrierBroken. A participant that never arrives and never gives up
// stalls the other participants; callers bound that with a context deadline.
package barrier

import (
	"context"
	"fmt"
	"sync"

	sserrors "github.com/tamirms/samplesort/errors"
)

// generation is one trip of the barrier. done is closed exactly once, either
// when the last participant arrives or when the generation is broken.
type generation struct {
	done   chan struct{}
	broken bool
}

// Barrier is a cyclic barrier. The zero value is not usable; use New.
type Barrier struct {
	mu      sync.Mutex
	parties int
	arrived int
	gen     *generation
}

// New creates a barrier for the given number of parties.
// parties must be positive.
func New(parties int) *Barrier {
	if parties <= 0 {
		panic(fmt.Sprintf("barrier: parties must be positive, got %d", parties))
	}
	return &Barrier{
		parties: parties,
		gen:     &generation{done: make(chan struct{})},
	}
}

// Wait blocks until all parties have called Wait, the barrier is broken, or
// ctx is done. The last arriving party trips the barrier and returns
// immediately without blocking.
//
// A context failure breaks the barrier for everyone; the returned error
// wraps both ErrBarrierBroken and ctx.Err().
func (b *Barrier) Wait(ctx context.Context) error {
	b.mu.Lock()
	g := b.gen
	if g.broken {
		b.mu.Unlock()
		return sserrors.ErrBarrierBroken
	}
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.gen = &generation{done: make(chan struct{})}
		close(g.done)
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	select {
	case <-g.done:
		if g.broken {
			return sserrors.ErrBarrierBroken
		}
		return nil
	case <-ctx.Done():
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen != g {
		// Tripped concurrently with the context failing.
		if g.broken {
			return sserrors.ErrBarrierBroken
		}
		return nil
	}
	b.breakLocked()
	return fmt.Errorf("%w: %w", sserrors.ErrBarrierBroken, ctx.Err())
}

// Break breaks the current generation, releasing every blocked waiter with
// ErrBarrierBroken. It is a no-op on an already broken barrier.
func (b *Barrier) Break() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.breakLocked()
}

func (b *Barrier) breakLocked() {
	if b.gen.broken {
		return
	}
	b.gen.broken = true
	close(b.gen.done)
}
