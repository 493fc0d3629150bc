package samplesort

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	sserrors "github.com/tamirms/samplesort/errors"
)

// runWave runs fn(ctx, id) for every id in [0, tasks) on its own goroutine
// and waits for all of them. The first error cancels the others' context.
//
// A panicking task is reported as ErrWorkerPanic. With a stall timeout set,
// a wave that has not finished in time is cancelled and ErrWorkerStalled is
// returned without waiting further; tasks blocked at the barrier observe the
// cancellation and exit on their own.
func (s *Sorter[K]) runWave(ctx context.Context, phase string, tasks int, fn func(ctx context.Context, id int) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", phase, err)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for id := range tasks {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("worker panicked",
						zap.String("phase", phase),
						zap.Int("task", id),
						zap.Any("panic", r),
						zap.ByteString("stack", debug.Stack()))
					err = fmt.Errorf("%w: task %d: %v", sserrors.ErrWorkerPanic, id, r)
				}
			}()
			return fn(gctx, id)
		})
	}

	if s.cfg.stallTimeout <= 0 {
		if err := g.Wait(); err != nil {
			return fmt.Errorf("%s: %w", phase, err)
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	timer := time.NewTimer(s.cfg.stallTimeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%s: %w", phase, err)
		}
		return nil
	case <-timer.C:
		cancel()
		s.logger.Warn("worker wave stalled",
			zap.String("phase", phase),
			zap.Int("tasks", tasks),
			zap.Duration("timeout", s.cfg.stallTimeout))
		return fmt.Errorf("%s: %w after %v", phase, sserrors.ErrWorkerStalled, s.cfg.stallTimeout)
	}
}
