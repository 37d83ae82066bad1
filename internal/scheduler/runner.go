package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/me/sheetsync/pkg/model"
)

// runner fires the Executor once per interval until its context is cancelled.
//
// Cancellation is cooperative: it is observed at the wait point between
// ticks. A cycle already in flight is not interrupted; it runs on a context
// detached from the runner's cancellation and bounded by cycleTimeout.
type runner struct {
	spec         model.SyncJobSpec
	epoch        uint64
	exec         *Executor
	cycleTimeout time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func newRunner(spec model.SyncJobSpec, epoch uint64, exec *Executor, cycleTimeout time.Duration, logger *slog.Logger) *runner {
	return &runner{
		spec:         spec,
		epoch:        epoch,
		exec:         exec,
		cycleTimeout: cycleTimeout,
		logger:       logger.With("component", "runner", "epoch", epoch),
		done:         make(chan struct{}),
	}
}

// start spawns the loop on its own goroutine.
func (r *runner) start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.run(ctx)
}

// run blocks until ctx is cancelled, then closes done.
func (r *runner) run(ctx context.Context) {
	defer close(r.done)
	r.logger.Info("runner started", "interval", r.spec.Interval)

	ticker := time.NewTicker(r.spec.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner stopped")
			return
		case <-ticker.C:
			// Both cases may be ready at once; cancellation wins.
			if ctx.Err() != nil {
				r.logger.Info("runner stopped")
				return
			}
			r.tick(ctx)
		}
	}
}

func (r *runner) tick(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cycleTimeout)
	defer cancel()
	r.exec.Execute(cycleCtx, r.epoch, r.spec, model.TriggerTick)
}

// stop requests cancellation and waits up to timeout for the loop to exit.
// It reports whether the loop exited in time.
func (r *runner) stop(ctx context.Context, timeout time.Duration) bool {
	r.cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-r.done:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}
