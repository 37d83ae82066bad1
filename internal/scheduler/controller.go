package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/me/sheetsync/pkg/model"
)

// Config holds controller limits and timeouts.
type Config struct {
	MinInterval  time.Duration // shortest accepted interval
	MaxInterval  time.Duration // longest accepted interval
	StopTimeout  time.Duration // how long Stop waits for the runner to exit
	CycleTimeout time.Duration // upper bound on a single fetch-then-write cycle
	HistorySize  int           // run records kept in memory
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinInterval:  time.Minute,
		MaxInterval:  1440 * time.Minute,
		StopTimeout:  5 * time.Second,
		CycleTimeout: 10 * time.Minute,
		HistorySize:  50,
	}
}

// Controller owns the lifecycle of the single recurring sync job.
//
// A job moves Idle -> Starting -> Active -> Idle. Starting covers the
// warm-up cycle; the slot is already taken, so a concurrent Start fails
// with ErrSchedulerConflict at once and Status reports the scheduler as
// running.
type Controller struct {
	config  Config
	tracker *Tracker
	exec    *Executor
	metrics *Metrics
	logger  *slog.Logger

	// mu guards the check-then-mutate steps of Start and Stop. It is never
	// held across a sync cycle.
	mu sync.Mutex
	// pending is set while a Start runs its warm-up; active once the runner
	// is armed. Both are written under mu and read without it by Status.
	pending atomic.Pointer[startAttempt]
	active  atomic.Pointer[runner]
}

// startAttempt identifies one Start between reserving the slot and arming
// the runner. Stop clears it to cancel the arm.
type startAttempt struct {
	epoch uint64
}

// NewController creates an idle Controller. metrics may be nil.
func NewController(f Fetcher, w Writer, cfg Config, metrics *Metrics, logger *slog.Logger) *Controller {
	tracker := NewTracker(cfg.HistorySize)
	return &Controller{
		config:  cfg,
		tracker: tracker,
		exec:    NewExecutor(f, w, tracker, metrics, logger),
		metrics: metrics,
		logger:  logger.With("component", "scheduler"),
	}
}

// Executor returns the executor shared with the recurring job.
func (c *Controller) Executor() *Executor {
	return c.exec
}

// Start validates spec, runs the warm-up cycle on the calling goroutine and
// arms the recurring job. The job is armed even when the warm-up fails.
// If Stop is called during the warm-up, the job is not armed and Start
// reports a warning.
func (c *Controller) Start(ctx context.Context, spec model.SyncJobSpec) (*StartResult, error) {
	attempt, err := c.reserve(spec)
	if err != nil {
		return nil, err
	}

	warmCtx, cancel := context.WithTimeout(ctx, c.config.CycleTimeout)
	c.exec.Execute(warmCtx, attempt.epoch, spec, model.TriggerWarmup)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	first := c.tracker.Snapshot()
	if c.pending.Load() != attempt {
		c.logger.Info("auto-sync stopped during warm-up", "spreadsheet_id", spec.SourceID)
		return &StartResult{
			Status:    "warning",
			Message:   "Auto-sync was stopped before it was scheduled",
			FirstSync: first,
		}, nil
	}

	r := newRunner(spec, attempt.epoch, c.exec, c.config.CycleTimeout, c.logger)
	r.start()
	c.active.Store(r)
	c.pending.Store(nil)
	c.metrics.setActive(true)

	c.logger.Info("auto-sync scheduled",
		"interval", spec.Interval,
		"spreadsheet_id", spec.SourceID,
		"sheet", spec.Sheet,
		"target", spec.Destination.Target(),
		"first_sync", first.Phase,
	)

	return &StartResult{
		Status:    "success",
		Message:   "Auto-sync started every " + describeInterval(spec.Interval),
		FirstSync: first,
	}, nil
}

// reserve takes the job slot for spec and opens a new status epoch.
func (c *Controller) reserve(spec model.SyncJobSpec) (*startAttempt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending.Load() != nil || c.active.Load() != nil {
		c.logger.Warn("auto-sync already running", "interval", spec.Interval)
		return nil, model.ErrSchedulerConflict
	}
	if spec.Interval < c.config.MinInterval || spec.Interval > c.config.MaxInterval {
		return nil, model.IntervalOutOfRange(spec.Interval, c.config.MinInterval, c.config.MaxInterval)
	}

	attempt := &startAttempt{epoch: c.tracker.Advance()}
	c.pending.Store(attempt)
	return attempt, nil
}

// Stop cancels the recurring job and waits for its runner to exit.
// Stopping an idle controller is a no-op that reports a warning.
// Stopping during the warm-up cancels the arm without waiting for the
// warm-up cycle; its result is discarded.
// If the runner does not exit within StopTimeout, Stop returns
// model.ErrShutdownTimeout but still leaves the controller idle.
func (c *Controller) Stop(ctx context.Context) (*StopResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending.Load() != nil {
		c.pending.Store(nil)
		c.tracker.Abandon("sync cycle abandoned: auto-sync stopped")
		c.logger.Info("auto-sync stopped before it was scheduled")
		return &StopResult{Status: "success", Message: "Auto-sync stopped"}, nil
	}

	r := c.active.Load()
	if r == nil {
		return &StopResult{Status: "warning", Message: "Auto-sync is not running"}, nil
	}

	exited := r.stop(ctx, c.config.StopTimeout)
	c.active.Store(nil)
	c.metrics.setActive(false)

	if !exited {
		// Seal the epoch so the straggling cycle cannot write after we return.
		c.tracker.Abandon("sync cycle abandoned: auto-sync stopped")
		c.logger.Warn("auto-sync runner did not stop in time", "timeout", c.config.StopTimeout)
		return &StopResult{
			Status:  "warning",
			Message: fmt.Sprintf("Auto-sync stopped; runner did not exit within %s", c.config.StopTimeout),
		}, model.ErrShutdownTimeout
	}

	c.tracker.Advance()
	c.logger.Info("auto-sync stopped")
	return &StopResult{Status: "success", Message: "Auto-sync stopped"}, nil
}

// Status returns the scheduler phase and the latest sync snapshot.
// It never waits on an in-flight cycle.
func (c *Controller) Status() model.StatusResponse {
	phase := model.SchedulerIdle
	if c.Active() {
		phase = model.SchedulerRunning
	}
	return model.StatusResponse{
		SchedulerPhase: phase,
		Sync:           c.tracker.Snapshot(),
	}
}

// Active reports whether a job holds the slot, warming up or armed.
func (c *Controller) Active() bool {
	return c.pending.Load() != nil || c.active.Load() != nil
}

// History returns recent cycles, newest first.
func (c *Controller) History(limit int) []model.RunRecord {
	return c.tracker.History(limit)
}

// LastSuccess returns when a cycle last completed, or nil.
func (c *Controller) LastSuccess() *time.Time {
	return c.tracker.LastSuccess()
}

// Shutdown stops the job if one is armed. Used on process exit.
func (c *Controller) Shutdown(ctx context.Context) error {
	if !c.Active() {
		return nil
	}
	_, err := c.Stop(ctx)
	return err
}

// describeInterval renders whole minutes as "N minutes" and anything else
// as a Go duration.
func describeInterval(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", n)
	}
	return d.String()
}
