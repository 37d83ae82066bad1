package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/me/sheetsync/pkg/model"
)

// Outcome is the tagged result of one cycle: Rows on success, or Err typed
// as *model.FetchError or *model.WriteError. Skipped is set when the cycle
// belonged to a runner that had already been stopped.
type Outcome struct {
	Rows    int
	Err     error
	Skipped bool
}

// OK reports whether the cycle completed.
func (o Outcome) OK() bool {
	return o.Err == nil && !o.Skipped
}

// Executor runs one fetch-then-write cycle. It knows nothing about timing.
type Executor struct {
	fetcher Fetcher
	writer  Writer
	tracker *Tracker
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewExecutor creates an Executor recording into tracker. metrics may be nil.
func NewExecutor(f Fetcher, w Writer, tracker *Tracker, metrics *Metrics, logger *slog.Logger) *Executor {
	return &Executor{
		fetcher: f,
		writer:  w,
		tracker: tracker,
		metrics: metrics,
		logger:  logger.With("component", "executor"),
		now:     time.Now,
	}
}

// Execute runs a cycle for spec and records it under epoch. Failures are
// captured in the tracker and the returned Outcome; nothing escapes.
func (e *Executor) Execute(ctx context.Context, epoch uint64, spec model.SyncJobSpec, trigger model.Trigger) Outcome {
	started := e.now().UTC()
	if !e.tracker.begin(epoch, started) {
		e.logger.Warn("cycle skipped (runner stopped or cycle in flight)", "trigger", trigger)
		return Outcome{Skipped: true}
	}
	e.logger.Info("sync cycle triggered", "trigger", trigger, "spreadsheet_id", spec.SourceID, "sheet", spec.Sheet)

	out := e.cycle(ctx, spec)

	rec := model.RunRecord{
		ID:         "run_" + uuid.New().String()[:8],
		Trigger:    trigger,
		SourceID:   spec.SourceID,
		Target:     spec.Destination.Target(),
		StartedAt:  started,
		FinishedAt: e.now().UTC(),
	}
	if out.Err != nil {
		rec.Phase = model.SyncPhaseFailed
		rec.Error = out.Err.Error()
		e.logger.Error("sync cycle failed", "trigger", trigger, "error", out.Err)
	} else {
		rec.Phase = model.SyncPhaseCompleted
		rec.Rows = out.Rows
		e.logger.Info("sync cycle completed", "trigger", trigger, "rows_synced", out.Rows, "target", rec.Target)
	}

	if !e.tracker.finish(epoch, rec) {
		e.logger.Warn("sync cycle result dropped (runner stopped)", "trigger", trigger, "run_id", rec.ID)
		return Outcome{Skipped: true}
	}
	e.metrics.observeCycle(rec)
	return out
}

// RunOnce performs a fetch and write without touching the tracker.
// It backs the one-shot sync endpoint.
func (e *Executor) RunOnce(ctx context.Context, spec model.SyncJobSpec) (int, error) {
	out := e.cycle(ctx, spec)
	return out.Rows, out.Err
}

func (e *Executor) cycle(ctx context.Context, spec model.SyncJobSpec) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("sync cycle panicked: %v", r)}
		}
	}()

	table, err := e.fetcher.Fetch(ctx, spec.SourceID, spec.Credentials, spec.Sheet)
	if err != nil {
		return Outcome{Err: asFetchError(spec, err)}
	}

	if _, err := e.writer.Write(ctx, table, spec.Destination); err != nil {
		return Outcome{Err: asWriteError(spec, err)}
	}
	return Outcome{Rows: table.Len()}
}

func asFetchError(spec model.SyncJobSpec, err error) error {
	var fe *model.FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &model.FetchError{SourceID: spec.SourceID, Sheet: spec.Sheet, Err: err}
}

func asWriteError(spec model.SyncJobSpec, err error) error {
	var we *model.WriteError
	if errors.As(err, &we) {
		return we
	}
	return &model.WriteError{Database: spec.Destination.Database, Table: spec.Destination.TableName, Err: err}
}
