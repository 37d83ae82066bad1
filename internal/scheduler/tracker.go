package scheduler

import (
	"sync"
	"time"

	"github.com/me/sheetsync/pkg/model"
)

// Tracker holds the process-wide SyncStatus and the recent run history.
//
// Writes are tagged with an epoch. Advance starts a new epoch, after which
// writes carrying an older epoch are dropped; this is how a stopped runner
// is kept from touching status after Stop returns.
type Tracker struct {
	mu          sync.RWMutex
	status      model.SyncStatus
	epoch       uint64
	history     []model.RunRecord // oldest first
	size        int
	lastSuccess *time.Time
}

// NewTracker creates a Tracker keeping at most historySize run records.
func NewTracker(historySize int) *Tracker {
	if historySize <= 0 {
		historySize = 1
	}
	return &Tracker{
		status: model.SyncStatus{Phase: model.SyncPhaseIdle},
		size:   historySize,
	}
}

// Snapshot returns a consistent copy of the current status.
func (t *Tracker) Snapshot() model.SyncStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status.Clone()
}

// Epoch returns the current write epoch.
func (t *Tracker) Epoch() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.epoch
}

// Advance starts a new epoch and returns it.
func (t *Tracker) Advance() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.epoch++
	return t.epoch
}

// Abandon advances the epoch and, if a cycle was still marked running,
// closes it out as failed with reason.
func (t *Tracker) Abandon(reason string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.epoch++
	if t.status.Phase.CanTransitionTo(model.SyncPhaseFailed) {
		t.status.Phase = model.SyncPhaseFailed
		t.status.Error = reason
	}
	return t.epoch
}

// begin marks a cycle as running. It reports false for a stale epoch or
// while another cycle of the same epoch is still running.
func (t *Tracker) begin(epoch uint64, at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if epoch != t.epoch || !t.status.Phase.CanTransitionTo(model.SyncPhaseRunning) {
		return false
	}
	t.status.Phase = model.SyncPhaseRunning
	t.status.LastRunAt = &at
	t.status.Error = ""
	return true
}

// finish records the outcome of a cycle begun in epoch. It reports false
// for a stale epoch or when no cycle is running.
func (t *Tracker) finish(epoch uint64, rec model.RunRecord) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if epoch != t.epoch || !t.status.Phase.CanTransitionTo(rec.Phase) {
		return false
	}

	at := rec.FinishedAt
	t.status.Phase = rec.Phase
	t.status.LastRunAt = &at
	t.status.Error = rec.Error
	if rec.Phase == model.SyncPhaseCompleted {
		rows := rec.Rows
		t.status.RowsSynced = &rows
		t.lastSuccess = &at
	}

	t.history = append(t.history, rec)
	if len(t.history) > t.size {
		t.history = append(t.history[:0:0], t.history[len(t.history)-t.size:]...)
	}
	return true
}

// History returns up to limit records, newest first. limit <= 0 returns all.
func (t *Tracker) History(limit int) []model.RunRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := len(t.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]model.RunRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, t.history[i])
	}
	return out
}

// LastSuccess returns when a cycle last completed, or nil.
func (t *Tracker) LastSuccess() *time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lastSuccess == nil {
		return nil
	}
	at := *t.lastSuccess
	return &at
}
