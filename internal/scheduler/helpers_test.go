package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/me/sheetsync/pkg/model"
)

var errSheetUnreachable = errors.New("sheet unreachable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tableOf builds a one-column table with n data rows.
func tableOf(n int) *model.Table {
	t := &model.Table{Columns: []string{"id"}}
	for i := 0; i < n; i++ {
		t.Rows = append(t.Rows, []string{fmt.Sprint(i)})
	}
	return t
}

// fakeFetcher counts calls and delegates to fn (1-based call number).
// With fn nil it returns ten rows.
type fakeFetcher struct {
	calls atomic.Int32
	fn    func(call int) (*model.Table, error)
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, _ model.Credentials, _ string) (*model.Table, error) {
	n := int(f.calls.Add(1))
	if f.fn != nil {
		return f.fn(n)
	}
	return tableOf(10), nil
}

type fakeWriter struct {
	calls atomic.Int32
	err   error
}

func (w *fakeWriter) Write(_ context.Context, table *model.Table, _ model.DBConfig) (int, error) {
	w.calls.Add(1)
	if w.err != nil {
		return 0, w.err
	}
	return table.Len(), nil
}

func testSpec(interval time.Duration) model.SyncJobSpec {
	return model.SyncJobSpec{
		SourceID: "spreadsheet-123",
		Sheet:    "Sheet1",
		Destination: model.DBConfig{
			DBType:    "sqlite",
			Database:  "test.db",
			TableName: "leads",
		},
		Interval: interval,
	}
}

// fastConfig allows millisecond intervals so tick behaviour is observable.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.MinInterval = time.Millisecond
	cfg.StopTimeout = time.Second
	cfg.CycleTimeout = time.Second
	return cfg
}

// waitFor polls cond until it holds or timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out after %s waiting for %s", timeout, what)
}

func rowsOf(s model.SyncStatus) int {
	if s.RowsSynced == nil {
		return -1
	}
	return *s.RowsSynced
}

func sameStatus(a, b model.SyncStatus) bool {
	if a.Phase != b.Phase || a.Error != b.Error || rowsOf(a) != rowsOf(b) {
		return false
	}
	if (a.LastRunAt == nil) != (b.LastRunAt == nil) {
		return false
	}
	return a.LastRunAt == nil || a.LastRunAt.Equal(*b.LastRunAt)
}
