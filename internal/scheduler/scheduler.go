// Package scheduler owns the recurring sheet-to-database sync job.
//
// A Controller arms at most one job at a time. Start runs a warm-up cycle
// on the caller's goroutine and then spawns a runner that fires the
// Executor on every interval tick until Stop cancels it. Cycle outcomes are
// recorded in a Tracker that any caller can snapshot without waiting for an
// in-flight cycle.
package scheduler

import (
	"context"
	"time"

	"github.com/me/sheetsync/pkg/model"
)

// Fetcher reads a sheet into a table.
type Fetcher interface {
	Fetch(ctx context.Context, sourceID string, creds model.Credentials, sheet string) (*model.Table, error)
}

// Writer replaces the destination table with the given rows and returns the
// number of rows written.
type Writer interface {
	Write(ctx context.Context, table *model.Table, dest model.DBConfig) (int, error)
}

// AutoSync is the control surface the API layer maps onto its transport.
type AutoSync interface {
	Start(ctx context.Context, spec model.SyncJobSpec) (*StartResult, error)
	Stop(ctx context.Context) (*StopResult, error)
	Status() model.StatusResponse
	History(limit int) []model.RunRecord
	LastSuccess() *time.Time
}

// StartResult is returned by a successful Start.
type StartResult struct {
	Status    string
	Message   string
	FirstSync model.SyncStatus
}

// StopResult is returned by Stop. Status is "success" or "warning".
type StopResult struct {
	Status  string
	Message string
}
