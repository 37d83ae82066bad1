package model

import "time"

// Response is the standard API response envelope.
type Response struct {
	Status    string    `json:"status"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Error     *APIError `json:"error"`
}

// ConnectRequest asks the server to read a sheet and return its contents.
type ConnectRequest struct {
	SpreadsheetID string       `json:"spreadsheet_id" yaml:"spreadsheet_id"`
	Credentials   *Credentials `json:"credentials" yaml:"credentials"`
	SheetName     string       `json:"sheet_name,omitempty" yaml:"sheet_name"`
}

// SyncRequest asks the server for a single fetch-then-write cycle.
type SyncRequest struct {
	SpreadsheetID string       `json:"spreadsheet_id" yaml:"spreadsheet_id"`
	Credentials   *Credentials `json:"credentials" yaml:"credentials"`
	DBConfig      *DBConfig    `json:"db_config" yaml:"db_config"`
	SheetName     string       `json:"sheet_name,omitempty" yaml:"sheet_name"`
}

// AutoSyncRequest arms the recurring sync job.
// IntervalMinutes is optional; the server default applies when nil.
type AutoSyncRequest struct {
	SpreadsheetID   string       `json:"spreadsheet_id" yaml:"spreadsheet_id"`
	Credentials     *Credentials `json:"credentials" yaml:"credentials"`
	DBConfig        *DBConfig    `json:"db_config" yaml:"db_config"`
	IntervalMinutes *int         `json:"interval_minutes,omitempty" yaml:"interval_minutes"`
	SheetName       string       `json:"sheet_name,omitempty" yaml:"sheet_name"`
}

// ConnectResponse carries the sheet contents as records keyed by column.
type ConnectResponse struct {
	Status  string              `json:"status"`
	Rows    int                 `json:"rows"`
	Columns []string            `json:"columns"`
	Data    []map[string]string `json:"data"`
}

// SyncResponse reports a one-shot sync.
type SyncResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	RowsSynced int    `json:"rows_synced"`
}

// AutoSyncResponse is returned by start-auto-sync.
type AutoSyncResponse struct {
	Status    string      `json:"status"`
	Message   string      `json:"message"`
	FirstSync *SyncStatus `json:"first_sync,omitempty"`
}

// StopResponse is returned by stop-auto-sync.
type StopResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusResponse is returned by sync-status.
type StatusResponse struct {
	SchedulerPhase SchedulerPhase `json:"scheduler_phase"`
	Sync           SyncStatus     `json:"sync"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status    string         `json:"status"`
	Version   string         `json:"version"`
	GoVersion string         `json:"go_version"`
	Uptime    string         `json:"uptime"`
	Timestamp time.Time      `json:"timestamp"`
	Scheduler SchedulerPhase `json:"scheduler"`
	LastSync  *time.Time     `json:"last_sync,omitempty"`
}
