package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/me/sheetsync/internal/scheduler"
	"github.com/me/sheetsync/internal/sink"
	"github.com/me/sheetsync/pkg/model"
)

const maxHistoryLimit = 500

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, s.autoSync.Status())
}

func (s *Server) handleSyncHistory(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxHistoryLimit {
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(
				"invalid limit",
				model.FieldError{Field: "limit", Message: fmt.Sprintf("must be an integer in [1, %d]", maxHistoryLimit)},
			))
			return
		}
		limit = n
	}
	respondOK(w, reqID, s.autoSync.History(limit))
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req model.ConnectRequest
	if !decodeBody(w, r, reqID, &req) {
		return
	}
	var details []model.FieldError
	details = append(details, requireSpreadsheet(req.SpreadsheetID)...)
	details = append(details, validateCredentials(req.Credentials)...)
	if len(details) > 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid request", details...))
		return
	}

	table, err := s.fetcher.Fetch(r.Context(), req.SpreadsheetID, *req.Credentials, req.SheetName)
	if err != nil {
		s.logger.Error("google sheets connection error", "spreadsheet_id", req.SpreadsheetID, "error", err)
		respondSyncError(w, reqID, err)
		return
	}

	respondOK(w, reqID, model.ConnectResponse{
		Status:  "success",
		Rows:    table.Len(),
		Columns: table.Columns,
		Data:    table.Records(),
	})
}

func (s *Server) handleSyncDB(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req model.SyncRequest
	if !decodeBody(w, r, reqID, &req) {
		return
	}
	var details []model.FieldError
	details = append(details, requireSpreadsheet(req.SpreadsheetID)...)
	details = append(details, validateCredentials(req.Credentials)...)
	details = append(details, s.validateDBConfig(req.DBConfig)...)
	if len(details) > 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid request", details...))
		return
	}

	spec := model.SyncJobSpec{
		SourceID:    req.SpreadsheetID,
		Credentials: *req.Credentials,
		Sheet:       req.SheetName,
		Destination: *req.DBConfig,
	}
	rows, err := s.oneShot.RunOnce(r.Context(), spec)
	if err != nil {
		s.logger.Error("one-shot sync failed", "spreadsheet_id", req.SpreadsheetID, "target", spec.Destination.Target(), "error", err)
		respondSyncError(w, reqID, err)
		return
	}

	respondOK(w, reqID, model.SyncResponse{
		Status:     "success",
		Message:    "Data synced to " + spec.Destination.Target(),
		RowsSynced: rows,
	})
}

func (s *Server) handleStartAutoSync(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req model.AutoSyncRequest
	if !decodeBody(w, r, reqID, &req) {
		return
	}

	interval := s.config.DefaultSyncInterval
	if req.IntervalMinutes != nil {
		interval = *req.IntervalMinutes
	}

	var details []model.FieldError
	details = append(details, requireSpreadsheet(req.SpreadsheetID)...)
	details = append(details, validateCredentials(req.Credentials)...)
	details = append(details, s.validateDBConfig(req.DBConfig)...)
	if interval < 1 || interval > s.config.MaxSyncInterval {
		details = append(details, model.FieldError{
			Field:   "interval_minutes",
			Message: fmt.Sprintf("must be between 1 and %d", s.config.MaxSyncInterval),
		})
	}
	if len(details) > 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid request", details...))
		return
	}

	spec := model.SyncJobSpec{
		SourceID:    req.SpreadsheetID,
		Credentials: *req.Credentials,
		Sheet:       req.SheetName,
		Destination: *req.DBConfig,
		Interval:    time.Duration(interval) * time.Minute,
	}
	res, err := s.autoSync.Start(r.Context(), spec)
	if err != nil {
		s.logger.Warn("start auto-sync rejected", "error", err)
		respondSyncError(w, reqID, err)
		return
	}

	first := res.FirstSync
	respondOK(w, reqID, model.AutoSyncResponse{
		Status:    res.Status,
		Message:   res.Message,
		FirstSync: &first,
	})
}

func (s *Server) handleStopAutoSync(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	res, err := s.autoSync.Stop(r.Context())
	if err != nil && !errors.Is(err, model.ErrShutdownTimeout) {
		respondSyncError(w, reqID, err)
		return
	}
	respondOK(w, reqID, stopResponse(res))
}

func stopResponse(res *scheduler.StopResult) model.StopResponse {
	return model.StopResponse{Status: res.Status, Message: res.Message}
}

// decodeBody decodes a JSON body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, reqID string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return false
	}
	return true
}

func requireSpreadsheet(id string) []model.FieldError {
	if strings.TrimSpace(id) == "" {
		return []model.FieldError{{Field: "spreadsheet_id", Message: "required"}}
	}
	return nil
}

func validateCredentials(c *model.Credentials) []model.FieldError {
	if c == nil {
		return []model.FieldError{{Field: "credentials", Message: "required"}}
	}
	var out []model.FieldError
	for _, f := range c.Missing() {
		out = append(out, model.FieldError{Field: "credentials." + f, Message: "required"})
	}
	return out
}

func (s *Server) validateDBConfig(c *model.DBConfig) []model.FieldError {
	if c == nil {
		return []model.FieldError{{Field: "db_config", Message: "required"}}
	}

	var out []model.FieldError
	required := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			out = append(out, model.FieldError{Field: "db_config." + field, Message: "required"})
		}
	}
	required("db_type", c.DBType)
	required("database", c.Database)
	required("table_name", c.TableName)

	if c.DBType != "" && s.supports != nil && !s.supports(c.DBType) {
		out = append(out, model.FieldError{Field: "db_config.db_type", Message: fmt.Sprintf("unsupported database type %q", c.DBType)})
	}
	// File-backed databases need no server address but must stay inside
	// the data directory.
	if isFileDB(c.DBType) {
		if strings.TrimSpace(c.Database) != "" {
			if _, err := sink.CleanSQLiteName(c.Database); err != nil {
				out = append(out, model.FieldError{Field: "db_config.database", Message: "must be a relative path inside the data directory"})
			}
		}
	} else {
		required("host", c.Host)
		required("user", c.User)
		if c.Port < 0 || c.Port > 65535 {
			out = append(out, model.FieldError{Field: "db_config.port", Message: "must be a valid TCP port"})
		}
	}
	return out
}

func isFileDB(dbType string) bool {
	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "sqlite", "sqlite3":
		return true
	}
	return false
}
