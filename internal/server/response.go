package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/me/sheetsync/internal/sheets"
	"github.com/me/sheetsync/pkg/model"
)

// requestID generates a unique request identifier.
func requestID() string {
	return "req_" + uuid.New().String()[:8]
}

// respondOK writes a success response with the standard envelope.
func respondOK(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusOK, reqID, data, nil)
}

// respondError writes an error response with the standard envelope.
func respondError(w http.ResponseWriter, reqID string, status int, apiErr *model.APIError) {
	respondJSON(w, status, reqID, nil, apiErr)
}

func respondJSON(w http.ResponseWriter, status int, reqID string, data any, apiErr *model.APIError) {
	resp := model.Response{
		RequestID: reqID,
		Timestamp: time.Now().UTC(),
		Data:      data,
		Error:     apiErr,
	}
	if apiErr != nil {
		resp.Status = "error"
	} else {
		resp.Status = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// respondSyncError maps scheduler and collaborator errors onto HTTP statuses.
func respondSyncError(w http.ResponseWriter, reqID string, err error) {
	var (
		invalid *model.InvalidConfigurationError
		fetch   *model.FetchError
		write   *model.WriteError
	)
	switch {
	case errors.As(err, &invalid):
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error(),
			model.FieldError{Field: invalid.Field, Message: invalid.Reason}))
	case errors.Is(err, model.ErrSchedulerConflict):
		respondError(w, reqID, http.StatusConflict, &model.APIError{
			Code:    model.ErrConflict,
			Message: "Scheduler error: " + err.Error(),
		})
	case errors.As(err, &fetch) && errors.Is(err, sheets.ErrNotFound):
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("spreadsheet", fetch.SourceID))
	case errors.As(err, &fetch), errors.As(err, &write):
		respondError(w, reqID, http.StatusBadGateway, &model.APIError{
			Code:    model.ErrUpstream,
			Message: err.Error(),
		})
	default:
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "Internal server error: " + err.Error(),
		})
	}
}
