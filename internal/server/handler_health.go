package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/me/sheetsync/pkg/model"
)

type rootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, rootResponse{
		Message: Name,
		Version: Version,
		Status:  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, model.HealthResponse{
		Status:    "healthy",
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Scheduler: s.autoSync.Status().SchedulerPhase,
		LastSync:  s.autoSync.LastSuccess(),
	})
}
