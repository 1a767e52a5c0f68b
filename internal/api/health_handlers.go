package api

import (
	"context"
	"net/http"
	"time"

	"github.com/studyflow/studyflow/internal/logger"
)

const readyTimeout = 2 * time.Second

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// handleHealth is the liveness probe. It answers as long as the process runs.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}

// handleReady is the readiness probe: 200 when the database answers a ping, 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if s.DB == nil {
		writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: "database not configured"})
		return
	}
	if err := s.DB.PingContext(ctx); err != nil {
		logger.FromContext(ctx).Warn("readiness check failed - database: %v", err)
		writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: "database unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ready"})
}
