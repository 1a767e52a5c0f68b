package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/studyflow/studyflow/internal/errors"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/services"
)

const (
	defaultSessionLimit = 100
	maxSessionLimit     = 500
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type sessionRequest struct {
	SubjectID       int64      `json:"subject_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationSeconds *int64     `json:"duration_seconds"`
	Notes           string     `json:"notes"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	loc := s.location()

	filter := models.SessionFilter{UserID: user.ID, Limit: defaultSessionLimit}

	subjectID, err := queryInt64(r, "subject_id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	filter.SubjectID = subjectID

	if filter.From, err = queryTime(r, "from", loc); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.To, err = queryTime(r, "to", loc); err != nil {
		handleError(w, r, err)
		return
	}

	limit, err := queryInt64(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if limit > maxSessionLimit {
		handleError(w, r, errors.NewValidationError("limit", "must be at most 500"))
		return
	}
	if limit > 0 {
		filter.Limit = int(limit)
	}
	offset, err := queryInt64(r, "offset")
	if err != nil {
		handleError(w, r, err)
		return
	}
	filter.Offset = int(offset)

	sessions, err := s.SessionService.ListSessions(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []models.StudySession{}
	}
	writeJSON(w, r, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	user := userFromContext(r.Context())
	session, err := s.SessionService.CreateSession(r.Context(), user.ID, services.SessionInput{
		SubjectID:       req.SubjectID,
		StartedAt:       req.StartedAt,
		EndedAt:         req.EndedAt,
		DurationSeconds: req.DurationSeconds,
		Notes:           req.Notes,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	user := userFromContext(r.Context())
	if err := s.SessionService.DeleteSession(r.Context(), user.ID, id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport streams every session and review item of the user as a workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	// Buffer first so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := s.StatsService.Export(r.Context(), user.ID, &buf); err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="studyflow-export.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
