package api

import (
	"net/http"

	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/services"
)

type subjectRequest struct {
	Name            string `json:"name"`
	Color           string `json:"color"`
	WeeklyGoalHours *int   `json:"weekly_goal_hours"`
}

func (req subjectRequest) input() services.SubjectInput {
	return services.SubjectInput{
		Name:            req.Name,
		Color:           req.Color,
		WeeklyGoalHours: req.WeeklyGoalHours,
	}
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	subjects, err := s.SubjectService.ListSubjects(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	writeJSON(w, r, http.StatusOK, subjects)
}

func (s *Server) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	var req subjectRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	user := userFromContext(r.Context())
	subject, err := s.SubjectService.CreateSubject(r.Context(), user.ID, req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, subject)
}

func (s *Server) handleGetSubject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	user := userFromContext(r.Context())
	subject, err := s.SubjectService.GetSubject(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, subject)
}

func (s *Server) handleUpdateSubject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req subjectRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	user := userFromContext(r.Context())
	subject, err := s.SubjectService.UpdateSubject(r.Context(), user.ID, id, req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, subject)
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	user := userFromContext(r.Context())
	if err := s.SubjectService.DeleteSubject(r.Context(), user.ID, id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
