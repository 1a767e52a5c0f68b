package api

import "net/http"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	dashboard, err := s.StatsService.Dashboard(r.Context(), user.ID, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dashboard)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	report, err := s.StatsService.Report(r.Context(), user.ID, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
