package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, map[string]errorBody{
			"error": {Code: "NOT_FOUND", Message: "route not found"},
		})
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/logout", s.handleLogout)
		r.Get("/users/me", s.handleGetMe)
		r.Patch("/users/me", s.handleUpdateMe)
		r.Post("/users/me/change-password", s.handleChangePassword)

		r.Route("/subjects", func(r chi.Router) {
			r.Get("/", s.handleListSubjects)
			r.Post("/", s.handleCreateSubject)
			r.Get("/{id}", s.handleGetSubject)
			r.Put("/{id}", s.handleUpdateSubject)
			r.Delete("/{id}", s.handleDeleteSubject)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleCreateSession)
			r.Get("/export.xlsx", s.handleExport)
			r.Delete("/{id}", s.handleDeleteSession)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", s.handleListReviews)
			r.Post("/", s.handleCreateReview)
			r.Post("/import", s.handleImportReviews)
			r.Get("/{id}", s.handleGetReview)
			r.Patch("/{id}", s.handleUpdateReview)
			r.Delete("/{id}", s.handleDeleteReview)
			r.Post("/{id}/complete", s.handleCompleteReview)
			r.Get("/{id}/history", s.handleReviewHistory)
		})

		r.Get("/stats/dashboard", s.handleDashboard)
		r.Get("/stats/analytics", s.handleAnalytics)
	})

	return r
}
