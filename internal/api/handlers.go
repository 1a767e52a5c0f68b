package api

import (
	"context"
	"time"

	"github.com/studyflow/studyflow/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	AuthService    services.AuthService
	UserService    services.UserService
	SubjectService services.SubjectService
	SessionService services.SessionService
	ReviewService  services.ReviewService
	StatsService   services.StatsService
	DB             Pinger
	// Location resolves plain dates in query strings.
	Location *time.Location
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}
