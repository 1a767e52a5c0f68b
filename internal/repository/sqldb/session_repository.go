package sqldb

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/studyflow/studyflow/internal/db"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/repository"
)

type sessionRepository struct {
	db *db.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *db.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s models.StudySession) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: user_id=%d, subject_id=%d, duration=%ds", s.UserID, s.SubjectID, s.DurationSeconds)

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO study_sessions (user_id, subject_id, started_at, ended_at, duration_seconds, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id
`), s.UserID, s.SubjectID, utc(s.StartedAt), utc(s.EndedAt), s.DurationSeconds, s.Notes, utc(time.Now())).Scan(&id)
	if err != nil {
		log.Error("failed to insert session: %v", err)
		return 0, err
	}
	log.Debug("session inserted: id=%d", id)
	return id, nil
}

func (r *sessionRepository) Get(ctx context.Context, id, userID int64) (*models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	query, args, err := r.selectSessions().
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	s, err := getOne[models.StudySession](ctx, r.db, query, args...)
	if err != nil {
		log.Error("failed to get session: %v", err)
	}
	return s, err
}

func (r *sessionRepository) List(ctx context.Context, f models.SessionFilter) ([]models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing sessions: user_id=%d, subject_id=%d", f.UserID, f.SubjectID)

	q := r.selectSessions().Where(squirrel.Eq{"user_id": f.UserID})
	if f.SubjectID > 0 {
		q = q.Where(squirrel.Eq{"subject_id": f.SubjectID})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"started_at": utc(*f.From)})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"started_at": utc(*f.To)})
	}
	q = q.OrderBy("started_at DESC", "id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	sessions := []models.StudySession{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, err
	}
	log.Debug("found %d sessions", len(sessions))
	return sessions, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("deleting session: id=%d, user_id=%d", id, userID)

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM study_sessions WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		log.Error("failed to delete session: %v", err)
		return false, err
	}
	return affected(res)
}

func (r *sessionRepository) selectSessions() squirrel.SelectBuilder {
	return r.db.Builder().
		Select("id", "user_id", "subject_id", "started_at", "ended_at", "duration_seconds", "notes", "created_at").
		From("study_sessions")
}
