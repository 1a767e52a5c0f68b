package sqldb

import (
	"context"
	"time"

	"github.com/studyflow/studyflow/internal/db"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/repository"
)

const subjectColumns = `id, user_id, name, color, weekly_goal_hours, created_at`

type subjectRepository struct {
	db *db.DB
}

// NewSubjectRepository creates a new SubjectRepository implementation
func NewSubjectRepository(db *db.DB) repository.SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Create(ctx context.Context, s models.Subject) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("subject_repo")
	log.Debug("inserting subject: user_id=%d, name=%s", s.UserID, s.Name)

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO subjects (user_id, name, color, weekly_goal_hours, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`), s.UserID, s.Name, s.Color, s.WeeklyGoalHours, utc(time.Now())).Scan(&id)
	if err != nil {
		log.Error("failed to insert subject: %v", err)
		return 0, err
	}
	log.Debug("subject inserted: id=%d", id)
	return id, nil
}

func (r *subjectRepository) Get(ctx context.Context, id, userID int64) (*models.Subject, error) {
	log := logger.FromContext(ctx).WithPrefix("subject_repo")
	log.Debug("getting subject: id=%d, user_id=%d", id, userID)

	s, err := getOne[models.Subject](ctx, r.db, r.db.Rebind(`
SELECT `+subjectColumns+` FROM subjects WHERE id = ? AND user_id = ?
`), id, userID)
	if err != nil {
		log.Error("failed to get subject: %v", err)
	}
	return s, err
}

func (r *subjectRepository) GetByName(ctx context.Context, userID int64, name string) (*models.Subject, error) {
	log := logger.FromContext(ctx).WithPrefix("subject_repo")
	log.Debug("getting subject by name: user_id=%d, name=%s", userID, name)

	s, err := getOne[models.Subject](ctx, r.db, r.db.Rebind(`
SELECT `+subjectColumns+` FROM subjects WHERE user_id = ? AND LOWER(name) = LOWER(?)
ORDER BY id LIMIT 1
`), userID, name)
	if err != nil {
		log.Error("failed to get subject by name: %v", err)
	}
	return s, err
}

func (r *subjectRepository) List(ctx context.Context, userID int64) ([]models.Subject, error) {
	log := logger.FromContext(ctx).WithPrefix("subject_repo")
	log.Debug("listing subjects: user_id=%d", userID)

	subjects := []models.Subject{}
	err := r.db.SelectContext(ctx, &subjects, r.db.Rebind(`
SELECT `+subjectColumns+` FROM subjects WHERE user_id = ? ORDER BY name, id
`), userID)
	if err != nil {
		log.Error("failed to list subjects: %v", err)
		return nil, err
	}
	log.Debug("found %d subjects", len(subjects))
	return subjects, nil
}

func (r *subjectRepository) Update(ctx context.Context, s models.Subject) error {
	log := logger.FromContext(ctx).WithPrefix("subject_repo")
	log.Debug("updating subject: id=%d", s.ID)

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
UPDATE subjects SET name = ?, color = ?, weekly_goal_hours = ? WHERE id = ? AND user_id = ?
`), s.Name, s.Color, s.WeeklyGoalHours, s.ID, s.UserID)
	if err != nil {
		log.Error("failed to update subject: %v", err)
	}
	return err
}

func (r *subjectRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("subject_repo")
	log.Debug("deleting subject: id=%d, user_id=%d", id, userID)

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM subjects WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		log.Error("failed to delete subject: %v", err)
		return false, err
	}
	return affected(res)
}
