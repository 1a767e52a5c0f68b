package sqldb

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/studyflow/studyflow/internal/db"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/repository"
)

type reviewRepository struct {
	db *db.DB
}

// NewReviewRepository creates a new ReviewRepository implementation
func NewReviewRepository(db *db.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, item models.ReviewItem) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("inserting review item: user_id=%d, subject_id=%d, topic=%s", item.UserID, item.SubjectID, item.Topic)

	version := item.Version
	if version < 1 {
		version = 1
	}

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO review_items (user_id, subject_id, topic, last_reviewed_at, next_due_at, interval_days, ease_factor, repetition_count, version, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`), item.UserID, item.SubjectID, item.Topic, utc(item.LastReviewedAt), utc(item.NextDueAt),
		item.IntervalDays, item.EaseFactor, item.RepetitionCount, version, utc(time.Now())).Scan(&id)
	if err != nil {
		log.Error("failed to insert review item: %v", err)
		return 0, err
	}
	log.Debug("review item inserted: id=%d", id)
	return id, nil
}

func (r *reviewRepository) Get(ctx context.Context, id, userID int64) (*models.ReviewItem, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("getting review item: id=%d, user_id=%d", id, userID)

	query, args, err := r.selectItems().Where(squirrel.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return nil, err
	}
	item, err := getOne[models.ReviewItem](ctx, r.db, query, args...)
	if err != nil {
		log.Error("failed to get review item: %v", err)
	}
	return item, err
}

func (r *reviewRepository) List(ctx context.Context, f models.ReviewFilter) ([]models.ReviewItem, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("listing review items: user_id=%d, status=%s", f.UserID, f.Status)

	q := r.selectItems().Where(squirrel.Eq{"user_id": f.UserID})
	if f.SubjectID > 0 {
		q = q.Where(squirrel.Eq{"subject_id": f.SubjectID})
	}
	switch f.Status {
	case models.ReviewStatusPending:
		q = q.Where(squirrel.LtOrEq{"next_due_at": utc(f.Now)})
	case models.ReviewStatusUpcoming:
		q = q.Where(squirrel.Gt{"next_due_at": utc(f.Now)})
	}
	q = q.OrderBy("next_due_at", "id")

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	items := []models.ReviewItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		log.Error("failed to list review items: %v", err)
		return nil, err
	}
	log.Debug("found %d review items", len(items))
	return items, nil
}

func (r *reviewRepository) Update(ctx context.Context, item models.ReviewItem) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("updating review item: id=%d, version=%d", item.ID, item.Version)

	ok, err := updateItem(ctx, r.db.DB, item)
	if err != nil {
		log.Error("failed to update review item: %v", err)
		return false, err
	}
	if !ok {
		log.Warn("stale review item update: id=%d, version=%d", item.ID, item.Version)
	}
	return ok, nil
}

// RecordReview applies a completed review and appends its history row atomically.
func (r *reviewRepository) RecordReview(ctx context.Context, item models.ReviewItem, h models.ReviewHistory) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("recording review: id=%d, quality=%d", item.ID, h.Quality)

	var applied bool
	err := r.db.Tx(ctx, func(tx *sqlx.Tx) error {
		ok, err := updateItem(ctx, tx, item)
		if err != nil || !ok {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
INSERT INTO review_history (review_id, quality, prev_interval_days, new_interval_days, prev_ease_factor, new_ease_factor, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`), item.ID, h.Quality, h.PrevIntervalDays, h.NewIntervalDays, h.PrevEaseFactor, h.NewEaseFactor, utc(h.ReviewedAt))
		if err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		log.Error("failed to record review: %v", err)
		return false, err
	}
	if !applied {
		log.Warn("stale review completion: id=%d, version=%d", item.ID, item.Version)
	}
	return applied, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("deleting review item: id=%d, user_id=%d", id, userID)

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM review_items WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		log.Error("failed to delete review item: %v", err)
		return false, err
	}
	return affected(res)
}

func (r *reviewRepository) History(ctx context.Context, reviewID int64) ([]models.ReviewHistory, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("getting review history: review_id=%d", reviewID)

	history := []models.ReviewHistory{}
	err := r.db.SelectContext(ctx, &history, r.db.Rebind(`
SELECT id, review_id, quality, prev_interval_days, new_interval_days, prev_ease_factor, new_ease_factor, reviewed_at
FROM review_history
WHERE review_id = ?
ORDER BY reviewed_at DESC, id DESC
`), reviewID)
	if err != nil {
		log.Error("failed to get review history: %v", err)
		return nil, err
	}
	return history, nil
}

func (r *reviewRepository) selectItems() squirrel.SelectBuilder {
	return r.db.Builder().
		Select("id", "user_id", "subject_id", "topic", "last_reviewed_at", "next_due_at",
			"interval_days", "ease_factor", "repetition_count", "version", "created_at").
		From("review_items")
}

// updateItem writes item if its version is still current and bumps the version.
func updateItem(ctx context.Context, ex sqlx.ExtContext, item models.ReviewItem) (bool, error) {
	res, err := ex.ExecContext(ctx, ex.Rebind(`
UPDATE review_items
SET topic = ?, subject_id = ?, last_reviewed_at = ?, next_due_at = ?, interval_days = ?, ease_factor = ?, repetition_count = ?, version = version + 1
WHERE id = ? AND user_id = ? AND version = ?
`), item.Topic, item.SubjectID, utc(item.LastReviewedAt), utc(item.NextDueAt),
		item.IntervalDays, item.EaseFactor, item.RepetitionCount, item.ID, item.UserID, item.Version)
	if err != nil {
		return false, err
	}
	return affected(res)
}
