package api

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/spf13/cast"
	"github.com/studyflow/studyflow/internal/errors"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/services"
)

const maxImportBytes = 10 << 20

type createReviewRequest struct {
	SubjectID int64  `json:"subject_id"`
	Topic     string `json:"topic"`
}

type completeReviewRequest struct {
	Quality any `json:"quality"`
}

type updateReviewRequest struct {
	Topic           *string    `json:"topic"`
	SubjectID       *int64     `json:"subject_id"`
	IntervalDays    any        `json:"interval_days"`
	EaseFactor      any        `json:"ease_factor"`
	RepetitionCount any        `json:"repetition_count"`
	NextDueAt       *time.Time `json:"next_due_at"`
	Version         *int       `json:"version"`
}

// parseQuality accepts whole numbers sent as JSON numbers or strings.
func parseQuality(v any) (int, error) {
	switch v.(type) {
	case nil:
		return 0, errors.NewValidationError("quality", "is required")
	case json.Number, string:
	default:
		return 0, errors.NewValidationError("quality", "must be an integer between 1 and 5")
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, errors.NewValidationError("quality", "must be an integer between 1 and 5")
	}
	return int(f), nil
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	subjectID, err := queryInt64(r, "subject_id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	items, err := s.ReviewService.ListReviews(r.Context(), models.ReviewFilter{
		UserID:    user.ID,
		SubjectID: subjectID,
		Status:    r.URL.Query().Get("status"),
		Now:       s.now(),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	if items == nil {
		items = []models.ReviewItem{}
	}
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	user := userFromContext(r.Context())
	item, err := s.ReviewService.CreateReview(r.Context(), user.ID, req.SubjectID, req.Topic, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, item)
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	user := userFromContext(r.Context())
	item, err := s.ReviewService.GetReview(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req updateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	user := userFromContext(r.Context())
	item, err := s.ReviewService.UpdateReview(r.Context(), user.ID, id, services.ReviewPatch{
		Topic:           req.Topic,
		SubjectID:       req.SubjectID,
		IntervalDays:    req.IntervalDays,
		EaseFactor:      req.EaseFactor,
		RepetitionCount: req.RepetitionCount,
		NextDueAt:       req.NextDueAt,
		Version:         req.Version,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	user := userFromContext(r.Context())
	if err := s.ReviewService.DeleteReview(r.Context(), user.ID, id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req completeReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	quality, err := parseQuality(req.Quality)
	if err != nil {
		handleError(w, r, err)
		return
	}

	user := userFromContext(r.Context())
	item, err := s.ReviewService.CompleteReview(r.Context(), user.ID, id, quality, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("review %d completed: quality=%d, next_due_at=%s", item.ID, quality, item.NextDueAt.Format(time.RFC3339))
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleReviewHistory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	user := userFromContext(r.Context())
	history, err := s.ReviewService.History(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if history == nil {
		history = []models.ReviewHistory{}
	}
	writeJSON(w, r, http.StatusOK, history)
}

// handleImportReviews reads a multipart upload with the workbook in the "file" field.
func (s *Server) handleImportReviews(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid multipart upload: "+err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, r, errors.NewValidationError("file", "is required"))
		return
	}
	defer file.Close()

	logger.FromContext(r.Context()).Debug("import upload received: filename=%s, size=%d", header.Filename, header.Size)

	user := userFromContext(r.Context())
	result, err := s.ReviewService.ImportReviews(r.Context(), user.ID, file, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	writeJSON(w, r, http.StatusOK, result)
}
