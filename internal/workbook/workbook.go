// Package workbook reads topic imports from and writes data exports to
// Excel workbooks.
package workbook

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/schedule"
	"github.com/xuri/excelize/v2"
)

const (
	SessionsSheet = "Sessions"
	ReviewsSheet  = "Reviews"

	timeLayout = "2006-01-02 15:04"
)

// TopicRow is one line of an import sheet: subject | topic [| interval | ease | reps].
// Scheduling cells are kept raw; empty cells are nil.
type TopicRow struct {
	Line     int
	Subject  string
	Topic    string
	Schedule schedule.Raw
	// HasSchedule is set when at least one scheduling cell was filled in.
	HasSchedule bool
}

// ReadResult holds the parsed rows plus any lines that had to be skipped.
type ReadResult struct {
	Rows   []TopicRow
	Errors []string
}

// ReadTopics parses the first sheet of an xlsx workbook. A header row whose
// first cell reads "subject" is skipped.
func ReadTopics(r io.Reader) (*ReadResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ReadResult{Errors: make([]string, 0)}
	for i, row := range rows {
		line := i + 1
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "subject") {
			continue
		}
		if isBlank(row) {
			continue
		}

		subject := cell(row, 0)
		topic := cell(row, 1)
		if subject == "" || topic == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: subject and topic are required", line))
			continue
		}

		tr := TopicRow{Line: line, Subject: subject, Topic: topic}
		for idx, dst := range []*any{&tr.Schedule.IntervalDays, &tr.Schedule.EaseFactor, &tr.Schedule.RepetitionCount} {
			if v := cell(row, idx+2); v != "" {
				*dst = v
				tr.HasSchedule = true
			}
		}
		result.Rows = append(result.Rows, tr)
	}
	return result, nil
}

// Export is everything written to a user's workbook.
type Export struct {
	Sessions []models.StudySession
	Reviews  []models.ReviewItem
	// SubjectNames maps subject ids to display names.
	SubjectNames map[int64]string
	Location     *time.Location
}

// Write renders the export as an xlsx workbook with a Sessions and a Reviews sheet.
func Write(w io.Writer, e Export) error {
	loc := e.Location
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SessionsSheet)
	if err := f.SetSheetRow(SessionsSheet, "A1", &[]interface{}{"Subject", "Started At", "Ended At", "Hours", "Notes"}); err != nil {
		return err
	}
	for i, s := range e.Sessions {
		row := []interface{}{
			e.SubjectNames[s.SubjectID],
			s.StartedAt.In(loc).Format(timeLayout),
			s.EndedAt.In(loc).Format(timeLayout),
			s.Hours(),
			s.Notes,
		}
		if err := f.SetSheetRow(SessionsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	f.NewSheet(ReviewsSheet)
	if err := f.SetSheetRow(ReviewsSheet, "A1", &[]interface{}{"Subject", "Topic", "Last Reviewed", "Next Due", "Interval Days", "Ease Factor", "Repetitions"}); err != nil {
		return err
	}
	for i, r := range e.Reviews {
		row := []interface{}{
			e.SubjectNames[r.SubjectID],
			r.Topic,
			r.LastReviewedAt.In(loc).Format(timeLayout),
			r.NextDueAt.In(loc).Format(timeLayout),
			r.IntervalDays,
			r.EaseFactor,
			r.RepetitionCount,
		}
		if err := f.SetSheetRow(ReviewsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
