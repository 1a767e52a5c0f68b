// Package analytics aggregates study sessions and review items into the
// dashboard and report figures. Everything here is pure: callers pass the
// clock and the time zone that defines a "day".
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/studyflow/studyflow/internal/models"
)

type Dashboard struct {
	HoursToday    float64 `json:"hours_today"`
	HoursWeek     float64 `json:"hours_week"`
	HoursMonth    float64 `json:"hours_month"`
	Subjects      int     `json:"subjects"`
	ReviewsToday  int     `json:"reviews_today"`
	CurrentStreak int     `json:"current_streak"`
}

type SubjectTotal struct {
	SubjectID       int64   `json:"subject_id"`
	Name            string  `json:"name"`
	Color           string  `json:"color"`
	TotalHours      float64 `json:"total_hours"`
	SessionCount    int     `json:"session_count"`
	AverageSession  float64 `json:"average_session_hours"`
	WeekHours       float64 `json:"week_hours"`
	WeeklyGoalHours int     `json:"weekly_goal_hours"`
	GoalProgress    float64 `json:"goal_progress_percent"`
}

type Report struct {
	TotalHours     float64        `json:"total_hours"`
	TotalSessions  int            `json:"total_sessions"`
	AverageDaily   float64        `json:"average_daily_hours"`
	LongestSession float64        `json:"longest_session_hours"`
	Subjects       []SubjectTotal `json:"subjects"`
	LastSevenDays  []float64      `json:"last_seven_days"`
}

// BuildDashboard summarizes the user's recent activity as seen at now in loc.
func BuildDashboard(sessions []models.StudySession, reviews []models.ReviewItem, subjects int, now time.Time, loc *time.Location) Dashboard {
	now = now.In(loc)
	today := startOfDay(now)
	weekAgo := today.Add(-7 * 24 * time.Hour)
	monthAgo := today.Add(-30 * 24 * time.Hour)

	var todaySec, weekSec, monthSec int64
	for _, s := range sessions {
		start := s.StartedAt
		if !start.Before(today) {
			todaySec += s.DurationSeconds
		}
		if !start.Before(weekAgo) {
			weekSec += s.DurationSeconds
		}
		if !start.Before(monthAgo) {
			monthSec += s.DurationSeconds
		}
	}

	due := 0
	for _, r := range reviews {
		if !r.NextDueAt.After(now) && !r.NextDueAt.Before(today) {
			due++
		}
	}

	return Dashboard{
		HoursToday:    round1(hours(todaySec)),
		HoursWeek:     round1(hours(weekSec)),
		HoursMonth:    round1(hours(monthSec)),
		Subjects:      subjects,
		ReviewsToday:  due,
		CurrentStreak: Streak(sessions, now, loc),
	}
}

// Streak counts consecutive local days with at least one session, walking
// back from today. A day without sessions today yields zero.
func Streak(sessions []models.StudySession, now time.Time, loc *time.Location) int {
	days := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		days[dayKey(s.StartedAt, loc)] = true
	}

	streak := 0
	day := startOfDay(now.In(loc))
	for days[dayKey(day, loc)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// BuildReport computes lifetime totals and per-subject breakdowns.
func BuildReport(sessions []models.StudySession, subjects []models.Subject, now time.Time, loc *time.Location) Report {
	now = now.In(loc)
	today := startOfDay(now)
	weekAgo := today.Add(-7 * 24 * time.Hour)

	var totalSec, longest int64
	uniqueDays := make(map[string]bool)
	for _, s := range sessions {
		totalSec += s.DurationSeconds
		if s.DurationSeconds > longest {
			longest = s.DurationSeconds
		}
		uniqueDays[dayKey(s.StartedAt, loc)] = true
	}

	avgDaily := 0.0
	if len(uniqueDays) > 0 {
		avgDaily = hours(totalSec) / float64(len(uniqueDays))
	}

	totals := make([]SubjectTotal, 0, len(subjects))
	for _, subj := range subjects {
		var sec, weekSec int64
		count := 0
		for _, s := range sessions {
			if s.SubjectID != subj.ID {
				continue
			}
			sec += s.DurationSeconds
			count++
			if !s.StartedAt.Before(weekAgo) {
				weekSec += s.DurationSeconds
			}
		}
		avg := 0.0
		if count > 0 {
			avg = hours(sec) / float64(count)
		}
		progress := 0.0
		if subj.WeeklyGoalHours > 0 {
			progress = hours(weekSec) / float64(subj.WeeklyGoalHours) * 100
		}
		totals = append(totals, SubjectTotal{
			SubjectID:       subj.ID,
			Name:            subj.Name,
			Color:           subj.Color,
			TotalHours:      round1(hours(sec)),
			SessionCount:    count,
			AverageSession:  round1(avg),
			WeekHours:       round1(hours(weekSec)),
			WeeklyGoalHours: subj.WeeklyGoalHours,
			GoalProgress:    round1(progress),
		})
	}
	sort.SliceStable(totals, func(i, j int) bool { return totals[i].TotalHours > totals[j].TotalHours })

	return Report{
		TotalHours:     round1(hours(totalSec)),
		TotalSessions:  len(sessions),
		AverageDaily:   round1(avgDaily),
		LongestSession: round1(hours(longest)),
		Subjects:       totals,
		LastSevenDays:  lastSevenDays(sessions, today),
	}
}

// lastSevenDays returns hours per local day, oldest first, ending today.
func lastSevenDays(sessions []models.StudySession, today time.Time) []float64 {
	out := make([]float64, 0, 7)
	for i := 6; i >= 0; i-- {
		dayStart := today.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)
		var sec int64
		for _, s := range sessions {
			if !s.StartedAt.Before(dayStart) && s.StartedAt.Before(dayEnd) {
				sec += s.DurationSeconds
			}
		}
		out = append(out, round1(hours(sec)))
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

func hours(seconds int64) float64 {
	return float64(seconds) / 3600
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
