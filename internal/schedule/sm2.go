// Package schedule computes spaced-repetition review schedules using an SM-2 variant.
package schedule

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

const (
	DefaultIntervalDays = 1
	DefaultEaseFactor   = 2.5
	MinEaseFactor       = 1.3

	// PassingQuality is the lowest rating that counts as a successful recall.
	PassingQuality = 3
	MinQuality     = 1
	MaxQuality     = 5
)

// State is the scheduling part of a review item.
type State struct {
	IntervalDays    int     `json:"interval_days"`
	EaseFactor      float64 `json:"ease_factor"`
	RepetitionCount int     `json:"repetition_count"`
}

// Initial returns the state of a freshly created review item.
func Initial() State {
	return State{
		IntervalDays:    DefaultIntervalDays,
		EaseFactor:      DefaultEaseFactor,
		RepetitionCount: 0,
	}
}

// Raw holds scheduling fields as a storage or transport layer handed them over.
// Values may be numbers, numeric strings, json.Number or nil.
type Raw struct {
	IntervalDays    any
	EaseFactor      any
	RepetitionCount any
}

// FromRaw coerces raw scheduling fields into a State. Values that cannot be read
// as finite numbers fall back to the defaults of a new item.
func FromRaw(r Raw) State {
	s := Initial()
	if v, ok := toFloat(r.IntervalDays); ok {
		s.IntervalDays = floatToInt(v)
	}
	if v, ok := toFloat(r.EaseFactor); ok {
		s.EaseFactor = v
	}
	if v, ok := toFloat(r.RepetitionCount); ok {
		s.RepetitionCount = floatToInt(v)
	}
	return s.normalize()
}

// InvalidField returns the name of the first non-nil field that cannot be read
// as a finite number, or "" when every set field is usable.
func (r Raw) InvalidField() string {
	fields := []struct {
		name  string
		value any
	}{
		{"interval_days", r.IntervalDays},
		{"ease_factor", r.EaseFactor},
		{"repetition_count", r.RepetitionCount},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if _, ok := toFloat(f.value); !ok {
			return f.name
		}
	}
	return ""
}

// ComputeNextScheduleRaw coerces raw fields and then applies ComputeNextSchedule.
func ComputeNextScheduleRaw(current Raw, quality int) State {
	return ComputeNextSchedule(FromRaw(current), quality)
}

// ComputeNextSchedule returns the scheduling state that follows a review rated
// with quality (1 = forgot, 5 = perfect recall). Quality is not range checked.
func ComputeNextSchedule(current State, quality int) State {
	current = current.normalize()

	next := current
	if quality >= PassingQuality {
		switch current.RepetitionCount {
		case 0:
			next.IntervalDays = 1
		case 1:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(current.IntervalDays) * current.EaseFactor))
		}
		next.RepetitionCount = current.RepetitionCount + 1
	} else {
		next.RepetitionCount = 0
		next.IntervalDays = 1
	}
	if next.IntervalDays < 1 {
		next.IntervalDays = 1
	}

	next.EaseFactor = UpdateEaseFactor(current.EaseFactor, quality)
	return next
}

// UpdateEaseFactor applies the SM-2 ease adjustment, clamps it at MinEaseFactor
// and rounds it to two decimals.
func UpdateEaseFactor(ease float64, quality int) float64 {
	d := float64(5 - quality)
	ef := ease + (0.1 - d*(0.08+d*0.02))
	if ef < MinEaseFactor || math.IsNaN(ef) {
		ef = MinEaseFactor
	}
	return math.Round(ef*100) / 100
}

// DueAt returns the calendar day reviewedAt + intervalDays at the same wall clock time.
func DueAt(reviewedAt time.Time, intervalDays int) time.Time {
	return reviewedAt.AddDate(0, 0, intervalDays)
}

// ValidQuality reports whether q is a rating a user can submit.
func ValidQuality(q int) bool {
	return q >= MinQuality && q <= MaxQuality
}

func (s State) normalize() State {
	if s.IntervalDays < 1 {
		s.IntervalDays = 1
	}
	if math.IsNaN(s.EaseFactor) || math.IsInf(s.EaseFactor, 0) || s.EaseFactor <= 0 {
		s.EaseFactor = DefaultEaseFactor
	} else if s.EaseFactor < MinEaseFactor {
		s.EaseFactor = MinEaseFactor
	}
	if s.RepetitionCount < 0 {
		s.RepetitionCount = 0
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch v.(type) {
	case nil, bool:
		return 0, false
	}
	if str, ok := v.(string); ok {
		v = strings.TrimSpace(str)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func floatToInt(v float64) int {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int(math.Round(v))
}
