package attendance

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TIME OF DAY - Clock time without a date ("09:15")
// =============================================================================

// TimeOfDay is a wall-clock time detached from any calendar date.
// Activity schedules store start/end/late-threshold as times of day;
// absolute instants are only formed by anchoring onto the activity's
// own date (see On), never onto the arrival timestamp's date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if len(s) == 5 { // "HH:MM"
		s += ":00"
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

func MustTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

// On anchors the clock time onto a calendar date, producing an absolute
// instant in that date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour, t.Minute, t.Second, 0, date.Location())
}

// AddMinutes shifts the clock time forward. Used for minute-offset late
// thresholds; wrap past midnight is not meaningful for activity windows
// and is normalized by time.Date inside On.
func (t TimeOfDay) AddMinutes(n int) TimeOfDay {
	total := t.Hour*3600 + t.Minute*60 + t.Second + n*60
	return TimeOfDay{Hour: total / 3600, Minute: (total % 3600) / 60, Second: total % 60}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// =============================================================================
// DATE HELPERS
// =============================================================================

// DateOnly strips the time component, keeping the location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay compares calendar dates, ignoring time of day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
