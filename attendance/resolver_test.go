/*
resolver_test.go - Specification tests for attendance status resolution

PURPOSE:
  These tests serve as EXECUTABLE SPECIFICATIONS of the classification
  rules. Each test documents one behavior and validates that the
  resolver conforms to it.

ORGANIZATION:
  1. Date classification - future / past / valid / unknown
  2. Time-based classification - present / late / absent boundaries
  3. Fallbacks - missing schedule fields
  4. Determinism - same inputs, same outcome

READING THESE TESTS:
  Each test has GIVEN/WHEN/THEN comments explaining the scenario.
*/
package attendance_test

import (
	"errors"
	"testing"
	"time"

	"github.com/sahabat/attendance-engine/attendance"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func tod(s string) *attendance.TimeOfDay {
	t := attendance.MustTimeOfDay(s)
	return &t
}

// sessionDay is an arbitrary fixed activity date.
var sessionDay = time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)

// morningSession is the canonical demo schedule: starts 09:00, late
// after 09:15, window closes 11:00.
func morningSession() attendance.Schedule {
	return attendance.Schedule{
		Date:          sessionDay,
		StartTime:     tod("09:00"),
		LateThreshold: tod("09:15"),
		EndTime:       tod("11:00"),
	}
}

// at builds an arrival instant on the session day.
func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 9, hour, minute, 0, 0, time.UTC)
}

func resolveAt(t *testing.T, s attendance.Schedule, arrival time.Time) attendance.Status {
	t.Helper()
	status, err := attendance.ResolveStatus(s, arrival, attendance.DateValid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return status
}

// =============================================================================
// DATE CLASSIFICATION TESTS
// =============================================================================

func TestClassifyActivityDate_IgnoresTimeOfDay(t *testing.T) {
	// GIVEN: Activity dated today, "today" sampled late in the evening
	// WHEN: Classifying
	// THEN: Valid - only calendar dates are compared

	today := time.Date(2026, time.March, 9, 23, 50, 0, 0, time.UTC)
	got := attendance.ClassifyActivityDate(sessionDay, today)
	if got != attendance.DateValid {
		t.Errorf("expected valid, got %s", got)
	}
}

func TestClassifyActivityDate_Tomorrow_IsFuture(t *testing.T) {
	got := attendance.ClassifyActivityDate(sessionDay.AddDate(0, 0, 1), sessionDay)
	if got != attendance.DateFuture {
		t.Errorf("expected future, got %s", got)
	}
}

func TestClassifyActivityDate_Yesterday_IsPast(t *testing.T) {
	got := attendance.ClassifyActivityDate(sessionDay.AddDate(0, 0, -1), sessionDay)
	if got != attendance.DatePast {
		t.Errorf("expected past, got %s", got)
	}
}

func TestClassifyActivityDate_ZeroDate_IsUnknown(t *testing.T) {
	got := attendance.ClassifyActivityDate(time.Time{}, sessionDay)
	if got != attendance.DateUnknown {
		t.Errorf("expected unknown, got %s", got)
	}
}

// =============================================================================
// TIME-BASED CLASSIFICATION TESTS
// =============================================================================

func TestResolveStatus_BeforeLateThreshold_Present(t *testing.T) {
	// GIVEN: Session 09:00-11:00, late after 09:15
	// WHEN: Arriving at 09:14
	// THEN: Present

	if got := resolveAt(t, morningSession(), at(9, 14)); got != attendance.StatusPresent {
		t.Errorf("expected present, got %s", got)
	}
}

func TestResolveStatus_ExactlyAtLateThreshold_StillPresent(t *testing.T) {
	// GIVEN: Late threshold 09:15
	// WHEN: Arriving at exactly 09:15:00
	// THEN: Present - the boundary itself is on time

	if got := resolveAt(t, morningSession(), at(9, 15)); got != attendance.StatusPresent {
		t.Errorf("expected present, got %s", got)
	}
}

func TestResolveStatus_AfterLateThreshold_Late(t *testing.T) {
	if got := resolveAt(t, morningSession(), at(9, 16)); got != attendance.StatusLate {
		t.Errorf("expected late, got %s", got)
	}
}

func TestResolveStatus_ExactlyAtEnd_StillLate(t *testing.T) {
	// GIVEN: Window closes at 11:00
	// WHEN: Arriving at exactly 11:00:00
	// THEN: Late, not Absent - the end boundary is inside the window

	if got := resolveAt(t, morningSession(), at(11, 0)); got != attendance.StatusLate {
		t.Errorf("expected late, got %s", got)
	}
}

func TestResolveStatus_AfterEnd_Absent(t *testing.T) {
	if got := resolveAt(t, morningSession(), at(11, 1)); got != attendance.StatusAbsent {
		t.Errorf("expected absent, got %s", got)
	}
}

func TestResolveStatus_LateOffset_UsedWhenNoExplicitThreshold(t *testing.T) {
	// GIVEN: Start 09:00, no explicit threshold, 10 minute grace offset
	// WHEN: Arriving at 09:10 and 09:11
	// THEN: Present at the cutoff, Late past it

	offset := 10
	s := attendance.Schedule{
		Date:              sessionDay,
		StartTime:         tod("09:00"),
		EndTime:           tod("11:00"),
		LateMinutesOffset: &offset,
	}

	if got := resolveAt(t, s, at(9, 10)); got != attendance.StatusPresent {
		t.Errorf("expected present at cutoff, got %s", got)
	}
	if got := resolveAt(t, s, at(9, 11)); got != attendance.StatusLate {
		t.Errorf("expected late past cutoff, got %s", got)
	}
}

func TestResolveStatus_ExplicitThreshold_WinsOverOffset(t *testing.T) {
	// GIVEN: Explicit 09:30 threshold AND a 5 minute offset
	// WHEN: Arriving at 09:20
	// THEN: Present - the explicit threshold governs

	offset := 5
	s := morningSession()
	s.LateThreshold = tod("09:30")
	s.LateMinutesOffset = &offset

	if got := resolveAt(t, s, at(9, 20)); got != attendance.StatusPresent {
		t.Errorf("expected present, got %s", got)
	}
}

func TestResolveStatus_ArrivalDateComponentIgnored(t *testing.T) {
	// GIVEN: A client clock that logged the arrival with yesterday's
	//        date component but a valid session-day classification
	// WHEN: Resolving against the 09:00-11:00 schedule
	// THEN: Thresholds anchor on the activity's own date, so an
	//       arrival instant before the anchored end is not absent

	arrival := time.Date(2026, time.March, 9, 9, 5, 0, 0, time.UTC)
	if got := resolveAt(t, morningSession(), arrival); got != attendance.StatusPresent {
		t.Errorf("expected present, got %s", got)
	}
}

// =============================================================================
// PAST / FUTURE / INPUT TESTS
// =============================================================================

func TestResolveStatus_PastActivity_AlwaysAbsent(t *testing.T) {
	// GIVEN: An activity dated before today
	// WHEN: Resolving an arrival that would otherwise be Present
	// THEN: Absent - the lapsed date wins over any threshold

	status, err := attendance.ResolveStatus(morningSession(), at(9, 0), attendance.DatePast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != attendance.StatusAbsent {
		t.Errorf("expected absent, got %s", status)
	}
}

func TestResolveStatus_FutureActivity_Errors(t *testing.T) {
	_, err := attendance.ResolveStatus(morningSession(), at(9, 0), attendance.DateFuture)
	if !errors.Is(err, attendance.ErrFutureActivity) {
		t.Errorf("expected ErrFutureActivity, got %v", err)
	}
}

func TestResolveStatus_ZeroArrival_ValidationError(t *testing.T) {
	_, err := attendance.ResolveStatus(morningSession(), time.Time{}, attendance.DateValid)
	var vErr *attendance.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !attendance.IsClientError(err) {
		t.Error("validation errors should classify as client errors")
	}
}

// =============================================================================
// FALLBACK TESTS
// =============================================================================

func TestResolveStatus_NoSchedule_AlwaysPresent(t *testing.T) {
	// GIVEN: An activity with no timing metadata at all
	// WHEN: Arriving at any hour
	// THEN: Present - missing schedule is permissive, not an error

	s := attendance.Schedule{Date: sessionDay}
	for _, hour := range []int{0, 9, 23} {
		if got := resolveAt(t, s, at(hour, 0)); got != attendance.StatusPresent {
			t.Errorf("hour %d: expected present, got %s", hour, got)
		}
	}
}

func TestResolveStatus_NoEndTime_NeverAbsent(t *testing.T) {
	// GIVEN: Start and late threshold, but no end time
	// WHEN: Arriving far past the late threshold
	// THEN: Late at most, never Absent

	s := morningSession()
	s.EndTime = nil

	if got := resolveAt(t, s, at(15, 0)); got != attendance.StatusLate {
		t.Errorf("expected late, got %s", got)
	}
}

func TestResolveStatus_NoStartTime_NeverLate(t *testing.T) {
	// GIVEN: End time only
	// WHEN: Arriving within the window
	// THEN: Present - the late check needs a start time

	s := attendance.Schedule{Date: sessionDay, EndTime: tod("11:00")}

	if got := resolveAt(t, s, at(10, 59)); got != attendance.StatusPresent {
		t.Errorf("expected present, got %s", got)
	}
	if got := resolveAt(t, s, at(11, 1)); got != attendance.StatusAbsent {
		t.Errorf("expected absent past end, got %s", got)
	}
}

func TestResolveStatus_UnknownDate_AlwaysPresent(t *testing.T) {
	// GIVEN: A schedule with no date but a full set of thresholds
	// WHEN: Resolving a present-day arrival, including one far past the
	//       end-of-window time
	// THEN: Present - without a date the thresholds have no instants to
	//       anchor on, so a real arrival must not be compared against
	//       the zero date (which would mark everyone absent)

	s := morningSession()
	s.Date = time.Time{}

	arrivals := []time.Time{
		time.Date(2026, time.August, 30, 9, 5, 0, 0, time.UTC),
		time.Date(2026, time.August, 30, 9, 30, 0, 0, time.UTC),
		time.Date(2026, time.August, 30, 14, 0, 0, 0, time.UTC),
	}
	for _, arrival := range arrivals {
		status, err := attendance.ResolveStatus(s, arrival, attendance.DateUnknown)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status != attendance.StatusPresent {
			t.Errorf("arrival %s: expected present, got %s", arrival.Format("15:04"), status)
		}
	}
}

func TestResolveStatus_UnrecognizedDateClass_Rejected(t *testing.T) {
	// GIVEN: A date class that never came out of ClassifyActivityDate
	// WHEN: Resolving an otherwise valid arrival
	// THEN: A validation error, not a guessed status

	for _, class := range []attendance.DateClass{"", "someday"} {
		_, err := attendance.ResolveStatus(morningSession(), at(9, 10), class)
		if err == nil {
			t.Fatalf("date class %q: expected error, got nil", class)
		}
		if !attendance.IsClientError(err) {
			t.Errorf("date class %q: expected a client error, got %v", class, err)
		}
	}
}

// =============================================================================
// DETERMINISM TESTS
// =============================================================================

func TestResolveStatus_Deterministic(t *testing.T) {
	// GIVEN: A fixed schedule and arrival
	// WHEN: Resolving repeatedly
	// THEN: Every run yields the identical status

	s := morningSession()
	arrival := at(9, 42)

	first := resolveAt(t, s, arrival)
	for i := 0; i < 10; i++ {
		if got := resolveAt(t, s, arrival); got != first {
			t.Fatalf("run %d: got %s, want %s", i, got, first)
		}
	}
}

func TestResolve_EndToEnd(t *testing.T) {
	// GIVEN: The canonical session on its own day
	// WHEN: Running the combined date + time resolution
	// THEN: 09:14 present, 09:16 late, 11:01 absent

	cases := []struct {
		arrival time.Time
		want    attendance.Status
	}{
		{at(9, 14), attendance.StatusPresent},
		{at(9, 16), attendance.StatusLate},
		{at(11, 1), attendance.StatusAbsent},
	}
	for _, c := range cases {
		got, err := attendance.Resolve(morningSession(), c.arrival, sessionDay)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != c.want {
			t.Errorf("arrival %s: got %s, want %s", c.arrival.Format("15:04"), got, c.want)
		}
	}
}
