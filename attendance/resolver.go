/*
resolver.go - Attendance status determination

PURPOSE:
  Maps (Schedule, arrivalTime) to present/late/absent, plus the
  date-validity pre-check both check-in paths run first.

CLASSIFICATION RULES:
  1. Activity dated before today         -> Absent, unconditionally.
     A session that already ended cannot be meaningfully attended late.
  2. Activity dated after today          -> error; scanning must be
     blocked upstream, the resolver never guesses.
  3. Activity today:
     a. arrival strictly after end-of-window     -> Absent
     b. else arrival strictly after late cutoff  -> Late
     c. else                                     -> Present

  Boundaries are strict: an arrival exactly AT the end time or exactly
  AT the late cutoff still counts as on time.

FALLBACKS (not errors):
  - No activity date: always Present. Threshold instants are built from
    the activity's own calendar date, so without one the end-of-window
    and late checks cannot run.
  - No end time: the absent check is skipped.
  - No start time: the late check is skipped.
  - Neither start nor end: always Present unless the date is past.
    Preserved for compatibility with existing imported activities that
    carry no timing metadata.

SEE ALSO:
  - types.go: Schedule and Status definitions
  - api/handlers.go: Scan and manual-entry callers
*/
package attendance

import "time"

// =============================================================================
// DATE CLASSIFICATION
// =============================================================================

// DateClass is the outcome of the date-validity pre-check.
type DateClass string

const (
	// DateFuture: activity is strictly after today. Check-in must be
	// blocked by the caller.
	DateFuture DateClass = "future"

	// DatePast: activity is strictly before today. Any arrival is
	// forced to Absent.
	DatePast DateClass = "past"

	// DateValid: activity is today. Normal time-based classification.
	DateValid DateClass = "valid"

	// DateUnknown: activity date is absent. Callers should treat this
	// permissively (do not block); with no date to anchor thresholds
	// on, resolution falls back to Present.
	DateUnknown DateClass = "unknown"
)

// ClassifyActivityDate compares the activity's calendar date to today's,
// ignoring time of day on both sides.
func ClassifyActivityDate(activityDate, today time.Time) DateClass {
	if activityDate.IsZero() {
		return DateUnknown
	}
	a := DateOnly(activityDate)
	t := DateOnly(today)
	switch {
	case a.After(t):
		return DateFuture
	case a.Before(t):
		return DatePast
	default:
		return DateValid
	}
}

// =============================================================================
// STATUS RESOLUTION
// =============================================================================

// ResolveStatus classifies an arrival against the activity schedule.
// Re-computing from the same inputs always yields the same status, which
// is what makes idempotent re-application of check-ins safe.
func ResolveStatus(schedule Schedule, arrivalTime time.Time, dateClass DateClass) (Status, error) {
	if arrivalTime.IsZero() {
		return "", &ValidationError{Field: "arrivalTime", Message: "arrival time is required"}
	}

	switch dateClass {
	case DatePast:
		return StatusAbsent, nil
	case DateFuture:
		return "", ErrFutureActivity
	case DateUnknown:
		// Without a calendar date there is nothing to anchor the
		// end-of-window and late-cutoff instants on, so the threshold
		// checks below cannot run. Undated activities accept any
		// arrival as on time.
		return StatusPresent, nil
	case DateValid:
		// fall through to time-based classification
	default:
		return "", &ValidationError{Field: "dateClass", Message: "unrecognized date class: " + string(dateClass)}
	}

	// Valid or Unknown: time-based classification. Absolute instants are
	// anchored on the activity's own date so a client clock logging the
	// arrival with a different date component cannot flip the result.
	if schedule.EndTime != nil {
		end := schedule.EndTime.On(schedule.Date)
		if arrivalTime.After(end) {
			return StatusAbsent, nil
		}
	}

	if schedule.StartTime != nil {
		if cutoff, ok := schedule.lateCutoff(); ok {
			if arrivalTime.After(cutoff) {
				return StatusLate, nil
			}
		}
	}

	return StatusPresent, nil
}

// Resolve runs the date pre-check and status resolution in one call.
// Callers that need to block future activities before accepting input
// (the scan flow) should call ClassifyActivityDate themselves first.
func Resolve(schedule Schedule, arrivalTime, today time.Time) (Status, error) {
	return ResolveStatus(schedule, arrivalTime, ClassifyActivityDate(schedule.Date, today))
}
