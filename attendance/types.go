/*
Package attendance implements attendance-status determination for
shelter/tutor activity sessions.

PURPOSE:
  Both check-in paths (QR scan and manual entry) must classify an
  arrival identically: given the activity's schedule and the arrival
  timestamp, the resolver deduces Present, Late, or Absent. The resolver
  is a pure function - no store, no clock, no hidden state - so the scan
  handler, the manual-entry handler, and batch jobs all share one rule.

KEY CONCEPTS IN THIS FILE (types.go):
  - Status: present / late / absent outcome of a check-in
  - VerificationStatus: independent reviewer lifecycle (pending/verified/rejected)
  - Schedule: one activity occurrence (date, start, end, late threshold)
  - Record: one person's outcome for one activity

DESIGN PRINCIPLES:
  1. Determinism: Status is a pure function of (Schedule, arrival, date class)
  2. Cross-midnight safety: absolute instants are built from the
     activity's own date, never the arrival's date component
  3. Strict boundaries: arrival exactly AT a threshold is still on time

SEE ALSO:
  - resolver.go: Date classification and status resolution
  - timeofday.go: TimeOfDay value object
*/
package attendance

import "time"

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

// Valid returns true when the status is a supported value.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent:
		return true
	default:
		return false
	}
}

// VerificationStatus is managed by reviewers, never by the resolver.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	default:
		return false
	}
}

// PersonType distinguishes who is being checked in.
type PersonType string

const (
	PersonStudent PersonType = "student"
	PersonTutor   PersonType = "tutor"
)

func (p PersonType) Valid() bool {
	return p == PersonStudent || p == PersonTutor
}

// =============================================================================
// SCHEDULE - One occurrence of an activity session
// =============================================================================

// Schedule holds the timing metadata for one activity occurrence.
// All time-of-day fields are optional: real activities may legitimately
// lack timing metadata, and the resolver has defined fallbacks for that.
type Schedule struct {
	// Date is the calendar date the activity occurs. Zero means unknown.
	Date time.Time

	StartTime *TimeOfDay
	EndTime   *TimeOfDay

	// LateThreshold is an explicit cutoff clock time. When present it
	// wins over LateMinutesOffset.
	LateThreshold *TimeOfDay

	// LateMinutesOffset is minutes after StartTime before an arrival
	// counts as late. Only consulted when LateThreshold is nil.
	LateMinutesOffset *int
}

// lateCutoff returns the absolute late threshold for the schedule, or
// false when no threshold can be constructed.
func (s Schedule) lateCutoff() (time.Time, bool) {
	if s.LateThreshold != nil {
		return s.LateThreshold.On(s.Date), true
	}
	if s.StartTime != nil && s.LateMinutesOffset != nil {
		return s.StartTime.AddMinutes(*s.LateMinutesOffset).On(s.Date), true
	}
	return time.Time{}, false
}

// =============================================================================
// RECORD - One person's outcome for one activity
// =============================================================================

type Record struct {
	ID           string
	ActivityID   string
	PersonID     string
	PersonType   PersonType
	ArrivalTime  time.Time
	Status       Status
	Verification VerificationStatus

	// Note is the free-text verification note required on manual entry.
	Note string

	CreatedAt time.Time
}
