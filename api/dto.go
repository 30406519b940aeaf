/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers (and the setting factory), not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/setting.go: SettingJSON and CountsJSON
*/
package api

import (
	"time"

	"github.com/sahabat/attendance-engine/attendance"
	"github.com/sahabat/attendance-engine/factory"
	"github.com/sahabat/attendance-engine/honor"
	"github.com/sahabat/attendance-engine/store/sqlite"
)

// =============================================================================
// ATTENDANCE
// =============================================================================

// ScanRequest is a QR check-in submission.
type ScanRequest struct {
	ActivityID  string `json:"activity_id"`
	PersonID    string `json:"person_id"`
	ArrivalTime string `json:"arrival_time,omitempty"` // RFC3339; defaults to now
}

// ManualEntryRequest is a manual check-in. Unlike the scan path it
// requires a non-empty verification note.
type ManualEntryRequest struct {
	ActivityID  string `json:"activity_id"`
	PersonID    string `json:"person_id"`
	ArrivalTime string `json:"arrival_time,omitempty"`
	Note        string `json:"note"`
}

// RecordDTO represents an attendance record in API responses.
type RecordDTO struct {
	ID           string `json:"id"`
	ActivityID   string `json:"activity_id"`
	PersonID     string `json:"person_id"`
	PersonType   string `json:"person_type"`
	ArrivalTime  string `json:"arrival_time"`
	Status       string `json:"status"`
	Verification string `json:"verification_status"`
	Note         string `json:"note,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

func recordDTO(r attendance.Record) RecordDTO {
	dto := RecordDTO{
		ID:           r.ID,
		ActivityID:   r.ActivityID,
		PersonID:     r.PersonID,
		PersonType:   string(r.PersonType),
		ArrivalTime:  r.ArrivalTime.Format(time.RFC3339),
		Status:       string(r.Status),
		Verification: string(r.Verification),
		Note:         r.Note,
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// ACTIVITIES / PERSONS
// =============================================================================

// ActivityDTO represents an activity occurrence.
type ActivityDTO struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	TutorID           string   `json:"tutor_id"`
	Date              string   `json:"date,omitempty"` // YYYY-MM-DD
	StartTime         string   `json:"start_time,omitempty"`
	EndTime           string   `json:"end_time,omitempty"`
	LateThreshold     string   `json:"late_threshold,omitempty"`
	LateMinutesOffset *int     `json:"late_minutes_offset,omitempty"`
	Participants      []string `json:"participants,omitempty"`
}

// CreateActivityRequest creates an activity with its schedule.
type CreateActivityRequest struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name"`
	TutorID           string   `json:"tutor_id"`
	Date              string   `json:"date,omitempty"`
	StartTime         string   `json:"start_time,omitempty"`
	EndTime           string   `json:"end_time,omitempty"`
	LateThreshold     string   `json:"late_threshold,omitempty"`
	LateMinutesOffset *int     `json:"late_minutes_offset,omitempty"`
	Participants      []string `json:"participants,omitempty"`
}

func activityDTO(a sqlite.Activity, participants []string) ActivityDTO {
	dto := ActivityDTO{
		ID:                a.ID,
		Name:              a.Name,
		TutorID:           a.TutorID,
		LateMinutesOffset: a.LateMinutesOffset,
		Participants:      participants,
	}
	if !a.Date.IsZero() {
		dto.Date = a.Date.Format("2006-01-02")
	}
	if a.StartTime != nil {
		dto.StartTime = a.StartTime.String()
	}
	if a.EndTime != nil {
		dto.EndTime = a.EndTime.String()
	}
	if a.LateThreshold != nil {
		dto.LateThreshold = a.LateThreshold.String()
	}
	return dto
}

// PersonDTO represents a student or tutor.
type PersonDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
}

// CreatePersonRequest creates a person.
type CreatePersonRequest struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
}

func personDTO(p sqlite.Person) PersonDTO {
	return PersonDTO{ID: p.ID, Name: p.Name, Type: string(p.Type), Category: string(p.Category)}
}

// =============================================================================
// PAYMENT SETTINGS / HONOR
// =============================================================================

// SettingDTO represents a stored payment setting.
type SettingDTO struct {
	ID        string              `json:"id"`
	Active    bool                `json:"active"`
	Config    factory.SettingJSON `json:"config"`
	CreatedAt string              `json:"created_at,omitempty"`
}

// CreateSettingRequest stores a payment setting document.
type CreateSettingRequest struct {
	ID       string              `json:"id,omitempty"`
	Config   factory.SettingJSON `json:"config"`
	Activate bool                `json:"activate,omitempty"`
}

// PreviewRequest asks for a hypothetical honor calculation. When
// SettingID is empty the active setting is used.
type PreviewRequest struct {
	SettingID string             `json:"setting_id,omitempty"`
	Counts    factory.CountsJSON `json:"counts"`
}

// FinalizeRequest turns a tutor's real attendance for a period into a
// persisted honor record.
type FinalizeRequest struct {
	TutorID string `json:"tutor_id"`
	Period  string `json:"period"` // YYYY-MM
}

// ComponentDTO is one line of a breakdown.
type ComponentDTO struct {
	Key             string `json:"key"`
	Count           int    `json:"count"`
	Rate            string `json:"rate"`
	Amount          string `json:"amount"`
	AmountFormatted string `json:"amount_formatted"`
}

// BreakdownDTO is a full calculation result.
type BreakdownDTO struct {
	System         string         `json:"system"`
	Components     []ComponentDTO `json:"components"`
	Total          string         `json:"total"`
	TotalFormatted string         `json:"total_formatted"`
}

func breakdownDTO(b honor.Breakdown) BreakdownDTO {
	dto := BreakdownDTO{
		System:         string(b.System),
		Total:          b.Total.String(),
		TotalFormatted: b.Total.Format(),
	}
	for _, c := range b.Components {
		dto.Components = append(dto.Components, ComponentDTO{
			Key:             string(c.Key),
			Count:           c.Count,
			Rate:            c.Rate.String(),
			Amount:          c.Amount.String(),
			AmountFormatted: c.Amount.Format(),
		})
	}
	return dto
}

// HonorRecordDTO represents a finalized honor record.
type HonorRecordDTO struct {
	ID             string       `json:"id"`
	TutorID        string       `json:"tutor_id"`
	Period         string       `json:"period"`
	System         string       `json:"system"`
	Breakdown      BreakdownDTO `json:"breakdown"`
	Total          string       `json:"total"`
	TotalFormatted string       `json:"total_formatted"`
	CreatedAt      string       `json:"created_at,omitempty"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
