/*
handlers.go - HTTP API handlers for the attendance and honor service

PURPOSE:
  Exposes the rule engines via REST API. Handles HTTP request/response,
  JSON serialization, and delegates classification and calculation to
  the attendance and honor packages.

ENDPOINTS:
  Check-in:
    POST   /api/scan                     QR check-in
    POST   /api/manual                   Manual check-in (note required)

  Attendance:
    GET    /api/attendance/{id}          Get one record
    POST   /api/attendance/{id}/verify   Reviewer verifies a record
    POST   /api/attendance/{id}/reject   Reviewer rejects a record

  Activities / persons:
    GET/POST /api/activities             List / create
    GET    /api/activities/{id}          Get with participants
    GET    /api/activities/{id}/attendance
    GET/POST /api/persons

  Payment settings:
    GET/POST /api/settings               List / create
    GET    /api/settings/active
    POST   /api/settings/{id}/activate
    GET    /api/systems                  Display metadata for all systems

  Honor:
    POST   /api/honor/preview            Hypothetical calculation
    POST   /api/honor/finalize           Aggregate + persist for a period
    GET    /api/honor/records

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input / load referenced rows
  3. Call domain logic (resolver, calculator)
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, configuration problems
  - 404: Resource not found
  - 409: Conflict (duplicate check-in, future activity, non-pending record)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sahabat/attendance-engine/attendance"
	"github.com/sahabat/attendance-engine/factory"
	"github.com/sahabat/attendance-engine/honor"
	"github.com/sahabat/attendance-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store          *sqlite.Store
	SettingFactory *factory.SettingFactory

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:          store,
		SettingFactory: factory.NewSettingFactory(),
	}
}

// =============================================================================
// CHECK-IN HANDLERS
// =============================================================================

// Scan records a QR check-in.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.checkIn(w, r, req.ActivityID, req.PersonID, req.ArrivalTime, "")
}

// ManualEntry records a manual check-in. A non-empty verification note
// is required before submission is accepted.
func (h *Handler) ManualEntry(w http.ResponseWriter, r *http.Request) {
	var req ManualEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Note == "" {
		writeError(w, http.StatusBadRequest, "Verification note is required for manual entry", nil)
		return
	}
	h.checkIn(w, r, req.ActivityID, req.PersonID, req.ArrivalTime, req.Note)
}

// checkIn is the shared path behind scan and manual entry, so both
// produce identical classifications for the same inputs.
func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request, activityID, personID, arrivalStr, note string) {
	ctx := r.Context()

	activity, err := h.Store.GetActivity(ctx, activityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get activity", err)
		return
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "Activity not found", nil)
		return
	}

	person, err := h.Store.GetPerson(ctx, personID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get person", err)
		return
	}
	if person == nil {
		writeError(w, http.StatusNotFound, "Person not found", nil)
		return
	}

	now := time.Now()
	arrival := now
	if arrivalStr != "" {
		arrival, err = time.Parse(time.RFC3339, arrivalStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid arrival_time (use RFC3339)", err)
			return
		}
	}

	// Date pre-check: future activities are blocked here, before the
	// resolver is ever consulted.
	dateClass := attendance.ClassifyActivityDate(activity.Date, now)
	if dateClass == attendance.DateFuture {
		writeError(w, http.StatusConflict, "Activity has not started yet", nil)
		return
	}

	status, err := attendance.ResolveStatus(activity.Schedule(), arrival, dateClass)
	if err != nil {
		if attendance.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Cannot resolve attendance status", err)
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to resolve attendance status", err)
		}
		return
	}

	record := attendance.Record{
		ID:           uuid.NewString(),
		ActivityID:   activity.ID,
		PersonID:     person.ID,
		PersonType:   person.Type,
		ArrivalTime:  arrival,
		Status:       status,
		Verification: attendance.VerificationPending,
		Note:         note,
	}

	if err := h.Store.SaveRecord(ctx, record); err != nil {
		if errors.Is(err, sqlite.ErrDuplicateCheckIn) {
			writeError(w, http.StatusConflict, "Attendance already recorded", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save attendance record", err)
		return
	}

	writeJSON(w, http.StatusCreated, recordDTO(record))
}

// =============================================================================
// ATTENDANCE RECORD HANDLERS
// =============================================================================

// GetRecord returns a single attendance record.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.Store.GetRecord(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get record", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Record not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, recordDTO(*record))
}

// VerifyRecord marks a pending record as verified.
func (h *Handler) VerifyRecord(w http.ResponseWriter, r *http.Request) {
	h.setVerification(w, r, attendance.VerificationVerified)
}

// RejectRecord marks a pending record as rejected.
func (h *Handler) RejectRecord(w http.ResponseWriter, r *http.Request) {
	h.setVerification(w, r, attendance.VerificationRejected)
}

func (h *Handler) setVerification(w http.ResponseWriter, r *http.Request, status attendance.VerificationStatus) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	record, err := h.Store.GetRecord(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get record", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Record not found", nil)
		return
	}
	if record.Verification != attendance.VerificationPending {
		writeError(w, http.StatusConflict, "Record is not pending", nil)
		return
	}

	if err := h.Store.SetVerification(ctx, id, status); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update verification", err)
		return
	}

	record.Verification = status
	writeJSON(w, http.StatusOK, recordDTO(*record))
}

// =============================================================================
// ACTIVITY HANDLERS
// =============================================================================

// ListActivities returns all activities.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.Store.ListActivities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activities", err)
		return
	}

	dtos := make([]ActivityDTO, len(activities))
	for i, a := range activities {
		dtos[i] = activityDTO(a, nil)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetActivity returns one activity with its participant list.
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	activity, err := h.Store.GetActivity(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get activity", err)
		return
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "Activity not found", nil)
		return
	}

	participants, err := h.Store.ListParticipants(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list participants", err)
		return
	}

	writeJSON(w, http.StatusOK, activityDTO(*activity, participants))
}

// CreateActivity creates an activity and registers its participants.
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.TutorID == "" {
		writeError(w, http.StatusBadRequest, "name and tutor_id are required", nil)
		return
	}

	activity := sqlite.Activity{
		ID:                req.ID,
		Name:              req.Name,
		TutorID:           req.TutorID,
		LateMinutesOffset: req.LateMinutesOffset,
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}

	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		activity.Date = date
	}

	fields := []struct {
		name  string
		value string
		dst   **attendance.TimeOfDay
	}{
		{"start_time", req.StartTime, &activity.StartTime},
		{"end_time", req.EndTime, &activity.EndTime},
		{"late_threshold", req.LateThreshold, &activity.LateThreshold},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		tod, err := attendance.ParseTimeOfDay(f.value)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s (use HH:MM)", f.name), err)
			return
		}
		*f.dst = &tod
	}

	if err := h.Store.SaveActivity(ctx, activity); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create activity", err)
		return
	}
	for _, personID := range req.Participants {
		if err := h.Store.AddParticipant(ctx, activity.ID, personID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to register participant", err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, activityDTO(activity, req.Participants))
}

// ListActivityAttendance returns the attendance records for an activity.
func (h *Handler) ListActivityAttendance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	records, err := h.Store.ListRecordsByActivity(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attendance", err)
		return
	}

	dtos := make([]RecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = recordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PERSON HANDLERS
// =============================================================================

// ListPersons returns all persons.
func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.Store.ListPersons(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list persons", err)
		return
	}

	dtos := make([]PersonDTO, len(persons))
	for i, p := range persons {
		dtos[i] = personDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePerson creates a student or tutor.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	personType := attendance.PersonType(req.Type)
	if !personType.Valid() {
		writeError(w, http.StatusBadRequest, "type must be 'student' or 'tutor'", nil)
		return
	}
	category := honor.Category(req.Category)
	if personType == attendance.PersonStudent && !category.Valid() {
		writeError(w, http.StatusBadRequest, "students require a category (cpb, pb, npb)", nil)
		return
	}
	if personType == attendance.PersonTutor {
		category = ""
	}

	person := sqlite.Person{ID: req.ID, Name: req.Name, Type: personType, Category: category}
	if person.ID == "" {
		person.ID = uuid.NewString()
	}

	if err := h.Store.SavePerson(r.Context(), person); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create person", err)
		return
	}
	writeJSON(w, http.StatusCreated, personDTO(person))
}

// =============================================================================
// PAYMENT SETTING HANDLERS
// =============================================================================

// ListSettings returns all stored payment settings.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.ListSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settings", err)
		return
	}

	dtos := make([]SettingDTO, 0, len(settings))
	for _, rec := range settings {
		dto, err := settingDTOFromRecord(rec)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Corrupt setting document", err)
			return
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSetting stores a payment setting document, optionally
// activating it immediately.
func (h *Handler) CreateSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Validate the document up front; reserved systems are storable,
	// malformed rates are not.
	if _, err := h.SettingFactory.FromJSON(req.Config); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid setting config", err)
		return
	}

	configJSON, err := json.Marshal(req.Config)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode setting", err)
		return
	}

	rec := sqlite.SettingRecord{ID: req.ID, ConfigJSON: string(configJSON)}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if err := h.Store.SaveSetting(ctx, rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save setting", err)
		return
	}
	if req.Activate {
		if err := h.Store.ActivateSetting(ctx, rec.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to activate setting", err)
			return
		}
		rec.Active = true
	}

	dto, _ := settingDTOFromRecord(rec)
	writeJSON(w, http.StatusCreated, dto)
}

// GetActiveSetting returns the single active setting.
func (h *Handler) GetActiveSetting(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetActiveSetting(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get active setting", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "No active payment setting configured", nil)
		return
	}

	dto, err := settingDTOFromRecord(*rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Corrupt setting document", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// ActivateSetting makes a stored setting the active one.
func (h *Handler) ActivateSetting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.ActivateSetting(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Setting not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to activate setting", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "activated", "id": id})
}

// ListSystems returns display metadata for every known payment system.
func (h *Handler) ListSystems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, honor.Systems())
}

func settingDTOFromRecord(rec sqlite.SettingRecord) (SettingDTO, error) {
	var config factory.SettingJSON
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &config); err != nil {
		return SettingDTO{}, err
	}
	return SettingDTO{
		ID:        rec.ID,
		Active:    rec.Active,
		Config:    config,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
	}, nil
}

// =============================================================================
// HONOR HANDLERS
// =============================================================================

// PreviewHonor runs a hypothetical calculation against the active (or a
// named) setting. Nothing is persisted.
func (h *Handler) PreviewHonor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	setting, ok := h.loadSetting(ctx, w, req.SettingID)
	if !ok {
		return
	}

	counts, err := h.SettingFactory.ParseCounts(req.Counts)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid usage counts", err)
		return
	}

	breakdown, err := honor.Calculate(setting, counts)
	if err != nil {
		if honor.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Cannot calculate honor", err)
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to calculate honor", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, breakdownDTO(breakdown))
}

// FinalizeHonor aggregates a tutor's verified attendance for a period,
// calculates with the active setting, and persists the honor record.
// Re-finalizing the same tutor+period overwrites the previous record -
// the calculator is deterministic, so this is safe.
func (h *Handler) FinalizeHonor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tutor, err := h.Store.GetPerson(ctx, req.TutorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get tutor", err)
		return
	}
	if tutor == nil || tutor.Type != attendance.PersonTutor {
		writeError(w, http.StatusNotFound, "Tutor not found", nil)
		return
	}

	periodStart, err := time.Parse("2006-01", req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}
	periodEnd := periodStart.AddDate(0, 1, -1)

	setting, ok := h.loadSetting(ctx, w, "")
	if !ok {
		return
	}

	counts, err := h.Store.CountUsage(ctx, req.TutorID, periodStart, periodEnd)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to aggregate attendance", err)
		return
	}

	breakdown, err := honor.Calculate(setting, counts)
	if err != nil {
		if honor.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Cannot calculate honor", err)
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to calculate honor", err)
		}
		return
	}

	dto := breakdownDTO(breakdown)
	breakdownJSON, err := json.Marshal(dto)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode breakdown", err)
		return
	}

	rec := sqlite.HonorRecord{
		ID:            uuid.NewString(),
		TutorID:       req.TutorID,
		Period:        req.Period,
		System:        breakdown.System,
		BreakdownJSON: string(breakdownJSON),
		Total:         breakdown.Total,
	}
	if err := h.Store.SaveHonorRecord(ctx, rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save honor record", err)
		return
	}

	writeJSON(w, http.StatusCreated, HonorRecordDTO{
		ID:             rec.ID,
		TutorID:        rec.TutorID,
		Period:         rec.Period,
		System:         string(rec.System),
		Breakdown:      dto,
		Total:          rec.Total.String(),
		TotalFormatted: rec.Total.Format(),
	})
}

// ListHonorRecords returns finalized honor records, optionally filtered
// by tutor.
func (h *Handler) ListHonorRecords(w http.ResponseWriter, r *http.Request) {
	tutorID := r.URL.Query().Get("tutor_id")

	records, err := h.Store.ListHonorRecords(r.Context(), tutorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list honor records", err)
		return
	}

	dtos := make([]HonorRecordDTO, 0, len(records))
	for _, rec := range records {
		var breakdown BreakdownDTO
		if err := json.Unmarshal([]byte(rec.BreakdownJSON), &breakdown); err != nil {
			writeError(w, http.StatusInternalServerError, "Corrupt honor breakdown", err)
			return
		}
		dtos = append(dtos, HonorRecordDTO{
			ID:             rec.ID,
			TutorID:        rec.TutorID,
			Period:         rec.Period,
			System:         string(rec.System),
			Breakdown:      breakdown,
			Total:          rec.Total.String(),
			TotalFormatted: rec.Total.Format(),
			CreatedAt:      rec.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// loadSetting fetches and parses the active (or named) setting. On
// failure it writes the response and returns ok=false.
func (h *Handler) loadSetting(ctx context.Context, w http.ResponseWriter, settingID string) (honor.Setting, bool) {
	var (
		rec *sqlite.SettingRecord
		err error
	)
	if settingID == "" {
		rec, err = h.Store.GetActiveSetting(ctx)
	} else {
		rec, err = h.Store.GetSetting(ctx, settingID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payment setting", err)
		return honor.Setting{}, false
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Payment setting not configured", nil)
		return honor.Setting{}, false
	}

	setting, err := h.SettingFactory.ParseSetting(rec.ConfigJSON)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Corrupt setting document", err)
		return honor.Setting{}, false
	}
	return setting, true
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
