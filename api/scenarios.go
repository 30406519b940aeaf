/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates persons, activities,
	payment settings, and attendance records that demonstrate specific
	features.

AVAILABLE SCENARIOS:

	shelter-day:    Today's tutoring session, ready for live check-ins
	honor-systems:  One stored setting per payment system
	month-end:      A finished month of verified attendance, ready to finalize

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create persons (tutor + categorized students)
 3. Create activities with schedules and participants
 4. Store and activate a payment setting
 5. Optionally add attendance records

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "shelter-day"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Check-in and honor handlers the scenarios feed
  - factory/setting.go: Setting JSON presets
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sahabat/attendance-engine/attendance"
	"github.com/sahabat/attendance-engine/factory"
	"github.com/sahabat/attendance-engine/honor"
	"github.com/sahabat/attendance-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "shelter-day",
		Name:        "Shelter Day",
		Description: "Today's tutoring session with registered students, ready for live check-ins",
		Category:    "attendance",
	},
	{
		ID:          "honor-systems",
		Name:        "Honor Systems",
		Description: "One stored payment setting per system, for previewing calculations",
		Category:    "honor",
	},
	{
		ID:          "month-end",
		Name:        "Month End",
		Description: "A finished month of verified attendance, ready for honor finalization",
		Category:    "honor",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:   h.currentScenario,
		Name: h.currentScenario,
	})
}

// LoadScenario resets the database and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = "" // Clear current scenario on reset

	var err error
	switch req.ScenarioID {
	case "shelter-day":
		err = h.loadShelterDayScenario(ctx)
	case "honor-systems":
		err = h.loadHonorSystemsScenario(ctx)
	case "month-end":
		err = h.loadMonthEndScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]any{"status": "loaded", "scenario_id": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadShelterDayScenario seeds today's session: one tutor, four students
// across all categories, an activity running 09:00-11:00 with a 09:15
// late threshold, and an active per-category setting. Check-ins are
// left to the live demo.
func (h *Handler) loadShelterDayScenario(ctx context.Context) error {
	tutor := sqlite.Person{ID: "tutor-ibu-sari", Name: "Ibu Sari", Type: attendance.PersonTutor}
	students := []sqlite.Person{
		{ID: "student-andi", Name: "Andi", Type: attendance.PersonStudent, Category: honor.CategoryCPB},
		{ID: "student-budi", Name: "Budi", Type: attendance.PersonStudent, Category: honor.CategoryCPB},
		{ID: "student-citra", Name: "Citra", Type: attendance.PersonStudent, Category: honor.CategoryPB},
		{ID: "student-dewi", Name: "Dewi", Type: attendance.PersonStudent, Category: honor.CategoryNPB},
	}

	if err := h.Store.SavePerson(ctx, tutor); err != nil {
		return err
	}
	for _, s := range students {
		if err := h.Store.SavePerson(ctx, s); err != nil {
			return err
		}
	}

	start := attendance.MustTimeOfDay("09:00")
	late := attendance.MustTimeOfDay("09:15")
	end := attendance.MustTimeOfDay("11:00")
	activity := sqlite.Activity{
		ID:            "activity-morning-tutoring",
		Name:          "Morning Tutoring",
		TutorID:       tutor.ID,
		Date:          attendance.DateOnly(time.Now()),
		StartTime:     &start,
		LateThreshold: &late,
		EndTime:       &end,
	}
	if err := h.Store.SaveActivity(ctx, activity); err != nil {
		return err
	}

	participants := append([]sqlite.Person{tutor}, students...)
	for _, p := range participants {
		if err := h.Store.AddParticipant(ctx, activity.ID, p.ID); err != nil {
			return err
		}
	}

	setting := sqlite.SettingRecord{
		ID:         "setting-per-category",
		ConfigJSON: factory.PerStudentCategoryJSON(10000, 6000, 3000),
	}
	if err := h.Store.SaveSetting(ctx, setting); err != nil {
		return err
	}
	return h.Store.ActivateSetting(ctx, setting.ID)
}

// loadHonorSystemsScenario stores one setting per payment system so
// every calculation shape can be previewed side by side.
func (h *Handler) loadHonorSystemsScenario(ctx context.Context) error {
	settings := []sqlite.SettingRecord{
		{ID: "setting-flat-monthly", ConfigJSON: factory.FlatMonthlyJSON(1500000)},
		{ID: "setting-per-session", ConfigJSON: factory.PerSessionJSON(100000)},
		{ID: "setting-per-category", ConfigJSON: factory.PerStudentCategoryJSON(10000, 6000, 3000)},
		{ID: "setting-session-per-category", ConfigJSON: factory.SessionPerStudentCategoryJSON(50000, 10000, 6000, 3000)},
	}
	for _, s := range settings {
		if err := h.Store.SaveSetting(ctx, s); err != nil {
			return err
		}
	}
	return h.Store.ActivateSetting(ctx, "setting-flat-monthly")
}

// loadMonthEndScenario seeds the previous calendar month with verified
// attendance for one tutor, so POST /api/honor/finalize has real data
// to aggregate.
func (h *Handler) loadMonthEndScenario(ctx context.Context) error {
	tutor := sqlite.Person{ID: "tutor-pak-budi", Name: "Pak Budi", Type: attendance.PersonTutor}
	students := []sqlite.Person{
		{ID: "student-eka", Name: "Eka", Type: attendance.PersonStudent, Category: honor.CategoryCPB},
		{ID: "student-fajar", Name: "Fajar", Type: attendance.PersonStudent, Category: honor.CategoryPB},
		{ID: "student-gita", Name: "Gita", Type: attendance.PersonStudent, Category: honor.CategoryNPB},
	}

	if err := h.Store.SavePerson(ctx, tutor); err != nil {
		return err
	}
	for _, s := range students {
		if err := h.Store.SavePerson(ctx, s); err != nil {
			return err
		}
	}

	start := attendance.MustTimeOfDay("09:00")
	end := attendance.MustTimeOfDay("11:00")
	monthStart := attendance.DateOnly(time.Now()).AddDate(0, -1, 0)
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, monthStart.Location())

	// Eight weekly-ish sessions across the month. The tutor attends all
	// of them; students rotate so the category counts differ.
	for i := 0; i < 8; i++ {
		date := monthStart.AddDate(0, 0, i*3)
		activity := sqlite.Activity{
			ID:        fmt.Sprintf("activity-past-%02d", i+1),
			Name:      fmt.Sprintf("Tutoring Session %d", i+1),
			TutorID:   tutor.ID,
			Date:      date,
			StartTime: &start,
			EndTime:   &end,
			Swept:     true,
		}
		if err := h.Store.SaveActivity(ctx, activity); err != nil {
			return err
		}

		attendees := []sqlite.Person{tutor}
		attendees = append(attendees, students[:1+i%len(students)]...)
		for _, p := range attendees {
			if err := h.Store.AddParticipant(ctx, activity.ID, p.ID); err != nil {
				return err
			}
			record := attendance.Record{
				ID:           fmt.Sprintf("record-%s-%s", activity.ID, p.ID),
				ActivityID:   activity.ID,
				PersonID:     p.ID,
				PersonType:   p.Type,
				ArrivalTime:  start.On(date),
				Status:       attendance.StatusPresent,
				Verification: attendance.VerificationVerified,
			}
			if err := h.Store.SaveRecord(ctx, record); err != nil {
				return err
			}
		}
	}

	setting := sqlite.SettingRecord{
		ID:         "setting-session-per-category",
		ConfigJSON: factory.SessionPerStudentCategoryJSON(50000, 10000, 6000, 3000),
	}
	if err := h.Store.SaveSetting(ctx, setting); err != nil {
		return err
	}
	return h.Store.ActivateSetting(ctx, setting.ID)
}
