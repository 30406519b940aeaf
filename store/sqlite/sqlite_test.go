package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahabat/attendance-engine/attendance"
	"github.com/sahabat/attendance-engine/factory"
	"github.com/sahabat/attendance-engine/honor"
	"github.com/sahabat/attendance-engine/money"
	"github.com/sahabat/attendance-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func savePerson(t *testing.T, s *sqlite.Store, id string, pt attendance.PersonType, cat honor.Category) {
	t.Helper()
	err := s.SavePerson(context.Background(), sqlite.Person{
		ID: id, Name: id, Type: pt, Category: cat,
	})
	require.NoError(t, err)
}

func saveActivity(t *testing.T, s *sqlite.Store, id, tutorID string, date time.Time) {
	t.Helper()
	start := attendance.MustTimeOfDay("09:00")
	end := attendance.MustTimeOfDay("11:00")
	err := s.SaveActivity(context.Background(), sqlite.Activity{
		ID: id, Name: id, TutorID: tutorID, Date: date,
		StartTime: &start, EndTime: &end,
	})
	require.NoError(t, err)
}

func record(id, activityID, personID string, pt attendance.PersonType, status attendance.Status, verification attendance.VerificationStatus) attendance.Record {
	return attendance.Record{
		ID:           id,
		ActivityID:   activityID,
		PersonID:     personID,
		PersonType:   pt,
		ArrivalTime:  time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC),
		Status:       status,
		Verification: verification,
	}
}

var march9 = time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)

// =============================================================================
// ACTIVITY ROUND TRIP
// =============================================================================

func TestActivity_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	offset := 15
	start := attendance.MustTimeOfDay("09:00")
	late := attendance.MustTimeOfDay("09:15")
	end := attendance.MustTimeOfDay("11:00")
	in := sqlite.Activity{
		ID:                "act-1",
		Name:              "Morning Tutoring",
		TutorID:           "tutor-1",
		Date:              march9,
		StartTime:         &start,
		LateThreshold:     &late,
		EndTime:           &end,
		LateMinutesOffset: &offset,
	}
	require.NoError(t, store.SaveActivity(ctx, in))

	out, err := store.GetActivity(ctx, "act-1")
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, "Morning Tutoring", out.Name)
	assert.Equal(t, "tutor-1", out.TutorID)
	assert.Equal(t, "2026-03-09", out.Date.Format("2006-01-02"))
	require.NotNil(t, out.StartTime)
	assert.Equal(t, "09:00:00", out.StartTime.String())
	require.NotNil(t, out.LateThreshold)
	assert.Equal(t, "09:15:00", out.LateThreshold.String())
	require.NotNil(t, out.LateMinutesOffset)
	assert.Equal(t, 15, *out.LateMinutesOffset)

	// The schedule projection feeds the resolver directly.
	status, err := attendance.Resolve(out.Schedule(),
		time.Date(2026, time.March, 9, 9, 20, 0, 0, time.UTC), march9)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, status)
}

func TestGetActivity_Missing_ReturnsNil(t *testing.T) {
	store := newTestStore(t)
	out, err := store.GetActivity(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestActivity_NoSchedule_RoundTripsAsNil(t *testing.T) {
	// GIVEN: An imported activity with no timing metadata
	// WHEN: Saving and reloading
	// THEN: All optional fields come back nil, date stays zero

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveActivity(ctx, sqlite.Activity{
		ID: "act-bare", Name: "Imported", TutorID: "tutor-1",
	}))

	out, err := store.GetActivity(ctx, "act-bare")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, out.Date.IsZero())
	assert.Nil(t, out.StartTime)
	assert.Nil(t, out.EndTime)
	assert.Nil(t, out.LateThreshold)
	assert.Nil(t, out.LateMinutesOffset)
}

// =============================================================================
// DUPLICATE CHECK-IN INVARIANT
// =============================================================================

func TestSaveRecord_DuplicateCheckIn_Rejected(t *testing.T) {
	// GIVEN: A student already checked in to an activity
	// WHEN: Saving a second record for the same activity+person
	// THEN: ErrDuplicateCheckIn - the first record wins

	store := newTestStore(t)
	ctx := context.Background()

	savePerson(t, store, "tutor-1", attendance.PersonTutor, "")
	savePerson(t, store, "student-1", attendance.PersonStudent, honor.CategoryCPB)
	saveActivity(t, store, "act-1", "tutor-1", march9)

	first := record("rec-1", "act-1", "student-1", attendance.PersonStudent,
		attendance.StatusPresent, attendance.VerificationPending)
	require.NoError(t, store.SaveRecord(ctx, first))

	second := record("rec-2", "act-1", "student-1", attendance.PersonStudent,
		attendance.StatusLate, attendance.VerificationPending)
	err := store.SaveRecord(ctx, second)
	assert.ErrorIs(t, err, sqlite.ErrDuplicateCheckIn)

	// Same person, different activity: fine.
	saveActivity(t, store, "act-2", "tutor-1", march9.AddDate(0, 0, 1))
	third := record("rec-3", "act-2", "student-1", attendance.PersonStudent,
		attendance.StatusPresent, attendance.VerificationPending)
	assert.NoError(t, store.SaveRecord(ctx, third))
}

func TestSetVerification_UnknownRecord_Errors(t *testing.T) {
	store := newTestStore(t)
	err := store.SetVerification(context.Background(), "nope", attendance.VerificationVerified)
	assert.Error(t, err)
}

// =============================================================================
// UNRECORDED PARTICIPANTS (SWEEPER FEED)
// =============================================================================

func TestListUnrecordedParticipants(t *testing.T) {
	// GIVEN: Three registered participants, one with a record
	// WHEN: Listing unrecorded participants
	// THEN: Only the two without records come back, with their types

	store := newTestStore(t)
	ctx := context.Background()

	savePerson(t, store, "tutor-1", attendance.PersonTutor, "")
	savePerson(t, store, "student-1", attendance.PersonStudent, honor.CategoryCPB)
	savePerson(t, store, "student-2", attendance.PersonStudent, honor.CategoryPB)
	saveActivity(t, store, "act-1", "tutor-1", march9)

	for _, id := range []string{"tutor-1", "student-1", "student-2"} {
		require.NoError(t, store.AddParticipant(ctx, "act-1", id))
	}
	require.NoError(t, store.SaveRecord(ctx,
		record("rec-1", "act-1", "student-1", attendance.PersonStudent,
			attendance.StatusPresent, attendance.VerificationPending)))

	unrecorded, err := store.ListUnrecordedParticipants(ctx, "act-1")
	require.NoError(t, err)
	require.Len(t, unrecorded, 2)
	assert.Equal(t, "student-2", unrecorded[0].ID)
	assert.Equal(t, attendance.PersonStudent, unrecorded[0].Type)
	assert.Equal(t, "tutor-1", unrecorded[1].ID)
	assert.Equal(t, attendance.PersonTutor, unrecorded[1].Type)
}

func TestListSweepable_FiltersByDateAndFlag(t *testing.T) {
	// GIVEN: A past activity, a future activity, and a swept activity
	// WHEN: Listing sweepable activities as of today
	// THEN: Only the past unswept one qualifies

	store := newTestStore(t)
	ctx := context.Background()

	saveActivity(t, store, "act-past", "tutor-1", march9.AddDate(0, 0, -1))
	saveActivity(t, store, "act-future", "tutor-1", march9.AddDate(0, 0, 7))
	saveActivity(t, store, "act-done", "tutor-1", march9.AddDate(0, 0, -2))
	require.NoError(t, store.MarkSwept(ctx, "act-done"))

	sweepable, err := store.ListSweepable(ctx, march9)
	require.NoError(t, err)
	require.Len(t, sweepable, 1)
	assert.Equal(t, "act-past", sweepable[0].ID)
}

// =============================================================================
// USAGE AGGREGATION
// =============================================================================

func TestCountUsage_VerifiedNonAbsentOnly(t *testing.T) {
	// GIVEN: A month of mixed records for one tutor:
	//        - 2 verified tutor sessions, 1 pending, 1 verified absent
	//        - students across categories, some rejected/absent
	// WHEN: Aggregating the period
	// THEN: Only verified non-absent records count; students are
	//       distinct per category

	store := newTestStore(t)
	ctx := context.Background()

	savePerson(t, store, "tutor-1", attendance.PersonTutor, "")
	savePerson(t, store, "cpb-1", attendance.PersonStudent, honor.CategoryCPB)
	savePerson(t, store, "cpb-2", attendance.PersonStudent, honor.CategoryCPB)
	savePerson(t, store, "pb-1", attendance.PersonStudent, honor.CategoryPB)
	savePerson(t, store, "npb-1", attendance.PersonStudent, honor.CategoryNPB)

	from := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)

	saveActivity(t, store, "act-1", "tutor-1", from.AddDate(0, 0, 2))
	saveActivity(t, store, "act-2", "tutor-1", from.AddDate(0, 0, 9))
	saveActivity(t, store, "act-3", "tutor-1", from.AddDate(0, 0, 16))
	saveActivity(t, store, "act-4", "tutor-1", from.AddDate(0, 0, 23))
	saveActivity(t, store, "act-out", "tutor-1", to.AddDate(0, 0, 5)) // outside period

	recs := []attendance.Record{
		// Tutor: verified present x2, pending x1, verified absent x1,
		// plus one verified outside the period.
		record("t1", "act-1", "tutor-1", attendance.PersonTutor, attendance.StatusPresent, attendance.VerificationVerified),
		record("t2", "act-2", "tutor-1", attendance.PersonTutor, attendance.StatusLate, attendance.VerificationVerified),
		record("t3", "act-3", "tutor-1", attendance.PersonTutor, attendance.StatusPresent, attendance.VerificationPending),
		record("t4", "act-4", "tutor-1", attendance.PersonTutor, attendance.StatusAbsent, attendance.VerificationVerified),
		record("t5", "act-out", "tutor-1", attendance.PersonTutor, attendance.StatusPresent, attendance.VerificationVerified),

		// Students: cpb-1 attends twice (still one distinct student),
		// cpb-2 verified once, pb-1 rejected, npb-1 verified absent.
		record("s1", "act-1", "cpb-1", attendance.PersonStudent, attendance.StatusPresent, attendance.VerificationVerified),
		record("s2", "act-2", "cpb-1", attendance.PersonStudent, attendance.StatusLate, attendance.VerificationVerified),
		record("s3", "act-1", "cpb-2", attendance.PersonStudent, attendance.StatusPresent, attendance.VerificationVerified),
		record("s4", "act-1", "pb-1", attendance.PersonStudent, attendance.StatusPresent, attendance.VerificationRejected),
		record("s5", "act-2", "npb-1", attendance.PersonStudent, attendance.StatusAbsent, attendance.VerificationVerified),
	}
	for _, r := range recs {
		require.NoError(t, store.SaveRecord(ctx, r))
	}

	counts, err := store.CountUsage(ctx, "tutor-1", from, to)
	require.NoError(t, err)

	assert.Equal(t, 2, counts.SessionCount, "verified non-absent tutor sessions in period")
	assert.Equal(t, 2, counts.CPBCount, "distinct verified CPB students")
	assert.Equal(t, 0, counts.PBCount, "rejected records do not count")
	assert.Equal(t, 0, counts.NPBCount, "absent records do not count")

	// The aggregate feeds the calculator directly.
	setting := honor.Setting{System: honor.PerSession}
	rate := money.NewFromInt(100000)
	setting.SessionRate = &rate
	b, err := honor.Calculate(setting, counts)
	require.NoError(t, err)
	assert.True(t, b.Total.Equal(money.NewFromInt(200000)), "got %s", b.Total)
}

// =============================================================================
// PAYMENT SETTINGS
// =============================================================================

func TestActivateSetting_SingleActive(t *testing.T) {
	// GIVEN: Two stored settings
	// WHEN: Activating one, then the other
	// THEN: Exactly one is active at any time

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSetting(ctx, sqlite.SettingRecord{
		ID: "s1", ConfigJSON: factory.PerSessionJSON(100000),
	}))
	require.NoError(t, store.SaveSetting(ctx, sqlite.SettingRecord{
		ID: "s2", ConfigJSON: factory.FlatMonthlyJSON(1500000),
	}))

	require.NoError(t, store.ActivateSetting(ctx, "s1"))
	active, err := store.GetActiveSetting(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "s1", active.ID)

	require.NoError(t, store.ActivateSetting(ctx, "s2"))
	active, err = store.GetActiveSetting(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "s2", active.ID)

	settings, err := store.ListSettings(ctx)
	require.NoError(t, err)
	activeCount := 0
	for _, s := range settings {
		if s.Active {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestActivateSetting_Unknown_Errors(t *testing.T) {
	store := newTestStore(t)
	err := store.ActivateSetting(context.Background(), "nope")
	assert.Error(t, err)
}

func TestGetActiveSetting_NoneConfigured_ReturnsNil(t *testing.T) {
	store := newTestStore(t)
	active, err := store.GetActiveSetting(context.Background())
	require.NoError(t, err)
	assert.Nil(t, active)
}

// =============================================================================
// HONOR RECORDS
// =============================================================================

func TestSaveHonorRecord_RefinalizeOverwrites(t *testing.T) {
	// GIVEN: A finalized period for a tutor
	// WHEN: Finalizing the same tutor+period again with a new total
	// THEN: One record remains, carrying the latest total

	store := newTestStore(t)
	ctx := context.Background()

	first := sqlite.HonorRecord{
		ID: "h1", TutorID: "tutor-1", Period: "2026-02",
		System: honor.PerSession, BreakdownJSON: "{}",
		Total: money.NewFromInt(200000),
	}
	require.NoError(t, store.SaveHonorRecord(ctx, first))

	second := first
	second.ID = "h2"
	second.Total = money.NewFromInt(300000)
	require.NoError(t, store.SaveHonorRecord(ctx, second))

	records, err := store.ListHonorRecords(ctx, "tutor-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Total.Equal(money.NewFromInt(300000)), "got %s", records[0].Total)
}

func TestListHonorRecords_FilterByTutor(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, tutor := range []string{"tutor-1", "tutor-2"} {
		require.NoError(t, store.SaveHonorRecord(ctx, sqlite.HonorRecord{
			ID: string(rune('a' + i)), TutorID: tutor, Period: "2026-02",
			System: honor.FlatMonthly, BreakdownJSON: "{}",
			Total: money.NewFromInt(1500000),
		}))
	}

	all, err := store.ListHonorRecords(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := store.ListHonorRecords(ctx, "tutor-2")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "tutor-2", one[0].TutorID)
}
