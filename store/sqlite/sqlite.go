/*
Package sqlite provides the SQLite-backed persistence layer.

PURPOSE:
  Persists everything the rule engines deliberately do not own:
  activities and their schedules, persons, attendance records, payment
  settings, and finalized honor records. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  activities:            One row per activity occurrence with schedule fields
  persons:               Students (with CPB/PB/NPB category) and tutors
  activity_participants: Who is expected at an activity (sweeper input)
  attendance_records:    One outcome per (activity, person)
  payment_settings:      JSON setting documents, at most one active
  honor_records:         Finalized honor calculations per tutor+period

UNIQUENESS:
  idx_unique_checkin enforces one attendance record per activity+person.
  The resolver is deterministic, so a retried check-in that hits this
  index can be safely treated as already processed. This is the
  de-duplication the core leaves to the persistence layer.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened with WAL so
  readers don't block each other.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - api/handlers.go: The only writer
  - api/sweeper.go: Auto-absent background job
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sahabat/attendance-engine/attendance"
	"github.com/sahabat/attendance-engine/honor"
	"github.com/sahabat/attendance-engine/money"
)

// ErrDuplicateCheckIn is returned when an attendance record already
// exists for the same activity+person pair.
var ErrDuplicateCheckIn = errors.New("attendance already recorded for this person and activity")

const dateLayout = "2006-01-02"

// Store implements all persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tutor_id TEXT NOT NULL,
		date TEXT NOT NULL DEFAULT '',
		start_time TEXT,
		end_time TEXT,
		late_threshold TEXT,
		late_minutes_offset INTEGER,
		swept INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date);
	CREATE INDEX IF NOT EXISTS idx_activities_tutor ON activities(tutor_id);

	CREATE TABLE IF NOT EXISTS persons (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		person_type TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS activity_participants (
		activity_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(activity_id, person_id)
	);

	CREATE INDEX IF NOT EXISTS idx_participants_activity
		ON activity_participants(activity_id);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		activity_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		person_type TEXT NOT NULL,
		arrival_time TEXT NOT NULL,
		status TEXT NOT NULL,
		verification_status TEXT NOT NULL DEFAULT 'pending',
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- One outcome per person per activity. Concurrent scans for the
	-- same pair race here, not in the resolver.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_checkin
		ON attendance_records(activity_id, person_id);

	CREATE INDEX IF NOT EXISTS idx_records_activity
		ON attendance_records(activity_id);
	CREATE INDEX IF NOT EXISTS idx_records_person
		ON attendance_records(person_id, status);

	CREATE TABLE IF NOT EXISTS payment_settings (
		id TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_settings_active ON payment_settings(active);

	CREATE TABLE IF NOT EXISTS honor_records (
		id TEXT PRIMARY KEY,
		tutor_id TEXT NOT NULL,
		period TEXT NOT NULL,
		system TEXT NOT NULL,
		breakdown_json TEXT NOT NULL,
		total TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(tutor_id, period)
	);

	CREATE INDEX IF NOT EXISTS idx_honor_tutor ON honor_records(tutor_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACTIVITIES
// =============================================================================

// Activity is one occurrence of a tutoring session together with the
// schedule fields the resolver consumes.
type Activity struct {
	ID      string
	Name    string
	TutorID string

	Date              time.Time // zero when unknown
	StartTime         *attendance.TimeOfDay
	EndTime           *attendance.TimeOfDay
	LateThreshold     *attendance.TimeOfDay
	LateMinutesOffset *int

	Swept     bool
	CreatedAt time.Time
}

// Schedule projects the activity into the resolver's input type.
func (a Activity) Schedule() attendance.Schedule {
	return attendance.Schedule{
		Date:              a.Date,
		StartTime:         a.StartTime,
		EndTime:           a.EndTime,
		LateThreshold:     a.LateThreshold,
		LateMinutesOffset: a.LateMinutesOffset,
	}
}

func (s *Store) SaveActivity(ctx context.Context, a Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities
		(id, name, tutor_id, date, start_time, end_time, late_threshold, late_minutes_offset, swept, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, tutor_id=excluded.tutor_id, date=excluded.date,
			start_time=excluded.start_time, end_time=excluded.end_time,
			late_threshold=excluded.late_threshold,
			late_minutes_offset=excluded.late_minutes_offset
	`,
		a.ID, a.Name, a.TutorID, formatDate(a.Date),
		todString(a.StartTime), todString(a.EndTime), todString(a.LateThreshold),
		nullInt(a.LateMinutesOffset), boolInt(a.Swept),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}
	return nil
}

func (s *Store) GetActivity(ctx context.Context, id string) (*Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, tutor_id, date, start_time, end_time, late_threshold,
		       late_minutes_offset, swept, created_at
		FROM activities WHERE id = ?`, id)

	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) ListActivities(ctx context.Context) ([]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryActivities(ctx, `
		SELECT id, name, tutor_id, date, start_time, end_time, late_threshold,
		       late_minutes_offset, swept, created_at
		FROM activities ORDER BY date DESC, name ASC`)
}

// ListSweepable returns unswept activities dated today or earlier that
// carry an end time. The sweeper still checks the composed end instant;
// this query only narrows the candidates.
func (s *Store) ListSweepable(ctx context.Context, today time.Time) ([]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryActivities(ctx, `
		SELECT id, name, tutor_id, date, start_time, end_time, late_threshold,
		       late_minutes_offset, swept, created_at
		FROM activities
		WHERE swept = 0 AND end_time IS NOT NULL AND date != '' AND date <= ?
		ORDER BY date ASC`, formatDate(today))
}

func (s *Store) MarkSwept(ctx context.Context, activityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE activities SET swept = 1 WHERE id = ?`, activityID)
	return err
}

func (s *Store) queryActivities(ctx context.Context, query string, args ...any) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*Activity, error) {
	var (
		a          Activity
		date       string
		start, end sql.NullString
		threshold  sql.NullString
		offset     sql.NullInt64
		swept      int
		createdAt  string
	)
	err := row.Scan(&a.ID, &a.Name, &a.TutorID, &date, &start, &end,
		&threshold, &offset, &swept, &createdAt)
	if err != nil {
		return nil, err
	}

	// Dates are calendar dates in the shelter's own timezone; anchor
	// them locally so resolver thresholds line up with the wall clock.
	if date != "" {
		a.Date, _ = time.ParseInLocation(dateLayout, date, time.Local)
	}
	a.StartTime = parseTod(start)
	a.EndTime = parseTod(end)
	a.LateThreshold = parseTod(threshold)
	if offset.Valid {
		v := int(offset.Int64)
		a.LateMinutesOffset = &v
	}
	a.Swept = swept != 0
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

// =============================================================================
// PERSONS
// =============================================================================

type Person struct {
	ID   string
	Name string
	Type attendance.PersonType

	// Category is set for students only (empty for tutors).
	Category honor.Category

	CreatedAt time.Time
}

func (s *Store) SavePerson(ctx context.Context, p Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (id, name, person_type, category, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, person_type=excluded.person_type, category=excluded.category
	`, p.ID, p.Name, p.Type, p.Category, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save person: %w", err)
	}
	return nil
}

func (s *Store) GetPerson(ctx context.Context, id string) (*Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		p         Person
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, person_type, category, created_at FROM persons WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Type, &p.Category, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

func (s *Store) ListPersons(ctx context.Context) ([]Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, person_type, category, created_at FROM persons ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	var persons []Person
	for rows.Next() {
		var (
			p         Person
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Category, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

// =============================================================================
// PARTICIPANTS
// =============================================================================

func (s *Store) AddParticipant(ctx context.Context, activityID, personID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO activity_participants (activity_id, person_id, created_at)
		VALUES (?, ?, ?)`, activityID, personID, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) ListParticipants(ctx context.Context, activityID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT person_id FROM activity_participants WHERE activity_id = ? ORDER BY person_id`,
		activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// ListUnrecordedParticipants returns participants of an activity that
// have no attendance record yet. This feeds the auto-absent sweeper,
// which needs the person type to build the absent record.
func (s *Store) ListUnrecordedParticipants(ctx context.Context, activityID string) ([]Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.person_type, p.category
		FROM activity_participants ap
		JOIN persons p ON p.id = ap.person_id
		LEFT JOIN attendance_records r
			ON r.activity_id = ap.activity_id AND r.person_id = ap.person_id
		WHERE ap.activity_id = ? AND r.id IS NULL
		ORDER BY p.id`, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unrecorded participants: %w", err)
	}
	defer rows.Close()

	var persons []Person
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Category); err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =============================================================================
// ATTENDANCE RECORDS
// =============================================================================

func (s *Store) SaveRecord(ctx context.Context, r attendance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_records
		(id, activity_id, person_id, person_type, arrival_time, status, verification_status, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.ActivityID, r.PersonID, r.PersonType,
		r.ArrivalTime.UTC().Format(time.RFC3339), r.Status, r.Verification, r.Note,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateCheckIn
		}
		return fmt.Errorf("failed to save attendance record: %w", err)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id string) (*attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.queryRecords(ctx, recordSelect+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (s *Store) ListRecordsByActivity(ctx context.Context, activityID string) ([]attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx,
		recordSelect+` WHERE activity_id = ? ORDER BY created_at ASC`, activityID)
}

func (s *Store) ListRecordsByPerson(ctx context.Context, personID string) ([]attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx,
		recordSelect+` WHERE person_id = ? ORDER BY created_at ASC`, personID)
}

// SetVerification moves a record through its reviewer lifecycle. The
// resolver-assigned status is never touched here.
func (s *Store) SetVerification(ctx context.Context, recordID string, status attendance.VerificationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE attendance_records SET verification_status = ? WHERE id = ?`,
		status, recordID)
	if err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const recordSelect = `
	SELECT id, activity_id, person_id, person_type, arrival_time,
	       status, verification_status, note, created_at
	FROM attendance_records`

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]attendance.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var (
			r                  attendance.Record
			arrival, createdAt string
		)
		err := rows.Scan(&r.ID, &r.ActivityID, &r.PersonID, &r.PersonType,
			&arrival, &r.Status, &r.Verification, &r.Note, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		r.ArrivalTime, _ = time.Parse(time.RFC3339, arrival)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// USAGE AGGREGATION
// =============================================================================

// CountUsage aggregates verified attendance into the calculator's
// inputs for one tutor and period:
//   - SessionCount: the tutor's own verified non-absent records on
//     activities dated within the period
//   - category counts: distinct students per category with a verified
//     non-absent record on the tutor's activities in the period
func (s *Store) CountUsage(ctx context.Context, tutorID string, from, to time.Time) (honor.UsageCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts honor.UsageCounts

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM attendance_records r
		JOIN activities a ON a.id = r.activity_id
		WHERE r.person_id = ? AND r.person_type = 'tutor'
		  AND r.status != 'absent' AND r.verification_status = 'verified'
		  AND a.date != '' AND a.date >= ? AND a.date <= ?
	`, tutorID, formatDate(from), formatDate(to)).Scan(&counts.SessionCount)
	if err != nil {
		return counts, fmt.Errorf("failed to count sessions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.category, COUNT(DISTINCT r.person_id)
		FROM attendance_records r
		JOIN activities a ON a.id = r.activity_id
		JOIN persons p ON p.id = r.person_id
		WHERE a.tutor_id = ? AND r.person_type = 'student'
		  AND r.status != 'absent' AND r.verification_status = 'verified'
		  AND a.date != '' AND a.date >= ? AND a.date <= ?
		GROUP BY p.category
	`, tutorID, formatDate(from), formatDate(to))
	if err != nil {
		return counts, fmt.Errorf("failed to count student categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category honor.Category
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return counts, err
		}
		switch category {
		case honor.CategoryCPB:
			counts.CPBCount = n
		case honor.CategoryPB:
			counts.PBCount = n
		case honor.CategoryNPB:
			counts.NPBCount = n
		}
	}
	return counts, rows.Err()
}

// =============================================================================
// PAYMENT SETTINGS
// =============================================================================

// SettingRecord stores the raw JSON document; parsing into
// honor.Setting happens through the factory at the edge.
type SettingRecord struct {
	ID         string
	ConfigJSON string
	Active     bool
	CreatedAt  time.Time
}

func (s *Store) SaveSetting(ctx context.Context, rec SettingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_settings (id, config_json, active, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET config_json=excluded.config_json
	`, rec.ID, rec.ConfigJSON, boolInt(rec.Active), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save payment setting: %w", err)
	}
	return nil
}

// ActivateSetting makes the given setting the single active one.
func (s *Store) ActivateSetting(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE payment_settings SET active = 0`); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE payment_settings SET active = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

func (s *Store) GetActiveSetting(ctx context.Context) (*SettingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySetting(ctx,
		`SELECT id, config_json, active, created_at FROM payment_settings WHERE active = 1 LIMIT 1`)
}

func (s *Store) GetSetting(ctx context.Context, id string) (*SettingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySetting(ctx,
		`SELECT id, config_json, active, created_at FROM payment_settings WHERE id = ?`, id)
}

func (s *Store) querySetting(ctx context.Context, query string, args ...any) (*SettingRecord, error) {
	var (
		rec       SettingRecord
		active    int
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&rec.ID, &rec.ConfigJSON, &active, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Active = active != 0
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &rec, nil
}

func (s *Store) ListSettings(ctx context.Context) ([]SettingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, config_json, active, created_at FROM payment_settings ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment settings: %w", err)
	}
	defer rows.Close()

	var settings []SettingRecord
	for rows.Next() {
		var (
			rec       SettingRecord
			active    int
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.ConfigJSON, &active, &createdAt); err != nil {
			return nil, err
		}
		rec.Active = active != 0
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		settings = append(settings, rec)
	}
	return settings, rows.Err()
}

// =============================================================================
// HONOR RECORDS
// =============================================================================

// HonorRecord is a finalized honor calculation for a tutor and period.
type HonorRecord struct {
	ID            string
	TutorID       string
	Period        string // "YYYY-MM"
	System        honor.System
	BreakdownJSON string
	Total         money.Amount
	CreatedAt     time.Time
}

func (s *Store) SaveHonorRecord(ctx context.Context, rec HonorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO honor_records (id, tutor_id, period, system, breakdown_json, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tutor_id, period) DO UPDATE SET
			system=excluded.system, breakdown_json=excluded.breakdown_json, total=excluded.total
	`, rec.ID, rec.TutorID, rec.Period, rec.System, rec.BreakdownJSON,
		rec.Total.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save honor record: %w", err)
	}
	return nil
}

func (s *Store) ListHonorRecords(ctx context.Context, tutorID string) ([]HonorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, tutor_id, period, system, breakdown_json, total, created_at
	          FROM honor_records`
	args := []any{}
	if tutorID != "" {
		query += ` WHERE tutor_id = ?`
		args = append(args, tutorID)
	}
	query += ` ORDER BY period DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query honor records: %w", err)
	}
	defer rows.Close()

	var records []HonorRecord
	for rows.Next() {
		var (
			rec       HonorRecord
			total     string
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.TutorID, &rec.Period, &rec.System,
			&rec.BreakdownJSON, &total, &createdAt); err != nil {
			return nil, err
		}
		rec.Total, err = money.Parse(total)
		if err != nil {
			return nil, fmt.Errorf("corrupt honor total %q: %w", total, err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// RESET (dev/demo only)
// =============================================================================

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"activities", "persons", "activity_participants",
		"attendance_records", "payment_settings", "honor_records",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func todString(t *attendance.TimeOfDay) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

func parseTod(s sql.NullString) *attendance.TimeOfDay {
	if !s.Valid || s.String == "" {
		return nil
	}
	tod, err := attendance.ParseTimeOfDay(s.String)
	if err != nil {
		return nil
	}
	return &tod
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
