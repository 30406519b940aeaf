/*
sweeper.go - Automated absent-marking sweeper

PURPOSE:
  Periodically finds ended activities and marks every registered
  participant without an attendance record as absent. Without this job,
  a student who never scanned would simply have no record at all.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Only considers activities with an end time whose date has passed
    or is today; the end instant itself is re-checked before sweeping
  - Swept activities are flagged so they are never re-scanned
  - Auto-created records carry a note and stay pending so a reviewer
    can still overrule them

CONFIGURATION:
  - CheckInterval: How often to check (default: 5 minutes)
  - Enabled: Whether the sweeper is active (default: true)

USAGE:
  sweeper := NewAbsenceSweeper(store)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - handlers.go: Scan/ManualEntry (the records the sweep fills in around)
  - store/sqlite: ListSweepable, ListUnrecordedParticipants, MarkSwept
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sahabat/attendance-engine/attendance"
	"github.com/sahabat/attendance-engine/store/sqlite"
)

// AbsenceSweeper marks unrecorded participants absent after activities end.
type AbsenceSweeper struct {
	Store         *sqlite.Store
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAbsenceSweeper creates a new sweeper.
func NewAbsenceSweeper(store *sqlite.Store) *AbsenceSweeper {
	return &AbsenceSweeper{
		Store:         store,
		CheckInterval: 5 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the sweeper.
func (as *AbsenceSweeper) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		log.Println("[Sweeper] Disabled, not starting")
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.wg.Add(1)

	go as.run()

	log.Printf("[Sweeper] Started with check interval: %v", as.CheckInterval)
}

// Stop stops the sweeper.
func (as *AbsenceSweeper) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker != nil {
		as.ticker.Stop()
		close(as.stop)
		as.wg.Wait()
		log.Println("[Sweeper] Stopped")
	}
}

func (as *AbsenceSweeper) run() {
	defer as.wg.Done()

	// Run immediately on start
	as.sweep()

	for {
		select {
		case <-as.ticker.C:
			as.sweep()
		case <-as.stop:
			return
		}
	}
}

func (as *AbsenceSweeper) sweep() {
	ctx := context.Background()
	now := time.Now()

	activities, err := as.Store.ListSweepable(ctx, now)
	if err != nil {
		log.Printf("[Sweeper] Error listing activities: %v", err)
		return
	}

	sweptCount := 0
	markedCount := 0

	for _, activity := range activities {
		if activity.EndTime == nil {
			continue
		}
		// The query narrows by date; the actual end instant decides.
		endInstant := activity.EndTime.On(activity.Date)
		if !now.After(endInstant) {
			continue
		}

		marked, err := as.sweepActivity(ctx, activity, endInstant)
		if err != nil {
			log.Printf("[Sweeper] Error sweeping activity %s: %v", activity.ID, err)
			continue
		}

		if err := as.Store.MarkSwept(ctx, activity.ID); err != nil {
			log.Printf("[Sweeper] Error flagging activity %s: %v", activity.ID, err)
			continue
		}

		sweptCount++
		markedCount += marked
	}

	if sweptCount > 0 {
		log.Printf("[Sweeper] Completed: %d activities swept, %d participants marked absent", sweptCount, markedCount)
	}
}

func (as *AbsenceSweeper) sweepActivity(ctx context.Context, activity sqlite.Activity, endInstant time.Time) (int, error) {
	unrecorded, err := as.Store.ListUnrecordedParticipants(ctx, activity.ID)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, person := range unrecorded {
		record := attendance.Record{
			ID:           uuid.NewString(),
			ActivityID:   activity.ID,
			PersonID:     person.ID,
			PersonType:   person.Type,
			ArrivalTime:  endInstant,
			Status:       attendance.StatusAbsent,
			Verification: attendance.VerificationPending,
			Note:         "auto-marked absent after activity ended",
		}
		if err := as.Store.SaveRecord(ctx, record); err != nil {
			// A concurrent scan can land between the listing and the
			// insert; that record wins.
			log.Printf("[Sweeper] Skipping %s/%s: %v", activity.ID, person.ID, err)
			continue
		}
		marked++
	}
	return marked, nil
}

// RunNow triggers an immediate sweep (for testing/admin).
func (as *AbsenceSweeper) RunNow() {
	as.sweep()
}
