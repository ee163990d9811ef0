package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/infrastructure/repository/memory"
	"github.com/bescout/fantasy-events/internal/infrastructure/resultsfeed"
)

type staticIDGenerator struct {
	prefix string
	next   int
}

func (g *staticIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next), nil
}

type scheduledJob struct {
	path    string
	delay   time.Duration
	dedupID string
}

type fakeScheduler struct {
	jobs []scheduledJob
}

func (f *fakeScheduler) Enqueue(_ context.Context, path string, _ any, delay time.Duration, deduplicationID string) error {
	f.jobs = append(f.jobs, scheduledJob{path: path, delay: delay, dedupID: deduplicationID})
	return nil
}

func newGameweekFixture(t *testing.T) (*GameweekService, *memory.EventRepository, *memory.LineupRepository, *memory.GameweekRepository) {
	t.Helper()

	gameweekRepo := memory.NewGameweekRepository(1)
	eventRepo := memory.NewEventRepository()
	lineupRepo := memory.NewLineupRepository()
	feed := resultsfeed.NewSimulatedFeed(testCards(), 7)

	eventSvc := NewEventService(eventRepo, &staticIDGenerator{prefix: "clone"})
	scoringSvc := NewScoringService(eventRepo, lineupRepo, feed, testOracle(1), nil, nil, discardLogger())
	service := NewGameweekService(gameweekRepo, eventRepo, eventSvc, scoringSvc, feed, discardLogger())

	return service, eventRepo, lineupRepo, gameweekRepo
}

func TestGameweekServiceRunsFullCycle(t *testing.T) {
	service, eventRepo, lineupRepo, gameweekRepo := newGameweekFixture(t)
	mustCreateEvent(t, eventRepo, testEvent("evt-1", 1))
	seedLineup(t, lineupRepo, "user-a", "evt-1", balancedSlots(), time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	report, err := service.RunGameweek(t.Context())
	if err != nil {
		t.Fatalf("run gameweek: %v", err)
	}
	if len(report.EventFailures) != 0 {
		t.Fatalf("unexpected failures: %+v", report.EventFailures)
	}
	if report.Gameweek != 1 || report.NextGameweek != 2 {
		t.Fatalf("unexpected gameweek pointers: %+v", report)
	}
	if report.ClosedCount != 1 || report.ScoredCount != 1 || report.ClonedCount != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}

	settled, _, err := eventRepo.GetByID(t.Context(), "evt-1")
	if err != nil {
		t.Fatalf("reload settled event: %v", err)
	}
	if settled.ScoredAt == nil || settled.Status != event.StatusEnded {
		t.Fatalf("event not settled: scored_at=%v status=%s", settled.ScoredAt, settled.Status)
	}

	clones, err := eventRepo.ListByGameweek(t.Context(), 2)
	if err != nil {
		t.Fatalf("list next gameweek: %v", err)
	}
	if len(clones) != 1 {
		t.Fatalf("expected 1 clone, got %d", len(clones))
	}
	clone := clones[0]
	if clone.ClonedFromEventID != "evt-1" {
		t.Fatalf("clone points at %s", clone.ClonedFromEventID)
	}
	if clone.Status != event.StatusRegistering || clone.CurrentEntries != 0 || clone.ScoredAt != nil {
		t.Fatalf("clone did not reset: %+v", clone)
	}

	current, err := gameweekRepo.Current(t.Context())
	if err != nil {
		t.Fatalf("current gameweek: %v", err)
	}
	if current != 2 {
		t.Fatalf("pointer not advanced: %d", current)
	}
}

func TestGameweekServiceRerunSkipsSettled(t *testing.T) {
	service, eventRepo, lineupRepo, gameweekRepo := newGameweekFixture(t)
	mustCreateEvent(t, eventRepo, testEvent("evt-1", 1))
	seedLineup(t, lineupRepo, "user-a", "evt-1", balancedSlots(), time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	if _, err := service.RunGameweek(t.Context()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Rewind the pointer as if the first run died after settling; the rerun
	// must skip the settled event but still clone and advance.
	if err := gameweekRepo.Set(t.Context(), 1); err != nil {
		t.Fatalf("rewind pointer: %v", err)
	}

	report, err := service.RunGameweek(t.Context())
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if report.ScoredCount != 0 || report.SkippedCount != 1 {
		t.Fatalf("rerun did not skip settled event: %+v", report)
	}
}

func TestGameweekServiceSkipsTerminalEvents(t *testing.T) {
	service, eventRepo, _, _ := newGameweekFixture(t)

	cancelled := testEvent("evt-cancelled", 1)
	cancelled.Status = event.StatusCancelled
	mustCreateEvent(t, eventRepo, cancelled)

	report, err := service.RunGameweek(t.Context())
	if err != nil {
		t.Fatalf("run gameweek: %v", err)
	}
	if report.ClosedCount != 0 || report.ScoredCount != 0 || report.SkippedCount != 1 || report.ClonedCount != 0 {
		t.Fatalf("unexpected counts for cancelled event: %+v", report)
	}
}

func TestGameweekServiceSettlesMoreEventsThanWorkers(t *testing.T) {
	service, eventRepo, lineupRepo, _ := newGameweekFixture(t)
	service.SetWorkerCount(2)

	// More events than workers keeps the pool queue busy so every settlement
	// goroutine must finish and report before the run returns.
	for i := 1; i <= 8; i++ {
		id := fmt.Sprintf("evt-%d", i)
		mustCreateEvent(t, eventRepo, testEvent(id, 1))
		seedLineup(t, lineupRepo, "user-a", id, balancedSlots(), time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	}

	report, err := service.RunGameweek(t.Context())
	if err != nil {
		t.Fatalf("run gameweek: %v", err)
	}
	if len(report.EventFailures) != 0 {
		t.Fatalf("unexpected failures: %+v", report.EventFailures)
	}
	if report.ScoredCount != 8 || report.SkippedCount != 0 {
		t.Fatalf("unexpected counts: %+v", report)
	}

	for i := 1; i <= 8; i++ {
		evt, _, err := eventRepo.GetByID(t.Context(), fmt.Sprintf("evt-%d", i))
		if err != nil {
			t.Fatalf("reload event %d: %v", i, err)
		}
		if evt.ScoredAt == nil {
			t.Fatalf("event %d not settled", i)
		}
	}
}

func TestGameweekServiceSchedulesNextRun(t *testing.T) {
	service, eventRepo, lineupRepo, _ := newGameweekFixture(t)
	mustCreateEvent(t, eventRepo, testEvent("evt-1", 1))
	seedLineup(t, lineupRepo, "user-a", "evt-1", balancedSlots(), time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	scheduler := &fakeScheduler{}
	service.SetScheduler(scheduler, 7*24*time.Hour)

	if _, err := service.RunGameweek(t.Context()); err != nil {
		t.Fatalf("run gameweek: %v", err)
	}

	if len(scheduler.jobs) != 1 {
		t.Fatalf("expected 1 scheduled job, got %d", len(scheduler.jobs))
	}
	job := scheduler.jobs[0]
	if job.path != "/v1/internal/jobs/run-gameweek" {
		t.Fatalf("unexpected job path %s", job.path)
	}
	if job.dedupID != "run-gameweek-2" {
		t.Fatalf("unexpected dedup id %s", job.dedupID)
	}
	if job.delay != 7*24*time.Hour {
		t.Fatalf("unexpected delay %s", job.delay)
	}
}

func TestGameweekServiceCurrentGameweek(t *testing.T) {
	service, _, _, gameweekRepo := newGameweekFixture(t)

	if err := gameweekRepo.Set(t.Context(), 12); err != nil {
		t.Fatalf("set pointer: %v", err)
	}
	current, err := service.CurrentGameweek(t.Context())
	if err != nil {
		t.Fatalf("current gameweek: %v", err)
	}
	if current != 12 {
		t.Fatalf("expected 12, got %d", current)
	}
}
