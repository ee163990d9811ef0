package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/domain/result"
)

const defaultGameweekWorkers = 4

// JobScheduler enqueues a delayed internal job, deduplicated by ID.
type JobScheduler interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

// GameweekRunReport summarizes one full gameweek cycle.
type GameweekRunReport struct {
	Gameweek      int
	NextGameweek  int
	ClosedCount   int
	ScoredCount   int
	SkippedCount  int
	ClonedCount   int
	EventFailures []GameweekEventFailure
}

type GameweekEventFailure struct {
	EventID string
	Stage   string
	Message string
}

// GameweekService drives a full cycle: ensure results, close registration,
// settle every open event, clone templates into the next gameweek, advance
// the pointer. Rerunning after a partial failure picks up where it stopped
// because settled events report ErrAlreadyScored and are skipped.
type GameweekService struct {
	gameweekRepo event.GameweekRepository
	eventRepo    event.Repository
	events       *EventService
	scoring      *ScoringService
	feed         result.Feed
	workerCount  int
	scheduler    JobScheduler
	nextRunDelay time.Duration
	logger       *slog.Logger
}

func NewGameweekService(
	gameweekRepo event.GameweekRepository,
	eventRepo event.Repository,
	events *EventService,
	scoring *ScoringService,
	feed result.Feed,
	logger *slog.Logger,
) *GameweekService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GameweekService{
		gameweekRepo: gameweekRepo,
		eventRepo:    eventRepo,
		events:       events,
		scoring:      scoring,
		feed:         feed,
		workerCount:  defaultGameweekWorkers,
		logger:       logger,
	}
}

func (s *GameweekService) SetWorkerCount(count int) {
	if count > 0 {
		s.workerCount = count
	}
}

// SetScheduler makes RunGameweek enqueue the next cycle after it advances
// the pointer. Scheduling failures are logged, never fatal.
func (s *GameweekService) SetScheduler(scheduler JobScheduler, delay time.Duration) {
	s.scheduler = scheduler
	s.nextRunDelay = delay
}

func (s *GameweekService) CurrentGameweek(ctx context.Context) (int, error) {
	return s.gameweekRepo.Current(ctx)
}

func (s *GameweekService) RunGameweek(ctx context.Context) (GameweekRunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameweekService.RunGameweek")
	defer span.End()

	gameweek, err := s.gameweekRepo.Current(ctx)
	if err != nil {
		return GameweekRunReport{}, fmt.Errorf("read current gameweek: %w", err)
	}
	report := GameweekRunReport{Gameweek: gameweek}

	if err := s.ensureResults(ctx, gameweek); err != nil {
		return report, err
	}

	events, err := s.eventRepo.ListByGameweek(ctx, gameweek)
	if err != nil {
		return report, fmt.Errorf("list events for gameweek %d: %w", gameweek, err)
	}

	for _, evt := range events {
		if !evt.InRegistration() {
			continue
		}
		if _, err := s.events.ChangeStatus(ctx, evt.ID, event.StatusRunning); err != nil {
			report.EventFailures = append(report.EventFailures, GameweekEventFailure{
				EventID: evt.ID, Stage: "close", Message: err.Error(),
			})
			continue
		}
		report.ClosedCount++
	}

	scored, skipped, failures, err := s.settleAll(ctx, events)
	if err != nil {
		return report, err
	}
	report.ScoredCount = scored
	report.SkippedCount = skipped
	report.EventFailures = append(report.EventFailures, failures...)

	// Clone templates only for events that actually settled; failed ones
	// stay in this gameweek for the next run.
	for _, evt := range events {
		fresh, exists, err := s.eventRepo.GetByID(ctx, evt.ID)
		if err != nil {
			return report, fmt.Errorf("reload event %s: %w", evt.ID, err)
		}
		if !exists || fresh.ScoredAt == nil {
			continue
		}
		if _, err := s.events.CloneForNextGameweek(ctx, evt.ID); err != nil {
			report.EventFailures = append(report.EventFailures, GameweekEventFailure{
				EventID: evt.ID, Stage: "clone", Message: err.Error(),
			})
			continue
		}
		report.ClonedCount++
	}

	report.NextGameweek = gameweek + 1
	if err := s.gameweekRepo.Set(ctx, report.NextGameweek); err != nil {
		return report, fmt.Errorf("advance gameweek pointer: %w", err)
	}

	if s.scheduler != nil {
		dedupID := fmt.Sprintf("run-gameweek-%d", report.NextGameweek)
		if err := s.scheduler.Enqueue(ctx, "/v1/internal/jobs/run-gameweek", nil, s.nextRunDelay, dedupID); err != nil {
			s.logger.WarnContext(ctx, "schedule next gameweek run failed", "gameweek", report.NextGameweek, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "gameweek cycle finished",
		"gameweek", report.Gameweek,
		"closed", report.ClosedCount,
		"scored", report.ScoredCount,
		"skipped", report.SkippedCount,
		"cloned", report.ClonedCount,
		"failures", len(report.EventFailures),
	)

	return report, nil
}

func (s *GameweekService) ensureResults(ctx context.Context, gameweek int) error {
	_, found, err := s.feed.ResultsFor(ctx, gameweek)
	if err != nil {
		return fmt.Errorf("probe gameweek %d results: %w", gameweek, err)
	}
	if found {
		return nil
	}

	sim, ok := s.feed.(result.Simulator)
	if !ok {
		return fmt.Errorf("%w: gameweek=%d", result.ErrResultsUnavailable, gameweek)
	}
	if err := sim.Simulate(ctx, gameweek); err != nil {
		return fmt.Errorf("simulate gameweek %d: %w", gameweek, err)
	}

	return nil
}

func (s *GameweekService) settleAll(ctx context.Context, events []event.Event) (scored, skipped int, failures []GameweekEventFailure, err error) {
	workerPool, err := ants.NewPool(s.workerCount)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var scoredCount atomic.Int32
	var skippedCount atomic.Int32
	failureCh := make(chan GameweekEventFailure, len(events))

	var workers sync.WaitGroup
	for _, evt := range events {
		evt := evt
		if evt.Status.Terminal() {
			skippedCount.Add(1)
			continue
		}
		workers.Add(1)
		if submitErr := workerPool.Submit(func() {
			defer workers.Done()

			_, scoreErr := s.scoring.ScoreEvent(ctx, evt.ID)
			switch {
			case scoreErr == nil:
				scoredCount.Add(1)
			case errors.Is(scoreErr, event.ErrAlreadyScored):
				skippedCount.Add(1)
			default:
				failureCh <- GameweekEventFailure{
					EventID: evt.ID, Stage: "score", Message: scoreErr.Error(),
				}
			}
		}); submitErr != nil {
			workers.Done()
			// Earlier submissions may still be running; wait for them so
			// none write to failureCh after we return.
			workers.Wait()
			return 0, 0, nil, fmt.Errorf("submit settlement to worker pool: %w", submitErr)
		}
	}

	workers.Wait()
	close(failureCh)

	for failure := range failureCh {
		failures = append(failures, failure)
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].EventID < failures[j].EventID })

	return int(scoredCount.Load()), int(skippedCount.Load()), failures, nil
}
