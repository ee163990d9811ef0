package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/domain/holding"
	"github.com/bescout/fantasy-events/internal/domain/leaderboard"
	"github.com/bescout/fantasy-events/internal/domain/lineup"
	"github.com/bescout/fantasy-events/internal/domain/result"
	"github.com/bescout/fantasy-events/internal/domain/scoring"
	"github.com/bescout/fantasy-events/internal/platform/resilience"
)

// EventSettlement is the outcome of scoring one event.
type EventSettlement struct {
	EventID  string
	Gameweek int
	ScoredAt time.Time
	Entries  []leaderboard.Entry
}

// ScoringService settles events: it computes per-slot scores from the
// results feed, ranks entrants and hands the standings to reward
// distribution. The scored-at check-and-set guarantees at-most-once
// settlement; reward failures never unwind a settlement.
type ScoringService struct {
	eventRepo  event.Repository
	lineupRepo lineup.Repository
	feed       result.Feed
	oracle     holding.Oracle
	scoreFn    scoring.Func
	rewards    *RewardService
	mirror     leaderboard.Mirror
	single     resilience.SingleFlight
	logger     *slog.Logger
	now        func() time.Time
}

func NewScoringService(
	eventRepo event.Repository,
	lineupRepo lineup.Repository,
	feed result.Feed,
	oracle holding.Oracle,
	scoreFn scoring.Func,
	rewards *RewardService,
	logger *slog.Logger,
) *ScoringService {
	if scoreFn == nil {
		scoreFn = scoring.Default
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoringService{
		eventRepo:  eventRepo,
		lineupRepo: lineupRepo,
		feed:       feed,
		oracle:     oracle,
		scoreFn:    scoreFn,
		rewards:    rewards,
		logger:     logger,
		now:        time.Now,
	}
}

// SetLeaderboardMirror wires an optional standings read model.
func (s *ScoringService) SetLeaderboardMirror(mirror leaderboard.Mirror) {
	s.mirror = mirror
}

// ScoreEvent settles one event. Concurrent calls for the same event
// collapse into a single settlement.
func (s *ScoringService) ScoreEvent(ctx context.Context, eventID string) (EventSettlement, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreEvent")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return EventSettlement{}, fmt.Errorf("%w: event_id is required", ErrInvalidInput)
	}

	value, err, _ := s.single.Do("score::"+eventID, func() (any, error) {
		return s.scoreEvent(ctx, eventID)
	})
	if err != nil {
		return EventSettlement{}, err
	}

	settlement, ok := value.(EventSettlement)
	if !ok {
		return EventSettlement{}, fmt.Errorf("unexpected settlement result type %T", value)
	}
	return settlement, nil
}

func (s *ScoringService) scoreEvent(ctx context.Context, eventID string) (EventSettlement, error) {
	evt, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return EventSettlement{}, fmt.Errorf("get event by id: %w", err)
	}
	if !exists {
		return EventSettlement{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}

	if evt.ScoredAt != nil {
		return EventSettlement{}, fmt.Errorf("%w: event=%s scored_at=%s", event.ErrAlreadyScored, evt.ID, evt.ScoredAt.Format(time.RFC3339))
	}
	if !scorableStatus(evt.Status) {
		return EventSettlement{}, fmt.Errorf("%w: status=%s", event.ErrNotReadyToScore, evt.Status)
	}

	results, found, err := s.feed.ResultsFor(ctx, evt.Gameweek)
	if err != nil {
		return EventSettlement{}, fmt.Errorf("fetch gameweek %d results: %w", evt.Gameweek, err)
	}
	if !found {
		return EventSettlement{}, fmt.Errorf("%w: gameweek=%d", result.ErrResultsUnavailable, evt.Gameweek)
	}

	lineups, err := s.lineupRepo.ListByEvent(ctx, evt.ID)
	if err != nil {
		return EventSettlement{}, fmt.Errorf("list lineups by event: %w", err)
	}

	scored, err := s.scoreLineups(ctx, evt, lineups, results)
	if err != nil {
		return EventSettlement{}, err
	}
	rankLineups(scored)
	for i := range scored {
		amount, _ := evt.RewardForRank(scored[i].Rank)
		scored[i].RewardAmount = amount
	}

	for i := range scored {
		if err := s.lineupRepo.Upsert(ctx, scored[i]); err != nil {
			return EventSettlement{}, fmt.Errorf("persist scored lineup user=%s: %w", scored[i].UserID, err)
		}
	}

	scoredAt := s.now().UTC()
	won, err := s.eventRepo.MarkScored(ctx, evt.ID, scoredAt)
	if err != nil {
		return EventSettlement{}, fmt.Errorf("mark event scored: %w", err)
	}
	if !won {
		return EventSettlement{}, fmt.Errorf("%w: event=%s lost settlement race", event.ErrAlreadyScored, evt.ID)
	}

	entries := make([]leaderboard.Entry, 0, len(scored))
	for _, lu := range scored {
		entries = append(entries, leaderboard.Entry{
			EventID:      evt.ID,
			UserID:       lu.UserID,
			Rank:         lu.Rank,
			TotalScore:   lu.TotalScore,
			RewardAmount: lu.RewardAmount,
		})
	}

	if s.mirror != nil {
		if err := s.mirror.Publish(ctx, evt.ID, entries); err != nil {
			s.logger.WarnContext(ctx, "publish leaderboard mirror failed", "event_id", evt.ID, "error", err)
		}
	}

	settlement := EventSettlement{
		EventID:  evt.ID,
		Gameweek: evt.Gameweek,
		ScoredAt: scoredAt,
		Entries:  entries,
	}

	if s.rewards != nil {
		evt.ScoredAt = &scoredAt
		evt.Status = event.StatusEnded
		if err := s.rewards.Distribute(ctx, evt, entries); err != nil {
			// Scores and scored_at are already durable; distribution is
			// idempotent and can be retried on its own.
			return settlement, fmt.Errorf("distribute rewards after settlement: %w", err)
		}
	}

	return settlement, nil
}

func (s *ScoringService) scoreLineups(ctx context.Context, evt event.Event, lineups []lineup.Lineup, results result.Results) ([]lineup.Lineup, error) {
	cardIDSet := make(map[string]struct{})
	for _, lu := range lineups {
		for _, cardID := range lu.Slots {
			cardIDSet[cardID] = struct{}{}
		}
	}
	cardIDs := make([]string, 0, len(cardIDSet))
	for cardID := range cardIDSet {
		cardIDs = append(cardIDs, cardID)
	}

	cards, err := s.oracle.CardsByID(ctx, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve cards for scoring: %v", ErrDependencyUnavailable, err)
	}

	form := evt.Formation()
	scored := make([]lineup.Lineup, len(lineups))
	for i, lu := range lineups {
		slotScores := make(map[string]int, len(lu.Slots))
		total := 0
		for key, cardID := range lu.Slots {
			pos := cards[cardID].Position
			if pos == "" {
				if slot, ok := form.SlotByKey(key); ok {
					pos = slot.Position
				}
			}
			// Cards without stats this gameweek score zero.
			points := s.scoreFn(pos, results.ByCard[cardID])
			slotScores[key] = points
			total += points
		}
		lu.SlotScores = slotScores
		lu.TotalScore = total
		lu.UpdatedAt = s.now().UTC()
		scored[i] = lu
	}

	return scored, nil
}

// rankLineups orders by total score descending, then earlier submission,
// then user ID. The order is total, so every rank is unique.
func rankLineups(lineups []lineup.Lineup) {
	sort.SliceStable(lineups, func(i, j int) bool {
		if lineups[i].TotalScore != lineups[j].TotalScore {
			return lineups[i].TotalScore > lineups[j].TotalScore
		}
		if !lineups[i].SubmittedAt.Equal(lineups[j].SubmittedAt) {
			return lineups[i].SubmittedAt.Before(lineups[j].SubmittedAt)
		}
		return lineups[i].UserID < lineups[j].UserID
	})
	for i := range lineups {
		lineups[i].Rank = i + 1
	}
}

func scorableStatus(status event.Status) bool {
	switch status {
	case event.StatusRegistering, event.StatusLateReg, event.StatusRunning, event.StatusScoring:
		return true
	default:
		return false
	}
}

// Leaderboard returns an event's final standings, preferring the mirror
// when one is wired and falling back to stored lineup ranks.
func (s *ScoringService) Leaderboard(ctx context.Context, eventID string, limit int) ([]leaderboard.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Leaderboard")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("%w: event_id is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 100
	}

	evt, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}
	if evt.ScoredAt == nil {
		return nil, fmt.Errorf("%w: event=%s", event.ErrNotYetScored, eventID)
	}

	if s.mirror != nil {
		entries, err := s.mirror.Top(ctx, eventID, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			s.logger.WarnContext(ctx, "leaderboard mirror read failed", "event_id", eventID, "error", err)
		}
	}

	lineups, err := s.lineupRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list lineups by event: %w", err)
	}

	entries := make([]leaderboard.Entry, 0, len(lineups))
	for _, lu := range lineups {
		if !lu.Scored() {
			continue
		}
		entries = append(entries, leaderboard.Entry{
			EventID:      eventID,
			UserID:       lu.UserID,
			Rank:         lu.Rank,
			TotalScore:   lu.TotalScore,
			RewardAmount: lu.RewardAmount,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Rank < entries[j].Rank })
	if len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}
