package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/domain/leaderboard"
	"github.com/bescout/fantasy-events/internal/domain/lineup"
	"github.com/bescout/fantasy-events/internal/domain/wallet"
)

// ResetService returns a settled event to a re-scorable state. It never
// reverses wallet credits: once any payout record exists the reset is
// refused and the money has to be reconciled out of band first.
type ResetService struct {
	eventRepo  event.Repository
	lineupRepo lineup.Repository
	payoutRepo wallet.PayoutRepository
	mirror     leaderboard.Mirror
	logger     *slog.Logger
}

func NewResetService(
	eventRepo event.Repository,
	lineupRepo lineup.Repository,
	payoutRepo wallet.PayoutRepository,
	logger *slog.Logger,
) *ResetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResetService{
		eventRepo:  eventRepo,
		lineupRepo: lineupRepo,
		payoutRepo: payoutRepo,
		logger:     logger,
	}
}

func (s *ResetService) SetLeaderboardMirror(mirror leaderboard.Mirror) {
	s.mirror = mirror
}

func (s *ResetService) ResetEvent(ctx context.Context, eventID string) (event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResetService.ResetEvent")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return event.Event{}, fmt.Errorf("%w: event_id is required", ErrInvalidInput)
	}

	evt, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return event.Event{}, fmt.Errorf("get event by id: %w", err)
	}
	if !exists {
		return event.Event{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}
	if evt.ScoredAt == nil {
		return event.Event{}, fmt.Errorf("%w: event=%s", event.ErrNotYetScored, eventID)
	}

	paidCount, err := s.payoutRepo.CountByEvent(ctx, eventID)
	if err != nil {
		return event.Event{}, fmt.Errorf("count payouts by event: %w", err)
	}
	if paidCount > 0 {
		return event.Event{}, fmt.Errorf("%w: event=%s payouts=%d", event.ErrRewardsAlreadyPaid, eventID, paidCount)
	}

	if err := s.lineupRepo.ClearScoresByEvent(ctx, eventID); err != nil {
		return event.Event{}, fmt.Errorf("clear lineup scores: %w", err)
	}
	if err := s.eventRepo.ClearScored(ctx, eventID, event.StatusRegistering); err != nil {
		return event.Event{}, fmt.Errorf("clear event scored state: %w", err)
	}

	if s.mirror != nil {
		if err := s.mirror.Drop(ctx, eventID); err != nil {
			s.logger.WarnContext(ctx, "drop leaderboard mirror failed", "event_id", eventID, "error", err)
		}
	}

	evt.ScoredAt = nil
	evt.Status = event.StatusRegistering
	return evt, nil
}
