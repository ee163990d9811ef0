package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/domain/leaderboard"
	"github.com/bescout/fantasy-events/internal/domain/reputation"
	"github.com/bescout/fantasy-events/internal/domain/wallet"
)

const (
	defaultMalusFraction  = 0.10
	defaultMalusAmount    = 25
	defaultCreditParallel = 4
)

// RewardService turns final standings into wallet credits and, for arena
// events, a reputation malus for the bottom ranks. Every credit is
// idempotent on (event, user); rerunning a distribution never pays twice.
type RewardService struct {
	payoutRepo     wallet.PayoutRepository
	rail           wallet.Rail
	reputations    reputation.Ledger
	logger         *slog.Logger
	malusFraction  float64
	malusAmount    int
	creditParallel int
	now            func() time.Time
}

func NewRewardService(
	payoutRepo wallet.PayoutRepository,
	rail wallet.Rail,
	reputations reputation.Ledger,
	logger *slog.Logger,
) *RewardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RewardService{
		payoutRepo:     payoutRepo,
		rail:           rail,
		reputations:    reputations,
		logger:         logger,
		malusFraction:  defaultMalusFraction,
		malusAmount:    defaultMalusAmount,
		creditParallel: defaultCreditParallel,
		now:            time.Now,
	}
}

// SetMalusFraction overrides the share of entrants hit by the arena malus.
func (s *RewardService) SetMalusFraction(fraction float64) {
	if fraction > 0 && fraction <= 1 {
		s.malusFraction = fraction
	}
}

// Distribute credits every reward-covered rank and applies the arena malus.
// It is safe to call again after a partial failure.
func (s *RewardService) Distribute(ctx context.Context, evt event.Event, entries []leaderboard.Entry) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardService.Distribute")
	defer span.End()

	if evt.ScoredAt == nil {
		return fmt.Errorf("%w: event=%s", event.ErrNotYetScored, evt.ID)
	}

	if err := s.checkConservation(evt, entries); err != nil {
		return err
	}

	workers := pool.New().WithErrors().WithMaxGoroutines(s.creditParallel)
	for _, entry := range entries {
		entry := entry
		amount, covered := evt.RewardForRank(entry.Rank)
		if !covered || amount == 0 {
			continue
		}
		workers.Go(func() error {
			return s.creditOnce(ctx, evt, entry, amount)
		})
	}
	if err := workers.Wait(); err != nil {
		return fmt.Errorf("credit rewards: %w", err)
	}

	if evt.Mode == event.ModeArena {
		if err := s.applyArenaMalus(ctx, evt, entries); err != nil {
			return err
		}
	}

	return nil
}

func (s *RewardService) creditOnce(ctx context.Context, evt event.Event, entry leaderboard.Entry, amount int64) error {
	_, paid, err := s.payoutRepo.GetByEventAndUser(ctx, evt.ID, entry.UserID)
	if err != nil {
		return fmt.Errorf("check payout record user=%s: %w", entry.UserID, err)
	}
	if paid {
		return nil
	}

	key := wallet.Key(evt.ID, entry.UserID)
	outcome, err := s.rail.Credit(ctx, wallet.CreditRequest{
		IdempotencyKey: key,
		UserID:         entry.UserID,
		Amount:         amount,
		Reference:      fmt.Sprintf("event %s rank %d", evt.ID, entry.Rank),
	})
	if err != nil {
		return fmt.Errorf("credit user=%s amount=%d: %w", entry.UserID, amount, err)
	}
	if !outcome.Applied {
		s.logger.InfoContext(ctx, "wallet credit already applied", "event_id", evt.ID, "user_id", entry.UserID)
	}

	if err := s.payoutRepo.Record(ctx, wallet.Payout{
		EventID:        evt.ID,
		UserID:         entry.UserID,
		Rank:           entry.Rank,
		Amount:         amount,
		IdempotencyKey: key,
		RailRef:        outcome.RailRef,
		CreditedAt:     s.now().UTC(),
	}); err != nil {
		return fmt.Errorf("record payout user=%s: %w", entry.UserID, err)
	}

	return nil
}

// checkConservation refuses to pay more than the prize pool even if a bad
// table slipped past event validation.
func (s *RewardService) checkConservation(evt event.Event, entries []leaderboard.Entry) error {
	var total int64
	for _, entry := range entries {
		amount, covered := evt.RewardForRank(entry.Rank)
		if covered {
			total += amount
		}
	}
	if total > evt.PrizePool {
		return fmt.Errorf("%w: payouts %d exceed prize pool %d for event %s", ErrConflict, total, evt.PrizePool, evt.ID)
	}
	return nil
}

// applyArenaMalus docks scout score from the bottom fraction of entrants.
// It touches reputation only; wallets are never debited.
func (s *RewardService) applyArenaMalus(ctx context.Context, evt event.Event, entries []leaderboard.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	count := int(float64(len(entries)) * s.malusFraction)
	if count < 1 {
		count = 1
	}

	existing, err := s.reputations.ListByEvent(ctx, evt.ID)
	if err != nil {
		return fmt.Errorf("list reputation deltas: %w", err)
	}
	already := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		already[d.UserID] = struct{}{}
	}

	cutoff := len(entries) - count
	for _, entry := range entries {
		if entry.Rank <= cutoff {
			continue
		}
		if _, done := already[entry.UserID]; done {
			continue
		}
		if err := s.reputations.Apply(ctx, reputation.Delta{
			UserID:    entry.UserID,
			EventID:   evt.ID,
			Dimension: reputation.DimensionManager,
			Amount:    -s.malusAmount,
			Reason:    fmt.Sprintf("arena bottom decile, rank %d of %d", entry.Rank, len(entries)),
			CreatedAt: s.now().UTC(),
		}); err != nil {
			return fmt.Errorf("apply reputation malus user=%s: %w", entry.UserID, err)
		}
	}

	return nil
}
