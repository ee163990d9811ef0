package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/domain/wallet"
	"github.com/bescout/fantasy-events/internal/infrastructure/repository/memory"
	"github.com/bescout/fantasy-events/internal/infrastructure/resultsfeed"
)

func scoreTestEvent(t *testing.T, eventRepo *memory.EventRepository, lineupRepo *memory.LineupRepository, eventID string) {
	t.Helper()

	feed := resultsfeed.NewSimulatedFeed(nil, 1)
	feed.Put(fixedResults(1))
	seedLineup(t, lineupRepo, "user-a", eventID, balancedSlots(), time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	scoring := NewScoringService(eventRepo, lineupRepo, feed, testOracle(1), nil, nil, discardLogger())
	if _, err := scoring.ScoreEvent(t.Context(), eventID); err != nil {
		t.Fatalf("settle %s: %v", eventID, err)
	}
}

func TestResetServiceReopensScoredEvent(t *testing.T) {
	eventRepo := memory.NewEventRepository()
	lineupRepo := memory.NewLineupRepository()
	payoutRepo := memory.NewPayoutRepository()
	mustCreateEvent(t, eventRepo, testEvent("evt-1", 1))
	scoreTestEvent(t, eventRepo, lineupRepo, "evt-1")

	service := NewResetService(eventRepo, lineupRepo, payoutRepo, discardLogger())

	evt, err := service.ResetEvent(t.Context(), "evt-1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if evt.ScoredAt != nil {
		t.Fatal("reset left scored_at set")
	}
	if evt.Status != event.StatusRegistering {
		t.Fatalf("reset left status %s", evt.Status)
	}

	stored, _, err := eventRepo.GetByID(t.Context(), "evt-1")
	if err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if stored.ScoredAt != nil || stored.Status != event.StatusRegistering {
		t.Fatalf("stored event not reset: scored_at=%v status=%s", stored.ScoredAt, stored.Status)
	}

	lu, _, err := lineupRepo.GetByUserAndEvent(t.Context(), "user-a", "evt-1")
	if err != nil {
		t.Fatalf("reload lineup: %v", err)
	}
	if lu.Scored() || lu.TotalScore != 0 || lu.Rank != 0 || lu.RewardAmount != 0 {
		t.Fatalf("lineup scores survived reset: %+v", lu)
	}

	// A reset event can be settled again.
	scoreTestEvent(t, eventRepo, lineupRepo, "evt-1")
}

func TestResetServiceRefusesUnscoredEvent(t *testing.T) {
	eventRepo := memory.NewEventRepository()
	mustCreateEvent(t, eventRepo, testEvent("evt-1", 1))

	service := NewResetService(eventRepo, memory.NewLineupRepository(), memory.NewPayoutRepository(), discardLogger())

	_, err := service.ResetEvent(t.Context(), "evt-1")
	if !errors.Is(err, event.ErrNotYetScored) {
		t.Fatalf("expected ErrNotYetScored, got %v", err)
	}
}

func TestResetServiceRefusesPaidEvent(t *testing.T) {
	eventRepo := memory.NewEventRepository()
	lineupRepo := memory.NewLineupRepository()
	payoutRepo := memory.NewPayoutRepository()
	mustCreateEvent(t, eventRepo, testEvent("evt-1", 1))
	scoreTestEvent(t, eventRepo, lineupRepo, "evt-1")

	if err := payoutRepo.Record(t.Context(), wallet.Payout{
		EventID:        "evt-1",
		UserID:         "user-a",
		Rank:           1,
		Amount:         500,
		IdempotencyKey: wallet.Key("evt-1", "user-a"),
		CreditedAt:     time.Now().UTC(),
	}); err != nil {
		t.Fatalf("record payout: %v", err)
	}

	service := NewResetService(eventRepo, lineupRepo, payoutRepo, discardLogger())

	_, err := service.ResetEvent(t.Context(), "evt-1")
	if !errors.Is(err, event.ErrRewardsAlreadyPaid) {
		t.Fatalf("expected ErrRewardsAlreadyPaid, got %v", err)
	}

	// The settlement must survive a refused reset.
	stored, _, _ := eventRepo.GetByID(t.Context(), "evt-1")
	if stored.ScoredAt == nil {
		t.Fatal("refused reset cleared scored_at")
	}
}

func TestResetServiceUnknownEvent(t *testing.T) {
	service := NewResetService(memory.NewEventRepository(), memory.NewLineupRepository(), memory.NewPayoutRepository(), discardLogger())

	_, err := service.ResetEvent(t.Context(), "evt-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
