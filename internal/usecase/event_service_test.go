package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/domain/formation"
	"github.com/bescout/fantasy-events/internal/infrastructure/repository/memory"
)

func newEventFixture() (*EventService, *memory.EventRepository) {
	repo := memory.NewEventRepository()
	return NewEventService(repo, &staticIDGenerator{prefix: "evt"}), repo
}

func TestEventServiceCreate(t *testing.T) {
	service, _ := newEventFixture()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return created }

	locksAt := created.Add(6 * 24 * time.Hour)
	endsAt := created.Add(7 * 24 * time.Hour)
	evt, err := service.Create(t.Context(), CreateEventInput{
		Gameweek:     3,
		Name:         "  Spring Cup  ",
		Mode:         "classic",
		Tier:         "user",
		FormationKey: formation.KeyBalanced,
		MaxEntries:   50,
		PrizePool:    1000,
		Rewards: []event.RewardRange{
			{FromRank: 1, ToRank: 1, Amount: 500},
		},
		StartsAt: &created,
		LocksAt:  &locksAt,
		EndsAt:   &endsAt,
		OpenNow:  true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if evt.ID != "evt-1" {
		t.Fatalf("unexpected id %s", evt.ID)
	}
	if evt.Name != "Spring Cup" {
		t.Fatalf("name not trimmed: %q", evt.Name)
	}
	if evt.Status != event.StatusRegistering {
		t.Fatalf("open-now event has status %s", evt.Status)
	}
	if evt.Requirements.CardsPerSlot != 1 {
		t.Fatalf("cards per slot not defaulted: %d", evt.Requirements.CardsPerSlot)
	}
	if !evt.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at %s", evt.CreatedAt)
	}
	if evt.LocksAt == nil || !evt.LocksAt.Equal(locksAt) {
		t.Fatalf("unexpected locks_at %v", evt.LocksAt)
	}
	if evt.EndsAt == nil || !evt.EndsAt.Equal(endsAt) {
		t.Fatalf("unexpected ends_at %v", evt.EndsAt)
	}

	closed, err := service.Create(t.Context(), CreateEventInput{
		Gameweek:     3,
		Name:         "Waiting Room",
		Mode:         "classic",
		Tier:         "user",
		FormationKey: formation.KeyBalanced,
	})
	if err != nil {
		t.Fatalf("create without open-now: %v", err)
	}
	if closed.Status != event.StatusUpcoming {
		t.Fatalf("expected upcoming, got %s", closed.Status)
	}
}

func TestEventServiceCreateValidation(t *testing.T) {
	service, _ := newEventFixture()

	locksAt := time.Date(2026, 3, 8, 18, 0, 0, 0, time.UTC)
	endsAt := locksAt.Add(-time.Hour)

	cases := []struct {
		name  string
		input CreateEventInput
	}{
		{"missing name", CreateEventInput{Gameweek: 1, Mode: "classic", Tier: "user", FormationKey: formation.KeyBalanced}},
		{"bad gameweek", CreateEventInput{Gameweek: 0, Name: "X", Mode: "classic", Tier: "user", FormationKey: formation.KeyBalanced}},
		{"bad mode", CreateEventInput{Gameweek: 1, Name: "X", Mode: "ladder", Tier: "user", FormationKey: formation.KeyBalanced}},
		{"bad formation", CreateEventInput{Gameweek: 1, Name: "X", Mode: "classic", Tier: "user", FormationKey: "9-9"}},
		{"rewards exceed pool", CreateEventInput{
			Gameweek: 1, Name: "X", Mode: "classic", Tier: "user", FormationKey: formation.KeyBalanced,
			PrizePool: 100,
			Rewards:   []event.RewardRange{{FromRank: 1, ToRank: 2, Amount: 100}},
		}},
		{"overlapping rewards", CreateEventInput{
			Gameweek: 1, Name: "X", Mode: "classic", Tier: "user", FormationKey: formation.KeyBalanced,
			PrizePool: 1000,
			Rewards: []event.RewardRange{
				{FromRank: 1, ToRank: 3, Amount: 100},
				{FromRank: 2, ToRank: 4, Amount: 50},
			},
		}},
		{"ends before lock", CreateEventInput{
			Gameweek: 1, Name: "X", Mode: "classic", Tier: "user", FormationKey: formation.KeyBalanced,
			LocksAt: &locksAt, EndsAt: &endsAt,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Create(t.Context(), tc.input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestEventServiceChangeStatus(t *testing.T) {
	service, repo := newEventFixture()

	evt := testEvent("evt-flow", 1)
	evt.Status = event.StatusUpcoming
	mustCreateEvent(t, repo, evt)

	steps := []event.Status{
		event.StatusRegistering,
		event.StatusLateReg,
		event.StatusRunning,
		event.StatusScoring,
		event.StatusEnded,
	}
	for _, next := range steps {
		updated, err := service.ChangeStatus(t.Context(), "evt-flow", next)
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected %s, got %s", next, updated.Status)
		}
	}

	// Ended is terminal: nothing moves out of it, not even cancellation.
	if _, err := service.ChangeStatus(t.Context(), "evt-flow", event.StatusRunning); !errors.Is(err, event.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := service.Cancel(t.Context(), "evt-flow"); !errors.Is(err, event.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on cancel, got %v", err)
	}
}

func TestEventServiceSkippingStatesFails(t *testing.T) {
	service, repo := newEventFixture()

	evt := testEvent("evt-skip", 1)
	evt.Status = event.StatusUpcoming
	mustCreateEvent(t, repo, evt)

	if _, err := service.ChangeStatus(t.Context(), "evt-skip", event.StatusEnded); !errors.Is(err, event.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestEventServiceCancelFromAnyActiveState(t *testing.T) {
	service, repo := newEventFixture()

	for _, status := range []event.Status{
		event.StatusUpcoming,
		event.StatusRegistering,
		event.StatusLateReg,
		event.StatusRunning,
		event.StatusScoring,
	} {
		evt := testEvent("evt-"+string(status), 1)
		evt.Status = status
		mustCreateEvent(t, repo, evt)

		updated, err := service.Cancel(t.Context(), evt.ID)
		if err != nil {
			t.Fatalf("cancel from %s: %v", status, err)
		}
		if updated.Status != event.StatusCancelled {
			t.Fatalf("expected cancelled, got %s", updated.Status)
		}
	}
}

func TestEventServiceCloneForNextGameweek(t *testing.T) {
	service, repo := newEventFixture()

	src := testEvent("evt-src", 4)
	src.Status = event.StatusEnded
	src.CurrentEntries = 42
	scoredAt := time.Date(2026, 3, 8, 20, 0, 0, 0, time.UTC)
	src.ScoredAt = &scoredAt
	locksAt := time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC)
	endsAt := locksAt.Add(24 * time.Hour)
	src.LocksAt = &locksAt
	src.EndsAt = &endsAt
	mustCreateEvent(t, repo, src)

	clone, err := service.CloneForNextGameweek(t.Context(), "evt-src")
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if clone.ID == src.ID {
		t.Fatal("clone reused source id")
	}
	if clone.Gameweek != 5 {
		t.Fatalf("expected gameweek 5, got %d", clone.Gameweek)
	}
	if clone.Status != event.StatusRegistering {
		t.Fatalf("expected registering, got %s", clone.Status)
	}
	if clone.CurrentEntries != 0 || clone.ScoredAt != nil {
		t.Fatalf("clone kept counters: %+v", clone)
	}
	if clone.ClonedFromEventID != "evt-src" {
		t.Fatalf("clone lineage %s", clone.ClonedFromEventID)
	}
	if len(clone.Rewards) != len(src.Rewards) {
		t.Fatalf("clone lost reward table: %d ranges", len(clone.Rewards))
	}
	if clone.LocksAt == nil || !clone.LocksAt.Equal(locksAt.Add(7*24*time.Hour)) {
		t.Fatalf("clone lock window not shifted: %v", clone.LocksAt)
	}
	if clone.EndsAt == nil || !clone.EndsAt.Equal(endsAt.Add(7*24*time.Hour)) {
		t.Fatalf("clone end not shifted: %v", clone.EndsAt)
	}

	// The reward table is copied, not shared.
	clone.Rewards[0].Amount = 1
	reloaded, _, _ := repo.GetByID(t.Context(), "evt-src")
	if reloaded.Rewards[0].Amount == 1 {
		t.Fatal("clone shares reward slice with source")
	}
}

func TestEventServiceListByGameweek(t *testing.T) {
	service, repo := newEventFixture()
	mustCreateEvent(t, repo, testEvent("evt-a", 2))
	mustCreateEvent(t, repo, testEvent("evt-b", 2))
	mustCreateEvent(t, repo, testEvent("evt-c", 3))

	events, err := service.ListByGameweek(t.Context(), 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	if _, err := service.ListByGameweek(t.Context(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if _, err := service.GetByID(t.Context(), "evt-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
