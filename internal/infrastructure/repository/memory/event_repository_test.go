package memory

import (
	"testing"
	"time"

	"github.com/bescout/fantasy-events/internal/domain/event"
)

func TestEventRepositoryMarkScoredWinsOnce(t *testing.T) {
	repo := NewEventRepository()
	seed := SeedEvents(1)
	if err := repo.Create(t.Context(), seed[0]); err != nil {
		t.Fatalf("create: %v", err)
	}

	at := time.Date(2026, 3, 8, 20, 0, 0, 0, time.UTC)
	won, err := repo.MarkScored(t.Context(), seed[0].ID, at)
	if err != nil {
		t.Fatalf("mark scored: %v", err)
	}
	if !won {
		t.Fatal("first mark should win")
	}

	won, err = repo.MarkScored(t.Context(), seed[0].ID, at.Add(time.Hour))
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if won {
		t.Fatal("second mark must lose the check-and-set")
	}

	stored, _, _ := repo.GetByID(t.Context(), seed[0].ID)
	if stored.ScoredAt == nil || !stored.ScoredAt.Equal(at) {
		t.Fatalf("scored_at overwritten: %v", stored.ScoredAt)
	}
	if stored.Status != event.StatusEnded {
		t.Fatalf("expected ended, got %s", stored.Status)
	}

	if err := repo.ClearScored(t.Context(), seed[0].ID, event.StatusRegistering); err != nil {
		t.Fatalf("clear scored: %v", err)
	}
	stored, _, _ = repo.GetByID(t.Context(), seed[0].ID)
	if stored.ScoredAt != nil || stored.Status != event.StatusRegistering {
		t.Fatalf("clear did not reset: %+v", stored)
	}
}

func TestEventRepositoryAdjustEntriesClampsAtZero(t *testing.T) {
	repo := NewEventRepository()
	seed := SeedEvents(1)
	if err := repo.Create(t.Context(), seed[0]); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.AdjustEntries(t.Context(), seed[0].ID, 2); err != nil {
		t.Fatalf("adjust up: %v", err)
	}
	if err := repo.AdjustEntries(t.Context(), seed[0].ID, -5); err != nil {
		t.Fatalf("adjust down: %v", err)
	}

	stored, _, _ := repo.GetByID(t.Context(), seed[0].ID)
	if stored.CurrentEntries != 0 {
		t.Fatalf("expected clamp at 0, got %d", stored.CurrentEntries)
	}
}

func TestEventRepositoryReturnsCopies(t *testing.T) {
	repo := NewEventRepository()
	seed := SeedEvents(1)
	if err := repo.Create(t.Context(), seed[0]); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, _, _ := repo.GetByID(t.Context(), seed[0].ID)
	first.Rewards[0].Amount = 1
	first.Name = "mutated"

	second, _, _ := repo.GetByID(t.Context(), seed[0].ID)
	if second.Rewards[0].Amount == 1 || second.Name == "mutated" {
		t.Fatal("repository leaked internal state")
	}
}

func TestEventRepositoryListByStatuses(t *testing.T) {
	repo := NewEventRepository()
	for _, evt := range SeedEvents(1) {
		if err := repo.Create(t.Context(), evt); err != nil {
			t.Fatalf("create %s: %v", evt.ID, err)
		}
	}

	open, err := repo.ListByStatuses(t.Context(), event.StatusRegistering, event.StatusLateReg)
	if err != nil {
		t.Fatalf("list by statuses: %v", err)
	}
	if len(open) != 3 {
		t.Fatalf("expected 3 open events, got %d", len(open))
	}

	ended, err := repo.ListByStatuses(t.Context(), event.StatusEnded)
	if err != nil {
		t.Fatalf("list ended: %v", err)
	}
	if len(ended) != 0 {
		t.Fatalf("expected no ended events, got %d", len(ended))
	}
}
