package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bescout/fantasy-events/internal/domain/event"
)

type EventRepository struct {
	mu    sync.RWMutex
	items map[string]event.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{items: make(map[string]event.Event)}
}

func (r *EventRepository) GetByID(_ context.Context, id string) (event.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return event.Event{}, false, nil
	}

	return cloneEvent(item), true, nil
}

func (r *EventRepository) ListByGameweek(_ context.Context, gameweek int) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []event.Event
	for _, item := range r.items {
		if item.Gameweek == gameweek {
			result = append(result, cloneEvent(item))
		}
	}
	sortEvents(result)

	return result, nil
}

func (r *EventRepository) ListByStatuses(_ context.Context, statuses ...event.Status) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[event.Status]struct{}, len(statuses))
	for _, s := range statuses {
		wanted[s] = struct{}{}
	}

	var result []event.Event
	for _, item := range r.items {
		if _, ok := wanted[item.Status]; ok {
			result = append(result, cloneEvent(item))
		}
	}
	sortEvents(result)

	return result, nil
}

func (r *EventRepository) Create(_ context.Context, evt event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[evt.ID]; exists {
		return fmt.Errorf("event %s already exists", evt.ID)
	}
	r.items[evt.ID] = cloneEvent(evt)

	return nil
}

func (r *EventRepository) Update(_ context.Context, evt event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[evt.ID]; !exists {
		return fmt.Errorf("event %s not found", evt.ID)
	}
	r.items[evt.ID] = cloneEvent(evt)

	return nil
}

func (r *EventRepository) AdjustEntries(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	if !exists {
		return fmt.Errorf("event %s not found", id)
	}
	item.CurrentEntries += delta
	if item.CurrentEntries < 0 {
		item.CurrentEntries = 0
	}
	r.items[id] = item

	return nil
}

func (r *EventRepository) MarkScored(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	if !exists {
		return false, fmt.Errorf("event %s not found", id)
	}
	if item.ScoredAt != nil {
		return false, nil
	}

	scoredAt := at
	item.ScoredAt = &scoredAt
	item.Status = event.StatusEnded
	item.UpdatedAt = at
	r.items[id] = item

	return true, nil
}

func (r *EventRepository) ClearScored(_ context.Context, id string, status event.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	if !exists {
		return fmt.Errorf("event %s not found", id)
	}
	item.ScoredAt = nil
	item.Status = status
	r.items[id] = item

	return nil
}

func sortEvents(events []event.Event) {
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
}

func cloneEvent(item event.Event) event.Event {
	copied := item
	copied.Rewards = append([]event.RewardRange(nil), item.Rewards...)
	copied.StartsAt = cloneTime(item.StartsAt)
	copied.LocksAt = cloneTime(item.LocksAt)
	copied.EndsAt = cloneTime(item.EndsAt)
	copied.ScoredAt = cloneTime(item.ScoredAt)
	return copied
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	at := *t
	return &at
}
