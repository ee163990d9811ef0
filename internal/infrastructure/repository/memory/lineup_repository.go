package memory

import (
	"context"
	"sync"

	"github.com/bescout/fantasy-events/internal/domain/lineup"
)

type LineupRepository struct {
	mu    sync.RWMutex
	items map[string]lineup.Lineup
}

func NewLineupRepository() *LineupRepository {
	return &LineupRepository{items: make(map[string]lineup.Lineup)}
}

func (r *LineupRepository) GetByUserAndEvent(_ context.Context, userID, eventID string) (lineup.Lineup, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[lineupKey(userID, eventID)]
	if !ok {
		return lineup.Lineup{}, false, nil
	}

	return cloneLineup(item), true, nil
}

func (r *LineupRepository) ListByEvent(_ context.Context, eventID string) ([]lineup.Lineup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []lineup.Lineup
	for _, item := range r.items {
		if item.EventID == eventID {
			result = append(result, cloneLineup(item))
		}
	}

	return result, nil
}

func (r *LineupRepository) ListByUser(_ context.Context, userID string) ([]lineup.Lineup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []lineup.Lineup
	for _, item := range r.items {
		if item.UserID == userID {
			result = append(result, cloneLineup(item))
		}
	}

	return result, nil
}

func (r *LineupRepository) Upsert(_ context.Context, item lineup.Lineup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[lineupKey(item.UserID, item.EventID)] = cloneLineup(item)
	return nil
}

func (r *LineupRepository) Delete(_ context.Context, userID, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, lineupKey(userID, eventID))
	return nil
}

func (r *LineupRepository) ClearScoresByEvent(_ context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, item := range r.items {
		if item.EventID != eventID {
			continue
		}
		item.SlotScores = nil
		item.TotalScore = 0
		item.Rank = 0
		item.RewardAmount = 0
		r.items[key] = item
	}

	return nil
}

func lineupKey(userID, eventID string) string {
	return userID + "::" + eventID
}

func cloneLineup(item lineup.Lineup) lineup.Lineup {
	copied := item
	if item.Slots != nil {
		copied.Slots = make(map[string]string, len(item.Slots))
		for k, v := range item.Slots {
			copied.Slots[k] = v
		}
	}
	if item.SlotScores != nil {
		copied.SlotScores = make(map[string]int, len(item.SlotScores))
		for k, v := range item.SlotScores {
			copied.SlotScores[k] = v
		}
	}
	return copied
}
