package memory

import (
	"context"
	"sync"
)

type GameweekRepository struct {
	mu      sync.RWMutex
	current int
}

func NewGameweekRepository(start int) *GameweekRepository {
	if start < 1 {
		start = 1
	}
	return &GameweekRepository{current: start}
}

func (r *GameweekRepository) Current(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current, nil
}

func (r *GameweekRepository) Set(_ context.Context, gameweek int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = gameweek
	return nil
}
