package memory

import (
	"context"
	"sync"

	"github.com/bescout/fantasy-events/internal/domain/reputation"
)

type ReputationLedger struct {
	mu     sync.RWMutex
	deltas []reputation.Delta
}

func NewReputationLedger() *ReputationLedger {
	return &ReputationLedger{}
}

func (r *ReputationLedger) Apply(_ context.Context, d reputation.Delta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deltas = append(r.deltas, d)
	return nil
}

func (r *ReputationLedger) ListByEvent(_ context.Context, eventID string) ([]reputation.Delta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []reputation.Delta
	for _, d := range r.deltas {
		if d.EventID == eventID {
			result = append(result, d)
		}
	}

	return result, nil
}

func (r *ReputationLedger) ScoreByUser(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, d := range r.deltas {
		if d.UserID == userID {
			total += d.Amount
		}
	}

	return total, nil
}
