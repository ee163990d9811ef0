package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bescout/fantasy-events/internal/domain/wallet"
)

type PayoutRepository struct {
	mu    sync.RWMutex
	items map[string]wallet.Payout
}

func NewPayoutRepository() *PayoutRepository {
	return &PayoutRepository{items: make(map[string]wallet.Payout)}
}

func (r *PayoutRepository) GetByEventAndUser(_ context.Context, eventID, userID string) (wallet.Payout, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[wallet.Key(eventID, userID)]
	if !ok {
		return wallet.Payout{}, false, nil
	}

	return item, true, nil
}

func (r *PayoutRepository) ListByEvent(_ context.Context, eventID string) ([]wallet.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []wallet.Payout
	for _, item := range r.items {
		if item.EventID == eventID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Rank < result[j].Rank })

	return result, nil
}

func (r *PayoutRepository) CountByEvent(_ context.Context, eventID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, item := range r.items {
		if item.EventID == eventID {
			count++
		}
	}

	return count, nil
}

func (r *PayoutRepository) Record(_ context.Context, p wallet.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[wallet.Key(p.EventID, p.UserID)] = p
	return nil
}
